/*
Package host provides the execution environment of the attestation contracts:
persistent key-value storage, call authentication, the external clock and the
notification log.

Chain delivers one call at a time. Every call gets a write cache over the
underlying storage, the cache is persisted only when the call succeeds, so a
failed call leaves no trace in the storage and its notifications are dropped.
*/
package host

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"go.uber.org/zap"
)

// Dispatcher is a contract callable by method name with stack item arguments.
type Dispatcher interface {
	// Invoke calls the named method. Nil result means the method returns
	// nothing.
	Invoke(ic *Context, method string, args []stackitem.Item) (stackitem.Item, error)
}

var (
	// ErrUnknownContract is returned when called contract is not registered
	// in the Chain.
	ErrUnknownContract = errors.New("unknown contract")

	// ErrClockRewind is returned by Chain.SetTime when the new time is less
	// than the current one.
	ErrClockRewind = errors.New("clock can not go backwards")
)

// Chain is a sequential executor of contract calls over shared storage.
// Chain is safe for concurrent use, calls are serialized.
type Chain struct {
	mtx sync.Mutex

	store storage.Store
	log   *zap.Logger

	time   uint64
	height uint32

	contracts     map[util.Uint160]Dispatcher
	notifications []state.NotificationEvent
}

// New returns Chain working over the given storage. Nil logger disables
// logging.
func New(st storage.Store, log *zap.Logger) *Chain {
	if log == nil {
		log = zap.NewNop()
	}

	return &Chain{
		store:     st,
		log:       log,
		contracts: make(map[util.Uint160]Dispatcher),
	}
}

// Time returns current value of the external clock in seconds.
func (c *Chain) Time() uint64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.time
}

// Height returns number of successfully executed state-changing calls.
func (c *Chain) Height() uint32 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.height
}

// SetTime moves the external clock to the given timestamp. The clock is
// monotonic.
func (c *Chain) SetTime(t uint64) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if t < c.time {
		return fmt.Errorf("%w: %d < %d", ErrClockRewind, t, c.time)
	}

	c.time = t

	return nil
}

// AdvanceTime moves the external clock forward by d seconds.
func (c *Chain) AdvanceTime(d uint64) {
	c.mtx.Lock()
	c.time += d
	c.mtx.Unlock()
}

// Register makes contract callable by its script hash via Call and Send.
func (c *Chain) Register(h util.Uint160, d Dispatcher) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if _, ok := c.contracts[h]; ok {
		return fmt.Errorf("contract %s is already registered", h.StringLE())
	}

	c.contracts[h] = d

	return nil
}

// Notifications returns all notifications produced by successful calls in
// order of appearance.
func (c *Chain) Notifications() []state.NotificationEvent {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	res := make([]state.NotificationEvent, len(c.notifications))
	copy(res, c.notifications)

	return res
}

// Iterate passes all persisted storage items with the given key prefix to f in
// ascending key order until f returns false. Empty prefix selects the whole
// storage.
func (c *Chain) Iterate(prefix []byte, f func(key, value []byte) bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if len(prefix) != 0 {
		c.store.Seek(storage.SeekRange{Prefix: prefix}, f)
		return
	}

	// in-memory stores can't seek with empty prefix, so go label by label
	var stop bool

	for label := 0; label <= 0xFF && !stop; label++ {
		c.store.Seek(storage.SeekRange{Prefix: []byte{byte(label)}}, func(k, v []byte) bool {
			stop = !f(k, v)
			return !stop
		})
	}
}

// Close releases the underlying storage.
func (c *Chain) Close() error {
	return c.store.Close()
}

// Exec executes state-changing call f of the given contract method witnessed
// by w. Storage changes and notifications made by f are committed only if f
// returns no error.
func (c *Chain) Exec(contract util.Uint160, method string, w Witnesses, f func(ic *Context) error) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	_, err := c.exec(contract, method, w, false, f)

	return err
}

// View executes read-only call f of the given contract method.
func (c *Chain) View(contract util.Uint160, method string, f func(ic *Context) error) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	_, err := c.exec(contract, method, nil, true, f)

	return err
}

func (c *Chain) exec(contract util.Uint160, method string, w Witnesses, readOnly bool, f func(ic *Context) error) (*Context, error) {
	ic := &Context{
		id:        uuid.New(),
		contract:  contract,
		method:    method,
		readOnly:  readOnly,
		store:     storage.NewMemCachedStore(c.store),
		witnesses: w,
		time:      c.time,
		height:    c.height + 1,
	}
	ic.log = c.log.With(
		zap.Stringer("call", ic.id),
		zap.String("method", method),
		zap.Uint64("time", c.time),
	)

	err := f(ic)
	if err != nil {
		ic.log.Debug("call failed", zap.Error(err))
		return ic, err
	}

	if readOnly {
		return ic, nil
	}

	_, err = ic.store.Persist()
	if err != nil {
		ic.log.Error("failed to persist call changes", zap.Error(err))
		return ic, fmt.Errorf("persist storage changes: %w", err)
	}

	c.height++
	c.notifications = append(c.notifications, ic.events...)

	return ic, nil
}

// Call invokes read-only contract method with the given parameters and
// returns the result in the form of the Neo RPC invocation result. Call
// satisfies the Invoker interface of the RPC bindings, so the bindings work
// with the Chain directly.
//
// Contract failures are returned as results with FAULT state, the error is
// returned for unknown contracts and unsupported parameters only.
func (c *Chain) Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error) {
	return c.invoke(nil, true, contract, operation, params...)
}

// Send is like Call but executes state-changing method witnessed by w.
func (c *Chain) Send(w Witnesses, contract util.Uint160, operation string, params ...any) (*result.Invoke, error) {
	return c.invoke(w, false, contract, operation, params...)
}

func (c *Chain) invoke(w Witnesses, readOnly bool, contract util.Uint160, operation string, params ...any) (*result.Invoke, error) {
	args := make([]stackitem.Item, 0, len(params))
	for i := range params {
		item, err := toStackItem(params[i])
		if err != nil {
			return nil, fmt.Errorf("parameter #%d: %w", i, err)
		}
		args = append(args, item)
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	d, ok := c.contracts[contract]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContract, contract.StringLE())
	}

	var res stackitem.Item

	ic, err := c.exec(contract, operation, w, readOnly, func(ic *Context) error {
		var err error
		res, err = d.Invoke(ic, operation, args)
		return err
	})
	if err != nil {
		return &result.Invoke{
			State:          vmstate.Fault.String(),
			FaultException: err.Error(),
		}, nil
	}

	if res == nil {
		res = stackitem.Null{}
	}

	return &result.Invoke{
		State:         vmstate.Halt.String(),
		Stack:         []stackitem.Item{res},
		Notifications: ic.events,
	}, nil
}
