package host

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"go.uber.org/zap"
)

// ErrReadOnly is returned by storage modification methods of the Context
// created for read-only calls.
var ErrReadOnly = errors.New("storage is read-only in the current context")

// Context is an execution context of a single contract call. It provides
// access to the contract storage, call witnesses, the external clock and the
// notification log. Context is created by Chain for every call and must not be
// used after the call returns.
type Context struct {
	id       uuid.UUID
	contract util.Uint160
	method   string
	readOnly bool

	store     *storage.MemCachedStore
	witnesses Witnesses
	time      uint64
	height    uint32

	log    *zap.Logger
	events []state.NotificationEvent
}

// ID returns unique identifier of the call.
func (ic *Context) ID() uuid.UUID {
	return ic.id
}

// Contract returns script hash of the called contract.
func (ic *Context) Contract() util.Uint160 {
	return ic.contract
}

// Time returns the timestamp (in seconds) of the block the call is executed in.
func (ic *Context) Time() uint64 {
	return ic.time
}

// Height returns height of the block the call is executed in.
func (ic *Context) Height() uint32 {
	return ic.height
}

// ReadOnly checks whether storage modifications are prohibited.
func (ic *Context) ReadOnly() bool {
	return ic.readOnly
}

// CheckWitness checks whether the call is witnessed by the given account.
func (ic *Context) CheckWitness(acc util.Uint160) bool {
	return ic.witnesses != nil && ic.witnesses.CheckWitness(acc)
}

// Logger returns logger of the call.
func (ic *Context) Logger() *zap.Logger {
	return ic.log
}

// Log writes debug message to the call log.
func (ic *Context) Log(msg string) {
	ic.log.Debug(msg)
}

// Get returns value stored by the key or nil if the key is missing.
func (ic *Context) Get(key []byte) []byte {
	v, err := ic.store.Get(key)
	if err != nil {
		return nil
	}
	return v
}

// Put saves value by the key.
func (ic *Context) Put(key, value []byte) error {
	if ic.readOnly {
		return ErrReadOnly
	}
	ic.store.Put(key, value)
	return nil
}

// Delete removes value stored by the key.
func (ic *Context) Delete(key []byte) error {
	if ic.readOnly {
		return ErrReadOnly
	}
	ic.store.Delete(key)
	return nil
}

// Find passes items stored by keys with the given prefix to f in ascending key
// order until f returns false. Changes made by the current call are visible.
// The prefix must not be empty. f must not modify the storage.
func (ic *Context) Find(prefix []byte, f func(key, value []byte) bool) {
	if len(prefix) == 0 {
		return
	}
	ic.store.Seek(storage.SeekRange{Prefix: prefix}, f)
}

// Notify adds notification with the given name and arguments to the call
// notification log. Notifications are published only if the call succeeds.
// Arguments are converted to stack items via stackitem.Make, util.Uint160 and
// util.Uint256 are represented as big-endian byte arrays.
func (ic *Context) Notify(name string, args ...any) error {
	if ic.readOnly {
		return ErrReadOnly
	}

	items := make([]stackitem.Item, 0, len(args))
	for i := range args {
		item, err := toStackItem(args[i])
		if err != nil {
			return fmt.Errorf("notification '%s' argument #%d: %w", name, i, err)
		}
		items = append(items, item)
	}

	ic.events = append(ic.events, state.NotificationEvent{
		ScriptHash: ic.contract,
		Name:       name,
		Item:       stackitem.NewArray(items),
	})

	ic.log.Debug("notification", zap.String("name", name))

	return nil
}

func toStackItem(v any) (item stackitem.Item, err error) {
	switch x := v.(type) {
	case nil:
		return stackitem.Null{}, nil
	case stackitem.Item:
		return x, nil
	case util.Uint160:
		return stackitem.NewByteArray(x.BytesBE()), nil
	case util.Uint256:
		return stackitem.NewByteArray(x.BytesBE()), nil
	case *big.Int:
		if x == nil {
			return stackitem.Null{}, nil
		}
		return stackitem.NewBigInteger(x), nil
	}

	defer func() {
		// stackitem.Make panics on unsupported types
		if r := recover(); r != nil {
			err = fmt.Errorf("unsupported type %T", v)
		}
	}()

	return stackitem.Make(v), nil
}
