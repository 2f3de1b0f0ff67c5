package rotation

import (
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/revenue-attestation/common"
)

// Config contains rotation timings in seconds.
type Config struct {
	// Delay between proposal and the earliest confirmation.
	Timelock uint64
	// Period after the timelock the request can be confirmed within.
	ConfirmationWindow uint64
	// Minimum delay between completion of the rotation and the next proposal.
	Cooldown uint64
}

// DefaultConfig returns default rotation timings.
func DefaultConfig() Config {
	return Config{
		Timelock:           48 * 60 * 60,
		ConfirmationWindow: 7 * 24 * 60 * 60,
		Cooldown:           24 * 60 * 60,
	}
}

// Upper bounds of rotation timings in seconds.
const (
	MaxTimelock           = 30 * 24 * 60 * 60
	MaxConfirmationWindow = 90 * 24 * 60 * 60
	MaxCooldown           = 90 * 24 * 60 * 60
)

// Validate checks that the request can be confirmed at all and timings are
// bounded.
func (c *Config) Validate() error {
	if c.ConfirmationWindow == 0 {
		return fmt.Errorf("%w: zero confirmation window", common.ErrInvalidArgument)
	}
	if c.ConfirmationWindow > MaxConfirmationWindow {
		return fmt.Errorf("%w: confirmation window %ds exceeds %d", common.ErrInvalidArgument, c.ConfirmationWindow, MaxConfirmationWindow)
	}
	if c.Timelock > MaxTimelock {
		return fmt.Errorf("%w: timelock %ds exceeds %d", common.ErrInvalidArgument, c.Timelock, MaxTimelock)
	}
	if c.Cooldown > MaxCooldown {
		return fmt.Errorf("%w: cooldown %ds exceeds %d", common.ErrInvalidArgument, c.Cooldown, MaxCooldown)
	}
	return nil
}

// ToStackItem implements stackitem.Convertible.
func (c *Config) ToStackItem() (stackitem.Item, error) {
	return stackitem.NewStruct([]stackitem.Item{
		common.Uint64ToItem(c.Timelock),
		common.Uint64ToItem(c.ConfirmationWindow),
		common.Uint64ToItem(c.Cooldown),
	}), nil
}

// FromStackItem implements stackitem.Convertible.
func (c *Config) FromStackItem(item stackitem.Item) error {
	arr, err := common.ItemToStruct(item, 3)
	if err != nil {
		return fmt.Errorf("rotation config: %w", err)
	}

	if c.Timelock, err = common.ItemToUint64(arr[0]); err != nil {
		return fmt.Errorf("timelock: %w", err)
	}
	if c.ConfirmationWindow, err = common.ItemToUint64(arr[1]); err != nil {
		return fmt.Errorf("confirmation window: %w", err)
	}
	if c.Cooldown, err = common.ItemToUint64(arr[2]); err != nil {
		return fmt.Errorf("cooldown: %w", err)
	}

	return nil
}

// Status is a status of the rotation request.
type Status uint8

// Rotation request statuses.
const (
	StatusPending Status = iota
	StatusCompleted
	StatusCancelled
	StatusExpired
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	case StatusExpired:
		return "Expired"
	default:
		return fmt.Sprintf("Status#%d", s)
	}
}

// Request is an admin rotation request.
type Request struct {
	OldAdmin      util.Uint160
	NewAdmin      util.Uint160
	Status        Status
	ProposedAt    uint64
	TimelockUntil uint64
	ExpiresAt     uint64
	IsEmergency   bool
	// Zero until the rotation is completed.
	CompletedAt uint64
}

// ToStackItem implements stackitem.Convertible.
func (r *Request) ToStackItem() (stackitem.Item, error) {
	return stackitem.NewStruct([]stackitem.Item{
		common.AccountToItem(r.OldAdmin),
		common.AccountToItem(r.NewAdmin),
		common.Uint64ToItem(uint64(r.Status)),
		common.Uint64ToItem(r.ProposedAt),
		common.Uint64ToItem(r.TimelockUntil),
		common.Uint64ToItem(r.ExpiresAt),
		stackitem.NewBool(r.IsEmergency),
		common.Uint64ToItem(r.CompletedAt),
	}), nil
}

// FromStackItem implements stackitem.Convertible.
func (r *Request) FromStackItem(item stackitem.Item) error {
	arr, err := common.ItemToStruct(item, 8)
	if err != nil {
		return fmt.Errorf("rotation request: %w", err)
	}

	if r.OldAdmin, err = common.ItemToUint160(arr[0]); err != nil {
		return fmt.Errorf("old admin: %w", err)
	}
	if r.NewAdmin, err = common.ItemToUint160(arr[1]); err != nil {
		return fmt.Errorf("new admin: %w", err)
	}

	status, err := common.ItemToUint32(arr[2])
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	if status > 0xFF {
		return fmt.Errorf("status %d overflows uint8", status)
	}
	r.Status = Status(status)

	if r.ProposedAt, err = common.ItemToUint64(arr[3]); err != nil {
		return fmt.Errorf("proposal time: %w", err)
	}
	if r.TimelockUntil, err = common.ItemToUint64(arr[4]); err != nil {
		return fmt.Errorf("timelock: %w", err)
	}
	if r.ExpiresAt, err = common.ItemToUint64(arr[5]); err != nil {
		return fmt.Errorf("expiry: %w", err)
	}
	if r.IsEmergency, err = common.ItemToBool(arr[6]); err != nil {
		return fmt.Errorf("emergency flag: %w", err)
	}
	if r.CompletedAt, err = common.ItemToUint64(arr[7]); err != nil {
		return fmt.Errorf("completion time: %w", err)
	}

	return nil
}

// history is a list of completed rotations, the oldest first.
type history []Request

// ToStackItem implements stackitem.Convertible.
func (h *history) ToStackItem() (stackitem.Item, error) {
	items := make([]stackitem.Item, len(*h))
	for i := range *h {
		item, err := (*h)[i].ToStackItem()
		if err != nil {
			return nil, err
		}
		items[i] = item
	}
	return stackitem.NewArray(items), nil
}

// FromStackItem implements stackitem.Convertible.
func (h *history) FromStackItem(item stackitem.Item) error {
	arr, err := common.ItemToArray(item)
	if err != nil {
		return fmt.Errorf("rotation history: %w", err)
	}

	res := make(history, len(arr))
	for i := range arr {
		if err := res[i].FromStackItem(arr[i]); err != nil {
			return fmt.Errorf("rotation #%d: %w", i, err)
		}
	}

	*h = res

	return nil
}
