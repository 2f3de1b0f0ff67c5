package dispute

import (
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/revenue-attestation/common"
)

// Type is a kind of the challenged issue.
type Type uint8

// Dispute types.
const (
	TypeRevenueMismatch Type = iota
	TypeMissingData
	TypeFraud
	TypeOther
)

var typeNames = [...]string{"RevenueMismatch", "MissingData", "Fraud", "Other"}

// String implements fmt.Stringer.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type#%d", t)
}

// Validate checks that the type is known.
func (t Type) Validate() error {
	if t > TypeOther {
		return fmt.Errorf("%w: unknown dispute type %d", common.ErrInvalidArgument, t)
	}
	return nil
}

// Outcome is a result of the dispute adjudication.
type Outcome uint8

// Dispute outcomes.
const (
	OutcomeUpheld Outcome = iota
	OutcomeRejected
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomeUpheld:
		return "Upheld"
	case OutcomeRejected:
		return "Rejected"
	default:
		return fmt.Sprintf("Outcome#%d", o)
	}
}

// Validate checks that the outcome is known.
func (o Outcome) Validate() error {
	if o > OutcomeRejected {
		return fmt.Errorf("%w: unknown dispute outcome %d", common.ErrInvalidArgument, o)
	}
	return nil
}

// Status is a lifecycle status of the dispute.
type Status uint8

// Dispute statuses.
const (
	StatusOpen Status = iota
	StatusResolved
	StatusClosed
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusResolved:
		return "Resolved"
	case StatusClosed:
		return "Closed"
	default:
		return fmt.Sprintf("Status#%d", s)
	}
}

// Resolution is a decision on the dispute.
type Resolution struct {
	Resolver   util.Uint160
	Outcome    Outcome
	Notes      string
	ResolvedAt uint64
}

// Dispute is a challenge of the attestation.
type Dispute struct {
	ID         uint64
	Challenger util.Uint160
	Business   util.Uint160
	Period     string
	Type       Type
	Evidence   string
	Status     Status
	OpenedAt   uint64
	// Set for resolved and closed disputes.
	Resolution *Resolution
	// Zero until the dispute is closed.
	ClosedAt uint64
}

// ToStackItem implements stackitem.Convertible.
func (d *Dispute) ToStackItem() (stackitem.Item, error) {
	var res stackitem.Item = stackitem.Null{}
	if d.Resolution != nil {
		res = stackitem.NewStruct([]stackitem.Item{
			common.AccountToItem(d.Resolution.Resolver),
			common.Uint64ToItem(uint64(d.Resolution.Outcome)),
			stackitem.NewByteArray([]byte(d.Resolution.Notes)),
			common.Uint64ToItem(d.Resolution.ResolvedAt),
		})
	}

	return stackitem.NewStruct([]stackitem.Item{
		common.Uint64ToItem(d.ID),
		common.AccountToItem(d.Challenger),
		common.AccountToItem(d.Business),
		stackitem.NewByteArray([]byte(d.Period)),
		common.Uint64ToItem(uint64(d.Type)),
		stackitem.NewByteArray([]byte(d.Evidence)),
		common.Uint64ToItem(uint64(d.Status)),
		common.Uint64ToItem(d.OpenedAt),
		res,
		common.Uint64ToItem(d.ClosedAt),
	}), nil
}

func itemToUint8(item stackitem.Item) (uint8, error) {
	v, err := common.ItemToUint64(item)
	if err != nil {
		return 0, err
	}
	if v > 0xFF {
		return 0, fmt.Errorf("value %d overflows uint8", v)
	}
	return uint8(v), nil
}

// FromStackItem implements stackitem.Convertible.
func (d *Dispute) FromStackItem(item stackitem.Item) error {
	arr, err := common.ItemToStruct(item, 10)
	if err != nil {
		return fmt.Errorf("dispute: %w", err)
	}

	var u8 uint8

	if d.ID, err = common.ItemToUint64(arr[0]); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	if d.Challenger, err = common.ItemToUint160(arr[1]); err != nil {
		return fmt.Errorf("challenger: %w", err)
	}
	if d.Business, err = common.ItemToUint160(arr[2]); err != nil {
		return fmt.Errorf("business: %w", err)
	}
	if d.Period, err = common.ItemToString(arr[3]); err != nil {
		return fmt.Errorf("period: %w", err)
	}
	if u8, err = itemToUint8(arr[4]); err != nil {
		return fmt.Errorf("type: %w", err)
	}
	d.Type = Type(u8)
	if d.Evidence, err = common.ItemToString(arr[5]); err != nil {
		return fmt.Errorf("evidence: %w", err)
	}
	if u8, err = itemToUint8(arr[6]); err != nil {
		return fmt.Errorf("status: %w", err)
	}
	d.Status = Status(u8)
	if d.OpenedAt, err = common.ItemToUint64(arr[7]); err != nil {
		return fmt.Errorf("open time: %w", err)
	}
	if d.ClosedAt, err = common.ItemToUint64(arr[9]); err != nil {
		return fmt.Errorf("close time: %w", err)
	}

	d.Resolution = nil

	if _, ok := arr[8].(stackitem.Null); ok {
		return nil
	}

	res, err := common.ItemToStruct(arr[8], 4)
	if err != nil {
		return fmt.Errorf("resolution: %w", err)
	}

	d.Resolution = new(Resolution)

	if d.Resolution.Resolver, err = common.ItemToUint160(res[0]); err != nil {
		return fmt.Errorf("resolver: %w", err)
	}
	if u8, err = itemToUint8(res[1]); err != nil {
		return fmt.Errorf("outcome: %w", err)
	}
	d.Resolution.Outcome = Outcome(u8)
	if d.Resolution.Notes, err = common.ItemToString(res[2]); err != nil {
		return fmt.Errorf("notes: %w", err)
	}
	if d.Resolution.ResolvedAt, err = common.ItemToUint64(res[3]); err != nil {
		return fmt.Errorf("resolution time: %w", err)
	}

	return nil
}
