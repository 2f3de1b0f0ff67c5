package records

import (
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/revenue-attestation/common"
	"github.com/nspcc-dev/revenue-attestation/host"
)

// MaxPageSize is a maximum number of attestations in one page.
const MaxPageSize = 30

// Query selects attestations of one business.
type Query struct {
	Business util.Uint160

	// Periods to look through in the given order. If empty, all attested
	// periods of the business are used in submission order.
	Periods []string

	// Inclusive range of capture time, zero To means no upper bound.
	From, To uint64

	// Status filter, StatusAny matches all records.
	Status Status

	// Schema version filter, zero matches all records.
	Version uint32

	// Maximum page size, zero and values above MaxPageSize mean MaxPageSize.
	Limit uint32

	// Index in the period list to start from.
	Cursor uint64
}

// Page is a part of query result.
type Page struct {
	Records []Record

	// Index in the period list to continue from. It equals the list length
	// when the list is exhausted.
	Next uint64
	Done bool
}

func (q *Query) match(r *Record, now uint64) bool {
	if r.CapturedAt < q.From {
		return false
	}
	if q.To != 0 && r.CapturedAt > q.To {
		return false
	}
	if q.Status != StatusAny && r.Status(now) != q.Status {
		return false
	}
	if q.Version != 0 && r.SchemaVersion != q.Version {
		return false
	}
	return true
}

// GetPage returns attestations matching the query. The cursor is an index
// into the period list, so paging keeps no state in the contract: the same
// query with the returned Next value continues the iteration.
func GetPage(ic *host.Context, q Query) (Page, error) {
	var (
		total    = uint64(len(q.Periods))
		periodAt = func(i uint64) (string, error) { return q.Periods[i], nil }
	)

	if total == 0 {
		var err error

		total, err = PeriodsCount(ic, q.Business)
		if err != nil {
			return Page{}, err
		}

		periodAt = func(i uint64) (string, error) { return PeriodAt(ic, q.Business, i) }
	}

	limit := int(q.Limit)
	if limit == 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}

	var (
		now = ic.Time()
		res = Page{Next: total}
		i   = q.Cursor
	)

	for ; i < total && len(res.Records) < limit; i++ {
		period, err := periodAt(i)
		if err != nil {
			return Page{}, err
		}

		r, err := Get(ic, q.Business, period)
		if err != nil {
			return Page{}, err
		}

		if r != nil && q.match(r, now) {
			res.Records = append(res.Records, *r)
		}
	}

	if i < total {
		res.Next = i
	}

	res.Done = res.Next == total

	return res, nil
}

// ToStackItem implements stackitem.Convertible.
func (q *Query) ToStackItem() (stackitem.Item, error) {
	return stackitem.NewStruct([]stackitem.Item{
		common.AccountToItem(q.Business),
		common.StringsToItem(q.Periods),
		common.Uint64ToItem(q.From),
		common.Uint64ToItem(q.To),
		common.Uint64ToItem(uint64(q.Status)),
		common.Uint64ToItem(uint64(q.Version)),
		common.Uint64ToItem(uint64(q.Limit)),
		common.Uint64ToItem(q.Cursor),
	}), nil
}

// FromStackItem implements stackitem.Convertible.
func (q *Query) FromStackItem(item stackitem.Item) error {
	arr, err := common.ItemToStruct(item, 8)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}

	if q.Business, err = common.ItemToUint160(arr[0]); err != nil {
		return fmt.Errorf("business: %w", err)
	}
	if q.Periods, err = common.ItemToStrings(arr[1]); err != nil {
		return fmt.Errorf("periods: %w", err)
	}
	if q.From, err = common.ItemToUint64(arr[2]); err != nil {
		return fmt.Errorf("from: %w", err)
	}
	if q.To, err = common.ItemToUint64(arr[3]); err != nil {
		return fmt.Errorf("to: %w", err)
	}

	st, err := common.ItemToUint32(arr[4])
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	if st > uint32(StatusExpired) {
		return fmt.Errorf("%w: unknown status %d", common.ErrInvalidArgument, st)
	}
	q.Status = Status(st)

	if q.Version, err = common.ItemToUint32(arr[5]); err != nil {
		return fmt.Errorf("version: %w", err)
	}
	if q.Limit, err = common.ItemToUint32(arr[6]); err != nil {
		return fmt.Errorf("limit: %w", err)
	}
	if q.Cursor, err = common.ItemToUint64(arr[7]); err != nil {
		return fmt.Errorf("cursor: %w", err)
	}

	return nil
}

// ToStackItem implements stackitem.Convertible.
func (p *Page) ToStackItem() (stackitem.Item, error) {
	items := make([]stackitem.Item, len(p.Records))
	for i := range p.Records {
		item, err := p.Records[i].ToStackItem()
		if err != nil {
			return nil, err
		}
		items[i] = item
	}

	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewArray(items),
		common.Uint64ToItem(p.Next),
		stackitem.NewBool(p.Done),
	}), nil
}

// FromStackItem implements stackitem.Convertible.
func (p *Page) FromStackItem(item stackitem.Item) error {
	arr, err := common.ItemToStruct(item, 3)
	if err != nil {
		return fmt.Errorf("page: %w", err)
	}

	list, err := common.ItemToArray(arr[0])
	if err != nil {
		return fmt.Errorf("records: %w", err)
	}

	p.Records = make([]Record, len(list))
	for i := range list {
		if err = p.Records[i].FromStackItem(list[i]); err != nil {
			return fmt.Errorf("record #%d: %w", i, err)
		}
	}

	if p.Next, err = common.ItemToUint64(arr[1]); err != nil {
		return fmt.Errorf("next: %w", err)
	}
	if p.Done, err = common.ItemToBool(arr[2]); err != nil {
		return fmt.Errorf("done: %w", err)
	}

	return nil
}
