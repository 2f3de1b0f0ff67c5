package fee

import (
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/revenue-attestation/common"
)

// MaxBPS is 100% in basis points.
const MaxBPS = 10_000

// Config is a fee configuration of the contract.
type Config struct {
	// Token contract fees are paid in.
	Token util.Uint160
	// Account receiving fees.
	Collector util.Uint160
	// Fee of a submission before discounts.
	BaseFee *big.Int
	// Free mode is used when disabled.
	Enabled bool
}

// ToStackItem implements stackitem.Convertible.
func (c *Config) ToStackItem() (stackitem.Item, error) {
	return stackitem.NewStruct([]stackitem.Item{
		common.AccountToItem(c.Token),
		common.AccountToItem(c.Collector),
		common.BigIntToItem(c.BaseFee),
		stackitem.NewBool(c.Enabled),
	}), nil
}

// FromStackItem implements stackitem.Convertible.
func (c *Config) FromStackItem(item stackitem.Item) error {
	arr, err := common.ItemToStruct(item, 4)
	if err != nil {
		return fmt.Errorf("fee config: %w", err)
	}

	if c.Token, err = common.ItemToUint160(arr[0]); err != nil {
		return fmt.Errorf("fee config token: %w", err)
	}
	if c.Collector, err = common.ItemToUint160(arr[1]); err != nil {
		return fmt.Errorf("fee config collector: %w", err)
	}
	if c.BaseFee, err = common.ItemToBigInt(arr[2]); err != nil {
		return fmt.Errorf("fee config base fee: %w", err)
	}
	if c.Enabled, err = common.ItemToBool(arr[3]); err != nil {
		return fmt.Errorf("fee config enabled flag: %w", err)
	}

	return nil
}

// Bracket is a volume discount applied once the business has made at least
// Threshold submissions.
type Bracket struct {
	Threshold   uint64
	DiscountBPS uint32
}

// Brackets is an ascending list of volume brackets.
type Brackets []Bracket

// ToStackItem implements stackitem.Convertible.
func (b *Brackets) ToStackItem() (stackitem.Item, error) {
	items := make([]stackitem.Item, len(*b))
	for i, x := range *b {
		items[i] = stackitem.NewStruct([]stackitem.Item{
			common.Uint64ToItem(x.Threshold),
			common.Uint64ToItem(uint64(x.DiscountBPS)),
		})
	}
	return stackitem.NewArray(items), nil
}

// FromStackItem implements stackitem.Convertible.
func (b *Brackets) FromStackItem(item stackitem.Item) error {
	arr, err := common.ItemToArray(item)
	if err != nil {
		return fmt.Errorf("volume brackets: %w", err)
	}

	res := make(Brackets, len(arr))
	for i := range arr {
		fields, err := common.ItemToStruct(arr[i], 2)
		if err != nil {
			return fmt.Errorf("volume bracket #%d: %w", i, err)
		}
		if res[i].Threshold, err = common.ItemToUint64(fields[0]); err != nil {
			return fmt.Errorf("volume bracket #%d threshold: %w", i, err)
		}
		if res[i].DiscountBPS, err = common.ItemToUint32(fields[1]); err != nil {
			return fmt.Errorf("volume bracket #%d discount: %w", i, err)
		}
	}

	*b = res

	return nil
}

// BusinessState is a pricing state of the business.
type BusinessState struct {
	Tier  uint32
	Count uint64
}

// ToStackItem implements stackitem.Convertible.
func (s *BusinessState) ToStackItem() (stackitem.Item, error) {
	return stackitem.NewStruct([]stackitem.Item{
		common.Uint64ToItem(uint64(s.Tier)),
		common.Uint64ToItem(s.Count),
	}), nil
}

// FromStackItem implements stackitem.Convertible.
func (s *BusinessState) FromStackItem(item stackitem.Item) error {
	arr, err := common.ItemToStruct(item, 2)
	if err != nil {
		return fmt.Errorf("business fee state: %w", err)
	}

	if s.Tier, err = common.ItemToUint32(arr[0]); err != nil {
		return fmt.Errorf("business tier: %w", err)
	}
	if s.Count, err = common.ItemToUint64(arr[1]); err != nil {
		return fmt.Errorf("business submission count: %w", err)
	}

	return nil
}
