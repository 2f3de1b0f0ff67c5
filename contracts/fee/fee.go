package fee

import (
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/common"
	"github.com/nspcc-dev/revenue-attestation/host"
	"go.uber.org/zap"
)

// Token is a fungible token contract fees are paid with.
type Token interface {
	// BalanceOf returns balance of the account in the token contract.
	BalanceOf(ic *host.Context, token, account util.Uint160) (*big.Int, error)
	// Transfer moves amount of tokens between accounts.
	Transfer(ic *host.Context, token, from, to util.Uint160, amount *big.Int, data []byte) error
}

const (
	configKey      = 'c'
	tierPrefix     = 't'
	bracketsKey    = 'v'
	businessPrefix = 'b'
)

var bpsDenominator = big.NewInt(MaxBPS * MaxBPS)

// Compute returns fee with both discounts applied. Discounts above MaxBPS are
// treated as MaxBPS.
func Compute(base *big.Int, tierBPS, volumeBPS uint32) *big.Int {
	if base == nil || base.Sign() <= 0 {
		return new(big.Int)
	}

	res := new(big.Int).Mul(base, big.NewInt(int64(MaxBPS-clampBPS(tierBPS))))
	res.Mul(res, big.NewInt(int64(MaxBPS-clampBPS(volumeBPS))))

	return res.Quo(res, bpsDenominator)
}

func clampBPS(v uint32) uint32 {
	if v > MaxBPS {
		return MaxBPS
	}
	return v
}

// VolumeDiscount returns discount of the highest bracket reached by count.
func VolumeDiscount(brackets Brackets, count uint64) uint32 {
	for i := len(brackets) - 1; i >= 0; i-- {
		if count >= brackets[i].Threshold {
			return brackets[i].DiscountBPS
		}
	}
	return 0
}

func validateBPS(v uint32) error {
	if v > MaxBPS {
		return fmt.Errorf("%w: %d bps", common.ErrInvalidDiscount, v)
	}
	return nil
}

// Validate checks fee configuration.
func (c *Config) Validate() error {
	if c.BaseFee == nil {
		return fmt.Errorf("%w: missing base fee", common.ErrInvalidArgument)
	}
	if c.BaseFee.Sign() < 0 {
		return fmt.Errorf("%w: base fee %s", common.ErrNegativeAmount, c.BaseFee)
	}
	return nil
}

// Validate checks that thresholds are strictly ascending and discounts are in
// range.
func (b Brackets) Validate() error {
	for i := range b {
		if err := validateBPS(b[i].DiscountBPS); err != nil {
			return fmt.Errorf("bracket #%d: %w", i, err)
		}
		if i > 0 && b[i].Threshold <= b[i-1].Threshold {
			return fmt.Errorf("%w: threshold #%d (%d) <= threshold #%d (%d)",
				common.ErrInvalidBrackets, i, b[i].Threshold, i-1, b[i-1].Threshold)
		}
	}
	return nil
}

// SetConfig saves fee configuration.
func SetConfig(ic *host.Context, c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return common.SetSerialized(ic, common.NewKey(configKey), &c)
}

// GetConfig returns fee configuration or nil if it is not set.
func GetConfig(ic *host.Context) (*Config, error) {
	var c Config

	ok, err := common.GetSerialized(ic, common.NewKey(configKey), &c)
	if err != nil || !ok {
		return nil, err
	}

	return &c, nil
}

// SetTierDiscount sets discount of the tier.
func SetTierDiscount(ic *host.Context, tier, bps uint32) error {
	if err := validateBPS(bps); err != nil {
		return err
	}

	k := common.NewKey(tierPrefix).WithID(uint64(tier))
	if bps == 0 {
		return common.Delete(ic, k)
	}

	return common.PutUint64(ic, k, uint64(bps))
}

// TierDiscount returns discount of the tier.
func TierDiscount(ic *host.Context, tier uint32) (uint32, error) {
	v, err := common.GetUint64(ic, common.NewKey(tierPrefix).WithID(uint64(tier)))
	return uint32(v), err
}

// SetVolumeBrackets replaces volume brackets. Empty list removes volume
// discounts.
func SetVolumeBrackets(ic *host.Context, b Brackets) error {
	if err := b.Validate(); err != nil {
		return err
	}

	if len(b) == 0 {
		return common.Delete(ic, common.NewKey(bracketsKey))
	}

	return common.SetSerialized(ic, common.NewKey(bracketsKey), &b)
}

// VolumeBrackets returns current volume brackets.
func VolumeBrackets(ic *host.Context) (Brackets, error) {
	var b Brackets

	_, err := common.GetSerialized(ic, common.NewKey(bracketsKey), &b)

	return b, err
}

func businessKey(business util.Uint160) common.Key {
	return common.NewKey(businessPrefix).WithAccount(business)
}

// GetBusinessState returns pricing state of the business.
func GetBusinessState(ic *host.Context, business util.Uint160) (BusinessState, error) {
	var s BusinessState

	_, err := common.GetSerialized(ic, businessKey(business), &s)

	return s, err
}

// SetBusinessTier sets pricing tier of the business.
func SetBusinessTier(ic *host.Context, business util.Uint160, tier uint32) error {
	s, err := GetBusinessState(ic, business)
	if err != nil {
		return err
	}

	s.Tier = tier

	return common.SetSerialized(ic, businessKey(business), &s)
}

// Quote returns fee of the next submission of the business.
func Quote(ic *host.Context, business util.Uint160) (*big.Int, error) {
	fees, err := QuoteN(ic, business, 1)
	if err != nil {
		return nil, err
	}
	return fees[0], nil
}

// QuoteN returns fees of the next n submissions of the business. Every
// submission moves the business forward in volume brackets, so fees of a
// batch may differ.
func QuoteN(ic *host.Context, business util.Uint160, n int) ([]*big.Int, error) {
	res := make([]*big.Int, n)

	cfg, err := GetConfig(ic)
	if err != nil {
		return nil, err
	}

	if cfg == nil || !cfg.Enabled {
		for i := range res {
			res[i] = new(big.Int)
		}
		return res, nil
	}

	s, err := GetBusinessState(ic, business)
	if err != nil {
		return nil, err
	}

	tierBPS, err := TierDiscount(ic, s.Tier)
	if err != nil {
		return nil, err
	}

	brackets, err := VolumeBrackets(ic)
	if err != nil {
		return nil, err
	}

	for i := range res {
		res[i] = Compute(cfg.BaseFee, tierBPS, VolumeDiscount(brackets, s.Count+uint64(i)))
	}

	return res, nil
}

// Sum returns sum of fees.
func Sum(fees []*big.Int) *big.Int {
	res := new(big.Int)
	for i := range fees {
		res.Add(res, fees[i])
	}
	return res
}

// CheckFunds checks that the business can pay the given amount. It is called
// before any storage modification of the submission.
func CheckFunds(ic *host.Context, t Token, business util.Uint160, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}

	cfg, err := GetConfig(ic)
	if err != nil {
		return err
	}

	if cfg == nil || t == nil {
		return fmt.Errorf("%w: fee token contract is not available", common.ErrNotInitialized)
	}

	balance, err := t.BalanceOf(ic, cfg.Token, business)
	if err != nil {
		return fmt.Errorf("get balance of %s: %w", address.Uint160ToString(business), err)
	}

	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %s, %s required",
			common.ErrInsufficientBalance, address.Uint160ToString(business), balance, amount)
	}

	return nil
}

// Collect charges the business for n accepted submissions and moves its
// submission counter forward by n. It returns fee of every submission.
// Total amount is transferred to the collector in one transfer with the given
// details attached.
func Collect(ic *host.Context, t Token, business util.Uint160, n int, details []byte) ([]*big.Int, error) {
	fees, err := QuoteN(ic, business, n)
	if err != nil {
		return nil, err
	}

	total := Sum(fees)

	err = CheckFunds(ic, t, business, total)
	if err != nil {
		return nil, err
	}

	if total.Sign() > 0 {
		cfg, err := GetConfig(ic)
		if err != nil {
			return nil, err
		}

		// token errors are passed as is
		err = t.Transfer(ic, cfg.Token, business, cfg.Collector, total, details)
		if err != nil {
			return nil, err
		}

		ic.Logger().Debug("fee collected",
			zap.Stringer("business", business),
			zap.Stringer("amount", total),
			zap.Int("submissions", n))
	}

	s, err := GetBusinessState(ic, business)
	if err != nil {
		return nil, err
	}

	s.Count += uint64(n)

	err = common.SetSerialized(ic, businessKey(business), &s)
	if err != nil {
		return nil, err
	}

	return fees, nil
}
