package ratelimit

import (
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/revenue-attestation/common"
	"github.com/nspcc-dev/revenue-attestation/host"
)

const (
	configKey = 'q'
	logPrefix = 'w'
)

// MaxLogSize is a maximum number of timestamps kept in the log of a business.
// It also bounds the maximum number of submissions within the window.
const MaxLogSize = 1024

// Config is a rate limit configuration.
type Config struct {
	// Maximum number of submissions within the window.
	MaxSubmissions uint64
	// Window length in seconds.
	WindowSeconds uint64
	Enabled       bool
}

// ToStackItem implements stackitem.Convertible.
func (c *Config) ToStackItem() (stackitem.Item, error) {
	return stackitem.NewStruct([]stackitem.Item{
		common.Uint64ToItem(c.MaxSubmissions),
		common.Uint64ToItem(c.WindowSeconds),
		stackitem.NewBool(c.Enabled),
	}), nil
}

// FromStackItem implements stackitem.Convertible.
func (c *Config) FromStackItem(item stackitem.Item) error {
	arr, err := common.ItemToStruct(item, 3)
	if err != nil {
		return fmt.Errorf("rate limit config: %w", err)
	}

	if c.MaxSubmissions, err = common.ItemToUint64(arr[0]); err != nil {
		return fmt.Errorf("max submissions: %w", err)
	}
	if c.WindowSeconds, err = common.ItemToUint64(arr[1]); err != nil {
		return fmt.Errorf("window: %w", err)
	}
	if c.Enabled, err = common.ItemToBool(arr[2]); err != nil {
		return fmt.Errorf("enabled flag: %w", err)
	}

	return nil
}

// Validate checks that enabled configuration allows at least one submission
// within a non-empty window.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.MaxSubmissions == 0 {
		return fmt.Errorf("%w: zero max submissions", common.ErrInvalidArgument)
	}
	if c.MaxSubmissions > MaxLogSize {
		return fmt.Errorf("%w: max submissions %d exceeds %d", common.ErrInvalidArgument, c.MaxSubmissions, MaxLogSize)
	}
	if c.WindowSeconds == 0 {
		return fmt.Errorf("%w: zero window", common.ErrInvalidArgument)
	}
	return nil
}

// SetConfig saves rate limit configuration. Submission logs are kept.
func SetConfig(ic *host.Context, c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return common.SetSerialized(ic, common.NewKey(configKey), &c)
}

// GetConfig returns rate limit configuration or nil if it is not set.
func GetConfig(ic *host.Context) (*Config, error) {
	var c Config

	ok, err := common.GetSerialized(ic, common.NewKey(configKey), &c)
	if err != nil || !ok {
		return nil, err
	}

	return &c, nil
}

func logKey(business util.Uint160) common.Key {
	return common.NewKey(logPrefix).WithAccount(business)
}

// prune returns timestamps not older than now - window.
func prune(log []uint64, now, window uint64) []uint64 {
	var cutoff uint64
	if now > window {
		cutoff = now - window
	}

	res := log[:0]
	for _, ts := range log {
		if ts >= cutoff {
			res = append(res, ts)
		}
	}

	return res
}

func window(ic *host.Context, business util.Uint160) (*Config, []uint64, error) {
	cfg, err := GetConfig(ic)
	if err != nil || cfg == nil {
		return nil, nil, err
	}

	log, err := common.GetUint64s(ic, logKey(business))
	if err != nil {
		return nil, nil, err
	}

	return cfg, prune(log, ic.Time(), cfg.WindowSeconds), nil
}

// Count returns number of submissions of the business within the current
// window. Without configuration nothing is logged and Count returns 0.
func Count(ic *host.Context, business util.Uint160) (uint64, error) {
	_, log, err := window(ic, business)
	return uint64(len(log)), err
}

// Check checks that the business may make n more submissions now. It doesn't
// modify the storage.
func Check(ic *host.Context, business util.Uint160, n int) error {
	cfg, log, err := window(ic, business)
	if err != nil {
		return err
	}

	if cfg == nil || !cfg.Enabled {
		return nil
	}

	if uint64(len(log))+uint64(n) > cfg.MaxSubmissions {
		return fmt.Errorf("%w: %s made %d of %d submissions within %ds, %d more requested",
			common.ErrRateLimitExceeded, address.Uint160ToString(business),
			len(log), cfg.MaxSubmissions, cfg.WindowSeconds, n)
	}

	return nil
}

// Record checks the limit and logs n submissions of the business at the
// current time. Nothing is logged until the limit is configured. While the
// limit is disabled, the log is still pruned by window and keeps at most
// MaxLogSize latest timestamps.
func Record(ic *host.Context, business util.Uint160, n int) error {
	err := Check(ic, business, n)
	if err != nil {
		return err
	}

	cfg, log, err := window(ic, business)
	if err != nil || cfg == nil {
		return err
	}

	now := ic.Time()
	for i := 0; i < n; i++ {
		log = append(log, now)
	}

	if len(log) > MaxLogSize {
		log = log[len(log)-MaxLogSize:]
	}

	return common.PutUint64s(ic, logKey(business), log)
}
