// Package config contains deployment configuration of the revenue attestation
// contract.
//
// Configuration is a YAML document. Accounts are NEO addresses, durations are
// duration strings like "48h". Example:
//
//	storage:
//	  Type: boltdb
//	  BoltDBOptions:
//	    FilePath: ./attestation.bolt
//	admin: NfgHwwTi3wHAS8aFAN243C5vGbkYDpqLHP
//	fee:
//	  enabled: true
//	  token: NiXgSLtmYRqXCi8KWBadxm3JtXcnTaR8pE
//	  collector: NbUgTSFvPmsRxmGeWpuuGeJUoRoi6PErcM
//	  base_fee: 1000000
//	  tier_discounts:
//	    1: 1000
//	  volume_brackets:
//	    - threshold: 100
//	      discount_bps: 500
//	rate_limit:
//	  enabled: true
//	  max_submissions: 10
//	  window: 1h
//	governance:
//	  owners: [NfgHwwTi3wHAS8aFAN243C5vGbkYDpqLHP]
//	  threshold: 1
//	  proposal_ttl: 168h
//	rotation:
//	  timelock: 48h
//	  confirmation_window: 168h
//	  cooldown: 24h
package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/contracts/fee"
	"github.com/nspcc-dev/revenue-attestation/contracts/multisig"
	"github.com/nspcc-dev/revenue-attestation/contracts/ratelimit"
	"github.com/nspcc-dev/revenue-attestation/contracts/rotation"
	"gopkg.in/yaml.v3"
)

// Config is a root of the configuration.
type Config struct {
	Storage    dbconfig.DBConfiguration `yaml:"storage"`
	Admin      string                   `yaml:"admin"`
	Fee        Fee                      `yaml:"fee"`
	RateLimit  RateLimit                `yaml:"rate_limit"`
	Governance Governance               `yaml:"governance"`
	Rotation   Rotation                 `yaml:"rotation"`
}

// Fee configures submission fees.
type Fee struct {
	Enabled        bool              `yaml:"enabled"`
	Token          string            `yaml:"token"`
	Collector      string            `yaml:"collector"`
	BaseFee        int64             `yaml:"base_fee"`
	TierDiscounts  map[uint32]uint32 `yaml:"tier_discounts"`
	VolumeBrackets []Bracket         `yaml:"volume_brackets"`
	// Pricing tiers of the businesses by their addresses.
	BusinessTiers map[string]uint32 `yaml:"business_tiers"`
}

// Bracket is a volume discount bracket.
type Bracket struct {
	Threshold   uint64 `yaml:"threshold"`
	DiscountBPS uint32 `yaml:"discount_bps"`
}

// RateLimit configures per-business submission rate.
type RateLimit struct {
	Enabled        bool          `yaml:"enabled"`
	MaxSubmissions uint64        `yaml:"max_submissions"`
	Window         time.Duration `yaml:"window"`
}

// Governance configures multisig owners. Empty owner list leaves multisig
// unset.
type Governance struct {
	Owners      []string      `yaml:"owners"`
	Threshold   uint32        `yaml:"threshold"`
	ProposalTTL time.Duration `yaml:"proposal_ttl"`
}

// Rotation configures admin key rotation timings.
type Rotation struct {
	Timelock           time.Duration `yaml:"timelock"`
	ConfirmationWindow time.Duration `yaml:"confirmation_window"`
	Cooldown           time.Duration `yaml:"cooldown"`
}

// Default returns configuration with in-memory storage, disabled fees and rate
// limit and default governance timings. Admin is not set.
func Default() *Config {
	rc := rotation.DefaultConfig()

	return &Config{
		Storage: dbconfig.DBConfiguration{Type: dbconfig.InMemoryDB},
		Governance: Governance{
			ProposalTTL: seconds(multisig.DefaultProposalTTL),
		},
		Rotation: Rotation{
			Timelock:           seconds(rc.Timelock),
			ConfirmationWindow: seconds(rc.ConfirmationWindow),
			Cooldown:           seconds(rc.Cooldown),
		},
	}
}

func seconds(v uint64) time.Duration {
	return time.Duration(v) * time.Second
}

// Load reads configuration from the YAML file. Values missing in the file are
// taken from Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes configuration from YAML and validates it.
func Parse(data []byte) (*Config, error) {
	c := Default()

	err := yaml.Unmarshal(data, c)
	if err != nil {
		return nil, fmt.Errorf("decode YAML: %w", err)
	}

	err = c.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return c, nil
}

var errMissingAdmin = errors.New("missing admin")

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case dbconfig.InMemoryDB, dbconfig.BoltDB, dbconfig.LevelDB:
	default:
		return fmt.Errorf("unsupported storage type '%s'", c.Storage.Type)
	}

	if c.Admin == "" {
		return errMissingAdmin
	}

	if _, err := c.AdminAccount(); err != nil {
		return err
	}

	if _, err := c.FeeConfig(); err != nil {
		return err
	}

	if _, err := c.TierDiscounts(); err != nil {
		return err
	}

	if _, err := c.VolumeBrackets(); err != nil {
		return err
	}

	if _, err := c.BusinessTiers(); err != nil {
		return err
	}

	if _, err := c.RateLimitConfig(); err != nil {
		return err
	}

	if _, err := c.ProposalTTL(); err != nil {
		return err
	}

	if _, err := c.RotationConfig(); err != nil {
		return err
	}

	owners, err := c.Owners()
	if err != nil {
		return err
	}

	if len(owners) > 0 {
		if err := multisig.ValidateOwners(owners, c.Governance.Threshold); err != nil {
			return fmt.Errorf("governance: %w", err)
		}
	}

	return nil
}

func parseAccount(name, s string) (util.Uint160, error) {
	acc, err := address.StringToUint160(s)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("%s: invalid address '%s': %w", name, s, err)
	}
	return acc, nil
}

func toSeconds(name string, d time.Duration) (uint64, error) {
	if d < 0 {
		return 0, fmt.Errorf("%s: negative duration %s", name, d)
	}
	if d%time.Second != 0 {
		return 0, fmt.Errorf("%s: duration %s is not a whole number of seconds", name, d)
	}
	return uint64(d / time.Second), nil
}

// AdminAccount returns the admin account.
func (c *Config) AdminAccount() (util.Uint160, error) {
	return parseAccount("admin", c.Admin)
}

// FeeConfig returns contract fee configuration. It returns nil if fees are
// disabled and the token is not set.
func (c *Config) FeeConfig() (*fee.Config, error) {
	if !c.Fee.Enabled && c.Fee.Token == "" {
		return nil, nil
	}

	token, err := parseAccount("fee token", c.Fee.Token)
	if err != nil {
		return nil, err
	}

	collector, err := parseAccount("fee collector", c.Fee.Collector)
	if err != nil {
		return nil, err
	}

	res := &fee.Config{
		Token:     token,
		Collector: collector,
		BaseFee:   big.NewInt(c.Fee.BaseFee),
		Enabled:   c.Fee.Enabled,
	}

	if err := res.Validate(); err != nil {
		return nil, fmt.Errorf("fee: %w", err)
	}

	return res, nil
}

// TierDiscounts returns discounts of the pricing tiers.
func (c *Config) TierDiscounts() (map[uint32]uint32, error) {
	for tier, bps := range c.Fee.TierDiscounts {
		if bps > fee.MaxBPS {
			return nil, fmt.Errorf("fee: tier %d discount %d bps exceeds %d", tier, bps, fee.MaxBPS)
		}
	}
	return c.Fee.TierDiscounts, nil
}

// VolumeBrackets returns volume discount brackets.
func (c *Config) VolumeBrackets() (fee.Brackets, error) {
	if len(c.Fee.VolumeBrackets) == 0 {
		return nil, nil
	}

	res := make(fee.Brackets, len(c.Fee.VolumeBrackets))
	for i, b := range c.Fee.VolumeBrackets {
		res[i] = fee.Bracket{Threshold: b.Threshold, DiscountBPS: b.DiscountBPS}
	}

	if err := res.Validate(); err != nil {
		return nil, fmt.Errorf("fee: %w", err)
	}

	return res, nil
}

// BusinessTiers returns pricing tiers of the businesses.
func (c *Config) BusinessTiers() (map[util.Uint160]uint32, error) {
	if len(c.Fee.BusinessTiers) == 0 {
		return nil, nil
	}

	res := make(map[util.Uint160]uint32, len(c.Fee.BusinessTiers))
	for addr, tier := range c.Fee.BusinessTiers {
		acc, err := parseAccount("fee business tier", addr)
		if err != nil {
			return nil, err
		}
		res[acc] = tier
	}

	return res, nil
}

// RateLimitConfig returns rate limit configuration. It returns nil if the
// limit is disabled and not configured.
func (c *Config) RateLimitConfig() (*ratelimit.Config, error) {
	if !c.RateLimit.Enabled && c.RateLimit.MaxSubmissions == 0 && c.RateLimit.Window == 0 {
		return nil, nil
	}

	window, err := toSeconds("rate limit window", c.RateLimit.Window)
	if err != nil {
		return nil, err
	}

	res := &ratelimit.Config{
		MaxSubmissions: c.RateLimit.MaxSubmissions,
		WindowSeconds:  window,
		Enabled:        c.RateLimit.Enabled,
	}

	if err := res.Validate(); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	return res, nil
}

// Owners returns initial multisig owners.
func (c *Config) Owners() ([]util.Uint160, error) {
	res := make([]util.Uint160, len(c.Governance.Owners))

	for i := range c.Governance.Owners {
		acc, err := parseAccount(fmt.Sprintf("governance owner #%d", i), c.Governance.Owners[i])
		if err != nil {
			return nil, err
		}
		res[i] = acc
	}

	return res, nil
}

// ProposalTTL returns lifetime of the multisig proposals in seconds.
func (c *Config) ProposalTTL() (uint64, error) {
	ttl, err := toSeconds("governance proposal TTL", c.Governance.ProposalTTL)
	if err != nil {
		return 0, err
	}
	if err := multisig.ValidateProposalTTL(ttl); err != nil {
		return 0, fmt.Errorf("governance: %w", err)
	}
	return ttl, nil
}

// RotationConfig returns key rotation timings.
func (c *Config) RotationConfig() (rotation.Config, error) {
	var (
		res rotation.Config
		err error
	)

	if res.Timelock, err = toSeconds("rotation timelock", c.Rotation.Timelock); err != nil {
		return res, err
	}
	if res.ConfirmationWindow, err = toSeconds("rotation confirmation window", c.Rotation.ConfirmationWindow); err != nil {
		return res, err
	}
	if res.Cooldown, err = toSeconds("rotation cooldown", c.Rotation.Cooldown); err != nil {
		return res, err
	}

	if err := res.Validate(); err != nil {
		return res, fmt.Errorf("rotation: %w", err)
	}

	return res, nil
}
