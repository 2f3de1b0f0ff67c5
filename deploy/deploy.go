package deploy

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/common"
	"github.com/nspcc-dev/revenue-attestation/config"
	contract "github.com/nspcc-dev/revenue-attestation/contracts/attestation"
	"github.com/nspcc-dev/revenue-attestation/host"
	"github.com/nspcc-dev/revenue-attestation/rpc/attestation"
	"go.uber.org/zap"
)

// Prm groups all parameters of the contract deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Chain the contract is deployed to.
	Chain *host.Chain

	// Script hash the contract is registered with.
	Hash util.Uint160

	// Collaborators of the contract.
	Contract contract.Prm

	// Deployment configuration. Must be valid.
	Config *config.Config
}

// OpenChain opens the storage configured by cfg and returns the chain over it.
func OpenChain(cfg dbconfig.DBConfiguration, log *zap.Logger) (*host.Chain, error) {
	st, err := storage.NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Type, err)
	}

	return host.New(st, log), nil
}

// Deploy registers the revenue attestation contract on the chain and makes it
// ready to accept attestations according to the configuration.
//
// Deploy is repeatable over the same storage: initialized contract is
// updated if its data is of the previous version, multisig owners are set
// only once, other settings are applied every time.
//
// Summary of stages:
//  1. contract registration
//  2. initialization or update
//  3. fee configuration (fee config, tier discounts, volume brackets, business tiers)
//  4. rate limit
//  5. governance (multisig owners, proposal lifetime, rotation timings)
func Deploy(ctx context.Context, prm Prm) error {
	if prm.Config == nil {
		return errors.New("missing config")
	}

	log := prm.Logger
	if log == nil {
		log = zap.NewNop()
	}

	admin, err := prm.Config.AdminAccount()
	if err != nil {
		return err
	}

	err = prm.Chain.Register(prm.Hash, contract.New(prm.Hash, prm.Contract))
	if err != nil {
		return fmt.Errorf("register contract: %w", err)
	}

	log.Info("contract registered", zap.Stringer("hash", prm.Hash))

	d := &deployer{
		log: log,
		cfg: prm.Config,
		c:   attestation.New(prm.Chain, prm.Hash, admin),
	}

	for _, stage := range []struct {
		name string
		f    func() error
	}{
		{"initialization", d.initialize},
		{"fees", d.configureFees},
		{"rate limit", d.configureRateLimit},
		{"governance", d.configureGovernance},
	} {
		if err := ctx.Err(); err != nil {
			return err
		}

		log.Info("deployment stage started", zap.String("stage", stage.name))

		err = stage.f()
		if err != nil {
			return fmt.Errorf("%s: %w", stage.name, err)
		}
	}

	log.Info("contract successfully deployed",
		zap.Stringer("hash", prm.Hash), zap.String("admin", address.Uint160ToString(admin)))

	return nil
}

type deployer struct {
	log *zap.Logger
	cfg *config.Config
	c   *attestation.Contract
}

func (d *deployer) initialize() error {
	v, err := d.c.Version()
	if err != nil {
		return fmt.Errorf("get stored version: %w", err)
	}

	if v == 0 {
		err = d.c.Initialize()
		if err != nil {
			return fmt.Errorf("initialize contract: %w", err)
		}

		d.log.Info("contract initialized", zap.String("admin", address.Uint160ToString(d.c.Account())))

		return nil
	}

	admin, err := d.c.GetAdmin()
	if err != nil {
		return fmt.Errorf("get admin: %w", err)
	}

	if !admin.Equals(d.c.Account()) {
		return fmt.Errorf("configured admin %s differs from the actual one %s",
			address.Uint160ToString(d.c.Account()), address.Uint160ToString(admin))
	}

	if v >= common.Version {
		d.log.Info("contract is already initialized and up to date", zap.Uint64("version", v))
		return nil
	}

	err = d.c.Update()
	if err != nil {
		return fmt.Errorf("update contract data: %w", err)
	}

	d.log.Info("contract data updated", zap.Uint64("from", v), zap.Uint64("to", common.Version))

	return nil
}

func (d *deployer) configureFees() error {
	fc, err := d.cfg.FeeConfig()
	if err != nil {
		return err
	}

	if fc == nil {
		d.log.Info("fees are not configured, contract works in free mode")
		return nil
	}

	err = d.c.SetFeeConfig(*fc)
	if err != nil {
		return fmt.Errorf("set fee config: %w", err)
	}

	d.log.Info("fee config set",
		zap.String("token", address.Uint160ToString(fc.Token)),
		zap.Stringer("base fee", fc.BaseFee),
		zap.Bool("enabled", fc.Enabled))

	discounts, err := d.cfg.TierDiscounts()
	if err != nil {
		return err
	}

	tiers := make([]uint32, 0, len(discounts))
	for tier := range discounts {
		tiers = append(tiers, tier)
	}

	sort.Slice(tiers, func(i, j int) bool { return tiers[i] < tiers[j] })

	for _, tier := range tiers {
		err = d.c.SetTierDiscount(tier, discounts[tier])
		if err != nil {
			return fmt.Errorf("set discount of tier %d: %w", tier, err)
		}

		d.log.Debug("tier discount set", zap.Uint32("tier", tier), zap.Uint32("bps", discounts[tier]))
	}

	brackets, err := d.cfg.VolumeBrackets()
	if err != nil {
		return err
	}

	err = d.c.SetVolumeBrackets(brackets)
	if err != nil {
		return fmt.Errorf("set volume brackets: %w", err)
	}

	businessTiers, err := d.cfg.BusinessTiers()
	if err != nil {
		return err
	}

	for business, tier := range businessTiers {
		err = d.c.SetBusinessTier(business, tier)
		if err != nil {
			return fmt.Errorf("set tier of business %s: %w", address.Uint160ToString(business), err)
		}
	}

	d.log.Info("pricing configured",
		zap.Int("tiers", len(tiers)),
		zap.Int("volume brackets", len(brackets)),
		zap.Int("businesses", len(businessTiers)))

	return nil
}

func (d *deployer) configureRateLimit() error {
	rl, err := d.cfg.RateLimitConfig()
	if err != nil {
		return err
	}

	if rl == nil {
		d.log.Info("rate limit is not configured")
		return nil
	}

	err = d.c.SetRateLimit(*rl)
	if err != nil {
		return fmt.Errorf("set rate limit: %w", err)
	}

	d.log.Info("rate limit set",
		zap.Uint64("max submissions", rl.MaxSubmissions),
		zap.Uint64("window", rl.WindowSeconds),
		zap.Bool("enabled", rl.Enabled))

	return nil
}

func (d *deployer) configureGovernance() error {
	owners, err := d.cfg.Owners()
	if err != nil {
		return err
	}

	threshold, err := d.c.GetMultisigThreshold()
	if err != nil {
		return fmt.Errorf("get multisig threshold: %w", err)
	}

	if threshold > 0 {
		// proposal lifetime and rotation timings can only be changed by proposals now
		d.log.Info("multisig is already set up, skip governance configuration", zap.Uint32("threshold", threshold))
		return nil
	}

	ttl, err := d.cfg.ProposalTTL()
	if err != nil {
		return err
	}

	err = d.c.SetProposalTTL(ttl)
	if err != nil {
		return fmt.Errorf("set proposal TTL: %w", err)
	}

	rc, err := d.cfg.RotationConfig()
	if err != nil {
		return err
	}

	err = d.c.SetRotationConfig(rc)
	if err != nil {
		return fmt.Errorf("set rotation config: %w", err)
	}

	d.log.Info("governance configured",
		zap.Uint64("proposal TTL", ttl),
		zap.Uint64("rotation timelock", rc.Timelock),
		zap.Uint64("rotation window", rc.ConfirmationWindow),
		zap.Uint64("rotation cooldown", rc.Cooldown))

	if len(owners) == 0 {
		d.log.Info("multisig owners are not configured")
		return nil
	}

	err = d.c.SetupMultisig(owners, d.cfg.Governance.Threshold)
	if err != nil {
		return fmt.Errorf("setup multisig: %w", err)
	}

	d.log.Info("multisig set up", zap.Int("owners", len(owners)), zap.Uint32("threshold", d.cfg.Governance.Threshold))

	return nil
}
