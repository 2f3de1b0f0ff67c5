package attestation

import (
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/common"
	"github.com/nspcc-dev/revenue-attestation/contracts/access"
	"github.com/nspcc-dev/revenue-attestation/contracts/fee"
	"github.com/nspcc-dev/revenue-attestation/contracts/multisig"
	"github.com/nspcc-dev/revenue-attestation/contracts/ratelimit"
	"github.com/nspcc-dev/revenue-attestation/contracts/replay"
	"github.com/nspcc-dev/revenue-attestation/contracts/rotation"
	"github.com/nspcc-dev/revenue-attestation/host"
)

// GrantRole adds roles to the account. Only admin can grant roles.
func (c *Contract) GrantRole(ic *host.Context, caller util.Uint160, nonce uint64, acc util.Uint160, r access.Role) error {
	err := adminCall(ic, caller, nonce)
	if err != nil {
		return err
	}

	err = access.Grant(ic, acc, r)
	if err != nil {
		return err
	}

	return ic.Notify(notifyRoleGranted, acc, big.NewInt(int64(r)))
}

// RevokeRole removes roles from the account. Only admin can revoke roles.
func (c *Contract) RevokeRole(ic *host.Context, caller util.Uint160, nonce uint64, acc util.Uint160, r access.Role) error {
	err := adminCall(ic, caller, nonce)
	if err != nil {
		return err
	}

	err = access.Revoke(ic, acc, r)
	if err != nil {
		return err
	}

	return ic.Notify(notifyRoleRevoked, acc, big.NewInt(int64(r)))
}

// Pause stops submissions, revocations, migrations and disputes. It can be
// done by the admin or an operator.
func (c *Contract) Pause(ic *host.Context, caller util.Uint160, nonce uint64) error {
	err := authenticate(ic, caller, replay.ChannelAdmin, nonce)
	if err != nil {
		return err
	}

	err = access.RequireAnyRole(ic, caller, access.Admin|access.Operator)
	if err != nil {
		return err
	}

	err = access.SetPaused(ic, true)
	if err != nil {
		return err
	}

	return ic.Notify(notifyPaused, caller)
}

// Unpause resumes the paused contract. Only admin can unpause it.
func (c *Contract) Unpause(ic *host.Context, caller util.Uint160, nonce uint64) error {
	err := adminCall(ic, caller, nonce)
	if err != nil {
		return err
	}

	err = access.SetPaused(ic, false)
	if err != nil {
		return err
	}

	return ic.Notify(notifyUnpaused, caller)
}

// SetFeeConfig sets fee configuration.
func (c *Contract) SetFeeConfig(ic *host.Context, caller util.Uint160, nonce uint64, cfg fee.Config) error {
	err := adminCall(ic, caller, nonce)
	if err != nil {
		return err
	}

	err = fee.SetConfig(ic, cfg)
	if err != nil {
		return err
	}

	return ic.Notify(notifyFeeConfigUpdated, cfg.Token, cfg.Collector, cfg.BaseFee, cfg.Enabled)
}

// SetTierDiscount sets discount of the pricing tier in basis points.
func (c *Contract) SetTierDiscount(ic *host.Context, caller util.Uint160, nonce uint64, tier, bps uint32) error {
	err := adminCall(ic, caller, nonce)
	if err != nil {
		return err
	}

	err = fee.SetTierDiscount(ic, tier, bps)
	if err != nil {
		return err
	}

	return ic.Notify(notifyTierDiscountUpdated, int64(tier), int64(bps))
}

// SetVolumeBrackets replaces volume discount brackets.
func (c *Contract) SetVolumeBrackets(ic *host.Context, caller util.Uint160, nonce uint64, b fee.Brackets) error {
	err := adminCall(ic, caller, nonce)
	if err != nil {
		return err
	}

	err = fee.SetVolumeBrackets(ic, b)
	if err != nil {
		return err
	}

	item, err := b.ToStackItem()
	if err != nil {
		return err
	}

	return ic.Notify(notifyVolumeBracketsUpdated, item)
}

// SetBusinessTier sets pricing tier of the business.
func (c *Contract) SetBusinessTier(ic *host.Context, caller util.Uint160, nonce uint64, business util.Uint160, tier uint32) error {
	err := adminCall(ic, caller, nonce)
	if err != nil {
		return err
	}

	err = fee.SetBusinessTier(ic, business, tier)
	if err != nil {
		return err
	}

	return ic.Notify(notifyBusinessTierUpdated, business, int64(tier))
}

// SetRateLimit sets submission rate limit.
func (c *Contract) SetRateLimit(ic *host.Context, caller util.Uint160, nonce uint64, cfg ratelimit.Config) error {
	err := adminCall(ic, caller, nonce)
	if err != nil {
		return err
	}

	err = ratelimit.SetConfig(ic, cfg)
	if err != nil {
		return err
	}

	return ic.Notify(notifyRateLimitUpdated, new(big.Int).SetUint64(cfg.MaxSubmissions),
		new(big.Int).SetUint64(cfg.WindowSeconds), cfg.Enabled)
}

// SetupMultisig sets initial multisig owners and threshold. It can be done
// once, later changes are made by multisig proposals.
func (c *Contract) SetupMultisig(ic *host.Context, caller util.Uint160, nonce uint64, owners []util.Uint160, threshold uint32) error {
	err := adminCall(ic, caller, nonce)
	if err != nil {
		return err
	}

	err = multisig.Setup(ic, owners, threshold)
	if err != nil {
		return err
	}

	return ic.Notify(notifyMultisigConfigured, common.AccountsToItem(owners), int64(threshold))
}

// governedByMultisig denies the admin changes of governance parameters once
// the multisig is set up, they require a proposal from then on.
func governedByMultisig(ic *host.Context, what string) error {
	if multisig.IsSetUp(ic) {
		return fmt.Errorf("%w: %s is governed by multisig, use a proposal", common.ErrUnauthorized, what)
	}
	return nil
}

// SetProposalTTL sets lifetime of new multisig proposals in seconds. It is
// allowed before the multisig is set up only.
func (c *Contract) SetProposalTTL(ic *host.Context, caller util.Uint160, nonce uint64, ttl uint64) error {
	err := adminCall(ic, caller, nonce)
	if err != nil {
		return err
	}

	err = governedByMultisig(ic, "proposal lifetime")
	if err != nil {
		return err
	}

	return multisig.SetProposalTTL(ic, ttl)
}

// SetRotationConfig sets key rotation timings. It is allowed before the
// multisig is set up only.
func (c *Contract) SetRotationConfig(ic *host.Context, caller util.Uint160, nonce uint64, cfg rotation.Config) error {
	err := adminCall(ic, caller, nonce)
	if err != nil {
		return err
	}

	err = governedByMultisig(ic, "rotation config")
	if err != nil {
		return err
	}

	return rotation.SetConfig(ic, cfg)
}
