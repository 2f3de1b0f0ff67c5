package attestation

import (
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/common"
	"github.com/nspcc-dev/revenue-attestation/contracts/multisig"
	"github.com/nspcc-dev/revenue-attestation/contracts/replay"
	"github.com/nspcc-dev/revenue-attestation/contracts/rotation"
	"github.com/nspcc-dev/revenue-attestation/host"
)

// CreateProposal creates multisig proposal approved by the proposer.
func (c *Contract) CreateProposal(ic *host.Context, caller util.Uint160, nonce uint64, a multisig.Action) (*multisig.Proposal, error) {
	err := authenticate(ic, caller, replay.ChannelGovernance, nonce)
	if err != nil {
		return nil, err
	}

	if a.Kind == multisig.ActionSetRotationConfig && len(a.Params) == 3 {
		cfg := rotation.Config{Timelock: a.Params[0], ConfirmationWindow: a.Params[1], Cooldown: a.Params[2]}
		if err = cfg.Validate(); err != nil {
			return nil, err
		}
	}

	p, err := multisig.Create(ic, caller, a)
	if err != nil {
		return nil, err
	}

	item, err := a.ToStackItem()
	if err != nil {
		return nil, err
	}

	err = ic.Notify(notifyProposalCreated, new(big.Int).SetUint64(p.ID), caller, item, new(big.Int).SetUint64(p.Expiry))
	if err != nil {
		return nil, err
	}

	return p, nil
}

// ApproveProposal adds approval of the owner to the pending proposal.
func (c *Contract) ApproveProposal(ic *host.Context, caller util.Uint160, nonce uint64, id uint64) error {
	err := authenticate(ic, caller, replay.ChannelGovernance, nonce)
	if err != nil {
		return err
	}

	p, err := multisig.Approve(ic, caller, id)
	if err != nil {
		return err
	}

	return ic.Notify(notifyProposalApproved, new(big.Int).SetUint64(id), caller, int64(len(p.Approvals)))
}

// RejectProposal rejects the pending proposal. It can be done by the
// proposer or any owner.
func (c *Contract) RejectProposal(ic *host.Context, caller util.Uint160, nonce uint64, id uint64) error {
	err := authenticate(ic, caller, replay.ChannelGovernance, nonce)
	if err != nil {
		return err
	}

	_, err = multisig.Reject(ic, caller, id)
	if err != nil {
		return err
	}

	return ic.Notify(notifyProposalRejected, new(big.Int).SetUint64(id), caller)
}

// ExecuteProposal performs the action of the proposal approved by the quorum.
func (c *Contract) ExecuteProposal(ic *host.Context, caller util.Uint160, nonce uint64, id uint64) error {
	err := authenticate(ic, caller, replay.ChannelGovernance, nonce)
	if err != nil {
		return err
	}

	p, err := multisig.Execute(ic, caller, id, multisig.Hooks{
		EmergencyRotate:   c.emergencyRotate,
		SetRotationConfig: setRotationConfig,
	})
	if err != nil {
		return err
	}

	item, err := p.Action.ToStackItem()
	if err != nil {
		return err
	}

	err = ic.Notify(notifyProposalExecuted, new(big.Int).SetUint64(id), caller, item)
	if err != nil {
		return err
	}

	c.metrics.proposalExecuted(p.Action.Kind.String())
	if p.Action.Kind == multisig.ActionEmergencyRotateAdmin {
		c.metrics.keyRotated(true)
	}

	return nil
}

func setRotationConfig(ic *host.Context, timelock, window, cooldown uint64) error {
	return rotation.SetConfig(ic, rotation.Config{
		Timelock:           timelock,
		ConfirmationWindow: window,
		Cooldown:           cooldown,
	})
}

func (c *Contract) emergencyRotate(ic *host.Context, id uint64, newAdmin util.Uint160) error {
	r, err := rotation.EmergencyRotate(ic, id, newAdmin)
	if err != nil {
		return err
	}

	return ic.Notify(notifyEmergencyKeyRotation, r.OldAdmin, r.NewAdmin, new(big.Int).SetUint64(id))
}

// ExpireProposal marks stale pending proposal expired. Anyone can do it.
func (c *Contract) ExpireProposal(ic *host.Context, id uint64) error {
	_, err := multisig.Expire(ic, id)
	if err != nil {
		return err
	}

	return ic.Notify(notifyProposalExpired, new(big.Int).SetUint64(id))
}

// ProposeKeyRotation starts timelocked rotation of the admin key. Only the
// current admin can propose it.
func (c *Contract) ProposeKeyRotation(ic *host.Context, caller util.Uint160, nonce uint64, newAdmin util.Uint160) (*rotation.Request, error) {
	err := authenticate(ic, caller, replay.ChannelRotation, nonce)
	if err != nil {
		return nil, err
	}

	r, err := rotation.Propose(ic, caller, newAdmin)
	if err != nil {
		return nil, err
	}

	err = ic.Notify(notifyKeyRotationProposed, r.OldAdmin, r.NewAdmin,
		new(big.Int).SetUint64(r.TimelockUntil), new(big.Int).SetUint64(r.ExpiresAt))
	if err != nil {
		return nil, err
	}

	return r, nil
}

// ConfirmKeyRotation completes pending rotation after the timelock. Only the
// proposed admin can confirm it.
func (c *Contract) ConfirmKeyRotation(ic *host.Context, caller util.Uint160, nonce uint64) error {
	err := authenticate(ic, caller, replay.ChannelRotation, nonce)
	if err != nil {
		return err
	}

	r, err := rotation.Confirm(ic, caller)
	if err != nil {
		return err
	}

	err = ic.Notify(notifyKeyRotationConfirmed, r.OldAdmin, r.NewAdmin)
	if err != nil {
		return err
	}

	c.metrics.keyRotated(false)

	return nil
}

// CancelKeyRotation cancels pending rotation. Only the admin that proposed
// it can cancel it.
func (c *Contract) CancelKeyRotation(ic *host.Context, caller util.Uint160, nonce uint64) error {
	err := authenticate(ic, caller, replay.ChannelRotation, nonce)
	if err != nil {
		return err
	}

	r, err := rotation.Cancel(ic, caller)
	if err != nil {
		return err
	}

	return ic.Notify(notifyKeyRotationCancelled, r.OldAdmin, r.NewAdmin)
}

// GetNonce returns the nonce the actor must present on the next call of the
// channel.
func GetNonce(ic *host.Context, actor util.Uint160, ch replay.Channel) (uint64, error) {
	if ch < replay.ChannelAdmin || ch > replay.ChannelDispute {
		return 0, fmt.Errorf("%w: unknown nonce channel %d", common.ErrInvalidArgument, ch)
	}
	return replay.PeekNext(ic, actor, ch)
}
