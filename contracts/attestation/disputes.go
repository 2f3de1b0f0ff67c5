package attestation

import (
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/contracts/access"
	"github.com/nspcc-dev/revenue-attestation/contracts/dispute"
	"github.com/nspcc-dev/revenue-attestation/contracts/replay"
	"github.com/nspcc-dev/revenue-attestation/host"
)

// OpenDispute challenges the stored attestation. Any account can open a
// dispute, but only one open dispute of the attestation per challenger.
func (c *Contract) OpenDispute(ic *host.Context, caller util.Uint160, nonce uint64,
	business util.Uint160, period string, typ dispute.Type, evidence string) (uint64, error) {
	err := authenticate(ic, caller, replay.ChannelDispute, nonce)
	if err != nil {
		return 0, err
	}

	err = access.RequireNotPaused(ic)
	if err != nil {
		return 0, err
	}

	d, err := dispute.Open(ic, caller, business, period, typ, evidence)
	if err != nil {
		return 0, err
	}

	err = ic.Notify(notifyDisputeOpened, new(big.Int).SetUint64(d.ID), caller, business, period, int64(typ))
	if err != nil {
		return 0, err
	}

	c.metrics.dispute(dispute.StatusOpen.String())

	return d.ID, nil
}

// ResolveDispute records decision on the open dispute. It is done by the
// admin or an operator.
func (c *Contract) ResolveDispute(ic *host.Context, caller util.Uint160, nonce uint64,
	id uint64, outcome dispute.Outcome, notes string) error {
	err := authenticate(ic, caller, replay.ChannelDispute, nonce)
	if err != nil {
		return err
	}

	_, err = dispute.Resolve(ic, caller, id, outcome, notes)
	if err != nil {
		return err
	}

	err = ic.Notify(notifyDisputeResolved, new(big.Int).SetUint64(id), caller, int64(outcome))
	if err != nil {
		return err
	}

	c.metrics.dispute(dispute.StatusResolved.String())

	return nil
}

// CloseDispute closes the resolved dispute. It is done by the challenger or
// the admin.
func (c *Contract) CloseDispute(ic *host.Context, caller util.Uint160, nonce uint64, id uint64) error {
	err := authenticate(ic, caller, replay.ChannelDispute, nonce)
	if err != nil {
		return err
	}

	_, err = dispute.Close(ic, caller, id)
	if err != nil {
		return err
	}

	err = ic.Notify(notifyDisputeClosed, new(big.Int).SetUint64(id), caller)
	if err != nil {
		return err
	}

	c.metrics.dispute(dispute.StatusClosed.String())

	return nil
}
