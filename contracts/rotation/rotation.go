package rotation

import (
	"fmt"
	"math"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/common"
	"github.com/nspcc-dev/revenue-attestation/contracts/access"
	"github.com/nspcc-dev/revenue-attestation/contracts/multisig"
	"github.com/nspcc-dev/revenue-attestation/host"
	"go.uber.org/zap"
)

// HistoryCapacity is a number of the last completed rotations kept in the
// history.
const HistoryCapacity = 50

const (
	configKey         = 's'
	pendingKey        = 'k'
	historyKey        = 'y'
	counterKey        = 'z'
	lastCompletionKey = 'u'
)

// GetConfig returns rotation timings.
func GetConfig(ic *host.Context) (Config, error) {
	var c Config

	ok, err := common.GetSerialized(ic, common.NewKey(configKey), &c)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return DefaultConfig(), nil
	}

	return c, nil
}

// SetConfig sets rotation timings. The pending request keeps its timings.
func SetConfig(ic *host.Context, c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return common.SetSerialized(ic, common.NewKey(configKey), &c)
}

func storedPending(ic *host.Context) (*Request, error) {
	var r Request

	ok, err := common.GetSerialized(ic, common.NewKey(pendingKey), &r)
	if err != nil || !ok {
		return nil, err
	}

	return &r, nil
}

// Pending returns pending rotation request or nil if there is no live one.
func Pending(ic *host.Context) (*Request, error) {
	r, err := storedPending(ic)
	if err != nil || r == nil {
		return nil, err
	}

	if ic.Time() > r.ExpiresAt {
		return nil, nil
	}

	return r, nil
}

func requirePending(ic *host.Context) (*Request, error) {
	r, err := storedPending(ic)
	if err != nil {
		return nil, err
	}

	if r == nil {
		return nil, fmt.Errorf("%w: no key rotation requested", common.ErrNotPending)
	}

	if ic.Time() > r.ExpiresAt {
		return nil, fmt.Errorf("%w: key rotation request at %d", common.ErrExpired, r.ExpiresAt)
	}

	return r, nil
}

// Count returns number of completed rotations.
func Count(ic *host.Context) (uint64, error) {
	return common.GetUint64(ic, common.NewKey(counterKey))
}

// History returns last completed rotations, the oldest first.
func History(ic *host.Context) ([]Request, error) {
	var h history

	_, err := common.GetSerialized(ic, common.NewKey(historyKey), &h)

	return h, err
}

// Propose requests replacement of the current admin by newAdmin. The caller
// must be the current admin.
func Propose(ic *host.Context, caller, newAdmin util.Uint160) (*Request, error) {
	admin, err := access.GetAdmin(ic)
	if err != nil {
		return nil, err
	}

	if !caller.Equals(admin) {
		return nil, fmt.Errorf("%w: %s is not the admin", common.ErrUnauthorized, address.Uint160ToString(caller))
	}

	if newAdmin.Equals(admin) {
		return nil, common.ErrSameAdmin
	}

	if newAdmin.Equals(util.Uint160{}) {
		return nil, fmt.Errorf("%w: zero admin", common.ErrInvalidArgument)
	}

	pending, err := Pending(ic)
	if err != nil {
		return nil, err
	}

	if pending != nil {
		return nil, fmt.Errorf("%w: to %s until %d", common.ErrRotationPending,
			address.Uint160ToString(pending.NewAdmin), pending.ExpiresAt)
	}

	cfg, err := GetConfig(ic)
	if err != nil {
		return nil, err
	}

	n, err := Count(ic)
	if err != nil {
		return nil, err
	}

	now := ic.Time()

	if n > 0 {
		last, err := common.GetUint64(ic, common.NewKey(lastCompletionKey))
		if err != nil {
			return nil, err
		}

		if now < last || now-last < cfg.Cooldown {
			return nil, fmt.Errorf("%w: until %d", common.ErrCooldownActive, last+cfg.Cooldown)
		}
	}

	if cfg.Timelock+cfg.ConfirmationWindow > math.MaxUint64-now {
		return nil, fmt.Errorf("%w: rotation request expiry overflows at %d", common.ErrInvalidArgument, now)
	}

	r := &Request{
		OldAdmin:      admin,
		NewAdmin:      newAdmin,
		Status:        StatusPending,
		ProposedAt:    now,
		TimelockUntil: now + cfg.Timelock,
		ExpiresAt:     now + cfg.Timelock + cfg.ConfirmationWindow,
	}

	return r, common.SetSerialized(ic, common.NewKey(pendingKey), r)
}

// Confirm completes the pending rotation. The caller must be the proposed
// admin, the timelock must have elapsed.
func Confirm(ic *host.Context, caller util.Uint160) (*Request, error) {
	r, err := requirePending(ic)
	if err != nil {
		return nil, err
	}

	if !caller.Equals(r.NewAdmin) {
		return nil, fmt.Errorf("%w: %s is not the proposed admin", common.ErrUnauthorized, address.Uint160ToString(caller))
	}

	if ic.Time() < r.TimelockUntil {
		return nil, fmt.Errorf("%w: until %d", common.ErrTimelockActive, r.TimelockUntil)
	}

	admin, err := access.GetAdmin(ic)
	if err != nil {
		return nil, err
	}

	if !admin.Equals(r.OldAdmin) {
		return nil, fmt.Errorf("%w: admin has changed since the request", common.ErrNotPending)
	}

	err = common.Delete(ic, common.NewKey(pendingKey))
	if err != nil {
		return nil, err
	}

	return r, complete(ic, r)
}

// Cancel drops the pending rotation. The caller must be the proposer.
func Cancel(ic *host.Context, caller util.Uint160) (*Request, error) {
	r, err := Pending(ic)
	if err != nil {
		return nil, err
	}

	if r == nil {
		return nil, fmt.Errorf("%w: no key rotation requested", common.ErrNotPending)
	}

	if !caller.Equals(r.OldAdmin) {
		return nil, fmt.Errorf("%w: %s is not the proposer", common.ErrUnauthorized, address.Uint160ToString(caller))
	}

	r.Status = StatusCancelled

	return r, common.Delete(ic, common.NewKey(pendingKey))
}

// EmergencyRotate replaces the admin immediately as a result of the
// EmergencyRotateAdmin multisig proposal. The proposal must be pending and
// approved by the quorum of the current owners. Pending planned rotation is
// dropped.
func EmergencyRotate(ic *host.Context, proposalID uint64, newAdmin util.Uint160) (*Request, error) {
	err := multisig.VerifyQuorum(ic, proposalID, multisig.EmergencyRotateAdminAction(newAdmin))
	if err != nil {
		return nil, err
	}

	admin, err := access.GetAdmin(ic)
	if err != nil {
		return nil, err
	}

	if newAdmin.Equals(admin) {
		return nil, common.ErrSameAdmin
	}

	pending, err := storedPending(ic)
	if err != nil {
		return nil, err
	}

	if pending != nil {
		ic.Logger().Info("pending key rotation dropped by emergency rotation",
			zap.Stringer("proposed admin", pending.NewAdmin))

		err = common.Delete(ic, common.NewKey(pendingKey))
		if err != nil {
			return nil, err
		}
	}

	now := ic.Time()

	r := &Request{
		OldAdmin:      admin,
		NewAdmin:      newAdmin,
		ProposedAt:    now,
		TimelockUntil: now,
		ExpiresAt:     now,
		IsEmergency:   true,
	}

	return r, complete(ic, r)
}

func complete(ic *host.Context, r *Request) error {
	err := access.SetAdmin(ic, r.NewAdmin)
	if err != nil {
		return err
	}

	now := ic.Time()

	r.Status = StatusCompleted
	r.CompletedAt = now

	h, err := History(ic)
	if err != nil {
		return err
	}

	h = append(h, *r)
	if len(h) > HistoryCapacity {
		h = h[len(h)-HistoryCapacity:]
	}

	hh := history(h)

	err = common.SetSerialized(ic, common.NewKey(historyKey), &hh)
	if err != nil {
		return err
	}

	n, err := Count(ic)
	if err != nil {
		return err
	}

	err = common.PutUint64(ic, common.NewKey(counterKey), n+1)
	if err != nil {
		return err
	}

	err = common.PutUint64(ic, common.NewKey(lastCompletionKey), now)
	if err != nil {
		return err
	}

	ic.Logger().Info("admin rotated",
		zap.Stringer("old", r.OldAdmin),
		zap.Stringer("new", r.NewAdmin),
		zap.Bool("emergency", r.IsEmergency))

	return nil
}
