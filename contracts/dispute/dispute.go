package dispute

import (
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/common"
	"github.com/nspcc-dev/revenue-attestation/contracts/access"
	"github.com/nspcc-dev/revenue-attestation/contracts/records"
	"github.com/nspcc-dev/revenue-attestation/host"
)

const (
	counterKey         = 'd'
	disputePrefix      = 'D'
	byKeyPrefix        = 'K'
	byChallengerPrefix = 'C'
	openPrefix         = 'O'
)

const (
	// MaxEvidenceLength is a maximum length of the dispute evidence in bytes.
	MaxEvidenceLength = 1024
	// MaxNotesLength is a maximum length of the resolution notes in bytes.
	MaxNotesLength = 1024
)

func disputeKey(id uint64) common.Key {
	return common.NewKey(disputePrefix).WithID(id)
}

func byKeyKey(business util.Uint160, period string) common.Key {
	return common.NewKey(byKeyPrefix).WithAccount(business).WithPeriod(period)
}

func byChallengerKey(challenger util.Uint160) common.Key {
	return common.NewKey(byChallengerPrefix).WithAccount(challenger)
}

func openKey(challenger, business util.Uint160, period string) common.Key {
	return common.NewKey(openPrefix).WithAccount(challenger).WithTarget(business).WithPeriod(period)
}

// Get returns dispute by its identifier or nil if there is no such dispute.
func Get(ic *host.Context, id uint64) (*Dispute, error) {
	var d Dispute

	ok, err := common.GetSerialized(ic, disputeKey(id), &d)
	if err != nil || !ok {
		return nil, err
	}

	return &d, nil
}

func load(ic *host.Context, id uint64) (*Dispute, error) {
	d, err := Get(ic, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("%w: dispute #%d", common.ErrNotFound, id)
	}
	return d, nil
}

// Count returns number of opened disputes, it is the identifier of the next
// dispute.
func Count(ic *host.Context) (uint64, error) {
	return common.GetUint64(ic, common.NewKey(counterKey))
}

// ByAttestation returns identifiers of disputes of the attestation in
// ascending order.
func ByAttestation(ic *host.Context, business util.Uint160, period string) ([]uint64, error) {
	return common.FindIDs(ic, byKeyKey(business, period))
}

// ByChallenger returns identifiers of disputes opened by the challenger in
// ascending order.
func ByChallenger(ic *host.Context, challenger util.Uint160) ([]uint64, error) {
	return common.FindIDs(ic, byChallengerKey(challenger))
}

// Open opens new dispute of the existing attestation.
func Open(ic *host.Context, challenger, business util.Uint160, period string, typ Type, evidence string) (*Dispute, error) {
	if err := typ.Validate(); err != nil {
		return nil, err
	}

	if len(evidence) > MaxEvidenceLength {
		return nil, fmt.Errorf("%w: evidence is longer than %d bytes", common.ErrInvalidArgument, MaxEvidenceLength)
	}

	if !records.Exists(ic, business, period) {
		return nil, fmt.Errorf("%w: attestation of %s for period '%s'",
			common.ErrNotFound, address.Uint160ToString(business), period)
	}

	mk := openKey(challenger, business, period)

	if common.Has(ic, mk) {
		open, err := common.GetUint64(ic, mk)
		if err != nil {
			return nil, err
		}

		return nil, fmt.Errorf("%w: dispute #%d by %s is open", common.ErrDuplicateDispute,
			open, address.Uint160ToString(challenger))
	}

	id, err := Count(ic)
	if err != nil {
		return nil, err
	}

	d := &Dispute{
		ID:         id,
		Challenger: challenger,
		Business:   business,
		Period:     period,
		Type:       typ,
		Evidence:   evidence,
		Status:     StatusOpen,
		OpenedAt:   ic.Time(),
	}

	err = common.SetSerialized(ic, disputeKey(id), d)
	if err != nil {
		return nil, err
	}

	err = common.PutUint64(ic, common.NewKey(counterKey), id+1)
	if err != nil {
		return nil, err
	}

	err = common.PutUint64(ic, mk, id)
	if err != nil {
		return nil, err
	}

	err = common.PutIndexID(ic, byKeyKey(business, period), id)
	if err != nil {
		return nil, err
	}

	err = common.PutIndexID(ic, byChallengerKey(challenger), id)
	if err != nil {
		return nil, err
	}

	return d, nil
}

// Resolve records decision on the open dispute. The resolver must hold ADMIN
// or OPERATOR role.
func Resolve(ic *host.Context, resolver util.Uint160, id uint64, outcome Outcome, notes string) (*Dispute, error) {
	err := access.RequireAnyRole(ic, resolver, access.Admin|access.Operator)
	if err != nil {
		return nil, err
	}

	if err := outcome.Validate(); err != nil {
		return nil, err
	}

	if len(notes) > MaxNotesLength {
		return nil, fmt.Errorf("%w: notes are longer than %d bytes", common.ErrInvalidArgument, MaxNotesLength)
	}

	d, err := load(ic, id)
	if err != nil {
		return nil, err
	}

	if d.Status != StatusOpen {
		return nil, fmt.Errorf("%w: dispute #%d is %s", common.ErrNotOpen, id, d.Status)
	}

	d.Status = StatusResolved
	d.Resolution = &Resolution{
		Resolver:   resolver,
		Outcome:    outcome,
		Notes:      notes,
		ResolvedAt: ic.Time(),
	}

	err = common.SetSerialized(ic, disputeKey(id), d)
	if err != nil {
		return nil, err
	}

	// challenger may open new dispute of the same attestation
	err = common.Delete(ic, openKey(d.Challenger, d.Business, d.Period))
	if err != nil {
		return nil, err
	}

	return d, nil
}

// Close closes the resolved dispute. The caller must be the challenger or
// the admin.
func Close(ic *host.Context, caller util.Uint160, id uint64) (*Dispute, error) {
	d, err := load(ic, id)
	if err != nil {
		return nil, err
	}

	if !caller.Equals(d.Challenger) {
		err = access.RequireRole(ic, caller, access.Admin)
		if err != nil {
			return nil, err
		}
	}

	if d.Status != StatusResolved {
		return nil, fmt.Errorf("%w: dispute #%d is %s", common.ErrNotResolved, id, d.Status)
	}

	d.Status = StatusClosed
	d.ClosedAt = ic.Time()

	err = common.SetSerialized(ic, disputeKey(id), d)
	if err != nil {
		return nil, err
	}

	return d, nil
}
