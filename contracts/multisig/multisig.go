package multisig

import (
	"fmt"
	"math"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/common"
	"github.com/nspcc-dev/revenue-attestation/contracts/access"
	"github.com/nspcc-dev/revenue-attestation/host"
	"go.uber.org/zap"
)

const (
	ownersKey      = 'o'
	thresholdKey   = 'm'
	ttlKey         = 'l'
	counterKey     = 'i'
	proposalPrefix = 'g'
)

const (
	// MaxOwners is a maximum number of multisig owners.
	MaxOwners = 10
	// DefaultProposalTTL is a default lifetime of the proposal in seconds.
	DefaultProposalTTL = 7 * 24 * 60 * 60
	// MinProposalTTL is a minimum lifetime of the proposal in seconds.
	MinProposalTTL = 60 * 60
	// MaxProposalTTL is a maximum lifetime of the proposal in seconds.
	MaxProposalTTL = 90 * 24 * 60 * 60
)

// Hooks perform actions implemented outside of the multisig. They are
// called before the proposal is marked executed. A nil hook makes the
// corresponding proposal fail on execution.
type Hooks struct {
	// EmergencyRotate replaces the admin as a result of the
	// EmergencyRotateAdmin proposal.
	EmergencyRotate func(ic *host.Context, proposalID uint64, newAdmin util.Uint160) error
	// SetRotationConfig applies the SetRotationConfig proposal.
	SetRotationConfig func(ic *host.Context, timelock, window, cooldown uint64) error
}

func proposalKey(id uint64) common.Key {
	return common.NewKey(proposalPrefix).WithID(id)
}

// ValidateOwners checks the owner set and the threshold.
func ValidateOwners(owners []util.Uint160, threshold uint32) error {
	if len(owners) == 0 || len(owners) > MaxOwners {
		return fmt.Errorf("%w: %d owners, allowed [1, %d]", common.ErrInvalidOwners, len(owners), MaxOwners)
	}

	for i := range owners {
		if owners[i].Equals(util.Uint160{}) {
			return fmt.Errorf("%w: zero owner #%d", common.ErrInvalidOwners, i)
		}
		if common.IndexOfAccount(owners[:i], owners[i]) >= 0 {
			return fmt.Errorf("%w: duplicate owner %s", common.ErrInvalidOwners, address.Uint160ToString(owners[i]))
		}
	}

	if threshold == 0 || int(threshold) > len(owners) {
		return fmt.Errorf("%w: %d of %d owners", common.ErrInvalidThreshold, threshold, len(owners))
	}

	return nil
}

// Setup sets initial owners and threshold. It can be done once.
func Setup(ic *host.Context, owners []util.Uint160, threshold uint32) error {
	if common.Has(ic, common.NewKey(ownersKey)) {
		return fmt.Errorf("%w: multisig owners", common.ErrAlreadyInitialized)
	}

	err := ValidateOwners(owners, threshold)
	if err != nil {
		return err
	}

	err = common.PutAccounts(ic, common.NewKey(ownersKey), owners)
	if err != nil {
		return err
	}

	return common.PutUint64(ic, common.NewKey(thresholdKey), uint64(threshold))
}

// IsSetUp checks whether multisig owners are set.
func IsSetUp(ic *host.Context) bool {
	return common.Has(ic, common.NewKey(ownersKey))
}

// Owners returns current owners.
func Owners(ic *host.Context) ([]util.Uint160, error) {
	return common.GetAccounts(ic, common.NewKey(ownersKey))
}

// Threshold returns current approval threshold.
func Threshold(ic *host.Context) (uint32, error) {
	v, err := common.GetUint64(ic, common.NewKey(thresholdKey))
	return uint32(v), err
}

func requireOwner(ic *host.Context, acc util.Uint160) ([]util.Uint160, error) {
	owners, err := Owners(ic)
	if err != nil {
		return nil, err
	}

	if len(owners) == 0 {
		return nil, fmt.Errorf("%w: multisig owners", common.ErrNotInitialized)
	}

	if !common.ContainsAccount(owners, acc) {
		return nil, fmt.Errorf("%w: %s", common.ErrNotOwner, address.Uint160ToString(acc))
	}

	return owners, nil
}

// ProposalTTL returns lifetime of new proposals in seconds.
func ProposalTTL(ic *host.Context) (uint64, error) {
	k := common.NewKey(ttlKey)
	if !common.Has(ic, k) {
		return DefaultProposalTTL, nil
	}
	return common.GetUint64(ic, k)
}

// ValidateProposalTTL checks that ttl is within [MinProposalTTL, MaxProposalTTL].
func ValidateProposalTTL(ttl uint64) error {
	if ttl < MinProposalTTL || ttl > MaxProposalTTL {
		return fmt.Errorf("%w: proposal lifetime %ds, allowed [%d, %d]",
			common.ErrInvalidArgument, ttl, MinProposalTTL, MaxProposalTTL)
	}
	return nil
}

// SetProposalTTL sets lifetime of new proposals in seconds. Existing
// proposals keep their expiration time.
func SetProposalTTL(ic *host.Context, ttl uint64) error {
	err := ValidateProposalTTL(ttl)
	if err != nil {
		return err
	}
	return common.PutUint64(ic, common.NewKey(ttlKey), ttl)
}

// Count returns number of created proposals, it is the identifier of the
// next one.
func Count(ic *host.Context) (uint64, error) {
	return common.GetUint64(ic, common.NewKey(counterKey))
}

// Get returns proposal by its identifier or nil if there is no such proposal.
// Pending proposals past their expiration are returned with Expired status.
func Get(ic *host.Context, id uint64) (*Proposal, error) {
	var p Proposal

	ok, err := common.GetSerialized(ic, proposalKey(id), &p)
	if err != nil || !ok {
		return nil, err
	}

	if p.Status == StatusPending && p.IsExpired(ic.Time()) {
		p.Status = StatusExpired
	}

	return &p, nil
}

// loadPending returns proposal which can be approved, rejected or executed.
func loadPending(ic *host.Context, id uint64) (*Proposal, error) {
	p, err := Get(ic, id)
	if err != nil {
		return nil, err
	}

	if p == nil {
		return nil, fmt.Errorf("%w: proposal #%d", common.ErrNotFound, id)
	}

	switch p.Status {
	case StatusPending:
		return p, nil
	case StatusExpired:
		return nil, fmt.Errorf("%w: proposal #%d at %d", common.ErrExpired, id, p.Expiry)
	default:
		return nil, fmt.Errorf("%w: proposal #%d is %s", common.ErrNotPending, id, p.Status)
	}
}

func save(ic *host.Context, p *Proposal) error {
	return common.SetSerialized(ic, proposalKey(p.ID), p)
}

// Create creates new proposal approved by the proposer.
func Create(ic *host.Context, proposer util.Uint160, a Action) (*Proposal, error) {
	_, err := requireOwner(ic, proposer)
	if err != nil {
		return nil, err
	}

	err = a.Validate()
	if err != nil {
		return nil, err
	}

	ttl, err := ProposalTTL(ic)
	if err != nil {
		return nil, err
	}

	id, err := Count(ic)
	if err != nil {
		return nil, err
	}

	now := ic.Time()
	if ttl > math.MaxUint64-now {
		return nil, fmt.Errorf("%w: proposal lifetime %ds overflows at %d", common.ErrInvalidArgument, ttl, now)
	}

	p := &Proposal{
		ID:        id,
		Action:    a,
		Proposer:  proposer,
		Status:    StatusPending,
		Approvals: []util.Uint160{proposer},
		CreatedAt: now,
		Expiry:    now + ttl,
	}

	err = save(ic, p)
	if err != nil {
		return nil, err
	}

	err = common.PutUint64(ic, common.NewKey(counterKey), id+1)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Approve adds approval of the owner to the pending proposal.
func Approve(ic *host.Context, owner util.Uint160, id uint64) (*Proposal, error) {
	_, err := requireOwner(ic, owner)
	if err != nil {
		return nil, err
	}

	p, err := loadPending(ic, id)
	if err != nil {
		return nil, err
	}

	var added bool

	p.Approvals, added = common.AddAccount(p.Approvals, owner)
	if !added {
		return nil, fmt.Errorf("%w: proposal #%d by %s", common.ErrAlreadyApproved, id, address.Uint160ToString(owner))
	}

	return p, save(ic, p)
}

// Reject rejects the pending proposal. The caller must be the proposer or
// an owner.
func Reject(ic *host.Context, caller util.Uint160, id uint64) (*Proposal, error) {
	p, err := loadPending(ic, id)
	if err != nil {
		return nil, err
	}

	if !caller.Equals(p.Proposer) {
		_, err = requireOwner(ic, caller)
		if err != nil {
			return nil, err
		}
	}

	p.Status = StatusRejected

	return p, save(ic, p)
}

// Expire stores Expired status of the stale pending proposal. Anyone can do
// it.
func Expire(ic *host.Context, id uint64) (*Proposal, error) {
	var p Proposal

	ok, err := common.GetSerialized(ic, proposalKey(id), &p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: proposal #%d", common.ErrNotFound, id)
	}

	if p.Status != StatusPending {
		return nil, fmt.Errorf("%w: proposal #%d is %s", common.ErrNotPending, id, p.Status)
	}

	if !p.IsExpired(ic.Time()) {
		return nil, fmt.Errorf("%w: proposal #%d expires at %d", common.ErrNotExpired, id, p.Expiry)
	}

	p.Status = StatusExpired

	return &p, save(ic, &p)
}

// approvals returns number of approvals made by current owners.
func approvals(ic *host.Context, p *Proposal) (int, uint32, error) {
	owners, err := Owners(ic)
	if err != nil {
		return 0, 0, err
	}

	threshold, err := Threshold(ic)
	if err != nil {
		return 0, 0, err
	}

	return common.CountAccounts(p.Approvals, owners), threshold, nil
}

// VerifyQuorum checks that the proposal is pending, not expired, has the
// given action and is approved by at least threshold current owners.
func VerifyQuorum(ic *host.Context, id uint64, a Action) error {
	p, err := loadPending(ic, id)
	if err != nil {
		return err
	}

	if !p.Action.Equals(a) {
		return fmt.Errorf("%w: proposal #%d action is %s, not %s", common.ErrInvalidArgument, id, p.Action, a)
	}

	n, threshold, err := approvals(ic, p)
	if err != nil {
		return err
	}

	if n < int(threshold) {
		return fmt.Errorf("%w: proposal #%d has %d of %d approvals", common.ErrNotApproved, id, n, threshold)
	}

	return nil
}

// Execute performs the action of the approved proposal and marks it
// executed. The caller must be an owner.
func Execute(ic *host.Context, caller util.Uint160, id uint64, hooks Hooks) (*Proposal, error) {
	_, err := requireOwner(ic, caller)
	if err != nil {
		return nil, err
	}

	p, err := loadPending(ic, id)
	if err != nil {
		return nil, err
	}

	err = VerifyQuorum(ic, id, p.Action)
	if err != nil {
		return nil, err
	}

	err = perform(ic, p, hooks)
	if err != nil {
		return nil, fmt.Errorf("proposal #%d: %s: %w", id, p.Action, err)
	}

	p.Status = StatusExecuted

	err = save(ic, p)
	if err != nil {
		return nil, err
	}

	ic.Logger().Info("multisig proposal executed",
		zap.Uint64("id", id),
		zap.Stringer("action", p.Action),
		zap.Int("approvals", len(p.Approvals)))

	return p, nil
}

func perform(ic *host.Context, p *Proposal, hooks Hooks) error {
	a := p.Action

	switch a.Kind {
	case ActionPause:
		return access.SetPaused(ic, true)
	case ActionUnpause:
		return access.SetPaused(ic, false)
	case ActionGrantRole:
		return access.Grant(ic, a.Account, a.Role)
	case ActionRevokeRole:
		return access.Revoke(ic, a.Account, a.Role)
	case ActionAddOwner:
		return addOwner(ic, a.Account)
	case ActionRemoveOwner:
		return removeOwner(ic, a.Account)
	case ActionChangeThreshold:
		return changeThreshold(ic, a.Threshold)
	case ActionEmergencyRotateAdmin:
		if hooks.EmergencyRotate == nil {
			return fmt.Errorf("%w: emergency rotation is not supported", common.ErrInvalidArgument)
		}
		return hooks.EmergencyRotate(ic, p.ID, a.Account)
	case ActionSetProposalTTL:
		return SetProposalTTL(ic, a.Params[0])
	case ActionSetRotationConfig:
		if hooks.SetRotationConfig == nil {
			return fmt.Errorf("%w: rotation is not supported", common.ErrInvalidArgument)
		}
		return hooks.SetRotationConfig(ic, a.Params[0], a.Params[1], a.Params[2])
	default:
		return fmt.Errorf("%w: unknown action %d", common.ErrInvalidArgument, a.Kind)
	}
}

func addOwner(ic *host.Context, acc util.Uint160) error {
	owners, err := Owners(ic)
	if err != nil {
		return err
	}

	threshold, err := Threshold(ic)
	if err != nil {
		return err
	}

	owners, added := common.AddAccount(owners, acc)
	if !added {
		return fmt.Errorf("%w: %s is already an owner", common.ErrInvalidOwners, address.Uint160ToString(acc))
	}

	err = ValidateOwners(owners, threshold)
	if err != nil {
		return err
	}

	return common.PutAccounts(ic, common.NewKey(ownersKey), owners)
}

func removeOwner(ic *host.Context, acc util.Uint160) error {
	owners, err := Owners(ic)
	if err != nil {
		return err
	}

	threshold, err := Threshold(ic)
	if err != nil {
		return err
	}

	owners, removed := common.RemoveAccount(owners, acc)
	if !removed {
		return fmt.Errorf("%w: %s is not an owner", common.ErrInvalidOwners, address.Uint160ToString(acc))
	}

	err = ValidateOwners(owners, threshold)
	if err != nil {
		return err
	}

	return common.PutAccounts(ic, common.NewKey(ownersKey), owners)
}

func changeThreshold(ic *host.Context, threshold uint32) error {
	owners, err := Owners(ic)
	if err != nil {
		return err
	}

	err = ValidateOwners(owners, threshold)
	if err != nil {
		return err
	}

	return common.PutUint64(ic, common.NewKey(thresholdKey), uint64(threshold))
}
