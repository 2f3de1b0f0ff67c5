package multisig

import (
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/revenue-attestation/common"
	"github.com/nspcc-dev/revenue-attestation/contracts/access"
)

// ActionKind is a kind of the governance action.
type ActionKind uint8

// Governance actions.
const (
	ActionPause ActionKind = iota
	ActionUnpause
	ActionAddOwner
	ActionRemoveOwner
	ActionChangeThreshold
	ActionGrantRole
	ActionRevokeRole
	ActionEmergencyRotateAdmin
	ActionSetProposalTTL
	ActionSetRotationConfig
)

var actionNames = [...]string{
	"Pause",
	"Unpause",
	"AddOwner",
	"RemoveOwner",
	"ChangeThreshold",
	"GrantRole",
	"RevokeRole",
	"EmergencyRotateAdmin",
	"SetProposalTTL",
	"SetRotationConfig",
}

// String implements fmt.Stringer.
func (k ActionKind) String() string {
	if int(k) < len(actionNames) {
		return actionNames[k]
	}
	return fmt.Sprintf("Action#%d", k)
}

// Action is a governance action. Fields not used by the kind are zero.
type Action struct {
	Kind ActionKind
	// Target of AddOwner, RemoveOwner, GrantRole, RevokeRole and
	// EmergencyRotateAdmin.
	Account util.Uint160
	// Roles of GrantRole and RevokeRole.
	Role access.Role
	// New threshold of ChangeThreshold.
	Threshold uint32
	// Lifetime of SetProposalTTL, timelock, confirmation window and cooldown
	// of SetRotationConfig, all in seconds.
	Params []uint64
}

// PauseAction pauses the contract.
func PauseAction() Action { return Action{Kind: ActionPause} }

// UnpauseAction unpauses the contract.
func UnpauseAction() Action { return Action{Kind: ActionUnpause} }

// AddOwnerAction adds new owner.
func AddOwnerAction(acc util.Uint160) Action {
	return Action{Kind: ActionAddOwner, Account: acc}
}

// RemoveOwnerAction removes the owner.
func RemoveOwnerAction(acc util.Uint160) Action {
	return Action{Kind: ActionRemoveOwner, Account: acc}
}

// ChangeThresholdAction sets new threshold.
func ChangeThresholdAction(threshold uint32) Action {
	return Action{Kind: ActionChangeThreshold, Threshold: threshold}
}

// GrantRoleAction grants roles to the account.
func GrantRoleAction(acc util.Uint160, r access.Role) Action {
	return Action{Kind: ActionGrantRole, Account: acc, Role: r}
}

// RevokeRoleAction revokes roles from the account.
func RevokeRoleAction(acc util.Uint160, r access.Role) Action {
	return Action{Kind: ActionRevokeRole, Account: acc, Role: r}
}

// EmergencyRotateAdminAction replaces the admin immediately.
func EmergencyRotateAdminAction(newAdmin util.Uint160) Action {
	return Action{Kind: ActionEmergencyRotateAdmin, Account: newAdmin}
}

// SetProposalTTLAction sets lifetime of new proposals.
func SetProposalTTLAction(ttl uint64) Action {
	return Action{Kind: ActionSetProposalTTL, Params: []uint64{ttl}}
}

// SetRotationConfigAction sets key rotation timings.
func SetRotationConfigAction(timelock, window, cooldown uint64) Action {
	return Action{Kind: ActionSetRotationConfig, Params: []uint64{timelock, window, cooldown}}
}

func paramsNum(k ActionKind) int {
	switch k {
	case ActionSetProposalTTL:
		return 1
	case ActionSetRotationConfig:
		return 3
	default:
		return 0
	}
}

// Validate checks action fields regardless of the contract state. Rotation
// timings are checked on execution.
func (a Action) Validate() error {
	if n := paramsNum(a.Kind); len(a.Params) != n {
		return fmt.Errorf("%w: %s action takes %d parameters, got %d", common.ErrInvalidArgument, a.Kind, n, len(a.Params))
	}

	switch a.Kind {
	case ActionPause, ActionUnpause, ActionSetRotationConfig:
	case ActionSetProposalTTL:
		return ValidateProposalTTL(a.Params[0])
	case ActionChangeThreshold:
		if a.Threshold == 0 {
			return fmt.Errorf("%w: zero", common.ErrInvalidThreshold)
		}
	case ActionGrantRole, ActionRevokeRole:
		if err := a.Role.Validate(); err != nil {
			return err
		}
		fallthrough
	case ActionAddOwner, ActionRemoveOwner, ActionEmergencyRotateAdmin:
		if a.Account.Equals(util.Uint160{}) {
			return fmt.Errorf("%w: zero account in %s action", common.ErrInvalidArgument, a.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown action %d", common.ErrInvalidArgument, a.Kind)
	}
	return nil
}

// Equals checks whether actions are the same.
func (a Action) Equals(b Action) bool {
	return a.Kind == b.Kind && a.Account.Equals(b.Account) && a.Role == b.Role && a.Threshold == b.Threshold &&
		equalParams(a.Params, b.Params)
}

func equalParams(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer.
func (a Action) String() string {
	switch a.Kind {
	case ActionAddOwner, ActionRemoveOwner, ActionEmergencyRotateAdmin:
		return fmt.Sprintf("%s(%s)", a.Kind, address.Uint160ToString(a.Account))
	case ActionGrantRole, ActionRevokeRole:
		return fmt.Sprintf("%s(%s, %s)", a.Kind, address.Uint160ToString(a.Account), a.Role)
	case ActionChangeThreshold:
		return fmt.Sprintf("%s(%d)", a.Kind, a.Threshold)
	case ActionSetProposalTTL, ActionSetRotationConfig:
		return fmt.Sprintf("%s%v", a.Kind, a.Params)
	default:
		return a.Kind.String()
	}
}

// ToStackItem implements stackitem.Convertible.
func (a *Action) ToStackItem() (stackitem.Item, error) {
	return stackitem.NewStruct([]stackitem.Item{
		common.Uint64ToItem(uint64(a.Kind)),
		common.AccountToItem(a.Account),
		common.Uint64ToItem(uint64(a.Role)),
		common.Uint64ToItem(uint64(a.Threshold)),
		common.Uint64sToItem(a.Params),
	}), nil
}

// FromStackItem implements stackitem.Convertible.
func (a *Action) FromStackItem(item stackitem.Item) error {
	arr, err := common.ItemToStruct(item, 5)
	if err != nil {
		return fmt.Errorf("action: %w", err)
	}

	kind, err := common.ItemToUint32(arr[0])
	if err != nil {
		return fmt.Errorf("action kind: %w", err)
	}
	if kind > 0xFF {
		return fmt.Errorf("action kind %d overflows uint8", kind)
	}
	a.Kind = ActionKind(kind)

	if a.Account, err = common.ItemToUint160(arr[1]); err != nil {
		return fmt.Errorf("action account: %w", err)
	}

	role, err := common.ItemToUint32(arr[2])
	if err != nil {
		return fmt.Errorf("action role: %w", err)
	}
	a.Role = access.Role(role)

	if a.Threshold, err = common.ItemToUint32(arr[3]); err != nil {
		return fmt.Errorf("action threshold: %w", err)
	}

	if a.Params, err = common.ItemToUint64s(arr[4]); err != nil {
		return fmt.Errorf("action parameters: %w", err)
	}
	if len(a.Params) == 0 {
		a.Params = nil
	}

	return nil
}

// Status is a lifecycle status of the proposal.
type Status uint8

// Proposal statuses.
const (
	StatusPending Status = iota
	StatusExecuted
	StatusRejected
	StatusExpired
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusExecuted:
		return "Executed"
	case StatusRejected:
		return "Rejected"
	case StatusExpired:
		return "Expired"
	default:
		return fmt.Sprintf("Status#%d", s)
	}
}

// Proposal is a governance action waiting for the quorum.
type Proposal struct {
	ID        uint64
	Action    Action
	Proposer  util.Uint160
	Status    Status
	Approvals []util.Uint160
	CreatedAt uint64
	// The proposal can't be approved or executed after this time.
	Expiry uint64
}

// IsExpired checks whether pending proposal has expired at the given time.
func (p *Proposal) IsExpired(now uint64) bool {
	return now > p.Expiry
}

// ToStackItem implements stackitem.Convertible.
func (p *Proposal) ToStackItem() (stackitem.Item, error) {
	action, err := p.Action.ToStackItem()
	if err != nil {
		return nil, err
	}

	return stackitem.NewStruct([]stackitem.Item{
		common.Uint64ToItem(p.ID),
		action,
		common.AccountToItem(p.Proposer),
		common.Uint64ToItem(uint64(p.Status)),
		common.AccountsToItem(p.Approvals),
		common.Uint64ToItem(p.CreatedAt),
		common.Uint64ToItem(p.Expiry),
	}), nil
}

// FromStackItem implements stackitem.Convertible.
func (p *Proposal) FromStackItem(item stackitem.Item) error {
	arr, err := common.ItemToStruct(item, 7)
	if err != nil {
		return fmt.Errorf("proposal: %w", err)
	}

	if p.ID, err = common.ItemToUint64(arr[0]); err != nil {
		return fmt.Errorf("proposal id: %w", err)
	}
	if err = p.Action.FromStackItem(arr[1]); err != nil {
		return err
	}
	if p.Proposer, err = common.ItemToUint160(arr[2]); err != nil {
		return fmt.Errorf("proposer: %w", err)
	}

	status, err := common.ItemToUint32(arr[3])
	if err != nil {
		return fmt.Errorf("proposal status: %w", err)
	}
	if status > 0xFF {
		return fmt.Errorf("proposal status %d overflows uint8", status)
	}
	p.Status = Status(status)

	if p.Approvals, err = common.ItemToAccounts(arr[4]); err != nil {
		return fmt.Errorf("approvals: %w", err)
	}
	if p.CreatedAt, err = common.ItemToUint64(arr[5]); err != nil {
		return fmt.Errorf("creation time: %w", err)
	}
	if p.Expiry, err = common.ItemToUint64(arr[6]); err != nil {
		return fmt.Errorf("expiry: %w", err)
	}

	return nil
}
