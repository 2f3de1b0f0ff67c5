package access

import (
	"fmt"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/common"
	"github.com/nspcc-dev/revenue-attestation/host"
)

// Role is a bitmap of account roles.
type Role uint32

// Supported roles.
const (
	Admin Role = 1 << iota
	Attestor
	Business
	Operator

	allRoles = Admin | Attestor | Business | Operator
)

const (
	adminKey   = 'a'
	rolePrefix = 'r'
	pausedKey  = 'p'
)

var roleNames = []struct {
	r    Role
	name string
}{
	{Admin, "ADMIN"},
	{Attestor, "ATTESTOR"},
	{Business, "BUSINESS"},
	{Operator, "OPERATOR"},
}

// String returns '|'-separated names of the roles.
func (r Role) String() string {
	var names []string
	for _, n := range roleNames {
		if r&n.r != 0 {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "NONE"
	}
	return strings.Join(names, "|")
}

// Validate checks that r is a non-empty set of known roles.
func (r Role) Validate() error {
	if r == 0 || r&^allRoles != 0 {
		return fmt.Errorf("%w: unknown role set %d", common.ErrInvalidArgument, r)
	}
	return nil
}

func roleKey(acc util.Uint160) common.Key {
	return common.NewKey(rolePrefix).WithAccount(acc)
}

// Initialize sets the initial admin of the contract and grants it ADMIN role.
func Initialize(ic *host.Context, admin util.Uint160) error {
	if common.Has(ic, common.NewKey(adminKey)) {
		return common.ErrAlreadyInitialized
	}

	err := common.PutAccount(ic, common.NewKey(adminKey), admin)
	if err != nil {
		return err
	}

	return Grant(ic, admin, Admin)
}

// IsInitialized checks whether the admin is set.
func IsInitialized(ic *host.Context) bool {
	return common.Has(ic, common.NewKey(adminKey))
}

// GetAdmin returns current admin of the contract.
func GetAdmin(ic *host.Context) (util.Uint160, error) {
	admin, ok, err := common.GetAccount(ic, common.NewKey(adminKey))
	if err != nil {
		return util.Uint160{}, err
	}
	if !ok {
		return util.Uint160{}, common.ErrNotInitialized
	}
	return admin, nil
}

// SetAdmin replaces the admin with a new account. ADMIN role is moved from the
// previous admin to the new one.
func SetAdmin(ic *host.Context, newAdmin util.Uint160) error {
	old, err := GetAdmin(ic)
	if err != nil {
		return err
	}

	if old.Equals(newAdmin) {
		return common.ErrSameAdmin
	}

	err = revoke(ic, old, Admin)
	if err != nil {
		return err
	}

	err = Grant(ic, newAdmin, Admin)
	if err != nil {
		return err
	}

	return common.PutAccount(ic, common.NewKey(adminKey), newAdmin)
}

// Roles returns role bitmap of the account.
func Roles(ic *host.Context, acc util.Uint160) (Role, error) {
	v, err := common.GetUint64(ic, roleKey(acc))
	if err != nil {
		return 0, err
	}
	return Role(v), nil
}

// HasRole checks whether the account holds all the given roles.
func HasRole(ic *host.Context, acc util.Uint160, r Role) (bool, error) {
	cur, err := Roles(ic, acc)
	if err != nil {
		return false, err
	}
	return cur&r == r, nil
}

// RequireRole returns ErrUnauthorized if the account does not hold the role.
func RequireRole(ic *host.Context, acc util.Uint160, r Role) error {
	ok, err := HasRole(ic, acc, r)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s does not hold %s role", common.ErrUnauthorized, address.Uint160ToString(acc), r)
	}
	return nil
}

// RequireAnyRole returns ErrUnauthorized if the account holds none of the
// given roles.
func RequireAnyRole(ic *host.Context, acc util.Uint160, r Role) error {
	cur, err := Roles(ic, acc)
	if err != nil {
		return err
	}
	if cur&r == 0 {
		return fmt.Errorf("%w: %s holds none of %s roles", common.ErrUnauthorized, address.Uint160ToString(acc), r)
	}
	return nil
}

// Grant adds roles to the account.
func Grant(ic *host.Context, acc util.Uint160, r Role) error {
	if err := r.Validate(); err != nil {
		return err
	}

	cur, err := Roles(ic, acc)
	if err != nil {
		return err
	}

	return common.PutUint64(ic, roleKey(acc), uint64(cur|r))
}

// Revoke removes roles from the account. ADMIN role of the current admin can
// only be moved by SetAdmin.
func Revoke(ic *host.Context, acc util.Uint160, r Role) error {
	if err := r.Validate(); err != nil {
		return err
	}

	if r&Admin != 0 {
		admin, err := GetAdmin(ic)
		if err == nil && admin.Equals(acc) {
			return fmt.Errorf("%w: ADMIN role of the current admin is changed by key rotation only", common.ErrInvalidArgument)
		}
	}

	return revoke(ic, acc, r)
}

func revoke(ic *host.Context, acc util.Uint160, r Role) error {
	cur, err := Roles(ic, acc)
	if err != nil {
		return err
	}

	next := cur &^ r
	if next == cur {
		return nil
	}

	if next == 0 {
		return common.Delete(ic, roleKey(acc))
	}

	return common.PutUint64(ic, roleKey(acc), uint64(next))
}

// Holders returns all accounts holding at least one role. Role bitmap keys
// are the index: zero bitmaps are never stored.
func Holders(ic *host.Context) ([]util.Uint160, error) {
	return common.FindAccounts(ic, common.NewKey(rolePrefix))
}

// HoldersOf returns accounts holding all the given roles.
func HoldersOf(ic *host.Context, r Role) ([]util.Uint160, error) {
	list, err := Holders(ic)
	if err != nil {
		return nil, err
	}

	var res []util.Uint160
	for i := range list {
		ok, err := HasRole(ic, list[i], r)
		if err != nil {
			return nil, err
		}
		if ok {
			res = append(res, list[i])
		}
	}

	return res, nil
}

// IsPaused checks whether the contract is paused.
func IsPaused(ic *host.Context) (bool, error) {
	return common.GetBool(ic, common.NewKey(pausedKey))
}

// SetPaused switches the pause flag.
func SetPaused(ic *host.Context, paused bool) error {
	if !paused {
		return common.Delete(ic, common.NewKey(pausedKey))
	}
	return common.PutBool(ic, common.NewKey(pausedKey), true)
}

// RequireNotPaused returns ErrPaused if the contract is paused.
func RequireNotPaused(ic *host.Context) error {
	paused, err := IsPaused(ic)
	if err != nil {
		return err
	}
	if paused {
		return common.ErrPaused
	}
	return nil
}
