package access

import (
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/common"
	"github.com/nspcc-dev/revenue-attestation/host"
	"github.com/nspcc-dev/revenue-attestation/host/hosttest"
	"github.com/stretchr/testify/require"
)

func exec(c *host.Chain, f func(ic *host.Context) error) error {
	return hosttest.Exec(c, f)
}

func roles(t *testing.T, c *host.Chain, acc util.Uint160) Role {
	var r Role
	hosttest.View(t, c, func(ic *host.Context) error {
		var err error
		r, err = Roles(ic, acc)
		return err
	})
	return r
}

func holders(t *testing.T, c *host.Chain) []util.Uint160 {
	var res []util.Uint160
	hosttest.View(t, c, func(ic *host.Context) error {
		var err error
		res, err = Holders(ic)
		return err
	})
	return res
}

func TestInitialize(t *testing.T) {
	c := hosttest.NewChain(t, 0)
	admin := hosttest.Account(1)

	hosttest.View(t, c, func(ic *host.Context) error {
		_, err := GetAdmin(ic)
		require.ErrorIs(t, err, common.ErrNotInitialized)
		require.False(t, IsInitialized(ic))
		return nil
	})

	require.NoError(t, exec(c, func(ic *host.Context) error { return Initialize(ic, admin) }))
	require.ErrorIs(t, exec(c, func(ic *host.Context) error { return Initialize(ic, admin) }), common.ErrAlreadyInitialized)

	require.Equal(t, Admin, roles(t, c, admin))
	require.Equal(t, []util.Uint160{admin}, holders(t, c))
}

func TestGrantRevoke(t *testing.T) {
	c := hosttest.NewChain(t, 0)
	admin, acc := hosttest.Account(1), hosttest.Account(2)

	require.NoError(t, exec(c, func(ic *host.Context) error { return Initialize(ic, admin) }))

	require.NoError(t, exec(c, func(ic *host.Context) error { return Grant(ic, acc, Attestor) }))
	require.NoError(t, exec(c, func(ic *host.Context) error { return Grant(ic, acc, Operator|Business) }))
	require.Equal(t, Attestor|Operator|Business, roles(t, c, acc))
	require.Equal(t, []util.Uint160{admin, acc}, holders(t, c))

	hosttest.View(t, c, func(ic *host.Context) error {
		require.NoError(t, RequireRole(ic, acc, Operator))
		require.ErrorIs(t, RequireRole(ic, acc, Admin), common.ErrUnauthorized)
		require.NoError(t, RequireAnyRole(ic, acc, Admin|Operator))

		list, err := HoldersOf(ic, Operator)
		require.NoError(t, err)
		require.Equal(t, []util.Uint160{acc}, list)
		return nil
	})

	require.NoError(t, exec(c, func(ic *host.Context) error { return Revoke(ic, acc, Attestor|Operator) }))
	require.Equal(t, Business, roles(t, c, acc))
	require.Len(t, holders(t, c), 2)

	require.NoError(t, exec(c, func(ic *host.Context) error { return Revoke(ic, acc, Business) }))
	require.Equal(t, Role(0), roles(t, c, acc))
	require.Equal(t, []util.Uint160{admin}, holders(t, c))

	t.Run("revoke missing role", func(t *testing.T) {
		require.NoError(t, exec(c, func(ic *host.Context) error { return Revoke(ic, acc, Business) }))
		require.Equal(t, []util.Uint160{admin}, holders(t, c))
	})

	t.Run("invalid roles", func(t *testing.T) {
		require.ErrorIs(t, exec(c, func(ic *host.Context) error { return Grant(ic, acc, 0) }), common.ErrValidation)
		require.ErrorIs(t, exec(c, func(ic *host.Context) error { return Grant(ic, acc, 1<<7) }), common.ErrValidation)
	})

	t.Run("admin role of admin", func(t *testing.T) {
		require.ErrorIs(t, exec(c, func(ic *host.Context) error { return Revoke(ic, admin, Admin) }), common.ErrInvalidArgument)
	})
}

func TestSetAdmin(t *testing.T) {
	c := hosttest.NewChain(t, 0)
	admin, next := hosttest.Account(1), hosttest.Account(2)

	require.NoError(t, exec(c, func(ic *host.Context) error { return Initialize(ic, admin) }))
	require.NoError(t, exec(c, func(ic *host.Context) error { return Grant(ic, admin, Operator) }))

	require.ErrorIs(t, exec(c, func(ic *host.Context) error { return SetAdmin(ic, admin) }), common.ErrSameAdmin)
	require.NoError(t, exec(c, func(ic *host.Context) error { return SetAdmin(ic, next) }))

	require.Equal(t, Operator, roles(t, c, admin))
	require.Equal(t, Admin, roles(t, c, next))

	hosttest.View(t, c, func(ic *host.Context) error {
		got, err := GetAdmin(ic)
		require.NoError(t, err)
		require.Equal(t, next, got)
		return nil
	})
}

func TestPause(t *testing.T) {
	c := hosttest.NewChain(t, 0)

	hosttest.View(t, c, func(ic *host.Context) error {
		require.NoError(t, RequireNotPaused(ic))
		return nil
	})

	require.NoError(t, exec(c, func(ic *host.Context) error { return SetPaused(ic, true) }))
	hosttest.View(t, c, func(ic *host.Context) error {
		require.ErrorIs(t, RequireNotPaused(ic), common.ErrPaused)
		return nil
	})

	require.NoError(t, exec(c, func(ic *host.Context) error { return SetPaused(ic, false) }))
	hosttest.View(t, c, func(ic *host.Context) error {
		paused, err := IsPaused(ic)
		require.NoError(t, err)
		require.False(t, paused)
		return nil
	})
}

func TestRoleString(t *testing.T) {
	require.Equal(t, "NONE", Role(0).String())
	require.Equal(t, "ADMIN|OPERATOR", (Admin | Operator).String())
}
