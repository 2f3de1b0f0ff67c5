package replay

import (
	"math"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/common"
	"github.com/nspcc-dev/revenue-attestation/host"
	"github.com/nspcc-dev/revenue-attestation/host/hosttest"
	"github.com/stretchr/testify/require"
)

func verify(c *host.Chain, actor util.Uint160, ch Channel, nonce uint64) error {
	return hosttest.Exec(c, func(ic *host.Context) error {
		return VerifyAndIncrement(ic, actor, ch, nonce)
	})
}

func peek(t *testing.T, c *host.Chain, actor util.Uint160, ch Channel) uint64 {
	var n uint64
	hosttest.View(t, c, func(ic *host.Context) error {
		var err error
		n, err = PeekNext(ic, actor, ch)
		return err
	})
	return n
}

func TestVerifyAndIncrement(t *testing.T) {
	c := hosttest.NewChain(t, 0)
	actor := hosttest.Account(1)

	require.EqualValues(t, 0, peek(t, c, actor, ChannelAdmin))

	require.NoError(t, verify(c, actor, ChannelAdmin, 0))
	require.NoError(t, verify(c, actor, ChannelAdmin, 1))
	require.EqualValues(t, 2, peek(t, c, actor, ChannelAdmin))

	t.Run("replay", func(t *testing.T) {
		err := verify(c, actor, ChannelAdmin, 0)
		require.ErrorIs(t, err, common.ErrNonceMismatch)
		require.ErrorIs(t, err, common.ErrTemporal)
	})

	t.Run("gap", func(t *testing.T) {
		require.ErrorIs(t, verify(c, actor, ChannelAdmin, 3), common.ErrNonceMismatch)
		require.EqualValues(t, 2, peek(t, c, actor, ChannelAdmin))
	})
}

func TestSkippedNonce(t *testing.T) {
	c := hosttest.NewChain(t, 0)
	actor := hosttest.Account(1)

	require.NoError(t, verify(c, actor, ChannelBusiness, 0))
	require.ErrorIs(t, verify(c, actor, ChannelBusiness, 2), common.ErrNonceMismatch)
	require.NoError(t, verify(c, actor, ChannelBusiness, 1))
}

func TestChannelsAreIndependent(t *testing.T) {
	c := hosttest.NewChain(t, 0)
	a, b := hosttest.Account(1), hosttest.Account(2)

	require.NoError(t, verify(c, a, ChannelAdmin, 0))
	require.NoError(t, verify(c, a, ChannelAdmin, 1))

	require.NoError(t, verify(c, a, ChannelBusiness, 0))
	require.NoError(t, verify(c, b, ChannelAdmin, 0))

	require.EqualValues(t, 2, peek(t, c, a, ChannelAdmin))
	require.EqualValues(t, 1, peek(t, c, a, ChannelBusiness))
	require.EqualValues(t, 1, peek(t, c, b, ChannelAdmin))
	require.EqualValues(t, 0, peek(t, c, b, ChannelDispute))
}

func TestOverflow(t *testing.T) {
	c := hosttest.NewChain(t, 0)
	actor := hosttest.Account(1)

	require.NoError(t, hosttest.Exec(c, func(ic *host.Context) error {
		return common.PutUint64(ic, nonceKey(actor, ChannelAdmin), math.MaxUint64)
	}))

	require.ErrorIs(t, verify(c, actor, ChannelAdmin, math.MaxUint64), common.ErrNonceOverflow)
	require.Equal(t, uint64(math.MaxUint64), peek(t, c, actor, ChannelAdmin))
}
