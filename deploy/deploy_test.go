package deploy

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/config"
	"github.com/nspcc-dev/revenue-attestation/contracts/access"
	"github.com/nspcc-dev/revenue-attestation/contracts/attestation"
	"github.com/nspcc-dev/revenue-attestation/contracts/rotation"
	"github.com/nspcc-dev/revenue-attestation/host"
	"github.com/nspcc-dev/revenue-attestation/internal/testcontracts"
	rpcattestation "github.com/nspcc-dev/revenue-attestation/rpc/attestation"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const now = 1_700_000_000

var (
	contractHash = util.Uint160{0xC0}
	admin        = util.Uint160{0xAD}
	token        = util.Uint160{0x70}
	collector    = util.Uint160{0xCC}
	owner1       = util.Uint160{0x51}
	owner2       = util.Uint160{0x52}
	business     = util.Uint160{0x01}
)

func testConfig() *config.Config {
	c := config.Default()
	c.Admin = address.Uint160ToString(admin)
	c.Fee = config.Fee{
		Enabled:        true,
		Token:          address.Uint160ToString(token),
		Collector:      address.Uint160ToString(collector),
		BaseFee:        1000,
		TierDiscounts:  map[uint32]uint32{1: 5000},
		VolumeBrackets: []config.Bracket{{Threshold: 10, DiscountBPS: 1000}},
		BusinessTiers:  map[string]uint32{address.Uint160ToString(business): 1},
	}
	c.RateLimit = config.RateLimit{Enabled: true, MaxSubmissions: 3, Window: time.Minute}
	c.Governance.Owners = []string{address.Uint160ToString(owner1), address.Uint160ToString(owner2)}
	c.Governance.Threshold = 2
	return c
}

func newChain(t *testing.T, st storage.Store) *host.Chain {
	c := host.New(st, zaptest.NewLogger(t))
	require.NoError(t, c.SetTime(now))
	return c
}

func deploy(t *testing.T, chain *host.Chain, cfg *config.Config) error {
	return Deploy(context.Background(), Prm{
		Logger:   zaptest.NewLogger(t),
		Chain:    chain,
		Hash:     contractHash,
		Contract: attestation.Prm{Token: testcontracts.NewToken(token)},
		Config:   cfg,
	})
}

func TestDeploy(t *testing.T) {
	st := storage.NewMemoryStore()
	cfg := testConfig()
	require.NoError(t, cfg.Validate())

	chain := newChain(t, st)
	require.NoError(t, deploy(t, chain, cfg))

	reader := rpcattestation.NewReader(chain, contractHash)

	acc, err := reader.GetAdmin()
	require.NoError(t, err)
	require.Equal(t, admin, acc)

	ok, err := reader.HasRole(admin, access.Admin)
	require.NoError(t, err)
	require.True(t, ok)

	fc, err := reader.GetFeeConfig()
	require.NoError(t, err)
	require.Equal(t, token, fc.Token)
	require.Equal(t, collector, fc.Collector)
	require.True(t, fc.Enabled)

	// tier discount of the business halves the base fee
	quote, err := reader.GetFeeQuote(business)
	require.NoError(t, err)
	require.Zero(t, quote.Cmp(big.NewInt(500)))

	quote, err = reader.GetFeeQuote(util.Uint160{0x02})
	require.NoError(t, err)
	require.Zero(t, quote.Cmp(big.NewInt(1000)))

	owners, err := reader.GetMultisigOwners()
	require.NoError(t, err)
	require.Equal(t, []util.Uint160{owner1, owner2}, owners)

	threshold, err := reader.GetMultisigThreshold()
	require.NoError(t, err)
	require.EqualValues(t, 2, threshold)

	t.Run("repeat", func(t *testing.T) {
		cfg := testConfig()
		cfg.Fee.BaseFee = 2000
		cfg.Governance.Owners = cfg.Governance.Owners[:1]
		cfg.Governance.Threshold = 1

		chain := newChain(t, st)
		require.NoError(t, deploy(t, chain, cfg))

		reader := rpcattestation.NewReader(chain, contractHash)

		quote, err := reader.GetFeeQuote(util.Uint160{0x02})
		require.NoError(t, err)
		require.Zero(t, quote.Cmp(big.NewInt(2000)))

		// owners are set once
		owners, err := reader.GetMultisigOwners()
		require.NoError(t, err)
		require.Len(t, owners, 2)

		require.Error(t, deploy(t, chain, cfg), "contract is registered twice")
	})

	t.Run("another admin", func(t *testing.T) {
		cfg := testConfig()
		cfg.Admin = address.Uint160ToString(util.Uint160{0xAE})

		err := deploy(t, newChain(t, st), cfg)
		require.ErrorContains(t, err, "differs")
	})
}

func TestDeployMinimal(t *testing.T) {
	cfg := config.Default()
	cfg.Admin = address.Uint160ToString(admin)

	chain, err := OpenChain(dbconfig.DBConfiguration{Type: dbconfig.InMemoryDB}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = chain.Close() })

	require.NoError(t, deploy(t, chain, cfg))

	reader := rpcattestation.NewReader(chain, contractHash)

	fc, err := reader.GetFeeConfig()
	require.NoError(t, err)
	require.Nil(t, fc)

	threshold, err := reader.GetMultisigThreshold()
	require.NoError(t, err)
	require.Zero(t, threshold)

	quote, err := reader.GetFeeQuote(business)
	require.NoError(t, err)
	require.Zero(t, quote.Sign())

	_, err = rpcattestation.New(chain, contractHash, admin).ProposeKeyRotation(owner1)
	require.NoError(t, err)

	req, err := reader.GetPendingKeyRotation()
	require.NoError(t, err)
	require.Equal(t, rotation.DefaultConfig().Timelock, req.TimelockUntil-req.ProposedAt)
}

func TestDeployContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := config.Default()
	cfg.Admin = address.Uint160ToString(admin)

	err := Deploy(ctx, Prm{
		Chain:  newChain(t, storage.NewMemoryStore()),
		Hash:   contractHash,
		Config: cfg,
	})
	require.ErrorIs(t, err, context.Canceled)

	require.Error(t, Deploy(context.Background(), Prm{}))
}
