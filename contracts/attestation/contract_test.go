package attestation

import (
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/common"
	"github.com/nspcc-dev/revenue-attestation/contracts/access"
	"github.com/nspcc-dev/revenue-attestation/contracts/dispute"
	"github.com/nspcc-dev/revenue-attestation/contracts/fee"
	"github.com/nspcc-dev/revenue-attestation/contracts/multisig"
	"github.com/nspcc-dev/revenue-attestation/contracts/ratelimit"
	"github.com/nspcc-dev/revenue-attestation/contracts/records"
	"github.com/nspcc-dev/revenue-attestation/contracts/replay"
	"github.com/nspcc-dev/revenue-attestation/contracts/rotation"
	"github.com/nspcc-dev/revenue-attestation/host"
	"github.com/nspcc-dev/revenue-attestation/host/hosttest"
	"github.com/nspcc-dev/revenue-attestation/internal/testcontracts"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const (
	now     = 1_700_000_000
	baseFee = 1_000_000
	funds   = 10 * baseFee
)

var (
	contractHash = hosttest.Account(0xC0)
	tokenHash    = hosttest.Account(0x70)
	collector    = hosttest.Account(0xCC)

	admin     = hosttest.Account(0xAD)
	attestor  = hosttest.Account(0xA7)
	operator  = hosttest.Account(0x09)
	stranger  = hosttest.Account(0x66)
	business  = hosttest.Account(1)
	business2 = hosttest.Account(2)
)

type testEnv struct {
	t        *testing.T
	chain    *host.Chain
	contract *Contract
	token    *testcontracts.Token
	registry *testcontracts.Registry
	metrics  *Metrics
}

func newEnv(t *testing.T) *testEnv {
	e := &testEnv{
		t:        t,
		chain:    hosttest.NewChain(t, now),
		token:    testcontracts.NewToken(tokenHash),
		registry: testcontracts.NewRegistry(business, business2),
		metrics:  NewMetrics(prometheus.NewRegistry()),
	}

	e.contract = New(contractHash, Prm{
		Token:    e.token,
		Registry: e.registry,
		Metrics:  e.metrics,
	})

	require.NoError(t, e.exec(admin, func(ic *host.Context) error {
		return e.contract.Initialize(ic, admin)
	}))

	e.grant(attestor, access.Attestor)
	e.grant(operator, access.Operator)
	e.grant(business, access.Business)
	e.grant(business2, access.Business)

	require.NoError(t, e.exec(admin, func(ic *host.Context) error {
		return e.contract.SetFeeConfig(ic, admin, e.nonce(ic, admin, replay.ChannelAdmin), fee.Config{
			Token:     tokenHash,
			Collector: collector,
			BaseFee:   big.NewInt(baseFee),
			Enabled:   true,
		})
	}))

	require.NoError(t, hosttest.Exec(e.chain, func(ic *host.Context) error {
		if err := e.token.Mint(ic, business, funds); err != nil {
			return err
		}
		return e.token.Mint(ic, business2, funds)
	}))

	return e
}

func (e *testEnv) exec(signer util.Uint160, f func(ic *host.Context) error) error {
	return e.chain.Exec(contractHash, "test", host.Signers{signer}, f)
}

func (e *testEnv) view(f func(ic *host.Context) error) {
	require.NoError(e.t, e.chain.View(contractHash, "test", f))
}

// nonce returns the current nonce of the actor, so the call using it is
// expected to pass the replay check.
func (e *testEnv) nonce(ic *host.Context, acc util.Uint160, ch replay.Channel) uint64 {
	n, err := GetNonce(ic, acc, ch)
	require.NoError(e.t, err)
	return n
}

func (e *testEnv) grant(acc util.Uint160, r access.Role) {
	require.NoError(e.t, e.exec(admin, func(ic *host.Context) error {
		return e.contract.GrantRole(ic, admin, e.nonce(ic, admin, replay.ChannelAdmin), acc, r)
	}))
}

func (e *testEnv) submit(caller util.Uint160, s records.Submission) error {
	return e.exec(caller, func(ic *host.Context) error {
		_, err := e.contract.SubmitAttestation(ic, caller, e.nonce(ic, caller, replay.ChannelBusiness), s)
		return err
	})
}

func (e *testEnv) submitBatch(caller util.Uint160, batch []records.Submission) error {
	return e.exec(caller, func(ic *host.Context) error {
		_, err := e.contract.SubmitBatch(ic, caller, e.nonce(ic, caller, replay.ChannelBusiness), batch)
		return err
	})
}

func (e *testEnv) adminExec(f func(ic *host.Context, nonce uint64) error) error {
	return e.exec(admin, func(ic *host.Context) error {
		return f(ic, e.nonce(ic, admin, replay.ChannelAdmin))
	})
}

func (e *testEnv) record(b util.Uint160, period string) *records.Record {
	var r *records.Record
	e.view(func(ic *host.Context) error {
		var err error
		r, err = GetAttestation(ic, b, period)
		return err
	})
	return r
}

func (e *testEnv) verify(b util.Uint160, period string, h util.Uint256) bool {
	var ok bool
	e.view(func(ic *host.Context) error {
		var err error
		ok, err = Verify(ic, b, period, h)
		return err
	})
	return ok
}

func (e *testEnv) balance(acc util.Uint160) int64 {
	var v *big.Int
	e.view(func(ic *host.Context) error {
		var err error
		v, err = e.token.BalanceOf(ic, tokenHash, acc)
		return err
	})
	return v.Int64()
}

func (e *testEnv) notifications() []string {
	var res []string
	for _, ev := range e.chain.Notifications() {
		res = append(res, ev.Name)
	}
	return res
}

func commitment(s string) util.Uint256 {
	return hash.Sha256([]byte(s))
}

func submission(b util.Uint160, period string) records.Submission {
	return records.Submission{
		Business:      b,
		Period:        period,
		Commitment:    commitment(b.StringLE() + period),
		CapturedAt:    now - 60,
		SchemaVersion: 1,
	}
}

func TestInitialize(t *testing.T) {
	e := newEnv(t)

	err := e.exec(admin, func(ic *host.Context) error {
		return e.contract.Initialize(ic, admin)
	})
	require.ErrorIs(t, err, common.ErrAlreadyInitialized)

	e.view(func(ic *host.Context) error {
		v, err := Version(ic)
		require.NoError(t, err)
		require.EqualValues(t, common.Version, v)

		a, err := GetAdmin(ic)
		require.NoError(t, err)
		require.Equal(t, admin, a)
		return nil
	})

	err = e.adminExec(func(ic *host.Context, nonce uint64) error {
		return e.contract.Update(ic, admin, nonce)
	})
	require.ErrorIs(t, err, common.ErrState)
}

func TestSubmitAttestation(t *testing.T) {
	e := newEnv(t)

	s := submission(business, "2024-Q1")
	require.NoError(t, e.submit(business, s))

	r := e.record(business, s.Period)
	require.NotNil(t, r)
	require.Equal(t, s.Commitment, r.Commitment)
	require.EqualValues(t, 1, r.SchemaVersion)
	require.EqualValues(t, baseFee, r.FeePaid.Int64())
	require.Equal(t, business, r.Submitter)

	require.EqualValues(t, funds-baseFee, e.balance(business))
	require.EqualValues(t, baseFee, e.balance(collector))

	require.Subset(t, e.notifications(), []string{
		testcontracts.TransferNotification,
		notifyFeeCollected,
		notifyAttestationSubmitted,
	})

	t.Run("duplicate", func(t *testing.T) {
		err := e.submit(business, s)
		require.ErrorIs(t, err, common.ErrAlreadyExists)
		require.ErrorIs(t, err, common.ErrState)

		// failed call consumes neither nonce nor funds
		e.view(func(ic *host.Context) error {
			require.EqualValues(t, 1, e.nonce(ic, business, replay.ChannelBusiness))
			return nil
		})
		require.EqualValues(t, funds-baseFee, e.balance(business))
	})

	t.Run("by attestor", func(t *testing.T) {
		s := submission(business, "2024-Q2")
		require.NoError(t, e.submit(attestor, s))
		require.Equal(t, attestor, e.record(business, s.Period).Submitter)
	})

	require.EqualValues(t, 2, testutil.ToFloat64(e.metrics.submissions))
	require.EqualValues(t, 2*baseFee, testutil.ToFloat64(e.metrics.fees))
}

func TestSubmitAuthorization(t *testing.T) {
	e := newEnv(t)

	t.Run("missing witness", func(t *testing.T) {
		err := e.chain.Exec(contractHash, "test", host.Signers{stranger}, func(ic *host.Context) error {
			_, err := e.contract.SubmitAttestation(ic, business, 0, submission(business, "p"))
			return err
		})
		require.ErrorIs(t, err, common.ErrWitnessFailed)
	})

	t.Run("wrong nonce", func(t *testing.T) {
		err := e.exec(business, func(ic *host.Context) error {
			_, err := e.contract.SubmitAttestation(ic, business, 5, submission(business, "p"))
			return err
		})
		require.ErrorIs(t, err, common.ErrNonceMismatch)
		require.ErrorIs(t, err, common.ErrTemporal)
	})

	t.Run("no role", func(t *testing.T) {
		err := e.submit(stranger, submission(business, "p"))
		require.ErrorIs(t, err, common.ErrUnauthorized)
	})

	t.Run("other business", func(t *testing.T) {
		err := e.submit(business2, submission(business, "p"))
		require.ErrorIs(t, err, common.ErrUnauthorized)
	})

	t.Run("inactive business", func(t *testing.T) {
		e.registry.SetActive(business, false)
		t.Cleanup(func() { e.registry.SetActive(business, true) })

		err := e.submit(attestor, submission(business, "p"))
		require.ErrorIs(t, err, common.ErrInactiveBusiness)
	})

	t.Run("paused", func(t *testing.T) {
		require.NoError(t, e.exec(operator, func(ic *host.Context) error {
			return e.contract.Pause(ic, operator, e.nonce(ic, operator, replay.ChannelAdmin))
		}))

		err := e.submit(business, submission(business, "p"))
		require.ErrorIs(t, err, common.ErrPaused)

		// operator can't unpause
		err = e.exec(operator, func(ic *host.Context) error {
			return e.contract.Unpause(ic, operator, e.nonce(ic, operator, replay.ChannelAdmin))
		})
		require.ErrorIs(t, err, common.ErrUnauthorized)

		require.NoError(t, e.adminExec(func(ic *host.Context, nonce uint64) error {
			return e.contract.Unpause(ic, admin, nonce)
		}))
	})

	require.NoError(t, e.submit(business, submission(business, "p")))
}

func TestFees(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.adminExec(func(ic *host.Context, nonce uint64) error {
		return e.contract.SetTierDiscount(ic, admin, nonce, 1, 2000)
	}))
	require.NoError(t, e.adminExec(func(ic *host.Context, nonce uint64) error {
		return e.contract.SetBusinessTier(ic, admin, nonce, business, 1)
	}))
	require.NoError(t, e.adminExec(func(ic *host.Context, nonce uint64) error {
		return e.contract.SetVolumeBrackets(ic, admin, nonce, fee.Brackets{
			{Threshold: 1, DiscountBPS: 1000},
		})
	}))

	quote := func() int64 {
		var v *big.Int
		e.view(func(ic *host.Context) error {
			var err error
			v, err = GetFeeQuote(ic, business)
			return err
		})
		return v.Int64()
	}

	require.EqualValues(t, 800_000, quote())
	require.NoError(t, e.submit(business, submission(business, "p1")))
	require.EqualValues(t, 720_000, quote())
	require.NoError(t, e.submit(business, submission(business, "p2")))

	require.EqualValues(t, 720_000, e.record(business, "p2").FeePaid.Int64())
	require.EqualValues(t, funds-800_000-720_000, e.balance(business))

	t.Run("invalid configuration", func(t *testing.T) {
		err := e.adminExec(func(ic *host.Context, nonce uint64) error {
			return e.contract.SetTierDiscount(ic, admin, nonce, 2, fee.MaxBPS+1)
		})
		require.ErrorIs(t, err, common.ErrInvalidDiscount)

		err = e.adminExec(func(ic *host.Context, nonce uint64) error {
			return e.contract.SetVolumeBrackets(ic, admin, nonce, fee.Brackets{
				{Threshold: 10, DiscountBPS: 100},
				{Threshold: 10, DiscountBPS: 200},
			})
		})
		require.ErrorIs(t, err, common.ErrInvalidBrackets)
	})

	t.Run("not admin", func(t *testing.T) {
		err := e.exec(operator, func(ic *host.Context) error {
			return e.contract.SetTierDiscount(ic, operator, e.nonce(ic, operator, replay.ChannelAdmin), 1, 0)
		})
		require.ErrorIs(t, err, common.ErrUnauthorized)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		require.NoError(t, e.adminExec(func(ic *host.Context, nonce uint64) error {
			return e.contract.SetFeeConfig(ic, admin, nonce, fee.Config{
				Token:     tokenHash,
				Collector: collector,
				BaseFee:   big.NewInt(funds),
				Enabled:   true,
			})
		}))

		err := e.submit(business2, submission(business2, "p1"))
		require.NoError(t, err)

		err = e.submit(business2, submission(business2, "p2"))
		require.ErrorIs(t, err, common.ErrInsufficientBalance)
		require.ErrorIs(t, err, common.ErrEconomic)
		require.Nil(t, e.record(business2, "p2"))
	})
}

func TestSubmitBatch(t *testing.T) {
	e := newEnv(t)

	existing := submission(business, "2024-01")
	require.NoError(t, e.submit(business, existing))

	t.Run("duplicate of existing key", func(t *testing.T) {
		changed := existing
		changed.Commitment = commitment("changed")

		batch := []records.Submission{
			submission(business, "2024-02"),
			changed,
			submission(business, "2024-03"),
		}

		err := e.submitBatch(attestor, batch)
		require.ErrorIs(t, err, common.ErrAlreadyExists)

		require.Nil(t, e.record(business, "2024-02"))
		require.Nil(t, e.record(business, "2024-03"))
		require.Equal(t, existing.Commitment, e.record(business, existing.Period).Commitment)
		require.EqualValues(t, funds-baseFee, e.balance(business))
	})

	t.Run("insufficient balance of one business", func(t *testing.T) {
		batch := make([]records.Submission, 0, 12)
		batch = append(batch, submission(business, "2024-02"))
		for i := 0; i < 11; i++ {
			batch = append(batch, submission(business2, fmt.Sprintf("2024-%02d", i+2)))
		}

		err := e.submitBatch(attestor, batch)
		require.ErrorIs(t, err, common.ErrInsufficientBalance)
		require.Nil(t, e.record(business, "2024-02"))
		require.EqualValues(t, funds-baseFee, e.balance(business))
		require.EqualValues(t, funds, e.balance(business2))
	})

	t.Run("transfer of the second business fails", func(t *testing.T) {
		e.token.FailFrom = &business2
		t.Cleanup(func() { e.token.FailFrom = nil })

		err := e.submitBatch(attestor, []records.Submission{
			submission(business, "2024-02"),
			submission(business2, "2024-02"),
		})
		require.ErrorIs(t, err, testcontracts.ErrTokenFailure)
		require.Nil(t, e.record(business, "2024-02"))
		require.EqualValues(t, funds-baseFee, e.balance(business))

		// fee of the first business was collected within the failed call only
		require.EqualValues(t, baseFee, testutil.ToFloat64(e.metrics.fees))
		require.EqualValues(t, 1, testutil.ToFloat64(e.metrics.submissions))
	})

	t.Run("business submits for another", func(t *testing.T) {
		err := e.submitBatch(business, []records.Submission{
			submission(business, "2024-02"),
			submission(business2, "2024-02"),
		})
		require.ErrorIs(t, err, common.ErrUnauthorized)
	})

	batch := []records.Submission{
		submission(business, "2024-02"),
		submission(business2, "2024-02"),
		submission(business, "2024-03"),
	}
	require.NoError(t, e.submitBatch(attestor, batch))

	for i := range batch {
		r := e.record(batch[i].Business, batch[i].Period)
		require.NotNil(t, r)
		require.Equal(t, batch[i].Commitment, r.Commitment)
		require.EqualValues(t, baseFee, r.FeePaid.Int64())
	}

	require.EqualValues(t, funds-3*baseFee, e.balance(business))
	require.EqualValues(t, funds-baseFee, e.balance(business2))
	require.EqualValues(t, 4*baseFee, e.balance(collector))

	var feeEvents int
	for _, name := range e.notifications() {
		if name == notifyFeeCollected {
			feeEvents++
		}
	}
	// one for the single submission and one per business of the batch
	require.Equal(t, 3, feeEvents)
	require.EqualValues(t, 4*baseFee, testutil.ToFloat64(e.metrics.fees))
	require.EqualValues(t, 4, testutil.ToFloat64(e.metrics.submissions))
}

func TestRevokeAndMigrate(t *testing.T) {
	e := newEnv(t)

	s := submission(business, "2024-Q1")
	require.NoError(t, e.submit(business, s))

	v2 := commitment("v2")

	t.Run("migrate by business", func(t *testing.T) {
		err := e.exec(business, func(ic *host.Context) error {
			return e.contract.MigrateAttestation(ic, business, e.nonce(ic, business, replay.ChannelAdmin),
				business, s.Period, v2, 2)
		})
		require.ErrorIs(t, err, common.ErrUnauthorized)
	})

	migrate := func(version uint32) error {
		return e.adminExec(func(ic *host.Context, nonce uint64) error {
			return e.contract.MigrateAttestation(ic, admin, nonce, business, s.Period, v2, version)
		})
	}

	require.ErrorIs(t, migrate(1), common.ErrVersionNotIncreasing)
	require.NoError(t, migrate(2))

	require.False(t, e.verify(business, s.Period, s.Commitment))
	require.True(t, e.verify(business, s.Period, v2))
	require.EqualValues(t, 2, e.record(business, s.Period).SchemaVersion)

	revoke := func(caller util.Uint160) error {
		return e.exec(caller, func(ic *host.Context) error {
			return e.contract.RevokeAttestation(ic, caller, e.nonce(ic, caller, replay.ChannelBusiness),
				business, s.Period, "restated")
		})
	}

	require.ErrorIs(t, revoke(attestor), common.ErrUnauthorized)
	require.NoError(t, revoke(business))
	require.ErrorIs(t, revoke(admin), common.ErrAlreadyRevoked)

	require.False(t, e.verify(business, s.Period, v2))

	e.view(func(ic *host.Context) error {
		ok, err := IsRevoked(ic, business, s.Period)
		require.NoError(t, err)
		require.True(t, ok)
		return nil
	})

	require.EqualValues(t, 1, testutil.ToFloat64(e.metrics.revocations))
	require.EqualValues(t, 1, testutil.ToFloat64(e.metrics.migrations))
}

func TestRateLimit(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.adminExec(func(ic *host.Context, nonce uint64) error {
		return e.contract.SetRateLimit(ic, admin, nonce, ratelimit.Config{
			MaxSubmissions: 2,
			WindowSeconds:  100,
			Enabled:        true,
		})
	}))

	require.NoError(t, e.submit(business, submission(business, "p1")))
	require.NoError(t, e.submit(business, submission(business, "p2")))

	err := e.submit(business, submission(business, "p3"))
	require.ErrorIs(t, err, common.ErrRateLimitExceeded)

	// other businesses are not affected
	require.NoError(t, e.submit(business2, submission(business2, "p1")))

	e.chain.AdvanceTime(101)

	require.NoError(t, e.submit(business, submission(business, "p3")))

	e.view(func(ic *host.Context) error {
		n, err := ratelimit.Count(ic, business)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
		return nil
	})
}

func TestManySubmissions(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.adminExec(func(ic *host.Context, nonce uint64) error {
		return e.contract.SetFeeConfig(ic, admin, nonce, fee.Config{
			Token:     tokenHash,
			Collector: collector,
			BaseFee:   big.NewInt(baseFee),
		})
	}))

	const n = 2100

	for i := 0; i < n; i += records.MaxBatchSize {
		batch := make([]records.Submission, records.MaxBatchSize)
		for j := range batch {
			batch[j] = submission(business, fmt.Sprintf("p%04d", i+j))
		}
		require.NoError(t, e.submitBatch(business, batch), "batch from #%d", i)
	}

	require.NoError(t, e.submit(business, submission(business, "last")))
	require.NotNil(t, e.record(business, "last"))
	require.EqualValues(t, funds, e.balance(business))

	e.view(func(ic *host.Context) error {
		periods, err := GetPeriods(ic, business)
		require.NoError(t, err)
		require.Len(t, periods, n+1)

		cnt, err := ratelimit.Count(ic, business)
		require.NoError(t, err)
		require.Zero(t, cnt)
		return nil
	})
}

func TestReplay(t *testing.T) {
	e := newEnv(t)

	pause := func(nonce uint64) error {
		return e.exec(operator, func(ic *host.Context) error {
			return e.contract.Pause(ic, operator, nonce)
		})
	}

	require.ErrorIs(t, pause(1), common.ErrNonceMismatch)
	require.NoError(t, pause(0))
	require.ErrorIs(t, pause(0), common.ErrNonceMismatch)
	require.NoError(t, pause(1))

	// channels are independent
	e.view(func(ic *host.Context) error {
		require.EqualValues(t, 2, e.nonce(ic, operator, replay.ChannelAdmin))
		require.EqualValues(t, 0, e.nonce(ic, operator, replay.ChannelDispute))

		_, err := GetNonce(ic, operator, replay.Channel(100))
		require.ErrorIs(t, err, common.ErrInvalidArgument)
		return nil
	})
}

func TestGovernance(t *testing.T) {
	e := newEnv(t)

	owners := []util.Uint160{hosttest.Account(0x51), hosttest.Account(0x52), hosttest.Account(0x53)}

	require.NoError(t, e.adminExec(func(ic *host.Context, nonce uint64) error {
		return e.contract.SetupMultisig(ic, admin, nonce, owners, 2)
	}))

	gov := func(owner util.Uint160, f func(ic *host.Context, nonce uint64) error) error {
		return e.exec(owner, func(ic *host.Context) error {
			return f(ic, e.nonce(ic, owner, replay.ChannelGovernance))
		})
	}

	create := func(owner util.Uint160, a multisig.Action) uint64 {
		var id uint64
		require.NoError(t, gov(owner, func(ic *host.Context, nonce uint64) error {
			p, err := e.contract.CreateProposal(ic, owner, nonce, a)
			if err == nil {
				id = p.ID
			}
			return err
		}))
		return id
	}

	execute := func(owner util.Uint160, id uint64) error {
		return gov(owner, func(ic *host.Context, nonce uint64) error {
			return e.contract.ExecuteProposal(ic, owner, nonce, id)
		})
	}

	approve := func(owner util.Uint160, id uint64) error {
		return gov(owner, func(ic *host.Context, nonce uint64) error {
			return e.contract.ApproveProposal(ic, owner, nonce, id)
		})
	}

	t.Run("pause", func(t *testing.T) {
		id := create(owners[0], multisig.PauseAction())
		require.EqualValues(t, 0, id)

		require.ErrorIs(t, execute(owners[0], id), common.ErrNotApproved)
		require.ErrorIs(t, approve(owners[0], id), common.ErrAlreadyApproved)
		require.NoError(t, approve(owners[1], id))
		require.NoError(t, execute(owners[2], id))
		require.ErrorIs(t, execute(owners[2], id), common.ErrNotPending)

		e.view(func(ic *host.Context) error {
			paused, err := IsPaused(ic)
			require.NoError(t, err)
			require.True(t, paused)

			p, err := GetProposal(ic, id)
			require.NoError(t, err)
			require.Equal(t, multisig.StatusExecuted, p.Status)
			return nil
		})

		require.ErrorIs(t, e.submit(business, submission(business, "p")), common.ErrPaused)

		id = create(owners[1], multisig.UnpauseAction())
		require.NoError(t, approve(owners[2], id))
		require.NoError(t, execute(owners[1], id))
		require.NoError(t, e.submit(business, submission(business, "p")))
	})

	t.Run("reject and expire", func(t *testing.T) {
		id := create(owners[0], multisig.ChangeThresholdAction(3))

		require.ErrorIs(t, gov(stranger, func(ic *host.Context, nonce uint64) error {
			return e.contract.RejectProposal(ic, stranger, nonce, id)
		}), common.ErrNotOwner)
		require.NoError(t, gov(owners[2], func(ic *host.Context, nonce uint64) error {
			return e.contract.RejectProposal(ic, owners[2], nonce, id)
		}))
		require.ErrorIs(t, approve(owners[1], id), common.ErrNotPending)

		id = create(owners[0], multisig.ChangeThresholdAction(3))

		expire := func() error {
			return e.chain.Exec(contractHash, "test", nil, func(ic *host.Context) error {
				return e.contract.ExpireProposal(ic, id)
			})
		}

		require.ErrorIs(t, expire(), common.ErrNotExpired)

		e.chain.AdvanceTime(multisig.DefaultProposalTTL + 1)

		require.ErrorIs(t, approve(owners[1], id), common.ErrExpired)
		require.NoError(t, expire())
		require.ErrorIs(t, expire(), common.ErrNotPending)
	})

	t.Run("governance parameters", func(t *testing.T) {
		err := e.adminExec(func(ic *host.Context, nonce uint64) error {
			return e.contract.SetProposalTTL(ic, admin, nonce, multisig.MinProposalTTL)
		})
		require.ErrorIs(t, err, common.ErrUnauthorized)
		require.ErrorContains(t, err, "governed by multisig")

		err = e.adminExec(func(ic *host.Context, nonce uint64) error {
			return e.contract.SetRotationConfig(ic, admin, nonce, rotation.Config{ConfirmationWindow: 1})
		})
		require.ErrorIs(t, err, common.ErrUnauthorized)
		require.ErrorContains(t, err, "governed by multisig")

		for _, a := range []multisig.Action{
			multisig.SetProposalTTLAction(math.MaxUint64),
			multisig.SetRotationConfigAction(0, 0, 0),
			multisig.SetRotationConfigAction(math.MaxUint64, math.MaxUint64, 0),
		} {
			require.ErrorIs(t, gov(owners[0], func(ic *host.Context, nonce uint64) error {
				_, err := e.contract.CreateProposal(ic, owners[0], nonce, a)
				return err
			}), common.ErrInvalidArgument, a.String())
		}

		id := create(owners[0], multisig.SetProposalTTLAction(multisig.MinProposalTTL))
		require.ErrorIs(t, execute(owners[0], id), common.ErrNotApproved)
		require.NoError(t, approve(owners[1], id))
		require.NoError(t, execute(owners[0], id))

		id = create(owners[2], multisig.SetRotationConfigAction(10, 20, 30))
		require.NoError(t, approve(owners[1], id))
		require.NoError(t, execute(owners[2], id))

		e.view(func(ic *host.Context) error {
			ttl, err := multisig.ProposalTTL(ic)
			require.NoError(t, err)
			require.EqualValues(t, multisig.MinProposalTTL, ttl)

			cfg, err := rotation.GetConfig(ic)
			require.NoError(t, err)
			require.Equal(t, rotation.Config{Timelock: 10, ConfirmationWindow: 20, Cooldown: 30}, cfg)
			return nil
		})
	})

	t.Run("emergency rotation", func(t *testing.T) {
		planned := hosttest.Account(0xA1)
		emergency := hosttest.Account(0xA2)

		require.NoError(t, e.exec(admin, func(ic *host.Context) error {
			_, err := e.contract.ProposeKeyRotation(ic, admin, e.nonce(ic, admin, replay.ChannelRotation), planned)
			return err
		}))

		id := create(owners[0], multisig.EmergencyRotateAdminAction(emergency))
		require.NoError(t, approve(owners[1], id))
		require.NoError(t, execute(owners[0], id))

		e.view(func(ic *host.Context) error {
			a, err := GetAdmin(ic)
			require.NoError(t, err)
			require.Equal(t, emergency, a)

			pending, err := GetPendingKeyRotation(ic)
			require.NoError(t, err)
			require.Nil(t, pending)

			h, err := GetRotationHistory(ic)
			require.NoError(t, err)
			require.Len(t, h, 1)
			require.True(t, h[0].IsEmergency)
			require.Equal(t, admin, h[0].OldAdmin)
			return nil
		})

		require.Contains(t, e.notifications(), notifyEmergencyKeyRotation)
		require.EqualValues(t, 1, testutil.ToFloat64(e.metrics.rotations.WithLabelValues("emergency")))
	})
}

func TestKeyRotation(t *testing.T) {
	e := newEnv(t)

	newAdmin := hosttest.Account(0xA1)

	require.NoError(t, e.adminExec(func(ic *host.Context, nonce uint64) error {
		return e.contract.SetRotationConfig(ic, admin, nonce, rotation.Config{
			Timelock:           100,
			ConfirmationWindow: 50,
			Cooldown:           1000,
		})
	}))

	rot := func(caller util.Uint160, f func(ic *host.Context, nonce uint64) error) error {
		return e.exec(caller, func(ic *host.Context) error {
			return f(ic, e.nonce(ic, caller, replay.ChannelRotation))
		})
	}

	propose := func(caller, to util.Uint160) error {
		return rot(caller, func(ic *host.Context, nonce uint64) error {
			_, err := e.contract.ProposeKeyRotation(ic, caller, nonce, to)
			return err
		})
	}

	confirm := func(caller util.Uint160) error {
		return rot(caller, func(ic *host.Context, nonce uint64) error {
			return e.contract.ConfirmKeyRotation(ic, caller, nonce)
		})
	}

	require.ErrorIs(t, propose(newAdmin, newAdmin), common.ErrUnauthorized)
	require.ErrorIs(t, propose(admin, admin), common.ErrSameAdmin)
	require.NoError(t, propose(admin, newAdmin))
	require.ErrorIs(t, propose(admin, stranger), common.ErrRotationPending)

	require.ErrorIs(t, confirm(newAdmin), common.ErrTimelockActive)

	e.chain.AdvanceTime(100)

	require.ErrorIs(t, confirm(stranger), common.ErrUnauthorized)
	require.NoError(t, confirm(newAdmin))

	e.view(func(ic *host.Context) error {
		a, err := GetAdmin(ic)
		require.NoError(t, err)
		require.Equal(t, newAdmin, a)

		ok, err := HasRole(ic, admin, access.Admin)
		require.NoError(t, err)
		require.False(t, ok)
		return nil
	})

	require.ErrorIs(t, confirm(newAdmin), common.ErrNotPending)
	require.ErrorIs(t, propose(newAdmin, admin), common.ErrCooldownActive)

	e.chain.AdvanceTime(1000)

	t.Run("cancel", func(t *testing.T) {
		require.NoError(t, propose(newAdmin, admin))
		require.ErrorIs(t, rot(admin, func(ic *host.Context, nonce uint64) error {
			return e.contract.CancelKeyRotation(ic, admin, nonce)
		}), common.ErrUnauthorized)
		require.NoError(t, rot(newAdmin, func(ic *host.Context, nonce uint64) error {
			return e.contract.CancelKeyRotation(ic, newAdmin, nonce)
		}))
	})

	t.Run("expired", func(t *testing.T) {
		require.NoError(t, propose(newAdmin, admin))

		e.chain.AdvanceTime(151)

		require.ErrorIs(t, confirm(admin), common.ErrExpired)

		e.view(func(ic *host.Context) error {
			r, err := GetPendingKeyRotation(ic)
			require.NoError(t, err)
			require.Nil(t, r)
			return nil
		})

		// expired request doesn't block new ones
		require.NoError(t, propose(newAdmin, admin))
	})
}

func TestDisputes(t *testing.T) {
	e := newEnv(t)

	s := submission(business, "2024-Q1")
	require.NoError(t, e.submit(business, s))

	challenger := stranger

	disp := func(caller util.Uint160, f func(ic *host.Context, nonce uint64) error) error {
		return e.exec(caller, func(ic *host.Context) error {
			return f(ic, e.nonce(ic, caller, replay.ChannelDispute))
		})
	}

	open := func(period string) (uint64, error) {
		var id uint64
		err := disp(challenger, func(ic *host.Context, nonce uint64) error {
			var err error
			id, err = e.contract.OpenDispute(ic, challenger, nonce, business, period, dispute.TypeRevenueMismatch, "ipfs://evidence")
			return err
		})
		return id, err
	}

	_, err := open("2023-Q4")
	require.ErrorIs(t, err, common.ErrNotFound)

	id, err := open(s.Period)
	require.NoError(t, err)
	require.EqualValues(t, 0, id)

	_, err = open(s.Period)
	require.ErrorIs(t, err, common.ErrDuplicateDispute)

	closeDispute := func(caller util.Uint160) error {
		return disp(caller, func(ic *host.Context, nonce uint64) error {
			return e.contract.CloseDispute(ic, caller, nonce, id)
		})
	}

	require.ErrorIs(t, closeDispute(challenger), common.ErrNotResolved)

	resolve := func(caller util.Uint160) error {
		return disp(caller, func(ic *host.Context, nonce uint64) error {
			return e.contract.ResolveDispute(ic, caller, nonce, id, dispute.OutcomeUpheld, "confirmed")
		})
	}

	require.ErrorIs(t, resolve(business), common.ErrUnauthorized)
	require.NoError(t, resolve(operator))
	require.ErrorIs(t, resolve(operator), common.ErrNotOpen)

	require.ErrorIs(t, closeDispute(business), common.ErrUnauthorized)
	require.NoError(t, closeDispute(challenger))

	e.view(func(ic *host.Context) error {
		d, err := GetDispute(ic, id)
		require.NoError(t, err)
		require.Equal(t, dispute.StatusClosed, d.Status)
		require.Equal(t, dispute.OutcomeUpheld, d.Resolution.Outcome)

		ids, err := GetDisputes(ic, business, s.Period)
		require.NoError(t, err)
		require.Equal(t, []uint64{id}, ids)
		return nil
	})

	// resolved dispute doesn't block new ones
	id, err = open(s.Period)
	require.NoError(t, err)
	require.EqualValues(t, 1, id)

	require.EqualValues(t, 2, testutil.ToFloat64(e.metrics.disputes.WithLabelValues(dispute.StatusOpen.String())))
}
