package records

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/common"
	"github.com/nspcc-dev/revenue-attestation/contracts/access"
	"github.com/nspcc-dev/revenue-attestation/host"
	"github.com/nspcc-dev/revenue-attestation/host/hosttest"
	"github.com/stretchr/testify/require"
)

const now = 1_700_000_000

var (
	admin    = hosttest.Account(0xAD)
	business = hosttest.Account(1)
)

func newChain(t *testing.T) *host.Chain {
	c := hosttest.NewChain(t, now)
	require.NoError(t, hosttest.Exec(c, func(ic *host.Context) error {
		return access.Initialize(ic, admin)
	}))
	return c
}

func commitment(s string) util.Uint256 {
	return hash.Sha256([]byte(s))
}

func submission(period string) Submission {
	return Submission{
		Business:      business,
		Period:        period,
		Commitment:    commitment(period),
		CapturedAt:    now - 100,
		SchemaVersion: 1,
	}
}

func submit(c *host.Chain, s Submission, fee int64) error {
	return hosttest.Exec(c, func(ic *host.Context) error {
		_, err := Submit(ic, &s, s.Business, big.NewInt(fee))
		return err
	})
}

func get(t *testing.T, c *host.Chain, b util.Uint160, period string) *Record {
	var r *Record
	hosttest.View(t, c, func(ic *host.Context) error {
		var err error
		r, err = Get(ic, b, period)
		return err
	})
	return r
}

func verify(t *testing.T, c *host.Chain, period string, h util.Uint256) bool {
	var ok bool
	hosttest.View(t, c, func(ic *host.Context) error {
		var err error
		ok, err = Verify(ic, business, period, h)
		return err
	})
	return ok
}

func TestSubmit(t *testing.T) {
	c := newChain(t)

	proof := commitment("proof")
	s := submission("2024-Q1")
	s.ProofHash = &proof
	s.Expiry = now + 1000

	require.Nil(t, get(t, c, business, s.Period))
	require.NoError(t, submit(c, s, 720_000))

	r := get(t, c, business, s.Period)
	require.NotNil(t, r)
	require.Equal(t, s.Commitment, r.Commitment)
	require.Equal(t, s.CapturedAt, r.CapturedAt)
	require.EqualValues(t, 1, r.SchemaVersion)
	require.EqualValues(t, 720_000, r.FeePaid.Int64())
	require.Equal(t, &proof, r.ProofHash)
	require.EqualValues(t, now+1000, r.Expiry)
	require.EqualValues(t, now, r.SubmittedAt)
	require.Equal(t, business, r.Submitter)
	require.Nil(t, r.Revocation)
	require.Equal(t, StatusActive, r.Status(now))
	require.Equal(t, StatusExpired, r.Status(now+1000))

	require.True(t, verify(t, c, s.Period, s.Commitment))
	require.False(t, verify(t, c, s.Period, commitment("other")))
	require.False(t, verify(t, c, "2024-Q2", s.Commitment))

	t.Run("duplicate", func(t *testing.T) {
		other := submission("2024-Q1")
		other.Commitment = commitment("other")

		err := submit(c, other, 0)
		require.ErrorIs(t, err, common.ErrAlreadyExists)
		require.ErrorIs(t, err, common.ErrState)
		require.Equal(t, s.Commitment, get(t, c, business, s.Period).Commitment)
	})

	hosttest.View(t, c, func(ic *host.Context) error {
		periods, err := Periods(ic, business)
		require.NoError(t, err)
		require.Equal(t, []string{"2024-Q1"}, periods)
		return nil
	})
}

func TestSubmissionValidation(t *testing.T) {
	c := newChain(t)
	zero := util.Uint256{}

	for name, f := range map[string]func(s *Submission){
		"empty period":    func(s *Submission) { s.Period = "" },
		"long period":     func(s *Submission) { s.Period = string(make([]byte, MaxPeriodLength+1)) },
		"invalid period":  func(s *Submission) { s.Period = "\xff" },
		"zero business":   func(s *Submission) { s.Business = util.Uint160{} },
		"zero commitment": func(s *Submission) { s.Commitment = util.Uint256{} },
		"zero proof":      func(s *Submission) { s.ProofHash = &zero },
		"zero version":    func(s *Submission) { s.SchemaVersion = 0 },
		"future capture":  func(s *Submission) { s.CapturedAt = now + 1 },
		"past expiry":     func(s *Submission) { s.Expiry = now },
	} {
		t.Run(name, func(t *testing.T) {
			s := submission("2024-Q1")
			f(&s)

			err := submit(c, s, 0)
			require.ErrorIs(t, err, common.ErrInvalidArgument)
			require.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestRevoke(t *testing.T) {
	c := newChain(t)
	s := submission("2024-Q1")

	revoke := func(caller util.Uint160, period string) error {
		return hosttest.Exec(c, func(ic *host.Context) error {
			_, err := Revoke(ic, caller, business, period, "wrong data")
			return err
		})
	}

	require.ErrorIs(t, revoke(business, s.Period), common.ErrNotFound)
	require.NoError(t, submit(c, s, 0))

	t.Run("stranger", func(t *testing.T) {
		err := revoke(hosttest.Account(0x42), s.Period)
		require.ErrorIs(t, err, common.ErrUnauthorized)
		require.ErrorIs(t, err, common.ErrAuthorization)
	})

	require.NoError(t, c.SetTime(now+10))
	require.NoError(t, revoke(business, s.Period))

	r := get(t, c, business, s.Period)
	require.NotNil(t, r.Revocation)
	require.Equal(t, business, r.Revocation.RevokedBy)
	require.EqualValues(t, now+10, r.Revocation.RevokedAt)
	require.Equal(t, "wrong data", r.Revocation.Reason)
	require.Equal(t, StatusRevoked, r.Status(now+10))

	require.False(t, verify(t, c, s.Period, s.Commitment))

	require.ErrorIs(t, revoke(business, s.Period), common.ErrAlreadyRevoked)
	require.ErrorIs(t, revoke(admin, s.Period), common.ErrAlreadyRevoked)

	t.Run("by admin", func(t *testing.T) {
		s := submission("2024-Q2")
		require.NoError(t, submit(c, s, 0))
		require.NoError(t, revoke(admin, s.Period))

		hosttest.View(t, c, func(ic *host.Context) error {
			revoked, err := IsRevoked(ic, business, s.Period)
			require.NoError(t, err)
			require.True(t, revoked)

			rev, err := GetRevocation(ic, business, s.Period)
			require.NoError(t, err)
			require.Equal(t, admin, rev.RevokedBy)
			return nil
		})
	})

	t.Run("long reason", func(t *testing.T) {
		err := hosttest.Exec(c, func(ic *host.Context) error {
			_, err := Revoke(ic, business, business, "2024-Q1", string(make([]byte, MaxReasonLength+1)))
			return err
		})
		require.ErrorIs(t, err, common.ErrInvalidArgument)
	})
}

func TestMigrate(t *testing.T) {
	c := newChain(t)
	s := submission("2024-Q1")
	require.NoError(t, submit(c, s, 0))

	v2 := commitment("v2")

	migrate := func(caller util.Uint160, h util.Uint256, version uint32) (uint32, error) {
		var prev uint32
		err := hosttest.Exec(c, func(ic *host.Context) error {
			var err error
			prev, err = Migrate(ic, caller, business, s.Period, h, version)
			return err
		})
		return prev, err
	}

	_, err := migrate(business, v2, 2)
	require.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = migrate(admin, v2, 1)
	require.ErrorIs(t, err, common.ErrVersionNotIncreasing)

	prev, err := migrate(admin, v2, 2)
	require.NoError(t, err)
	require.EqualValues(t, 1, prev)

	r := get(t, c, business, s.Period)
	require.Equal(t, v2, r.Commitment)
	require.EqualValues(t, 2, r.SchemaVersion)

	require.False(t, verify(t, c, s.Period, s.Commitment))
	require.True(t, verify(t, c, s.Period, v2))

	_, err = migrate(admin, commitment("v3"), 2)
	require.ErrorIs(t, err, common.ErrVersionNotIncreasing)

	t.Run("missing", func(t *testing.T) {
		err := hosttest.Exec(c, func(ic *host.Context) error {
			_, err := Migrate(ic, admin, business, "2030-Q1", v2, 5)
			return err
		})
		require.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("revoked", func(t *testing.T) {
		require.NoError(t, hosttest.Exec(c, func(ic *host.Context) error {
			_, err := Revoke(ic, business, business, s.Period, "")
			return err
		}))

		_, err := migrate(admin, commitment("v3"), 3)
		require.ErrorIs(t, err, common.ErrAlreadyRevoked)
		require.False(t, verify(t, c, s.Period, v2))
	})
}

func submitBatch(c *host.Chain, batch []Submission) error {
	return hosttest.Exec(c, func(ic *host.Context) error {
		fees := make([]*big.Int, len(batch))
		for i := range fees {
			fees[i] = big.NewInt(1)
		}
		_, err := SubmitBatch(ic, batch, business, fees)
		return err
	})
}

func TestSubmitBatch(t *testing.T) {
	c := newChain(t)

	existing := submission("2024-Q1")
	require.NoError(t, submit(c, existing, 0))

	t.Run("pre-existing key", func(t *testing.T) {
		dup := submission("2024-Q1")
		dup.Commitment = commitment("overwrite")

		err := submitBatch(c, []Submission{submission("2024-Q2"), dup, submission("2024-Q3")})
		require.ErrorIs(t, err, common.ErrAlreadyExists)

		require.Nil(t, get(t, c, business, "2024-Q2"))
		require.Nil(t, get(t, c, business, "2024-Q3"))
		require.Equal(t, existing.Commitment, get(t, c, business, "2024-Q1").Commitment)
	})

	t.Run("intra-batch duplicate", func(t *testing.T) {
		err := submitBatch(c, []Submission{submission("2024-Q2"), submission("2024-Q3"), submission("2024-Q2")})
		require.ErrorIs(t, err, common.ErrDuplicateBatchItem)
		require.Nil(t, get(t, c, business, "2024-Q2"))
	})

	t.Run("invalid item", func(t *testing.T) {
		bad := submission("2024-Q3")
		bad.SchemaVersion = 0

		err := submitBatch(c, []Submission{submission("2024-Q2"), bad})
		require.ErrorIs(t, err, common.ErrInvalidArgument)
		require.Nil(t, get(t, c, business, "2024-Q2"))
	})

	t.Run("size", func(t *testing.T) {
		require.ErrorIs(t, submitBatch(c, nil), common.ErrInvalidArgument)

		batch := make([]Submission, MaxBatchSize+1)
		for i := range batch {
			batch[i] = submission(fmt.Sprintf("p%d", i))
		}
		require.ErrorIs(t, submitBatch(c, batch), common.ErrInvalidArgument)
	})

	require.NoError(t, submitBatch(c, []Submission{submission("2024-Q2"), submission("2024-Q3")}))
	require.NotNil(t, get(t, c, business, "2024-Q2"))
	require.EqualValues(t, 1, get(t, c, business, "2024-Q3").FeePaid.Int64())

	hosttest.View(t, c, func(ic *host.Context) error {
		periods, err := Periods(ic, business)
		require.NoError(t, err)
		require.Equal(t, []string{"2024-Q1", "2024-Q2", "2024-Q3"}, periods)
		return nil
	})
}

func page(t *testing.T, c *host.Chain, q Query) Page {
	var p Page
	hosttest.View(t, c, func(ic *host.Context) error {
		var err error
		p, err = GetPage(ic, q)
		return err
	})
	return p
}

func periodsOf(p Page) []string {
	res := make([]string, len(p.Records))
	for i := range p.Records {
		res[i] = p.Records[i].Period
	}
	return res
}

func TestGetPage(t *testing.T) {
	c := newChain(t)

	const n = 40

	batch := make([]Submission, 0, n)
	for i := 0; i < n; i++ {
		s := submission(fmt.Sprintf("p%02d", i))
		s.CapturedAt = uint64(1000 + i)
		if i%10 == 0 {
			s.Expiry = now + 50
		}
		batch = append(batch, s)
	}

	require.NoError(t, submitBatch(c, batch[:n/2]))
	require.NoError(t, submitBatch(c, batch[n/2:]))

	t.Run("stored index", func(t *testing.T) {
		p := page(t, c, Query{Business: business})
		require.Len(t, p.Records, MaxPageSize)
		require.EqualValues(t, MaxPageSize, p.Next)
		require.False(t, p.Done)

		p = page(t, c, Query{Business: business, Cursor: p.Next, Limit: 100})
		require.Len(t, p.Records, n-MaxPageSize)
		require.EqualValues(t, n, p.Next)
		require.True(t, p.Done)
	})

	t.Run("known periods", func(t *testing.T) {
		q := Query{
			Business: business,
			Periods:  []string{"p05", "missing", "p01", "p03"},
			Limit:    2,
		}

		p := page(t, c, q)
		require.Equal(t, []string{"p05", "p01"}, periodsOf(p))
		require.EqualValues(t, 3, p.Next)

		q.Cursor = p.Next
		p = page(t, c, q)
		require.Equal(t, []string{"p03"}, periodsOf(p))
		require.True(t, p.Done)

		q.Cursor = 100
		p = page(t, c, q)
		require.Empty(t, p.Records)
		require.True(t, p.Done)
	})

	t.Run("capture range", func(t *testing.T) {
		p := page(t, c, Query{Business: business, From: 1010, To: 1012})
		require.Equal(t, []string{"p10", "p11", "p12"}, periodsOf(p))
	})

	t.Run("status", func(t *testing.T) {
		require.NoError(t, hosttest.Exec(c, func(ic *host.Context) error {
			_, err := Revoke(ic, admin, business, "p01", "")
			return err
		}))

		p := page(t, c, Query{Business: business, Status: StatusRevoked})
		require.Equal(t, []string{"p01"}, periodsOf(p))
		require.True(t, p.Done)

		p = page(t, c, Query{Business: business, Status: StatusExpired})
		require.Empty(t, p.Records)

		c.AdvanceTime(50)

		p = page(t, c, Query{Business: business, Status: StatusExpired})
		require.Equal(t, []string{"p00", "p10", "p20", "p30"}, periodsOf(p))

		p = page(t, c, Query{Business: business, Status: StatusActive, Limit: 5})
		require.Equal(t, []string{"p02", "p03", "p04", "p05", "p06"}, periodsOf(p))
		require.EqualValues(t, 7, p.Next)
	})

	t.Run("version", func(t *testing.T) {
		require.NoError(t, hosttest.Exec(c, func(ic *host.Context) error {
			_, err := Migrate(ic, admin, business, "p07", commitment("v2"), 2)
			return err
		}))

		p := page(t, c, Query{Business: business, Version: 2})
		require.Equal(t, []string{"p07"}, periodsOf(p))
	})
}

func TestManyPeriods(t *testing.T) {
	c := newChain(t)

	const n = 2100

	for i := 0; i < n; i += MaxBatchSize {
		batch := make([]Submission, MaxBatchSize)
		for j := range batch {
			batch[j] = submission(fmt.Sprintf("p%04d", i+j))
		}
		require.NoError(t, submitBatch(c, batch), "batch from #%d", i)
	}

	other := submission("p0000")
	other.Business = hosttest.Account(2)
	require.NoError(t, submit(c, other, 0))

	hosttest.View(t, c, func(ic *host.Context) error {
		periods, err := Periods(ic, business)
		require.NoError(t, err)
		require.Len(t, periods, n)
		require.Equal(t, "p0000", periods[0])
		require.Equal(t, fmt.Sprintf("p%04d", n-1), periods[n-1])

		cnt, err := PeriodsCount(ic, business)
		require.NoError(t, err)
		require.EqualValues(t, n, cnt)

		_, err = PeriodAt(ic, business, n)
		require.ErrorIs(t, err, common.ErrNotFound)
		return nil
	})

	p := page(t, c, Query{Business: business, Cursor: n - 10})
	require.Len(t, p.Records, 10)
	require.Equal(t, fmt.Sprintf("p%04d", n-10), p.Records[0].Period)
	require.True(t, p.Done)

	require.NoError(t, submit(c, submission("last"), 0))
	require.NotNil(t, get(t, c, business, "last"))
}

func TestRecordStackItem(t *testing.T) {
	proof := commitment("proof")
	r := Record{
		Business:      business,
		Period:        "2024-Q1",
		Commitment:    commitment("data"),
		CapturedAt:    1,
		SchemaVersion: 2,
		FeePaid:       big.NewInt(3),
		ProofHash:     &proof,
		Expiry:        4,
		SubmittedAt:   5,
		Submitter:     admin,
		Revocation:    &Revocation{RevokedBy: admin, RevokedAt: 6, Reason: "reason"},
	}

	item, err := r.ToStackItem()
	require.NoError(t, err)

	var got Record
	require.NoError(t, got.FromStackItem(item))
	require.Equal(t, r, got)
}
