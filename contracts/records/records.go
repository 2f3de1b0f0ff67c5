package records

import (
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/common"
	"github.com/nspcc-dev/revenue-attestation/contracts/access"
	"github.com/nspcc-dev/revenue-attestation/host"
	"go.uber.org/zap"
)

const (
	recordPrefix       = 'R'
	periodsPrefix      = 'P'
	periodsCountPrefix = 'N'
)

const (
	// MaxPeriodLength is a maximum length of the period identifier in bytes.
	MaxPeriodLength = 64
	// MaxReasonLength is a maximum length of the revocation reason in bytes.
	MaxReasonLength = 256
	// MaxBatchSize is a maximum number of attestations in one batch.
	MaxBatchSize = 50
)

func recordKey(business util.Uint160, period string) common.Key {
	return common.NewKey(recordPrefix).WithAccount(business).WithPeriod(period)
}

func periodsKey(business util.Uint160) common.Key {
	return common.NewKey(periodsPrefix).WithAccount(business)
}

func periodsCountKey(business util.Uint160) common.Key {
	return common.NewKey(periodsCountPrefix).WithAccount(business)
}

func notFound(business util.Uint160, period string) error {
	return fmt.Errorf("%w: attestation of %s for period '%s'",
		common.ErrNotFound, address.Uint160ToString(business), period)
}

func validatePeriod(period string) error {
	if period == "" {
		return fmt.Errorf("%w: empty period", common.ErrInvalidArgument)
	}
	if len(period) > MaxPeriodLength {
		return fmt.Errorf("%w: period is longer than %d bytes", common.ErrInvalidArgument, MaxPeriodLength)
	}
	if !utf8.ValidString(period) {
		return fmt.Errorf("%w: period is not a valid UTF-8 string", common.ErrInvalidArgument)
	}
	return nil
}

// Validate checks submission fields against the current time.
func (s *Submission) Validate(now uint64) error {
	if err := validatePeriod(s.Period); err != nil {
		return err
	}
	if s.Business.Equals(util.Uint160{}) {
		return fmt.Errorf("%w: zero business address", common.ErrInvalidArgument)
	}
	if s.Commitment.Equals(util.Uint256{}) {
		return fmt.Errorf("%w: zero commitment", common.ErrInvalidArgument)
	}
	if s.ProofHash != nil && s.ProofHash.Equals(util.Uint256{}) {
		return fmt.Errorf("%w: zero proof hash", common.ErrInvalidArgument)
	}
	if s.SchemaVersion == 0 {
		return fmt.Errorf("%w: zero schema version", common.ErrInvalidArgument)
	}
	if s.CapturedAt > now {
		return fmt.Errorf("%w: capture time %d is in the future", common.ErrInvalidArgument, s.CapturedAt)
	}
	if s.Expiry != 0 && s.Expiry <= now {
		return fmt.Errorf("%w: expiry %d is in the past", common.ErrInvalidArgument, s.Expiry)
	}
	return nil
}

// Get returns attestation of the business for the period or nil if there is
// no such attestation.
func Get(ic *host.Context, business util.Uint160, period string) (*Record, error) {
	var r Record

	ok, err := common.GetSerialized(ic, recordKey(business, period), &r)
	if err != nil || !ok {
		return nil, err
	}

	return &r, nil
}

func load(ic *host.Context, business util.Uint160, period string) (*Record, error) {
	r, err := Get(ic, business, period)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, notFound(business, period)
	}
	return r, nil
}

// Exists checks whether there is an attestation of the business for the
// period, revoked ones included.
func Exists(ic *host.Context, business util.Uint160, period string) bool {
	return common.Has(ic, recordKey(business, period))
}

// IsRevoked checks whether the attestation is revoked. It returns false for
// missing attestations.
func IsRevoked(ic *host.Context, business util.Uint160, period string) (bool, error) {
	r, err := Get(ic, business, period)
	if err != nil || r == nil {
		return false, err
	}
	return r.Revocation != nil, nil
}

// GetRevocation returns revocation details of the attestation or nil if it
// is not revoked.
func GetRevocation(ic *host.Context, business util.Uint160, period string) (*Revocation, error) {
	r, err := load(ic, business, period)
	if err != nil {
		return nil, err
	}
	return r.Revocation, nil
}

// IsExpired checks whether the attestation has expired. It returns false for
// missing attestations.
func IsExpired(ic *host.Context, business util.Uint160, period string) (bool, error) {
	r, err := Get(ic, business, period)
	if err != nil || r == nil {
		return false, err
	}
	return r.Expiry != 0 && ic.Time() >= r.Expiry, nil
}

// Verify checks whether there is a non-revoked attestation of the business
// for the period with the given commitment.
func Verify(ic *host.Context, business util.Uint160, period string, commitment util.Uint256) (bool, error) {
	r, err := Get(ic, business, period)
	if err != nil || r == nil {
		return false, err
	}
	return r.Revocation == nil && r.Commitment.Equals(commitment), nil
}

// Periods returns attested periods of the business in submission order.
func Periods(ic *host.Context, business util.Uint160) ([]string, error) {
	var res []string

	ic.Find(periodsKey(business).Bytes(), func(_, v []byte) bool {
		res = append(res, string(v))
		return true
	})

	return res, nil
}

// PeriodsCount returns number of attested periods of the business.
func PeriodsCount(ic *host.Context, business util.Uint160) (uint64, error) {
	return common.GetUint64(ic, periodsCountKey(business))
}

// PeriodAt returns n-th attested period of the business in submission order.
func PeriodAt(ic *host.Context, business util.Uint160, n uint64) (string, error) {
	v := ic.Get(periodsKey(business).WithID(n).Bytes())
	if v == nil {
		return "", fmt.Errorf("%w: period #%d of %s", common.ErrNotFound, n, address.Uint160ToString(business))
	}
	return string(v), nil
}

func appendPeriod(ic *host.Context, business util.Uint160, period string) error {
	n, err := PeriodsCount(ic, business)
	if err != nil {
		return err
	}

	err = ic.Put(periodsKey(business).WithID(n).Bytes(), []byte(period))
	if err != nil {
		return err
	}

	return common.PutUint64(ic, periodsCountKey(business), n+1)
}

// ValidateSubmission checks that the submission can be stored.
func ValidateSubmission(ic *host.Context, s *Submission) error {
	if err := s.Validate(ic.Time()); err != nil {
		return err
	}

	if Exists(ic, s.Business, s.Period) {
		return fmt.Errorf("%w: attestation of %s for period '%s'",
			common.ErrAlreadyExists, address.Uint160ToString(s.Business), s.Period)
	}

	return nil
}

// ValidateBatch checks that all submissions of the batch can be stored.
func ValidateBatch(ic *host.Context, batch []Submission) error {
	if len(batch) == 0 {
		return fmt.Errorf("%w: empty batch", common.ErrInvalidArgument)
	}
	if len(batch) > MaxBatchSize {
		return fmt.Errorf("%w: batch of %d items exceeds %d", common.ErrInvalidArgument, len(batch), MaxBatchSize)
	}

	seen := make(map[string]int, len(batch))

	for i := range batch {
		err := ValidateSubmission(ic, &batch[i])
		if err != nil {
			return fmt.Errorf("item #%d: %w", i, err)
		}

		k := string(recordKey(batch[i].Business, batch[i].Period).Bytes())
		if j, ok := seen[k]; ok {
			return fmt.Errorf("%w: items #%d and #%d", common.ErrDuplicateBatchItem, j, i)
		}
		seen[k] = i
	}

	return nil
}

// Submit stores new attestation. Submitter and fee are taken as is, caller is
// responsible for their correctness.
func Submit(ic *host.Context, s *Submission, submitter util.Uint160, fee *big.Int) (*Record, error) {
	err := ValidateSubmission(ic, s)
	if err != nil {
		return nil, err
	}

	return put(ic, s, submitter, fee)
}

// SubmitBatch stores all attestations of the batch or none of them. fees
// must have the same length as batch.
func SubmitBatch(ic *host.Context, batch []Submission, submitter util.Uint160, fees []*big.Int) ([]*Record, error) {
	if len(fees) != len(batch) {
		return nil, fmt.Errorf("%w: %d fees for %d items", common.ErrInvalidArgument, len(fees), len(batch))
	}

	err := ValidateBatch(ic, batch)
	if err != nil {
		return nil, err
	}

	res := make([]*Record, len(batch))

	for i := range batch {
		res[i], err = put(ic, &batch[i], submitter, fees[i])
		if err != nil {
			return nil, fmt.Errorf("item #%d: %w", i, err)
		}
	}

	return res, nil
}

func put(ic *host.Context, s *Submission, submitter util.Uint160, fee *big.Int) (*Record, error) {
	if fee == nil {
		fee = new(big.Int)
	}

	r := &Record{
		Business:      s.Business,
		Period:        s.Period,
		Commitment:    s.Commitment,
		CapturedAt:    s.CapturedAt,
		SchemaVersion: s.SchemaVersion,
		FeePaid:       fee,
		ProofHash:     s.ProofHash,
		Expiry:        s.Expiry,
		SubmittedAt:   ic.Time(),
		Submitter:     submitter,
	}

	err := common.SetSerialized(ic, recordKey(s.Business, s.Period), r)
	if err != nil {
		return nil, err
	}

	err = appendPeriod(ic, s.Business, s.Period)
	if err != nil {
		return nil, err
	}

	ic.Logger().Debug("attestation stored",
		zap.Stringer("business", s.Business),
		zap.String("period", s.Period),
		zap.String("commitment", common.EncodeID(s.Commitment)),
		zap.Uint32("schema version", s.SchemaVersion))

	return r, nil
}

// Revoke marks the attestation revoked. The caller must be either the
// business itself or the admin.
func Revoke(ic *host.Context, caller, business util.Uint160, period, reason string) (*Revocation, error) {
	if len(reason) > MaxReasonLength {
		return nil, fmt.Errorf("%w: reason is longer than %d bytes", common.ErrInvalidArgument, MaxReasonLength)
	}

	if !caller.Equals(business) {
		err := access.RequireRole(ic, caller, access.Admin)
		if err != nil {
			return nil, err
		}
	}

	r, err := load(ic, business, period)
	if err != nil {
		return nil, err
	}

	if r.Revocation != nil {
		return nil, fmt.Errorf("%w: attestation of %s for period '%s' at %d",
			common.ErrAlreadyRevoked, address.Uint160ToString(business), period, r.Revocation.RevokedAt)
	}

	r.Revocation = &Revocation{
		RevokedBy: caller,
		RevokedAt: ic.Time(),
		Reason:    reason,
	}

	err = common.SetSerialized(ic, recordKey(business, period), r)
	if err != nil {
		return nil, err
	}

	return r.Revocation, nil
}

// Migrate replaces commitment of the attestation with the new one of greater
// schema version. The caller must be the admin. Revoked attestations can not
// be migrated. Migrate returns previous schema version.
func Migrate(ic *host.Context, caller, business util.Uint160, period string, commitment util.Uint256, version uint32) (uint32, error) {
	err := access.RequireRole(ic, caller, access.Admin)
	if err != nil {
		return 0, err
	}

	if commitment.Equals(util.Uint256{}) {
		return 0, fmt.Errorf("%w: zero commitment", common.ErrInvalidArgument)
	}

	r, err := load(ic, business, period)
	if err != nil {
		return 0, err
	}

	if r.Revocation != nil {
		return 0, fmt.Errorf("%w: attestation of %s for period '%s'",
			common.ErrAlreadyRevoked, address.Uint160ToString(business), period)
	}

	if version <= r.SchemaVersion {
		return 0, fmt.Errorf("%w: %d <= %d", common.ErrVersionNotIncreasing, version, r.SchemaVersion)
	}

	prev := r.SchemaVersion

	r.Commitment = commitment
	r.SchemaVersion = version

	err = common.SetSerialized(ic, recordKey(business, period), r)
	if err != nil {
		return 0, err
	}

	return prev, nil
}
