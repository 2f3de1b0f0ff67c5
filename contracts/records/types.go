package records

import (
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/revenue-attestation/common"
)

// Status is a lifecycle status of the attestation.
type Status uint8

// Attestation statuses. StatusAny is used as an empty filter.
const (
	StatusAny Status = iota
	StatusActive
	StatusRevoked
	StatusExpired
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusAny:
		return "any"
	case StatusActive:
		return "active"
	case StatusRevoked:
		return "revoked"
	case StatusExpired:
		return "expired"
	default:
		return fmt.Sprintf("unknown#%d", s)
	}
}

// Revocation describes revocation of the attestation.
type Revocation struct {
	RevokedBy util.Uint160
	RevokedAt uint64
	Reason    string
}

// Record is a stored attestation.
type Record struct {
	Business util.Uint160
	Period   string

	Commitment    util.Uint256
	CapturedAt    uint64
	SchemaVersion uint32
	FeePaid       *big.Int
	// Optional hash of the off-chain proof.
	ProofHash *util.Uint256
	// Expiration timestamp, 0 if the attestation doesn't expire.
	Expiry uint64

	SubmittedAt uint64
	Submitter   util.Uint160

	// Set for revoked attestations only.
	Revocation *Revocation
}

// Status returns status of the attestation at the given time. Revocation
// takes precedence over expiration.
func (r *Record) Status(now uint64) Status {
	switch {
	case r.Revocation != nil:
		return StatusRevoked
	case r.Expiry != 0 && now >= r.Expiry:
		return StatusExpired
	default:
		return StatusActive
	}
}

const recordFields = 11

// ToStackItem implements stackitem.Convertible.
func (r *Record) ToStackItem() (stackitem.Item, error) {
	var revocation stackitem.Item = stackitem.Null{}
	if r.Revocation != nil {
		revocation = stackitem.NewStruct([]stackitem.Item{
			common.AccountToItem(r.Revocation.RevokedBy),
			common.Uint64ToItem(r.Revocation.RevokedAt),
			stackitem.NewByteArray([]byte(r.Revocation.Reason)),
		})
	}

	return stackitem.NewStruct([]stackitem.Item{
		common.AccountToItem(r.Business),
		stackitem.NewByteArray([]byte(r.Period)),
		common.HashToItem(r.Commitment),
		common.Uint64ToItem(r.CapturedAt),
		common.Uint64ToItem(uint64(r.SchemaVersion)),
		common.BigIntToItem(r.FeePaid),
		common.OptionalUint256ToItem(r.ProofHash),
		common.Uint64ToItem(r.Expiry),
		common.Uint64ToItem(r.SubmittedAt),
		common.AccountToItem(r.Submitter),
		revocation,
	}), nil
}

// FromStackItem implements stackitem.Convertible.
func (r *Record) FromStackItem(item stackitem.Item) error {
	arr, err := common.ItemToStruct(item, recordFields)
	if err != nil {
		return fmt.Errorf("attestation: %w", err)
	}

	if r.Business, err = common.ItemToUint160(arr[0]); err != nil {
		return fmt.Errorf("business: %w", err)
	}
	if r.Period, err = common.ItemToString(arr[1]); err != nil {
		return fmt.Errorf("period: %w", err)
	}
	if r.Commitment, err = common.ItemToUint256(arr[2]); err != nil {
		return fmt.Errorf("commitment: %w", err)
	}
	if r.CapturedAt, err = common.ItemToUint64(arr[3]); err != nil {
		return fmt.Errorf("capture time: %w", err)
	}
	if r.SchemaVersion, err = common.ItemToUint32(arr[4]); err != nil {
		return fmt.Errorf("schema version: %w", err)
	}
	if r.FeePaid, err = common.ItemToBigInt(arr[5]); err != nil {
		return fmt.Errorf("fee: %w", err)
	}
	if r.ProofHash, err = common.ItemToOptionalUint256(arr[6]); err != nil {
		return fmt.Errorf("proof hash: %w", err)
	}
	if r.Expiry, err = common.ItemToUint64(arr[7]); err != nil {
		return fmt.Errorf("expiry: %w", err)
	}
	if r.SubmittedAt, err = common.ItemToUint64(arr[8]); err != nil {
		return fmt.Errorf("submission time: %w", err)
	}
	if r.Submitter, err = common.ItemToUint160(arr[9]); err != nil {
		return fmt.Errorf("submitter: %w", err)
	}

	r.Revocation = nil

	if _, ok := arr[10].(stackitem.Null); ok {
		return nil
	}

	rev, err := common.ItemToStruct(arr[10], 3)
	if err != nil {
		return fmt.Errorf("revocation: %w", err)
	}

	r.Revocation = new(Revocation)

	if r.Revocation.RevokedBy, err = common.ItemToUint160(rev[0]); err != nil {
		return fmt.Errorf("revoked by: %w", err)
	}
	if r.Revocation.RevokedAt, err = common.ItemToUint64(rev[1]); err != nil {
		return fmt.Errorf("revocation time: %w", err)
	}
	if r.Revocation.Reason, err = common.ItemToString(rev[2]); err != nil {
		return fmt.Errorf("revocation reason: %w", err)
	}

	return nil
}

// Submission is a new attestation provided by the caller.
type Submission struct {
	Business      util.Uint160
	Period        string
	Commitment    util.Uint256
	CapturedAt    uint64
	SchemaVersion uint32
	ProofHash     *util.Uint256
	Expiry        uint64
}

// ToStackItem implements stackitem.Convertible.
func (s *Submission) ToStackItem() (stackitem.Item, error) {
	return stackitem.NewStruct([]stackitem.Item{
		common.AccountToItem(s.Business),
		stackitem.NewByteArray([]byte(s.Period)),
		common.HashToItem(s.Commitment),
		common.Uint64ToItem(s.CapturedAt),
		common.Uint64ToItem(uint64(s.SchemaVersion)),
		common.OptionalUint256ToItem(s.ProofHash),
		common.Uint64ToItem(s.Expiry),
	}), nil
}

// FromStackItem implements stackitem.Convertible.
func (s *Submission) FromStackItem(item stackitem.Item) error {
	arr, err := common.ItemToStruct(item, 7)
	if err != nil {
		return fmt.Errorf("submission: %w", err)
	}

	if s.Business, err = common.ItemToUint160(arr[0]); err != nil {
		return fmt.Errorf("business: %w", err)
	}
	if s.Period, err = common.ItemToString(arr[1]); err != nil {
		return fmt.Errorf("period: %w", err)
	}
	if s.Commitment, err = common.ItemToUint256(arr[2]); err != nil {
		return fmt.Errorf("commitment: %w", err)
	}
	if s.CapturedAt, err = common.ItemToUint64(arr[3]); err != nil {
		return fmt.Errorf("capture time: %w", err)
	}
	if s.SchemaVersion, err = common.ItemToUint32(arr[4]); err != nil {
		return fmt.Errorf("schema version: %w", err)
	}
	if s.ProofHash, err = common.ItemToOptionalUint256(arr[5]); err != nil {
		return fmt.Errorf("proof hash: %w", err)
	}
	if s.Expiry, err = common.ItemToUint64(arr[6]); err != nil {
		return fmt.Errorf("expiry: %w", err)
	}

	return nil
}
