package common

import "errors"

// Error categories. Every error returned by the contracts matches exactly one
// of them via errors.Is.
var (
	// ErrAuthorization is a category of errors caused by a missing role, a
	// wrong signer or a caller not being an owner.
	ErrAuthorization = errors.New("authorization failure")
	// ErrState is a category of errors caused by the current state of an
	// entity: not initialized, wrong lifecycle status, duplicates, missing
	// entities.
	ErrState = errors.New("invalid state")
	// ErrValidation is a category of errors caused by malformed arguments.
	ErrValidation = errors.New("validation failure")
	// ErrTemporal is a category of errors caused by sequencing and time:
	// nonces, timelocks, expiration, cooldowns and rate windows.
	ErrTemporal = errors.New("temporal constraint violated")
	// ErrEconomic is a category of errors caused by insufficient funds.
	ErrEconomic = errors.New("economic failure")
)

// Authorization errors.
var (
	ErrWitnessFailed = newError(ErrAuthorization, "witness check failed")
	ErrUnauthorized  = newError(ErrAuthorization, "unauthorized")
	ErrNotOwner      = newError(ErrAuthorization, "not a multisig owner")
)

// State errors.
var (
	ErrNotInitialized     = newError(ErrState, "not initialized")
	ErrAlreadyInitialized = newError(ErrState, "already initialized")
	ErrAlreadyExists      = newError(ErrState, "already exists")
	ErrNotFound           = newError(ErrState, "not found")
	ErrAlreadyRevoked     = newError(ErrState, "already revoked")
	ErrPaused             = newError(ErrState, "contract is paused")
	ErrDuplicateDispute   = newError(ErrState, "duplicate dispute")
	ErrNotPending         = newError(ErrState, "not pending")
	ErrNotApproved        = newError(ErrState, "not approved")
	ErrAlreadyApproved    = newError(ErrState, "already approved")
	ErrNotOpen            = newError(ErrState, "not open")
	ErrNotResolved        = newError(ErrState, "not resolved")
	ErrRotationPending    = newError(ErrState, "key rotation is already pending")
	ErrInactiveBusiness   = newError(ErrState, "business is not active")
)

// Validation errors.
var (
	ErrInvalidArgument      = newError(ErrValidation, "invalid argument")
	ErrInvalidDiscount      = newError(ErrValidation, "discount out of range")
	ErrInvalidBrackets      = newError(ErrValidation, "volume brackets must be strictly ascending")
	ErrVersionNotIncreasing = newError(ErrValidation, "schema version must increase")
	ErrNegativeAmount       = newError(ErrValidation, "negative amount")
	ErrInvalidOwners        = newError(ErrValidation, "invalid owner set")
	ErrInvalidThreshold     = newError(ErrValidation, "invalid threshold")
	ErrDuplicateBatchItem   = newError(ErrValidation, "duplicate key in batch")
	ErrSameAdmin            = newError(ErrValidation, "new admin equals the current one")
)

// Temporal errors.
var (
	ErrNonceMismatch     = newError(ErrTemporal, "nonce mismatch")
	ErrNonceOverflow     = newError(ErrTemporal, "nonce overflow")
	ErrTimelockActive    = newError(ErrTemporal, "timelock has not elapsed")
	ErrExpired           = newError(ErrTemporal, "expired")
	ErrNotExpired        = newError(ErrTemporal, "not expired yet")
	ErrCooldownActive    = newError(ErrTemporal, "cooldown has not elapsed")
	ErrRateLimitExceeded = newError(ErrTemporal, "rate limit exceeded")
)

// Economic errors.
var (
	ErrInsufficientBalance = newError(ErrEconomic, "insufficient balance")
)

// Error is a contract error of a particular category.
type Error struct {
	category error
	msg      string
}

func newError(category error, msg string) *Error {
	return &Error{category: category, msg: msg}
}

// Error implements error interface.
func (e *Error) Error() string {
	return e.msg
}

// Unwrap returns error category.
func (e *Error) Unwrap() error {
	return e.category
}

var categories = []error{ErrAuthorization, ErrState, ErrValidation, ErrTemporal, ErrEconomic}

// Category returns category of the error or nil if the error is not a
// contract one.
func Category(err error) error {
	for _, c := range categories {
		if errors.Is(err, c) {
			return c
		}
	}
	return nil
}
