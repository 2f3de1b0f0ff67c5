package common

import "fmt"

const (
	major = 0
	minor = 3
	patch = 0

	// Versions from which an update should be performed.
	prevMajor = 0
	prevMinor = 2
	prevPatch = 0

	Version = major*1_000_000 + minor*1_000 + patch

	PrevVersion = prevMajor*1_000_000 + prevMinor*1_000 + prevPatch
)

// CheckVersion checks that the stored contract data version can be updated
// to the current Version.
func CheckVersion(from int) error {
	if from < PrevVersion {
		return fmt.Errorf("%w: previous version mismatch: expected >=%d, got %d", ErrState, PrevVersion, from)
	}
	if from == Version {
		return fmt.Errorf("%w: contract is already of the latest version %d", ErrState, Version)
	}
	if from > Version {
		return fmt.Errorf("%w: stored version %d is newer than %d", ErrState, from, Version)
	}
	return nil
}
