package attestation

import (
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/contracts/access"
	"github.com/nspcc-dev/revenue-attestation/contracts/dispute"
	"github.com/nspcc-dev/revenue-attestation/contracts/fee"
	"github.com/nspcc-dev/revenue-attestation/contracts/multisig"
	"github.com/nspcc-dev/revenue-attestation/contracts/records"
	"github.com/nspcc-dev/revenue-attestation/contracts/rotation"
	"github.com/nspcc-dev/revenue-attestation/host"
)

// GetAttestation returns the attestation of the business period or nil if it
// is missing.
func GetAttestation(ic *host.Context, business util.Uint160, period string) (*records.Record, error) {
	return records.Get(ic, business, period)
}

// IsRevoked checks whether the attestation is revoked.
func IsRevoked(ic *host.Context, business util.Uint160, period string) (bool, error) {
	return records.IsRevoked(ic, business, period)
}

// Verify checks that the attestation is active and its commitment equals the
// given one.
func Verify(ic *host.Context, business util.Uint160, period string, commitment util.Uint256) (bool, error) {
	return records.Verify(ic, business, period, commitment)
}

// GetPage returns a page of the business attestations.
func GetPage(ic *host.Context, q records.Query) (records.Page, error) {
	return records.GetPage(ic, q)
}

// GetPeriods returns attested periods of the business.
func GetPeriods(ic *host.Context, business util.Uint160) ([]string, error) {
	return records.Periods(ic, business)
}

// GetFeeQuote returns fee of the next submission of the business.
func GetFeeQuote(ic *host.Context, business util.Uint160) (*big.Int, error) {
	return fee.Quote(ic, business)
}

// GetFeeConfig returns fee configuration or nil if fees are not configured.
func GetFeeConfig(ic *host.Context) (*fee.Config, error) {
	return fee.GetConfig(ic)
}

// HasRole checks whether the account holds all the given roles.
func HasRole(ic *host.Context, acc util.Uint160, r access.Role) (bool, error) {
	return access.HasRole(ic, acc, r)
}

// GetRoles returns role bitmap of the account.
func GetRoles(ic *host.Context, acc util.Uint160) (access.Role, error) {
	return access.Roles(ic, acc)
}

// GetAdmin returns current admin.
func GetAdmin(ic *host.Context) (util.Uint160, error) {
	return access.GetAdmin(ic)
}

// IsPaused checks whether the contract is paused.
func IsPaused(ic *host.Context) (bool, error) {
	return access.IsPaused(ic)
}

// GetMultisigOwners returns current multisig owners.
func GetMultisigOwners(ic *host.Context) ([]util.Uint160, error) {
	return multisig.Owners(ic)
}

// GetMultisigThreshold returns number of owner approvals required to execute
// a proposal.
func GetMultisigThreshold(ic *host.Context) (uint32, error) {
	return multisig.Threshold(ic)
}

// GetProposal returns multisig proposal by its id.
func GetProposal(ic *host.Context, id uint64) (*multisig.Proposal, error) {
	return multisig.Get(ic, id)
}

// GetPendingKeyRotation returns pending admin rotation or nil.
func GetPendingKeyRotation(ic *host.Context) (*rotation.Request, error) {
	return rotation.Pending(ic)
}

// GetRotationHistory returns completed admin rotations, oldest first.
func GetRotationHistory(ic *host.Context) ([]rotation.Request, error) {
	return rotation.History(ic)
}

// GetDispute returns dispute by its id.
func GetDispute(ic *host.Context, id uint64) (*dispute.Dispute, error) {
	return dispute.Get(ic, id)
}

// GetDisputes returns ids of disputes opened against the attestation.
func GetDisputes(ic *host.Context, business util.Uint160, period string) ([]uint64, error) {
	return dispute.ByAttestation(ic, business, period)
}
