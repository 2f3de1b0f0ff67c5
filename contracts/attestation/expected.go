package attestation

import (
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/contracts/fee"
	"github.com/nspcc-dev/revenue-attestation/host"
)

// TokenContract is a fungible token contract fees are paid with. Its errors
// are returned to the caller unchanged.
type TokenContract = fee.Token

// BusinessRegistry is a registry of businesses allowed to submit
// attestations.
type BusinessRegistry interface {
	// IsActive checks whether the business may submit attestations.
	IsActive(ic *host.Context, business util.Uint160) (bool, error)
}
