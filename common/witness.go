package common

import (
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/host"
)

// CheckWitness checks witness of the passed caller. It returns
// ErrWitnessFailed if the call is not signed by the caller.
func CheckWitness(ic *host.Context, caller util.Uint160) error {
	if !ic.CheckWitness(caller) {
		return fmt.Errorf("%w: %s", ErrWitnessFailed, address.Uint160ToString(caller))
	}
	return nil
}
