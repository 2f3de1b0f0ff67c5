package replay

import (
	"fmt"
	"math"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/common"
	"github.com/nspcc-dev/revenue-attestation/host"
)

// Channel is an independent sequence-number domain of an actor.
type Channel uint32

// Channels used by the attestation contract.
const (
	ChannelAdmin Channel = iota + 1
	ChannelBusiness
	ChannelGovernance
	ChannelRotation
	ChannelDispute
)

const noncePrefix = 'n'

func nonceKey(actor util.Uint160, ch Channel) common.Key {
	return common.NewKey(noncePrefix).WithAccount(actor).WithID(uint64(ch))
}

// PeekNext returns nonce the actor must present in the channel next time.
func PeekNext(ic *host.Context, actor util.Uint160, ch Channel) (uint64, error) {
	return common.GetUint64(ic, nonceKey(actor, ch))
}

// VerifyAndIncrement checks that presented nonce equals the current one of
// the actor in the channel and moves the counter forward.
func VerifyAndIncrement(ic *host.Context, actor util.Uint160, ch Channel, presented uint64) error {
	k := nonceKey(actor, ch)

	cur, err := common.GetUint64(ic, k)
	if err != nil {
		return fmt.Errorf("read nonce: %w", err)
	}

	if presented != cur {
		return fmt.Errorf("%w: expected %d, got %d", common.ErrNonceMismatch, cur, presented)
	}

	if cur == math.MaxUint64 {
		return common.ErrNonceOverflow
	}

	return common.PutUint64(ic, k, cur+1)
}
