package common

import (
	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// EncodeID returns base58 text form of the 32-byte hash, the same form NeoFS
// uses for object identifiers. Commitments and off-chain proof hashes are
// rendered this way in logs and error messages.
func EncodeID(h util.Uint256) string {
	return base58.Encode(h.BytesBE())
}

// DecodeID decodes hash from the text produced by EncodeID.
func DecodeID(s string) (util.Uint256, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return util.Uint256{}, err
	}
	return util.Uint256DecodeBytesBE(b)
}
