package host

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Witnesses authenticates accounts of the call. Contracts ask Witnesses
// whether an account has authorized the call and then check permissions of
// the account on their own.
type Witnesses interface {
	CheckWitness(util.Uint160) bool
}

// Signers is a set of accounts witnessing the call. It is used when
// authentication has already been performed by the caller (e.g. transaction
// verification) and in tests.
type Signers []util.Uint160

// CheckWitness implements Witnesses.
func (x Signers) CheckWitness(acc util.Uint160) bool {
	for i := range x {
		if x[i].Equals(acc) {
			return true
		}
	}
	return false
}

// Signature is a signature of the call message made by the private key
// corresponding to PublicKey.
type Signature struct {
	PublicKey *keys.PublicKey
	Value     []byte
}

// ErrInvalidSignature is returned by VerifySignatures when any of the provided
// signatures is invalid.
var ErrInvalidSignature = errors.New("invalid signature")

// VerifySignatures checks signatures of the message and returns Signers
// consisting of script hashes of the signers' verification scripts. Signatures
// are expected to be made with keys.PrivateKey.Sign, i.e. over SHA-256 of the
// message.
func VerifySignatures(msg []byte, sigs []Signature) (Signers, error) {
	h := hash.Sha256(msg)
	res := make(Signers, 0, len(sigs))

	for i := range sigs {
		if sigs[i].PublicKey == nil {
			return nil, fmt.Errorf("%w: missing public key #%d", ErrInvalidSignature, i)
		}
		if !sigs[i].PublicKey.Verify(sigs[i].Value, h.BytesBE()) {
			return nil, fmt.Errorf("%w: #%d by %s", ErrInvalidSignature, i, hex.EncodeToString(sigs[i].PublicKey.Bytes()))
		}
		res = append(res, sigs[i].PublicKey.GetScriptHash())
	}

	return res, nil
}
