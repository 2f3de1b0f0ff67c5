package common

import (
	"encoding/binary"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/host"
)

// Index entries are stored one per key, so index size is not limited by the
// maximum size of a serialized item.
var indexValue = []byte{1}

// PutIndexID adds id to the index stored under k.
func PutIndexID(ic *host.Context, k Key, id uint64) error {
	return ic.Put(k.WithID(id).Bytes(), indexValue)
}

// DeleteIndexID removes id from the index stored under k.
func DeleteIndexID(ic *host.Context, k Key, id uint64) error {
	return ic.Delete(k.WithID(id).Bytes())
}

// FindIDs returns identifiers of the index stored under k in ascending order.
func FindIDs(ic *host.Context, k Key) ([]uint64, error) {
	var (
		res    []uint64
		err    error
		prefix = k.Bytes()
	)

	ic.Find(prefix, func(key, _ []byte) bool {
		suffix := key[len(prefix):]
		if len(suffix) != 1+8 || suffix[0] != tagID {
			err = fmt.Errorf("corrupted index key %x", key)
			return false
		}

		res = append(res, binary.BigEndian.Uint64(suffix[1:]))
		return true
	})

	return res, err
}

// FindAccounts returns account segments of the keys consisting of k followed
// by an account, in ascending order of the account bytes.
func FindAccounts(ic *host.Context, k Key) ([]util.Uint160, error) {
	var (
		res    []util.Uint160
		err    error
		prefix = k.Bytes()
	)

	ic.Find(prefix, func(key, _ []byte) bool {
		suffix := key[len(prefix):]
		if len(suffix) != 1+util.Uint160Size || suffix[0] != tagAccount {
			err = fmt.Errorf("corrupted index key %x", key)
			return false
		}

		var acc util.Uint160
		acc, err = util.Uint160DecodeBytesBE(suffix[1:])
		if err != nil {
			return false
		}

		res = append(res, acc)
		return true
	})

	return res, err
}
