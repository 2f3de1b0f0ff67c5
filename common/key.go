package common

import (
	"encoding/binary"

	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Segment tags of the storage key. Every dynamic segment is preceded by its
// tag, so keys of different shapes never collide even under the same label.
const (
	tagAccount byte = 0x01
	tagPeriod  byte = 0x02
	tagID      byte = 0x03
	tagTarget  byte = 0x04
)

// Key is a composite storage key: a fixed label followed by any combination
// of account, target account, period and numeric ID segments. Periods are
// length-prefixed, accounts and IDs have fixed size.
//
// Key is a value type, With* methods return modified copies.
type Key struct {
	label byte

	account    util.Uint160
	hasAccount bool

	target    util.Uint160
	hasTarget bool

	period    string
	hasPeriod bool

	id    uint64
	hasID bool
}

// NewKey returns Key with the given label and no dynamic segments.
func NewKey(label byte) Key {
	return Key{label: label}
}

// WithAccount returns copy of the key with account segment set.
func (k Key) WithAccount(acc util.Uint160) Key {
	k.account, k.hasAccount = acc, true
	return k
}

// WithTarget returns copy of the key with target account segment set. Target
// is a second account of the key, e.g. the business referenced by the actor.
func (k Key) WithTarget(acc util.Uint160) Key {
	k.target, k.hasTarget = acc, true
	return k
}

// WithPeriod returns copy of the key with period segment set.
func (k Key) WithPeriod(period string) Key {
	k.period, k.hasPeriod = period, true
	return k
}

// WithID returns copy of the key with numeric ID segment set.
func (k Key) WithID(id uint64) Key {
	k.id, k.hasID = id, true
	return k
}

// Label returns key label.
func (k Key) Label() byte {
	return k.label
}

// Bytes returns binary representation of the key used in storage.
func (k Key) Bytes() []byte {
	w := io.NewBufBinWriter()

	w.WriteB(k.label)

	if k.hasAccount {
		w.WriteB(tagAccount)
		w.WriteBytes(k.account.BytesBE())
	}

	if k.hasTarget {
		w.WriteB(tagTarget)
		w.WriteBytes(k.target.BytesBE())
	}

	if k.hasPeriod {
		w.WriteB(tagPeriod)
		w.WriteString(k.period)
	}

	if k.hasID {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], k.id)

		w.WriteB(tagID)
		w.WriteBytes(buf[:])
	}

	return w.Bytes()
}
