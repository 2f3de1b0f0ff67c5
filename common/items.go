package common

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

var errNotArray = errors.New("not an array")

// ItemToArray returns elements of Array or Struct stack item.
func ItemToArray(item stackitem.Item) ([]stackitem.Item, error) {
	switch item.(type) {
	case *stackitem.Array, *stackitem.Struct:
		return item.Value().([]stackitem.Item), nil
	default:
		return nil, fmt.Errorf("%w: %s", errNotArray, item.Type())
	}
}

// ItemToStruct returns exactly n fields of Array or Struct stack item.
func ItemToStruct(item stackitem.Item, n int) ([]stackitem.Item, error) {
	arr, err := ItemToArray(item)
	if err != nil {
		return nil, err
	}
	if len(arr) != n {
		return nil, fmt.Errorf("wrong number of structure elements: expected %d, got %d", n, len(arr))
	}
	return arr, nil
}

// ItemToUint64 decodes unsigned 64-bit integer.
func ItemToUint64(item stackitem.Item) (uint64, error) {
	bi, err := item.TryInteger()
	if err != nil {
		return 0, err
	}
	if bi.Sign() < 0 || !bi.IsUint64() {
		return 0, fmt.Errorf("integer %s is out of uint64 range", bi)
	}
	return bi.Uint64(), nil
}

// ItemToUint32 decodes unsigned 32-bit integer.
func ItemToUint32(item stackitem.Item) (uint32, error) {
	v, err := ItemToUint64(item)
	if err != nil {
		return 0, err
	}
	if v > 1<<32-1 {
		return 0, fmt.Errorf("integer %d is out of uint32 range", v)
	}
	return uint32(v), nil
}

// ItemToBigInt decodes integer.
func ItemToBigInt(item stackitem.Item) (*big.Int, error) {
	return item.TryInteger()
}

// ItemToBool decodes boolean.
func ItemToBool(item stackitem.Item) (bool, error) {
	return item.TryBool()
}

// ItemToString decodes UTF-8 string.
func ItemToString(item stackitem.Item) (string, error) {
	b, err := item.TryBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ItemToUint160 decodes account.
func ItemToUint160(item stackitem.Item) (util.Uint160, error) {
	b, err := item.TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}
	return util.Uint160DecodeBytesBE(b)
}

// ItemToUint256 decodes 32-byte hash.
func ItemToUint256(item stackitem.Item) (util.Uint256, error) {
	b, err := item.TryBytes()
	if err != nil {
		return util.Uint256{}, err
	}
	return util.Uint256DecodeBytesBE(b)
}

// ItemToOptionalUint256 decodes 32-byte hash which may be Null.
func ItemToOptionalUint256(item stackitem.Item) (*util.Uint256, error) {
	if _, ok := item.(stackitem.Null); ok {
		return nil, nil
	}
	h, err := ItemToUint256(item)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// OptionalUint256ToItem encodes 32-byte hash which may be nil.
func OptionalUint256ToItem(h *util.Uint256) stackitem.Item {
	if h == nil {
		return stackitem.Null{}
	}
	return stackitem.NewByteArray(h.BytesBE())
}

// Uint64ToItem encodes unsigned 64-bit integer.
func Uint64ToItem(v uint64) stackitem.Item {
	return stackitem.NewBigInteger(new(big.Int).SetUint64(v))
}

// AccountToItem encodes account.
func AccountToItem(acc util.Uint160) stackitem.Item {
	return stackitem.NewByteArray(acc.BytesBE())
}

// HashToItem encodes 32-byte hash.
func HashToItem(h util.Uint256) stackitem.Item {
	return stackitem.NewByteArray(h.BytesBE())
}

// BigIntToItem encodes integer, nil is encoded as zero.
func BigIntToItem(v *big.Int) stackitem.Item {
	if v == nil {
		return stackitem.NewBigInteger(big.NewInt(0))
	}
	return stackitem.NewBigInteger(v)
}

// ItemToAccounts decodes list of accounts.
func ItemToAccounts(item stackitem.Item) ([]util.Uint160, error) {
	arr, err := ItemToArray(item)
	if err != nil {
		return nil, err
	}

	res := make([]util.Uint160, len(arr))
	for i := range arr {
		res[i], err = ItemToUint160(arr[i])
		if err != nil {
			return nil, fmt.Errorf("item #%d: %w", i, err)
		}
	}

	return res, nil
}

// AccountsToItem encodes list of accounts.
func AccountsToItem(list []util.Uint160) stackitem.Item {
	items := make([]stackitem.Item, len(list))
	for i := range list {
		items[i] = AccountToItem(list[i])
	}
	return stackitem.NewArray(items)
}

// ItemToUint64s decodes list of unsigned integers.
func ItemToUint64s(item stackitem.Item) ([]uint64, error) {
	arr, err := ItemToArray(item)
	if err != nil {
		return nil, err
	}

	res := make([]uint64, len(arr))
	for i := range arr {
		res[i], err = ItemToUint64(arr[i])
		if err != nil {
			return nil, fmt.Errorf("item #%d: %w", i, err)
		}
	}

	return res, nil
}

// Uint64sToItem encodes list of unsigned integers.
func Uint64sToItem(list []uint64) stackitem.Item {
	items := make([]stackitem.Item, len(list))
	for i := range list {
		items[i] = Uint64ToItem(list[i])
	}
	return stackitem.NewArray(items)
}

// ItemToStrings decodes list of strings.
func ItemToStrings(item stackitem.Item) ([]string, error) {
	arr, err := ItemToArray(item)
	if err != nil {
		return nil, err
	}

	res := make([]string, len(arr))
	for i := range arr {
		res[i], err = ItemToString(arr[i])
		if err != nil {
			return nil, fmt.Errorf("item #%d: %w", i, err)
		}
	}

	return res, nil
}

// StringsToItem encodes list of strings.
func StringsToItem(list []string) stackitem.Item {
	items := make([]stackitem.Item, len(list))
	for i := range list {
		items[i] = stackitem.NewByteArray([]byte(list[i]))
	}
	return stackitem.NewArray(items)
}
