package common

import (
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/revenue-attestation/host"
)

// GetSerialized reads the entity stored by the key into v. It returns false
// if nothing is stored.
func GetSerialized(ic *host.Context, key Key, v stackitem.Convertible) (bool, error) {
	data := ic.Get(key.Bytes())
	if data == nil {
		return false, nil
	}

	item, err := stackitem.Deserialize(data)
	if err != nil {
		return false, fmt.Errorf("deserialize item stored by key %x: %w", key.Bytes(), err)
	}

	err = v.FromStackItem(item)
	if err != nil {
		return false, fmt.Errorf("decode item stored by key %x: %w", key.Bytes(), err)
	}

	return true, nil
}

// SetSerialized serializes the entity and puts it into the contract storage.
func SetSerialized(ic *host.Context, key Key, v stackitem.Convertible) error {
	item, err := v.ToStackItem()
	if err != nil {
		return fmt.Errorf("encode item: %w", err)
	}

	return putItem(ic, key, item)
}

func putItem(ic *host.Context, key Key, item stackitem.Item) error {
	data, err := stackitem.Serialize(item)
	if err != nil {
		return fmt.Errorf("serialize item: %w", err)
	}

	return ic.Put(key.Bytes(), data)
}

func getItem(ic *host.Context, key Key) (stackitem.Item, error) {
	data := ic.Get(key.Bytes())
	if data == nil {
		return nil, nil
	}

	item, err := stackitem.Deserialize(data)
	if err != nil {
		return nil, fmt.Errorf("deserialize item stored by key %x: %w", key.Bytes(), err)
	}

	return item, nil
}

// Delete removes the value stored by the key.
func Delete(ic *host.Context, key Key) error {
	return ic.Delete(key.Bytes())
}

// Has checks whether anything is stored by the key.
func Has(ic *host.Context, key Key) bool {
	return ic.Get(key.Bytes()) != nil
}

// GetUint64 returns unsigned integer stored by the key or 0.
func GetUint64(ic *host.Context, key Key) (uint64, error) {
	item, err := getItem(ic, key)
	if err != nil || item == nil {
		return 0, err
	}

	return ItemToUint64(item)
}

// PutUint64 stores unsigned integer by the key.
func PutUint64(ic *host.Context, key Key, v uint64) error {
	return putItem(ic, key, stackitem.NewBigInteger(new(big.Int).SetUint64(v)))
}

// GetBool returns boolean stored by the key or false.
func GetBool(ic *host.Context, key Key) (bool, error) {
	item, err := getItem(ic, key)
	if err != nil || item == nil {
		return false, err
	}

	return item.TryBool()
}

// PutBool stores boolean by the key.
func PutBool(ic *host.Context, key Key, v bool) error {
	return putItem(ic, key, stackitem.NewBool(v))
}

// GetAccount returns account stored by the key. It returns false if nothing is
// stored.
func GetAccount(ic *host.Context, key Key) (util.Uint160, bool, error) {
	item, err := getItem(ic, key)
	if err != nil || item == nil {
		return util.Uint160{}, false, err
	}

	acc, err := ItemToUint160(item)
	if err != nil {
		return util.Uint160{}, false, err
	}

	return acc, true, nil
}

// PutAccount stores account by the key.
func PutAccount(ic *host.Context, key Key, acc util.Uint160) error {
	return putItem(ic, key, stackitem.NewByteArray(acc.BytesBE()))
}

// GetAccounts returns list of accounts stored by the key.
func GetAccounts(ic *host.Context, key Key) ([]util.Uint160, error) {
	item, err := getItem(ic, key)
	if err != nil || item == nil {
		return nil, err
	}

	return ItemToAccounts(item)
}

// PutAccounts stores list of accounts by the key. Empty list removes the key.
func PutAccounts(ic *host.Context, key Key, list []util.Uint160) error {
	if len(list) == 0 {
		return Delete(ic, key)
	}

	return putItem(ic, key, AccountsToItem(list))
}

// GetUint64s returns list of unsigned integers stored by the key.
func GetUint64s(ic *host.Context, key Key) ([]uint64, error) {
	item, err := getItem(ic, key)
	if err != nil || item == nil {
		return nil, err
	}

	return ItemToUint64s(item)
}

// PutUint64s stores list of unsigned integers by the key. Empty list removes
// the key.
func PutUint64s(ic *host.Context, key Key, list []uint64) error {
	if len(list) == 0 {
		return Delete(ic, key)
	}

	return putItem(ic, key, Uint64sToItem(list))
}
