/*
Package testcontracts provides in-process doubles of the contracts the
attestation contract calls: a fungible token and a business registry.
*/
package testcontracts

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/common"
	"github.com/nspcc-dev/revenue-attestation/host"
)

// TransferNotification is a name of the notification produced by Token on
// successful transfers.
const TransferNotification = "Transfer"

const balancePrefix = 0xF0

// ErrTokenFailure is returned by Token when it is configured to fail.
var ErrTokenFailure = errors.New("token contract failure")

// Token is a NEP-17 style token keeping balances in the storage of the call,
// so balances of failed calls are rolled back together with the caller's
// changes.
type Token struct {
	// Hash is an expected script hash of the token contract. Calls to other
	// hashes fail.
	Hash util.Uint160

	// Fail makes every Transfer fail with ErrTokenFailure.
	Fail bool
	// FailFrom makes transfers from this account fail with ErrTokenFailure.
	FailFrom *util.Uint160
}

// NewToken returns Token with the given script hash.
func NewToken(h util.Uint160) *Token {
	return &Token{Hash: h}
}

func balanceKey(acc util.Uint160) common.Key {
	return common.NewKey(balancePrefix).WithAccount(acc)
}

func (t *Token) checkHash(h util.Uint160) error {
	if !h.Equals(t.Hash) {
		return fmt.Errorf("unknown token contract %s", h.StringLE())
	}
	return nil
}

// BalanceOf returns balance of the account.
func (t *Token) BalanceOf(ic *host.Context, token, acc util.Uint160) (*big.Int, error) {
	if err := t.checkHash(token); err != nil {
		return nil, err
	}

	v, err := common.GetUint64(ic, balanceKey(acc))
	if err != nil {
		return nil, err
	}

	return new(big.Int).SetUint64(v), nil
}

// Mint adds amount to the balance of the account.
func (t *Token) Mint(ic *host.Context, acc util.Uint160, amount uint64) error {
	v, err := common.GetUint64(ic, balanceKey(acc))
	if err != nil {
		return err
	}

	return common.PutUint64(ic, balanceKey(acc), v+amount)
}

// Transfer moves tokens between accounts. The sender must have enough tokens,
// otherwise common.ErrInsufficientBalance is returned.
func (t *Token) Transfer(ic *host.Context, token, from, to util.Uint160, amount *big.Int, data []byte) error {
	if err := t.checkHash(token); err != nil {
		return err
	}

	if t.Fail || (t.FailFrom != nil && t.FailFrom.Equals(from)) {
		return ErrTokenFailure
	}

	if amount.Sign() < 0 || !amount.IsUint64() {
		return fmt.Errorf("%w: %s", common.ErrNegativeAmount, amount)
	}

	fromBalance, err := common.GetUint64(ic, balanceKey(from))
	if err != nil {
		return err
	}

	if fromBalance < amount.Uint64() {
		return fmt.Errorf("%w: %s has %d", common.ErrInsufficientBalance, address.Uint160ToString(from), fromBalance)
	}

	err = common.PutUint64(ic, balanceKey(from), fromBalance-amount.Uint64())
	if err != nil {
		return err
	}

	toBalance, err := common.GetUint64(ic, balanceKey(to))
	if err != nil {
		return err
	}

	err = common.PutUint64(ic, balanceKey(to), toBalance+amount.Uint64())
	if err != nil {
		return err
	}

	return ic.Notify(TransferNotification, from, to, amount, data)
}
