// Package hosttest provides helpers for testing contracts on an in-memory
// host.Chain.
package hosttest

import (
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/host"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// NewChain creates new in-memory chain with the clock set to the given time
// and setups cleanup functions.
func NewChain(tb testing.TB, now uint64) *host.Chain {
	c := host.New(storage.NewMemoryStore(), zaptest.NewLogger(tb))
	require.NoError(tb, c.SetTime(now))
	tb.Cleanup(func() { _ = c.Close() })
	return c
}

// Exec executes state-changing call witnessed by the given accounts.
func Exec(c *host.Chain, f func(ic *host.Context) error, signers ...util.Uint160) error {
	return c.Exec(util.Uint160{}, "test", host.Signers(signers), f)
}

// View executes read-only call and fails the test on error.
func View(tb testing.TB, c *host.Chain, f func(ic *host.Context) error) {
	require.NoError(tb, c.View(util.Uint160{}, "test", f))
}

// Account returns deterministic test account with the given first byte.
func Account(b byte) util.Uint160 {
	return util.Uint160{b, 0xAC}
}
