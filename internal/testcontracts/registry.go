package testcontracts

import (
	"sync"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/host"
)

// Registry is a business registry with a fixed set of active businesses.
type Registry struct {
	mtx    sync.RWMutex
	active map[util.Uint160]bool
}

// NewRegistry returns Registry with the given businesses marked active.
func NewRegistry(active ...util.Uint160) *Registry {
	r := &Registry{active: make(map[util.Uint160]bool, len(active))}
	for i := range active {
		r.active[active[i]] = true
	}
	return r
}

// SetActive changes activity status of the business.
func (r *Registry) SetActive(business util.Uint160, active bool) {
	r.mtx.Lock()
	r.active[business] = active
	r.mtx.Unlock()
}

// IsActive checks whether the business is active.
func (r *Registry) IsActive(_ *host.Context, business util.Uint160) (bool, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return r.active[business], nil
}
