package attestation

import (
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/common"
	"github.com/nspcc-dev/revenue-attestation/contracts/access"
	"github.com/nspcc-dev/revenue-attestation/contracts/replay"
	"github.com/nspcc-dev/revenue-attestation/host"
)

// Prm groups collaborators of the Contract.
type Prm struct {
	// Token contract fees are paid with. Required when fees are enabled.
	Token TokenContract

	// Optional business registry. Nil means every business is active.
	Registry BusinessRegistry

	// Optional metrics. Nil disables metrics.
	Metrics *Metrics
}

// Contract is the revenue attestation contract. It is stateless, all the
// state is kept in the storage of the execution context.
type Contract struct {
	hash     util.Uint160
	token    TokenContract
	registry BusinessRegistry
	metrics  *Metrics
}

// New returns Contract with the given script hash.
func New(h util.Uint160, prm Prm) *Contract {
	m := prm.Metrics
	if m == nil {
		m = NewMetrics(nil)
	}

	return &Contract{
		hash:     h,
		token:    prm.Token,
		registry: prm.Registry,
		metrics:  m,
	}
}

// Hash returns script hash of the contract.
func (c *Contract) Hash() util.Uint160 {
	return c.hash
}

// authenticate checks witness of the caller and consumes the nonce of the
// channel. Every state-changing method starts with it.
func authenticate(ic *host.Context, caller util.Uint160, ch replay.Channel, nonce uint64) error {
	err := common.CheckWitness(ic, caller)
	if err != nil {
		return err
	}

	return replay.VerifyAndIncrement(ic, caller, ch, nonce)
}

// adminCall authenticates the caller on the admin channel and checks that it
// holds ADMIN role.
func adminCall(ic *host.Context, caller util.Uint160, nonce uint64) error {
	if !access.IsInitialized(ic) {
		return common.ErrNotInitialized
	}

	err := authenticate(ic, caller, replay.ChannelAdmin, nonce)
	if err != nil {
		return err
	}

	return access.RequireRole(ic, caller, access.Admin)
}

// requireSubmitter checks that the caller may submit attestations of the
// business: either it is the business holding BUSINESS role, or an account
// holding ATTESTOR role. Inactive businesses are rejected.
func (c *Contract) requireSubmitter(ic *host.Context, caller, business util.Uint160) error {
	r := access.Attestor
	if caller.Equals(business) {
		r = access.Business
	}

	err := access.RequireRole(ic, caller, r)
	if err != nil {
		return err
	}

	if c.registry == nil {
		return nil
	}

	active, err := c.registry.IsActive(ic, business)
	if err != nil {
		return fmt.Errorf("check business activity: %w", err)
	}

	if !active {
		return fmt.Errorf("%w: %s", common.ErrInactiveBusiness, address.Uint160ToString(business))
	}

	return nil
}

// Initialize sets the initial admin. The call must be witnessed by the admin.
func (c *Contract) Initialize(ic *host.Context, admin util.Uint160) error {
	err := common.CheckWitness(ic, admin)
	if err != nil {
		return err
	}

	err = access.Initialize(ic, admin)
	if err != nil {
		return err
	}

	err = common.PutUint64(ic, common.NewKey(versionKey), common.Version)
	if err != nil {
		return err
	}

	return ic.Notify(notifyInitialized, admin)
}

// Version returns version of the stored contract data.
func Version(ic *host.Context) (uint64, error) {
	return common.GetUint64(ic, common.NewKey(versionKey))
}

// Update migrates the stored contract data to the current version. It is
// done by the admin.
func (c *Contract) Update(ic *host.Context, caller util.Uint160, nonce uint64) error {
	err := adminCall(ic, caller, nonce)
	if err != nil {
		return err
	}

	v, err := Version(ic)
	if err != nil {
		return err
	}

	err = common.CheckVersion(int(v))
	if err != nil {
		return err
	}

	return common.PutUint64(ic, common.NewKey(versionKey), common.Version)
}
