package attestation

import (
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/revenue-attestation/common"
	"github.com/nspcc-dev/revenue-attestation/contracts/access"
	"github.com/nspcc-dev/revenue-attestation/contracts/fee"
	"github.com/nspcc-dev/revenue-attestation/contracts/ratelimit"
	"github.com/nspcc-dev/revenue-attestation/contracts/records"
	"github.com/nspcc-dev/revenue-attestation/contracts/replay"
	"github.com/nspcc-dev/revenue-attestation/host"
	"go.uber.org/zap"
)

// SubmitAttestation stores new attestation and charges the business for it.
// The caller is either the business itself or an attestor.
func (c *Contract) SubmitAttestation(ic *host.Context, caller util.Uint160, nonce uint64, s records.Submission) (*records.Record, error) {
	err := authenticate(ic, caller, replay.ChannelBusiness, nonce)
	if err != nil {
		return nil, err
	}

	err = access.RequireNotPaused(ic)
	if err != nil {
		return nil, err
	}

	err = c.requireSubmitter(ic, caller, s.Business)
	if err != nil {
		return nil, err
	}

	err = records.ValidateSubmission(ic, &s)
	if err != nil {
		return nil, err
	}

	err = ratelimit.Check(ic, s.Business, 1)
	if err != nil {
		return nil, err
	}

	fees, err := fee.Collect(ic, c.token, s.Business, 1, common.SubmissionFeeTransferDetails(s.Business, s.Period))
	if err != nil {
		return nil, err
	}

	err = ratelimit.Record(ic, s.Business, 1)
	if err != nil {
		return nil, err
	}

	r, err := records.Submit(ic, &s, caller, fees[0])
	if err != nil {
		return nil, err
	}

	err = notifyFee(ic, s.Business, fees)
	if err != nil {
		return nil, err
	}

	err = notifySubmitted(ic, r)
	if err != nil {
		return nil, err
	}

	c.metrics.submitted(1)
	c.metrics.feeCollected(fees[0])

	return r, nil
}

type businessItems struct {
	business util.Uint160
	indices  []int
}

// groupByBusiness returns item indices of every business in order of first
// appearance.
func groupByBusiness(batch []records.Submission) []businessItems {
	var res []businessItems

	for i := range batch {
		j := 0
		for ; j < len(res); j++ {
			if res[j].business.Equals(batch[i].Business) {
				break
			}
		}

		if j == len(res) {
			res = append(res, businessItems{business: batch[i].Business})
		}

		res[j].indices = append(res[j].indices, i)
	}

	return res
}

// SubmitBatch stores all attestations of the batch or none of them. Every
// item is checked for authorization, rate limit and validity, and every
// business is checked for sufficient funds, before the first write. Each
// business pays for its items with a single transfer.
func (c *Contract) SubmitBatch(ic *host.Context, caller util.Uint160, nonce uint64, batch []records.Submission) ([]*records.Record, error) {
	err := authenticate(ic, caller, replay.ChannelBusiness, nonce)
	if err != nil {
		return nil, err
	}

	err = access.RequireNotPaused(ic)
	if err != nil {
		return nil, err
	}

	err = records.ValidateBatch(ic, batch)
	if err != nil {
		return nil, err
	}

	groups := groupByBusiness(batch)

	for _, g := range groups {
		err = c.requireSubmitter(ic, caller, g.business)
		if err != nil {
			return nil, err
		}

		err = ratelimit.Check(ic, g.business, len(g.indices))
		if err != nil {
			return nil, err
		}

		quote, err := fee.QuoteN(ic, g.business, len(g.indices))
		if err != nil {
			return nil, err
		}

		err = fee.CheckFunds(ic, c.token, g.business, fee.Sum(quote))
		if err != nil {
			return nil, err
		}
	}

	var (
		itemFees  = make([]*big.Int, len(batch))
		collected = new(big.Int)
	)

	for _, g := range groups {
		n := len(g.indices)

		fees, err := fee.Collect(ic, c.token, g.business, n, common.BatchFeeTransferDetails(g.business, n))
		if err != nil {
			return nil, err
		}

		for k, i := range g.indices {
			itemFees[i] = fees[k]
		}

		err = ratelimit.Record(ic, g.business, n)
		if err != nil {
			return nil, err
		}

		err = notifyFee(ic, g.business, fees)
		if err != nil {
			return nil, err
		}

		collected.Add(collected, fee.Sum(fees))
	}

	res, err := records.SubmitBatch(ic, batch, caller, itemFees)
	if err != nil {
		return nil, err
	}

	for i := range res {
		err = notifySubmitted(ic, res[i])
		if err != nil {
			return nil, err
		}
	}

	ic.Logger().Info("attestation batch stored",
		zap.Int("items", len(batch)),
		zap.Int("businesses", len(groups)))

	c.metrics.submitted(len(res))
	c.metrics.feeCollected(collected)

	return res, nil
}

func notifyFee(ic *host.Context, business util.Uint160, fees []*big.Int) error {
	total := fee.Sum(fees)
	if total.Sign() == 0 {
		return nil
	}

	return ic.Notify(notifyFeeCollected, business, total, int64(len(fees)))
}

func notifySubmitted(ic *host.Context, r *records.Record) error {
	return ic.Notify(notifyAttestationSubmitted,
		r.Business,
		r.Period,
		r.Commitment,
		int64(r.SchemaVersion),
		r.FeePaid,
		r.Submitter,
	)
}

// RevokeAttestation marks the attestation revoked. The caller is either the
// business itself or the admin.
func (c *Contract) RevokeAttestation(ic *host.Context, caller util.Uint160, nonce uint64, business util.Uint160, period, reason string) error {
	err := authenticate(ic, caller, replay.ChannelBusiness, nonce)
	if err != nil {
		return err
	}

	err = access.RequireNotPaused(ic)
	if err != nil {
		return err
	}

	rev, err := records.Revoke(ic, caller, business, period, reason)
	if err != nil {
		return err
	}

	err = ic.Notify(notifyAttestationRevoked, business, period, rev.RevokedBy, rev.Reason)
	if err != nil {
		return err
	}

	c.metrics.revoked()

	return nil
}

// MigrateAttestation replaces commitment of the attestation with the new one
// of greater schema version. Only admin can migrate attestations.
func (c *Contract) MigrateAttestation(ic *host.Context, caller util.Uint160, nonce uint64,
	business util.Uint160, period string, commitment util.Uint256, version uint32) error {
	err := adminCall(ic, caller, nonce)
	if err != nil {
		return err
	}

	err = access.RequireNotPaused(ic)
	if err != nil {
		return err
	}

	prev, err := records.Migrate(ic, caller, business, period, commitment, version)
	if err != nil {
		return fmt.Errorf("migrate attestation: %w", err)
	}

	err = ic.Notify(notifyAttestationMigrated, business, period, commitment, int64(prev), int64(version))
	if err != nil {
		return err
	}

	c.metrics.migrated()

	return nil
}
