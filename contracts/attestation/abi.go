package attestation

import (
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/smartcontract"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/revenue-attestation/common"
	"github.com/nspcc-dev/revenue-attestation/contracts/access"
	"github.com/nspcc-dev/revenue-attestation/contracts/dispute"
	"github.com/nspcc-dev/revenue-attestation/contracts/fee"
	"github.com/nspcc-dev/revenue-attestation/contracts/multisig"
	"github.com/nspcc-dev/revenue-attestation/contracts/ratelimit"
	"github.com/nspcc-dev/revenue-attestation/contracts/records"
	"github.com/nspcc-dev/revenue-attestation/contracts/replay"
	"github.com/nspcc-dev/revenue-attestation/contracts/rotation"
	"github.com/nspcc-dev/revenue-attestation/host"
)

// ContractName is the name of the contract in its manifest.
const ContractName = "RevenueAttestation"

type method struct {
	name   string
	params []manifest.Parameter
	ret    smartcontract.ParamType
	safe   bool
	call   func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error)
}

func prm(name string, typ smartcontract.ParamType) manifest.Parameter {
	return manifest.NewParameter(name, typ)
}

// signed returns parameters of the method authenticated by the caller and
// the nonce.
func signed(params ...manifest.Parameter) []manifest.Parameter {
	return append([]manifest.Parameter{
		prm("caller", smartcontract.Hash160Type),
		prm("nonce", smartcontract.IntegerType),
	}, params...)
}

var methods = []method{
	{
		name: "initialize",
		params: []manifest.Parameter{
			prm("admin", smartcontract.Hash160Type),
		},
		ret: smartcontract.VoidType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			admin := r.account()
			if r.err != nil {
				return nil, r.err
			}
			return nil, c.Initialize(ic, admin)
		},
	},
	{
		name:   "update",
		params: signed(),
		ret:    smartcontract.VoidType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			caller, nonce := r.account(), r.u64()
			if r.err != nil {
				return nil, r.err
			}
			return nil, c.Update(ic, caller, nonce)
		},
	},
	{
		name: "grantRole",
		params: signed(
			prm("account", smartcontract.Hash160Type),
			prm("roles", smartcontract.IntegerType),
		),
		ret: smartcontract.VoidType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			caller, nonce, acc, roles := r.account(), r.u64(), r.account(), r.u32()
			if r.err != nil {
				return nil, r.err
			}
			return nil, c.GrantRole(ic, caller, nonce, acc, access.Role(roles))
		},
	},
	{
		name: "revokeRole",
		params: signed(
			prm("account", smartcontract.Hash160Type),
			prm("roles", smartcontract.IntegerType),
		),
		ret: smartcontract.VoidType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			caller, nonce, acc, roles := r.account(), r.u64(), r.account(), r.u32()
			if r.err != nil {
				return nil, r.err
			}
			return nil, c.RevokeRole(ic, caller, nonce, acc, access.Role(roles))
		},
	},
	{
		name:   "pause",
		params: signed(),
		ret:    smartcontract.VoidType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			caller, nonce := r.account(), r.u64()
			if r.err != nil {
				return nil, r.err
			}
			return nil, c.Pause(ic, caller, nonce)
		},
	},
	{
		name:   "unpause",
		params: signed(),
		ret:    smartcontract.VoidType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			caller, nonce := r.account(), r.u64()
			if r.err != nil {
				return nil, r.err
			}
			return nil, c.Unpause(ic, caller, nonce)
		},
	},
	{
		name:   "setFeeConfig",
		params: signed(prm("config", smartcontract.ArrayType)),
		ret:    smartcontract.VoidType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			var cfg fee.Config

			caller, nonce := r.account(), r.u64()
			r.convertible(&cfg)
			if r.err != nil {
				return nil, r.err
			}
			return nil, c.SetFeeConfig(ic, caller, nonce, cfg)
		},
	},
	{
		name: "setTierDiscount",
		params: signed(
			prm("tier", smartcontract.IntegerType),
			prm("bps", smartcontract.IntegerType),
		),
		ret: smartcontract.VoidType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			caller, nonce, tier, bps := r.account(), r.u64(), r.u32(), r.u32()
			if r.err != nil {
				return nil, r.err
			}
			return nil, c.SetTierDiscount(ic, caller, nonce, tier, bps)
		},
	},
	{
		name:   "setVolumeBrackets",
		params: signed(prm("brackets", smartcontract.ArrayType)),
		ret:    smartcontract.VoidType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			var b fee.Brackets

			caller, nonce := r.account(), r.u64()
			r.convertible(&b)
			if r.err != nil {
				return nil, r.err
			}
			return nil, c.SetVolumeBrackets(ic, caller, nonce, b)
		},
	},
	{
		name: "setBusinessTier",
		params: signed(
			prm("business", smartcontract.Hash160Type),
			prm("tier", smartcontract.IntegerType),
		),
		ret: smartcontract.VoidType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			caller, nonce, business, tier := r.account(), r.u64(), r.account(), r.u32()
			if r.err != nil {
				return nil, r.err
			}
			return nil, c.SetBusinessTier(ic, caller, nonce, business, tier)
		},
	},
	{
		name:   "setRateLimit",
		params: signed(prm("config", smartcontract.ArrayType)),
		ret:    smartcontract.VoidType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			var cfg ratelimit.Config

			caller, nonce := r.account(), r.u64()
			r.convertible(&cfg)
			if r.err != nil {
				return nil, r.err
			}
			return nil, c.SetRateLimit(ic, caller, nonce, cfg)
		},
	},
	{
		name: "setupMultisig",
		params: signed(
			prm("owners", smartcontract.ArrayType),
			prm("threshold", smartcontract.IntegerType),
		),
		ret: smartcontract.VoidType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			caller, nonce, owners, threshold := r.account(), r.u64(), r.accounts(), r.u32()
			if r.err != nil {
				return nil, r.err
			}
			return nil, c.SetupMultisig(ic, caller, nonce, owners, threshold)
		},
	},
	{
		name:   "setProposalTTL",
		params: signed(prm("ttl", smartcontract.IntegerType)),
		ret:    smartcontract.VoidType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			caller, nonce, ttl := r.account(), r.u64(), r.u64()
			if r.err != nil {
				return nil, r.err
			}
			return nil, c.SetProposalTTL(ic, caller, nonce, ttl)
		},
	},
	{
		name:   "setRotationConfig",
		params: signed(prm("config", smartcontract.ArrayType)),
		ret:    smartcontract.VoidType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			var cfg rotation.Config

			caller, nonce := r.account(), r.u64()
			r.convertible(&cfg)
			if r.err != nil {
				return nil, r.err
			}
			return nil, c.SetRotationConfig(ic, caller, nonce, cfg)
		},
	},
	{
		name:   "submitAttestation",
		params: signed(prm("submission", smartcontract.ArrayType)),
		ret:    smartcontract.ArrayType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			var s records.Submission

			caller, nonce := r.account(), r.u64()
			r.convertible(&s)
			if r.err != nil {
				return nil, r.err
			}

			rec, err := c.SubmitAttestation(ic, caller, nonce, s)
			if err != nil {
				return nil, err
			}

			return rec.ToStackItem()
		},
	},
	{
		name:   "submitBatch",
		params: signed(prm("batch", smartcontract.ArrayType)),
		ret:    smartcontract.ArrayType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			caller, nonce, list := r.account(), r.u64(), r.array()
			if r.err != nil {
				return nil, r.err
			}

			batch := make([]records.Submission, len(list))
			for i := range list {
				if err := batch[i].FromStackItem(list[i]); err != nil {
					return nil, fmt.Errorf("%w: batch item #%d: %v", common.ErrInvalidArgument, i, err)
				}
			}

			res, err := c.SubmitBatch(ic, caller, nonce, batch)
			if err != nil {
				return nil, err
			}

			items := make([]stackitem.Item, len(res))
			for i := range res {
				if items[i], err = res[i].ToStackItem(); err != nil {
					return nil, err
				}
			}

			return stackitem.NewArray(items), nil
		},
	},
	{
		name: "revokeAttestation",
		params: signed(
			prm("business", smartcontract.Hash160Type),
			prm("period", smartcontract.StringType),
			prm("reason", smartcontract.StringType),
		),
		ret: smartcontract.VoidType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			caller, nonce, business, period, reason := r.account(), r.u64(), r.account(), r.str(), r.str()
			if r.err != nil {
				return nil, r.err
			}
			return nil, c.RevokeAttestation(ic, caller, nonce, business, period, reason)
		},
	},
	{
		name: "migrateAttestation",
		params: signed(
			prm("business", smartcontract.Hash160Type),
			prm("period", smartcontract.StringType),
			prm("commitment", smartcontract.Hash256Type),
			prm("version", smartcontract.IntegerType),
		),
		ret: smartcontract.VoidType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			caller, nonce, business, period := r.account(), r.u64(), r.account(), r.str()
			commitment, version := r.hash(), r.u32()
			if r.err != nil {
				return nil, r.err
			}
			return nil, c.MigrateAttestation(ic, caller, nonce, business, period, commitment, version)
		},
	},
	{
		name:   "createProposal",
		params: signed(prm("action", smartcontract.ArrayType)),
		ret:    smartcontract.IntegerType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			var a multisig.Action

			caller, nonce := r.account(), r.u64()
			r.convertible(&a)
			if r.err != nil {
				return nil, r.err
			}

			p, err := c.CreateProposal(ic, caller, nonce, a)
			if err != nil {
				return nil, err
			}

			return common.Uint64ToItem(p.ID), nil
		},
	},
	{
		name:   "approveProposal",
		params: signed(prm("id", smartcontract.IntegerType)),
		ret:    smartcontract.VoidType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			caller, nonce, id := r.account(), r.u64(), r.u64()
			if r.err != nil {
				return nil, r.err
			}
			return nil, c.ApproveProposal(ic, caller, nonce, id)
		},
	},
	{
		name:   "rejectProposal",
		params: signed(prm("id", smartcontract.IntegerType)),
		ret:    smartcontract.VoidType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			caller, nonce, id := r.account(), r.u64(), r.u64()
			if r.err != nil {
				return nil, r.err
			}
			return nil, c.RejectProposal(ic, caller, nonce, id)
		},
	},
	{
		name:   "executeProposal",
		params: signed(prm("id", smartcontract.IntegerType)),
		ret:    smartcontract.VoidType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			caller, nonce, id := r.account(), r.u64(), r.u64()
			if r.err != nil {
				return nil, r.err
			}
			return nil, c.ExecuteProposal(ic, caller, nonce, id)
		},
	},
	{
		name:   "expireProposal",
		params: []manifest.Parameter{prm("id", smartcontract.IntegerType)},
		ret:    smartcontract.VoidType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			id := r.u64()
			if r.err != nil {
				return nil, r.err
			}
			return nil, c.ExpireProposal(ic, id)
		},
	},
	{
		name:   "proposeKeyRotation",
		params: signed(prm("newAdmin", smartcontract.Hash160Type)),
		ret:    smartcontract.ArrayType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			caller, nonce, newAdmin := r.account(), r.u64(), r.account()
			if r.err != nil {
				return nil, r.err
			}

			req, err := c.ProposeKeyRotation(ic, caller, nonce, newAdmin)
			if err != nil {
				return nil, err
			}

			return req.ToStackItem()
		},
	},
	{
		name:   "confirmKeyRotation",
		params: signed(),
		ret:    smartcontract.VoidType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			caller, nonce := r.account(), r.u64()
			if r.err != nil {
				return nil, r.err
			}
			return nil, c.ConfirmKeyRotation(ic, caller, nonce)
		},
	},
	{
		name:   "cancelKeyRotation",
		params: signed(),
		ret:    smartcontract.VoidType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			caller, nonce := r.account(), r.u64()
			if r.err != nil {
				return nil, r.err
			}
			return nil, c.CancelKeyRotation(ic, caller, nonce)
		},
	},
	{
		name: "openDispute",
		params: signed(
			prm("business", smartcontract.Hash160Type),
			prm("period", smartcontract.StringType),
			prm("type", smartcontract.IntegerType),
			prm("evidence", smartcontract.StringType),
		),
		ret: smartcontract.IntegerType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			caller, nonce, business, period := r.account(), r.u64(), r.account(), r.str()
			typ, evidence := r.u8(), r.str()
			if r.err != nil {
				return nil, r.err
			}

			id, err := c.OpenDispute(ic, caller, nonce, business, period, dispute.Type(typ), evidence)
			if err != nil {
				return nil, err
			}

			return common.Uint64ToItem(id), nil
		},
	},
	{
		name: "resolveDispute",
		params: signed(
			prm("id", smartcontract.IntegerType),
			prm("outcome", smartcontract.IntegerType),
			prm("notes", smartcontract.StringType),
		),
		ret: smartcontract.VoidType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			caller, nonce, id, outcome, notes := r.account(), r.u64(), r.u64(), r.u8(), r.str()
			if r.err != nil {
				return nil, r.err
			}
			return nil, c.ResolveDispute(ic, caller, nonce, id, dispute.Outcome(outcome), notes)
		},
	},
	{
		name:   "closeDispute",
		params: signed(prm("id", smartcontract.IntegerType)),
		ret:    smartcontract.VoidType,
		call: func(c *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			caller, nonce, id := r.account(), r.u64(), r.u64()
			if r.err != nil {
				return nil, r.err
			}
			return nil, c.CloseDispute(ic, caller, nonce, id)
		},
	},

	// safe methods

	{
		name: "getAttestation",
		params: []manifest.Parameter{
			prm("business", smartcontract.Hash160Type),
			prm("period", smartcontract.StringType),
		},
		ret:  smartcontract.ArrayType,
		safe: true,
		call: func(_ *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			business, period := r.account(), r.str()
			if r.err != nil {
				return nil, r.err
			}

			rec, err := GetAttestation(ic, business, period)
			if err != nil || rec == nil {
				return stackitem.Null{}, err
			}

			return rec.ToStackItem()
		},
	},
	{
		name: "isRevoked",
		params: []manifest.Parameter{
			prm("business", smartcontract.Hash160Type),
			prm("period", smartcontract.StringType),
		},
		ret:  smartcontract.BoolType,
		safe: true,
		call: func(_ *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			business, period := r.account(), r.str()
			if r.err != nil {
				return nil, r.err
			}

			ok, err := IsRevoked(ic, business, period)
			if err != nil {
				return nil, err
			}

			return stackitem.NewBool(ok), nil
		},
	},
	{
		name: "verify",
		params: []manifest.Parameter{
			prm("business", smartcontract.Hash160Type),
			prm("period", smartcontract.StringType),
			prm("commitment", smartcontract.Hash256Type),
		},
		ret:  smartcontract.BoolType,
		safe: true,
		call: func(_ *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			business, period, commitment := r.account(), r.str(), r.hash()
			if r.err != nil {
				return nil, r.err
			}

			ok, err := Verify(ic, business, period, commitment)
			if err != nil {
				return nil, err
			}

			return stackitem.NewBool(ok), nil
		},
	},
	{
		name:   "getPage",
		params: []manifest.Parameter{prm("query", smartcontract.ArrayType)},
		ret:    smartcontract.ArrayType,
		safe:   true,
		call: func(_ *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			var q records.Query

			r.convertible(&q)
			if r.err != nil {
				return nil, r.err
			}

			p, err := GetPage(ic, q)
			if err != nil {
				return nil, err
			}

			return p.ToStackItem()
		},
	},
	{
		name:   "getPeriods",
		params: []manifest.Parameter{prm("business", smartcontract.Hash160Type)},
		ret:    smartcontract.ArrayType,
		safe:   true,
		call: func(_ *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			business := r.account()
			if r.err != nil {
				return nil, r.err
			}

			list, err := GetPeriods(ic, business)
			if err != nil {
				return nil, err
			}

			return common.StringsToItem(list), nil
		},
	},
	{
		name:   "getFeeQuote",
		params: []manifest.Parameter{prm("business", smartcontract.Hash160Type)},
		ret:    smartcontract.IntegerType,
		safe:   true,
		call: func(_ *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			business := r.account()
			if r.err != nil {
				return nil, r.err
			}

			v, err := GetFeeQuote(ic, business)
			if err != nil {
				return nil, err
			}

			return stackitem.NewBigInteger(v), nil
		},
	},
	{
		name: "getFeeConfig",
		ret:  smartcontract.ArrayType,
		safe: true,
		call: func(_ *Contract, ic *host.Context, _ *argReader) (stackitem.Item, error) {
			cfg, err := GetFeeConfig(ic)
			if err != nil || cfg == nil {
				return stackitem.Null{}, err
			}

			return cfg.ToStackItem()
		},
	},
	{
		name: "hasRole",
		params: []manifest.Parameter{
			prm("account", smartcontract.Hash160Type),
			prm("roles", smartcontract.IntegerType),
		},
		ret:  smartcontract.BoolType,
		safe: true,
		call: func(_ *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			acc, roles := r.account(), r.u32()
			if r.err != nil {
				return nil, r.err
			}

			ok, err := HasRole(ic, acc, access.Role(roles))
			if err != nil {
				return nil, err
			}

			return stackitem.NewBool(ok), nil
		},
	},
	{
		name:   "getRoles",
		params: []manifest.Parameter{prm("account", smartcontract.Hash160Type)},
		ret:    smartcontract.IntegerType,
		safe:   true,
		call: func(_ *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			acc := r.account()
			if r.err != nil {
				return nil, r.err
			}

			roles, err := GetRoles(ic, acc)
			if err != nil {
				return nil, err
			}

			return stackitem.NewBigInteger(big.NewInt(int64(roles))), nil
		},
	},
	{
		name: "getAdmin",
		ret:  smartcontract.Hash160Type,
		safe: true,
		call: func(_ *Contract, ic *host.Context, _ *argReader) (stackitem.Item, error) {
			admin, err := GetAdmin(ic)
			if err != nil {
				return nil, err
			}

			return common.AccountToItem(admin), nil
		},
	},
	{
		name: "isPaused",
		ret:  smartcontract.BoolType,
		safe: true,
		call: func(_ *Contract, ic *host.Context, _ *argReader) (stackitem.Item, error) {
			paused, err := IsPaused(ic)
			if err != nil {
				return nil, err
			}

			return stackitem.NewBool(paused), nil
		},
	},
	{
		name: "getMultisigOwners",
		ret:  smartcontract.ArrayType,
		safe: true,
		call: func(_ *Contract, ic *host.Context, _ *argReader) (stackitem.Item, error) {
			owners, err := GetMultisigOwners(ic)
			if err != nil {
				return nil, err
			}

			return common.AccountsToItem(owners), nil
		},
	},
	{
		name: "getMultisigThreshold",
		ret:  smartcontract.IntegerType,
		safe: true,
		call: func(_ *Contract, ic *host.Context, _ *argReader) (stackitem.Item, error) {
			threshold, err := GetMultisigThreshold(ic)
			if err != nil {
				return nil, err
			}

			return common.Uint64ToItem(uint64(threshold)), nil
		},
	},
	{
		name:   "getProposal",
		params: []manifest.Parameter{prm("id", smartcontract.IntegerType)},
		ret:    smartcontract.ArrayType,
		safe:   true,
		call: func(_ *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			id := r.u64()
			if r.err != nil {
				return nil, r.err
			}

			p, err := GetProposal(ic, id)
			if err != nil || p == nil {
				return stackitem.Null{}, err
			}

			return p.ToStackItem()
		},
	},
	{
		name: "getPendingKeyRotation",
		ret:  smartcontract.ArrayType,
		safe: true,
		call: func(_ *Contract, ic *host.Context, _ *argReader) (stackitem.Item, error) {
			req, err := GetPendingKeyRotation(ic)
			if err != nil || req == nil {
				return stackitem.Null{}, err
			}

			return req.ToStackItem()
		},
	},
	{
		name: "getRotationHistory",
		ret:  smartcontract.ArrayType,
		safe: true,
		call: func(_ *Contract, ic *host.Context, _ *argReader) (stackitem.Item, error) {
			list, err := GetRotationHistory(ic)
			if err != nil {
				return nil, err
			}

			items := make([]stackitem.Item, len(list))
			for i := range list {
				if items[i], err = list[i].ToStackItem(); err != nil {
					return nil, err
				}
			}

			return stackitem.NewArray(items), nil
		},
	},
	{
		name:   "getDispute",
		params: []manifest.Parameter{prm("id", smartcontract.IntegerType)},
		ret:    smartcontract.ArrayType,
		safe:   true,
		call: func(_ *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			id := r.u64()
			if r.err != nil {
				return nil, r.err
			}

			d, err := GetDispute(ic, id)
			if err != nil || d == nil {
				return stackitem.Null{}, err
			}

			return d.ToStackItem()
		},
	},
	{
		name: "getDisputes",
		params: []manifest.Parameter{
			prm("business", smartcontract.Hash160Type),
			prm("period", smartcontract.StringType),
		},
		ret:  smartcontract.ArrayType,
		safe: true,
		call: func(_ *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			business, period := r.account(), r.str()
			if r.err != nil {
				return nil, r.err
			}

			ids, err := GetDisputes(ic, business, period)
			if err != nil {
				return nil, err
			}

			return common.Uint64sToItem(ids), nil
		},
	},
	{
		name: "getNonce",
		params: []manifest.Parameter{
			prm("actor", smartcontract.Hash160Type),
			prm("channel", smartcontract.IntegerType),
		},
		ret:  smartcontract.IntegerType,
		safe: true,
		call: func(_ *Contract, ic *host.Context, r *argReader) (stackitem.Item, error) {
			actor, ch := r.account(), r.u32()
			if r.err != nil {
				return nil, r.err
			}

			n, err := GetNonce(ic, actor, replay.Channel(ch))
			if err != nil {
				return nil, err
			}

			return common.Uint64ToItem(n), nil
		},
	},
	{
		name: "version",
		ret:  smartcontract.IntegerType,
		safe: true,
		call: func(_ *Contract, ic *host.Context, _ *argReader) (stackitem.Item, error) {
			v, err := Version(ic)
			if err != nil {
				return nil, err
			}

			return common.Uint64ToItem(v), nil
		},
	},
}

func findMethod(name string) *method {
	for i := range methods {
		if methods[i].name == name {
			return &methods[i]
		}
	}
	return nil
}

// Invoke implements host.Dispatcher.
func (c *Contract) Invoke(ic *host.Context, name string, args []stackitem.Item) (stackitem.Item, error) {
	m := findMethod(name)
	if m == nil {
		return nil, fmt.Errorf("%w: method '%s' not found", common.ErrInvalidArgument, name)
	}

	if len(args) != len(m.params) {
		return nil, fmt.Errorf("%w: method '%s' takes %d parameters, %d given",
			common.ErrInvalidArgument, name, len(m.params), len(args))
	}

	if !m.safe && ic.ReadOnly() {
		return nil, fmt.Errorf("method '%s' modifies the state and can't be called in read-only mode", name)
	}

	return m.call(c, ic, &argReader{items: args})
}

var events = []manifest.Event{
	{Name: notifyInitialized, Parameters: []manifest.Parameter{
		prm("admin", smartcontract.Hash160Type),
	}},
	{Name: notifyRoleGranted, Parameters: []manifest.Parameter{
		prm("account", smartcontract.Hash160Type),
		prm("roles", smartcontract.IntegerType),
	}},
	{Name: notifyRoleRevoked, Parameters: []manifest.Parameter{
		prm("account", smartcontract.Hash160Type),
		prm("roles", smartcontract.IntegerType),
	}},
	{Name: notifyPaused, Parameters: []manifest.Parameter{
		prm("by", smartcontract.Hash160Type),
	}},
	{Name: notifyUnpaused, Parameters: []manifest.Parameter{
		prm("by", smartcontract.Hash160Type),
	}},
	{Name: notifyFeeConfigUpdated, Parameters: []manifest.Parameter{
		prm("token", smartcontract.Hash160Type),
		prm("collector", smartcontract.Hash160Type),
		prm("baseFee", smartcontract.IntegerType),
		prm("enabled", smartcontract.BoolType),
	}},
	{Name: notifyTierDiscountUpdated, Parameters: []manifest.Parameter{
		prm("tier", smartcontract.IntegerType),
		prm("bps", smartcontract.IntegerType),
	}},
	{Name: notifyVolumeBracketsUpdated, Parameters: []manifest.Parameter{
		prm("brackets", smartcontract.ArrayType),
	}},
	{Name: notifyBusinessTierUpdated, Parameters: []manifest.Parameter{
		prm("business", smartcontract.Hash160Type),
		prm("tier", smartcontract.IntegerType),
	}},
	{Name: notifyRateLimitUpdated, Parameters: []manifest.Parameter{
		prm("maxSubmissions", smartcontract.IntegerType),
		prm("windowSeconds", smartcontract.IntegerType),
		prm("enabled", smartcontract.BoolType),
	}},
	{Name: notifyFeeCollected, Parameters: []manifest.Parameter{
		prm("business", smartcontract.Hash160Type),
		prm("amount", smartcontract.IntegerType),
		prm("submissions", smartcontract.IntegerType),
	}},
	{Name: notifyAttestationSubmitted, Parameters: []manifest.Parameter{
		prm("business", smartcontract.Hash160Type),
		prm("period", smartcontract.StringType),
		prm("commitment", smartcontract.Hash256Type),
		prm("schemaVersion", smartcontract.IntegerType),
		prm("fee", smartcontract.IntegerType),
		prm("submitter", smartcontract.Hash160Type),
	}},
	{Name: notifyAttestationRevoked, Parameters: []manifest.Parameter{
		prm("business", smartcontract.Hash160Type),
		prm("period", smartcontract.StringType),
		prm("revokedBy", smartcontract.Hash160Type),
		prm("reason", smartcontract.StringType),
	}},
	{Name: notifyAttestationMigrated, Parameters: []manifest.Parameter{
		prm("business", smartcontract.Hash160Type),
		prm("period", smartcontract.StringType),
		prm("commitment", smartcontract.Hash256Type),
		prm("oldVersion", smartcontract.IntegerType),
		prm("newVersion", smartcontract.IntegerType),
	}},
	{Name: notifyMultisigConfigured, Parameters: []manifest.Parameter{
		prm("owners", smartcontract.ArrayType),
		prm("threshold", smartcontract.IntegerType),
	}},
	{Name: notifyProposalCreated, Parameters: []manifest.Parameter{
		prm("id", smartcontract.IntegerType),
		prm("proposer", smartcontract.Hash160Type),
		prm("action", smartcontract.ArrayType),
		prm("expiry", smartcontract.IntegerType),
	}},
	{Name: notifyProposalApproved, Parameters: []manifest.Parameter{
		prm("id", smartcontract.IntegerType),
		prm("owner", smartcontract.Hash160Type),
		prm("approvals", smartcontract.IntegerType),
	}},
	{Name: notifyProposalRejected, Parameters: []manifest.Parameter{
		prm("id", smartcontract.IntegerType),
		prm("by", smartcontract.Hash160Type),
	}},
	{Name: notifyProposalExecuted, Parameters: []manifest.Parameter{
		prm("id", smartcontract.IntegerType),
		prm("by", smartcontract.Hash160Type),
		prm("action", smartcontract.ArrayType),
	}},
	{Name: notifyProposalExpired, Parameters: []manifest.Parameter{
		prm("id", smartcontract.IntegerType),
	}},
	{Name: notifyKeyRotationProposed, Parameters: []manifest.Parameter{
		prm("oldAdmin", smartcontract.Hash160Type),
		prm("newAdmin", smartcontract.Hash160Type),
		prm("timelockUntil", smartcontract.IntegerType),
		prm("expiresAt", smartcontract.IntegerType),
	}},
	{Name: notifyKeyRotationConfirmed, Parameters: []manifest.Parameter{
		prm("oldAdmin", smartcontract.Hash160Type),
		prm("newAdmin", smartcontract.Hash160Type),
	}},
	{Name: notifyKeyRotationCancelled, Parameters: []manifest.Parameter{
		prm("oldAdmin", smartcontract.Hash160Type),
		prm("newAdmin", smartcontract.Hash160Type),
	}},
	{Name: notifyEmergencyKeyRotation, Parameters: []manifest.Parameter{
		prm("oldAdmin", smartcontract.Hash160Type),
		prm("newAdmin", smartcontract.Hash160Type),
		prm("proposalID", smartcontract.IntegerType),
	}},
	{Name: notifyDisputeOpened, Parameters: []manifest.Parameter{
		prm("id", smartcontract.IntegerType),
		prm("challenger", smartcontract.Hash160Type),
		prm("business", smartcontract.Hash160Type),
		prm("period", smartcontract.StringType),
		prm("type", smartcontract.IntegerType),
	}},
	{Name: notifyDisputeResolved, Parameters: []manifest.Parameter{
		prm("id", smartcontract.IntegerType),
		prm("resolver", smartcontract.Hash160Type),
		prm("outcome", smartcontract.IntegerType),
	}},
	{Name: notifyDisputeClosed, Parameters: []manifest.Parameter{
		prm("id", smartcontract.IntegerType),
		prm("by", smartcontract.Hash160Type),
	}},
}

// Manifest returns manifest of the contract describing its methods and
// notifications.
func Manifest() *manifest.Manifest {
	m := manifest.DefaultManifest(ContractName)

	m.ABI.Methods = make([]manifest.Method, len(methods))
	for i := range methods {
		params := make([]manifest.Parameter, len(methods[i].params))
		copy(params, methods[i].params)

		m.ABI.Methods[i] = manifest.Method{
			Name:       methods[i].name,
			Offset:     i,
			Parameters: params,
			ReturnType: methods[i].ret,
			Safe:       methods[i].safe,
		}
	}

	m.ABI.Events = make([]manifest.Event, len(events))
	copy(m.ABI.Events, events)

	return m
}

// argReader decodes method arguments in order. The first decoding error is
// kept in err, subsequent reads return zero values.
type argReader struct {
	items []stackitem.Item
	n     int
	err   error
}

func (r *argReader) next(f func(stackitem.Item) error) {
	if r.err != nil {
		return
	}

	if err := f(r.items[r.n]); err != nil {
		r.err = fmt.Errorf("%w: parameter #%d: %v", common.ErrInvalidArgument, r.n, err)
	}

	r.n++
}

func (r *argReader) account() (res util.Uint160) {
	r.next(func(item stackitem.Item) (err error) {
		res, err = common.ItemToUint160(item)
		return
	})
	return
}

func (r *argReader) accounts() (res []util.Uint160) {
	r.next(func(item stackitem.Item) (err error) {
		res, err = common.ItemToAccounts(item)
		return
	})
	return
}

func (r *argReader) hash() (res util.Uint256) {
	r.next(func(item stackitem.Item) (err error) {
		res, err = common.ItemToUint256(item)
		return
	})
	return
}

func (r *argReader) u64() (res uint64) {
	r.next(func(item stackitem.Item) (err error) {
		res, err = common.ItemToUint64(item)
		return
	})
	return
}

func (r *argReader) u32() (res uint32) {
	r.next(func(item stackitem.Item) (err error) {
		res, err = common.ItemToUint32(item)
		return
	})
	return
}

func (r *argReader) u8() (res uint8) {
	r.next(func(item stackitem.Item) error {
		v, err := common.ItemToUint32(item)
		if err != nil {
			return err
		}
		if v > 255 {
			return fmt.Errorf("integer %d is out of uint8 range", v)
		}
		res = uint8(v)
		return nil
	})
	return
}

func (r *argReader) str() (res string) {
	r.next(func(item stackitem.Item) (err error) {
		res, err = common.ItemToString(item)
		return
	})
	return
}

func (r *argReader) array() (res []stackitem.Item) {
	r.next(func(item stackitem.Item) (err error) {
		res, err = common.ItemToArray(item)
		return
	})
	return
}

func (r *argReader) convertible(v stackitem.Convertible) {
	r.next(v.FromStackItem)
}
