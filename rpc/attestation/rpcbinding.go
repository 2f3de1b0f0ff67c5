// Package attestation contains RPC wrappers for the revenue attestation
// contract.
package attestation

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
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

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	Send(w host.Witnesses, contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	hash    util.Uint160
}

// Contract implements all contract methods on behalf of one account.
type Contract struct {
	ContractReader
	actor   Actor
	account util.Uint160
}

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the
// given Actor. Calls are witnessed by the account and use its nonces.
func New(actor Actor, hash util.Uint160, account util.Uint160) *Contract {
	return &Contract{ContractReader{actor, hash}, actor, account}
}

// Account returns account the calls are made on behalf of.
func (c *Contract) Account() util.Uint160 {
	return c.account
}

func itemInto(v stackitem.Convertible, item stackitem.Item, err error) error {
	if err != nil {
		return err
	}
	return v.FromStackItem(item)
}

func optional(item stackitem.Item, err error) (stackitem.Item, error) {
	if err != nil {
		return nil, err
	}
	if _, ok := item.(stackitem.Null); ok {
		return nil, nil
	}
	return item, nil
}

func uint64Result(r *result.Invoke, err error) (uint64, error) {
	v, err := unwrap.BigInt(r, err)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("integer %s is out of uint64 range", v)
	}
	return v.Uint64(), nil
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (uint64, error) {
	return uint64Result(c.invoker.Call(c.hash, "version"))
}

// GetAttestation invokes `getAttestation` method of contract. It returns nil
// if there is no such attestation.
func (c *ContractReader) GetAttestation(business util.Uint160, period string) (*records.Record, error) {
	item, err := optional(unwrap.Item(c.invoker.Call(c.hash, "getAttestation", business, period)))
	if err != nil || item == nil {
		return nil, err
	}

	var r records.Record

	return &r, r.FromStackItem(item)
}

// IsRevoked invokes `isRevoked` method of contract.
func (c *ContractReader) IsRevoked(business util.Uint160, period string) (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "isRevoked", business, period))
}

// Verify invokes `verify` method of contract.
func (c *ContractReader) Verify(business util.Uint160, period string, commitment util.Uint256) (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "verify", business, period, commitment))
}

// GetPage invokes `getPage` method of contract.
func (c *ContractReader) GetPage(q records.Query) (*records.Page, error) {
	qItem, err := q.ToStackItem()
	if err != nil {
		return nil, err
	}

	item, err := unwrap.Item(c.invoker.Call(c.hash, "getPage", qItem))

	var p records.Page

	return &p, itemInto(&p, item, err)
}

// GetPeriods invokes `getPeriods` method of contract.
func (c *ContractReader) GetPeriods(business util.Uint160) ([]string, error) {
	return unwrap.ArrayOfUTF8Strings(c.invoker.Call(c.hash, "getPeriods", business))
}

// GetFeeQuote invokes `getFeeQuote` method of contract.
func (c *ContractReader) GetFeeQuote(business util.Uint160) (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "getFeeQuote", business))
}

// GetFeeConfig invokes `getFeeConfig` method of contract. It returns nil if
// fees are not configured.
func (c *ContractReader) GetFeeConfig() (*fee.Config, error) {
	item, err := optional(unwrap.Item(c.invoker.Call(c.hash, "getFeeConfig")))
	if err != nil || item == nil {
		return nil, err
	}

	var cfg fee.Config

	return &cfg, cfg.FromStackItem(item)
}

// HasRole invokes `hasRole` method of contract.
func (c *ContractReader) HasRole(acc util.Uint160, r access.Role) (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "hasRole", acc, int64(r)))
}

// GetRoles invokes `getRoles` method of contract.
func (c *ContractReader) GetRoles(acc util.Uint160) (access.Role, error) {
	v, err := uint64Result(c.invoker.Call(c.hash, "getRoles", acc))
	return access.Role(v), err
}

// GetAdmin invokes `getAdmin` method of contract.
func (c *ContractReader) GetAdmin() (util.Uint160, error) {
	b, err := unwrap.Bytes(c.invoker.Call(c.hash, "getAdmin"))
	if err != nil {
		return util.Uint160{}, err
	}
	return util.Uint160DecodeBytesBE(b)
}

// IsPaused invokes `isPaused` method of contract.
func (c *ContractReader) IsPaused() (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "isPaused"))
}

// GetMultisigOwners invokes `getMultisigOwners` method of contract.
func (c *ContractReader) GetMultisigOwners() ([]util.Uint160, error) {
	item, err := unwrap.Item(c.invoker.Call(c.hash, "getMultisigOwners"))
	if err != nil {
		return nil, err
	}
	return common.ItemToAccounts(item)
}

// GetMultisigThreshold invokes `getMultisigThreshold` method of contract.
func (c *ContractReader) GetMultisigThreshold() (uint32, error) {
	v, err := uint64Result(c.invoker.Call(c.hash, "getMultisigThreshold"))
	return uint32(v), err
}

// GetProposal invokes `getProposal` method of contract. It returns nil if
// there is no such proposal.
func (c *ContractReader) GetProposal(id uint64) (*multisig.Proposal, error) {
	item, err := optional(unwrap.Item(c.invoker.Call(c.hash, "getProposal", new(big.Int).SetUint64(id))))
	if err != nil || item == nil {
		return nil, err
	}

	var p multisig.Proposal

	return &p, p.FromStackItem(item)
}

// GetPendingKeyRotation invokes `getPendingKeyRotation` method of contract.
// It returns nil if there is no pending rotation.
func (c *ContractReader) GetPendingKeyRotation() (*rotation.Request, error) {
	item, err := optional(unwrap.Item(c.invoker.Call(c.hash, "getPendingKeyRotation")))
	if err != nil || item == nil {
		return nil, err
	}

	var r rotation.Request

	return &r, r.FromStackItem(item)
}

// GetRotationHistory invokes `getRotationHistory` method of contract.
func (c *ContractReader) GetRotationHistory() ([]rotation.Request, error) {
	items, err := unwrap.Array(c.invoker.Call(c.hash, "getRotationHistory"))
	if err != nil {
		return nil, err
	}

	res := make([]rotation.Request, len(items))
	for i := range items {
		if err := res[i].FromStackItem(items[i]); err != nil {
			return nil, fmt.Errorf("item #%d: %w", i, err)
		}
	}

	return res, nil
}

// GetDispute invokes `getDispute` method of contract. It returns nil if there
// is no such dispute.
func (c *ContractReader) GetDispute(id uint64) (*dispute.Dispute, error) {
	item, err := optional(unwrap.Item(c.invoker.Call(c.hash, "getDispute", new(big.Int).SetUint64(id))))
	if err != nil || item == nil {
		return nil, err
	}

	var d dispute.Dispute

	return &d, d.FromStackItem(item)
}

// GetDisputes invokes `getDisputes` method of contract.
func (c *ContractReader) GetDisputes(business util.Uint160, period string) ([]uint64, error) {
	item, err := unwrap.Item(c.invoker.Call(c.hash, "getDisputes", business, period))
	if err != nil {
		return nil, err
	}
	return common.ItemToUint64s(item)
}

// GetNonce invokes `getNonce` method of contract.
func (c *ContractReader) GetNonce(actor util.Uint160, ch replay.Channel) (uint64, error) {
	return uint64Result(c.invoker.Call(c.hash, "getNonce", actor, int64(ch)))
}

// errNoResult is returned when state-changing method returns unexpected
// result.
var errNoResult = errors.New("unexpected method result")

// send calls state-changing method with the current nonce of the account in
// the channel inserted after the caller.
func (c *Contract) send(ch replay.Channel, method string, params ...any) (stackitem.Item, error) {
	nonce, err := c.GetNonce(c.account, ch)
	if err != nil {
		return nil, fmt.Errorf("get nonce: %w", err)
	}

	args := append([]any{c.account, new(big.Int).SetUint64(nonce)}, params...)

	return unwrap.Item(c.actor.Send(host.Signers{c.account}, c.hash, method, args...))
}

func (c *Contract) sendNothing(ch replay.Channel, method string, params ...any) error {
	_, err := c.send(ch, method, params...)
	return err
}

func (c *Contract) sendID(ch replay.Channel, method string, params ...any) (uint64, error) {
	item, err := c.send(ch, method, params...)
	if err != nil {
		return 0, err
	}

	id, err := common.ItemToUint64(item)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errNoResult, err)
	}

	return id, nil
}

// Initialize creates a transaction invoking `initialize` method of the contract
// with the account as the admin.
func (c *Contract) Initialize() error {
	_, err := unwrap.Item(c.actor.Send(host.Signers{c.account}, c.hash, "initialize", c.account))
	return err
}

// Update invokes `update` method of contract.
func (c *Contract) Update() error {
	return c.sendNothing(replay.ChannelAdmin, "update")
}

// GrantRole invokes `grantRole` method of contract.
func (c *Contract) GrantRole(acc util.Uint160, r access.Role) error {
	return c.sendNothing(replay.ChannelAdmin, "grantRole", acc, int64(r))
}

// RevokeRole invokes `revokeRole` method of contract.
func (c *Contract) RevokeRole(acc util.Uint160, r access.Role) error {
	return c.sendNothing(replay.ChannelAdmin, "revokeRole", acc, int64(r))
}

// Pause invokes `pause` method of contract.
func (c *Contract) Pause() error {
	return c.sendNothing(replay.ChannelAdmin, "pause")
}

// Unpause invokes `unpause` method of contract.
func (c *Contract) Unpause() error {
	return c.sendNothing(replay.ChannelAdmin, "unpause")
}

func (c *Contract) sendConvertible(ch replay.Channel, method string, v stackitem.Convertible) (stackitem.Item, error) {
	item, err := v.ToStackItem()
	if err != nil {
		return nil, err
	}
	return c.send(ch, method, item)
}

// SetFeeConfig invokes `setFeeConfig` method of contract.
func (c *Contract) SetFeeConfig(cfg fee.Config) error {
	_, err := c.sendConvertible(replay.ChannelAdmin, "setFeeConfig", &cfg)
	return err
}

// SetTierDiscount invokes `setTierDiscount` method of contract.
func (c *Contract) SetTierDiscount(tier, bps uint32) error {
	return c.sendNothing(replay.ChannelAdmin, "setTierDiscount", int64(tier), int64(bps))
}

// SetVolumeBrackets invokes `setVolumeBrackets` method of contract.
func (c *Contract) SetVolumeBrackets(b fee.Brackets) error {
	_, err := c.sendConvertible(replay.ChannelAdmin, "setVolumeBrackets", &b)
	return err
}

// SetBusinessTier invokes `setBusinessTier` method of contract.
func (c *Contract) SetBusinessTier(business util.Uint160, tier uint32) error {
	return c.sendNothing(replay.ChannelAdmin, "setBusinessTier", business, int64(tier))
}

// SetRateLimit invokes `setRateLimit` method of contract.
func (c *Contract) SetRateLimit(cfg ratelimit.Config) error {
	_, err := c.sendConvertible(replay.ChannelAdmin, "setRateLimit", &cfg)
	return err
}

// SetupMultisig invokes `setupMultisig` method of contract.
func (c *Contract) SetupMultisig(owners []util.Uint160, threshold uint32) error {
	return c.sendNothing(replay.ChannelAdmin, "setupMultisig", common.AccountsToItem(owners), int64(threshold))
}

// SetProposalTTL invokes `setProposalTTL` method of contract.
func (c *Contract) SetProposalTTL(ttl uint64) error {
	return c.sendNothing(replay.ChannelAdmin, "setProposalTTL", new(big.Int).SetUint64(ttl))
}

// SetRotationConfig invokes `setRotationConfig` method of contract.
func (c *Contract) SetRotationConfig(cfg rotation.Config) error {
	_, err := c.sendConvertible(replay.ChannelAdmin, "setRotationConfig", &cfg)
	return err
}

// SubmitAttestation invokes `submitAttestation` method of contract.
func (c *Contract) SubmitAttestation(s records.Submission) (*records.Record, error) {
	item, err := c.sendConvertible(replay.ChannelBusiness, "submitAttestation", &s)
	if err != nil {
		return nil, err
	}

	var r records.Record

	return &r, r.FromStackItem(item)
}

// SubmitBatch invokes `submitBatch` method of contract.
func (c *Contract) SubmitBatch(batch []records.Submission) ([]records.Record, error) {
	items := make([]stackitem.Item, len(batch))
	for i := range batch {
		item, err := batch[i].ToStackItem()
		if err != nil {
			return nil, err
		}
		items[i] = item
	}

	item, err := c.send(replay.ChannelBusiness, "submitBatch", stackitem.NewArray(items))
	if err != nil {
		return nil, err
	}

	arr, err := common.ItemToArray(item)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errNoResult, err)
	}

	res := make([]records.Record, len(arr))
	for i := range arr {
		if err := res[i].FromStackItem(arr[i]); err != nil {
			return nil, fmt.Errorf("item #%d: %w", i, err)
		}
	}

	return res, nil
}

// RevokeAttestation invokes `revokeAttestation` method of contract.
func (c *Contract) RevokeAttestation(business util.Uint160, period, reason string) error {
	return c.sendNothing(replay.ChannelBusiness, "revokeAttestation", business, period, reason)
}

// MigrateAttestation invokes `migrateAttestation` method of contract.
func (c *Contract) MigrateAttestation(business util.Uint160, period string, commitment util.Uint256, version uint32) error {
	return c.sendNothing(replay.ChannelAdmin, "migrateAttestation", business, period, commitment, int64(version))
}

// CreateProposal invokes `createProposal` method of contract and returns
// identifier of the new proposal.
func (c *Contract) CreateProposal(a multisig.Action) (uint64, error) {
	item, err := a.ToStackItem()
	if err != nil {
		return 0, err
	}
	return c.sendID(replay.ChannelGovernance, "createProposal", item)
}

// ApproveProposal invokes `approveProposal` method of contract.
func (c *Contract) ApproveProposal(id uint64) error {
	return c.sendNothing(replay.ChannelGovernance, "approveProposal", new(big.Int).SetUint64(id))
}

// RejectProposal invokes `rejectProposal` method of contract.
func (c *Contract) RejectProposal(id uint64) error {
	return c.sendNothing(replay.ChannelGovernance, "rejectProposal", new(big.Int).SetUint64(id))
}

// ExecuteProposal invokes `executeProposal` method of contract.
func (c *Contract) ExecuteProposal(id uint64) error {
	return c.sendNothing(replay.ChannelGovernance, "executeProposal", new(big.Int).SetUint64(id))
}

// ExpireProposal invokes `expireProposal` method of contract. It requires no
// nonce and can be called by anyone.
func (c *Contract) ExpireProposal(id uint64) error {
	_, err := unwrap.Item(c.actor.Send(host.Signers{c.account}, c.hash, "expireProposal", new(big.Int).SetUint64(id)))
	return err
}

// ProposeKeyRotation invokes `proposeKeyRotation` method of contract.
func (c *Contract) ProposeKeyRotation(newAdmin util.Uint160) (*rotation.Request, error) {
	item, err := c.send(replay.ChannelRotation, "proposeKeyRotation", newAdmin)
	if err != nil {
		return nil, err
	}

	var r rotation.Request

	return &r, r.FromStackItem(item)
}

// ConfirmKeyRotation invokes `confirmKeyRotation` method of contract.
func (c *Contract) ConfirmKeyRotation() error {
	return c.sendNothing(replay.ChannelRotation, "confirmKeyRotation")
}

// CancelKeyRotation invokes `cancelKeyRotation` method of contract.
func (c *Contract) CancelKeyRotation() error {
	return c.sendNothing(replay.ChannelRotation, "cancelKeyRotation")
}

// OpenDispute invokes `openDispute` method of contract and returns identifier
// of the new dispute.
func (c *Contract) OpenDispute(business util.Uint160, period string, typ dispute.Type, evidence string) (uint64, error) {
	return c.sendID(replay.ChannelDispute, "openDispute", business, period, int64(typ), evidence)
}

// ResolveDispute invokes `resolveDispute` method of contract.
func (c *Contract) ResolveDispute(id uint64, outcome dispute.Outcome, notes string) error {
	return c.sendNothing(replay.ChannelDispute, "resolveDispute", new(big.Int).SetUint64(id), int64(outcome), notes)
}

// CloseDispute invokes `closeDispute` method of contract.
func (c *Contract) CloseDispute(id uint64) error {
	return c.sendNothing(replay.ChannelDispute, "closeDispute", new(big.Int).SetUint64(id))
}
