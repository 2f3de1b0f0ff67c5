/*
Package multisig implements N-of-M governance of the attestation contract.

Owners create proposals of governance actions, the proposer approves the
proposal automatically. A proposal approved by at least threshold current
owners can be executed once, until then it may be rejected by the proposer or
any owner. Proposals expire after a fixed period since their creation
regardless of the approvals; stale proposals are reported as expired without
any stored transition, Expire stores it explicitly.

Changes of the owner set, the threshold, the proposal lifetime and key
rotation timings are proposal actions too, so governance itself is changed
with the same quorum. The proposal lifetime is bounded by MinProposalTTL and
MaxProposalTTL.

	Pending -> Executed
	Pending -> Rejected
	Pending -> Expired
*/
package multisig

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'o' -> []Uint160
   owners
 - 'm' -> int
   approval threshold
 - 'l' -> int
   proposal lifetime in seconds, absent key means DefaultProposalTTL
 - 'i' -> int
   identifier of the next proposal
 - 'g'<id> -> std.Serialize(Proposal)
   proposal by its identifier
*/
