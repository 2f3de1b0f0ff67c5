/*
Package dispute implements challenges of revenue attestations.

Anyone may challenge an existing attestation by opening a dispute with the
evidence. A challenger can hold only one open dispute per attestation.
Disputes are resolved by the admin or an operator with an externally
adjudicated outcome, and then closed by the challenger or the admin:

	Open -> Resolved -> Closed

Resolution does not change the attestation, downstream contracts act on the
outcome.
*/
package dispute

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'd' -> int
   identifier of the next dispute
 - 'D'<id> -> std.Serialize(Dispute)
   dispute by its identifier
 - 'K'<business><period><id> -> 1
   index of disputes of the attestation
 - 'C'<challenger><id> -> 1
   index of disputes opened by the challenger
 - 'O'<challenger><business><period> -> int
   identifier of the open dispute of the challenger on the attestation
*/
