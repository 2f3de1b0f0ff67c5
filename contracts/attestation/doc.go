/*
Package attestation implements the revenue attestation contract.

The contract binds together attestation storage, role-based access control,
replay protection, fees, rate limits, multisig governance, admin key rotation
and disputes. Every state-changing method authenticates the caller by its
witness, consumes the caller's nonce of the method channel, checks roles and
the pause flag and only then runs domain logic. Any failure leaves the storage
untouched.

Methods are available directly on Contract and by name via Invoke, which
makes the contract callable through host.Chain and the rpc/attestation
binding. Manifest describes the method-level ABI.

# Contract notifications

Initialized notification. This notification is produced when the contract
gets its first admin.

	Initialized:
	  - name: admin
	    type: Hash160

AttestationSubmitted notification. This notification is produced for every
stored attestation, including items of a batch.

	AttestationSubmitted:
	  - name: business
	    type: Hash160
	  - name: period
	    type: String
	  - name: commitment
	    type: Hash256
	  - name: schemaVersion
	    type: Integer
	  - name: fee
	    type: Integer
	  - name: submitter
	    type: Hash160

FeeCollected notification. This notification is produced once per business
and call when a non-zero fee is transferred to the collector.

	FeeCollected:
	  - name: business
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: submissions
	    type: Integer

AttestationRevoked notification.

	AttestationRevoked:
	  - name: business
	    type: Hash160
	  - name: period
	    type: String
	  - name: revokedBy
	    type: Hash160
	  - name: reason
	    type: String

AttestationMigrated notification.

	AttestationMigrated:
	  - name: business
	    type: Hash160
	  - name: period
	    type: String
	  - name: commitment
	    type: Hash256
	  - name: oldVersion
	    type: Integer
	  - name: newVersion
	    type: Integer

ProposalExecuted notification. This notification is produced when the quorum
of multisig owners has approved the proposal and its action is performed.

	ProposalExecuted:
	  - name: id
	    type: Integer
	  - name: by
	    type: Hash160
	  - name: action
	    type: Array

KeyRotationConfirmed and EmergencyKeyRotation notifications. These
notifications are produced when the admin is replaced by the timelocked
rotation and by the multisig proposal respectively.

	KeyRotationConfirmed:
	  - name: oldAdmin
	    type: Hash160
	  - name: newAdmin
	    type: Hash160
	EmergencyKeyRotation:
	  - name: oldAdmin
	    type: Hash160
	  - name: newAdmin
	    type: Hash160
	  - name: proposalID
	    type: Integer

DisputeOpened notification.

	DisputeOpened:
	  - name: id
	    type: Integer
	  - name: challenger
	    type: Hash160
	  - name: business
	    type: Hash160
	  - name: period
	    type: String
	  - name: type
	    type: Integer

The rest of notifications (role, pause, fee and rate limit configuration,
proposal lifecycle, dispute resolution) are listed in the contract manifest.
*/
package attestation

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'V' -> int
   version of the stored contract data
The rest of the keys belong to the packages implementing contract parts, see
their documentation.
*/
