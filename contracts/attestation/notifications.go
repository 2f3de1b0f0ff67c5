package attestation

const versionKey = 'V'

// Names of the contract notifications.
const (
	notifyInitialized = "Initialized"

	notifyRoleGranted = "RoleGranted"
	notifyRoleRevoked = "RoleRevoked"
	notifyPaused      = "Paused"
	notifyUnpaused    = "Unpaused"

	notifyFeeConfigUpdated      = "FeeConfigUpdated"
	notifyTierDiscountUpdated   = "TierDiscountUpdated"
	notifyVolumeBracketsUpdated = "VolumeBracketsUpdated"
	notifyBusinessTierUpdated   = "BusinessTierUpdated"
	notifyRateLimitUpdated      = "RateLimitUpdated"
	notifyFeeCollected          = "FeeCollected"

	notifyAttestationSubmitted = "AttestationSubmitted"
	notifyAttestationRevoked   = "AttestationRevoked"
	notifyAttestationMigrated  = "AttestationMigrated"

	notifyMultisigConfigured = "MultisigConfigured"
	notifyProposalCreated    = "ProposalCreated"
	notifyProposalApproved   = "ProposalApproved"
	notifyProposalRejected   = "ProposalRejected"
	notifyProposalExecuted   = "ProposalExecuted"
	notifyProposalExpired    = "ProposalExpired"

	notifyKeyRotationProposed  = "KeyRotationProposed"
	notifyKeyRotationConfirmed = "KeyRotationConfirmed"
	notifyKeyRotationCancelled = "KeyRotationCancelled"
	notifyEmergencyKeyRotation = "EmergencyKeyRotation"

	notifyDisputeOpened   = "DisputeOpened"
	notifyDisputeResolved = "DisputeResolved"
	notifyDisputeClosed   = "DisputeClosed"
)
