package common

import "github.com/nspcc-dev/neo-go/pkg/util"

var (
	submissionFeePrefix = []byte{0x20}
	batchFeePrefix      = []byte{0x21}
)

// SubmissionFeeTransferDetails returns details attached to the token transfer
// paying for the attestation of the business period.
func SubmissionFeeTransferDetails(business util.Uint160, period string) []byte {
	res := append(append([]byte{}, submissionFeePrefix...), business.BytesBE()...)
	return append(res, period...)
}

// BatchFeeTransferDetails returns details attached to the token transfer
// paying for the batch of attestations.
func BatchFeeTransferDetails(business util.Uint160, items int) []byte {
	res := append(append([]byte{}, batchFeePrefix...), business.BytesBE()...)
	return append(res, byte(items>>8), byte(items))
}
