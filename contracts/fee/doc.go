/*
Package fee implements tiered and volume-based pricing of attestation
submissions.

Fee of a submission is

	base_fee * (10000 - tier_bps) * (10000 - volume_bps) / 100_000_000

where tier_bps is the discount of the business tier and volume_bps is the
discount of the highest volume bracket whose threshold does not exceed the
number of submissions already made by the business. Discounts are
multiplicative. Without fee configuration, or with disabled one, submissions
are free.

Discounts and bracket ordering are validated when they are configured, fee
calculation never fails on them.

# Contract notifications

Fee engine produces no notifications itself, see FeeCollected notification of
the attestation package.
*/
package fee

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'c' -> std.Serialize(Config)
   fee configuration, absent key means free mode
 - 't'<tier> -> int
   tier discount in basis points
 - 'v' -> std.Serialize([]Bracket)
   volume brackets in ascending threshold order
 - 'b'<business> -> std.Serialize(BusinessState)
   tier and number of accepted submissions of the business
*/
