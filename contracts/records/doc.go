/*
Package records implements storage of revenue attestations.

An attestation is a commitment to the revenue data of a business for one
reporting period. There is at most one attestation per (business, period)
pair. Attestations are never deleted: revocation attaches revocation details to
the record and migration replaces the commitment with a new one of a strictly
greater schema version.

Batch submission validates every item before the first write, so an invalid
item rejects the whole batch without any storage changes.

Every business has an index of its attested periods in submission order, it is
used for paged reads when the caller does not provide the period list.
*/
package records

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'R'<business><period> -> std.Serialize(Record)
   attestation of the business for the period
 - 'P'<business><n> -> string
   n-th attested period of the business in submission order
 - 'N'<business> -> int
   number of attested periods of the business
*/
