/*
Package ratelimit implements per-business sliding window limit of attestation
submissions.

Every accepted submission leaves its timestamp in the log of the business.
Before counting, timestamps older than now - window are dropped. Submission is
rejected when the number of remaining timestamps plus the number of new
submissions exceeds the configured maximum.

Without configuration submissions are neither limited nor logged. With
disabled configuration they are not limited but still logged and pruned by
window, so re-enabling the limit counts unexpired entries. The log keeps at
most MaxLogSize latest timestamps.
*/
package ratelimit

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'q' -> std.Serialize(Config)
   rate limit configuration
 - 'w'<business> -> []int
   timestamps of submissions made by the business within the last window,
   at most MaxLogSize of them
*/
