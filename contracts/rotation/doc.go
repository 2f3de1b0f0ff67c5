/*
Package rotation implements timelocked replacement of the contract admin.

Planned rotation is proposed by the current admin and confirmed by the new
one after the timelock and before the request expires:

	Idle -> Pending -> Completed
	        Pending -> Cancelled

Pending request past its expiration is treated as absent. New rotation can't
be proposed until the cooldown since the last completed rotation elapses.

Emergency rotation replaces the admin immediately, bypassing the timelock and
the cooldown, and drops the pending planned rotation. It is performed only by
the executed EmergencyRotateAdmin multisig proposal: the quorum of the
proposal is checked here once again.

Every completed rotation is appended to the history of the last
HistoryCapacity rotations.
*/
package rotation

/*
Contract storage model.

# Summary
Key-value storage format:
 - 's' -> std.Serialize(Config)
   rotation timings, absent key means DefaultConfig
 - 'k' -> std.Serialize(Request)
   pending rotation request
 - 'y' -> std.Serialize([]Request)
   last completed rotations, the oldest first
 - 'z' -> int
   number of completed rotations
 - 'u' -> int
   time of the last completed rotation
*/
