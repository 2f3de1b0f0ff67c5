/*
Package access implements role-based access control and the pause switch of
the attestation contract.

Roles of an account are a bitmap: granting is bitwise OR, revoking is bitwise
AND-NOT. The contract also keeps a single admin address which always holds
the ADMIN role, it is changed by key rotation only.

# Contract notifications

Access control produces no notifications itself, see attestation package for
RoleGranted, RoleRevoked, Paused and Unpaused notifications.
*/
package access

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'a' -> interop.Hash160
   admin address
 - 'r'<account> -> int
   role bitmap of the account, absent key means no roles; iterated by
   prefix to list role holders
 - 'p' -> bool
   pause flag
*/
