/*
Package replay implements anti-replay sequencing of privileged calls.

Every (actor, channel) pair owns an independent counter starting from 0. A
call presents the current counter value, the value is checked and incremented
by exactly one. Signed-but-unsubmitted calls therefore can not be replayed or
reordered, and channels keep unrelated authority domains from blocking each
other.

# Contract notifications

Replay guard produces no notifications.
*/
package replay

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'n'<actor><channel> -> int
   next expected nonce of the actor in the channel, absent key means 0
*/
