// Package ops executes structural website operations (create, rename,
// duplicate, delete, configuration write) as all-or-nothing transactions.
//
// # Protocol
//
// Every operation follows the same stage/verify/commit protocol:
//
//  1. Acquire an exclusive lock keyed by the target website identity. A
//     second intent for the same identity while one is in flight fails
//     fast with AlreadyInProgress rather than queuing, so callers decide
//     their own retry policy.
//  2. Stage the full result of the operation into a temporary location
//     sibling to the final location. The live project tree is never
//     touched during staging.
//  3. Verify the staged result.
//  4. Commit with a single directory-level rename from the staging
//     location to the final location. For delete, the staging step is
//     instead moving the live tree to the trash, which keeps rollback
//     possible.
//  5. On any failure before the commit, discard the staged tree; the live
//     project is untouched and the operation is safe to retry. A failure
//     of the commit rename itself restores the pre-commit snapshot; only
//     when that restoration also fails is state potentially inconsistent,
//     reported as CommitFailed with StateUnknown set.
//
// Operations on distinct identities run concurrently without
// coordination. An in-flight operation cannot be cancelled externally:
// once Perform starts staging it runs to commit or rollback.
//
// Each operation is journaled before staging begins and marked committed
// or rolled back when it finishes, so interrupted runs can be recovered
// on the next start.
package ops
