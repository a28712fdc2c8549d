// Package trash holds removed website project trees until they are
// permanently pruned.
//
// Moving a live tree into the trash is the staging step of a delete
// operation: it is a single rename, so it is cheap, rollback-capable, and
// never leaves the live tree half-removed. A cron-scheduled pruner later
// removes trash entries older than the retention window.
package trash
