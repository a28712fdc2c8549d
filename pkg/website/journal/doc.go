// Package journal records structural website operations as durable
// entries, giving the operation manager a crash-recovery marker.
//
// Every operation writes a pending entry before staging begins and marks
// it committed or rolled back when it finishes. After an unclean shutdown,
// entries still pending identify staging directories that were abandoned
// mid-flight and can be discarded safely: the live project tree is only
// ever replaced by the single commit rename, so a pending entry never
// implies a partially written live tree.
//
// Two backends implement the Journal interface: SQLite for production and
// an in-memory journal for tests.
package journal
