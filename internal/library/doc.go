// Package library persists the liked-video library and the pipeline state of
// every video in SQLite.
//
// The Store is the only writer of pipeline state. Each video carries two
// monotonic flags, transcript_ready and summary_ready, each paired with an
// artifact reference. Mutations are single statements (or one short
// transaction) committed before the call returns, so a crash never leaves a
// half-applied transition: the flag is either recorded or the item is still
// pending and will be retried on the next pass.
//
// Items are never deleted. Pending queries return rows in insertion order.
// Schema changes are additive only: add a new numbered file under
// migrations/ that adds columns with defaults.
package library
