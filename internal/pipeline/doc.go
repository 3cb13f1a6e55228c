// Package pipeline advances liked videos through transcript acquisition,
// summarization, and note publication, and discovers new videos.
//
// A pass runs three steps in a fixed order: the transcript stage over every
// pending transcript, the summary stage over every pending summary, then
// discovery. Each step is exported so it can be exercised on its own. The
// state store is the only place progress is recorded; collaborators return a
// Result and never touch the store, so a failure at any point leaves the item
// pending for the next pass.
//
// Per-item failures are logged at the item boundary and recorded for the
// operator but never stop a stage. Only store errors abort a pass.
package pipeline
