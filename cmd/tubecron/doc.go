// Command tubecron advances liked YouTube videos through transcript
// retrieval, summarization, and note publication.
//
// Each invocation of `tubecron run` performs one pass: pending transcripts
// first, then pending summaries, then discovery of newly liked videos. It is
// meant to be scheduled (cron, systemd timers); a lock file keeps passes from
// overlapping. The remaining commands inspect state (`list`, `status`,
// `liked`), authorize YouTube access (`auth login`), and manage the
// configuration file (`config init`, `config validate`).
package main
