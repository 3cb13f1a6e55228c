// Package transcripts fetches video transcripts from a transcript HTTP API and
// stores them as plain-text files under the configured transcripts directory.
//
// The file path is the transcript reference recorded in the state store, and
// HTTPFetcher.ReadTranscript loads it back for the summary stage.
package transcripts
