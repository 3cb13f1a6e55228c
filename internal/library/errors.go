package library

import "errors"

var (
	// ErrNotFound reports a mutation or lookup of an unknown video id.
	ErrNotFound = errors.New("item not found")
	// ErrPrecondition reports a transition attempted out of order, such as
	// recording a summary before the transcript.
	ErrPrecondition = errors.New("stage precondition not met")
	// ErrInvalid reports a malformed argument (empty id or artifact ref).
	ErrInvalid = errors.New("invalid argument")
)
