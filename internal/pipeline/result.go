package pipeline

import (
	"errors"
	"fmt"

	"tubecron/internal/services"
)

// Kind classifies a collaborator outcome.
type Kind int

const (
	Success Kind = iota
	Transient
	Permanent
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Transient:
		return "transient"
	case Permanent:
		return "permanent"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is the outcome of one collaborator call. Value carries the artifact
// reference or summary text on success; Err describes a failure.
type Result struct {
	Kind  Kind
	Value string
	Err   error
}

// Ok reports a successful call.
func Ok(value string) Result {
	return Result{Kind: Success, Value: value}
}

// TransientFailure reports a failure that may succeed on a later attempt.
func TransientFailure(err error) Result {
	if err == nil {
		err = errors.New("transient failure")
	}
	return Result{Kind: Transient, Err: err}
}

// PermanentFailure reports a failure that will not succeed by retrying.
func PermanentFailure(err error) Result {
	if err == nil {
		err = errors.New("permanent failure")
	}
	return Result{Kind: Permanent, Err: err}
}

// FromError converts a conventional (value, error) pair into a Result using
// the shared error markers to decide between transient and permanent.
func FromError(value string, err error) Result {
	if err == nil {
		return Ok(value)
	}
	if services.Retryable(err) {
		return TransientFailure(err)
	}
	return PermanentFailure(err)
}

// Error returns the failure reason, or nil on success.
func (r Result) Error() error {
	switch r.Kind {
	case Success:
		return nil
	case Transient, Permanent:
		if r.Err != nil {
			return r.Err
		}
		return errors.New(r.Kind.String() + " failure")
	default:
		return fmt.Errorf("unknown result kind %d", int(r.Kind))
	}
}
