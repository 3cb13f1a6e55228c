package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Markers classify collaborator failures. Test with errors.Is.
var (
	ErrTransient     = errors.New("transient failure")
	ErrPermanent     = errors.New("permanent failure")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
)

// Wrap tags err with marker and prefixes it with the stage, operation, and
// message that produced it. A nil marker means ErrTransient; a nil err yields
// an error carrying only the marker and detail.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	detail := joinNonEmpty(stage, operation, message)
	if detail == "" {
		detail = "service failure"
	}
	if err == nil {
		return fmt.Errorf("%w: %s", marker, detail)
	}
	return fmt.Errorf("%w: %s: %w", marker, detail, err)
}

// Retryable reports whether err may clear on a later attempt. Unmarked
// errors are retryable. Cancellation and the permanent, validation,
// configuration, and not-found markers are not.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	for _, marker := range []error{ErrPermanent, ErrValidation, ErrConfiguration, ErrNotFound} {
		if errors.Is(err, marker) {
			return false
		}
	}
	return true
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ": ")
}
