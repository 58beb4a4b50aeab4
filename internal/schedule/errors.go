package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderUnavailable means no usable calendar client exists; every
	// operation fails fast with this error without issuing a provider call.
	ErrProviderUnavailable = errors.New("calendar provider not available")

	// ErrRequestFailed wraps transport/HTTP-level provider failures.
	// Requests are never retried.
	ErrRequestFailed = errors.New("calendar request failed")

	// ErrEventNotFound is returned by delete when the provider reports the
	// event gone. Treated as a benign outcome: the end state matches the
	// user's intent.
	ErrEventNotFound = errors.New("event not found")

	// ErrTimeParse means an expression could not be parsed as a timestamp.
	ErrTimeParse = errors.New("unrecognized time expression")

	// ErrDateNotRecognized means the date resolver exhausted all strategies.
	ErrDateNotRecognized = errors.New("unrecognized date expression")
)

// IndexError reports a display index outside the cached snapshot's range.
// Len == 0 means the requester has no cached snapshot at all (no prior
// view).
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	if e.Len == 0 {
		return fmt.Sprintf("index %d: no viewed schedule to pick from", e.Index)
	}
	return fmt.Sprintf("index %d out of range [1, %d]", e.Index, e.Len)
}
