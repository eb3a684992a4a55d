// Package errs collects the sentinel error values returned across the
// probe's package boundaries. Every operation that can fail returns one
// of these by value; nothing in this module panics on caller input.
package errs

import "errors"

// Storage setup failures, returned when a caller-supplied memory region
// cannot back a probe or a history.
var (
	ErrUnderMinimumAllowedSize = errors.New("storage setup: region is smaller than the minimum allowed size")
	ErrNullDestination         = errors.New("storage setup: destination region is nil")
)

// Identifier validation failures.
var (
	ErrInvalidProbeId = errors.New("invalid probe id")
	ErrInvalidEventId = errors.New("invalid event id")
)

// ErrInsufficientDestinationSize is returned when a caller-provided
// output buffer cannot fit the minimum report or snapshot frame. It is
// non-fatal: the caller may retry with a larger buffer.
var ErrInsufficientDestinationSize = errors.New("destination buffer too small for report or snapshot")

// Wire decode failures.
var (
	ErrBadFingerprint     = errors.New("report wire: bad fingerprint magic")
	ErrTruncated          = errors.New("report wire: buffer truncated")
	ErrInconsistentLength = errors.New("report wire: inconsistent length fields")
	ErrUnpairedLogEntry   = errors.New("report wire: log entry pair split across buffer boundary")
)

// Producer-side overflow failures.
var (
	ErrTooManyFrontierClocks = errors.New("report: too many frontier clocks for wire format")
	ErrTooManyLogEntries     = errors.New("report: too many log entries for wire format")
)
