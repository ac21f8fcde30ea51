// Package errors defines the sentinel errors used across the filtering
// pipeline so callers can classify failures with errors.Is instead of
// string matching.
package errors

import "errors"

var (
	// ErrConfig marks a malformed or invalid benchmark configuration (bad
	// flag combination, unparsable grid, unknown metric name).
	ErrConfig = errors.New("invalid configuration")
	// ErrInputFormat marks a malformed results-list input (bad TSV row,
	// non-monotonic attribute column the reader could not recover).
	ErrInputFormat = errors.New("invalid input format")
	// ErrInvariantViolation marks a filtering or pruning solution that fails
	// its score, ordering, or approximation guarantees.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrResource marks failure of an optional or required runtime resource:
	// CPU affinity, Postgres, Redis, Kafka, or a remote input source.
	ErrResource = errors.New("resource unavailable")
)
