package uavledger

import (
	"errors"
	"fmt"
)

// ErrPlanSteps indicates a chunk plan was requested that would produce empty
// snapshots (step count is zero, negative, or larger than the unit count).
var ErrPlanSteps = errors.New("uavledger: step count incompatible with total units")

// ErrDigestFormat indicates a digest string that is not 32 bytes of hex.
// Malformed input is rejected outright, never truncated or padded.
var ErrDigestFormat = errors.New("uavledger: malformed digest")

// ErrEmptySource indicates an upload was attempted from an empty log file.
var ErrEmptySource = errors.New("uavledger: source log is empty")

// ErrFlightNotRegistered is returned by registry operations that require a
// prior RegisterFlight call.
var ErrFlightNotRegistered = errors.New("uavledger: flight not registered")

// ErrFlightClosed is returned when appending a checkpoint to a closed flight.
var ErrFlightClosed = errors.New("uavledger: flight already closed")

// ErrFlightExists is returned when registering a flight twice.
var ErrFlightExists = errors.New("uavledger: flight already registered")

// FetchError marks a collaborator read that failed outright. Reconciliation
// never proceeds on a partial fetch; the error surfaces on the Verdict.
type FetchError struct {
	Side string // "object store" or "registry"
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to read from %s: %v", e.Side, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
