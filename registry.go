package uavledger

import "context"

// TxOutcome reports the on-chain result of a registry write.
type TxOutcome struct {
	TxHash      string `json:"transaction_hash"`
	BlockNumber uint64 `json:"block_number"`
	Status      uint64 `json:"status"`
}

// Registry abstracts the on-chain flight checkpoint registry. Flight
// identifiers are human-readable strings on this side of the boundary; the
// implementation owns the mapping to the registry's fixed-width key.
//
// The registry guarantees append-only, index-addressable checkpoint storage
// per flight. This core never retries registry calls; retry policy belongs to
// the implementation's transport.
type Registry interface {
	RegisterFlight(ctx context.Context, flightID string) (TxOutcome, error)
	AddCheckpoint(ctx context.Context, flightID string, versionID uint64, digest Digest) (TxOutcome, error)
	CloseFlight(ctx context.Context, flightID string) (TxOutcome, error)

	FlightExists(ctx context.Context, flightID string) (bool, error)
	IsFlightClosed(ctx context.Context, flightID string) (bool, error)
	CheckpointCount(ctx context.Context, flightID string) (uint64, error)
	CheckpointAt(ctx context.Context, flightID string, index uint64) (Checkpoint, error)
}
