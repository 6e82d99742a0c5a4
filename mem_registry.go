package uavledger

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// memRegistry is an in-memory Registry with the same append-only semantics as
// the on-chain contract. Used by tests and single-process local runs.
type memRegistry struct {
	mu      sync.Mutex
	flights map[string]*memFlight
	txSeq   uint64
	now     func() time.Time
}

type memFlight struct {
	closed      bool
	checkpoints []Checkpoint
}

// NewMemRegistry returns an empty in-memory registry.
func NewMemRegistry() Registry {
	return &memRegistry{flights: make(map[string]*memFlight), now: time.Now}
}

func (r *memRegistry) outcomeLocked() TxOutcome {
	r.txSeq++
	return TxOutcome{
		TxHash:      fmt.Sprintf("0x%064x", r.txSeq),
		BlockNumber: r.txSeq,
		Status:      1,
	}
}

func (r *memRegistry) RegisterFlight(_ context.Context, flightID string) (TxOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.flights[flightID]; ok {
		return TxOutcome{}, fmt.Errorf("%w: %s", ErrFlightExists, flightID)
	}
	r.flights[flightID] = &memFlight{}
	return r.outcomeLocked(), nil
}

func (r *memRegistry) AddCheckpoint(_ context.Context, flightID string, versionID uint64, digest Digest) (TxOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flights[flightID]
	if !ok {
		return TxOutcome{}, fmt.Errorf("%w: %s", ErrFlightNotRegistered, flightID)
	}
	if f.closed {
		return TxOutcome{}, fmt.Errorf("%w: %s", ErrFlightClosed, flightID)
	}
	f.checkpoints = append(f.checkpoints, Checkpoint{
		SeqNo:     len(f.checkpoints) + 1,
		VersionID: versionID,
		Digest:    digest,
		Timestamp: r.now().Unix(),
	})
	return r.outcomeLocked(), nil
}

func (r *memRegistry) CloseFlight(_ context.Context, flightID string) (TxOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flights[flightID]
	if !ok {
		return TxOutcome{}, fmt.Errorf("%w: %s", ErrFlightNotRegistered, flightID)
	}
	if f.closed {
		return TxOutcome{}, fmt.Errorf("%w: %s", ErrFlightClosed, flightID)
	}
	f.closed = true
	return r.outcomeLocked(), nil
}

func (r *memRegistry) FlightExists(_ context.Context, flightID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.flights[flightID]
	return ok, nil
}

func (r *memRegistry) IsFlightClosed(_ context.Context, flightID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flights[flightID]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrFlightNotRegistered, flightID)
	}
	return f.closed, nil
}

func (r *memRegistry) CheckpointCount(_ context.Context, flightID string) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flights[flightID]
	if !ok {
		// the contract returns an empty sequence for unknown keys
		return 0, nil
	}
	return uint64(len(f.checkpoints)), nil
}

func (r *memRegistry) CheckpointAt(_ context.Context, flightID string, index uint64) (Checkpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flights[flightID]
	if !ok || index >= uint64(len(f.checkpoints)) {
		return Checkpoint{}, fmt.Errorf("checkpoint %d of flight %s not found", index, flightID)
	}
	return f.checkpoints[index], nil
}
