package uavledger

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// NoDataMessage is the verdict error reported when the object store holds no
// versions for the requested flight.
const NoDataMessage = "No data found for this flight."

// Verifier re-derives a flight's digest chain from its stored snapshots and
// reconciles it against the on-chain checkpoint sequence.
type Verifier struct {
	store    ObjectStore
	registry Registry
	log      zerolog.Logger
}

// NewVerifier binds a verifier to its two collaborators.
func NewVerifier(store ObjectStore, registry Registry, log zerolog.Logger) *Verifier {
	return &Verifier{store: store, registry: registry, log: log}
}

// VerifyFlight fetches both sequences (concurrently, they are independent
// reads), recomputes the digest chain, and reconciles. A fetch failure on
// either side yields a Verdict carrying the error and no rows; reconciliation
// never runs on a partial fetch.
func (v *Verifier) VerifyFlight(ctx context.Context, flightID string) (Verdict, []Row) {
	verdict := Verdict{FlightID: flightID}

	var snaps []Snapshot
	var checkpoints []Checkpoint

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := v.fetchSnapshots(gctx, flightID)
		if err != nil {
			return &FetchError{Side: "object store", Err: err}
		}
		snaps = s
		return nil
	})
	g.Go(func() error {
		c, err := v.fetchCheckpoints(gctx, flightID)
		if err != nil {
			return &FetchError{Side: "registry", Err: err}
		}
		checkpoints = c
		return nil
	})
	if err := g.Wait(); err != nil {
		v.log.Error().Err(err).Str("flight_id", flightID).Msg("verification fetch failed")
		verdict.Error = err.Error()
		return verdict, nil
	}

	if len(snaps) == 0 {
		verdict.Error = NoDataMessage
		return verdict, nil
	}

	computed := RecomputeDigests(snaps)
	verdict, rows := Reconcile(flightID, computed, checkpoints)
	v.log.Info().
		Str("flight_id", flightID).
		Int("snapshots", verdict.SnapshotCount).
		Int("checkpoints", verdict.CheckpointCount).
		Int("matched", verdict.MatchedCount).
		Bool("tampered", verdict.Tampered).
		Msg("flight verified")
	return verdict, rows
}

func (v *Verifier) fetchSnapshots(ctx context.Context, flightID string) ([]Snapshot, error) {
	infos, err := v.store.ListVersions(ctx, flightID)
	if err != nil {
		return nil, err
	}
	snaps := make([]Snapshot, 0, len(infos))
	for _, info := range infos {
		body, err := v.store.GetVersionBody(ctx, flightID, info.VersionID)
		if err != nil {
			return nil, fmt.Errorf("version %s: %w", info.VersionID, err)
		}
		snaps = append(snaps, Snapshot{
			VersionID:  info.VersionID,
			ObservedAt: info.ObservedAt,
			Size:       len(body),
			Body:       body,
		})
	}
	return SequenceSnapshots(snaps), nil
}

func (v *Verifier) fetchCheckpoints(ctx context.Context, flightID string) ([]Checkpoint, error) {
	count, err := v.registry.CheckpointCount(ctx, flightID)
	if err != nil {
		return nil, err
	}
	out := make([]Checkpoint, 0, count)
	for i := uint64(0); i < count; i++ {
		cp, err := v.registry.CheckpointAt(ctx, flightID, i)
		if err != nil {
			return nil, fmt.Errorf("checkpoint %d: %w", i, err)
		}
		cp.SeqNo = int(i) + 1
		out = append(out, cp)
	}
	return out, nil
}
