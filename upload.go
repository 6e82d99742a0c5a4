package uavledger

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// SplitLines splits raw log bytes into lines preserving their terminators, so
// joining the pieces reproduces the source bytes exactly. The digest chain
// depends on that.
func SplitLines(data []byte) [][]byte {
	var lines [][]byte
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			lines = append(lines, data)
			break
		}
		lines = append(lines, data[:i+1])
		data = data[i+1:]
	}
	return lines
}

// UploadStep records one cumulative upload and its anchoring outcome.
type UploadStep struct {
	SeqNo     int
	Units     int // cumulative line count uploaded through this step
	Bytes     int // cumulative body size
	VersionID string
	TipDigest Digest
	Anchored  bool
}

// UploadResult summarizes one simulated flight run.
type UploadResult struct {
	FlightID string
	Steps    []UploadStep
	Closed   bool
}

// Uploader drives the chunked cumulative upload of one flight log: each step
// uploads the log prefix up to the next planned boundary and anchors the
// rolling tip digest as an on-chain checkpoint.
type Uploader struct {
	Store    ObjectStore
	Registry Registry
	Log      zerolog.Logger
}

// Run uploads data as chunks cumulative versions under flightID. The flight
// is registered on the first step and closed after the last. A failed
// checkpoint emission is logged and the run continues (the bytes are already
// stored; verification will surface the gap), but a failed upload aborts.
//
// The registry is probed before any upload so an unreachable chain never
// leaves versions without any chance of checkpoints.
func (u *Uploader) Run(ctx context.Context, flightID string, data []byte, chunks int) (UploadResult, error) {
	res := UploadResult{FlightID: flightID}

	lines := SplitLines(data)
	if len(lines) == 0 {
		return res, ErrEmptySource
	}

	exists, err := u.Registry.FlightExists(ctx, flightID)
	if err != nil {
		return res, &FetchError{Side: "registry", Err: err}
	}

	boundaries, err := Plan(len(lines), chunks)
	if err != nil {
		return res, err
	}

	u.Log.Info().
		Str("flight_id", flightID).
		Int("lines", len(lines)).
		Int("chunks", chunks).
		Msg("starting simulated upload")

	chain := NewChain()
	prev := 0
	var body []byte
	for i, upto := range boundaries {
		seqNo := i + 1
		delta := bytes.Join(lines[prev:upto], nil)
		body = append(body, delta...)
		tip := chain.Append(delta)

		info, err := u.Store.PutVersion(ctx, flightID, body)
		if err != nil {
			return res, fmt.Errorf("upload step %d: %w", seqNo, err)
		}

		step := UploadStep{
			SeqNo:     seqNo,
			Units:     upto,
			Bytes:     len(body),
			VersionID: info.VersionID,
			TipDigest: tip,
		}
		step.Anchored = u.anchorStep(ctx, flightID, seqNo, tip, &exists)

		u.Log.Info().
			Int("seq_no", seqNo).
			Int("lines", upto).
			Int("bytes", len(body)).
			Str("version_id", info.VersionID).
			Str("tip_digest", tip.Hex()).
			Bool("anchored", step.Anchored).
			Msg("uploaded snapshot")

		res.Steps = append(res.Steps, step)
		prev = upto
	}

	if _, err := u.Registry.CloseFlight(ctx, flightID); err != nil {
		u.Log.Warn().Err(err).Str("flight_id", flightID).Msg("failed to close flight on-chain")
	} else {
		res.Closed = true
	}
	return res, nil
}

// anchorStep registers the flight if needed and adds one checkpoint. Failures
// are logged, not fatal.
func (u *Uploader) anchorStep(ctx context.Context, flightID string, seqNo int, tip Digest, registered *bool) bool {
	if !*registered {
		reg, err := u.Registry.RegisterFlight(ctx, flightID)
		if err != nil {
			u.Log.Warn().Err(err).Str("flight_id", flightID).Msg("failed to register flight on-chain")
			return false
		}
		u.Log.Info().
			Str("flight_id", flightID).
			Str("tx", reg.TxHash).
			Uint64("status", reg.Status).
			Msg("registered flight on-chain")
		*registered = true
	}

	cp, err := u.Registry.AddCheckpoint(ctx, flightID, uint64(seqNo), tip)
	if err != nil {
		u.Log.Warn().Err(err).Int("seq_no", seqNo).Msg("failed to emit checkpoint on-chain")
		return false
	}
	u.Log.Debug().
		Int("seq_no", seqNo).
		Str("tx", cp.TxHash).
		Uint64("block", cp.BlockNumber).
		Msg("checkpoint anchored")
	return true
}
