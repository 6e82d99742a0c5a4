package uavledger

// Status classifies one aligned reconciliation position.
type Status string

const (
	// StatusOK means both sides are present and the digests match.
	StatusOK Status = "ok"
	// StatusShrank means the snapshot body shrank relative to its
	// predecessor. Shrinkage is itself evidence of tampering and takes
	// priority over digest equality.
	StatusShrank Status = "shrank"
	// StatusMismatch means both sides are present but the digests differ.
	StatusMismatch Status = "mismatch"
	// StatusMissingOnchain means the object store holds more history than
	// the registry recorded.
	StatusMissingOnchain Status = "missing_onchain"
	// StatusExtraOnchain means the registry recorded more steps than the
	// object store currently retains.
	StatusExtraOnchain Status = "extra_onchain"
	// StatusUnknown is unreachable by construction; kept defensively.
	StatusUnknown Status = "unknown"
)

// Checkpoint is one on-chain record for a flight, read back in insertion
// order. SeqNo is the registry index plus one.
type Checkpoint struct {
	SeqNo     int    `json:"seq_no"`
	VersionID uint64 `json:"version_id"`
	Digest    Digest `json:"digest"`
	Timestamp int64  `json:"timestamp"`
}

// Row is one aligned position of the reconciliation report.
type Row struct {
	SeqNo          int     `json:"seq_no"`
	VersionID      string  `json:"version_id,omitempty"`
	Size           int     `json:"size,omitempty"`
	ComputedDigest *Digest `json:"computed_digest,omitempty"`
	OnchainDigest  *Digest `json:"onchain_digest,omitempty"`
	Status         Status  `json:"status"`
}

// Verdict is the summary over all reconciliation rows. FirstBadSeq is zero
// when every row is ok.
type Verdict struct {
	FlightID        string `json:"flight_id"`
	SnapshotCount   int    `json:"snapshot_count"`
	CheckpointCount int    `json:"checkpoint_count"`
	MatchedCount    int    `json:"matched_count"`
	Tampered        bool   `json:"tampered"`
	FirstBadSeq     int    `json:"first_bad_seq,omitempty"`
	Error           string `json:"error,omitempty"`
}

// Reconcile aligns the recomputed digest sequence against the on-chain
// checkpoint sequence strictly by position and classifies every position up
// to the longer of the two. The first non-ok sequence number decides the
// verdict; later rows are still reported for diagnostics.
func Reconcile(flightID string, computed []ComputedDigest, checkpoints []Checkpoint) (Verdict, []Row) {
	verdict := Verdict{
		FlightID:        flightID,
		SnapshotCount:   len(computed),
		CheckpointCount: len(checkpoints),
	}

	n := len(computed)
	if len(checkpoints) > n {
		n = len(checkpoints)
	}

	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		row := Row{SeqNo: i + 1}

		var comp *ComputedDigest
		if i < len(computed) {
			comp = &computed[i]
			row.VersionID = comp.VersionID
			row.Size = comp.Size
			d := comp.Digest
			row.ComputedDigest = &d
		}
		var cp *Checkpoint
		if i < len(checkpoints) {
			cp = &checkpoints[i]
			d := cp.Digest
			row.OnchainDigest = &d
		}

		switch {
		case comp != nil && comp.Shrank:
			row.Status = StatusShrank
		case comp != nil && cp != nil && comp.Digest == cp.Digest:
			row.Status = StatusOK
			verdict.MatchedCount++
		case comp != nil && cp != nil:
			row.Status = StatusMismatch
		case comp != nil:
			row.Status = StatusMissingOnchain
		case cp != nil:
			row.Status = StatusExtraOnchain
		default:
			row.Status = StatusUnknown
		}

		if row.Status != StatusOK && verdict.FirstBadSeq == 0 {
			verdict.FirstBadSeq = row.SeqNo
		}
		rows = append(rows, row)
	}

	verdict.Tampered = verdict.FirstBadSeq != 0
	return verdict, rows
}
