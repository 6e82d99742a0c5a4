package uavledger

import (
	"sort"
	"time"
)

// Snapshot is one fetched version of a flight's cumulative log, with its
// sequence number assigned by observation-time order.
type Snapshot struct {
	SeqNo      int
	VersionID  string
	ObservedAt time.Time
	Size       int
	Body       []byte
}

// ComputedDigest is the replayed chain digest for one snapshot position.
type ComputedDigest struct {
	SeqNo     int
	VersionID string
	Size      int
	Digest    Digest
	// Shrank records that this snapshot's body was shorter than its
	// predecessor's. The chain still advances (over the entire current
	// body) but the position is suspicious regardless of digest equality.
	Shrank bool
}

// SequenceSnapshots orders snapshots ascending by ObservedAt and assigns
// 1-based sequence numbers in that order. The input slice is not modified.
func SequenceSnapshots(snaps []Snapshot) []Snapshot {
	out := append([]Snapshot(nil), snaps...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ObservedAt.Before(out[j].ObservedAt)
	})
	for i := range out {
		out[i].SeqNo = i + 1
	}
	return out
}

// RecomputeDigests replays the rolling chain from the seed, treating
// consecutive snapshot bodies as cumulative content: the delta at each step is
// the suffix the body gained over its predecessor.
//
// When a body shrank the whole current body is fed to the chain instead, so
// the replay stays deterministic, and the step is flagged. That fallback keeps
// the chain advancing; it makes no correctness claim about the digest.
func RecomputeDigests(snaps []Snapshot) []ComputedDigest {
	chain := NewChain()
	var prev []byte
	out := make([]ComputedDigest, 0, len(snaps))
	for _, s := range snaps {
		delta := s.Body
		shrank := len(s.Body) < len(prev)
		if !shrank {
			delta = s.Body[len(prev):]
		}
		d := chain.Append(delta)
		out = append(out, ComputedDigest{
			SeqNo:     s.SeqNo,
			VersionID: s.VersionID,
			Size:      s.Size,
			Digest:    d,
			Shrank:    shrank,
		})
		prev = s.Body
	}
	return out
}
