package uavledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// DigestSize is the size in bytes of a chain digest (SHA-256 output size).
const DigestSize = 32

// Digest is the fixed-width rolling chain digest. The zero value is the chain
// seed for every flight.
type Digest [DigestSize]byte

// ParseDigest parses the canonical hex form of a digest: 64 hex characters,
// either case, with an optional 0x prefix. Anything else fails with
// ErrDigestFormat.
func ParseDigest(s string) (Digest, error) {
	h := strings.TrimSpace(s)
	if len(h) >= 2 && (h[0:2] == "0x" || h[0:2] == "0X") {
		h = h[2:]
	}
	if len(h) != DigestSize*2 {
		return Digest{}, fmt.Errorf("%w: want %d hex chars, got %d", ErrDigestFormat, DigestSize*2, len(h))
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return Digest{}, fmt.Errorf("%w: %v", ErrDigestFormat, err)
	}
	var d Digest
	copy(d[:], b)
	return d, nil
}

// Hex returns the canonical 0x-prefixed lowercase hex form.
func (d Digest) Hex() string { return "0x" + hex.EncodeToString(d[:]) }

func (d Digest) String() string { return d.Hex() }

// IsZero reports whether the digest is the all-zero seed value.
func (d Digest) IsZero() bool { return d == Digest{} }

// MarshalJSON encodes the digest in its canonical hex form.
func (d Digest) MarshalJSON() ([]byte, error) { return json.Marshal(d.Hex()) }

// UnmarshalJSON accepts any form ParseDigest accepts.
func (d *Digest) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDigest(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Seed returns the zero-filled digest every flight's chain starts from.
func Seed() Digest { return Digest{} }

// Update computes the next chain digest as SHA-256(prev || delta). delta must
// be exactly the bytes newly appended since the previous snapshot, never the
// full cumulative body.
func Update(prev Digest, delta []byte) Digest {
	h := sha256.New()
	h.Write(prev[:])
	h.Write(delta)
	var d Digest
	h.Sum(d[:0])
	return d
}

// ChainState is the rolling accumulator threaded through one flight's
// snapshots. It is never shared across flights.
type ChainState struct {
	Digest Digest
	Length int // cumulative bytes hashed so far
}

// NewChain returns a chain at the seed state.
func NewChain() *ChainState {
	return &ChainState{Digest: Seed()}
}

// Append folds delta into the chain and returns the new tip digest.
func (c *ChainState) Append(delta []byte) Digest {
	c.Digest = Update(c.Digest, delta)
	c.Length += len(delta)
	return c.Digest
}
