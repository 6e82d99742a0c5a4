package uavledger

import (
	"crypto/sha256"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDigest(t *testing.T) {
	hexDigits := strings.Repeat("ab", 32)

	t.Run("plain hex", func(t *testing.T) {
		d, err := ParseDigest(hexDigits)
		require.NoError(t, err)
		assert.Equal(t, "0x"+hexDigits, d.Hex())
	})

	t.Run("0x prefix", func(t *testing.T) {
		d, err := ParseDigest("0x" + hexDigits)
		require.NoError(t, err)
		assert.Equal(t, "0x"+hexDigits, d.Hex())
	})

	t.Run("uppercase normalized", func(t *testing.T) {
		d, err := ParseDigest("0X" + strings.ToUpper(hexDigits))
		require.NoError(t, err)
		assert.Equal(t, "0x"+hexDigits, d.Hex())
	})

	t.Run("surrounding whitespace", func(t *testing.T) {
		_, err := ParseDigest("  " + hexDigits + "\n")
		require.NoError(t, err)
	})

	t.Run("rejected inputs", func(t *testing.T) {
		for _, bad := range []string{
			"",
			"0x",
			hexDigits[:62],         // too short, no padding
			hexDigits + "ab",       // too long, no truncation
			strings.Repeat("zz", 32),
			"0x" + hexDigits[:63] + "g",
		} {
			_, err := ParseDigest(bad)
			assert.ErrorIs(t, err, ErrDigestFormat, "input %q", bad)
		}
	})
}

func TestDigestJSON(t *testing.T) {
	d := Update(Seed(), []byte("payload"))

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"`+d.Hex()+`"`, string(data))

	var back Digest
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d, back)

	var bad Digest
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &bad))
}

func TestSeedIsZero(t *testing.T) {
	assert.True(t, Seed().IsZero())
	assert.False(t, Update(Seed(), []byte("x")).IsZero())
}

func TestUpdateMatchesConcatenatedHash(t *testing.T) {
	prev := Update(Seed(), []byte("first"))
	delta := []byte("second")

	want := sha256.Sum256(append(append([]byte{}, prev[:]...), delta...))
	assert.Equal(t, Digest(want), Update(prev, delta))
}

func TestChainDeterminism(t *testing.T) {
	deltas := [][]byte{[]byte("a\n"), []byte("bb\n"), []byte("ccc\n"), {0x00, 0xff}}

	run := func() Digest {
		c := NewChain()
		for _, d := range deltas {
			c.Append(d)
		}
		return c.Digest
	}
	assert.Equal(t, run(), run())

	c := NewChain()
	total := 0
	for _, d := range deltas {
		c.Append(d)
		total += len(d)
	}
	assert.Equal(t, total, c.Length)
}

func TestChainSensitivity(t *testing.T) {
	deltas := [][]byte{[]byte("alpha"), []byte("beta"), []byte("gamma"), []byte("delta")}

	chainOf := func(ds [][]byte) []Digest {
		c := NewChain()
		out := make([]Digest, 0, len(ds))
		for _, d := range ds {
			out = append(out, c.Append(d))
		}
		return out
	}

	base := chainOf(deltas)

	// flip one byte in the second delta: digests from that step onward
	// must all change
	mutated := [][]byte{deltas[0], []byte("bEta"), deltas[2], deltas[3]}
	got := chainOf(mutated)

	assert.Equal(t, base[0], got[0])
	for i := 1; i < len(base); i++ {
		assert.NotEqual(t, base[i], got[i], "digest at step %d should differ", i+1)
	}
}
