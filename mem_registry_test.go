package uavledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemRegistryLifecycle(t *testing.T) {
	reg := NewMemRegistry()
	ctx := context.Background()

	exists, err := reg.FlightExists(ctx, "flight-001")
	require.NoError(t, err)
	assert.False(t, exists)

	out, err := reg.RegisterFlight(ctx, "flight-001")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), out.Status)
	assert.NotEmpty(t, out.TxHash)

	_, err = reg.RegisterFlight(ctx, "flight-001")
	assert.ErrorIs(t, err, ErrFlightExists)

	exists, err = reg.FlightExists(ctx, "flight-001")
	require.NoError(t, err)
	assert.True(t, exists)

	d1 := Update(Seed(), []byte("one"))
	d2 := Update(d1, []byte("two"))
	_, err = reg.AddCheckpoint(ctx, "flight-001", 1, d1)
	require.NoError(t, err)
	_, err = reg.AddCheckpoint(ctx, "flight-001", 2, d2)
	require.NoError(t, err)

	count, err := reg.CheckpointCount(ctx, "flight-001")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	cp, err := reg.CheckpointAt(ctx, "flight-001", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, cp.SeqNo)
	assert.Equal(t, uint64(1), cp.VersionID)
	assert.Equal(t, d1, cp.Digest)
	assert.NotZero(t, cp.Timestamp)

	cp, err = reg.CheckpointAt(ctx, "flight-001", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, cp.SeqNo)
	assert.Equal(t, d2, cp.Digest)

	closed, err := reg.IsFlightClosed(ctx, "flight-001")
	require.NoError(t, err)
	assert.False(t, closed)

	_, err = reg.CloseFlight(ctx, "flight-001")
	require.NoError(t, err)
	closed, err = reg.IsFlightClosed(ctx, "flight-001")
	require.NoError(t, err)
	assert.True(t, closed)

	_, err = reg.AddCheckpoint(ctx, "flight-001", 3, d2)
	assert.ErrorIs(t, err, ErrFlightClosed)
	_, err = reg.CloseFlight(ctx, "flight-001")
	assert.ErrorIs(t, err, ErrFlightClosed)
}

func TestMemRegistryUnknownFlight(t *testing.T) {
	reg := NewMemRegistry()
	ctx := context.Background()

	d := Update(Seed(), []byte("x"))
	_, err := reg.AddCheckpoint(ctx, "ghost", 1, d)
	assert.ErrorIs(t, err, ErrFlightNotRegistered)
	_, err = reg.CloseFlight(ctx, "ghost")
	assert.ErrorIs(t, err, ErrFlightNotRegistered)
	_, err = reg.IsFlightClosed(ctx, "ghost")
	assert.ErrorIs(t, err, ErrFlightNotRegistered)

	// the contract reports an empty checkpoint sequence for unknown keys
	count, err := reg.CheckpointCount(ctx, "ghost")
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = reg.CheckpointAt(ctx, "ghost", 0)
	assert.Error(t, err)
}
