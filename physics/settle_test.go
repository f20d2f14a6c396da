package physics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettle_Converges(t *testing.T) {
	sched := NewManualScheduler()
	sim := pair(nil, sched)

	converged, err := Settle(context.Background(), sim, sched, 1000)
	require.NoError(t, err)
	assert.True(t, converged)
	assert.False(t, sim.IsRunning())
	assert.Equal(t, 0, sched.Pending())
}

func TestSettle_StopsAtTickCap(t *testing.T) {
	sched := NewManualScheduler()
	sim := pair(nil, sched)

	converged, err := Settle(context.Background(), sim, sched, 5)
	require.NoError(t, err)
	assert.False(t, converged)
	assert.False(t, sim.IsRunning())
	assert.Equal(t, uint64(5), sim.Ticks())
	assert.Equal(t, 0, sched.Pending())
}

func TestSettle_Cancelled(t *testing.T) {
	sched := NewManualScheduler()
	sim := pair(nil, sched)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	converged, err := Settle(ctx, sim, sched, 1000)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, converged)
	assert.False(t, sim.IsRunning())
	assert.Equal(t, uint64(1), sim.Ticks())
}
