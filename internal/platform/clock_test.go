package platform

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestMillisSince_Wraparound checks that elapsed time survives counter overflow.
func TestMillisSince_Wraparound(t *testing.T) {
	t.Parallel()

	require.EqualValues(t, 1000, Millis(2000).Since(1000))
	require.EqualValues(t, 1000, Millis(499).Since(Millis(math.MaxUint32-500)))
	require.EqualValues(t, 0, Millis(7).Since(7))
}

// TestDurationToMillis covers negative, regular and saturated values.
func TestDurationToMillis(t *testing.T) {
	t.Parallel()

	require.EqualValues(t, 0, DurationToMillis(-time.Second))
	require.EqualValues(t, 1500, DurationToMillis(1500*time.Millisecond))
	require.EqualValues(t, uint32(math.MaxUint32), DurationToMillis(100*24*time.Hour))
}

// TestManualClock verifies Set and wrapping Advance.
func TestManualClock(t *testing.T) {
	t.Parallel()

	c := NewManualClock(math.MaxUint32)
	require.EqualValues(t, 9, c.Advance(10))

	c.Set(42)
	require.EqualValues(t, 42, c.Now())
}

// TestSystemClock_Monotonic checks the system clock never goes backwards.
func TestSystemClock_Monotonic(t *testing.T) {
	t.Parallel()

	c := NewSystemClock()
	first := c.Now()
	time.Sleep(2 * time.Millisecond)
	require.GreaterOrEqual(t, c.Now().Since(first), uint32(1))
}

// TestManualEdgeSource checks registration rules and delivery.
func TestManualEdgeSource(t *testing.T) {
	t.Parallel()

	var (
		src   ManualEdgeSource
		count int
	)

	src.Fire(3)
	require.Zero(t, count)

	require.NoError(t, src.OnFallingEdge(context.Background(), func() { count++ }))
	require.ErrorIs(t, src.OnFallingEdge(context.Background(), func() {}), ErrHandlerRegistered)

	src.Fire(3)
	require.Equal(t, 3, count)

	require.NoError(t, src.Close())
	src.Fire(1)
	require.Equal(t, 3, count)
}
