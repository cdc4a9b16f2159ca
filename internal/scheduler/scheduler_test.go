package scheduler

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-trigger/internal/platform"
)

// recorder collects task executions in order.
type recorder struct {
	calls []string
	at    []platform.Millis
}

func (r *recorder) task(name string) TaskFunc {
	return func(_ context.Context, now platform.Millis) {
		r.calls = append(r.calls, name)
		r.at = append(r.at, now)
	}
}

// TestRegister_Validation rejects zero periods and nil bodies.
func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	s := New()
	require.ErrorIs(t, s.Register("zero", 0, func(context.Context, platform.Millis) {}), errZeroPeriod)
	require.ErrorIs(t, s.Register("nil", 10, nil), errNilTask)
	require.Zero(t, s.Len())
}

// TestTick_OrderAndIdempotence checks priority order and that repeated ticks at
// the same reading do not rerun tasks.
func TestTick_OrderAndIdempotence(t *testing.T) {
	t.Parallel()

	var (
		r   recorder
		s   = New()
		ctx = context.Background()
	)

	require.NoError(t, s.Register("voice", 1000, r.task("voice")))
	require.NoError(t, s.Register("pulse", 1000, r.task("pulse")))
	s.Reset(0)

	require.Empty(t, s.Tick(ctx, 999))
	require.Equal(t, []string{"voice", "pulse"}, s.Tick(ctx, 1000))

	for range 10 {
		require.Empty(t, s.Tick(ctx, 1000))
	}

	require.Equal(t, []string{"voice", "pulse"}, r.calls)
}

// TestTick_NoCatchUp verifies that skipped periods are not executed late.
func TestTick_NoCatchUp(t *testing.T) {
	t.Parallel()

	var (
		r   recorder
		s   = New()
		ctx = context.Background()
	)

	require.NoError(t, s.Register("pulse", 1000, r.task("pulse")))
	s.Reset(0)

	// The loop stalls for five periods.
	require.Equal(t, []string{"pulse"}, s.Tick(ctx, 5300))
	require.Empty(t, s.Tick(ctx, 5301))
	require.Empty(t, s.Tick(ctx, 6299))
	require.Equal(t, []string{"pulse"}, s.Tick(ctx, 6300))

	require.Equal(t, []platform.Millis{5300, 6300}, r.at)
}

// TestTick_IndependentPeriods checks tasks with different intervals.
func TestTick_IndependentPeriods(t *testing.T) {
	t.Parallel()

	var (
		r   recorder
		s   = New()
		ctx = context.Background()
	)

	require.NoError(t, s.Register("fast", 100, r.task("fast")))
	require.NoError(t, s.Register("slow", 250, r.task("slow")))
	s.Reset(0)

	for now := platform.Millis(0); now <= 500; now += 50 {
		s.Tick(ctx, now)
	}

	require.Equal(t, []string{"fast", "fast", "slow", "fast", "fast", "fast", "slow"}, r.calls)
}

// TestTick_Wraparound checks due detection across a clock overflow.
func TestTick_Wraparound(t *testing.T) {
	t.Parallel()

	var (
		r   recorder
		s   = New()
		ctx = context.Background()
	)

	require.NoError(t, s.Register("pulse", 1000, r.task("pulse")))
	s.Reset(math.MaxUint32 - 200)

	require.Empty(t, s.Tick(ctx, 500))
	require.Equal(t, []string{"pulse"}, s.Tick(ctx, 799))
}
