package pulse

import (
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCounter_DrainResets verifies sequential counting and reset.
func TestCounter_DrainResets(t *testing.T) {
	t.Parallel()

	var c Counter

	require.Zero(t, c.DrainAndReset())

	for range 15 {
		c.OnEdge()
	}

	require.EqualValues(t, 15, c.Peek())
	require.EqualValues(t, 15, c.DrainAndReset())
	require.Zero(t, c.DrainAndReset())
}

// TestCounter_Wraps checks the counter wraps at its natural modulus.
func TestCounter_Wraps(t *testing.T) {
	t.Parallel()

	var c Counter

	c.count.Store(math.MaxUint32)
	c.OnEdge()
	require.Zero(t, c.DrainAndReset())
}

// TestCounter_RandomInterleaving drains concurrently with producers and checks
// that every edge is observed exactly once.
func TestCounter_RandomInterleaving(t *testing.T) {
	t.Parallel()

	const (
		producers = 4
		perWorker = 20000
	)

	var (
		c       Counter
		drained atomic.Uint64
		wg      sync.WaitGroup
		done    = make(chan struct{})
	)

	for p := range producers {
		wg.Add(1)

		go func(seed uint64) {
			defer wg.Done()

			rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

			for sent := 0; sent < perWorker; {
				burst := min(rng.IntN(32)+1, perWorker-sent)
				for range burst {
					c.OnEdge()
				}

				sent += burst
			}
		}(uint64(p) + 1)
	}

	drainerDone := make(chan struct{})

	go func() {
		defer close(drainerDone)

		for {
			select {
			case <-done:
				return
			default:
				drained.Add(uint64(c.DrainAndReset()))
			}
		}
	}()

	wg.Wait()
	close(done)
	<-drainerDone

	drained.Add(uint64(c.DrainAndReset()))
	require.EqualValues(t, producers*perWorker, drained.Load())
}

// TestCounter_SequencedDrains checks per-window counts for a random script of edges and drains.
func TestCounter_SequencedDrains(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 11))

	var c Counter

	for range 500 {
		edges := rng.IntN(100)
		for range edges {
			c.OnEdge()
		}

		require.EqualValues(t, edges, c.DrainAndReset())
	}
}
