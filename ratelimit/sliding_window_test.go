package ratelimit

import (
	"chat-core/observability"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func at(seconds int) time.Time { return t0.Add(time.Duration(seconds) * time.Second) }

func TestSlidingWindow_FiveRequestsPerMinute(t *testing.T) {
	req := require.New(t)
	limiter := NewSlidingWindow(logs.GetLoggerFromLevel(slog.LevelDebug), 5, 60*time.Second)

	// When six attempts arrive within the first seconds
	var decisions []bool
	for s := 0; s <= 5; s++ {
		decisions = append(decisions, limiter.TryAdmit("ip-1", at(s)))
	}

	// Then only the first five are admitted
	req.Equal([]bool{true, true, true, true, true, false}, decisions)

	// And the oldest admission has aged out at t=61
	req.True(limiter.TryAdmit("ip-1", at(61)))
}

func TestSlidingWindow_RejectionDoesNotExtendPenalty(t *testing.T) {
	req := require.New(t)
	limiter := NewSlidingWindow(slog.Default(), 2, 10*time.Second)

	// Given a saturated key hammered with rejected attempts
	req.True(limiter.TryAdmit("k", at(0)))
	req.True(limiter.TryAdmit("k", at(1)))
	for s := 2; s < 11; s++ {
		req.False(limiter.TryAdmit("k", at(s)))
	}

	// Then the slots free up as the admitted entries age out
	req.True(limiter.TryAdmit("k", at(11)))
	req.False(limiter.TryAdmit("k", at(11)))
	req.True(limiter.TryAdmit("k", at(12)))
}

func TestSlidingWindow_EntryExactlyWindowOldStillCounts(t *testing.T) {
	req := require.New(t)
	limiter := NewSlidingWindow(slog.Default(), 1, 10*time.Second)

	req.True(limiter.TryAdmit("k", at(0)))
	req.False(limiter.TryAdmit("k", at(10)))
	req.True(limiter.TryAdmit("k", at(10).Add(time.Nanosecond)))
}

func TestSlidingWindow_OutOfOrderAdmissionsAgeOut(t *testing.T) {
	req := require.New(t)
	limiter := NewSlidingWindow(slog.Default(), 2, 10*time.Second)

	// Given a caller that read the clock earlier but took the lock later
	req.True(limiter.TryAdmit("k", at(10)))
	req.True(limiter.TryAdmit("k", at(0)))

	// Then the older admission leaves the window first
	req.True(limiter.TryAdmit("k", at(10).Add(500*time.Millisecond)))
	req.False(limiter.TryAdmit("k", at(11)))
}

func TestSlidingWindow_KeysAreIndependent(t *testing.T) {
	req := require.New(t)
	limiter := NewSlidingWindow(slog.Default(), 1, time.Minute)

	req.True(limiter.TryAdmit("alice", at(0)))
	req.False(limiter.TryAdmit("alice", at(1)))
	req.True(limiter.TryAdmit("bob", at(1)))
}

func TestSlidingWindow_ConcurrentBurstNeverExceedsLimit(t *testing.T) {
	req := require.New(t)
	const limit = 7
	limiter := NewSlidingWindow(slog.Default(), limit, time.Minute)

	// Given 200 goroutines racing on the same key while a sweeper runs
	var admitted atomic.Int32
	var wg sync.WaitGroup
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				limiter.Sweep(at(0))
			}
		}
	}()
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.TryAdmit("hot", at(0)) {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()
	close(stop)

	// Then exactly limit attempts went through
	req.Equal(int32(limit), admitted.Load())
}

func TestSlidingWindow_SweepDropsIdleKeys(t *testing.T) {
	req := require.New(t)
	limiter := NewSlidingWindow(slog.Default(), 3, time.Minute)
	for i := 0; i < 10; i++ {
		limiter.TryAdmit(fmt.Sprintf("ip-%d", i), at(i))
	}
	req.Equal(10, limiter.Len())

	// When sweeping after the first five went idle
	removed := limiter.Sweep(at(65))

	// Then only the active keys remain
	req.Equal(5, removed)
	req.Equal(5, limiter.Len())

	// And a swept key starts from an empty window
	req.True(limiter.TryAdmit("ip-0", at(66)))
}

func TestSlidingWindow_Metrics(t *testing.T) {
	req := require.New(t)
	m := observability.NewMetrics()
	limiter := NewSlidingWindow(slog.Default(), 1, time.Minute).WithMetrics(m)

	limiter.TryAdmit("k", at(0))
	limiter.TryAdmit("k", at(1))

	req.Equal(1.0, testutil.ToFloat64(m.AdmissionsTotal.WithLabelValues("admitted")))
	req.Equal(1.0, testutil.ToFloat64(m.AdmissionsTotal.WithLabelValues("rejected")))
}
