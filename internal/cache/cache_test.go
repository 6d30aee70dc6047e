package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestManager(clock clockwork.Clock) *Manager {
	return NewManager(Options{Enabled: true, CleanupInterval: time.Minute, Clock: clock})
}

func TestStore_GetSet(t *testing.T) {
	m := newTestManager(clockwork.NewFakeClock())
	s := NewStore[[]float64](m, "weather", time.Hour)

	_, ok := s.Get("k")
	assert.False(t, ok)

	s.Set("k", []float64{1, 2}, 0)
	got, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2}, got)
}

func TestStore_ExpiredEntryIsMissAndNotResurrected(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewStore[string](newTestManager(clock), "weather", time.Hour)

	s.Set("k", "v", 100*time.Millisecond)
	clock.Advance(150 * time.Millisecond)

	_, ok := s.Get("k")
	assert.False(t, ok, "expired entries are absent")
	assert.Zero(t, s.Len(), "expired entries are removed on read")

	_, ok = s.Get("k")
	assert.False(t, ok, "a second read does not resurrect the value")
}

func TestStore_ExpiresExactlyAtDeadline(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewStore[int](newTestManager(clock), "events", time.Hour)

	s.Set("k", 1, time.Second)
	clock.Advance(999 * time.Millisecond)
	_, ok := s.Get("k")
	assert.True(t, ok)

	clock.Advance(time.Millisecond)
	_, ok = s.Get("k")
	assert.False(t, ok)
}

func TestStore_DefaultTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewStore[int](newTestManager(clock), "history", 10*time.Second)

	s.Set("k", 1, 0)
	clock.Advance(9 * time.Second)
	_, ok := s.Get("k")
	assert.True(t, ok)

	clock.Advance(2 * time.Second)
	_, ok = s.Get("k")
	assert.False(t, ok)
}

func TestStore_KeyspacesAreIsolated(t *testing.T) {
	m := newTestManager(clockwork.NewFakeClock())
	weather := NewStore[string](m, "weather", time.Hour)
	events := NewStore[string](m, "events", time.Hour)

	weather.Set("shared-key", "weather-data", 0)

	_, ok := events.Get("shared-key")
	assert.False(t, ok)
	got, ok := weather.Get("shared-key")
	require.True(t, ok)
	assert.Equal(t, "weather-data", got)
}

func TestStore_NilIsDisabledCache(t *testing.T) {
	var s *Store[string]

	s.Set("k", "v", time.Minute)
	_, ok := s.Get("k")
	assert.False(t, ok)
	assert.Zero(t, s.Len())
	assert.Zero(t, s.Sweep())
	s.Delete("k")
	s.Flush()
}

func TestNewStore_DisabledManager(t *testing.T) {
	assert.Nil(t, NewStore[int](nil, "weather", time.Minute))

	m := NewManager(Options{Enabled: false})
	assert.Nil(t, NewStore[int](m, "weather", time.Minute))
	assert.False(t, m.Enabled())
}

func TestStore_Sweep(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := newTestManager(clock)
	short := NewStore[int](m, "short", time.Second)
	long := NewStore[int](m, "long", time.Hour)

	short.Set("a", 1, 0)
	short.Set("b", 2, 0)
	long.Set("c", 3, 0)
	clock.Advance(2 * time.Second)

	assert.Equal(t, 2, m.SweepAll())
	assert.Zero(t, short.Len())
	assert.Equal(t, 1, long.Len())
}

func TestManager_JanitorSweepsOnInterval(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := newTestManager(clock)
	s := NewStore[int](m, "weather", time.Second)
	s.Set("k", 1, 0)

	m.Open()
	defer m.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	clock.Advance(time.Minute)

	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestManager_OpenCloseIdempotent(t *testing.T) {
	m := newTestManager(clockwork.NewFakeClock())

	m.Open()
	m.Open()
	m.Close()
	m.Close()

	disabled := NewManager(Options{Enabled: false, CleanupInterval: time.Minute})
	disabled.Open()
	disabled.Close()
}

func TestStore_Metrics(t *testing.T) {
	clock := clockwork.NewFakeClock()
	metrics := observability.NewMetricsForTesting()
	m := NewManager(Options{Enabled: true, Clock: clock, Metrics: metrics})
	s := NewStore[int](m, "weather", time.Second)

	s.Get("k")
	s.Set("k", 1, 0)
	s.Get("k")
	clock.Advance(time.Second)
	s.Get("k")

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("weather", "miss")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("weather", "hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("weather", "expired")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CacheEnabled), 0)
}

func TestStore_ConcurrentWritersLastWriteWins(t *testing.T) {
	s := NewStore[int](newTestManager(clockwork.NewFakeClock()), "weather", time.Hour)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			s.Set("k", v, 0)
			s.Get("k")
		}(i)
	}
	wg.Wait()

	_, ok := s.Get("k")
	assert.True(t, ok)
}
