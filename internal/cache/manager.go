package cache

import (
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/observability"
	"github.com/jonboulle/clockwork"
)

// sweeper is the type-erased view of a Store the manager sweeps.
type sweeper interface {
	Name() string
	Sweep() int
}

// Options configures a Manager.
type Options struct {
	Enabled         bool
	CleanupInterval time.Duration
	Clock           clockwork.Clock
	Logger          *slog.Logger
	Metrics         *observability.Metrics
}

// Manager owns the stores of one process and their periodic sweep.
type Manager struct {
	enabled  bool
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu     sync.Mutex
	stores []sweeper
	stop   chan struct{}
	done   chan struct{}
}

// NewManager creates a manager. The sweep does not start until Open.
func NewManager(opts Options) *Manager {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	m := &Manager{
		enabled:  opts.Enabled,
		interval: opts.CleanupInterval,
		clock:    opts.Clock,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}
	if m.metrics != nil {
		if m.enabled {
			m.metrics.CacheEnabled.Set(1)
		} else {
			m.metrics.CacheEnabled.Set(0)
		}
	}
	return m
}

// Enabled reports whether stores created from this manager cache anything.
func (m *Manager) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Manager) register(s sweeper) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stores = append(m.stores, s)
}

// Open starts the periodic sweep. It is a no-op when the manager is
// disabled, has no interval, or is already open.
func (m *Manager) Open() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled || m.interval <= 0 || m.stop != nil {
		return
	}
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	ticker := m.clock.NewTicker(m.interval)
	go m.run(ticker, m.stop, m.done)
	m.logger.Info("cache janitor started", "interval", m.interval)
}

// Close stops the sweep and waits for it to exit. Safe to call more than once.
func (m *Manager) Close() {
	m.mu.Lock()
	stop, done := m.stop, m.done
	m.stop, m.done = nil, nil
	m.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	m.logger.Info("cache janitor stopped")
}

func (m *Manager) run(ticker clockwork.Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			m.SweepAll()
		}
	}
}

// SweepAll removes expired entries from every registered store.
func (m *Manager) SweepAll() int {
	m.mu.Lock()
	stores := make([]sweeper, len(m.stores))
	copy(stores, m.stores)
	m.mu.Unlock()

	total := 0
	for _, s := range stores {
		if n := s.Sweep(); n > 0 {
			m.logger.Debug("cache sweep", "store", s.Name(), "removed", n)
			total += n
		}
	}
	return total
}
