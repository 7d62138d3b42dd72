package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Pinger is the store being watched.
type Pinger interface {
	Ping(ctx context.Context) error
	Name() string
}

// StatsFunc reports the collection size and the time of the last successful save.
type StatsFunc func() (tasks int, lastSave time.Time)

// Monitor periodically pings the active store and caches the result so the
// health endpoint never touches the disk itself.
type Monitor struct {
	store Pinger
	stats StatsFunc

	status   Status
	mu       sync.RWMutex
	checkMu  sync.Mutex
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
	done     chan struct{}
	logger   *zap.Logger
	now      func() time.Time
}

// New returns a monitor pinging the store every interval, 10s when interval is not positive.
func New(store Pinger, stats StatsFunc, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		store:    store,
		stats:    stats,
		interval: interval,
		timeout:  3 * time.Second,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger,
		now:      time.Now,
	}
}

// Start runs an immediate check and then one per interval until Stop.
func (m *Monitor) Start() {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	go m.loop()
}

// Stop ends the loop and waits for it to exit. Safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
	if m.started.Load() {
		<-m.done
	}
}

// GetStatus returns the cached result of the last check.
func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Check pings the store now and returns the fresh status. Checks run one at a time so
// each store transition is logged exactly once.
func (m *Monitor) Check(ctx context.Context) Status {
	m.checkMu.Lock()
	defer m.checkMu.Unlock()

	status := Status{LastCheck: m.now()}

	if m.store == nil {
		status.StoreError = "no store configured"
	} else {
		status.Driver = m.store.Name()
		pctx, cancel := context.WithTimeout(ctx, m.timeout)
		err := m.store.Ping(pctx)
		cancel()
		if err != nil {
			status.StoreError = err.Error()
		} else {
			status.StoreOK = true
		}
	}

	if m.stats != nil {
		status.Tasks, status.LastSave = m.stats()
	}

	m.mu.Lock()
	prev := m.status
	m.status = status
	m.mu.Unlock()

	if prev.Checked() && prev.StoreOK != status.StoreOK {
		if status.StoreOK {
			m.logger.Info("store is reachable again", zap.String("driver", status.Driver))
		} else {
			m.logger.Warn("store ping failed", zap.String("driver", status.Driver), zap.String("error", status.StoreError))
		}
	}
	return status
}

func (m *Monitor) loop() {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Check(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Check(context.Background())
		case <-m.stopCh:
			return
		}
	}
}
