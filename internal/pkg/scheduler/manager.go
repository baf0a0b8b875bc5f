package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/donote/donote/internal/pkg/env"
	"github.com/donote/donote/internal/pkg/settlement"
)

const defaultRunTimeout = 5 * time.Minute

// Runner runs one settlement batch.
type Runner interface {
	Run(ctx context.Context) (*settlement.Result, error)
}

// Config controls the in-process settlement schedule
type Config struct {
	Enabled  bool
	Interval time.Duration
}

// ConfigFromEnv reads SETTLEMENT_SCHEDULE_ENABLED and
// SETTLEMENT_SCHEDULE_INTERVAL_MINUTES (default one day).
func ConfigFromEnv() Config {
	minutes := env.GetEnvInt("SETTLEMENT_SCHEDULE_INTERVAL_MINUTES", 1440)
	if minutes <= 0 {
		minutes = 1440
	}
	return Config{
		Enabled:  env.GetEnvBool("SETTLEMENT_SCHEDULE_ENABLED", false),
		Interval: time.Duration(minutes) * time.Minute,
	}
}

// Manager triggers settlement runs on a ticker
type Manager struct {
	runner           Runner
	interval         time.Duration
	runTimeout       time.Duration
	settlementTicker *time.Ticker
	stopCh           chan struct{}
	wg               sync.WaitGroup
	mu               sync.Mutex
	running          bool
}

// NewManager returns a stopped manager.
func NewManager(runner Runner, interval time.Duration) *Manager {
	return &Manager{
		runner:     runner,
		interval:   interval,
		runTimeout: defaultRunTimeout,
	}
}

// Start starts the settlement worker. Calling Start on a running manager is
// a no-op.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true

	m.settlementTicker = time.NewTicker(m.interval)
	m.wg.Add(1)
	go m.settlementWorker(m.stopCh, m.settlementTicker)

	log.Infof("[Scheduler] Started settlement worker (interval: %s)", m.interval)
}

// Stop stops the worker and waits for an in-flight run to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}

	log.Info("[Scheduler] Stopping settlement worker...")
	m.settlementTicker.Stop()
	close(m.stopCh)
	m.stopCh = nil
	m.running = false
	m.mu.Unlock()

	m.wg.Wait()
	log.Info("[Scheduler] Stopped successfully")
}

// IsRunning returns whether the worker is running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Manager) settlementWorker(stopCh <-chan struct{}, ticker *time.Ticker) {
	defer m.wg.Done()

	for {
		select {
		case <-stopCh:
			log.Info("[Scheduler] Settlement worker stopping")
			return
		case <-ticker.C:
			m.RunOnce(context.Background())
		}
	}
}

// RunOnce runs a single settlement batch with the run timeout. A run held by
// another instance is skipped.
func (m *Manager) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, m.runTimeout)
	defer cancel()

	res, err := m.runner.Run(ctx)
	switch {
	case errors.Is(err, settlement.ErrRunInProgress):
		log.Info("[Scheduler] Settlement already running elsewhere, skipping")
	case err != nil:
		log.Errorf("[Scheduler] Settlement run failed: %v", err)
	default:
		log.Infof("[Scheduler] Settlement batch %s: processed=%d total=%d errors=%d",
			res.BatchID, res.Processed, res.TotalSettledAmount, len(res.Errors))
	}
}
