package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	appsync "github.com/orderwatch/backend/internal/application/sync"
	"github.com/orderwatch/backend/internal/domain/order"
)

// ---------------------------------------------------------------------------
// CycleRunner Interface
// ---------------------------------------------------------------------------

// CycleRunner executes one sync cycle against the previous snapshot
type CycleRunner interface {
	RunCycle(ctx context.Context, previous *order.StatusSnapshot) (*appsync.CycleResult, error)
}

// ---------------------------------------------------------------------------
// PollerConfig
// ---------------------------------------------------------------------------

// PollerConfig holds configuration for the polling scheduler
type PollerConfig struct {
	// PollInterval is the time between scheduled cycles
	PollInterval time.Duration
	// CycleTimeout bounds one full cycle
	CycleTimeout time.Duration
	// Cooldown is the pause after a panicked cycle before the next tick
	Cooldown time.Duration
	// MaxHistory caps the in-memory cycle history
	MaxHistory int
}

// DefaultPollerConfig returns default configuration
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		PollInterval: 5 * time.Minute,
		CycleTimeout: 10 * time.Minute,
		Cooldown:     30 * time.Second,
		MaxHistory:   50,
	}
}

// Validate validates the configuration
func (c *PollerConfig) Validate() error {
	if c.PollInterval <= 0 {
		return ErrInvalidConfig
	}
	if c.CycleTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.Cooldown < 0 {
		return ErrInvalidConfig
	}
	if c.MaxHistory <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ---------------------------------------------------------------------------
// Status & History Types
// ---------------------------------------------------------------------------

// PollerStatus is a point-in-time copy of the poller's observable state.
// The snapshot inside is a clone; callers never share memory with the
// worker goroutine.
type PollerStatus struct {
	Running      bool
	LastCheckAt  time.Time
	LastError    string
	LastSnapshot *order.StatusSnapshot
}

// CycleRecord summarizes one finished cycle for the history ring
type CycleRecord struct {
	CycleID       string
	StartedAt     time.Time
	FinishedAt    time.Time
	WindowsFailed int
	OrdersFetched int
	ChangeEvents  int
	Error         string
}

// ---------------------------------------------------------------------------
// Poller
// ---------------------------------------------------------------------------

// Poller runs sync cycles on a fixed interval. A single worker goroutine
// owns the previous snapshot, so cycles are strictly serialized: a forced
// check can never race a scheduled one. Forced checks are signalled through
// a buffered channel and coalesce while a cycle is in flight.
type Poller struct {
	config PollerConfig
	runner CycleRunner
	logger *zap.Logger

	mu         sync.Mutex
	isRunning  bool
	cancel     context.CancelFunc
	done       chan struct{}
	forceCheck chan struct{}

	// Observable state published by the worker, read by Status callers
	stateMu      sync.RWMutex
	lastCheckAt  time.Time
	lastError    string
	lastSnapshot *order.StatusSnapshot
	history      []CycleRecord
}

// NewPoller creates a new polling scheduler
func NewPoller(config PollerConfig, runner CycleRunner, logger *zap.Logger) (*Poller, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Poller{
		config:     config,
		runner:     runner,
		logger:     logger,
		forceCheck: make(chan struct{}, 1),
		history:    make([]CycleRecord, 0, config.MaxHistory),
	}, nil
}

// Start starts the poller. Starting a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning {
		return nil
	}

	// The derived context, the done channel and the worker goroutine all
	// belong to one generation; they are created under the mutex so a
	// concurrent Stop always cancels and joins its own generation.
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.isRunning = true
	p.cancel = cancel
	p.done = done

	go p.worker(ctx, done)

	p.logger.Info("Polling scheduler started",
		zap.Duration("poll_interval", p.config.PollInterval),
		zap.Duration("cycle_timeout", p.config.CycleTimeout),
	)
	return nil
}

// Stop gracefully stops the poller, interrupting any in-flight cycle.
// The wait is bounded by the given context. Stopping a stopped poller is
// a no-op.
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = false
	cancel := p.cancel
	done := p.done
	p.mu.Unlock()

	cancel()

	select {
	case <-done:
		p.logger.Info("Polling scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		p.logger.Warn("Polling scheduler stop timed out")
		return ctx.Err()
	}
}

// ForceCheck requests an immediate cycle. The signal is buffered: if a
// cycle is already running or a check is already pending, the request
// coalesces into the next cycle instead of queuing another one.
func (p *Poller) ForceCheck() error {
	p.mu.Lock()
	running := p.isRunning
	p.mu.Unlock()

	if !running {
		return ErrNotRunning
	}

	select {
	case p.forceCheck <- struct{}{}:
	default:
		// A check is already pending; it will observe the same data.
	}
	return nil
}

// Status returns a copy of the poller's observable state
func (p *Poller) Status() PollerStatus {
	p.mu.Lock()
	running := p.isRunning
	p.mu.Unlock()

	p.stateMu.RLock()
	defer p.stateMu.RUnlock()

	return PollerStatus{
		Running:      running,
		LastCheckAt:  p.lastCheckAt,
		LastError:    p.lastError,
		LastSnapshot: p.lastSnapshot.Clone(),
	}
}

// History returns the most recent cycle records, newest first
func (p *Poller) History(limit int) []CycleRecord {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()

	if limit <= 0 || limit > len(p.history) {
		limit = len(p.history)
	}

	result := make([]CycleRecord, limit)
	copy(result, p.history[:limit])
	return result
}

// worker is the single goroutine that owns the previous snapshot and runs
// every cycle, scheduled or forced. Closing done signals this generation
// has fully exited.
func (p *Poller) worker(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	// First cycle runs immediately so a fresh start seeds its snapshot
	// without waiting a full interval.
	previous := p.runOnce(ctx, nil)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			previous = p.runOnce(ctx, previous)
		case <-p.forceCheck:
			previous = p.runOnce(ctx, previous)
		}
	}
}

// runOnce executes one cycle under the cycle timeout and returns the
// snapshot the next cycle should diff against. A failed or panicked cycle
// keeps the previous snapshot.
func (p *Poller) runOnce(ctx context.Context, previous *order.StatusSnapshot) (next *order.StatusSnapshot) {
	next = previous

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Sync cycle panicked",
				zap.Any("panic", r),
				zap.Duration("cooldown", p.config.Cooldown),
			)
			p.publishFailure(fmt.Sprintf("panic: %v", r))

			select {
			case <-time.After(p.config.Cooldown):
			case <-ctx.Done():
			}
		}
	}()

	cycleCtx, cancel := context.WithTimeout(ctx, p.config.CycleTimeout)
	defer cancel()

	result, err := p.runner.RunCycle(cycleCtx, previous)
	if err != nil {
		p.logger.Warn("Sync cycle failed", zap.Error(err))
		p.publishFailure(err.Error())
		return previous
	}

	p.publishResult(result)
	return result.Snapshot
}

func (p *Poller) publishResult(result *appsync.CycleResult) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	p.lastCheckAt = result.FinishedAt
	p.lastError = ""
	p.lastSnapshot = result.Snapshot.Clone()

	p.addRecord(CycleRecord{
		CycleID:       result.CycleID,
		StartedAt:     result.StartedAt,
		FinishedAt:    result.FinishedAt,
		WindowsFailed: result.WindowsFailed,
		OrdersFetched: result.OrdersFetched,
		ChangeEvents:  len(result.Events),
	})
}

func (p *Poller) publishFailure(message string) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	p.lastError = message
	p.addRecord(CycleRecord{
		FinishedAt: time.Now(),
		Error:      message,
	})
}

// addRecord prepends to the history ring; callers hold stateMu
func (p *Poller) addRecord(record CycleRecord) {
	p.history = append([]CycleRecord{record}, p.history...)
	if len(p.history) > p.config.MaxHistory {
		p.history = p.history[:p.config.MaxHistory]
	}
}
