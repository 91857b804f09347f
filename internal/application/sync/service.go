package sync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orderwatch/backend/internal/domain/integration"
	"github.com/orderwatch/backend/internal/domain/order"
)

// ErrCycleAborted indicates a cycle stopped early because its context was
// canceled or timed out
var ErrCycleAborted = errors.New("sync: cycle aborted")

// ---------------------------------------------------------------------------
// CycleResult
// ---------------------------------------------------------------------------

// CycleResult summarizes one completed sync cycle
type CycleResult struct {
	// CycleID correlates the cycle's log lines
	CycleID string
	// StartedAt and FinishedAt bound the cycle wall-clock time
	StartedAt  time.Time
	FinishedAt time.Time
	// WindowsTotal is how many chunk windows the cycle covered
	WindowsTotal int
	// WindowsFailed is how many windows were skipped after fetch failure
	WindowsFailed int
	// OrdersFetched is the merged, deduplicated record count
	OrdersFetched int
	// DuplicatesDropped counts records removed by deduplication
	DuplicatesDropped int
	// OrdersUpserted is how many canonical orders were written
	OrdersUpserted int
	// UpsertFailures counts per-order persistence failures
	UpsertFailures int
	// Snapshot is the status snapshot taken over this cycle's orders
	Snapshot *order.StatusSnapshot
	// Events is the diff against the previous cycle's snapshot
	Events []order.ChangeEvent
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Config holds the cycle parameters
type Config struct {
	// LookbackWindow is how far back each cycle fetches
	LookbackWindow time.Duration
	// MaxChunkSpan is the vendor's maximum time range per request
	MaxChunkSpan time.Duration
}

// Service runs one full synchronization cycle: chunk the lookback window,
// fetch every chunk, merge, normalize, persist, snapshot and notify.
type Service struct {
	fetcher    integration.OrderFetcher
	repo       order.Repository
	dispatcher *Dispatcher
	config     Config
	logger     *zap.Logger

	// now is swapped out in tests
	now func() time.Time
}

// NewService creates a new sync service
func NewService(
	fetcher integration.OrderFetcher,
	repo order.Repository,
	dispatcher *Dispatcher,
	config Config,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		fetcher:    fetcher,
		repo:       repo,
		dispatcher: dispatcher,
		config:     config,
		logger:     logger,
		now:        time.Now,
	}
}

// RunCycle executes one synchronization cycle against the previous cycle's
// snapshot and returns the new snapshot inside the result. A failed window
// never aborts the cycle; it is logged, counted and skipped. Per-order
// persistence failures are likewise isolated. Only context cancellation
// aborts the cycle early.
func (s *Service) RunCycle(ctx context.Context, previous *order.StatusSnapshot) (*CycleResult, error) {
	startedAt := s.now()
	result := &CycleResult{
		CycleID:   uuid.New().String(),
		StartedAt: startedAt,
	}

	from := startedAt.Add(-s.config.LookbackWindow)
	windows := integration.ChunkWindows(from, startedAt, s.config.MaxChunkSpan)
	result.WindowsTotal = len(windows)

	s.logger.Info("Starting sync cycle",
		zap.String("cycle_id", result.CycleID),
		zap.Time("from", from),
		zap.Time("to", startedAt),
		zap.Int("windows", len(windows)),
	)

	// Fetch windows sequentially in window order so deduplication keeps
	// the earliest occurrence of each order.
	results := make([]integration.FetchResult, 0, len(windows))
	for _, window := range windows {
		if err := ctx.Err(); err != nil {
			return nil, ErrCycleAborted
		}

		records, err := s.fetcher.FetchWindow(ctx, window, integration.FetchFilter{})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrCycleAborted
			}
			kind := integration.ClassifyFailure(err)
			result.WindowsFailed++
			s.logger.Warn("Window fetch failed, skipping",
				zap.String("cycle_id", result.CycleID),
				zap.Time("window_start", window.Start),
				zap.Time("window_end", window.End),
				zap.String("failure_kind", string(kind)),
				zap.Error(err),
			)
			results = append(results, integration.FetchResult{Window: window, Err: err, Kind: kind})
			continue
		}
		results = append(results, integration.FetchResult{Window: window, Records: records})
	}

	merged, dropped := integration.Merge(results)
	result.OrdersFetched = len(merged)
	result.DuplicatesDropped = dropped

	canonical := make([]order.Order, 0, len(merged))
	for i := range merged {
		o := order.Order{
			OrderID:     merged[i].OrderID,
			Status:      order.MapVendorStatus(merged[i].VendorStatus),
			OrderedAt:   merged[i].OrderedAt,
			TotalAmount: merged[i].TotalAmount,
			Attributes:  merged[i].Attributes,
		}
		canonical = append(canonical, o)

		if err := s.repo.Upsert(ctx, &o); err != nil {
			if ctx.Err() != nil {
				return nil, ErrCycleAborted
			}
			result.UpsertFailures++
			s.logger.Error("Failed to persist order",
				zap.String("cycle_id", result.CycleID),
				zap.String("order_id", o.OrderID),
				zap.Error(err),
			)
			continue
		}
		result.OrdersUpserted++
	}

	result.Snapshot = order.TakeSnapshot(canonical, startedAt)
	result.Events = order.Diff(previous, result.Snapshot)

	s.dispatcher.Dispatch(ctx, result.Events, result.Snapshot)

	result.FinishedAt = s.now()
	s.logger.Info("Sync cycle finished",
		zap.String("cycle_id", result.CycleID),
		zap.Int("windows_failed", result.WindowsFailed),
		zap.Int("orders_fetched", result.OrdersFetched),
		zap.Int("duplicates_dropped", result.DuplicatesDropped),
		zap.Int("orders_upserted", result.OrdersUpserted),
		zap.Int("upsert_failures", result.UpsertFailures),
		zap.Int("change_events", len(result.Events)),
		zap.Duration("took", result.FinishedAt.Sub(result.StartedAt)),
	)

	return result, nil
}
