package sync

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderwatch/backend/internal/domain/integration"
	"github.com/orderwatch/backend/internal/domain/notification"
	"github.com/orderwatch/backend/internal/domain/order"
)

// fakeFetcher serves canned records per window index
type fakeFetcher struct {
	fetch   func(window integration.TimeWindow) ([]integration.RawOrderRecord, error)
	windows []integration.TimeWindow
}

func (f *fakeFetcher) FetchWindow(ctx context.Context, window integration.TimeWindow, filter integration.FetchFilter) ([]integration.RawOrderRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.windows = append(f.windows, window)
	return f.fetch(window)
}

// memoryOrderRepository is an in-memory order.Repository for cycle tests
type memoryOrderRepository struct {
	orders  map[string]order.Order
	failIDs map[string]error
	upserts int
}

func newMemoryOrderRepository() *memoryOrderRepository {
	return &memoryOrderRepository{
		orders:  make(map[string]order.Order),
		failIDs: make(map[string]error),
	}
}

func (r *memoryOrderRepository) Upsert(ctx context.Context, o *order.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := r.failIDs[o.OrderID]; ok {
		return err
	}
	r.upserts++
	r.orders[o.OrderID] = *o
	return nil
}

func (r *memoryOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*order.Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, order.ErrNotFound
	}
	return &o, nil
}

func (r *memoryOrderRepository) List(ctx context.Context, limit, offset int) ([]order.Order, error) {
	out := make([]order.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	return out, nil
}

func (r *memoryOrderRepository) CountByStatus(ctx context.Context) (map[order.CanonicalStatus]int, error) {
	counts := make(map[order.CanonicalStatus]int)
	for _, o := range r.orders {
		counts[o.Status]++
	}
	return counts, nil
}

func record(orderID, vendorStatus string, orderedAt time.Time) integration.RawOrderRecord {
	return integration.RawOrderRecord{
		OrderID:      orderID,
		VendorStatus: vendorStatus,
		OrderedAt:    orderedAt,
		TotalAmount:  decimal.NewFromInt(10000),
	}
}

func newTestService(fetcher integration.OrderFetcher, repo order.Repository, channels []notification.Channel) *Service {
	svc := NewService(fetcher, repo, NewDispatcher(channels, nil), Config{
		LookbackWindow: 48 * time.Hour,
		MaxChunkSpan:   24 * time.Hour,
	}, nil)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestService_RunCycle(t *testing.T) {
	base := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)

	t.Run("chunks the lookback window and merges results", func(t *testing.T) {
		fetcher := &fakeFetcher{}
		fetcher.fetch = func(w integration.TimeWindow) ([]integration.RawOrderRecord, error) {
			// the same order appears in both windows; dedup keeps one
			return []integration.RawOrderRecord{
				record("dup-order", "PAYED", base),
				record(fmt.Sprintf("order-%d", w.Start.Day()), "DELIVERING", base),
			}, nil
		}
		repo := newMemoryOrderRepository()
		svc := newTestService(fetcher, repo, nil)

		result, err := svc.RunCycle(context.Background(), nil)
		require.NoError(t, err)

		assert.Equal(t, 2, result.WindowsTotal)
		assert.Zero(t, result.WindowsFailed)
		require.Len(t, fetcher.windows, 2)
		assert.True(t, fetcher.windows[0].End.Equal(fetcher.windows[1].Start))

		assert.Equal(t, 3, result.OrdersFetched)
		assert.Equal(t, 1, result.DuplicatesDropped)
		assert.Equal(t, 3, result.OrdersUpserted)
		assert.Equal(t, 3, repo.upserts)
	})

	t.Run("first cycle seeds the snapshot without events", func(t *testing.T) {
		fetcher := &fakeFetcher{}
		fetcher.fetch = func(w integration.TimeWindow) ([]integration.RawOrderRecord, error) {
			return []integration.RawOrderRecord{record("order-1", "PAYED", base)}, nil
		}
		desktop := &fakeChannel{name: "desktop", enabled: true}
		svc := newTestService(fetcher, newMemoryOrderRepository(), []notification.Channel{desktop})

		result, err := svc.RunCycle(context.Background(), nil)
		require.NoError(t, err)

		assert.Empty(t, result.Events)
		assert.Empty(t, desktop.sent)
		require.NotNil(t, result.Snapshot)
		assert.Equal(t, 1, result.Snapshot.Count(order.StatusNew))
	})

	t.Run("diffs against the previous snapshot and notifies", func(t *testing.T) {
		fetcher := &fakeFetcher{}
		served := false
		fetcher.fetch = func(w integration.TimeWindow) ([]integration.RawOrderRecord, error) {
			if served {
				return nil, nil
			}
			served = true
			records := make([]integration.RawOrderRecord, 0, 9)
			for i := 0; i < 3; i++ {
				records = append(records, record(fmt.Sprintf("new-%d", i), "PAYED", base))
			}
			for i := 0; i < 5; i++ {
				records = append(records, record(fmt.Sprintf("ship-%d", i), "DELIVERING", base))
			}
			records = append(records, record("done-0", "DELIVERED", base))
			return records, nil
		}
		desktop := &fakeChannel{name: "desktop", enabled: true}
		svc := newTestService(fetcher, newMemoryOrderRepository(), []notification.Channel{desktop})

		previous := order.SnapshotFromCounts(map[order.CanonicalStatus]int{
			order.StatusNew:      2,
			order.StatusShipping: 5,
		}, base)

		result, err := svc.RunCycle(context.Background(), previous)
		require.NoError(t, err)

		require.Len(t, result.Events, 2)
		assert.Equal(t, order.StatusNew, result.Events[0].Status)
		assert.Equal(t, 1, result.Events[0].Delta)
		assert.Equal(t, order.StatusDelivered, result.Events[1].Status)
		assert.Equal(t, 1, result.Events[1].Delta)

		// summary plus the high-priority new-order alert
		require.Len(t, desktop.sent, 2)
		assert.Equal(t, notification.PriorityHigh, desktop.sent[1].Priority)
	})

	t.Run("a failed window is skipped without aborting the cycle", func(t *testing.T) {
		fetcher := &fakeFetcher{}
		fetcher.fetch = func(w integration.TimeWindow) ([]integration.RawOrderRecord, error) {
			if len(fetcher.windows) == 1 {
				return nil, fmt.Errorf("%w: status 400", integration.ErrPermanent)
			}
			return []integration.RawOrderRecord{record("order-2", "PAYED", base)}, nil
		}
		repo := newMemoryOrderRepository()
		svc := newTestService(fetcher, repo, nil)

		result, err := svc.RunCycle(context.Background(), nil)
		require.NoError(t, err)

		assert.Equal(t, 1, result.WindowsFailed)
		assert.Equal(t, 1, result.OrdersUpserted)
		assert.Contains(t, repo.orders, "order-2")
	})

	t.Run("per-order upsert failures are counted, not fatal", func(t *testing.T) {
		fetcher := &fakeFetcher{}
		fetcher.fetch = func(w integration.TimeWindow) ([]integration.RawOrderRecord, error) {
			if len(fetcher.windows) > 1 {
				return nil, nil
			}
			return []integration.RawOrderRecord{
				record("good-order", "PAYED", base),
				record("bad-order", "PAYED", base),
			}, nil
		}
		repo := newMemoryOrderRepository()
		repo.failIDs["bad-order"] = fmt.Errorf("disk full")
		svc := newTestService(fetcher, repo, nil)

		result, err := svc.RunCycle(context.Background(), nil)
		require.NoError(t, err)

		assert.Equal(t, 1, result.OrdersUpserted)
		assert.Equal(t, 1, result.UpsertFailures)
		// the failed order still contributes to the snapshot
		assert.Equal(t, 2, result.Snapshot.Count(order.StatusNew))
	})

	t.Run("unknown vendor codes map to the unknown status", func(t *testing.T) {
		fetcher := &fakeFetcher{}
		fetcher.fetch = func(w integration.TimeWindow) ([]integration.RawOrderRecord, error) {
			if len(fetcher.windows) > 1 {
				return nil, nil
			}
			return []integration.RawOrderRecord{record("odd-order", "FOO_BAR", base)}, nil
		}
		repo := newMemoryOrderRepository()
		svc := newTestService(fetcher, repo, nil)

		result, err := svc.RunCycle(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Snapshot.Count(order.StatusUnknown))
		assert.Equal(t, order.StatusUnknown, repo.orders["odd-order"].Status)
	})

	t.Run("cancellation aborts the cycle", func(t *testing.T) {
		fetcher := &fakeFetcher{}
		fetcher.fetch = func(w integration.TimeWindow) ([]integration.RawOrderRecord, error) {
			return nil, nil
		}
		svc := newTestService(fetcher, newMemoryOrderRepository(), nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := svc.RunCycle(ctx, nil)
		assert.ErrorIs(t, err, ErrCycleAborted)
	})
}
