package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/orderwatch/backend/internal/domain/order"
	"github.com/orderwatch/backend/internal/infrastructure/scheduler"
	"github.com/orderwatch/backend/internal/interfaces/http/dto"
)

const (
	defaultPageSize    = 20
	statusHistoryLimit = 10
)

// SyncController abstracts the polling scheduler for the control API
type SyncController interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	ForceCheck() error
	Status() scheduler.PollerStatus
	History(limit int) []scheduler.CycleRecord
}

// Pinger reports storage liveness for the health endpoint
type Pinger interface {
	Ping() error
}

// SyncHandler exposes the sync engine's control operations
type SyncHandler struct {
	BaseHandler
	controller SyncController
	orders     order.Repository
	db         Pinger
	logger     *zap.Logger
}

// NewSyncHandler creates a new sync control handler
func NewSyncHandler(controller SyncController, orders order.Repository, db Pinger, logger *zap.Logger) *SyncHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncHandler{
		controller: controller,
		orders:     orders,
		db:         db,
		logger:     logger,
	}
}

// StartSync starts the polling scheduler
// POST /api/v1/sync/start
func (h *SyncHandler) StartSync(c *gin.Context) {
	if err := h.controller.Start(context.WithoutCancel(c.Request.Context())); err != nil {
		h.Error(c, http.StatusInternalServerError, "SYNC_START_FAILED", err.Error())
		return
	}
	h.Success(c, gin.H{"running": true})
}

// StopSync stops the polling scheduler
// POST /api/v1/sync/stop
func (h *SyncHandler) StopSync(c *gin.Context) {
	if err := h.controller.Stop(c.Request.Context()); err != nil {
		h.Error(c, http.StatusInternalServerError, "SYNC_STOP_FAILED", err.Error())
		return
	}
	h.Success(c, gin.H{"running": false})
}

// ForceCheck requests an immediate sync cycle
// POST /api/v1/sync/check
func (h *SyncHandler) ForceCheck(c *gin.Context) {
	if err := h.controller.ForceCheck(); err != nil {
		if errors.Is(err, scheduler.ErrNotRunning) {
			h.Error(c, http.StatusConflict, "SYNC_NOT_RUNNING", "the poller is not running")
			return
		}
		h.Error(c, http.StatusInternalServerError, "SYNC_CHECK_FAILED", err.Error())
		return
	}
	h.Success(c, gin.H{"requested": true})
}

// SyncStatus reports the poller's state, last snapshot and recent cycles
// GET /api/v1/sync/status
func (h *SyncHandler) SyncStatus(c *gin.Context) {
	status := h.controller.Status()

	resp := dto.SyncStatusResponse{
		Running:   status.Running,
		LastError: status.LastError,
	}
	if !status.LastCheckAt.IsZero() {
		t := status.LastCheckAt
		resp.LastCheckAt = &t
	}
	if status.LastSnapshot != nil {
		resp.Snapshot = make(map[string]int, len(status.LastSnapshot.Counts))
		for s, n := range status.LastSnapshot.Counts {
			resp.Snapshot[s.String()] = n
		}
	}
	for _, rec := range h.controller.History(statusHistoryLimit) {
		resp.History = append(resp.History, dto.CycleHistoryEntry{
			CycleID:       rec.CycleID,
			StartedAt:     rec.StartedAt,
			FinishedAt:    rec.FinishedAt,
			WindowsFailed: rec.WindowsFailed,
			OrdersFetched: rec.OrdersFetched,
			ChangeEvents:  rec.ChangeEvents,
			Error:         rec.Error,
		})
	}

	h.Success(c, resp)
}

// ListOrders returns persisted canonical orders, newest first
// GET /api/v1/orders
func (h *SyncHandler) ListOrders(c *gin.Context) {
	var req dto.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = defaultPageSize
	}

	orders, err := h.orders.List(c.Request.Context(), req.PageSize, (req.Page-1)*req.PageSize)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		h.Error(c, http.StatusInternalServerError, "LIST_ORDERS_FAILED", "could not list orders")
		return
	}

	resp := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, dto.OrderResponse{
			OrderID:     orders[i].OrderID,
			Status:      orders[i].Status.String(),
			StatusLabel: orders[i].Status.DisplayName(),
			OrderedAt:   orders[i].OrderedAt,
			TotalAmount: orders[i].TotalAmount.String(),
			Attributes:  orders[i].Attributes,
		})
	}

	h.SuccessWithMeta(c, resp, req.Page, req.PageSize)
}

// Health reports process and storage liveness
// GET /healthz
func (h *SyncHandler) Health(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			h.Error(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", err.Error())
			return
		}
	}
	h.Success(c, gin.H{"status": "ok"})
}
