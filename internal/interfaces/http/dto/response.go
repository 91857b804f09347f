package dto

import "time"

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta represents pagination metadata
type Meta struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewSuccessResponseWithMeta creates a success response with pagination meta
func NewSuccessResponseWithMeta(data interface{}, page, pageSize int) Response {
	return Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Page:     page,
			PageSize: pageSize,
		},
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// ListOrdersRequest represents order list pagination parameters
type ListOrdersRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// OrderResponse represents one persisted canonical order
type OrderResponse struct {
	OrderID     string            `json:"order_id"`
	Status      string            `json:"status"`
	StatusLabel string            `json:"status_label"`
	OrderedAt   time.Time         `json:"ordered_at"`
	TotalAmount string            `json:"total_amount"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// SyncStatusResponse represents the poller's observable state
type SyncStatusResponse struct {
	Running     bool                `json:"running"`
	LastCheckAt *time.Time          `json:"last_check_at,omitempty"`
	LastError   string              `json:"last_error,omitempty"`
	Snapshot    map[string]int      `json:"snapshot,omitempty"`
	History     []CycleHistoryEntry `json:"history,omitempty"`
}

// CycleHistoryEntry represents one finished cycle in the status response
type CycleHistoryEntry struct {
	CycleID       string    `json:"cycle_id,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	WindowsFailed int       `json:"windows_failed"`
	OrdersFetched int       `json:"orders_fetched"`
	ChangeEvents  int       `json:"change_events"`
	Error         string    `json:"error,omitempty"`
}
