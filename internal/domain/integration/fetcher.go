package integration

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// RawOrderRecord
// ---------------------------------------------------------------------------

// RawOrderRecord is a vendor-shaped order as returned by one window fetch.
// Records are ephemeral: consumed by aggregation within a single cycle.
type RawOrderRecord struct {
	// OrderID is the vendor-unique order identifier (dedup key)
	OrderID string
	// VendorStatus is the vendor's raw status code
	VendorStatus string
	// OrderedAt is when the order was placed
	OrderedAt time.Time
	// TotalAmount is the total paid amount
	TotalAmount decimal.Decimal
	// Attributes carries extra vendor fields verbatim
	Attributes map[string]string
}

// ---------------------------------------------------------------------------
// FetchResult
// ---------------------------------------------------------------------------

// FetchResult is the outcome of fetching one time window
type FetchResult struct {
	// Window is the window this result covers
	Window TimeWindow
	// Records holds the fetched orders when the fetch succeeded
	Records []RawOrderRecord
	// Err is the classified fetch error, nil on success
	Err error
	// Kind is the failure class when Err is non-nil
	Kind FailureKind
}

// Ok returns true if the window fetch succeeded
func (r FetchResult) Ok() bool {
	return r.Err == nil
}

// ---------------------------------------------------------------------------
// OrderFetcher Port
// ---------------------------------------------------------------------------

// FetchFilter narrows a window fetch
type FetchFilter struct {
	// VendorStatus filters by raw vendor status code (empty = all)
	VendorStatus string
}

// OrderFetcher is the port for pulling raw orders from the vendor API.
// Implementations own retry/backoff and error classification; a returned
// error is always one of the sync error classes.
type OrderFetcher interface {
	FetchWindow(ctx context.Context, window TimeWindow, filter FetchFilter) ([]RawOrderRecord, error)
}
