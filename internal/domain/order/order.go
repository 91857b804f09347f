package order

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	// ErrNotFound indicates the requested order does not exist
	ErrNotFound = errors.New("order: not found")
	// ErrInvalidOrder indicates the order is missing required fields
	ErrInvalidOrder = errors.New("order: invalid order")
)

// ---------------------------------------------------------------------------
// CanonicalStatus
// ---------------------------------------------------------------------------

// CanonicalStatus is the internal status vocabulary all vendor status codes
// are normalized into. It is locale-free; display strings are produced only
// at the notification-formatting boundary via DisplayName.
type CanonicalStatus string

const (
	// StatusNew indicates a newly placed (paid) order
	StatusNew CanonicalStatus = "NEW"
	// StatusAwaitingShipment indicates payment received, pending shipment
	StatusAwaitingShipment CanonicalStatus = "AWAITING_SHIPMENT"
	// StatusShipping indicates the order is in transit
	StatusShipping CanonicalStatus = "SHIPPING"
	// StatusDelivered indicates the order was delivered
	StatusDelivered CanonicalStatus = "DELIVERED"
	// StatusPurchaseConfirmed indicates the buyer confirmed the purchase
	StatusPurchaseConfirmed CanonicalStatus = "PURCHASE_CONFIRMED"
	// StatusCanceled indicates the order was canceled
	StatusCanceled CanonicalStatus = "CANCELED"
	// StatusReturned indicates the order was returned
	StatusReturned CanonicalStatus = "RETURNED"
	// StatusExchanged indicates the order was exchanged
	StatusExchanged CanonicalStatus = "EXCHANGED"
	// StatusUnknown is the fallback for unrecognized vendor codes
	StatusUnknown CanonicalStatus = "UNKNOWN"
)

// AllStatuses lists every canonical status in display order.
// Snapshot diffs iterate this slice so change events are deterministic.
var AllStatuses = []CanonicalStatus{
	StatusNew,
	StatusAwaitingShipment,
	StatusShipping,
	StatusDelivered,
	StatusPurchaseConfirmed,
	StatusCanceled,
	StatusReturned,
	StatusExchanged,
	StatusUnknown,
}

// IsValid returns true if the status is a known canonical status
func (s CanonicalStatus) IsValid() bool {
	switch s {
	case StatusNew, StatusAwaitingShipment, StatusShipping, StatusDelivered,
		StatusPurchaseConfirmed, StatusCanceled, StatusReturned,
		StatusExchanged, StatusUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status
func (s CanonicalStatus) String() string {
	return string(s)
}

// IsFinal returns true if the status is a terminal state
func (s CanonicalStatus) IsFinal() bool {
	switch s {
	case StatusPurchaseConfirmed, StatusCanceled, StatusReturned, StatusExchanged:
		return true
	default:
		return false
	}
}

// DisplayName returns a human-readable label for notification messages
func (s CanonicalStatus) DisplayName() string {
	switch s {
	case StatusNew:
		return "New Orders"
	case StatusAwaitingShipment:
		return "Awaiting Shipment"
	case StatusShipping:
		return "Shipping"
	case StatusDelivered:
		return "Delivered"
	case StatusPurchaseConfirmed:
		return "Purchase Confirmed"
	case StatusCanceled:
		return "Canceled"
	case StatusReturned:
		return "Returned"
	case StatusExchanged:
		return "Exchanged"
	default:
		return "Unknown"
	}
}

// ---------------------------------------------------------------------------
// Order
// ---------------------------------------------------------------------------

// Order is a canonical order record produced by the sync pipeline.
// Persistence is keyed by OrderID; writing the same OrderID twice updates
// the existing row rather than creating a duplicate.
type Order struct {
	// OrderID is the vendor-unique order identifier (dedup key)
	OrderID string
	// Status is the canonical order status
	Status CanonicalStatus
	// OrderedAt is when the order was placed on the vendor platform
	OrderedAt time.Time
	// TotalAmount is the total paid amount
	TotalAmount decimal.Decimal
	// Attributes carries vendor-specific fields we keep but do not model
	Attributes map[string]string
}

// Validate checks the order has the fields persistence requires
func (o *Order) Validate() error {
	if o.OrderID == "" {
		return ErrInvalidOrder
	}
	if !o.Status.IsValid() {
		return ErrInvalidOrder
	}
	return nil
}
