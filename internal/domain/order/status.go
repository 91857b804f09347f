package order

import "strings"

// vendorStatusTable maps vendor product-order status codes to canonical
// statuses. Codes not present here fall through to StatusUnknown.
var vendorStatusTable = map[string]CanonicalStatus{
	"NEW_ORDER":             StatusNew,
	"PAYED":                 StatusNew,
	"PAYMENT_WAITING":       StatusNew,
	"PREPARING":             StatusAwaitingShipment,
	"READY_SHIPPING":        StatusAwaitingShipment,
	"DELIVERING":            StatusShipping,
	"SHIPPING":              StatusShipping,
	"DELIVERED":             StatusDelivered,
	"PURCHASE_DECIDED":      StatusPurchaseConfirmed,
	"CANCELED":              StatusCanceled,
	"CANCELED_BY_NOPAYMENT": StatusCanceled,
	"CANCEL_DONE":           StatusCanceled,
	"RETURNED":              StatusReturned,
	"RETURN_DONE":           StatusReturned,
	"EXCHANGED":             StatusExchanged,
	"EXCHANGE_DONE":         StatusExchanged,
}

// MapVendorStatus translates a vendor status code into a CanonicalStatus.
// Total over all inputs: unrecognized codes map to StatusUnknown so every
// record is still accounted for in snapshot counts.
func MapVendorStatus(vendorStatus string) CanonicalStatus {
	code := strings.ToUpper(strings.TrimSpace(vendorStatus))
	if status, ok := vendorStatusTable[code]; ok {
		return status
	}
	return StatusUnknown
}
