package smartstore

// ---------------------------------------------------------------------------
// Order List Response Types
// ---------------------------------------------------------------------------

// orderListEnvelope is the seller API response wrapper for order queries.
// The order list is nested exactly one level deep ({"data":{"data":[...]}});
// the client unwraps exactly that nesting and treats anything else as a
// malformed (permanent) response.
type orderListEnvelope struct {
	Code    string         `json:"code,omitempty"`
	Message string         `json:"message,omitempty"`
	Data    *orderListData `json:"data"`
}

// orderListData carries the nested order page
type orderListData struct {
	Data  []vendorOrder `json:"data"`
	Total int64         `json:"total,omitempty"`
}

// vendorOrder is one raw order as returned by the seller API
type vendorOrder struct {
	ProductOrderID     string `json:"productOrderId"`
	ProductOrderStatus string `json:"productOrderStatus"`
	OrderDate          string `json:"orderDate"`
	ProductName        string `json:"productName,omitempty"`
	BuyerName          string `json:"ordererName,omitempty"`
	TotalPaymentAmount string `json:"totalPaymentAmount,omitempty"`
}

// ---------------------------------------------------------------------------
// Token Response Types
// ---------------------------------------------------------------------------

// tokenResponse is the OAuth token endpoint response
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
}
