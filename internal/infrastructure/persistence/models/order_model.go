package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/orderwatch/backend/internal/domain/order"
)

// OrderModel is the persistence model for the Order domain entity.
type OrderModel struct {
	OrderID        string          `gorm:"type:varchar(64);primary_key"`
	Status         string          `gorm:"type:varchar(32);not null;index:idx_orders_status"`
	OrderedAt      time.Time       `gorm:"not null;index:idx_orders_ordered_at"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	AttributesJSON string          `gorm:"type:text;column:attributes"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		OrderID:     m.OrderID,
		Status:      order.CanonicalStatus(m.Status),
		OrderedAt:   m.OrderedAt,
		TotalAmount: m.TotalAmount,
	}

	if m.AttributesJSON != "" {
		var attrs map[string]string
		if err := json.Unmarshal([]byte(m.AttributesJSON), &attrs); err == nil {
			o.Attributes = attrs
		}
	}

	return o
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.OrderID = o.OrderID
	m.Status = string(o.Status)
	m.OrderedAt = o.OrderedAt
	m.TotalAmount = o.TotalAmount

	m.AttributesJSON = ""
	if len(o.Attributes) > 0 {
		if jsonBytes, err := json.Marshal(o.Attributes); err == nil {
			m.AttributesJSON = string(jsonBytes)
		}
	}
}
