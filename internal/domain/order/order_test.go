package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrder_Validate(t *testing.T) {
	tests := []struct {
		name    string
		order   Order
		wantErr error
	}{
		{
			name: "valid order",
			order: Order{
				OrderID:     "2026083012345",
				Status:      StatusNew,
				OrderedAt:   time.Now(),
				TotalAmount: decimal.NewFromInt(25000),
			},
			wantErr: nil,
		},
		{
			name:    "missing order ID",
			order:   Order{Status: StatusNew},
			wantErr: ErrInvalidOrder,
		},
		{
			name:    "unrecognized status",
			order:   Order{OrderID: "2026083012345", Status: CanonicalStatus("SOMETHING")},
			wantErr: ErrInvalidOrder,
		},
		{
			name:    "unknown status is still valid",
			order:   Order{OrderID: "2026083012345", Status: StatusUnknown},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAllStatuses_CoversEveryValidStatus(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, s.IsValid(), "status %s", s)
	}
	assert.Len(t, AllStatuses, 9)
}
