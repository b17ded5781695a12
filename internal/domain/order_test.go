package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NIKIRZATOR/order-service-test/internal/domain"
)

func TestValidateOrder(t *testing.T) {
	tests := []struct {
		name       string
		items      []domain.OrderItem
		totalPrice float64
		wantErr    bool
	}{
		{
			name:       "matching total: ok",
			items:      []domain.OrderItem{{Name: "keyboard", Count: 2, Price: 5.0}},
			totalPrice: 10.0,
		},
		{
			name: "multiple items, matching total: ok",
			items: []domain.OrderItem{
				{Name: "keyboard", Count: 2, Price: 5.0},
				{Name: "mouse", Count: 1, Price: 3.5},
			},
			totalPrice: 13.5,
		},
		{
			name:       "total within tolerance: ok",
			items:      []domain.OrderItem{{Name: "keyboard", Count: 3, Price: 0.1}},
			totalPrice: 0.3,
		},
		{
			name:       "total off by more than tolerance: fail",
			items:      []domain.OrderItem{{Name: "keyboard", Count: 2, Price: 5.0}},
			totalPrice: 10.5,
			wantErr:    true,
		},
		{
			name:       "no items: fail",
			items:      nil,
			totalPrice: 0,
			wantErr:    true,
		},
		{
			name:       "zero count: fail",
			items:      []domain.OrderItem{{Name: "keyboard", Count: 0, Price: 5.0}},
			totalPrice: 0,
			wantErr:    true,
		},
		{
			name:       "negative price: fail",
			items:      []domain.OrderItem{{Name: "keyboard", Count: 1, Price: -5.0}},
			totalPrice: -5.0,
			wantErr:    true,
		},
		{
			name:       "empty item name: fail",
			items:      []domain.OrderItem{{Name: "", Count: 1, Price: 5.0}},
			totalPrice: 5.0,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.ValidateOrder(tt.items, tt.totalPrice)
			if tt.wantErr {
				var validationErr *domain.ValidationError
				require.ErrorAs(t, err, &validationErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestToOrderStatus(t *testing.T) {
	for _, valid := range []string{"PENDING", "PAID", "SHIPPED", "CANCELED"} {
		status, err := domain.ToOrderStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, string(status))
	}

	for _, invalid := range []string{"", "pending", "DELIVERED", "UNKNOWN"} {
		_, err := domain.ToOrderStatus(invalid)
		assert.ErrorIs(t, err, domain.ErrInvalidStatus, invalid)
	}
}
