package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// totalTolerance is the accepted floating drift between the declared total
// and the sum of line item subtotals.
const totalTolerance = 1e-6

type Order struct {
	ID         uuid.UUID
	UserID     int64
	Items      []OrderItem
	TotalPrice float64
	Status     OrderStatus
	CreatedAt  time.Time
}

type OrderItem struct {
	Name  string
	Count int
	Price float64
}

func (i OrderItem) Subtotal() float64 {
	return float64(i.Count) * i.Price
}

// ValidateOrder checks a create request before anything is written:
// at least one item, positive counts and prices, and a declared total that
// matches the computed sum within totalTolerance.
func ValidateOrder(items []OrderItem, totalPrice float64) error {
	if len(items) == 0 {
		return &ValidationError{Reason: "order must contain at least one item"}
	}

	var sum float64
	for _, item := range items {
		if item.Name == "" {
			return &ValidationError{Reason: "item name must not be empty"}
		}
		if item.Count <= 0 {
			return &ValidationError{Reason: fmt.Sprintf("item %q count must be positive", item.Name)}
		}
		if item.Price <= 0 {
			return &ValidationError{Reason: fmt.Sprintf("item %q price must be positive", item.Name)}
		}
		sum += item.Subtotal()
	}

	if math.Abs(sum-totalPrice) > totalTolerance {
		return &ValidationError{
			Reason: fmt.Sprintf("total_price %.6f does not match sum of items %.6f", totalPrice, sum),
		}
	}

	return nil
}
