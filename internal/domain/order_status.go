package domain

// remember to add new statuses to the validOrderStatuses map
const (
	StatusPending  OrderStatus = "PENDING"
	StatusPaid     OrderStatus = "PAID"
	StatusShipped  OrderStatus = "SHIPPED"
	StatusCanceled OrderStatus = "CANCELED"
)

type OrderStatus string

var validOrderStatuses = map[OrderStatus]struct{}{
	StatusPending:  {},
	StatusPaid:     {},
	StatusShipped:  {},
	StatusCanceled: {},
}

// ToOrderStatus parses a status string from the fixed enumeration.
// Any transition between valid statuses is accepted; there is no
// state-machine restriction on patch.
func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := validOrderStatuses[status]; ok {
		return status, nil
	}

	return "", ErrInvalidStatus
}
