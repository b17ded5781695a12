package httpx

import (
	"time"

	"github.com/NIKIRZATOR/order-service-test/internal/domain"
)

type CreateOrderRequest struct {
	Items      []OrderItemDTO `json:"items"`
	TotalPrice float64        `json:"total_price"`
}

type OrderItemDTO struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Price float64 `json:"price"`
}

type PatchOrderRequest struct {
	Status string `json:"status"`
}

type OrderResponse struct {
	ID         string         `json:"id"`
	UserID     int64          `json:"user_id"`
	Items      []OrderItemDTO `json:"items"`
	TotalPrice float64        `json:"total_price"`
	Status     string         `json:"status"`
	CreatedAt  string         `json:"created_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func mapOrderToResponse(order domain.Order) OrderResponse {
	return OrderResponse{
		ID:         order.ID.String(),
		UserID:     order.UserID,
		Items:      mapItems(order.Items),
		TotalPrice: order.TotalPrice,
		Status:     string(order.Status),
		CreatedAt:  order.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func mapItems(items []domain.OrderItem) []OrderItemDTO {
	out := make([]OrderItemDTO, len(items))
	for i, it := range items {
		out[i] = OrderItemDTO{
			Name:  it.Name,
			Count: it.Count,
			Price: it.Price,
		}
	}
	return out
}

func mapRequestItems(items []OrderItemDTO) []domain.OrderItem {
	out := make([]domain.OrderItem, len(items))
	for i, it := range items {
		out[i] = domain.OrderItem{
			Name:  it.Name,
			Count: it.Count,
			Price: it.Price,
		}
	}
	return out
}
