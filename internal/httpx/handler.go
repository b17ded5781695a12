package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/NIKIRZATOR/order-service-test/internal/domain"
	"github.com/NIKIRZATOR/order-service-test/internal/service"
)

// Pinger reports whether the durable store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler handles incoming HTTP requests for the order lifecycle.
type Handler struct {
	orders *service.OrderService
	store  Pinger
}

func NewHandler(orders *service.OrderService, store Pinger) *Handler {
	return &Handler{
		orders: orders,
		store:  store,
	}
}

// CreateOrder persists a PENDING order and triggers async processing.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_user", "")
		return
	}

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	order, err := h.orders.Create(r.Context(), userID, mapRequestItems(req.Items), req.TotalPrice)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, mapOrderToResponse(order))
}

// GetOrderByID retrieves a single order, cache-first.
func (h *Handler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_user", "")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_order_id", err.Error())
		return
	}

	order, err := h.orders.Get(r.Context(), orderID, userID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// PatchOrder applies a status transition to an owned order.
func (h *Handler) PatchOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_user", "")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_order_id", err.Error())
		return
	}

	var req PatchOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	order, err := h.orders.Patch(r.Context(), orderID, userID, req.Status)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// ListUserOrders returns the owner's orders, newest first.
func (h *Handler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_user", "")
		return
	}

	ownerID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_user_id", err.Error())
		return
	}

	orders, err := h.orders.ListByOwner(r.Context(), ownerID, userID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	out := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, mapOrderToResponse(order))
	}

	writeJSON(w, http.StatusOK, out)
}

// Home is the liveness probe.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DatabaseHealth checks store connectivity.
func (h *Handler) DatabaseHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database_unavailable", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"database": "ok"})
}

// writeDomainError maps the service error taxonomy to client-facing
// status signals. Cache and queue faults never reach this point.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, "validation_failed", validationErr.Reason)
	case errors.Is(err, domain.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", "order does not belong to requester")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "order_not_found", "")
	default:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
