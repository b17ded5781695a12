package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/NIKIRZATOR/order-service-test/internal/pkg/metrics"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/home", handler.Home)
	r.Get("/home/database", handler.DatabaseHealth)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(RequireUser)
		r.Post("/orders", handler.CreateOrder)
		r.Get("/orders/{id}", handler.GetOrderByID)
		r.Patch("/orders/{id}", handler.PatchOrder)
		r.Get("/orders/user/{userID}", handler.ListUserOrders)
	})

	return r
}
