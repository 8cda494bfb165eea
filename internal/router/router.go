// Package router wires the HTTP routes and middleware of the coupon API.
package router

import (
	"net/http"

	"fiscal-coupon/internal/handler"
	"fiscal-coupon/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	couponHandler *handler.CouponHandler,
	tillHandler *handler.TillHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware in order: Recovery -> RequestID -> Logging -> CORS -> APIKeyAuth
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	r.Use(middleware.APIKeyAuth(apiKey, logger))

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/capabilities", couponHandler.Capabilities)
		r.Get("/status", tillHandler.Status)

		// Step-by-step coupon session
		r.Route("/coupon", func(r chi.Router) {
			r.Get("/", couponHandler.Current)
			r.Post("/open", couponHandler.Open)
			r.Post("/customer", couponHandler.IdentifyCustomer)
			r.Post("/items", couponHandler.AddItem)
			r.Delete("/items/{handle}", couponHandler.CancelItem)
			r.Post("/totalize", couponHandler.Totalize)
			r.Post("/payments", couponHandler.AddPayment)
			r.Post("/close", couponHandler.Close)
			r.Post("/cancel", couponHandler.Cancel)
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Post("/", couponHandler.Issue)
			r.Get("/{id}", couponHandler.GetByID)
		})

		r.Route("/till", func(r chi.Router) {
			r.Post("/summarize", tillHandler.Summarize)
			r.Post("/close", tillHandler.CloseTill)
			r.Post("/cash-in", tillHandler.AddCash)
			r.Post("/cash-out", tillHandler.RemoveCash)
			r.Get("/movements", tillHandler.Movements)
		})
	})

	return r
}
