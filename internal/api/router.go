package api

import (
	_ "pricerelay/docs"
	"pricerelay/internal/api/handler"
	"pricerelay/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	swagger "github.com/swaggo/http-swagger"
)

func NewRouter(h *handler.Handler) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))

	// Swagger UI
	router.Get("/swagger/*", swagger.WrapHandler)
	router.Handle("/metrics", metrics.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentHandler)

		r.Post("/contracts/{account}/call/{method}", h.CallContract)
		r.Post("/contracts/{account}/view/{method}", h.ViewContract)
		r.Get("/transactions/{id}", h.GetTransaction)
		r.Get("/prices/symbols", h.GetSymbols)
		r.Post("/prices/save", h.SavePrices)
		r.Get("/prices/{base:[A-Za-z0-9]{2,10}}/{quote:[A-Za-z0-9]{2,10}}", h.GetPrice)
	})
	return router
}
