// Package server exposes a ledger and its realized gains reports over HTTP.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates and configures the HTTP router
func NewRouter(service *Service, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logger)
	r.Use(middleware.Recoverer)
	r.Use(NewCORS(allowedOrigins).Handler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			systemHandler := NewSystemHandler(service)
			r.Get("/health", systemHandler.Health)
		})

		r.Route("/transactions", func(r chi.Router) {
			transactionHandler := NewTransactionHandler(service)
			r.Get("/", transactionHandler.List)
			r.Post("/", transactionHandler.Create)
			r.Post("/csv", transactionHandler.CreateCSV)
			r.Post("/html", transactionHandler.CreateHTML)
			r.Delete("/{id}", transactionHandler.Delete)
		})

		reportHandler := NewReportHandler(service)
		r.Get("/report", reportHandler.Report)
		r.Get("/report.csv", reportHandler.CSV)
		r.Get("/report.html", reportHandler.HTML)
	})

	return r
}
