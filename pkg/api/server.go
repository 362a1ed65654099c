// Package api exposes the column store over a REST API with API-key
// authentication and Prometheus instrumentation.
package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cfiledb/cfiledb/pkg/query"
	"github.com/cfiledb/cfiledb/pkg/store"
)

// NewRouter builds the HTTP routing tree for a server.
func NewRouter(server *Server, metrics *Metrics, apiKey string) chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API key authentication middleware for protected routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiKeyMiddleware(apiKey))

		r.Get("/health", instrument(metrics, "GET", "/api/v1/health", server.handleHealth))

		// Column operations
		r.Put("/columns/{name}", instrument(metrics, "PUT", "/api/v1/columns/{name}", server.handlePutColumn))
		r.Get("/columns/{name}", instrument(metrics, "GET", "/api/v1/columns/{name}", server.handleGetColumn))
		r.Delete("/columns/{name}", instrument(metrics, "DELETE", "/api/v1/columns/{name}", server.handleDeleteColumn))
		r.Get("/columns", instrument(metrics, "GET", "/api/v1/columns", server.handleListColumns))

		// Value reads
		r.Get("/columns/{name}/values/{ordinal}", instrument(metrics, "GET", "/api/v1/columns/{name}/values/{ordinal}", server.handleGetValue))
		r.Get("/columns/{name}/scan", instrument(metrics, "GET", "/api/v1/columns/{name}/scan", server.handleScan))

		// Diagnostics
		r.Get("/stats", instrument(metrics, "GET", "/api/v1/stats", server.handleStats))
	})

	return r
}

// StartServer starts the HTTP server with all routes configured
func StartServer(cs *store.ColumnStore, config ServerConfig) error {
	metrics := NewMetrics()
	server := NewServer(cs, query.NewEngine(cs), config, metrics)
	router := NewRouter(server, metrics, config.APIKey)

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	log.Printf("CFileDB API listening on %s", addr)
	return http.ListenAndServe(addr, router)
}

func instrument(metrics *Metrics, method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	if metrics == nil {
		return handler
	}
	return metrics.InstrumentHandler(method, endpoint, handler)
}
