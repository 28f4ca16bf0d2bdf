// Package httptransport assembles the HTTP surface. Feature handlers
// register their own routes; this package only owns the shared middleware
// chain and operational endpoints.
package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"carbonledger/internal/platform/middleware"
)

// Registerer is implemented by every feature handler.
type Registerer interface {
	Register(r chi.Router)
}

// NewRouter wires the middleware chain, operational endpoints and all
// feature handlers.
func NewRouter(handlers ...Registerer) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(middleware.RequestID)
	r.Use(middleware.Actor)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}
