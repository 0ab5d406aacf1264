package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pieceflow/dealbridge/internal/api/handler"
	apimw "github.com/pieceflow/dealbridge/internal/api/middleware"
)

// Deps are the collaborators the HTTP surface needs.
type Deps struct {
	Pieces   handler.PieceQueue
	Deals    handler.DealReader
	Store    handler.Pinger
	Registry prometheus.Gatherer
	Logger   *zap.Logger
}

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestSize(1 << 20)) // 1 MB max request body
	r.Use(apimw.RequestContext(logger))

	ph := handler.NewPieceHandler(d.Pieces)
	dh := handler.NewDealHandler(d.Deals)
	hh := handler.NewHealthHandler(d.Store)

	r.Get("/health", hh.Health)
	r.Get("/ready", hh.Ready)
	if d.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/pieces", ph.Enqueue)
		r.Get("/deals/{stage}", dh.List)
	})

	return r
}
