// Package server exposes the local entity store over HTTP, so the offline
// flow (load, filter, paginate, export) can be inspected from a browser or
// a script.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/rpattn/fishql/internal/export"
	"github.com/rpattn/fishql/internal/filter"
	"github.com/rpattn/fishql/internal/ingestion"
	"github.com/rpattn/fishql/internal/middleware"
	"github.com/rpattn/fishql/internal/model"
	"github.com/rpattn/fishql/internal/referential"
	"github.com/rpattn/fishql/internal/store"
)

// Dependencies are the services the server routes to.
type Dependencies struct {
	Store     store.Store
	Registry  *model.Registry
	Exports   *export.Service
	Ingestion *ingestion.Service
	// NewLoader builds the referential loader of one request.
	NewLoader func() *referential.Loader
	Metrics   *middleware.Metrics
}

// Options tune the HTTP surface.
type Options struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	MaxPageSize    int
}

// DefaultOptions returns the options used by cmd/server.
func DefaultOptions() Options {
	return Options{
		AllowedOrigins: []string{"http://localhost:4200"},
		RequestTimeout: 60 * time.Second,
		MaxPageSize:    1000,
	}
}

// Server is the HTTP inspector.
type Server struct {
	deps   Dependencies
	opts   Options
	router chi.Router
}

// New builds the router.
func New(deps Dependencies, opts Options) *Server {
	if deps.Registry == nil {
		deps.Registry = model.DefaultRegistry()
	}
	if deps.Metrics == nil {
		deps.Metrics = middleware.NewMetrics()
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = DefaultOptions().MaxPageSize
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultOptions().RequestTimeout
	}
	s := &Server{deps: deps, opts: opts}
	s.router = s.routes()
	return s
}

// Handler returns the root handler, CORS included.
func (s *Server) Handler() http.Handler {
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
	})
	return corsHandler.Handler(s.router)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.deps.Metrics.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.deps.Metrics.Handler())
	if s.deps.Exports != nil {
		r.Handle("/exports/files/{name}", export.NewHTTPHandler(s.deps.Exports))
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(chimiddleware.Timeout(s.opts.RequestTimeout))
		if s.deps.NewLoader != nil {
			api.Use(middleware.DataLoaderMiddleware(s.deps.NewLoader))
		}

		mountResource(s, api, resource[*model.Landing, *filter.LandingFilter]{
			path:       "/landings",
			collection: model.TypenameLanding,
			from:       model.LandingFromObject,
			filterFrom: filter.LandingFilterFromObject,
			columns:    export.LandingColumns(),
		})
		mountResource(s, api, resource[*model.ObservedLocation, *filter.ObservedLocationFilter]{
			path:       "/observed-locations",
			collection: model.TypenameObservedLocation,
			from:       model.ObservedLocationFromObject,
			filterFrom: filter.ObservedLocationFilterFromObject,
			columns:    export.ObservedLocationColumns(),
		})
		mountResource(s, api, resource[*model.Operation, *filter.OperationFilter]{
			path:       "/operations",
			collection: model.TypenameOperation,
			from:       model.OperationFromObject,
			filterFrom: filter.OperationFilterFromObject,
			columns:    export.OperationColumns(),
		})
		mountResource(s, api, resource[*model.Trip, *filter.TripFilter]{
			path:       "/trips",
			collection: model.TypenameTrip,
			from:       model.TripFromObject,
			filterFrom: filter.TripFilterFromObject,
		})
		mountResource(s, api, resource[*model.Sale, *filter.SaleFilter]{
			path:       "/sales",
			collection: model.TypenameSale,
			from:       model.SaleFromObject,
			filterFrom: filter.SaleFilterFromObject,
		})
		mountResource(s, api, resource[*model.Strategy, *filter.StrategyFilter]{
			path:       "/strategies",
			collection: model.TypenameStrategy,
			from:       model.StrategyFromObject,
			filterFrom: filter.StrategyFilterFromObject,
		})
		mountResource(s, api, resource[*model.TaxonName, *filter.TaxonNameFilter]{
			path:       "/taxon-names",
			collection: model.TypenameTaxonName,
			from:       model.TaxonNameFromObject,
			filterFrom: filter.TaxonNameFilterFromObject,
		})
		mountResource(s, api, resource[*model.AggregatedLanding, *filter.AggregatedLandingFilter]{
			path:       "/aggregated-landings",
			collection: model.TypenameAggregatedLanding,
			from:       model.AggregatedLandingFromObject,
			filterFrom: filter.AggregatedLandingFilterFromObject,
		})

		api.Get("/entities/{typename}/{id}", s.handleGetEntity)

		api.Route("/referentials", func(ref chi.Router) {
			if s.deps.Ingestion != nil {
				ref.Handle("/import", ingestion.NewHTTPHandler(s.deps.Ingestion))
			}
			ref.Get("/{entityName}", s.handleListReferentials)
			ref.Get("/{entityName}/{id}", s.handleGetReferential)
		})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
