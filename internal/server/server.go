// Package server exposes the chat orchestrator and its supporting lookups
// over HTTP: an SSE chat endpoint with a WebSocket relay, option
// enumerations, a geocoding proxy, cache metrics, and health probes.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sandiips/schoolfinder/internal/cache"
	"github.com/sandiips/schoolfinder/internal/chat"
	"github.com/sandiips/schoolfinder/internal/geo"
	"github.com/sandiips/schoolfinder/internal/prompts"
	"github.com/sandiips/schoolfinder/internal/school"
)

// Server routes HTTP traffic to the orchestrator and the lookup services.
type Server struct {
	router       *chi.Mux
	orchestrator *chat.Orchestrator
	store        school.Store
	geocoder     geo.Geocoder
	cache        cache.Cache
	options      prompts.Options
	logger       *slog.Logger
}

// New assembles the router.
func New(orc *chat.Orchestrator, store school.Store, geocoder geo.Geocoder, c cache.Cache, opts prompts.Options, logger *slog.Logger) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		orchestrator: orc,
		store:        store,
		geocoder:     geocoder,
		cache:        c,
		options:      opts,
		logger:       logger,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(corsMiddleware)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/ai-chat", s.handleChat)
		r.Get("/ai-chat/ws", s.handleChatWS)
		r.Get("/options", s.handleOptions)
		r.Get("/geocode", s.handleGeocode)
		r.Get("/cache/stats", s.handleCacheStats)
	})
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/ready", s.handleReady)

	return s
}

// Handler returns the root handler for http.Server.
func (s *Server) Handler() http.Handler { return s.router }

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
