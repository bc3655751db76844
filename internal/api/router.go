package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/assemblymechs/arena-core/internal/bus"
	"github.com/assemblymechs/arena-core/internal/leaderboard"
	"github.com/assemblymechs/arena-core/internal/store"
)

// RouterConfig contains all dependencies needed to construct the HTTP
// router. Designed for dependency injection and testability.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    Store:       memory.New(),
//	    Leaderboard: leaderboard.New(),
//	    Bus:         bus.NewLocalBus(),
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000,
//	        Burst:             1000,
//	    },
//	}
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Store is the match persistence backend (required).
	Store store.Store

	// Leaderboard is the running score projection (required).
	Leaderboard *leaderboard.Leaderboard

	// Bus publishes operator commands and feeds spectator WebSocket
	// fan-out (required).
	Bus bus.Bus

	// RateLimiter is an optional pre-configured rate limiter. If nil,
	// one is built from RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig only applies when RateLimiter is nil.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed cross-origin callers.
	// If nil, uses localhost only.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware, useful
	// for benchmarks.
	DisableLogging bool

	// SessionManager protects the create/schedule routes when set.
	SessionManager *SessionManager

	// EnableAdminAuth requires SessionManager on the mutating routes.
	EnableAdminAuth bool
}

// routerHandlers holds the handler functions for the router.
type routerHandlers struct {
	store       store.Store
	leaderboard *leaderboard.Leaderboard
	bus         bus.Bus
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// This function is PURE - it has no side effects: no goroutines are
// started, no listeners are opened, so it's safe to use directly with
// httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{
		store:       cfg.Store,
		leaderboard: cfg.Leaderboard,
		bus:         cfg.Bus,
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/matches/{id}", h.handleGetMatch)
		r.Get("/leaderboard", h.handleGetLeaderboard)
		r.Get("/schedule", h.handleGetSchedule)
		r.Get("/agents", h.handleListAgents)

		r.Get("/auth/status", func(w http.ResponseWriter, req *http.Request) {
			if cfg.SessionManager != nil {
				cfg.SessionManager.HandleAuthStatus(w, req)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"authenticated":true,"message":"auth disabled"}`))
		})
		if cfg.SessionManager != nil {
			r.Post("/auth/login", cfg.SessionManager.HandleLogin)
			r.Post("/auth/logout", cfg.SessionManager.HandleLogout)
		}

		mutate := func(r chi.Router) {
			r.Post("/matches", h.handleCreateMatch)
			r.Post("/schedule", h.handleScheduleMatch)
		}
		if cfg.EnableAdminAuth && cfg.SessionManager != nil {
			r.Group(func(r chi.Router) {
				r.Use(cfg.SessionManager.AdminAuthMiddleware)
				mutate(r)
			})
		} else {
			r.Group(mutate)
		}
	})

	hub := NewSpectatorHub(cfg.Bus)
	r.Get("/ws/matches/{id}", func(w http.ResponseWriter, req *http.Request) {
		matchID := chi.URLParam(req, "id")
		hub.HandleMatchEvents(matchID)(w, req)
	})

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, map[string]string{"service": "assembly-mechs-arena"})
	})

	return r
}

// GetRateLimiterFromRouter is a helper to extract the rate limiter a
// router would be built with; useful for tests asserting on limiter
// behavior without standing up the whole router.
func GetRateLimiterFromRouter(cfg RouterConfig) *IPRateLimiter {
	if cfg.RateLimiter != nil {
		return cfg.RateLimiter
	}
	rateLimitCfg := DefaultRateLimitConfig
	if cfg.RateLimitConfig != nil {
		rateLimitCfg = *cfg.RateLimitConfig
	}
	return NewIPRateLimiter(rateLimitCfg)
}
