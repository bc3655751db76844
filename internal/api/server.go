package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/assemblymechs/arena-core/internal/bus"
	"github.com/assemblymechs/arena-core/internal/leaderboard"
	"github.com/assemblymechs/arena-core/internal/store"
)

// Server is the operator/spectator HTTP+WebSocket surface: a
// read-mostly API over the match store and leaderboard, plus a
// control-plane publish for creating and scheduling matches. It never
// runs a coordinator itself.
type Server struct {
	router      *chi.Mux
	rateLimiter *IPRateLimiter
}

// NewServer creates a new API server with default production
// configuration. Background workers (the rate limiter's cleanup loop)
// do not start network listeners until Start is called, so the
// server is safe to construct in tests and drive with httptest.
func NewServer(st store.Store, lb *leaderboard.Leaderboard, b bus.Bus) *Server {
	return NewServerWithAuth(st, lb, b, nil, false)
}

// NewServerWithAuth creates a new API server with operator session
// authentication on the mutating routes.
func NewServerWithAuth(st store.Store, lb *leaderboard.Leaderboard, b bus.Bus, sessionMgr *SessionManager, enableAuth bool) *Server {
	s := &Server{
		rateLimiter: NewIPRateLimiter(DefaultRateLimitConfig),
	}

	s.router = NewRouter(RouterConfig{
		Store:           st,
		Leaderboard:     lb,
		Bus:             b,
		RateLimiter:     s.rateLimiter,
		SessionManager:  sessionMgr,
		EnableAdminAuth: enableAuth,
	})

	return s
}

// Start begins serving HTTP on addr. Call this once; to stop the
// server, signal the process.
func (s *Server) Start(addr string) error {
	log.Printf("arena api server starting on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Router returns the HTTP handler for use with httptest.
//
//	server := api.NewServer(st, lb, b)
//	ts := httptest.NewServer(server.Router())
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/api/leaderboard")
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop performs graceful shutdown of background workers.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}
