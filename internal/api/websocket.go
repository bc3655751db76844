package api

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/assemblymechs/arena-core/internal/bus"
	"github.com/assemblymechs/arena-core/internal/protocol"
)

const (
	// MaxWSConnectionsTotal bounds concurrent spectator connections
	// across the whole process.
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP bounds concurrent spectator connections
	// from a single source address.
	MaxWSConnectionsPerIP = 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if IsAllowedOrigin(origin) {
			return true
		}
		log.Printf("websocket connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// SpectatorHub upgrades HTTP connections to WebSockets and streams a
// single match's turn events to each spectator as they're published
// on the bus, with no buffering or replay of history already missed.
type SpectatorHub struct {
	bus       bus.Bus
	wsLimiter *WebSocketRateLimiter
	active    int32 // approximate; exact accounting lives in wsLimiter
}

// NewSpectatorHub returns a hub that fans out match events read off b.
func NewSpectatorHub(b bus.Bus) *SpectatorHub {
	return &SpectatorHub{
		bus:       b,
		wsLimiter: NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
	}
}

// HandleMatchEvents upgrades the request and streams matchID's turn
// events until the client disconnects or the bus subscription fails.
func (h *SpectatorHub) HandleMatchEvents(matchID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := GetClientIP(r)

		if !h.wsLimiter.Allow(ip) {
			log.Printf("websocket connection rejected from %s: per-IP limit reached", ip)
			RecordConnectionRejected("ws_limit")
			http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade error: %v", err)
			h.wsLimiter.Release(ip)
			return
		}
		defer func() {
			conn.Close()
			h.wsLimiter.Release(ip)
		}()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		sub, err := h.bus.Subscribe(protocol.MatchEventsSubject(matchID), func(_ string, payload []byte) {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				cancel()
				return
			}
			IncrementWSMessages()
		})
		if err != nil {
			log.Printf("websocket subscribe error for match %s: %v", matchID, err)
			return
		}
		defer sub.Unsubscribe()

		UpdateWSConnections(1)
		defer UpdateWSConnections(0)

		// Drain client reads (pings, close frames) until disconnect or
		// the write side above cancels the context.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					cancel()
					return
				}
			}
		}()

		<-ctx.Done()
	}
}
