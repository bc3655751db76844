// Command matchcoordinator is the long-running host that wires the
// store, bus, and dispatcher together, listens for StartMatch control
// commands, and runs one coordinator goroutine per match. It also
// serves the operator/spectator HTTP API on the configured port.
package main

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/assemblymechs/arena-core/internal/api"
	"github.com/assemblymechs/arena-core/internal/bus"
	"github.com/assemblymechs/arena-core/internal/config"
	"github.com/assemblymechs/arena-core/internal/coordinator"
	"github.com/assemblymechs/arena-core/internal/dispatch"
	"github.com/assemblymechs/arena-core/internal/leaderboard"
	"github.com/assemblymechs/arena-core/internal/protocol"
	"github.com/assemblymechs/arena-core/internal/store"
)

func main() {
	cfg := config.Load()

	st := buildStore(cfg.Store)
	b := buildBus(cfg.Bus)
	defer b.Close()

	lb := leaderboard.New()

	host := &host{store: st, bus: b, cfg: cfg, leaderboard: lb}
	sub, err := b.Subscribe(protocol.SubjectArenaControl, host.handleControlCommand)
	if err != nil {
		log.Fatalf("matchcoordinator: subscribe control subject: %v", err)
	}
	defer sub.Unsubscribe()

	var sessionMgr *api.SessionManager
	enableAuth := cfg.Creds.SigningKey != ""
	if enableAuth {
		sessionMgr = api.NewSessionManager(cfg.Creds.SigningKey)
	}
	server := api.NewServerWithAuth(st, lb, b, sessionMgr, enableAuth)

	addr := ":" + strconv.Itoa(cfg.Server.Port)
	go func() {
		log.Printf("matchcoordinator: api listening on %s", addr)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("matchcoordinator: api server: %v", err)
		}
	}()

	log.Println("matchcoordinator: ready")
	waitForShutdown()
	server.Stop()
}

// host dispatches control-plane commands onto fresh coordinators.
type host struct {
	store       store.Store
	bus         bus.Bus
	cfg         config.AppConfig
	leaderboard *leaderboard.Leaderboard
}

func (h *host) handleControlCommand(_ string, payload []byte) {
	var cmd protocol.ArenaControlCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		log.Printf("matchcoordinator: malformed control command: %v", err)
		return
	}
	if cmd.Kind != protocol.ArenaControlStartMatch || cmd.StartMatch == nil {
		return
	}

	create := *cmd.StartMatch
	go h.runMatch(create)
}

func (h *host) runMatch(create protocol.CreateMatch) {
	ctx := context.Background()

	eventSub, err := h.bus.Subscribe(protocol.MatchEventsSubject(create.MatchID), func(_ string, payload []byte) {
		var evt protocol.TurnEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			return
		}
		h.leaderboard.Apply(evt.TurnEvent)
	})
	if err != nil {
		log.Printf("matchcoordinator: match %s: leaderboard subscribe failed: %v", create.MatchID, err)
	} else {
		defer eventSub.Unsubscribe()
	}

	invoker := dispatch.NewBusInvoker(h.bus, create.MatchID)
	d := dispatch.New(invoker)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	coord := coordinator.New(create.MatchID, h.store, d, h.bus, rng)

	if _, err := coord.Start(ctx, create); err != nil {
		log.Printf("matchcoordinator: match %s failed to start: %v", create.MatchID, err)
		return
	}

	if _, err := coord.RunUntilComplete(ctx); err != nil {
		log.Printf("matchcoordinator: match %s ended with error: %v", create.MatchID, err)
		return
	}

	log.Printf("matchcoordinator: match %s completed", create.MatchID)
}

func buildStore(cfg config.StoreConfig) store.Store {
	if cfg.RedisURL == "" {
		log.Println("matchcoordinator: using in-memory store")
		return store.NewMemoryStore()
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("matchcoordinator: invalid redis url: %v", err)
	}
	log.Printf("matchcoordinator: using redis store at %s", opts.Addr)
	return store.NewRedisStore(redis.NewClient(opts))
}

func buildBus(cfg config.BusConfig) bus.Bus {
	if cfg.NATSURL == "" {
		log.Println("matchcoordinator: using in-process bus")
		return bus.NewLocalBus()
	}

	b, err := bus.NewNATSBus(cfg.NATSURL)
	if err != nil {
		log.Fatalf("matchcoordinator: connect to nats at %s: %v", cfg.NATSURL, err)
	}
	log.Printf("matchcoordinator: using nats bus at %s", cfg.NATSURL)
	return b
}

func waitForShutdown() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}
