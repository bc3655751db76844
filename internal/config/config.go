// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all arena settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
	"time"
)

// =============================================================================
// BOARD CONFIGURATION
// =============================================================================

// BoardConfig holds the default arena dimensions and per-turn budget a
// match is created with when an operator doesn't override them.
type BoardConfig struct {
	Width      int
	Height     int
	MaxTurns   uint64
	APsPerTurn int
}

// DefaultBoard returns the default board configuration.
func DefaultBoard() BoardConfig {
	return BoardConfig{
		Width:      100,
		Height:     100,
		MaxTurns:   500,
		APsPerTurn: 4,
	}
}

// BoardFromEnv returns board configuration with environment variable overrides.
func BoardFromEnv() BoardConfig {
	cfg := DefaultBoard()

	if w := getEnvInt("ARENA_BOARD_WIDTH", 0); w > 0 {
		cfg.Width = w
	}
	if h := getEnvInt("ARENA_BOARD_HEIGHT", 0); h > 0 {
		cfg.Height = h
	}
	if mt := getEnvInt("ARENA_MAX_TURNS", 0); mt > 0 {
		cfg.MaxTurns = uint64(mt)
	}
	if aps := getEnvInt("ARENA_APS_PER_TURN", 0); aps > 0 {
		cfg.APsPerTurn = aps
	}

	return cfg
}

// =============================================================================
// STORE CONFIGURATION
// =============================================================================

// StoreConfig selects and configures the match persistence backend.
type StoreConfig struct {
	RedisURL string // empty means use the in-memory backend
}

// DefaultStore returns the default store configuration (in-memory).
func DefaultStore() StoreConfig {
	return StoreConfig{}
}

// StoreFromEnv returns store configuration with environment variable overrides.
func StoreFromEnv() StoreConfig {
	cfg := DefaultStore()
	if url := os.Getenv("WASMDOME_ENGINE_REDIS_URL"); url != "" {
		cfg.RedisURL = url
	} else if url := os.Getenv("REDIS_URL"); url != "" {
		cfg.RedisURL = url
	}
	return cfg
}

// =============================================================================
// BUS CONFIGURATION
// =============================================================================

// BusConfig selects and configures the message-bus backend.
type BusConfig struct {
	NATSURL string // empty means use the in-process local bus
}

// DefaultBus returns the default bus configuration (in-process).
func DefaultBus() BusConfig {
	return BusConfig{}
}

// BusFromEnv returns bus configuration with environment variable overrides.
func BusFromEnv() BusConfig {
	cfg := DefaultBus()
	if url := os.Getenv("ARENA_NATS_URL"); url != "" {
		cfg.NATSURL = url
	} else if host := os.Getenv("LATTICE_HOST"); host != "" {
		cfg.NATSURL = host
	}
	return cfg
}

// =============================================================================
// DISPATCH CONFIGURATION
// =============================================================================

// DispatchConfig controls how long the coordinator waits on an agent
// before treating a call as forfeited or unhealthy.
type DispatchConfig struct {
	TurnTimeout   time.Duration
	HealthTimeout time.Duration
}

// DefaultDispatch returns the default dispatch configuration.
func DefaultDispatch() DispatchConfig {
	return DispatchConfig{
		TurnTimeout:   5 * time.Second,
		HealthTimeout: 10 * time.Second,
	}
}

// DispatchFromEnv returns dispatch configuration with environment variable overrides.
func DispatchFromEnv() DispatchConfig {
	cfg := DefaultDispatch()
	if ms := getEnvInt("ARENA_DISPATCH_TIMEOUT_MS", 0); ms > 0 {
		cfg.TurnTimeout = time.Duration(ms) * time.Millisecond
	}
	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds the operator/spectator HTTP+WebSocket surface settings.
type ServerConfig struct {
	Port int
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{Port: 3000}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()
	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	return cfg
}

// =============================================================================
// CREDENTIALS CONFIGURATION
// =============================================================================

// CredsConfig holds the signing material and expiry used when minting
// one-time tokens and durable arena credentials.
type CredsConfig struct {
	SigningKey       string
	OTTExpirySeconds int
	LatticeCredsFile string
}

// DefaultCreds returns the default credentials configuration.
func DefaultCreds() CredsConfig {
	return CredsConfig{OTTExpirySeconds: 300}
}

// CredsFromEnv returns credentials configuration with environment variable overrides.
func CredsFromEnv() CredsConfig {
	cfg := DefaultCreds()
	if k := os.Getenv("SIGNING_KEY"); k != "" {
		cfg.SigningKey = k
	}
	if s := getEnvInt("OTT_EXPIRES_SECONDS", 0); s > 0 {
		cfg.OTTExpirySeconds = s
	}
	if f := os.Getenv("LATTICE_CREDS_FILE"); f != "" {
		cfg.LatticeCredsFile = f
	}
	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Board    BoardConfig
	Store    StoreConfig
	Bus      BusConfig
	Dispatch DispatchConfig
	Server   ServerConfig
	Creds    CredsConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Board:    BoardFromEnv(),
		Store:    StoreFromEnv(),
		Bus:      BusFromEnv(),
		Dispatch: DispatchFromEnv(),
		Server:   ServerFromEnv(),
		Creds:    CredsFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
