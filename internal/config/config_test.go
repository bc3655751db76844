package config

import "testing"

func TestBoardFromEnvOverridesDefaults(t *testing.T) {
	t.Setenv("ARENA_BOARD_WIDTH", "50")
	t.Setenv("ARENA_MAX_TURNS", "200")

	cfg := BoardFromEnv()
	if cfg.Width != 50 {
		t.Errorf("Width = %d, want 50", cfg.Width)
	}
	if cfg.MaxTurns != 200 {
		t.Errorf("MaxTurns = %d, want 200", cfg.MaxTurns)
	}
	if cfg.Height != DefaultBoard().Height {
		t.Errorf("Height = %d, want default %d", cfg.Height, DefaultBoard().Height)
	}
}

func TestStoreFromEnvPrefersArenaSpecificVar(t *testing.T) {
	t.Setenv("WASMDOME_ENGINE_REDIS_URL", "redis://engine:6379")
	t.Setenv("REDIS_URL", "redis://generic:6379")

	cfg := StoreFromEnv()
	if cfg.RedisURL != "redis://engine:6379" {
		t.Errorf("RedisURL = %q, want engine-specific var to win", cfg.RedisURL)
	}
}

func TestStoreFromEnvEmptyMeansInMemory(t *testing.T) {
	cfg := StoreFromEnv()
	if cfg.RedisURL != "" {
		t.Errorf("RedisURL = %q, want empty", cfg.RedisURL)
	}
}

func TestDispatchFromEnvOverridesTurnTimeout(t *testing.T) {
	t.Setenv("ARENA_DISPATCH_TIMEOUT_MS", "2500")

	cfg := DispatchFromEnv()
	if cfg.TurnTimeout.Milliseconds() != 2500 {
		t.Errorf("TurnTimeout = %v, want 2500ms", cfg.TurnTimeout)
	}
	if cfg.HealthTimeout != DefaultDispatch().HealthTimeout {
		t.Errorf("HealthTimeout changed unexpectedly: %v", cfg.HealthTimeout)
	}
}

func TestLoadAssemblesAllSections(t *testing.T) {
	cfg := Load()
	if cfg.Board.Width == 0 || cfg.Server.Port == 0 {
		t.Errorf("Load() returned zero-valued sections: %+v", cfg)
	}
}
