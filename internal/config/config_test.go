package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerHost != "localhost" || cfg.ServerPort != "8080" {
		t.Errorf("wrong server defaults: %s:%s", cfg.ServerHost, cfg.ServerPort)
	}
	if cfg.TotalGameLimit != 1000 || cfg.InProgressGameLimit != 25 || cfg.RegisteredPlayerLimit != 100 {
		t.Errorf("wrong limit defaults: %+v", cfg)
	}
	if cfg.PlayerIdleThreshMin != 15 || cfg.PlayerInactiveThreshMin != 30 {
		t.Errorf("wrong player threshold defaults: %+v", cfg)
	}
	if cfg.GameIdleThreshMin != 10 || cfg.GameInactiveThreshMin != 20 || cfg.GameRetentionThreshMin != 2880 {
		t.Errorf("wrong game threshold defaults: %+v", cfg)
	}
	if cfg.IdlePlayerCheckPeriodSec != 120 || cfg.IdlePlayerCheckDelaySec != 300 {
		t.Errorf("wrong sweep schedule defaults: %+v", cfg)
	}
	if cfg.ObsoleteGameCheckPeriodSec != 300 || cfg.ObsoleteGameCheckDelaySec != 300 {
		t.Errorf("wrong obsolete sweep defaults: %+v", cfg)
	}
	if cfg.LogfilePath != "" || cfg.Debug {
		t.Errorf("wrong logging defaults: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("REGISTERED_PLAYER_LIMIT", "5")
	t.Setenv("DEBUG", "true")
	cfg := Load()
	if cfg.ServerPort != "9000" {
		t.Errorf("port override ignored: %s", cfg.ServerPort)
	}
	if cfg.RegisteredPlayerLimit != 5 {
		t.Errorf("limit override ignored: %d", cfg.RegisteredPlayerLimit)
	}
	if !cfg.Debug {
		t.Errorf("debug override ignored")
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("TOTAL_GAME_LIMIT", "lots")
	t.Setenv("DEBUG", "sure")
	cfg := Load()
	if cfg.TotalGameLimit != 1000 {
		t.Errorf("expected fallback for malformed int, got %d", cfg.TotalGameLimit)
	}
	if cfg.Debug {
		t.Errorf("expected fallback for malformed bool")
	}
}
