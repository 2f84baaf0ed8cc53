package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Port != 5002 || cfg.DatabaseURL != "video_call.db" || cfg.SlowConsumer != "drop" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.PingPeriod != 54*time.Second || cfg.PongWait != 60*time.Second {
		t.Fatalf("keepalive = %s/%s", cfg.PingPeriod, cfg.PongWait)
	}
	if len(cfg.AllowedOrigins) != 3 {
		t.Fatalf("allowed_origins = %v", cfg.AllowedOrigins)
	}
	if d := Default(); d.Port != cfg.Port || d.SendBuffer != cfg.SendBuffer {
		t.Fatalf("Default() = %+v", d)
	}
}

func TestFileAndEnvOverrides(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.test.yaml")
	yaml := `mode: debug
port: 9000
slow_consumer: kick
ice_servers:
  - urls: ["turn:turn.example.com:3478"]
    username: u
    credential: p
`
	if err := os.WriteFile(file, []byte(yaml), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	t.Setenv("PORT", "7000")
	t.Setenv("DATABASE_URL", "/tmp/rooms.db")
	t.Setenv("CONVO_ADMIN_TOKEN", "s3cret")

	cfg, err := load(file)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Mode != "debug" || cfg.SlowConsumer != "kick" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Port != 7000 || cfg.DatabaseURL != "/tmp/rooms.db" || cfg.AdminToken != "s3cret" {
		t.Fatalf("env values not applied: %+v", cfg)
	}
	if len(cfg.ICEServers) != 1 || cfg.ICEServers[0].Username != "u" || cfg.ICEServers[0].URLs[0] != "turn:turn.example.com:3478" {
		t.Fatalf("ice_servers = %+v", cfg.ICEServers)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"port":          func(c *Config) { c.Port = 0 },
		"ping":          func(c *Config) { c.PingPeriod = c.PongWait },
		"send_buffer":   func(c *Config) { c.SendBuffer = 0 },
		"slow_consumer": func(c *Config) { c.SlowConsumer = "ignore" },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate() accepted %+v", name, cfg)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestInvalidValueIsAnError(t *testing.T) {
	t.Setenv("CONVO_ADMIN_TOKEN", "s3cret")
	t.Setenv("CONVO_SLOW_CONSUMER", "Kick")

	cfg, err := load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("load accepted slow_consumer=Kick: %+v", cfg)
	}
	if cfg != nil {
		t.Fatalf("load returned a config alongside the error: %+v", cfg)
	}
}

func TestBrokenFileIsAnError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.broken.yaml")
	if err := os.WriteFile(file, []byte("port: [5002\nadmin_token: s3cret\n"), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := load(file)
	if err == nil || cfg != nil {
		t.Fatalf("load(broken yaml) = %+v, %v; want an error and no config", cfg, err)
	}
}
