package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRequiresTokenAndGuild(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("GUILD_ID", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without token")
	}

	t.Setenv("DISCORD_TOKEN", "token")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without guild id")
	}
}

func TestLoadFromFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
discord_token: filetoken
guild_id: "123"
log_level: debug
mongo:
  database: modbot
reconciler:
  interval_seconds: 10
review:
  warning_expiry_days: 14
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DISCORD_TOKEN", "envtoken")
	t.Setenv("GUILD_ID", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DiscordToken != "envtoken" {
		t.Fatalf("env override lost: %q", cfg.DiscordToken)
	}
	if cfg.GuildID != "123" {
		t.Fatalf("guild id = %q", cfg.GuildID)
	}
	if cfg.Mongo.Database != "modbot" {
		t.Fatalf("database = %q", cfg.Mongo.Database)
	}
	if cfg.Reconciler.IntervalSeconds != 10 {
		t.Fatalf("interval = %d", cfg.Reconciler.IntervalSeconds)
	}
	if cfg.Review.WarningExpiryDays != 14 {
		t.Fatalf("expiry days = %d", cfg.Review.WarningExpiryDays)
	}
	// Untouched sections keep their defaults.
	if cfg.Reconciler.BatchSize != 200 {
		t.Fatalf("batch size = %d", cfg.Reconciler.BatchSize)
	}
	if cfg.Review.TimeoutSeconds != 900 {
		t.Fatalf("timeout = %d", cfg.Review.TimeoutSeconds)
	}
}

func TestDefaultsAreSane(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Reconciler.IntervalSeconds <= 0 || cfg.Reconciler.BatchSize <= 0 {
		t.Fatalf("reconciler defaults invalid: %+v", cfg.Reconciler)
	}
	if cfg.Review.TimeoutSeconds != 900 {
		t.Fatalf("review timeout default = %d", cfg.Review.TimeoutSeconds)
	}
	if cfg.Review.NotifyCooldownHrs != 24 {
		t.Fatalf("notify cooldown default = %d", cfg.Review.NotifyCooldownHrs)
	}
}
