package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken  string           `yaml:"discord_token"`
	GuildID       string           `yaml:"guild_id"`
	LogLevel      string           `yaml:"log_level"`
	Mongo         MongoConfig      `yaml:"mongo"`
	Roles         RoleConfig       `yaml:"roles"`
	Channels      ChannelConfig    `yaml:"channels"`
	Reconciler    ReconcilerConfig `yaml:"reconciler"`
	Review        ReviewConfig     `yaml:"review"`
	Notifications NotifyConfig     `yaml:"notifications"`
	Health        HealthConfig     `yaml:"health"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type RoleConfig struct {
	Moderator string `yaml:"moderator"`
	Mute      string `yaml:"mute"`
}

type ChannelConfig struct {
	ModLog  string `yaml:"mod_log"`
	Admin   string `yaml:"admin"`
	Archive string `yaml:"archive"`
}

type ReconcilerConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
	BatchSize       int `yaml:"batch_size"`
}

type ReviewConfig struct {
	TimeoutSeconds     int `yaml:"timeout_seconds"`
	NotifyCooldownHrs  int `yaml:"notify_cooldown_hours"`
	WarningExpiryDays  int `yaml:"warning_expiry_days"`
	PresenceTTLMinutes int `yaml:"presence_ttl_minutes"`
}

type NotifyConfig struct {
	DMOnPunishment bool        `yaml:"dm_on_punishment"`
	DailySummary   bool        `yaml:"daily_summary"`
	EmbedColors    EmbedColors `yaml:"embed_colors"`
}

type EmbedColors struct {
	Action  int `yaml:"action"`
	Warning int `yaml:"warning"`
	Error   int `yaml:"error"`
}

type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "mechabowser",
		},
		Reconciler: ReconcilerConfig{
			IntervalSeconds: 30,
			BatchSize:       200,
		},
		Review: ReviewConfig{
			TimeoutSeconds:     900,
			NotifyCooldownHrs:  24,
			WarningExpiryDays:  30,
			PresenceTTLMinutes: 1440,
		},
		Notifications: NotifyConfig{
			DMOnPunishment: true,
			DailySummary:   true,
			EmbedColors: EmbedColors{
				Action:  0x3B82F6,
				Warning: 0xF59E0B,
				Error:   0xEF4444,
			},
		},
		Health: HealthConfig{Enabled: false, Addr: ":8080"},
	}
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}
	if cfg.GuildID == "" {
		return Config{}, errors.New("GUILD_ID is required")
	}
	if cfg.Reconciler.IntervalSeconds <= 0 {
		cfg.Reconciler.IntervalSeconds = 30
	}
	if cfg.Reconciler.BatchSize <= 0 {
		cfg.Reconciler.BatchSize = 200
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.GuildID = envString("GUILD_ID", cfg.GuildID)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.Mongo.URI = envString("MONGO_URI", cfg.Mongo.URI)
	cfg.Mongo.Database = envString("MONGO_DATABASE", cfg.Mongo.Database)
	cfg.Roles.Moderator = envString("MODERATOR_ROLE_ID", cfg.Roles.Moderator)
	cfg.Roles.Mute = envString("MUTE_ROLE_ID", cfg.Roles.Mute)
	cfg.Channels.ModLog = envString("MOD_LOG_CHANNEL_ID", cfg.Channels.ModLog)
	cfg.Channels.Admin = envString("ADMIN_CHANNEL_ID", cfg.Channels.Admin)
	cfg.Channels.Archive = envString("ARCHIVE_CHANNEL_ID", cfg.Channels.Archive)
	cfg.Reconciler.IntervalSeconds = envInt("RECONCILER_INTERVAL_SECONDS", cfg.Reconciler.IntervalSeconds)
	cfg.Reconciler.BatchSize = envInt("RECONCILER_BATCH_SIZE", cfg.Reconciler.BatchSize)
	cfg.Review.TimeoutSeconds = envInt("REVIEW_TIMEOUT_SECONDS", cfg.Review.TimeoutSeconds)
	cfg.Review.NotifyCooldownHrs = envInt("REVIEW_NOTIFY_COOLDOWN_HOURS", cfg.Review.NotifyCooldownHrs)
	cfg.Review.WarningExpiryDays = envInt("WARNING_EXPIRY_DAYS", cfg.Review.WarningExpiryDays)
	cfg.Review.PresenceTTLMinutes = envInt("PRESENCE_TTL_MINUTES", cfg.Review.PresenceTTLMinutes)
	cfg.Notifications.DMOnPunishment = envBool("DM_ON_PUNISHMENT", cfg.Notifications.DMOnPunishment)
	cfg.Notifications.DailySummary = envBool("DAILY_SUMMARY", cfg.Notifications.DailySummary)
	cfg.Health.Enabled = envBool("HEALTH_ENABLED", cfg.Health.Enabled)
	cfg.Health.Addr = envString("HEALTH_ADDR", cfg.Health.Addr)
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}
