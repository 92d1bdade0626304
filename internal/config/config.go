package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration
type Config struct {
	Discord DiscordConfig `json:"discord"`
	Store   StoreConfig   `json:"store"`
	Rating  RatingConfig  `json:"rating"`
	Jobs    []string      `json:"jobs"`
	Events  EventsConfig  `json:"events"`
	Server  ServerConfig  `json:"server"`
	Logging LoggingConfig `json:"logging"`
}

// DiscordConfig represents gateway configuration
type DiscordConfig struct {
	Token               string   `json:"-"`
	Prefix              string   `json:"prefix"`
	StaffRoleIDs        []string `json:"staff_role_ids"`
	StaffRoleNames      []string `json:"staff_role_names"`
	WhitelistCategoryID string   `json:"whitelist_category_id"`
	LogReactions        bool     `json:"log_reactions"`
}

// StoreConfig represents record store configuration
type StoreConfig struct {
	Driver      string `json:"driver"` // file, sqlite, postgres, redis, memory
	DataDir     string `json:"data_dir"`
	SQLitePath  string `json:"sqlite_path"`
	DatabaseURL string `json:"-"`
	RedisURL    string `json:"-"`
	RedisPrefix string `json:"redis_prefix"`
	OnCorrupt   string `json:"on_corrupt"` // abort, reset
}

// RatingConfig represents rating policy configuration
type RatingConfig struct {
	// Cooldown is how long a rater waits before rating the same staff member
	// again. Zero allows unlimited ratings.
	Cooldown time.Duration `json:"cooldown"`
}

// EventsConfig represents domain event bus configuration
type EventsConfig struct {
	BufferSize int `json:"buffer_size"`
}

// ServerConfig represents the keep-alive HTTP server configuration
type ServerConfig struct {
	Enabled      bool          `json:"enabled"`
	Host         string        `json:"host"`
	Port         string        `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	JWTSecret    string        `json:"-"`
	TokenTTL     time.Duration `json:"token_ttl"`

	// RateLimit is the per-IP request budget for the read API within
	// RateLimitWindow. It needs REDIS_URL; zero disables throttling.
	RateLimit       int           `json:"rate_limit"`
	RateLimitWindow time.Duration `json:"rate_limit_window"`
	CORSOrigins     []string      `json:"cors_origins"`
	TrustedProxies  []string      `json:"trusted_proxies"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // json, text
}

// Load loads configuration from environment variables and defaults
func Load() (*Config, error) {
	config := &Config{
		Discord: DiscordConfig{
			Token:               getEnv("DISCORD_BOT_TOKEN", ""),
			Prefix:              getEnv("BOT_PREFIX", "pc!"),
			StaffRoleIDs:        getEnvSlice("STAFF_ROLE_IDS", nil),
			StaffRoleNames:      getEnvSlice("STAFF_ROLE_NAMES", []string{"Staff", "Admin", "Moderador"}),
			WhitelistCategoryID: getEnv("WHITELIST_CATEGORY_ID", ""),
			LogReactions:        getEnvBool("LOG_REACTIONS", true),
		},
		Store: StoreConfig{
			Driver:      getEnv("STORE_DRIVER", "file"),
			DataDir:     getEnv("DATA_DIR", "data"),
			SQLitePath:  getEnv("SQLITE_PATH", "data/pcbot.db"),
			DatabaseURL: getEnv("DATABASE_URL", ""),
			RedisURL:    getEnv("REDIS_URL", ""),
			RedisPrefix: getEnv("REDIS_PREFIX", "pcbot:collection:"),
			OnCorrupt:   getEnv("STORE_ON_CORRUPT", "abort"),
		},
		Rating: RatingConfig{
			Cooldown: getEnvDuration("RATING_COOLDOWN", 0),
		},
		Jobs: getEnvSlice("JOBS", []string{"policia", "medico", "mecanico"}),
		Events: EventsConfig{
			BufferSize: getEnvInt("EVENT_BUFFER", 64),
		},
		Server: ServerConfig{
			Enabled:      getEnvBool("HTTP_ENABLED", true),
			Host:         getEnv("HTTP_HOST", "0.0.0.0"),
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			JWTSecret:    getEnv("API_JWT_SECRET", ""),
			TokenTTL:     getEnvDuration("API_TOKEN_TTL", 24*time.Hour),

			RateLimit:       getEnvInt("API_RATE_LIMIT", 60),
			RateLimitWindow: getEnvDuration("API_RATE_LIMIT_WINDOW", time.Minute),
			CORSOrigins:     getEnvSlice("API_CORS_ORIGINS", nil),
			TrustedProxies:  getEnvSlice("API_TRUSTED_PROXIES", nil),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	return config, nil
}

// Validate validates the configuration. A missing gateway token aborts startup.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("DISCORD_BOT_TOKEN is required")
	}

	if c.Discord.Prefix == "" {
		return fmt.Errorf("bot prefix is required")
	}

	switch c.Store.Driver {
	case "file":
		if c.Store.DataDir == "" {
			return fmt.Errorf("data directory is required for the file store")
		}
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case "redis":
		if c.Store.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis store")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported store driver: %s", c.Store.Driver)
	}

	if c.Store.OnCorrupt != "abort" && c.Store.OnCorrupt != "reset" {
		return fmt.Errorf("STORE_ON_CORRUPT must be abort or reset, got %q", c.Store.OnCorrupt)
	}

	if c.Rating.Cooldown < 0 {
		return fmt.Errorf("RATING_COOLDOWN cannot be negative")
	}

	if len(c.Jobs) == 0 {
		return fmt.Errorf("at least one job is required")
	}

	if c.Server.RateLimit < 0 {
		return fmt.Errorf("API_RATE_LIMIT cannot be negative")
	}

	if c.Server.RateLimit > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("API_RATE_LIMIT_WINDOW must be positive")
	}

	if c.Events.BufferSize <= 0 {
		return fmt.Errorf("EVENT_BUFFER must be positive")
	}

	return nil
}

// APIEnabled reports whether the authenticated read API is served
func (c *Config) APIEnabled() bool {
	return c.Server.Enabled && c.Server.JWTSecret != ""
}

// RateLimitEnabled reports whether the read API is throttled through Redis
func (c *Config) RateLimitEnabled() bool {
	return c.APIEnabled() && c.Server.RateLimit > 0 && c.Store.RedisURL != ""
}

// Address returns the HTTP listen address
func (c *Config) Address() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Helper functions for environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
