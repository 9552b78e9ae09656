package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file leaves fields unset.
const (
	// DefaultListen is the fallback HTTP listen address.
	DefaultListen = ":8317"
	// DefaultCookieName is the fallback session cookie name.
	DefaultCookieName = "sp_session"
	// DefaultSessionTTLHours is the fallback session lifetime in hours.
	DefaultSessionTTLHours = 72
)

// Config holds the runtime configuration for the panel server.
type Config struct {
	Listen string `yaml:"listen"` // HTTP listen address.

	Database struct {
		DSN string `yaml:"dsn"` // PostgreSQL or SQLite DSN.
	} `yaml:"database"`

	Session struct {
		CookieName   string `yaml:"cookie-name"`   // Session cookie name.
		TTLHours     int    `yaml:"ttl-hours"`     // Session lifetime in hours.
		CookieSecure bool   `yaml:"cookie-secure"` // Sets the Secure flag on the cookie.
		RedisAddr    string `yaml:"redis-addr"`    // Optional Redis address for the session store.
		RedisDB      int    `yaml:"redis-db"`      // Redis database number.
	} `yaml:"session"`

	Log struct {
		Level string `yaml:"level"` // logrus level name.
		File  string `yaml:"file"`  // Optional rotated log file path.
	} `yaml:"log"`
}

// SessionTTL returns the configured session lifetime.
func (c *Config) SessionTTL() time.Duration {
	hours := c.Session.TTLHours
	if hours <= 0 {
		hours = DefaultSessionTTLHours
	}
	return time.Duration(hours) * time.Hour
}

// ResolveConfigPath picks the config path from the argument or environment.
func ResolveConfigPath(path string) string {
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		return trimmed
	}
	if env := strings.TrimSpace(os.Getenv("SERVICEPANEL_CONFIG")); env != "" {
		return env
	}
	return "config.yaml"
}

// Load reads the YAML config file and applies environment overrides. A
// missing file is not an error as long as the environment supplies a DSN.
func Load(path string) (Config, error) {
	var cfg Config

	data, errRead := os.ReadFile(path)
	switch {
	case errRead == nil:
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
		}
	case os.IsNotExist(errRead):
		// Fall through to environment-only configuration.
	default:
		return Config{}, fmt.Errorf("config: read %s: %w", path, errRead)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return Config{}, fmt.Errorf("config: missing database dsn")
	}
	return cfg, nil
}

// applyEnvOverrides overlays environment variables onto the config.
func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("SERVICEPANEL_LISTEN")); v != "" {
		cfg.Listen = v
	}
	if v := strings.TrimSpace(os.Getenv("SERVICEPANEL_DSN")); v != "" {
		cfg.Database.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("SERVICEPANEL_COOKIE_NAME")); v != "" {
		cfg.Session.CookieName = v
	}
	if v := strings.TrimSpace(os.Getenv("SERVICEPANEL_SESSION_TTL_HOURS")); v != "" {
		if hours, errParse := strconv.Atoi(v); errParse == nil && hours > 0 {
			cfg.Session.TTLHours = hours
		}
	}
	if v := strings.TrimSpace(os.Getenv("SERVICEPANEL_REDIS_ADDR")); v != "" {
		cfg.Session.RedisAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("SERVICEPANEL_LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("SERVICEPANEL_LOG_FILE")); v != "" {
		cfg.Log.File = v
	}
}

// applyDefaults fills unset fields with defaults.
func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Listen) == "" {
		cfg.Listen = DefaultListen
	}
	if strings.TrimSpace(cfg.Session.CookieName) == "" {
		cfg.Session.CookieName = DefaultCookieName
	}
	if cfg.Session.TTLHours <= 0 {
		cfg.Session.TTLHours = DefaultSessionTTLHours
	}
	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = "info"
	}
}
