// Package config provides configuration for the application
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers accepted in STORAGE_DRIVER.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config holds all configuration for the application
type Config struct {
	API     APIConfig
	Storage StorageConfig
	Server  ServerConfig
	Logging LoggingConfig
	CORS    CORSConfig
	Session SessionConfig
}

// APIConfig holds settings of the remote platform API
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// StorageConfig holds durable session storage settings
type StorageConfig struct {
	Driver    string
	Path      string
	DSN       string
	Namespace string
	Redis     RedisConfig
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ServerConfig holds shell server settings
type ServerConfig struct {
	Host               string
	Port               int
	AllowedHosts       []string
	RateLimitPerMinute int
	MaxRequestSize     int64
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// SessionConfig holds client session behaviour settings
type SessionConfig struct {
	UnreadPollInterval time.Duration
	DropExpiredToken   bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// .env is optional for a client shell
	_ = godotenv.Load()

	return fromEnv("")
}

// fromEnv builds a Config from variables carrying the given prefix.
func fromEnv(prefix string) (*Config, error) {
	env := func(key string) string {
		return strings.TrimSpace(os.Getenv(prefix + key))
	}
	cfg := &Config{}

	// API configuration
	baseURL := env("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8000/api"
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid %sAPI_BASE_URL: %q", prefix, baseURL)
	}
	cfg.API.BaseURL = strings.TrimRight(baseURL, "/")

	timeout, err := durationOr(env("API_TIMEOUT"), 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid %sAPI_TIMEOUT: %w", prefix, err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("%sAPI_TIMEOUT must be positive", prefix)
	}
	cfg.API.Timeout = timeout

	// Storage configuration
	cfg.Storage.Driver = strings.ToLower(env("STORAGE_DRIVER"))
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverFile
	}
	cfg.Storage.Path = env("STORAGE_PATH")
	cfg.Storage.DSN = env("STORAGE_DSN")
	cfg.Storage.Namespace = env("STORAGE_NAMESPACE")
	if cfg.Storage.Namespace == "" {
		cfg.Storage.Namespace = "novelshell"
	}
	switch cfg.Storage.Driver {
	case DriverFile:
		if cfg.Storage.Path == "" {
			cfg.Storage.Path = filepath.Join(DefaultDir(), "storage.json")
		}
	case DriverSQLite:
		if cfg.Storage.Path == "" {
			cfg.Storage.Path = filepath.Join(DefaultDir(), "storage.db")
		}
	case DriverMySQL:
		if cfg.Storage.DSN == "" {
			return nil, fmt.Errorf("%sSTORAGE_DSN is required for the mysql storage driver", prefix)
		}
	case DriverRedis:
		cfg.Storage.Redis.Addr = env("REDIS_ADDR")
		if cfg.Storage.Redis.Addr == "" {
			return nil, fmt.Errorf("%sREDIS_ADDR is required for the redis storage driver", prefix)
		}
		cfg.Storage.Redis.Password = env("REDIS_PASSWORD")
		redisDB, err := intOr(env("REDIS_DB"), 0)
		if err != nil {
			return nil, fmt.Errorf("invalid %sREDIS_DB: %w", prefix, err)
		}
		cfg.Storage.Redis.DB = redisDB
	case DriverMemory:
	default:
		return nil, fmt.Errorf("invalid %sSTORAGE_DRIVER: %q", prefix, cfg.Storage.Driver)
	}

	// Server configuration
	cfg.Server.Host = env("SERVER_HOST")
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	cfg.Server.AllowedHosts = splitList(env("SERVER_ALLOWED_HOSTS"))
	if len(cfg.Server.AllowedHosts) == 0 {
		cfg.Server.AllowedHosts = []string{"localhost", "127.0.0.1", "::1"}
	}

	serverPort, err := intOr(env("SERVER_PORT"), 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid %sSERVER_PORT: %w", prefix, err)
	}
	cfg.Server.Port = serverPort

	rateLimit, err := intOr(env("RATE_LIMIT_PER_MINUTE"), 100)
	if err != nil {
		return nil, fmt.Errorf("invalid %sRATE_LIMIT_PER_MINUTE: %w", prefix, err)
	}
	cfg.Server.RateLimitPerMinute = rateLimit
	cfg.Server.MaxRequestSize = 20 << 20

	// Logging configuration
	cfg.Logging.Level = env("LOG_LEVEL")
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	// CORS configuration
	cfg.CORS.AllowedOrigins = splitList(env("CORS_ALLOWED_ORIGINS"))

	// Session configuration
	pollInterval, err := durationOr(env("UNREAD_POLL_INTERVAL"), 0)
	if err != nil {
		return nil, fmt.Errorf("invalid %sUNREAD_POLL_INTERVAL: %w", prefix, err)
	}
	if pollInterval < 0 {
		return nil, fmt.Errorf("%sUNREAD_POLL_INTERVAL must not be negative", prefix)
	}
	cfg.Session.UnreadPollInterval = pollInterval

	if raw := env("SESSION_DROP_EXPIRED"); raw != "" {
		drop, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %sSESSION_DROP_EXPIRED: %w", prefix, err)
		}
		cfg.Session.DropExpiredToken = drop
	}

	return cfg, nil
}

// DSN returns the mysql storage connection string
func (c *Config) DSN() string {
	return c.Storage.DSN
}

// DefaultDir returns the per-user directory holding durable client state.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "novelshell")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".novelshell"
	}
	return filepath.Join(home, ".config", "novelshell")
}

// splitList splits a comma-separated value, dropping empty entries.
// An empty value gives an empty list: no cross-origin access, no extra hosts.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, item := range parts {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Addr returns the listen address of the shell server
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func intOr(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func durationOr(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}
