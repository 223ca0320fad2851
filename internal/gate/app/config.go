package app

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/tradelane/tradegate/pkg/jwtx"
)

type Config struct {
	SessionSecret []byte // Required: HMAC secret for session tokens (min 32 bytes)
	MasterKey     []byte // Required: master key material for encrypting TOTP secrets at rest

	IdentityProviderURL string // Required: base URL of the upstream identity provider
	IdentityAPIKey      string // Optional: service credential for provider lookups

	Issuer       string        // Optional: issuer claim for session tokens (default: tradegate)
	SessionTTL   time.Duration // Optional: session token lifetime (default: 168h)
	DatabaseFile string        // Optional: path to SQLite database file (default: ./gate.db)
	RedisAddr    string        // Optional: when set, rate-limit windows live in Redis instead of memory

	RetryMaxAttempts  int           // Optional: provider retries after the first attempt (default: 3)
	RetryInitialDelay time.Duration // Optional: first backoff delay (default: 1s)
	RetryMaxDelay     time.Duration // Optional: backoff cap (default: 4s)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

var (
	ErrMissingSessionSecret = errors.New("config: GATE_SESSION_SECRET is required (min 32 bytes)")
	ErrMissingMasterKey     = errors.New("config: GATE_MASTER_KEY is required")
	ErrMissingProviderURL   = errors.New("config: GATE_IDP_URL is required")
)

// LoadConfig reads configuration from the environment, after loading a .env
// file when one exists. Missing required values fail loudly here rather than
// surfacing as broken crypto later.
func LoadConfig() (Config, error) {
	// Absent .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		SessionSecret: []byte(os.Getenv("GATE_SESSION_SECRET")),
		MasterKey:     []byte(os.Getenv("GATE_MASTER_KEY")),

		IdentityProviderURL: os.Getenv("GATE_IDP_URL"),
		IdentityAPIKey:      os.Getenv("GATE_IDP_API_KEY"),

		Issuer:       getEnvOrDefault("GATE_ISSUER", "tradegate"),
		SessionTTL:   getEnvDurationOrDefault("GATE_SESSION_TTL", jwtx.DefaultSessionTTL),
		DatabaseFile: getEnvOrDefault("GATE_DATABASE_FILE", "gate.db"),
		RedisAddr:    os.Getenv("GATE_REDIS_ADDR"),

		RetryMaxAttempts:  getEnvIntOrDefault("GATE_RETRY_MAX", 3),
		RetryInitialDelay: getEnvDurationOrDefault("GATE_RETRY_INITIAL_DELAY", time.Second),
		RetryMaxDelay:     getEnvDurationOrDefault("GATE_RETRY_MAX_DELAY", 4*time.Second),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Hour),
	}

	if len(cfg.SessionSecret) < jwtx.MinSecretBytes {
		return Config{}, ErrMissingSessionSecret
	}
	if len(cfg.MasterKey) == 0 {
		return Config{}, ErrMissingMasterKey
	}
	if cfg.IdentityProviderURL == "" {
		return Config{}, ErrMissingProviderURL
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are read as seconds.
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
