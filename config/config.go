package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults used when neither a flag nor the environment sets a value
const (
	DefaultPort          = "8080"
	DefaultPingInterval  = 30 * time.Second
	DefaultIdleTimeout   = 60 * time.Second
	DefaultSendQueueSize = 256
)

type Config struct {
	Port           string
	Environment    string
	LogLevel       string
	AllowedOrigins []string
	JWTSecret      string
	AdminPassword  string
	PingInterval   time.Duration
	IdleTimeout    time.Duration
	SendQueueSize  int
	Redis          RedisConfig
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis host was configured
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, r.Port)
}

// Options carries command-line overrides. Empty fields fall through to the
// environment and then to defaults.
type Options struct {
	Port        string
	Environment string
	LogLevel    string
	RedisHost   string
}

// Load reads configuration with the following priority:
// 1. CLI flags (passed via Options)
// 2. Environment variables
// 3. Defaults
func Load(opts Options) (*Config, error) {
	// Parse allowed origins (comma-separated)
	originsStr := getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	var origins []string
	for _, o := range strings.Split(originsStr, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	pingInterval, err := getDuration("PING_INTERVAL", DefaultPingInterval)
	if err != nil {
		return nil, err
	}
	if pingInterval <= 0 {
		return nil, fmt.Errorf("PING_INTERVAL must be positive, got %s", pingInterval)
	}
	idleTimeout, err := getDuration("IDLE_TIMEOUT", DefaultIdleTimeout)
	if err != nil {
		return nil, err
	}
	// A peer is only heard from once per ping, so the idle window must span
	// more than one interval. Zero turns eviction off.
	if idleTimeout < 0 || (idleTimeout > 0 && idleTimeout <= pingInterval) {
		return nil, fmt.Errorf("IDLE_TIMEOUT must be 0 or longer than PING_INTERVAL (%s), got %s", pingInterval, idleTimeout)
	}
	queueSize, err := getInt("SEND_QUEUE_SIZE", DefaultSendQueueSize)
	if err != nil {
		return nil, err
	}
	redisDB, err := getInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	port := firstNonEmpty(opts.Port, os.Getenv("PORT"), DefaultPort)
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", port, err)
	}

	return &Config{
		Port:           port,
		Environment:    firstNonEmpty(opts.Environment, os.Getenv("ENVIRONMENT"), "development"),
		LogLevel:       firstNonEmpty(opts.LogLevel, os.Getenv("LOG_LEVEL"), "info"),
		AllowedOrigins: origins,
		JWTSecret:      getEnv("JWT_SECRET", "change-me-in-production"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		PingInterval:   pingInterval,
		IdleTimeout:    idleTimeout,
		SendQueueSize:  queueSize,
		Redis: RedisConfig{
			Host:     firstNonEmpty(opts.RedisHost, os.Getenv("REDIS_HOST")),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
