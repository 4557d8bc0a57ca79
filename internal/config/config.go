// Package config reads tool settings from the environment and sets up
// logging.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultEnvironment = "local"
	defaultHTTPTimeout = 30 * time.Second
	defaultMaxRetries  = 3
	defaultGMTBinary   = "gmt"
	defaultCacheDir    = "cache"
	defaultProfile     = "classic"
)

type Config struct {
	Environment string
	LogLevel    zerolog.Level

	// Remote inventory fetches.
	HTTPTimeout time.Duration
	MaxRetries  int

	GMTBinary string
	CacheDir  string
	Profile   string
}

type Option func(*Config)

func WithEnvironment(env string) Option {
	return func(c *Config) { c.Environment = env }
}

// WithLogLevel parses a zerolog level name. Unknown names mean info.
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsed, err := zerolog.ParseLevel(level)
		if err != nil || parsed == zerolog.NoLevel {
			parsed = zerolog.InfoLevel
		}
		c.LogLevel = parsed
	}
}

func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) { c.HTTPTimeout = timeout }
}

func WithMaxRetries(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxRetries = n
		}
	}
}

// WithGMTBinary sets the gmt executable, either a name looked up in PATH or
// an absolute path.
func WithGMTBinary(path string) Option {
	return func(c *Config) { c.GMTBinary = path }
}

// WithCacheDir sets where downloaded terrain grids are kept.
func WithCacheDir(dir string) Option {
	return func(c *Config) { c.CacheDir = dir }
}

func WithProfile(name string) Option {
	return func(c *Config) { c.Profile = name }
}

func New(opts ...Option) *Config {
	cfg := &Config{
		Environment: defaultEnvironment,
		LogLevel:    zerolog.InfoLevel,
		HTTPTimeout: defaultHTTPTimeout,
		MaxRetries:  defaultMaxRetries,
		GMTBinary:   defaultGMTBinary,
		CacheDir:    defaultCacheDir,
		Profile:     defaultProfile,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// InitializeLogging applies the level globally. Local and development runs
// log through a console writer on stderr; anything else emits JSON.
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	switch c.Environment {
	case "local", "development":
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}
}

// LoadDotEnv reads .env files into the process environment. Variables
// already set win over the file. A missing file is reported as an error the
// caller is free to ignore.
func LoadDotEnv(paths ...string) error {
	return godotenv.Load(paths...)
}

func LoadFromEnv() *Config {
	return New(
		WithEnvironment(getEnvOrDefault("ENV", defaultEnvironment)),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WithHTTPTimeout(getDurationEnvOrDefault("HTTP_TIMEOUT", defaultHTTPTimeout)),
		WithMaxRetries(getEnvInt("HTTP_MAX_RETRIES", defaultMaxRetries)),
		WithGMTBinary(getEnvOrDefault("GMT_BIN", defaultGMTBinary)),
		WithCacheDir(getEnvOrDefault("STNMAP_CACHE_DIR", defaultCacheDir)),
		WithProfile(getEnvOrDefault("STNMAP_PROFILE", defaultProfile)),
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Bare numbers are seconds.
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
