package config

import (
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// CacheConfig holds terrain grid cache settings
type CacheConfig struct {
	// In-process LRU of cache key to grid path
	LRUSize int

	// S3 mirror settings
	EnableS3     bool
	S3Bucket     string
	S3Prefix     string
	S3Endpoint   string
	S3Region     string
	S3AccessKey  string
	S3SecretKey  string
	S3UsePathURL bool
}

const (
	defaultLRUSize  = 64
	defaultS3Prefix = "terrain/"
)

// GetCacheConfig returns the cache configuration from environment variables or defaults
func GetCacheConfig() *CacheConfig {
	config := &CacheConfig{
		LRUSize:      getEnvInt("CACHE_LRU_SIZE", defaultLRUSize),
		EnableS3:     getEnvBool("CACHE_ENABLE_S3", false),
		S3Bucket:     os.Getenv("CACHE_S3_BUCKET"),
		S3Prefix:     getEnvOrDefault("CACHE_S3_PREFIX", defaultS3Prefix),
		S3Endpoint:   os.Getenv("S3_ENDPOINT"),
		S3Region:     os.Getenv("AWS_REGION"),
		S3AccessKey:  os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretKey:  os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3UsePathURL: getEnvBool("S3_FORCE_PATH_STYLE", false),
	}

	log.Debug().
		Int("LRUSize", config.LRUSize).
		Bool("EnableS3", config.EnableS3).
		Str("S3Bucket", config.S3Bucket).
		Str("S3Prefix", config.S3Prefix).
		Str("S3Endpoint", config.S3Endpoint).
		Msg("Cache configuration loaded")

	return config
}

// S3Enabled reports whether the S3 mirror should be used.
func (c *CacheConfig) S3Enabled() bool {
	return c.EnableS3 && c.S3Bucket != ""
}

func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Msg("Invalid integer value in environment variable, using default")
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
