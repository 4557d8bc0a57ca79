package terrain

import (
	"context"
	"fmt"

	"github.com/bbernstein/stnmap/internal/config"
	"github.com/bbernstein/stnmap/internal/gmt"
	"github.com/rs/zerolog/log"
)

// NewFetcherFromConfig builds a Fetcher with the cache directory from cfg and,
// when cacheCfg enables it, an S3 mirror.
func NewFetcherFromConfig(ctx context.Context, runner gmt.Runner, cfg *config.Config, cacheCfg *config.CacheConfig, fallback bool) (*Fetcher, error) {
	opts := Options{
		CacheDir: cfg.CacheDir,
		Fallback: fallback,
		LRUSize:  cacheCfg.LRUSize,
	}

	if cacheCfg.S3Enabled() {
		client, err := NewS3Client(ctx, cacheCfg)
		if err != nil {
			return nil, fmt.Errorf("creating S3 client: %w", err)
		}
		opts.Mirror = NewS3Mirror(client, cacheCfg.S3Bucket, cacheCfg.S3Prefix)
		log.Info().Str("bucket", cacheCfg.S3Bucket).Str("prefix", cacheCfg.S3Prefix).Msg("Terrain S3 mirror enabled")
	}

	return NewFetcher(runner, opts)
}
