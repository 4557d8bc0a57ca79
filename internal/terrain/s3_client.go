package terrain

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bbernstein/stnmap/internal/config"
	"github.com/rs/zerolog/log"
)

// NewS3Client creates an S3 client from the cache configuration. A custom
// endpoint (MinIO, localstack) switches to path-style addressing when asked.
func NewS3Client(ctx context.Context, cfg *config.CacheConfig) (*s3.Client, error) {
	var loadOptions []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		loadOptions = append(loadOptions, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, err
	}

	if cfg.S3Endpoint != "" {
		log.Debug().Str("endpoint", cfg.S3Endpoint).Msg("Using custom S3 endpoint")
		return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = cfg.S3UsePathURL
		}), nil
	}

	return s3.NewFromConfig(awsCfg), nil
}
