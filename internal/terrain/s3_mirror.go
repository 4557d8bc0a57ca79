package terrain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

// S3Client defines the interface for S3 operations we need
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Mirror keeps downloaded grids in a bucket so other machines can skip the
// GMT download.
type S3Mirror struct {
	client     S3Client
	bucketName string
	prefix     string
}

func NewS3Mirror(client S3Client, bucketName, prefix string) *S3Mirror {
	return &S3Mirror{client: client, bucketName: bucketName, prefix: prefix}
}

func (m *S3Mirror) objectKey(key string) string {
	return path.Join(m.prefix, key)
}

// Download writes the object for key to dest. A missing object is not an
// error.
func (m *S3Mirror) Download(ctx context.Context, key, dest string) (bool, error) {
	if m.bucketName == "" {
		return false, fmt.Errorf("empty bucket name")
	}

	result, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucketName),
		Key:    aws.String(m.objectKey(key)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return false, nil
		}
		return false, fmt.Errorf("getting %s from S3: %w", key, err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing S3 object body")
		}
	}(result.Body)

	tmp, err := os.CreateTemp(filepath.Dir(dest), partialPrefix+"s3-*.nc")
	if err != nil {
		return false, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, result.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return false, fmt.Errorf("writing %s: %w", key, err)
	}
	if n == 0 {
		return false, nil
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return false, fmt.Errorf("moving %s into cache: %w", key, err)
	}

	log.Debug().Str("cache_key", key).Int64("bytes", n).Msg("Downloaded terrain grid from S3")
	return true, nil
}

// Upload stores the grid at src under key.
func (m *S3Mirror) Upload(ctx context.Context, key, src string) error {
	if m.bucketName == "" {
		return fmt.Errorf("empty bucket name")
	}

	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucketName),
		Key:           aws.String(m.objectKey(key)),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String("application/x-netcdf"),
	})
	if err != nil {
		return fmt.Errorf("saving to S3: %w", err)
	}

	log.Debug().Str("cache_key", key).Int64("bytes", info.Size()).Msg("Saved terrain grid to S3 mirror")
	return nil
}
