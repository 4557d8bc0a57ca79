// Package terrain retrieves earth_relief grids through GMT and keeps them in
// a local cache directory, optionally mirrored to S3.
package terrain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bbernstein/stnmap/internal/gmt"
	"github.com/bbernstein/stnmap/internal/models"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

const partialPrefix = ".partial-"

// Mirror is a second-level grid store shared between machines.
type Mirror interface {
	// Download copies key to dest and reports whether the key existed.
	Download(ctx context.Context, key, dest string) (bool, error)
	Upload(ctx context.Context, key, src string) error
}

type Options struct {
	CacheDir string
	// Fallback retries a failed download through a GeoTIFF intermediate.
	Fallback bool
	LRUSize  int
	Mirror   Mirror
}

type Fetcher struct {
	runner   gmt.Runner
	cacheDir string
	fallback bool
	lru      *lru.Cache[string, string]
	mirror   Mirror

	hits      uint64
	downloads uint64
}

func NewFetcher(runner gmt.Runner, opts Options) (*Fetcher, error) {
	if opts.CacheDir == "" {
		opts.CacheDir = "cache"
	}
	if opts.LRUSize <= 0 {
		opts.LRUSize = 64
	}

	cache, err := lru.New[string, string](opts.LRUSize)
	if err != nil {
		return nil, fmt.Errorf("creating LRU cache: %w", err)
	}

	return &Fetcher{
		runner:   runner,
		cacheDir: opts.CacheDir,
		fallback: opts.Fallback,
		lru:      cache,
		mirror:   opts.Mirror,
	}, nil
}

// Fetch returns the path of a grid covering region at res, downloading it
// only when neither the local cache nor the mirror has it.
func (f *Fetcher) Fetch(ctx context.Context, res models.Resolution, region models.Region) (string, error) {
	key := CacheKey(res, region)
	logger := log.With().Str("cache_key", key).Str("resolution", res.Key()).Logger()

	if path, ok := f.lru.Get(key); ok && fileExists(path) {
		f.hits++
		logger.Debug().Msg("LRU hit for terrain grid")
		return path, nil
	}

	if err := os.MkdirAll(f.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}

	path := filepath.Join(f.cacheDir, key)
	if fileExists(path) {
		f.hits++
		logger.Info().Msg("Using cached terrain grid")
		f.lru.Add(key, path)
		return path, nil
	}

	if f.mirror != nil {
		found, err := f.mirror.Download(ctx, key, path)
		if err != nil {
			logger.Warn().Err(err).Msg("Terrain mirror lookup failed, downloading from GMT")
		} else if found {
			logger.Info().Msg("Restored terrain grid from mirror")
			f.lru.Add(key, path)
			return path, nil
		}
	}

	logger.Info().Msg("Downloading terrain grid, high resolutions can take a while")
	if err := f.download(ctx, res, region, key, path); err != nil {
		return "", err
	}
	f.downloads++
	f.lru.Add(key, path)
	logger.Info().Msg("Terrain grid downloaded and cached")

	if f.mirror != nil {
		if err := f.mirror.Upload(ctx, key, path); err != nil {
			logger.Warn().Err(err).Msg("Failed to upload terrain grid to mirror")
		}
	}
	return path, nil
}

func (f *Fetcher) download(ctx context.Context, res models.Resolution, region models.Region, key, path string) error {
	partial := filepath.Join(f.cacheDir, partialPrefix+key)
	defer os.Remove(partial)

	_, err := f.runner.Run(ctx, nil, "grdcut", res.Dataset(), "-R"+region.String(), "-G"+partial)
	if err == nil && fileExists(partial) {
		return os.Rename(partial, path)
	}
	if err == nil {
		err = fmt.Errorf("grdcut produced no output file")
	}
	if ctx.Err() != nil {
		return &FetchError{Key: key, Err: ctx.Err()}
	}
	if !f.fallback {
		return &FetchError{Key: key, Err: err}
	}

	log.Warn().Err(err).Str("cache_key", key).Msg("NetCDF download failed, retrying through GeoTIFF")
	if ferr := f.downloadViaGeoTIFF(ctx, res, region, key, partial); ferr != nil {
		return &FetchError{Key: key, Fallback: true, Err: errors.Join(err, ferr)}
	}
	return os.Rename(partial, path)
}

func (f *Fetcher) downloadViaGeoTIFF(ctx context.Context, res models.Resolution, region models.Region, key, dest string) error {
	tif := filepath.Join(f.cacheDir, partialPrefix+strings.TrimSuffix(key, ".nc")+".tif")
	defer os.Remove(tif)

	if _, err := f.runner.Run(ctx, nil, "grdcut", res.Dataset(), "-R"+region.String(), "-G"+tif+"=gd:GTiff"); err != nil {
		return fmt.Errorf("cutting GeoTIFF: %w", err)
	}
	if !fileExists(tif) {
		return fmt.Errorf("grdcut produced no GeoTIFF")
	}
	if _, err := f.runner.Run(ctx, nil, "grdconvert", tif, "-G"+dest); err != nil {
		return fmt.Errorf("converting GeoTIFF to netCDF: %w", err)
	}
	if !fileExists(dest) {
		return fmt.Errorf("grdconvert produced no output file")
	}
	return nil
}

// Stats returns the grid's elevation range as reported by grdinfo -C.
func (f *Fetcher) Stats(ctx context.Context, path string) (zmin, zmax float64, err error) {
	out, err := f.runner.Run(ctx, nil, "grdinfo", "-C", path)
	if err != nil {
		return 0, 0, fmt.Errorf("reading grid info: %w", err)
	}
	return parseGrdinfo(string(out))
}

// grdinfo -C prints: name w e s n z0 z1 dx dy nx ny ...
func parseGrdinfo(out string) (float64, float64, error) {
	line := strings.TrimSpace(out)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Split(line, "\t")
	if len(fields) < 7 {
		fields = strings.Fields(line)
	}
	if len(fields) < 7 {
		return 0, 0, fmt.Errorf("unexpected grdinfo output %q", out)
	}
	zmin, err := strconv.ParseFloat(strings.TrimSpace(fields[5]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing z_min: %w", err)
	}
	zmax, err := strconv.ParseFloat(strings.TrimSpace(fields[6]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing z_max: %w", err)
	}
	return zmin, zmax, nil
}

// GetCacheStats returns how often a cached grid was reused versus downloaded.
func (f *Fetcher) GetCacheStats() map[string]uint64 {
	return map[string]uint64{
		"hits":      f.hits,
		"downloads": f.downloads,
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}
