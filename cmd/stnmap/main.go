package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bbernstein/stnmap/internal/config"
	"github.com/bbernstein/stnmap/internal/gmt"
	"github.com/bbernstein/stnmap/internal/inventory"
	"github.com/bbernstein/stnmap/internal/models"
	"github.com/bbernstein/stnmap/internal/plot"
	"github.com/bbernstein/stnmap/internal/render"
	"github.com/bbernstein/stnmap/internal/terrain"
	"github.com/bbernstein/stnmap/pkg/http/client"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type cliOptions struct {
	request  plot.Request
	fallback *bool
	cacheDir string
	logLevel string
}

func parseFlags(args []string, stderr io.Writer, defaultProfile string) (*cliOptions, error) {
	fs := flag.NewFlagSet("stnmap", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		source     = fs.String("dataless", "", "Dataless SEED or StationXML file, or an http(s) URL (required)")
		output     = fs.String("output", plot.DefaultOutput, "Output image; the extension selects the format (png, jpg, tif, pdf, eps)")
		regionFlag = fs.String("region", "", "Map region lon_min/lon_max/lat_min/lat_max")
		resolution = fs.String("resolution", string(models.Resolution03s), "Terrain resolution: 01m, 30s, 15s, 03s or 01s")
		labels     = fs.Bool("labels", false, "Label stations with NET.STA")
		title      = fs.String("title", "", "Map title")
		cpt        = fs.String("cpt", "", "Color table file or GMT master CPT name (default depends on profile)")
		colorbar   = fs.Bool("colorbar", false, "Draw the elevation legend")
		padding    = fs.Float64("padding", 0, "Degrees added around the stations (default depends on profile)")
		minRange   = fs.Float64("min-range", 0, "Minimum span in degrees for each axis of a computed region")
		coast      = fs.Bool("coast", false, "Draw coastlines")
		noCoast    = fs.Bool("no-coast", false, "Do not draw coastlines")
		profile    = fs.String("profile", defaultProfile, "Map profile: "+strings.Join(plot.ProfileNames(), ", "))
		fallback   = fs.Bool("fallback", false, "Retry failed terrain downloads through GeoTIFF (default depends on profile)")
		cacheDir   = fs.String("cache-dir", "", "Terrain grid cache directory")
		logLevel   = fs.String("log-level", "", "Log level: debug, info, warn, error")
	)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if *source == "" {
		return nil, errors.New("-dataless is required")
	}

	res, err := models.ParseResolution(*resolution)
	if err != nil {
		return nil, err
	}
	if _, err := plot.LookupProfile(*profile); err != nil {
		return nil, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	opts := &cliOptions{
		request: plot.Request{
			Source:     *source,
			Output:     *output,
			Region:     *regionFlag,
			Resolution: res,
			Labels:     *labels,
			Title:      *title,
			CPT:        *cpt,
			Legend:     *colorbar,
			MinRange:   *minRange,
			Profile:    *profile,
		},
		cacheDir: *cacheDir,
		logLevel: *logLevel,
	}

	if set["padding"] {
		if *padding < 0 {
			return nil, fmt.Errorf("-padding must not be negative")
		}
		opts.request.Padding = padding
	}
	if *minRange < 0 {
		return nil, fmt.Errorf("-min-range must not be negative")
	}

	switch {
	case set["coast"] && set["no-coast"] && *coast && *noCoast:
		return nil, errors.New("-coast and -no-coast are mutually exclusive")
	case set["no-coast"]:
		drawCoast := !*noCoast
		opts.request.Coast = &drawCoast
	case set["coast"]:
		opts.request.Coast = coast
	}

	if set["fallback"] {
		opts.fallback = fallback
	}
	return opts, nil
}

func run(ctx context.Context, args []string) error {
	dotEnvErr := config.LoadDotEnv()
	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()
	if dotEnvErr != nil {
		log.Debug().Err(dotEnvErr).Msg("No .env file loaded, using environment variables")
	}

	opts, err := parseFlags(args, os.Stderr, cfg.Profile)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		config.WithLogLevel(opts.logLevel)(cfg)
		zerolog.SetGlobalLevel(cfg.LogLevel)
	}
	if opts.cacheDir != "" {
		cfg.CacheDir = opts.cacheDir
	}

	profile, err := plot.LookupProfile(opts.request.Profile)
	if err != nil {
		return err
	}
	fallback := profile.Fallback
	if opts.fallback != nil {
		fallback = *opts.fallback
	}

	runner := gmt.NewExecRunner(cfg.GMTBinary).WithEnv(fmt.Sprintf("GMT_SESSION_NAME=stnmap-%d", os.Getpid()))

	fetcher, err := terrain.NewFetcherFromConfig(ctx, runner, cfg, config.GetCacheConfig(), fallback)
	if err != nil {
		return err
	}

	httpClient := client.New(client.Options{
		Timeout:    cfg.HTTPTimeout,
		MaxRetries: cfg.MaxRetries,
	})

	plotter := plot.NewPlotter(inventory.NewLoader(httpClient), fetcher, render.NewRenderer(runner, "."))

	log.Info().
		Str("profile", profile.Name).
		Str("resolution", string(opts.request.Resolution)).
		Bool("fallback", fallback).
		Msg("Starting station map")

	if err := plotter.Run(ctx, opts.request); err != nil {
		return err
	}

	stats := fetcher.GetCacheStats()
	log.Debug().Uint64("hits", stats["hits"]).Uint64("downloads", stats["downloads"]).Msg("Terrain cache stats")
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		stop()
		log.Fatal().Err(err).Msg("Station map failed")
	}
}
