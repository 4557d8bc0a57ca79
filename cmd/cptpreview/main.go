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
	"github.com/bbernstein/stnmap/internal/previews"
	"github.com/bbernstein/stnmap/internal/render"
	"github.com/bbernstein/stnmap/internal/terrain"
	"github.com/bbernstein/stnmap/pkg/http/client"
	"github.com/rs/zerolog/log"
)

var errIncomplete = errors.New("some previews failed")

func parseFlags(args []string, stderr io.Writer) (previews.Batch, error) {
	fs := flag.NewFlagSet("cptpreview", flag.ContinueOnError)
	fs.SetOutput(stderr)

	cptDir := fs.String("cpt-dir", previews.DefaultCPTDir, "Directory of .cpt files to preview")
	source := fs.String("dataless", previews.DefaultSource, "Dataless SEED or StationXML file, or an http(s) URL")
	resolution := fs.String("resolution", string(previews.DefaultResolution), "Terrain resolution: 01m, 30s, 15s, 03s or 01s")

	if err := fs.Parse(args); err != nil {
		return previews.Batch{}, err
	}
	if fs.NArg() > 0 {
		return previews.Batch{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	res, err := models.ParseResolution(*resolution)
	if err != nil {
		return previews.Batch{}, err
	}
	return previews.Batch{CPTDir: *cptDir, Source: *source, Resolution: res}, nil
}

func run(ctx context.Context, args []string) error {
	dotEnvErr := config.LoadDotEnv()
	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()
	if dotEnvErr != nil {
		log.Debug().Err(dotEnvErr).Msg("No .env file loaded, using environment variables")
	}

	batch, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	runner := gmt.NewExecRunner(cfg.GMTBinary).WithEnv(fmt.Sprintf("GMT_SESSION_NAME=cptpreview-%d", os.Getpid()))
	fetcher, err := terrain.NewFetcherFromConfig(ctx, runner, cfg, config.GetCacheConfig(), false)
	if err != nil {
		return err
	}
	httpClient := client.New(client.Options{
		Timeout:    cfg.HTTPTimeout,
		MaxRetries: cfg.MaxRetries,
	})

	generator := previews.NewGenerator(inventory.NewLoader(httpClient), fetcher, render.NewRenderer(runner, "."))
	summary, err := generator.Run(ctx, batch)
	if err != nil {
		return err
	}
	if !summary.AllSucceeded() {
		for _, r := range summary.Results {
			if r.Err != nil {
				log.Warn().Str("cpt", r.CPT).Err(r.Err).Msg("No preview generated")
			}
		}
		return fmt.Errorf("%w: %d of %d", errIncomplete, summary.Total()-summary.Succeeded(), summary.Total())
	}
	log.Info().Msg("All color table previews generated")
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
		log.Fatal().Err(err).Msg("CPT previews failed")
	}
}
