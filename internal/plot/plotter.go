// Package plot runs the station map pipeline: inventory, region, terrain and
// rendering.
package plot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bbernstein/stnmap/internal/inventory"
	"github.com/bbernstein/stnmap/internal/models"
	"github.com/bbernstein/stnmap/internal/region"
	"github.com/bbernstein/stnmap/internal/render"
	"github.com/rs/zerolog/log"
)

// Terrain supplies elevation grids. *terrain.Fetcher implements it.
type Terrain interface {
	Fetch(ctx context.Context, res models.Resolution, r models.Region) (string, error)
	Stats(ctx context.Context, path string) (zmin, zmax float64, err error)
}

// MapRenderer draws a map. *render.Renderer implements it.
type MapRenderer interface {
	Render(ctx context.Context, m render.Map, opts render.Options) error
}

// Request is one map invocation. Nil pointer fields fall back to the
// profile.
type Request struct {
	Source     string
	Output     string
	Region     string
	Resolution models.Resolution
	Labels     bool
	Title      string
	CPT        string
	Legend     bool
	Padding    *float64
	MinRange   float64
	Coast      *bool
	Profile    string
}

const DefaultOutput = "temp_style_map.png"

type Plotter struct {
	inventory inventory.Reader
	terrain   Terrain
	renderer  MapRenderer
}

func NewPlotter(inv inventory.Reader, terrain Terrain, renderer MapRenderer) *Plotter {
	return &Plotter{
		inventory: inv,
		terrain:   terrain,
		renderer:  renderer,
	}
}

func (p *Plotter) Run(ctx context.Context, req Request) error {
	profile, err := LookupProfile(req.Profile)
	if err != nil {
		return err
	}
	if req.Resolution == "" {
		req.Resolution = models.Resolution03s
	}
	if req.Output == "" {
		req.Output = DefaultOutput
	}

	stations, err := p.inventory.Read(ctx, req.Source)
	if err != nil {
		return fmt.Errorf("reading inventory: %w", err)
	}
	log.Info().Int("station_count", len(stations)).Msg("Found stations")

	mapRegion, err := p.resolveRegion(req, profile, stations)
	if err != nil {
		return err
	}

	grid, err := p.terrain.Fetch(ctx, req.Resolution, mapRegion)
	if err != nil {
		return fmt.Errorf("fetching terrain: %w", err)
	}
	if zmin, zmax, err := p.terrain.Stats(ctx, grid); err != nil {
		log.Warn().Err(err).Str("grid", grid).Msg("Could not read elevation range")
	} else {
		log.Info().Float64("z_min", zmin).Float64("z_max", zmax).Msg("Terrain elevation range")
	}

	if dir := filepath.Dir(req.Output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	return p.renderer.Render(ctx, render.Map{
		Region:   mapRegion,
		Grid:     grid,
		Stations: stations,
		Output:   req.Output,
	}, renderOptions(req, profile))
}

func (p *Plotter) resolveRegion(req Request, profile Profile, stations []models.Station) (models.Region, error) {
	if req.Region != "" {
		return region.ParseManual(req.Region, profile.ValidateRegion)
	}

	r, err := region.Compute(stations, padding(req, profile, stations))
	if err != nil {
		return models.Region{}, err
	}
	if req.MinRange > 0 {
		r = region.EnsureMinRange(r, req.MinRange)
		log.Info().Str("region", r.String()).Float64("min_range", req.MinRange).Msg("Applied minimum map range")
	}
	if profile.ValidateRegion {
		if err := r.Validate(); err != nil {
			return models.Region{}, fmt.Errorf("%w: %v", region.ErrInvalidRegion, err)
		}
	}
	return r, nil
}

func padding(req Request, profile Profile, stations []models.Station) float64 {
	switch {
	case req.Padding != nil:
		return *req.Padding
	case profile.AutoPadding:
		return region.AutoPadding(stations)
	default:
		return region.DefaultPadding
	}
}

func renderOptions(req Request, profile Profile) render.Options {
	opts := render.DefaultOptions()
	opts.CPT = profile.CPT
	if req.CPT != "" {
		opts.CPT = req.CPT
	}
	opts.Coast = profile.Coast
	if req.Coast != nil {
		switch {
		case !*req.Coast:
			opts.Coast = nil
		case opts.Coast == nil:
			opts.Coast = &render.CoastStandard
		}
	}
	opts.Ticks = profile.Ticks
	opts.Labels = req.Labels
	opts.Title = req.Title
	opts.Legend = req.Legend
	return opts
}
