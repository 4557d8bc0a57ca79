// Package previews renders one sample map per color table so CPTs can be
// compared side by side.
package previews

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bbernstein/stnmap/internal/inventory"
	"github.com/bbernstein/stnmap/internal/models"
	"github.com/bbernstein/stnmap/internal/plot"
	"github.com/bbernstein/stnmap/internal/region"
	"github.com/bbernstein/stnmap/internal/render"
	"github.com/rs/zerolog/log"
)

const (
	DefaultCPTDir     = "cpt"
	DefaultSource     = "BJ.dataless"
	DefaultResolution = models.Resolution03s

	titleOffset = 0.08
)

type Batch struct {
	CPTDir     string
	Source     string
	Resolution models.Resolution
}

type Result struct {
	CPT    string
	Output string
	Err    error
}

type Summary struct {
	Results []Result
}

func (s Summary) Total() int { return len(s.Results) }

func (s Summary) Succeeded() int {
	n := 0
	for _, r := range s.Results {
		if r.Err == nil {
			n++
		}
	}
	return n
}

func (s Summary) AllSucceeded() bool {
	return s.Total() > 0 && s.Succeeded() == s.Total()
}

type Generator struct {
	inventory inventory.Reader
	terrain   plot.Terrain
	renderer  plot.MapRenderer
}

func NewGenerator(inv inventory.Reader, terrain plot.Terrain, renderer plot.MapRenderer) *Generator {
	return &Generator{inventory: inv, terrain: terrain, renderer: renderer}
}

// Run writes <name>.png next to every <name>.cpt in b.CPTDir. A failing
// table is recorded in the summary and does not stop the batch; only
// problems shared by all previews are returned as errors.
func (g *Generator) Run(ctx context.Context, b Batch) (Summary, error) {
	if b.CPTDir == "" {
		b.CPTDir = DefaultCPTDir
	}
	if b.Source == "" {
		b.Source = DefaultSource
	}
	if b.Resolution == "" {
		b.Resolution = DefaultResolution
	}

	cpts, err := FindCPTs(b.CPTDir)
	if err != nil {
		return Summary{}, err
	}
	log.Info().Int("cpt_count", len(cpts)).Str("dir", b.CPTDir).Msg("Found color tables")

	stations, err := g.inventory.Read(ctx, b.Source)
	if err != nil {
		return Summary{}, fmt.Errorf("reading inventory: %w", err)
	}
	mapRegion, err := region.Compute(stations, region.DefaultPadding)
	if err != nil {
		return Summary{}, err
	}
	grid, err := g.terrain.Fetch(ctx, b.Resolution, mapRegion)
	if err != nil {
		return Summary{}, fmt.Errorf("fetching terrain: %w", err)
	}

	var summary Summary
	for _, cpt := range cpts {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		name := strings.TrimSuffix(filepath.Base(cpt), filepath.Ext(cpt))
		output := filepath.Join(filepath.Dir(cpt), name+".png")
		logger := log.With().Str("cpt", name).Logger()

		logger.Info().Msg("Generating preview")
		err := g.renderer.Render(ctx, render.Map{
			Region:   mapRegion,
			Grid:     grid,
			Stations: stations,
			Output:   output,
		}, Options(cpt, name, mapRegion))
		if err != nil {
			logger.Error().Err(err).Msg("Preview failed")
		} else {
			logger.Info().Str("output", output).Msg("Preview written")
		}
		summary.Results = append(summary.Results, Result{CPT: cpt, Output: output, Err: err})
	}

	log.Info().
		Int("succeeded", summary.Succeeded()).
		Int("total", summary.Total()).
		Msgf("Previews done: %d/%d succeeded", summary.Succeeded(), summary.Total())
	return summary, nil
}

// Options is the preview layout: a smaller map with a faint coastline and a
// caption centred above the frame.
func Options(cpt, name string, r models.Region) render.Options {
	lon, _ := r.Center()

	opts := render.DefaultOptions()
	opts.Projection = "M15c"
	opts.CPT = cpt
	opts.Coast = &render.CoastFaint
	opts.Marker.Style = "t0.5c"
	opts.Marker.Pen = "1.0p,120/20/20"
	opts.Ticks = render.TicksFixed
	opts.FixedTick = 1
	opts.Legend = true
	opts.LegendPosition = "JMR+w10c/0.5c+o1.5c/0c"
	opts.Annotations = []render.Annotation{{
		Text:    "CPT Preview: " + name,
		Lon:     lon,
		Lat:     r.LatMax + r.LatSpan()*titleOffset,
		Font:    "16p,Helvetica-Bold,gray30",
		Justify: "CB",
	}}
	return opts
}

// FindCPTs lists the *.cpt files in dir, sorted by name.
func FindCPTs(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("color table directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("color table directory %s is not a directory", dir)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.cpt"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no .cpt files in %s", dir)
	}
	sort.Strings(matches)
	return matches, nil
}
