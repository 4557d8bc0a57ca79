// Package render draws station maps through a GMT modern-mode session.
package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bbernstein/stnmap/internal/gmt"
	"github.com/bbernstein/stnmap/internal/models"
	"github.com/bbernstein/stnmap/internal/region"
	"github.com/rs/zerolog/log"
)

// Map is what gets drawn: a terrain grid over a region with stations on top.
type Map struct {
	Region   models.Region
	Grid     string
	Stations []models.Station
	Output   string
}

var frameSettings = []gmt.Setting{
	{Key: "MAP_FRAME_TYPE", Value: "plain"},
	{Key: "MAP_FRAME_PEN", Value: "0p"},
	{Key: "FONT_ANNOT_PRIMARY", Value: "12p,Helvetica,black"},
	{Key: "FONT_LABEL", Value: "14p,Helvetica,black"},
	{Key: "FONT_TITLE", Value: "18p,Helvetica-Bold,black"},
}

type Renderer struct {
	runner  gmt.Runner
	workDir string
}

// NewRenderer returns a renderer that keeps temporary color tables in
// workDir ("." when empty).
func NewRenderer(runner gmt.Runner, workDir string) *Renderer {
	if workDir == "" {
		workDir = "."
	}
	return &Renderer{runner: runner, workDir: workDir}
}

func (r *Renderer) Render(ctx context.Context, m Map, opts Options) (err error) {
	if m.Grid == "" {
		return fmt.Errorf("no terrain grid to draw")
	}
	format, err := FormatFromPath(m.Output)
	if err != nil {
		return err
	}

	cpt, cleanup, err := prepareCPT(opts.CPT, r.workDir)
	if err != nil {
		return err
	}
	defer cleanup()

	prefix := strings.TrimSuffix(m.Output, filepath.Ext(m.Output))
	if prefix+"."+format.GMT != m.Output {
		// gmt picks the extension itself. Write into a staging directory so
		// a sibling file with that extension is left alone.
		stage, err := os.MkdirTemp(filepath.Dir(m.Output), ".stnmap-")
		if err != nil {
			return fmt.Errorf("creating staging directory: %w", err)
		}
		defer os.RemoveAll(stage)
		prefix = filepath.Join(stage, filepath.Base(prefix))
	}
	session, err := gmt.Begin(ctx, r.runner, prefix, format.GMT, format.psconvertOptions(dpi(opts))...)
	if err != nil {
		return err
	}
	written := prefix + "." + format.GMT
	defer func() {
		if err != nil {
			session.Abort()
			// gmt end still writes whatever was drawn so far.
			_ = os.Remove(written)
		}
	}()

	if err := session.Set(ctx, frameSettings...); err != nil {
		return fmt.Errorf("configuring frame: %w", err)
	}

	log.Info().Msg("Drawing shaded relief")
	if err := session.Module(ctx, nil, "grdimage", m.Grid,
		"-J"+opts.Projection,
		"-R"+m.Region.String(),
		"-C"+cpt,
		"-I"+opts.Shading,
	); err != nil {
		return fmt.Errorf("drawing relief: %w", err)
	}

	if opts.Coast != nil {
		log.Info().Msg("Drawing coastline")
		if err := session.Module(ctx, nil, "coast", coastArgs(*opts.Coast)...); err != nil {
			return fmt.Errorf("drawing coastline: %w", err)
		}
	}

	log.Info().Int("station_count", len(m.Stations)).Msg("Drawing stations")
	if err := session.Module(ctx, strings.NewReader(stationPoints(m.Stations)), "plot",
		"-S"+opts.Marker.Style,
		"-G"+opts.Marker.Fill,
		"-W"+opts.Marker.Pen,
	); err != nil {
		return fmt.Errorf("drawing stations: %w", err)
	}

	if opts.Labels {
		log.Info().Msg("Adding station labels")
		if err := session.Module(ctx, strings.NewReader(stationLabels(m.Stations)), "text",
			"-F+f"+opts.LabelFont+"+j"+opts.LabelJustify,
			"-D"+opts.LabelOffset,
		); err != nil {
			return fmt.Errorf("drawing labels: %w", err)
		}
	}

	for _, a := range opts.Annotations {
		line := fmt.Sprintf("%s %s %s\n", formatFloat(a.Lon), formatFloat(a.Lat), a.Text)
		if err := session.Module(ctx, strings.NewReader(line), "text",
			"-F+f"+a.Font+"+j"+a.Justify,
			"-N",
		); err != nil {
			return fmt.Errorf("drawing annotation %q: %w", a.Text, err)
		}
	}

	if err := session.Module(ctx, nil, "basemap", frameArgs(m.Region, opts)...); err != nil {
		return fmt.Errorf("drawing frame: %w", err)
	}

	if opts.Legend {
		log.Info().Msg("Adding elevation legend")
		// Without -C colorbar draws the session CPT as grdimage scaled it.
		if err := session.Module(ctx, nil, "colorbar",
			"-D"+opts.LegendPosition,
			"-Bx+l"+opts.LegendXLabel,
			"-By+l"+opts.LegendYLabel,
		); err != nil {
			return fmt.Errorf("drawing legend: %w", err)
		}
	}

	if err := session.End(ctx); err != nil {
		return err
	}

	if written != m.Output {
		if err := os.Rename(written, m.Output); err != nil {
			return fmt.Errorf("moving %s to %s: %w", written, m.Output, err)
		}
	}

	log.Info().Str("output", m.Output).Msg("Map written")
	return nil
}

func coastArgs(c CoastStyle) []string {
	var args []string
	if c.Shorelines != "" {
		args = append(args, "-W"+c.Shorelines)
	}
	if c.Water != "" {
		args = append(args, "-S"+c.Water)
	}
	if c.Lakes != "" {
		args = append(args, "-C"+c.Lakes)
	}
	return args
}

func frameArgs(r models.Region, opts Options) []string {
	axes := "-BWSen"
	if opts.Title != "" {
		axes += "+t" + opts.Title
	}

	xTick, yTick := opts.FixedTick, opts.FixedTick
	if opts.Ticks == TicksAuto {
		xTick = region.TickInterval(r.LonSpan())
		yTick = region.TickInterval(r.LatSpan())
	}
	if xTick <= 0 {
		xTick, yTick = 1, 1
	}

	return []string{
		axes,
		"-Bxa" + formatFloat(xTick) + "f" + formatFloat(xTick),
		"-Bya" + formatFloat(yTick) + "f" + formatFloat(yTick),
	}
}

func stationPoints(stations []models.Station) string {
	var b strings.Builder
	for _, s := range stations {
		fmt.Fprintf(&b, "%s %s\n", formatFloat(s.Longitude), formatFloat(s.Latitude))
	}
	return b.String()
}

func stationLabels(stations []models.Station) string {
	var b strings.Builder
	for _, s := range stations {
		fmt.Fprintf(&b, "%s %s %s\n", formatFloat(s.Longitude), formatFloat(s.Latitude), s.Label())
	}
	return b.String()
}

func dpi(opts Options) int {
	if opts.DPI <= 0 {
		return 300
	}
	return opts.DPI
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
