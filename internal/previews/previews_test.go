package previews

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bbernstein/stnmap/internal/inventory"
	"github.com/bbernstein/stnmap/internal/models"
	"github.com/bbernstein/stnmap/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockInventory struct {
	stations []models.Station
	err      error
	calls    int
}

func (m *mockInventory) Read(ctx context.Context, source string) ([]models.Station, error) {
	m.calls++
	return m.stations, m.err
}

type mockTerrain struct {
	fetches int
}

func (m *mockTerrain) Fetch(ctx context.Context, res models.Resolution, r models.Region) (string, error) {
	m.fetches++
	return "cache/relief.nc", nil
}

func (m *mockTerrain) Stats(ctx context.Context, path string) (float64, float64, error) {
	return 0, 0, nil
}

type mockRenderer struct {
	renderFunc func(m render.Map, opts render.Options) error
	outputs    []string
}

func (m *mockRenderer) Render(ctx context.Context, mp render.Map, opts render.Options) error {
	m.outputs = append(m.outputs, mp.Output)
	if m.renderFunc != nil {
		return m.renderFunc(mp, opts)
	}
	return nil
}

var stations = []models.Station{
	{Network: "BJ", Code: "BBS", Latitude: 40.0, Longitude: 116.0},
	{Network: "BJ", Code: "DSQ", Latitude: 40.2, Longitude: 116.3},
}

func writeCPTs(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("0 green 1000 brown\n"), 0o644))
	}
	return dir
}

func TestRunRendersEveryCPT(t *testing.T) {
	dir := writeCPTs(t, "terra.cpt", "colombia.cpt", "notes.txt")
	inv := &mockInventory{stations: stations}
	ter := &mockTerrain{}
	rnd := &mockRenderer{}

	summary, err := NewGenerator(inv, ter, rnd).Run(context.Background(), Batch{CPTDir: dir})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "colombia.png"), filepath.Join(dir, "terra.png")}, rnd.outputs)
	assert.Equal(t, 2, summary.Total())
	assert.Equal(t, 2, summary.Succeeded())
	assert.True(t, summary.AllSucceeded())
	assert.Equal(t, 1, inv.calls, "inventory is read once per batch")
	assert.Equal(t, 1, ter.fetches, "one grid serves every preview")
}

func TestRunCountsFailures(t *testing.T) {
	dir := writeCPTs(t, "a.cpt", "b.cpt", "c.cpt")
	rnd := &mockRenderer{renderFunc: func(m render.Map, opts render.Options) error {
		if filepath.Base(opts.CPT) == "b.cpt" {
			return errors.New("bad color table")
		}
		return nil
	}}

	summary, err := NewGenerator(&mockInventory{stations: stations}, &mockTerrain{}, rnd).Run(context.Background(), Batch{CPTDir: dir})
	require.NoError(t, err)

	assert.Len(t, rnd.outputs, 3, "a failure does not stop the batch")
	assert.Equal(t, 3, summary.Total())
	assert.Equal(t, 2, summary.Succeeded())
	assert.False(t, summary.AllSucceeded())
	assert.EqualError(t, summary.Results[1].Err, "bad color table")
}

func TestRunFatalErrors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := NewGenerator(&mockInventory{stations: stations}, &mockTerrain{}, &mockRenderer{}).
			Run(context.Background(), Batch{CPTDir: filepath.Join(t.TempDir(), "nope")})
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("no cpt files", func(t *testing.T) {
		dir := writeCPTs(t, "readme.md")
		_, err := NewGenerator(&mockInventory{stations: stations}, &mockTerrain{}, &mockRenderer{}).
			Run(context.Background(), Batch{CPTDir: dir})
		assert.ErrorContains(t, err, "no .cpt files")
	})

	t.Run("inventory failure", func(t *testing.T) {
		dir := writeCPTs(t, "a.cpt")
		rnd := &mockRenderer{}
		_, err := NewGenerator(&mockInventory{err: inventory.ErrNoStations}, &mockTerrain{}, rnd).
			Run(context.Background(), Batch{CPTDir: dir})
		assert.ErrorIs(t, err, inventory.ErrNoStations)
		assert.Empty(t, rnd.outputs)
	})
}

func TestOptions(t *testing.T) {
	r := models.Region{LonMin: 115.5, LonMax: 116.8, LatMin: 39.5, LatMax: 40.7}
	opts := Options("cpt/terra.cpt", "terra", r)

	assert.Equal(t, "M15c", opts.Projection)
	assert.Equal(t, "cpt/terra.cpt", opts.CPT)
	assert.Equal(t, &render.CoastFaint, opts.Coast)
	assert.Equal(t, "t0.5c", opts.Marker.Style)
	assert.True(t, opts.Legend)
	assert.Equal(t, "JMR+w10c/0.5c+o1.5c/0c", opts.LegendPosition)

	require.Len(t, opts.Annotations, 1)
	a := opts.Annotations[0]
	assert.Equal(t, "CPT Preview: terra", a.Text)
	assert.InDelta(t, 116.15, a.Lon, 1e-9)
	assert.InDelta(t, 40.796, a.Lat, 1e-9)
	assert.Equal(t, "CB", a.Justify)
}

func TestSummaryEmpty(t *testing.T) {
	assert.False(t, Summary{}.AllSucceeded())
}
