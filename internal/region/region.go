// Package region derives the map extent from station coordinates and picks
// frame annotation intervals.
package region

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bbernstein/stnmap/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPadding = 0.5

	// AutoPadding bounds, in degrees.
	MinAutoPadding = 0.05
	MaxAutoPadding = 0.5

	autoPaddingFraction = 0.1
)

// TickCandidates are the frame annotation intervals in degrees, ascending.
var TickCandidates = []float64{0.05, 0.1, 0.2, 0.25, 0.5, 1.0, 2.0, 5.0}

var (
	ErrNoStations    = errors.New("no stations to compute a region from")
	ErrInvalidRegion = errors.New("invalid region")
)

// Compute returns the station extent expanded by padding on every side.
func Compute(stations []models.Station, padding float64) (models.Region, error) {
	if len(stations) == 0 {
		return models.Region{}, ErrNoStations
	}

	r := models.Region{
		LonMin: stations[0].Longitude,
		LonMax: stations[0].Longitude,
		LatMin: stations[0].Latitude,
		LatMax: stations[0].Latitude,
	}
	for _, s := range stations[1:] {
		r.LonMin = math.Min(r.LonMin, s.Longitude)
		r.LonMax = math.Max(r.LonMax, s.Longitude)
		r.LatMin = math.Min(r.LatMin, s.Latitude)
		r.LatMax = math.Max(r.LatMax, s.Latitude)
	}

	r.LonMin -= padding
	r.LonMax += padding
	r.LatMin -= padding
	r.LatMax += padding

	log.Info().Str("region", r.String()).Float64("padding", padding).Msg("Computed map region")
	return r, nil
}

// AutoPadding is a tenth of the larger coordinate spread, clamped to
// [MinAutoPadding, MaxAutoPadding].
func AutoPadding(stations []models.Station) float64 {
	if len(stations) == 0 {
		return MaxAutoPadding
	}

	lonMin, lonMax := stations[0].Longitude, stations[0].Longitude
	latMin, latMax := stations[0].Latitude, stations[0].Latitude
	for _, s := range stations[1:] {
		lonMin = math.Min(lonMin, s.Longitude)
		lonMax = math.Max(lonMax, s.Longitude)
		latMin = math.Min(latMin, s.Latitude)
		latMax = math.Max(latMax, s.Latitude)
	}

	spread := math.Max(lonMax-lonMin, latMax-latMin)
	return clamp(spread*autoPaddingFraction, MinAutoPadding, MaxAutoPadding)
}

// EnsureMinRange widens any axis narrower than minRange, keeping its centre.
func EnsureMinRange(r models.Region, minRange float64) models.Region {
	if minRange <= 0 {
		return r
	}
	if span := r.LonSpan(); span < minRange {
		grow := (minRange - span) / 2
		r.LonMin -= grow
		r.LonMax += grow
	}
	if span := r.LatSpan(); span < minRange {
		grow := (minRange - span) / 2
		r.LatMin -= grow
		r.LatMax += grow
	}
	return r
}

// ParseManual parses "lon_min/lon_max/lat_min/lat_max". With validate set the
// result must also be ordered and within geographic range.
func ParseManual(s string, validate bool) (models.Region, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 4 {
		return models.Region{}, fmt.Errorf("%w: want lon_min/lon_max/lat_min/lat_max, got %q", ErrInvalidRegion, s)
	}

	values := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return models.Region{}, fmt.Errorf("%w: field %d %q is not a number", ErrInvalidRegion, i+1, p)
		}
		values[i] = v
	}

	r := models.Region{LonMin: values[0], LonMax: values[1], LatMin: values[2], LatMax: values[3]}
	if validate {
		if err := r.Validate(); err != nil {
			return models.Region{}, fmt.Errorf("%w: %v", ErrInvalidRegion, err)
		}
	}

	log.Info().Str("region", r.String()).Msg("Using manual map region")
	return r, nil
}

// TickInterval returns the largest candidate not exceeding span/3.
func TickInterval(span float64) float64 {
	limit := span / 3
	interval := TickCandidates[0]
	for _, c := range TickCandidates {
		if c <= limit {
			interval = c
		}
	}
	return interval
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
