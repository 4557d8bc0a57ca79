package models

import (
	"fmt"
	"strconv"
)

// Region is a lon/lat bounding box in degrees.
type Region struct {
	LonMin float64 `json:"lonMin"`
	LonMax float64 `json:"lonMax"`
	LatMin float64 `json:"latMin"`
	LatMax float64 `json:"latMax"`
}

// String renders the region the way GMT expects it after -R.
func (r Region) String() string {
	return fmt.Sprintf("%s/%s/%s/%s",
		formatDegrees(r.LonMin), formatDegrees(r.LonMax),
		formatDegrees(r.LatMin), formatDegrees(r.LatMax))
}

func (r Region) LonSpan() float64 { return r.LonMax - r.LonMin }
func (r Region) LatSpan() float64 { return r.LatMax - r.LatMin }

// Center returns the midpoint as (lon, lat).
func (r Region) Center() (float64, float64) {
	return (r.LonMin + r.LonMax) / 2, (r.LatMin + r.LatMax) / 2
}

// Contains reports whether the point lies strictly inside the region.
func (r Region) Contains(lat, lon float64) bool {
	return lon > r.LonMin && lon < r.LonMax && lat > r.LatMin && lat < r.LatMax
}

// Validate checks ordering and geographic range.
func (r Region) Validate() error {
	if r.LonMin < -180 || r.LonMax > 180 {
		return fmt.Errorf("longitude out of range [-180, 180]: %s", r)
	}
	if r.LatMin < -90 || r.LatMax > 90 {
		return fmt.Errorf("latitude out of range [-90, 90]: %s", r)
	}
	if r.LonMin >= r.LonMax {
		return fmt.Errorf("lon_min must be less than lon_max: %s", r)
	}
	if r.LatMin >= r.LatMax {
		return fmt.Errorf("lat_min must be less than lat_max: %s", r)
	}
	return nil
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
