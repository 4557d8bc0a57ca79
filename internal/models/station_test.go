package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStationLabel(t *testing.T) {
	s := Station{Network: "BJ", Code: "BBS", Latitude: 40.0, Longitude: 116.0}
	assert.Equal(t, "BJ.BBS", s.Label())

	assert.Equal(t, ".XYZ", Station{Code: "XYZ"}.Label())
}

func TestStationJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Station{Network: "IU", Code: "ANMO", Latitude: 34.9, Longitude: -106.5, Elevation: 1850})
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "IU", raw["network"])
	assert.Equal(t, "ANMO", raw["station"])
	assert.Equal(t, 1850.0, raw["elevation"])
}

func TestRegionString(t *testing.T) {
	r := Region{LonMin: 115.5, LonMax: 116.8, LatMin: 39.5, LatMax: 40.7}
	assert.Equal(t, "115.5/116.8/39.5/40.7", r.String())

	assert.Equal(t, "-10/10/-5/5", Region{LonMin: -10, LonMax: 10, LatMin: -5, LatMax: 5}.String())
}

func TestRegionSpansAndCenter(t *testing.T) {
	r := Region{LonMin: 100, LonMax: 110, LatMin: 30, LatMax: 34}
	assert.Equal(t, 10.0, r.LonSpan())
	assert.Equal(t, 4.0, r.LatSpan())

	lon, lat := r.Center()
	assert.Equal(t, 105.0, lon)
	assert.Equal(t, 32.0, lat)
}

func TestRegionContains(t *testing.T) {
	r := Region{LonMin: 100, LonMax: 110, LatMin: 30, LatMax: 34}

	assert.True(t, r.Contains(32, 105))
	assert.False(t, r.Contains(30, 105), "edge is not strictly inside")
	assert.False(t, r.Contains(32, 110), "edge is not strictly inside")
	assert.False(t, r.Contains(40, 105))
}

func TestRegionValidate(t *testing.T) {
	tests := []struct {
		name    string
		region  Region
		wantErr string
	}{
		{"valid", Region{115.5, 116.8, 39.5, 40.7}, ""},
		{"whole globe", Region{-180, 180, -90, 90}, ""},
		{"lon too small", Region{-181, 0, 0, 10}, "longitude out of range"},
		{"lon too large", Region{0, 180.5, 0, 10}, "longitude out of range"},
		{"lat too small", Region{0, 10, -91, 0}, "latitude out of range"},
		{"lat too large", Region{0, 10, 0, 90.1}, "latitude out of range"},
		{"lon order", Region{10, 0, 0, 10}, "lon_min must be less than lon_max"},
		{"lat order", Region{0, 10, 10, 10}, "lat_min must be less than lat_max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.region.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseResolution(t *testing.T) {
	for _, r := range Resolutions {
		got, err := ParseResolution(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}

	_, err := ParseResolution("02m")
	assert.Error(t, err)
}

func TestResolutionDataset(t *testing.T) {
	assert.Equal(t, "@earth_relief_03s", Resolution03s.Dataset())
	assert.Equal(t, "@earth_relief_01m", Resolution01m.Dataset())
	assert.Equal(t, "@earth_relief_30s", Resolution("05m").Dataset())
	assert.Equal(t, "30s", Resolution("").Key())
	assert.Equal(t, "15s", Resolution15s.Key())
}
