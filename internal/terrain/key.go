package terrain

import (
	"fmt"

	"github.com/bbernstein/stnmap/internal/models"
)

// CacheKey names the cached grid for a resolution and region. Coordinates are
// rounded to one decimal so repeated runs over the same network hit the same
// file.
func CacheKey(res models.Resolution, r models.Region) string {
	return fmt.Sprintf("relief_%s_%.1f_%.1f_%.1f_%.1f.nc", res.Key(), r.LonMin, r.LonMax, r.LatMin, r.LatMax)
}
