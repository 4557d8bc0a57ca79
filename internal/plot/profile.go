package plot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bbernstein/stnmap/internal/render"
)

// Profile bundles the defaults of one map style. Request fields override
// them individually.
type Profile struct {
	Name string
	CPT  string
	// Coast is nil when the profile draws no coastline.
	Coast *render.CoastStyle
	// Fallback enables the GeoTIFF retry when a terrain download fails.
	Fallback       bool
	AutoPadding    bool
	ValidateRegion bool
	Ticks          render.TickMode
}

const DefaultProfile = "classic"

var profiles = map[string]Profile{
	"classic": {
		Name:  "classic",
		CPT:   "cpt/colombia.cpt",
		Ticks: render.TicksFixed,
	},
	"coastal": {
		Name:  "coastal",
		CPT:   "cpt/colombia.cpt",
		Coast: &render.CoastFaint,
		Ticks: render.TicksFixed,
	},
	"resilient": {
		Name:           "resilient",
		CPT:            "geo",
		Coast:          &render.CoastStandard,
		Fallback:       true,
		AutoPadding:    true,
		ValidateRegion: true,
		Ticks:          render.TicksAuto,
	},
}

// LookupProfile returns the named profile; an empty name selects the
// default.
func LookupProfile(name string) (Profile, error) {
	if name == "" {
		name = DefaultProfile
	}
	p, ok := profiles[strings.ToLower(name)]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q (want one of %s)", name, strings.Join(ProfileNames(), ", "))
	}
	return p, nil
}

func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
