package models

import "fmt"

// Resolution selects one of the GMT remote earth_relief datasets.
type Resolution string

const (
	Resolution01m Resolution = "01m"
	Resolution30s Resolution = "30s"
	Resolution15s Resolution = "15s"
	Resolution03s Resolution = "03s"
	Resolution01s Resolution = "01s"
)

// Resolutions lists the accepted values, coarsest first.
var Resolutions = []Resolution{Resolution01m, Resolution30s, Resolution15s, Resolution03s, Resolution01s}

func ParseResolution(s string) (Resolution, error) {
	for _, r := range Resolutions {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid resolution %q (want one of %v)", s, Resolutions)
}

// Dataset returns the GMT remote dataset name. Unknown values fall back to 30s.
func (r Resolution) Dataset() string {
	if _, err := ParseResolution(string(r)); err != nil {
		return "@earth_relief_" + string(Resolution30s)
	}
	return "@earth_relief_" + string(r)
}

// Key is the resolution token used in cache file names, with the same 30s
// fallback as Dataset.
func (r Resolution) Key() string {
	if _, err := ParseResolution(string(r)); err != nil {
		return string(Resolution30s)
	}
	return string(r)
}
