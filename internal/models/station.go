package models

import "fmt"

type Format string

const (
	FormatStationXML   Format = "StationXML"
	FormatDatalessSEED Format = "DatalessSEED"
)

// Station is one station epoch read from an inventory. Elevation is zero when
// the inventory does not carry one.
type Station struct {
	Network   string  `json:"network"`
	Code      string  `json:"station"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
}

// Label returns the NET.STA form drawn next to the marker.
func (s Station) Label() string {
	return fmt.Sprintf("%s.%s", s.Network, s.Code)
}
