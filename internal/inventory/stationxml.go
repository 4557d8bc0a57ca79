package inventory

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bbernstein/stnmap/internal/models"
)

// FDSN StationXML, reduced to what a station map needs.
type fdsnStationXML struct {
	XMLName  xml.Name     `xml:"FDSNStationXML"`
	Source   string       `xml:"Source"`
	Networks []xmlNetwork `xml:"Network"`
}

type xmlNetwork struct {
	Code     string       `xml:"code,attr"`
	Stations []xmlStation `xml:"Station"`
}

type xmlStation struct {
	Code      string `xml:"code,attr"`
	Latitude  string `xml:"Latitude"`
	Longitude string `xml:"Longitude"`
	Elevation string `xml:"Elevation"`
}

// StationXMLParser decodes FDSN StationXML documents.
type StationXMLParser struct{}

func (p *StationXMLParser) Parse(r io.Reader) ([]models.Station, error) {
	var doc fdsnStationXML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding StationXML: %w", err)
	}

	stations := make([]models.Station, 0)
	for _, n := range doc.Networks {
		for _, s := range n.Stations {
			lat, err := parseCoordinate(s.Latitude)
			if err != nil {
				return nil, fmt.Errorf("station %s.%s latitude: %w", n.Code, s.Code, err)
			}
			lon, err := parseCoordinate(s.Longitude)
			if err != nil {
				return nil, fmt.Errorf("station %s.%s longitude: %w", n.Code, s.Code, err)
			}
			elev, err := parseOptional(s.Elevation)
			if err != nil {
				return nil, fmt.Errorf("station %s.%s elevation: %w", n.Code, s.Code, err)
			}
			stations = append(stations, models.Station{
				Network:   n.Code,
				Code:      s.Code,
				Latitude:  lat,
				Longitude: lon,
				Elevation: elev,
			})
		}
	}
	return stations, nil
}

func parseCoordinate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("missing value")
	}
	return strconv.ParseFloat(s, 64)
}

func parseOptional(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
