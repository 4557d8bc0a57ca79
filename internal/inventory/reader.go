// Package inventory loads station coordinates from seismic metadata files.
package inventory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/bbernstein/stnmap/internal/models"
	"github.com/bbernstein/stnmap/pkg/http/client"
	"github.com/rs/zerolog/log"
)

// Reader returns the flat station list for a metadata source.
type Reader interface {
	Read(ctx context.Context, source string) ([]models.Station, error)
}

// Parser decodes one inventory format.
type Parser interface {
	Parse(r io.Reader) ([]models.Station, error)
}

// Loader reads local files or http(s) URLs and picks the parser by sniffing
// the content.
type Loader struct {
	httpClient client.Interface
	xml        Parser
	seed       Parser
}

func NewLoader(httpClient client.Interface) *Loader {
	return &Loader{
		httpClient: httpClient,
		xml:        &StationXMLParser{},
		seed:       &DatalessParser{},
	}
}

func (l *Loader) Read(ctx context.Context, source string) ([]models.Station, error) {
	log.Info().Str("source", source).Msg("Reading station inventory")

	data, err := l.load(ctx, source)
	if err != nil {
		return nil, err
	}

	format, err := DetectFormat(source, data)
	if err != nil {
		return nil, err
	}

	var parser Parser
	switch format {
	case models.FormatStationXML:
		parser = l.xml
	case models.FormatDatalessSEED:
		parser = l.seed
	}

	stations, err := parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s %s: %w", format, source, err)
	}
	if len(stations) == 0 {
		return nil, fmt.Errorf("%s: %w", source, ErrNoStations)
	}

	log.Info().Int("station_count", len(stations)).Str("format", string(format)).Msgf("Extracted %d stations", len(stations))
	return stations, nil
}

func (l *Loader) load(ctx context.Context, source string) ([]byte, error) {
	if isRemote(source) {
		if l.httpClient == nil {
			return nil, &RemoteError{URL: source, Err: fmt.Errorf("no http client configured")}
		}
		resp, err := l.httpClient.Get(ctx, source)
		if err != nil {
			return nil, &RemoteError{URL: source, Err: err}
		}
		if resp.StatusCode != http.StatusOK {
			return nil, &RemoteError{URL: source, StatusCode: resp.StatusCode}
		}
		return resp.Body, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("reading inventory: %w", err)
	}
	return data, nil
}

// DetectFormat sniffs the first bytes of an inventory.
func DetectFormat(source string, data []byte) (models.Format, error) {
	trimmed := bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	trimmed = bytes.TrimLeft(trimmed, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '<' {
		return models.FormatStationXML, nil
	}
	if looksLikeSEED(data) {
		return models.FormatDatalessSEED, nil
	}

	head := data
	if len(head) > 16 {
		head = head[:16]
	}
	return "", &UnsupportedFormatError{Source: source, Head: string(head)}
}

func isRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
