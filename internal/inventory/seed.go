package inventory

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bbernstein/stnmap/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	defaultRecordLength = 4096
	recordHeaderLength  = 8
	blocketteHeader     = 7 // type (3) + length (4)
)

// DatalessParser reads station identifier blockettes (050) out of a Dataless
// SEED volume. Response and channel blockettes are skipped.
type DatalessParser struct{}

func (p *DatalessParser) Parse(r io.Reader) ([]models.Station, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading SEED volume: %w", err)
	}
	if len(data) < recordHeaderLength {
		return nil, fmt.Errorf("SEED volume too short (%d bytes)", len(data))
	}

	recLen := recordLength(data)
	log.Debug().Int("record_length", recLen).Msg("Parsing Dataless SEED volume")

	stream := stationHeaderStream(data, recLen)
	payload := recLen - recordHeaderLength

	stations := make([]models.Station, 0)
	for pos := 0; pos < len(stream); {
		if pos+blocketteHeader > len(stream) || !isDigits(stream[pos:pos+3]) {
			pos = nextBoundary(pos, payload)
			continue
		}

		blocketteType := string(stream[pos : pos+3])
		length, err := strconv.Atoi(string(stream[pos+3 : pos+7]))
		if err != nil || length < blocketteHeader {
			return nil, fmt.Errorf("blockette %s at offset %d: bad length %q", blocketteType, pos, stream[pos+3:pos+7])
		}
		if pos+length > len(stream) {
			return nil, fmt.Errorf("blockette %s at offset %d: truncated (need %d bytes)", blocketteType, pos, length)
		}

		if blocketteType == "050" {
			s, err := parseBlockette050(stream[pos : pos+length])
			if err != nil {
				return nil, err
			}
			stations = append(stations, s)
		}
		pos += length
	}

	return stations, nil
}

// recordLength reads the logical record length exponent from volume
// identifier blockette 010, falling back to 4096.
func recordLength(data []byte) int {
	if len(data) < 21 || data[6] != 'V' || string(data[8:11]) != "010" {
		return defaultRecordLength
	}
	exp, err := strconv.Atoi(strings.TrimSpace(string(data[19:21])))
	if err != nil || exp < 8 || exp > 20 {
		return defaultRecordLength
	}
	return 1 << exp
}

// stationHeaderStream concatenates the payloads of every station control
// header record so blockettes continued across records read contiguously.
func stationHeaderStream(data []byte, recLen int) []byte {
	var buf bytes.Buffer
	for off := 0; off+recordHeaderLength <= len(data); off += recLen {
		end := off + recLen
		if end > len(data) {
			end = len(data)
		}
		rec := data[off:end]
		if rec[6] != 'S' {
			continue
		}
		payload := rec[recordHeaderLength:]
		buf.Write(payload)
		// Keep every payload the same size so record boundaries stay
		// computable inside the stream.
		if pad := recLen - recordHeaderLength - len(payload); pad > 0 {
			buf.Write(bytes.Repeat([]byte{' '}, pad))
		}
	}
	return buf.Bytes()
}

func parseBlockette050(b []byte) (models.Station, error) {
	const fixed = 47
	if len(b) < fixed {
		return models.Station{}, fmt.Errorf("blockette 050 too short (%d bytes)", len(b))
	}

	code := strings.TrimSpace(string(b[7:12]))
	lat, err := strconv.ParseFloat(strings.TrimSpace(string(b[12:22])), 64)
	if err != nil {
		return models.Station{}, fmt.Errorf("blockette 050 station %s latitude: %w", code, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(string(b[22:33])), 64)
	if err != nil {
		return models.Station{}, fmt.Errorf("blockette 050 station %s longitude: %w", code, err)
	}
	elev, err := parseOptional(string(b[33:40]))
	if err != nil {
		return models.Station{}, fmt.Errorf("blockette 050 station %s elevation: %w", code, err)
	}

	return models.Station{
		Network:   blockette050Network(b[fixed:]),
		Code:      code,
		Latitude:  lat,
		Longitude: lon,
		Elevation: elev,
	}, nil
}

// blockette050Network walks the variable part of blockette 050: site name~,
// network id (3), word orders (4+2), start~, end~, update flag (1), network
// code (2). Volumes older than SEED 2.3 stop before the network code.
func blockette050Network(rest []byte) string {
	pos := skipVariable(rest, 0)
	pos += 3 + 4 + 2
	pos = skipVariable(rest, pos)
	pos = skipVariable(rest, pos)
	pos++
	if pos+2 > len(rest) {
		return ""
	}
	return strings.TrimSpace(string(rest[pos : pos+2]))
}

func skipVariable(b []byte, pos int) int {
	if pos >= len(b) {
		return len(b)
	}
	if i := bytes.IndexByte(b[pos:], '~'); i >= 0 {
		return pos + i + 1
	}
	return len(b)
}

func nextBoundary(pos, payload int) int {
	return (pos/payload + 1) * payload
}

func isDigits(b []byte) bool {
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(b) > 0
}

// looksLikeSEED checks for a six digit sequence number followed by a SEED
// record type indicator.
func looksLikeSEED(head []byte) bool {
	if len(head) < 8 || !isDigits(head[:6]) {
		return false
	}
	switch head[6] {
	case 'V', 'A', 'S', 'T', 'D', 'R', 'Q', 'M':
	default:
		return false
	}
	return head[7] == ' ' || head[7] == '*'
}
