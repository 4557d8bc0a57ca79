package inventory

import (
	"errors"
	"fmt"
)

var ErrNoStations = errors.New("no stations found in inventory")

// UnsupportedFormatError is returned when a source is neither StationXML nor
// Dataless SEED.
type UnsupportedFormatError struct {
	Source string
	Head   string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported inventory format in %s (starts with %q)", e.Source, e.Head)
}

// RemoteError is returned when a remote inventory cannot be fetched.
type RemoteError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching inventory %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetching inventory %s: status %d", e.URL, e.StatusCode)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
