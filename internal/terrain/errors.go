package terrain

import "fmt"

// FetchError is returned when a terrain grid cannot be retrieved, including
// after the GeoTIFF fallback when that is enabled.
type FetchError struct {
	Key      string
	Fallback bool
	Err      error
}

func (e *FetchError) Error() string {
	if e.Fallback {
		return fmt.Sprintf("downloading terrain grid %s (with GeoTIFF fallback): %v", e.Key, e.Err)
	}
	return fmt.Sprintf("downloading terrain grid %s: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
