package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Coordinates is a WGS84 position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geocoder resolves a free-text address to coordinates.
type Geocoder interface {
	ResolveAddress(ctx context.Context, address string) (Coordinates, error)
}

// ErrNoResults means the provider answered but knows no such address.
var ErrNoResults = errors.New("could not find location for the specified address")

// StatusError is a non-2xx answer from a geocoding provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("geocode http %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// NormalizeAddress collapses whitespace and case so equivalent inputs share
// cache entries.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}
