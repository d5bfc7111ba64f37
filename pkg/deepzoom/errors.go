package deepzoom

import (
	"errors"
	"fmt"

	"slidetiler/internal/models"
)

// ErrAddressOutOfRange marks a tile or region request outside the valid
// coordinate space of its level. It is a purely local validation
// failure: the request never reaches the decoder and the pyramid stays
// usable for subsequent requests.
var ErrAddressOutOfRange = errors.New("deepzoom: tile address out of range")

// addressErr wraps ErrAddressOutOfRange with the offending address so
// callers can log it while still matching with errors.Is.
func addressErr(addr models.TileAddress, reason string) error {
	return fmt.Errorf("%w: level=%d row=%d col=%d: %s",
		ErrAddressOutOfRange, addr.Level, addr.Row, addr.Col, reason)
}

// GeometryError reports a failure while resolving the Deep Zoom level
// hierarchy at open time. It is fatal to the open attempt; no partial
// pyramid is ever returned.
type GeometryError struct {
	// Downsample is the total downsample whose native level resolution
	// failed, 0 when the failure was not tied to one level
	Downsample float64

	// Err is the underlying decoder error
	Err error
}

func (e *GeometryError) Error() string {
	if e.Downsample > 0 {
		return fmt.Sprintf("deepzoom: no native level for downsample %g: %v", e.Downsample, e.Err)
	}
	return fmt.Sprintf("deepzoom: resolving pyramid geometry: %v", e.Err)
}

func (e *GeometryError) Unwrap() error { return e.Err }
