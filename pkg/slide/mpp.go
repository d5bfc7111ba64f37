package slide

import (
	"strconv"
	"strings"
)

// PropertyMppX is the decoder property holding the microns-per-pixel
// value along the X axis, the standard key OpenSlide-compatible
// decoders expose.
const PropertyMppX = "openslide.mpp-x"

// Plausible physical range for a microns-per-pixel value. Slide
// scanners sit around 0.1-1.0 um/px; anything far outside means the
// string was parsed under the wrong decimal convention.
const (
	mppMin = 1e-10
	mppMax = 1000
)

// MicronsPerPixel parses the decoder's MPP property. Some decoder
// builds format the value under the host locale and emit a comma as
// the decimal mark, so a period-based parse is tried first and, when
// it fails or lands outside the plausible physical range, the string
// is reparsed with the comma treated as the separator. 0 means the
// value is unknown: the property was absent or neither parse produced
// a plausible number. Callers must never treat 0 as a measurement.
func (c *Checked) MicronsPerPixel() float64 {
	return parseMpp(c.PropertyValue(PropertyMppX))
}

func parseMpp(raw string) float64 {
	if raw == "" {
		return 0
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil && plausibleMpp(v) {
		return v
	}
	swapped := strings.ReplaceAll(strings.ReplaceAll(raw, ".", ""), ",", ".")
	if v, err := strconv.ParseFloat(swapped, 64); err == nil && plausibleMpp(v) {
		return v
	}
	return 0
}

func plausibleMpp(v float64) bool {
	return v >= mppMin && v <= mppMax
}
