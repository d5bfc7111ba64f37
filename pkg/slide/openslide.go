//go:build openslide

package slide

/*
#cgo pkg-config: openslide
#include <stdint.h>
#include <stdlib.h>
#include <openslide.h>
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// openSlide is the cgo-backed Source over libopenslide. One value owns
// one native handle; Close releases it. libopenslide is thread-safe for
// concurrent region reads on a single handle, so this Source is too.
type openSlide struct {
	osr *C.openslide_t
}

// OpenSlide opens a vendor slide file through libopenslide. Built only
// with the "openslide" tag; everything above this package is unaware of
// cgo and can run against NewSynthetic instead.
func OpenSlide(path string) (Source, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	if C.openslide_detect_vendor(cpath) == nil {
		return nil, ErrUnrecognizedFormat
	}
	osr := C.openslide_open(cpath)
	if osr == nil {
		return nil, ErrVendorUnsupported
	}
	if msg := C.openslide_get_error(osr); msg != nil {
		err := fmt.Errorf("%w: %s", ErrVendorUnsupported, C.GoString(msg))
		C.openslide_close(osr)
		return nil, err
	}
	return &openSlide{osr: osr}, nil
}

func (o *openSlide) LevelCount() int {
	return int(C.openslide_get_level_count(o.osr))
}

func (o *openSlide) LevelDimensions(level int) (int64, int64) {
	var w, h C.int64_t
	C.openslide_get_level_dimensions(o.osr, C.int32_t(level), &w, &h)
	return int64(w), int64(h)
}

func (o *openSlide) LevelDownsample(level int) float64 {
	return float64(C.openslide_get_level_downsample(o.osr, C.int32_t(level)))
}

func (o *openSlide) BestLevelForDownsample(downsample float64) int {
	return int(C.openslide_get_best_level_for_downsample(o.osr, C.double(downsample)))
}

// ReadRegion reads premultiplied ARGB words from libopenslide and
// rewrites them into the RGBA byte order the rest of the system uses.
func (o *openSlide) ReadRegion(buf []byte, x, y int64, level int, width, height int64) {
	n := width * height
	if n <= 0 || int64(len(buf)) < n*4 {
		return
	}
	words := make([]uint32, n)
	C.openslide_read_region(o.osr, (*C.uint32_t)(unsafe.Pointer(&words[0])),
		C.int64_t(x), C.int64_t(y), C.int32_t(level), C.int64_t(width), C.int64_t(height))
	for i, argb := range words {
		a := uint8(argb >> 24)
		r := uint8(argb >> 16)
		g := uint8(argb >> 8)
		b := uint8(argb)
		if a != 0 && a != 255 {
			// Undo premultiplication so downstream encoders see
			// straight alpha.
			r = uint8(int(r) * 255 / int(a))
			g = uint8(int(g) * 255 / int(a))
			b = uint8(int(b) * 255 / int(a))
		}
		buf[i*4], buf[i*4+1], buf[i*4+2], buf[i*4+3] = r, g, b, a
	}
}

func (o *openSlide) LastError() string {
	if msg := C.openslide_get_error(o.osr); msg != nil {
		return C.GoString(msg)
	}
	return ""
}

func (o *openSlide) PropertyValue(name string) string {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	if v := C.openslide_get_property_value(o.osr, cname); v != nil {
		return C.GoString(v)
	}
	return ""
}

func (o *openSlide) Close() {
	C.openslide_close(o.osr)
}
