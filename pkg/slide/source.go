// Package slide wraps the native whole-slide decoder boundary. The
// decoder follows a C-style contract: sentinel return values signal
// failure and the explanation lives on a separate "last error" channel
// queried after the fact. Everything above this package sees ordinary
// Go errors instead; the Checked wrapper is the single place where the
// sentinel-plus-side-channel convention is translated, so no call site
// can forget the error check.
package slide

import (
	"errors"
	"io/fs"
	"os"

	"slidetiler/internal/models"
)

// Source is the raw capability surface of one open slide handle. It
// mirrors the native decoder contract directly: calls do not return
// errors, they return sentinel values (-1 for counts and levels, -1.0
// for downsamples, an untouched buffer for region reads) and record the
// reason on the LastError channel.
//
// Implementations must tolerate concurrent region reads on one handle
// if callers are to share a handle across goroutines; this package adds
// no locking of its own.
type Source interface {
	// LevelCount reports the number of native resolution levels, or -1.
	LevelCount() int

	// LevelDimensions reports the pixel size of a native level, or
	// (-1, -1).
	LevelDimensions(level int) (width, height int64)

	// LevelDownsample reports the downsample factor of a native level
	// relative to level 0, or -1.0.
	LevelDownsample(level int) float64

	// BestLevelForDownsample reports the native level whose downsample
	// best approximates the target without exceeding it, or -1.
	BestLevelForDownsample(downsample float64) int

	// ReadRegion fills buf with RGBA pixels for a rectangle of the
	// given native level. The origin is in level-0 coordinates. buf
	// must hold width*height*4 bytes. Failure is signalled only via
	// LastError.
	ReadRegion(buf []byte, x, y int64, level int, width, height int64)

	// LastError reports the decoder's recorded error text, or "".
	LastError() string

	// PropertyValue reports a named metadata property, or "".
	PropertyValue(name string) string

	// Close releases the native handle. Calling any other method
	// afterwards is undefined at this layer; Checked guards against it.
	Close()
}

// Opener opens the slide at path and returns its raw handle. The cgo
// OpenSlide binding satisfies this, as does NewSynthetic for tests and
// the demo mode.
type Opener func(path string) (Source, error)

// Open verifies that path exists and then hands it to the opener. The
// existence check runs first so a missing file never reaches the
// decoder and is always reported as ErrFileNotFound.
func Open(path string, open Opener) (*Checked, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	src, err := open(path)
	if err != nil {
		return nil, err
	}
	return &Checked{src: src}, nil
}

// Checked wraps a raw Source and converts every sentinel return into a
// tagged Go error by re-querying the decoder's error channel. A
// sentinel paired with an empty channel is itself reported, as a
// decoder contract violation.
type Checked struct {
	src    Source
	closed bool
}

// NewChecked wraps an already-open raw handle. Open is the usual way in;
// this exists for sources that are constructed rather than opened.
func NewChecked(src Source) *Checked {
	return &Checked{src: src}
}

// LevelCount reports the number of native levels.
func (c *Checked) LevelCount() (int, error) {
	if c.closed {
		return 0, ErrClosed
	}
	n := c.src.LevelCount()
	if n < 0 {
		return 0, decoderErr("level count", c.src)
	}
	return n, nil
}

// LevelDimensions reports the pixel size of one native level.
func (c *Checked) LevelDimensions(level int) (models.Dimensions, error) {
	if c.closed {
		return models.Dimensions{}, ErrClosed
	}
	w, h := c.src.LevelDimensions(level)
	if w < 0 || h < 0 {
		return models.Dimensions{}, decoderErr("level dimensions", c.src)
	}
	return models.Dimensions{Width: w, Height: h}, nil
}

// LevelDownsample reports the downsample factor of one native level.
func (c *Checked) LevelDownsample(level int) (float64, error) {
	if c.closed {
		return 0, ErrClosed
	}
	d := c.src.LevelDownsample(level)
	if d < 0 {
		return 0, decoderErr("level downsample", c.src)
	}
	return d, nil
}

// BestLevelForDownsample reports the native level whose downsample best
// approximates the target.
func (c *Checked) BestLevelForDownsample(downsample float64) (int, error) {
	if c.closed {
		return 0, ErrClosed
	}
	level := c.src.BestLevelForDownsample(downsample)
	if level < 0 {
		return 0, decoderErr("best level for downsample", c.src)
	}
	return level, nil
}

// ReadRegion fills buf with RGBA pixels for a native-level rectangle.
// The decoder signals a failed read only through its error channel plus
// a blank leading pixel, so that combination is what is checked here.
func (c *Checked) ReadRegion(buf []byte, x, y int64, level int, width, height int64) error {
	if c.closed {
		return ErrClosed
	}
	c.src.ReadRegion(buf, x, y, level, width, height)
	if msg := c.src.LastError(); msg != "" && blankLeadingPixel(buf) {
		return &DecoderError{Op: "read region", Message: msg}
	}
	return nil
}

// blankLeadingPixel reports whether the first pixel of an RGBA buffer
// is fully zero, the decoder's read-failed marker.
func blankLeadingPixel(buf []byte) bool {
	if len(buf) < 4 {
		return true
	}
	return buf[0] == 0 && buf[1] == 0 && buf[2] == 0 && buf[3] == 0
}

// PropertyValue reports a named metadata property, or "" when absent.
// Property lookups have no sentinel; absence and emptiness are the same.
func (c *Checked) PropertyValue(name string) string {
	if c.closed {
		return ""
	}
	return c.src.PropertyValue(name)
}

// Close releases the native handle. Further calls on this wrapper
// return ErrClosed; Close itself is idempotent and releases the handle
// exactly once.
func (c *Checked) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.src.Close()
}
