package slide

import (
	"fmt"
	"math"
)

// Synthetic is an in-process Source that renders a deterministic test
// pattern instead of decoding a vendor file. It backs the CLI demo mode
// and the package tests, and its pixel content is a pure function of
// the requested coordinates, so repeated reads are always identical.
type Synthetic struct {
	levels  []syntheticLevel
	props   map[string]string
	lastErr string
}

type syntheticLevel struct {
	width, height int64
	downsample    float64
}

// NewSynthetic builds a synthetic slide with the given full resolution
// and a native pyramid of levelCount layers, each downsampled 4x from
// the previous (the layout typical of real scanners, which skip
// factor-2 steps).
func NewSynthetic(width, height int64, levelCount int) *Synthetic {
	s := &Synthetic{
		props: map[string]string{
			PropertyMppX:       "0.25",
			"openslide.vendor": "synthetic",
		},
	}
	down := 1.0
	for i := 0; i < levelCount; i++ {
		w := int64(math.Ceil(float64(width) / down))
		h := int64(math.Ceil(float64(height) / down))
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		s.levels = append(s.levels, syntheticLevel{width: w, height: h, downsample: down})
		down *= 4
	}
	return s
}

// SetProperty overrides a metadata property, e.g. to exercise locale
// variants of the MPP string.
func (s *Synthetic) SetProperty(name, value string) { s.props[name] = value }

// LevelCount reports the number of synthetic pyramid levels.
func (s *Synthetic) LevelCount() int { return len(s.levels) }

// LevelDimensions reports the pixel size of one level, or (-1, -1) for
// an invalid index.
func (s *Synthetic) LevelDimensions(level int) (int64, int64) {
	if level < 0 || level >= len(s.levels) {
		s.lastErr = fmt.Sprintf("invalid level %d", level)
		return -1, -1
	}
	return s.levels[level].width, s.levels[level].height
}

// LevelDownsample reports the downsample factor of one level, or -1.0
// for an invalid index.
func (s *Synthetic) LevelDownsample(level int) float64 {
	if level < 0 || level >= len(s.levels) {
		s.lastErr = fmt.Sprintf("invalid level %d", level)
		return -1
	}
	return s.levels[level].downsample
}

// BestLevelForDownsample reports the finest level whose downsample does
// not exceed the target, matching the native decoder's selection rule.
func (s *Synthetic) BestLevelForDownsample(downsample float64) int {
	best := 0
	for i, l := range s.levels {
		if l.downsample <= downsample {
			best = i
		}
	}
	return best
}

// ReadRegion renders the test pattern into buf: a two-axis gradient
// with a grid overlay, sampled at the level's own resolution so each
// pyramid layer is a faithful reduction of level 0.
func (s *Synthetic) ReadRegion(buf []byte, x, y int64, level int, width, height int64) {
	if level < 0 || level >= len(s.levels) {
		s.lastErr = fmt.Sprintf("invalid level %d", level)
		return
	}
	l := s.levels[level]
	if int64(len(buf)) < width*height*4 {
		s.lastErr = "buffer too small"
		return
	}
	// Origin arrives in level-0 coordinates.
	lx := int64(float64(x) / l.downsample)
	ly := int64(float64(y) / l.downsample)
	for row := int64(0); row < height; row++ {
		for col := int64(0); col < width; col++ {
			px, py := lx+col, ly+row
			i := (row*width + col) * 4
			if px < 0 || py < 0 || px >= l.width || py >= l.height {
				buf[i], buf[i+1], buf[i+2], buf[i+3] = 0, 0, 0, 0
				continue
			}
			buf[i] = uint8(255 * px / maxI64(l.width, 1))
			buf[i+1] = uint8(255 * py / maxI64(l.height, 1))
			if (px/64+py/64)%2 == 0 {
				buf[i+2] = 192
			} else {
				buf[i+2] = 64
			}
			buf[i+3] = 255
		}
	}
}

// LastError reports the most recent recorded failure, or "".
func (s *Synthetic) LastError() string { return s.lastErr }

// PropertyValue reports a metadata property, or "".
func (s *Synthetic) PropertyValue(name string) string { return s.props[name] }

// Close is a no-op; a synthetic slide holds no native resources.
func (s *Synthetic) Close() {}

// OpenSynthetic is an Opener that ignores the path and produces a
// 4096x3072 synthetic slide with three native levels. The demo mode of
// the CLI runs against it so the server can be exercised without a
// vendor file or the native decoder.
func OpenSynthetic(string) (Source, error) {
	return NewSynthetic(4096, 3072, 3), nil
}

func maxI64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
