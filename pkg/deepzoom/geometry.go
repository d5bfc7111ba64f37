package deepzoom

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"

	"slidetiler/internal/models"
)

// bestLevelTolerance is the multiplicative fudge applied when asking
// the decoder for the native level matching a Deep Zoom downsample.
// Reported native downsamples carry floating-point noise, and without
// the fudge a level sitting a hair above the exact power of two would
// be passed over at the comparison boundary.
const bestLevelTolerance = 1.01

// easyTolerance bounds how far a total downsample may sit from 1 for
// its level to be served without resampling.
const easyTolerance = 0.01

// levelGeometry is the precomputed mapping for one Deep Zoom level.
// All of it is derived once at open time and reused by every tile
// request against that level.
type levelGeometry struct {
	// size is the Deep Zoom pixel dimensions of the level
	size models.Dimensions

	// grid is the tile grid: tiles across and tiles down
	grid models.Dimensions

	// totalDownsample is 2^(M-1-i) for level i of M, exact by
	// construction and independent of the native downsample table
	totalDownsample float64

	// nativeLevel is the decoder level tiles of this level read from
	nativeLevel int

	// nativeSize is that decoder level's pixel dimensions
	nativeSize models.Dimensions

	// nativeDownsample is that decoder level's own downsample
	nativeDownsample float64

	// residual is totalDownsample / nativeDownsample: the leftover
	// scaling between the chosen native level and the ideal Deep Zoom
	// downsample, applied when translating coordinates and sizing the
	// native read
	residual float64
}

// geometry is the resolved Deep Zoom hierarchy for one open slide.
// Immutable after construction; level 0 is the coarsest (1x1 or near
// it) and the last level equals the slide's full resolution.
type geometry struct {
	levels []levelGeometry
	easy   []int
}

// deepZoomSizes derives the canonical level dimensions: starting from
// the native full resolution, both axes are halved (rounded up, floored
// at 1) until the level is 1x1, and the sequence is reversed so index 0
// is the coarsest. A 1x1 slide degenerates to a single level; axes
// halve independently, so a 1xN slide is handled the same way.
func deepZoomSizes(full models.Dimensions) []models.Dimensions {
	sizes := []models.Dimensions{full}
	for cur := full; cur.Width > 1 || cur.Height > 1; {
		cur = models.Dimensions{
			Width:  halveUp(cur.Width),
			Height: halveUp(cur.Height),
		}
		sizes = append(sizes, cur)
	}
	for i, j := 0, len(sizes)-1; i < j; i, j = i+1, j-1 {
		sizes[i], sizes[j] = sizes[j], sizes[i]
	}
	return sizes
}

func halveUp(v int64) int64 {
	if v <= 1 {
		return 1
	}
	return (v + 1) / 2
}

// tileGrid reports how many tiles of the given stride cover a level.
func tileGrid(size models.Dimensions, stride int64) models.Dimensions {
	return models.Dimensions{
		Width:  ceilDiv(size.Width, stride),
		Height: ceilDiv(size.Height, stride),
	}
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}

// resolveGeometry consumes the native level table once and derives the
// full Deep Zoom hierarchy: level sizes, exact power-of-two total
// downsamples, the native level serving each Deep Zoom level, and the
// easy set. Any decoder failure here is fatal to the open attempt.
func (p *Pyramid) resolveGeometry() (*geometry, error) {
	full, err := p.src.LevelDimensions(0)
	if err != nil {
		return nil, &GeometryError{Err: err}
	}
	sizes := deepZoomSizes(full)
	m := len(sizes)

	g := &geometry{levels: make([]levelGeometry, m)}
	for i, size := range sizes {
		total := math.Pow(2, float64(m-1-i))
		native, err := p.src.BestLevelForDownsample(total * bestLevelTolerance)
		if err != nil {
			return nil, &GeometryError{Downsample: total, Err: err}
		}
		nativeSize, err := p.src.LevelDimensions(native)
		if err != nil {
			return nil, &GeometryError{Downsample: total, Err: err}
		}
		nativeDown, err := p.src.LevelDownsample(native)
		if err != nil {
			return nil, &GeometryError{Downsample: total, Err: err}
		}
		g.levels[i] = levelGeometry{
			size:             size,
			grid:             tileGrid(size, p.stride),
			totalDownsample:  total,
			nativeLevel:      native,
			nativeSize:       nativeSize,
			nativeDownsample: nativeDown,
			residual:         total / nativeDown,
		}
		if scalar.EqualWithinAbsOrRel(total, 1, easyTolerance, easyTolerance) {
			g.easy = append(g.easy, i)
		}
	}
	p.trace("geometry", "%d deep zoom levels for %dx%d slide, easy=%v",
		m, full.Width, full.Height, g.easy)
	return g, nil
}
