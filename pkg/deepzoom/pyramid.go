// Package deepzoom turns the irregular, vendor-defined resolution
// pyramid of a whole-slide image into the canonical power-of-two tile
// hierarchy that Deep Zoom viewers expect. The level table is resolved
// once when a slide is opened; every tile request afterwards is pure
// arithmetic against that immutable table plus one blocking region
// read through the slide boundary.
//
// A Pyramid is stateless after construction, so concurrent tile
// requests against one open slide are safe exactly when the underlying
// decoder supports concurrent region reads on one handle; no locking
// is added here.
package deepzoom

import (
	"image"

	"golang.org/x/image/draw"

	"slidetiler/internal/models"
	"slidetiler/pkg/slide"
)

// DefaultTileStride is the non-overlapping tile edge length: 512 minus
// the two overlap pixels interior tiles carry, so a full interior tile
// is exactly 512x512 on the wire.
const DefaultTileStride = 510

// Pyramid owns one open slide handle and the geometry resolved from
// it. The handle is released exactly once by Close; every operation
// after that fails. Tile request failures never invalidate the handle.
type Pyramid struct {
	src     *slide.Checked
	geo     *geometry
	stride  int64
	scaler  draw.Scaler
	observe Observer
}

// Option adjusts pyramid construction.
type Option func(*Pyramid)

// WithTileStride overrides the non-overlapping tile edge length.
func WithTileStride(stride int64) Option {
	return func(p *Pyramid) { p.stride = stride }
}

// WithScaler overrides the resampling kernel used when a native region
// must be resized to its tile size.
func WithScaler(s draw.Scaler) Option {
	return func(p *Pyramid) { p.scaler = s }
}

// WithObserver installs a trace observer invoked at each major step.
func WithObserver(o Observer) Option {
	return func(p *Pyramid) { p.observe = o }
}

// Open opens the slide at path through the given opener and resolves
// its Deep Zoom geometry. A missing file fails before any decoder call;
// a geometry failure after the native handle was acquired still
// releases the handle before returning.
func Open(path string, open slide.Opener, opts ...Option) (*Pyramid, error) {
	src, err := slide.Open(path, open)
	if err != nil {
		return nil, err
	}
	return New(src, opts...)
}

// New resolves the Deep Zoom geometry over an already-open slide. On
// failure the slide is closed; no partial pyramid is ever returned.
func New(src *slide.Checked, opts ...Option) (*Pyramid, error) {
	p := &Pyramid{
		src:    src,
		stride: DefaultTileStride,
		scaler: draw.ApproxBiLinear,
	}
	for _, opt := range opts {
		opt(p)
	}
	geo, err := p.resolveGeometry()
	if err != nil {
		src.Close()
		return nil, err
	}
	p.geo = geo
	p.trace("open", "pyramid ready, %d levels", len(geo.levels))
	return p, nil
}

// LevelCount reports the number of Deep Zoom levels, coarsest first.
func (p *Pyramid) LevelCount() int { return len(p.geo.levels) }

// TileStride reports the non-overlapping tile edge length.
func (p *Pyramid) TileStride() int64 { return p.stride }

// FullResolutionSize reports the slide's full pixel dimensions, equal
// to the finest Deep Zoom level.
func (p *Pyramid) FullResolutionSize() models.Dimensions {
	return p.geo.levels[len(p.geo.levels)-1].size
}

// LevelDimensions reports the pixel size of one Deep Zoom level.
func (p *Pyramid) LevelDimensions(level int) (models.Dimensions, error) {
	if level < 0 || level >= len(p.geo.levels) {
		return models.Dimensions{}, addressErr(models.TileAddress{Level: level}, "level outside pyramid")
	}
	return p.geo.levels[level].size, nil
}

// TileGrid reports how many tiles cover one Deep Zoom level.
func (p *Pyramid) TileGrid(level int) (models.Dimensions, error) {
	if level < 0 || level >= len(p.geo.levels) {
		return models.Dimensions{}, addressErr(models.TileAddress{Level: level}, "level outside pyramid")
	}
	return p.geo.levels[level].grid, nil
}

// EasyLevels reports the Deep Zoom levels whose total downsample is
// within tolerance of 1 and can therefore be served without any
// resampling. The finest level is always a member.
func (p *Pyramid) EasyLevels() []int {
	out := make([]int, len(p.geo.easy))
	copy(out, p.geo.easy)
	return out
}

// GetTilePixels translates the tile address, reads the native region
// and returns the tile at its exact overlap-adjusted size. Address
// violations fail with ErrAddressOutOfRange before any decoder call;
// decoder failures surface as *slide.DecoderError and leave the handle
// valid for further requests.
func (p *Pyramid) GetTilePixels(level, row, col int) (*image.RGBA, error) {
	req, err := p.translate(models.TileAddress{Level: level, Row: row, Col: col})
	if err != nil {
		return nil, err
	}
	return p.extract(req)
}

// MicronsPerPixel reports the slide's physical pixel pitch, or 0 when
// the decoder does not expose a usable value.
func (p *Pyramid) MicronsPerPixel() float64 {
	return p.src.MicronsPerPixel()
}

// Close releases the native slide handle. Safe to call more than once;
// the handle is released exactly once.
func (p *Pyramid) Close() {
	p.trace("close", "releasing slide handle")
	p.src.Close()
}
