package models

// Dimensions is an ordered (width, height) pair measured in pixels.
// It appears at three granularities: native slide levels, derived
// Deep Zoom levels, and individual tile sizes.
type Dimensions struct {
	// Width is the horizontal extent in pixels
	Width int64

	// Height is the vertical extent in pixels
	Height int64
}

// MaxSide returns the larger of the two axes.
func (d Dimensions) MaxSide() int64 {
	if d.Width > d.Height {
		return d.Width
	}
	return d.Height
}

// TileAddress identifies one tile in the Deep Zoom pyramid by level,
// row and column. Level 0 is the coarsest (1x1 or near it); rows and
// columns are bounded by the tile grid of that level.
type TileAddress struct {
	// Level is the Deep Zoom level index
	Level int

	// Row is the vertical tile coordinate within the level
	Row int

	// Col is the horizontal tile coordinate within the level
	Col int
}

// RegionRequest holds fully resolved native coordinates ready to hand
// to the slide decoder. It is constructed per tile request and consumed
// immediately.
type RegionRequest struct {
	// NativeLevel is the decoder level the region is read from
	NativeLevel int

	// X, Y are the region origin in native level-0 pixel coordinates,
	// as the decoder expects them
	X, Y int64

	// Size is the region extent in pixels of the chosen native level
	Size Dimensions

	// TileSize is the overlap-adjusted Deep Zoom tile size the region
	// must be resized to after reading
	TileSize Dimensions
}
