package deepzoom

import (
	"math"

	"slidetiler/internal/models"
)

// tileOverlap is the number of pixels a tile border shares with its
// neighbor. Borders on the edge of a level carry no overlap. Deep Zoom
// viewers require exactly one pixel so adjacent tiles blend seamlessly.
const tileOverlap = 1

// translate maps a Deep Zoom tile address to the native region that
// must be read to satisfy it. The address is validated against the
// precomputed level table and tile grid before any arithmetic, so an
// out-of-range request never reaches the decoder.
func (p *Pyramid) translate(addr models.TileAddress) (models.RegionRequest, error) {
	if addr.Level < 0 || addr.Level >= len(p.geo.levels) {
		return models.RegionRequest{}, addressErr(addr, "level outside pyramid")
	}
	lg := p.geo.levels[addr.Level]
	if addr.Col < 0 || int64(addr.Col) >= lg.grid.Width ||
		addr.Row < 0 || int64(addr.Row) >= lg.grid.Height {
		return models.RegionRequest{}, addressErr(addr, "outside tile grid")
	}

	// Interior borders carry tileOverlap pixels, level edges none.
	var oLeft, oTop, oRight, oBottom int64
	if addr.Col > 0 {
		oLeft = tileOverlap
	}
	if addr.Row > 0 {
		oTop = tileOverlap
	}
	if int64(addr.Col) < lg.grid.Width-1 {
		oRight = tileOverlap
	}
	if int64(addr.Row) < lg.grid.Height-1 {
		oBottom = tileOverlap
	}

	tile := models.Dimensions{
		Width:  minI64(p.stride, lg.size.Width-p.stride*int64(addr.Col)) + oLeft + oRight,
		Height: minI64(p.stride, lg.size.Height-p.stride*int64(addr.Row)) + oTop + oBottom,
	}
	if tile.Width <= 0 || tile.Height <= 0 {
		return models.RegionRequest{}, addressErr(addr, "empty tile")
	}

	// Tile origin in Deep Zoom level pixels, then in native level
	// pixels via the residual downsample. The native read origin is
	// expressed in level-0 coordinates, so it is additionally scaled by
	// the chosen native level's own downsample; location rounds down,
	// size rounds up, and the size is clamped to the native level
	// bounds.
	dzX := float64(p.stride*int64(addr.Col) - oLeft)
	dzY := float64(p.stride*int64(addr.Row) - oTop)
	nativeX := lg.residual * dzX
	nativeY := lg.residual * dzY

	req := models.RegionRequest{
		NativeLevel: lg.nativeLevel,
		X:           int64(math.Floor(lg.nativeDownsample * nativeX)),
		Y:           int64(math.Floor(lg.nativeDownsample * nativeY)),
		Size: models.Dimensions{
			Width: minI64(
				int64(math.Ceil(lg.residual*float64(tile.Width))),
				lg.nativeSize.Width-int64(math.Ceil(nativeX)),
			),
			Height: minI64(
				int64(math.Ceil(lg.residual*float64(tile.Height))),
				lg.nativeSize.Height-int64(math.Ceil(nativeY)),
			),
		},
		TileSize: tile,
	}
	if req.Size.Width <= 0 || req.Size.Height <= 0 {
		return models.RegionRequest{}, addressErr(addr, "empty native region")
	}
	p.trace("translate", "level=%d row=%d col=%d -> native level %d origin (%d,%d) size %dx%d tile %dx%d",
		addr.Level, addr.Row, addr.Col, req.NativeLevel, req.X, req.Y,
		req.Size.Width, req.Size.Height, tile.Width, tile.Height)
	return req, nil
}

func minI64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
