package deepzoom

import (
	"image"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/stat"

	"slidetiler/internal/models"
)

// extract reads the resolved native region and, when the native and
// tile sizes differ, resizes the result to the exact overlap-adjusted
// tile size. Levels in the easy set always read at 1:1 and skip the
// resize. The decoder writes pixels straight into the returned buffer;
// nothing is cached or written anywhere else.
func (p *Pyramid) extract(req models.RegionRequest) (*image.RGBA, error) {
	buf := make([]byte, req.Size.Width*req.Size.Height*4)
	err := p.src.ReadRegion(buf, req.X, req.Y, req.NativeLevel, req.Size.Width, req.Size.Height)
	if err != nil {
		return nil, err
	}
	img := &image.RGBA{
		Pix:    buf,
		Stride: int(req.Size.Width) * 4,
		Rect:   image.Rect(0, 0, int(req.Size.Width), int(req.Size.Height)),
	}
	if req.Size == req.TileSize {
		return img, nil
	}

	p.trace("resize", "%dx%d -> %dx%d",
		req.Size.Width, req.Size.Height, req.TileSize.Width, req.TileSize.Height)
	dst := image.NewRGBA(image.Rect(0, 0, int(req.TileSize.Width), int(req.TileSize.Height)))
	p.scaler.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst, nil
}

// blankVarianceThreshold is the luminance variance below which a tile
// is considered visually empty. Slide backgrounds are nearly uniform
// white or black; any tissue pushes the variance well above this.
const blankVarianceThreshold = 1.0

// Blank reports whether a tile is visually empty. Pixels are sampled on
// a coarse grid and judged by the variance of their luminance, so the
// probe stays cheap even for full-size tiles. Serving layers use this
// to answer "no content" instead of shipping background tiles.
func Blank(img *image.RGBA) bool {
	b := img.Bounds()
	if b.Empty() {
		return true
	}
	step := b.Dx() / 16
	if step < 1 {
		step = 1
	}
	var lum []float64
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			i := img.PixOffset(x, y)
			r, g, bl := img.Pix[i], img.Pix[i+1], img.Pix[i+2]
			lum = append(lum, 0.299*float64(r)+0.587*float64(g)+0.114*float64(bl))
		}
	}
	return stat.Variance(lum, nil) < blankVarianceThreshold
}
