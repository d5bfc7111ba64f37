package deepzoom

import "encoding/xml"

const dziNamespace = "http://schemas.microsoft.com/deepzoom/2008"

// dziImage is the Deep Zoom Image descriptor document tile viewers
// bootstrap from. TileSize is the stride: viewers add the overlap
// themselves when computing tile extents.
type dziImage struct {
	XMLName  xml.Name `xml:"Image"`
	Xmlns    string   `xml:"xmlns,attr"`
	TileSize int64    `xml:"TileSize,attr"`
	Overlap  int      `xml:"Overlap,attr"`
	Format   string   `xml:"Format,attr"`
	Size     dziSize  `xml:"Size"`
}

type dziSize struct {
	Width  int64 `xml:"Width,attr"`
	Height int64 `xml:"Height,attr"`
}

// DZI renders the descriptor for this pyramid with the given tile
// image format ("jpeg" or "png").
func (p *Pyramid) DZI(format string) ([]byte, error) {
	full := p.FullResolutionSize()
	doc := dziImage{
		Xmlns:    dziNamespace,
		TileSize: p.stride,
		Overlap:  tileOverlap,
		Format:   format,
		Size:     dziSize{Width: full.Width, Height: full.Height},
	}
	out, err := xml.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
