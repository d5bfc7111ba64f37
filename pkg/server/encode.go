package server

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
)

// encodeTile serializes a tile to the transport format named in the
// request URL. "jpg" is accepted as an alias for "jpeg".
func encodeTile(img image.Image, format string, quality int) ([]byte, string, error) {
	var buf bytes.Buffer
	switch format {
	case "jpeg", "jpg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, "", fmt.Errorf("encoding jpeg tile: %w", err)
		}
		return buf.Bytes(), "image/jpeg", nil
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", fmt.Errorf("encoding png tile: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	default:
		return nil, "", fmt.Errorf("unsupported tile format %q", format)
	}
}
