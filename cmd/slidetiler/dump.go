package main

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"slidetiler/internal/logging"
	"slidetiler/pkg/config"
	"slidetiler/pkg/deepzoom"
	"slidetiler/pkg/slide"
)

// dumpTiles pre-generates the whole Deep Zoom pyramid of one slide on
// disk, in the {level}/{col}_{row}.{format} layout viewers expect, plus
// the .dzi descriptor next to it.
func dumpTiles(cfg *config.Config, opener slide.Opener, name, outDir string) error {
	path := filepath.Join(cfg.Server.SlideDir, filepath.Base(name))
	p, err := deepzoom.Open(path, opener, deepzoom.WithTileStride(cfg.Tile.Stride))
	if err != nil {
		return fmt.Errorf("opening slide: %w", err)
	}
	defer p.Close()

	full := p.FullResolutionSize()
	fmt.Printf("Dumping %s (%dx%d, %d levels) to %s\n",
		name, full.Width, full.Height, p.LevelCount(), outDir)
	start := time.Now()

	doc, err := p.DZI(cfg.Tile.Format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, name+".dzi"), doc, 0644); err != nil {
		return err
	}

	var tiles, totalBytes int64
	for level := 0; level < p.LevelCount(); level++ {
		grid, err := p.TileGrid(level)
		if err != nil {
			return err
		}
		levelDir := filepath.Join(outDir, fmt.Sprintf("%d", level))
		if err := os.MkdirAll(levelDir, 0755); err != nil {
			return err
		}
		for row := int64(0); row < grid.Height; row++ {
			for col := int64(0); col < grid.Width; col++ {
				img, err := p.GetTilePixels(level, int(row), int(col))
				if err != nil {
					return fmt.Errorf("tile %d/%d_%d: %w", level, col, row, err)
				}
				var buf bytes.Buffer
				switch cfg.Tile.Format {
				case "png":
					err = png.Encode(&buf, img)
				default:
					err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: cfg.Tile.Quality})
				}
				if err != nil {
					return fmt.Errorf("encoding tile %d/%d_%d: %w", level, col, row, err)
				}
				tilePath := filepath.Join(levelDir, fmt.Sprintf("%d_%d.%s", col, row, cfg.Tile.Format))
				if err := os.WriteFile(tilePath, buf.Bytes(), 0644); err != nil {
					return err
				}
				tiles++
				totalBytes += int64(buf.Len())
			}
		}
		logging.Infof("Level %d done: %dx%d tiles", level, grid.Width, grid.Height)
	}

	fmt.Printf("Wrote %d tiles (%s) in %.2f seconds\n",
		tiles, humanize.Bytes(uint64(totalBytes)), time.Since(start).Seconds())
	return nil
}
