package deepzoom

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"slidetiler/pkg/slide"
)

// failingSource reports no usable levels; every query is a sentinel
// with a recorded error.
type failingSource struct {
	closed int
}

func (f *failingSource) LevelCount() int                                  { return -1 }
func (f *failingSource) LevelDimensions(int) (int64, int64)               { return -1, -1 }
func (f *failingSource) LevelDownsample(int) float64                      { return -1 }
func (f *failingSource) BestLevelForDownsample(float64) int               { return -1 }
func (f *failingSource) ReadRegion([]byte, int64, int64, int, int64, int64) {}
func (f *failingSource) LastError() string                                { return "decoder exploded" }
func (f *failingSource) PropertyValue(string) string                      { return "" }
func (f *failingSource) Close()                                           { f.closed++ }

// countingSource wraps the synthetic source and counts region reads so
// tests can assert that invalid addresses never reach the decoder.
type countingSource struct {
	*slide.Synthetic
	reads int
}

func (c *countingSource) ReadRegion(buf []byte, x, y int64, level int, w, h int64) {
	c.reads++
	c.Synthetic.ReadRegion(buf, x, y, level, w, h)
}

// brokenReadSource serves valid geometry but fails every region read
// the way the native decoder does: a blank buffer plus a recorded
// error, with no return value.
type brokenReadSource struct {
	*slide.Synthetic
	failing bool
	lastErr string
}

func (b *brokenReadSource) ReadRegion(buf []byte, x, y int64, level int, w, h int64) {
	if b.failing {
		b.lastErr = "tile data corrupt"
		for i := range buf {
			buf[i] = 0
		}
		return
	}
	b.Synthetic.ReadRegion(buf, x, y, level, w, h)
}

func (b *brokenReadSource) LastError() string {
	if b.lastErr != "" {
		return b.lastErr
	}
	return b.Synthetic.LastError()
}

// TestGetTilePixelsIdempotent verifies that two identical requests
// against an unmodified slide return pixel-identical buffers.
func TestGetTilePixelsIdempotent(t *testing.T) {
	p := newTestPyramid(t, 4096, 3072, 3)

	first, err := p.GetTilePixels(12, 0, 0)
	if err != nil {
		t.Fatalf("GetTilePixels failed: %v", err)
	}
	second, err := p.GetTilePixels(12, 0, 0)
	if err != nil {
		t.Fatalf("GetTilePixels failed on repeat: %v", err)
	}
	if !bytes.Equal(first.Pix, second.Pix) {
		t.Errorf("Expected identical pixels for identical requests")
	}
}

// TestGetTilePixelsSizes checks that easy levels come back at their
// native read size while resampled levels come back at the exact
// overlap-adjusted tile size.
func TestGetTilePixelsSizes(t *testing.T) {
	p := newTestPyramid(t, 4096, 3072, 3)

	img, err := p.GetTilePixels(12, 0, 0)
	if err != nil {
		t.Fatalf("GetTilePixels(12,0,0) failed: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(511, 511) {
		t.Errorf("Expected 511x511 finest corner tile, got %v", got)
	}

	// Level 9 reads 1022x768 natively and must come back as 511x384.
	img, err = p.GetTilePixels(9, 0, 0)
	if err != nil {
		t.Fatalf("GetTilePixels(9,0,0) failed: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(511, 384) {
		t.Errorf("Expected resampled 511x384 tile, got %v", got)
	}

	// Coarsest level is a single pixel.
	img, err = p.GetTilePixels(0, 0, 0)
	if err != nil {
		t.Fatalf("GetTilePixels(0,0,0) failed: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(1, 1) {
		t.Errorf("Expected 1x1 coarsest tile, got %v", got)
	}
}

// TestOutOfRangeNeverReadsDecoder asserts the boundary property: an
// address one step past the tile grid fails without a decoder call.
func TestOutOfRangeNeverReadsDecoder(t *testing.T) {
	src := &countingSource{Synthetic: slide.NewSynthetic(4096, 3072, 3)}
	p, err := New(slide.NewChecked(src))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer p.Close()

	grid, err := p.TileGrid(12)
	if err != nil {
		t.Fatalf("TileGrid failed: %v", err)
	}
	if _, err := p.GetTilePixels(12, int(grid.Height), 0); !errors.Is(err, ErrAddressOutOfRange) {
		t.Errorf("Expected ErrAddressOutOfRange, got %v", err)
	}
	if src.reads != 0 {
		t.Errorf("Expected no decoder reads for an out-of-range address, got %d", src.reads)
	}
}

// TestDecoderReadFailure verifies that a failed region read surfaces as
// a DecoderError and leaves the pyramid usable for later requests.
func TestDecoderReadFailure(t *testing.T) {
	src := &brokenReadSource{Synthetic: slide.NewSynthetic(4096, 3072, 3)}
	p, err := New(slide.NewChecked(src))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer p.Close()

	src.failing = true
	_, err = p.GetTilePixels(12, 0, 0)
	var decErr *slide.DecoderError
	if !errors.As(err, &decErr) {
		t.Fatalf("Expected DecoderError, got %v", err)
	}

	src.failing = false
	src.lastErr = ""
	if _, err := p.GetTilePixels(12, 0, 0); err != nil {
		t.Errorf("Expected the handle to stay valid after a failed read, got %v", err)
	}
}

// TestObserverEvents ensures the injected observer sees construction
// and per-tile steps, with no global state involved.
func TestObserverEvents(t *testing.T) {
	var steps []string
	observe := func(step, detail string) { steps = append(steps, step) }

	p, err := New(slide.NewChecked(slide.NewSynthetic(1024, 1024, 2)), WithObserver(observe))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer p.Close()

	if _, err := p.GetTilePixels(p.LevelCount()-1, 0, 0); err != nil {
		t.Fatalf("GetTilePixels failed: %v", err)
	}

	want := map[string]bool{"geometry": false, "open": false, "translate": false}
	for _, s := range steps {
		if _, ok := want[s]; ok {
			want[s] = true
		}
	}
	for step, seen := range want {
		if !seen {
			t.Errorf("Expected observer to see a %q step, events were %v", step, steps)
		}
	}
}

// TestBlank distinguishes a uniform background tile from one with
// content.
func TestBlank(t *testing.T) {
	flat := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for i := range flat.Pix {
		flat.Pix[i] = 255
	}
	if !Blank(flat) {
		t.Errorf("Expected a uniform tile to be blank")
	}

	textured := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			textured.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255})
		}
	}
	if Blank(textured) {
		t.Errorf("Expected a textured tile to not be blank")
	}
}

// TestDZI validates the descriptor document against the pyramid.
func TestDZI(t *testing.T) {
	p := newTestPyramid(t, 4096, 3072, 3)

	doc, err := p.DZI("jpeg")
	if err != nil {
		t.Fatalf("DZI failed: %v", err)
	}
	for _, want := range []string{
		`TileSize="510"`,
		`Overlap="1"`,
		`Format="jpeg"`,
		`Width="4096"`,
		`Height="3072"`,
	} {
		if !bytes.Contains(doc, []byte(want)) {
			t.Errorf("Expected descriptor to contain %s, got:\n%s", want, doc)
		}
	}
}

// TestCloseReleasesOnce ensures Close is idempotent and later tile
// requests fail cleanly.
func TestCloseReleasesOnce(t *testing.T) {
	src := &countingSource{Synthetic: slide.NewSynthetic(1024, 1024, 2)}
	p, err := New(slide.NewChecked(src))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	p.Close()
	p.Close()

	if _, err := p.GetTilePixels(p.LevelCount()-1, 0, 0); !errors.Is(err, slide.ErrClosed) {
		t.Errorf("Expected ErrClosed after Close, got %v", err)
	}
}
