package server

import (
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"slidetiler/pkg/config"
	"slidetiler/pkg/slide"
)

// newTestServer stages one slide file named "demo" in a temp directory
// and serves it through the synthetic source.
func newTestServer(t *testing.T, opener slide.Opener) *Server {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "demo"), nil, 0644); err != nil {
		t.Fatalf("Failed to stage slide file: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Server.SlideDir = dir

	s := New(cfg, opener)
	t.Cleanup(s.Close)
	return s
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

// TestDescriptor fetches the .dzi document and checks its shape.
func TestDescriptor(t *testing.T) {
	s := newTestServer(t, slide.OpenSynthetic)

	w := get(t, s, "/slides/demo.dzi")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/xml" {
		t.Errorf("Expected application/xml, got %q", ct)
	}
	body := w.Body.String()
	for _, want := range []string{`TileSize="510"`, `Width="4096"`, `Height="3072"`} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected descriptor to contain %s, got %s", want, body)
		}
	}
}

// TestTile fetches the finest corner tile and decodes it.
func TestTile(t *testing.T) {
	s := newTestServer(t, slide.OpenSynthetic)

	w := get(t, s, "/slides/demo_files/12/0_0.jpeg")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Expected image/jpeg, got %q", ct)
	}
	img, err := jpeg.Decode(w.Body)
	if err != nil {
		t.Fatalf("Tile did not decode as JPEG: %v", err)
	}
	if got := img.Bounds().Size(); got.X != 511 || got.Y != 511 {
		t.Errorf("Expected 511x511 tile, got %v", got)
	}
}

// TestTileOutOfRange ensures an address past the tile grid is a 404,
// not a server failure, and the slide stays usable.
func TestTileOutOfRange(t *testing.T) {
	s := newTestServer(t, slide.OpenSynthetic)

	if w := get(t, s, "/slides/demo_files/12/999_0.jpeg"); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for out-of-range tile, got %d", w.Code)
	}
	if w := get(t, s, "/slides/demo_files/99/0_0.jpeg"); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for out-of-range level, got %d", w.Code)
	}
	if w := get(t, s, "/slides/demo_files/12/0_0.jpeg"); w.Code != http.StatusOK {
		t.Errorf("Expected slide to stay usable after bad requests, got %d", w.Code)
	}
}

// TestMissingSlide ensures a slide file that does not exist is a 404
// raised before any decoder work.
func TestMissingSlide(t *testing.T) {
	s := newTestServer(t, slide.OpenSynthetic)

	if w := get(t, s, "/slides/nothere.dzi"); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing slide, got %d", w.Code)
	}
}

// whiteSource serves a uniform white slide so every tile is blank.
type whiteSource struct {
	*slide.Synthetic
}

func (ws *whiteSource) ReadRegion(buf []byte, x, y int64, level int, w, h int64) {
	for i := range buf {
		buf[i] = 255
	}
}

// TestNoBlanks ensures ?noblanks=true answers 204 for background-only
// tiles and leaves normal tiles untouched.
func TestNoBlanks(t *testing.T) {
	white := func(string) (slide.Source, error) {
		return &whiteSource{Synthetic: slide.NewSynthetic(1024, 1024, 2)}, nil
	}
	s := newTestServer(t, white)

	if w := get(t, s, "/slides/demo_files/10/0_0.jpeg?noblanks=true"); w.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for blank tile, got %d", w.Code)
	}
	if w := get(t, s, "/slides/demo_files/10/0_0.jpeg"); w.Code != http.StatusOK {
		t.Errorf("Expected 200 without noblanks, got %d", w.Code)
	}

	textured := newTestServer(t, slide.OpenSynthetic)
	if w := get(t, textured, "/slides/demo_files/12/0_0.jpeg?noblanks=true"); w.Code != http.StatusOK {
		t.Errorf("Expected 200 for textured tile with noblanks, got %d", w.Code)
	}
}

// TestPNGFormat serves the same tile as PNG when the URL asks for it.
func TestPNGFormat(t *testing.T) {
	s := newTestServer(t, slide.OpenSynthetic)

	w := get(t, s, "/slides/demo_files/12/0_0.png")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %q", ct)
	}
}
