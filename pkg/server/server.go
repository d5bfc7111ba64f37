// Package server exposes open slides as Deep Zoom pyramids over HTTP.
// It is a thin layer: URL coordinates are parsed, handed to the
// deepzoom core, and the resulting tile is encoded to the transport
// format. A failed tile request is reported on that request alone and
// never takes down the process or invalidates the slide handle.
//
// Routes:
//
//	GET /slides/{name}.dzi                              Deep Zoom descriptor
//	GET /slides/{name}_files/{level}/{col}_{row}.{fmt}  one tile
package server

import (
	"errors"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/rs/cors"
	"github.com/zenazn/goji/web"

	"slidetiler/internal/logging"
	"slidetiler/pkg/config"
	"slidetiler/pkg/deepzoom"
	"slidetiler/pkg/slide"
)

var (
	dziRoute  = regexp.MustCompile(`^/slides/(?P<name>[^/]+)\.dzi$`)
	tileRoute = regexp.MustCompile(`^/slides/(?P<name>[^/]+)_files/(?P<level>\d+)/(?P<col>\d+)_(?P<row>\d+)\.(?P<format>jpeg|jpg|png)$`)
)

// Server serves Deep Zoom descriptors and tiles for the slides in one
// directory. Slides are opened lazily on first request and the open
// pyramid is kept for the lifetime of the server, so the per-slide
// geometry is resolved exactly once.
type Server struct {
	cfg    *config.Config
	opener slide.Opener

	mu       sync.Mutex
	pyramids map[string]*deepzoom.Pyramid

	handler http.Handler
}

// New builds a server over the given slide opener. The opener is
// injected so the same server runs against the cgo decoder, the
// synthetic source, or a test fake.
func New(cfg *config.Config, opener slide.Opener) *Server {
	s := &Server{
		cfg:      cfg,
		opener:   opener,
		pyramids: make(map[string]*deepzoom.Pyramid),
	}

	mux := web.New()
	mux.Get(dziRoute, s.descriptor)
	mux.Get(tileRoute, s.tile)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet},
	})
	s.handler = c.Handler(mux)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe runs the server on the configured address until the
// listener fails.
func (s *Server) ListenAndServe() error {
	logging.Infof("Serving slides from %s on %s", s.cfg.Server.SlideDir, s.cfg.Server.Addr)
	return http.ListenAndServe(s.cfg.Server.Addr, s)
}

// Close releases every open slide handle.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, p := range s.pyramids {
		p.Close()
		delete(s.pyramids, name)
	}
}

// pyramid returns the open pyramid for a slide name, opening it on
// first use. The name is reduced to its base so a request can never
// escape the slide directory.
func (s *Server) pyramid(name string) (*deepzoom.Pyramid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pyramids[name]; ok {
		return p, nil
	}
	path := filepath.Join(s.cfg.Server.SlideDir, filepath.Base(name))
	p, err := deepzoom.Open(path, s.opener,
		deepzoom.WithTileStride(s.cfg.Tile.Stride),
		deepzoom.WithObserver(func(step, detail string) {
			logging.Debugf("%s: %s: %s", name, step, detail)
		}))
	if err != nil {
		return nil, err
	}
	s.pyramids[name] = p
	return p, nil
}

func (s *Server) descriptor(c web.C, w http.ResponseWriter, r *http.Request) {
	p, err := s.pyramid(c.URLParams["name"])
	if err != nil {
		replyError(w, r, err)
		return
	}
	doc, err := p.DZI(s.cfg.Tile.Format)
	if err != nil {
		replyError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.Write(doc)
}

func (s *Server) tile(c web.C, w http.ResponseWriter, r *http.Request) {
	p, err := s.pyramid(c.URLParams["name"])
	if err != nil {
		replyError(w, r, err)
		return
	}
	level, err := strconv.Atoi(c.URLParams["level"])
	if err != nil {
		http.Error(w, "bad level", http.StatusBadRequest)
		return
	}
	col, err := strconv.Atoi(c.URLParams["col"])
	if err != nil {
		http.Error(w, "bad column", http.StatusBadRequest)
		return
	}
	row, err := strconv.Atoi(c.URLParams["row"])
	if err != nil {
		http.Error(w, "bad row", http.StatusBadRequest)
		return
	}

	img, err := p.GetTilePixels(level, row, col)
	if err != nil {
		replyError(w, r, err)
		return
	}
	if r.URL.Query().Get("noblanks") == "true" && deepzoom.Blank(img) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	data, contentType, err := encodeTile(img, c.URLParams["format"], s.cfg.Tile.Quality)
	if err != nil {
		replyError(w, r, err)
		return
	}
	logging.Debugf("GET %s -> %s tile (%s)", r.URL.Path, contentType, humanize.Bytes(uint64(len(data))))
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// replyError maps core errors onto HTTP statuses. Address violations
// and missing slides are client errors; decoder failures are server
// errors but leave the slide open for the next request.
func replyError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, deepzoom.ErrAddressOutOfRange), errors.Is(err, slide.ErrFileNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, slide.ErrUnrecognizedFormat), errors.Is(err, slide.ErrVendorUnsupported):
		http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
	default:
		logging.Errorf("GET %s: %v", r.URL.Path, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
