//go:build !openslide

package main

import (
	"errors"

	"slidetiler/pkg/slide"
)

// defaultOpener refuses real slide files in builds without the cgo
// decoder; only -demo works then. Build with -tags openslide to serve
// vendor slides.
var defaultOpener slide.Opener = func(string) (slide.Source, error) {
	return nil, errors.New("built without openslide support (use -tags openslide, or -demo)")
}
