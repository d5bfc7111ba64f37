//go:build openslide

package main

import "slidetiler/pkg/slide"

// defaultOpener uses the cgo libopenslide binding when built with the
// openslide tag.
var defaultOpener slide.Opener = slide.OpenSlide
