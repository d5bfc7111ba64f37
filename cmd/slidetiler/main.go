package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"slidetiler/internal/logging"
	"slidetiler/pkg/config"
	"slidetiler/pkg/server"
	"slidetiler/pkg/slide"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "slidetiler.yaml", "Path to YAML configuration file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	slideDir := flag.String("slides", "", "Directory containing slide files (overrides config)")
	demo := flag.Bool("demo", false, "Serve a synthetic slide instead of real files")
	dumpSlide := flag.String("dump", "", "Write every tile of the named slide to disk and exit")
	dumpDir := flag.String("dump-dir", "tiles", "Directory to write dumped tiles into")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *slideDir != "" {
		cfg.Server.SlideDir = *slideDir
	}

	logging.Setup(cfg.Log.File, cfg.Log.MaxSize, cfg.Log.MaxAge)
	defer logging.Close()

	opener := defaultOpener
	if *demo {
		opener = slide.OpenSynthetic
		// The synthetic source ignores its path, but the serving
		// layer still checks that the slide file exists, so stage an
		// empty placeholder named "demo".
		dir, err := os.MkdirTemp("", "slidetiler-demo")
		if err != nil {
			log.Fatalf("Failed to create demo directory: %v", err)
		}
		defer os.RemoveAll(dir)
		if err := os.WriteFile(filepath.Join(dir, "demo"), nil, 0644); err != nil {
			log.Fatalf("Failed to stage demo slide: %v", err)
		}
		cfg.Server.SlideDir = dir
		fmt.Println("Demo slide available at /slides/demo.dzi")
	}

	if *dumpSlide != "" {
		if err := dumpTiles(cfg, opener, *dumpSlide, *dumpDir); err != nil {
			log.Fatalf("Tile dump failed: %v", err)
		}
		return
	}

	fmt.Println("================================")
	fmt.Println("SLIDETILER - DEEP ZOOM TILE SERVER FOR WHOLE-SLIDE IMAGES")
	fmt.Printf("Serving %s tiles, stride %d px\n", cfg.Tile.Format, cfg.Tile.Stride)
	fmt.Println("================================")

	srv := server.New(cfg, opener)
	defer srv.Close()
	if err := srv.ListenAndServe(); err != nil {
		logging.Errorf("Server stopped: %v", err)
	}
}
