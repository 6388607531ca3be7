package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"blackhole/config"
	"blackhole/gpu"
	"blackhole/gpu/opencl"
	"blackhole/texture"
)

func main() {
	runtime.LockOSThread()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	flag.IntVar(&cfg.Width, "width", cfg.Width, "Width of the window")
	flag.IntVar(&cfg.Height, "height", cfg.Height, "Height of the window")
	flag.IntVar(&cfg.Antialias, "aa", cfg.Antialias, "Antialiasing factor. Number of rays per pixel will be the square of this number.")
	flag.IntVar(&cfg.TableSize, "table-size", cfg.TableSize, "Number of precomputed ray outcomes")
	flag.StringVar(&cfg.SkyFile, "sky", cfg.SkyFile, "Filename for the skybox (required)")
	flag.StringVar(&cfg.SurfaceFile, "surface", cfg.SurfaceFile, "Filename for the event horizon texture (defaults to solid black)")
	flag.StringVar(&cfg.Backend, "backend", cfg.Backend, "Compute backend (opencl, cpu)")
	flag.BoolVar(&cfg.ReportFPS, "fps", cfg.ReportFPS, "Periodically print frame rate")
	flag.IntVar(&cfg.ServePort, "serve", cfg.ServePort, "Port for the stats/snapshot server (0 disables)")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println("=== Schwarzschild Black Hole Visualizer ===")
	fmt.Printf("Window: %dx%d\n", cfg.Width, cfg.Height)
	fmt.Printf("Antialias: %d rays per pixel\n", cfg.Antialias*cfg.Antialias)
	fmt.Printf("Compute backend: %s\n", cfg.Backend)

	disp, err := newDisplay(cfg.Width, cfg.Height)
	if err != nil {
		log.Fatalf("Failed to create display: %v", err)
	}
	defer disp.close()

	fmt.Println("Loading textures...")
	sky, err := texture.Load(cfg.SkyFile)
	if err != nil {
		log.Fatalf("Failed to load sky texture: %v", err)
	}
	surface := texture.Placeholder()
	if cfg.SurfaceFile != "" {
		if surface, err = texture.Load(cfg.SurfaceFile); err != nil {
			log.Fatalf("Failed to load surface texture: %v", err)
		}
	}

	var comp gpu.Compute
	switch cfg.Backend {
	case "opencl":
		comp, err = opencl.NewCompute(cfg, sky, surface)
	case "cpu":
		comp, err = gpu.NewCPUCompute(cfg, sky, surface)
	}
	if err != nil {
		log.Fatalf("Failed to initialize %s compute: %v", cfg.Backend, err)
	}
	defer comp.Cleanup()

	fmt.Println("Generating outcome table...")
	start := time.Now()
	table, err := comp.GenerateOutcomes()
	if err != nil {
		log.Fatalf("Failed to generate outcome table: %v", err)
	}
	fmt.Printf("Done: %d outcomes (%d captured) in %.2fs\n",
		table.Size(), table.CapturedCount(), time.Since(start).Seconds())

	var stats *statsServer
	if cfg.ServePort > 0 {
		stats = startStatsServer(cfg.ServePort, cfg.Width, cfg.Height, disp.pitch())
	}

	if err := runLoop(cfg, comp, disp, stats); err != nil {
		log.Fatalf("Render loop failed: %v", err)
	}

	fmt.Println("Shutting down...")
}
