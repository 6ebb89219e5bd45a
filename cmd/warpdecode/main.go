package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mirror-warp/internal/batch"
	"mirror-warp/internal/config"
	"mirror-warp/internal/export"
	"mirror-warp/internal/logging"
	"mirror-warp/internal/warpmap"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	dataDir := flag.String("data", "", "Path to data directory (default: auto-detect)")
	outputDir := flag.String("output", "", "Batch output directory (default: <data>/../warp-decoded)")
	mapDiv := flag.Float64("div", 0, "Map divisor (default: 4095)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	debug := flag.Bool("debug", false, "Decode the masked inspection variant and export it")
	format := flag.String("format", ".png", "Batch export format: .png, .tiff or .webp")
	preview := flag.Int("preview", 0, "Also write WebP previews with this maximum size")
	verbose := flag.Bool("v", false, "Debug logging to stderr")

	flag.Parse()

	if *verbose {
		logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	cfg.Resolve(config.Flags{
		DataDir:   *dataDir,
		OutputDir: *outputDir,
		MapDiv:    *mapDiv,
		Workers:   *workers,
		Debug:     *debug,
	})

	if flag.NArg() == 0 {
		os.Exit(decodeOne(cfg))
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = "warp-decoded"
	}

	batchCfg := batch.Config{
		OutputDir:   cfg.OutputDir,
		Decode:      cfg.DecodeOptions(cfg.DebugExport),
		Format:      *format,
		PreviewSize: *preview,
		Workers:     cfg.Workers,
		Progress:    2 * time.Second,
	}

	fmt.Printf("Warp map decode → %s\n", batchCfg.Format)
	fmt.Printf("Maps: %d, Workers: %d, Masked: %v\n", flag.NArg(), batchCfg.Workers, cfg.DebugExport)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	results := batch.Run(batchCfg, batch.JobsFromPaths(flag.Args()))
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
			fmt.Printf("  %s: %s\n", r.Name, r.Error)
			continue
		}
		if r.Stats.OutOfRange > 0 {
			fmt.Printf("  %s: %d texels outside [0,1]\n", r.Name, r.Stats.OutOfRange)
		}
	}
	fmt.Printf("Decoded: %d/%d\n", len(results)-failed, len(results))

	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if err := batch.WriteManifest(manifestPath, batch.NewManifest(batchCfg, results)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// decodeOne decodes the configured map for runtime use and, when debug
// export is on, writes the masked variant to the fixed export path.
func decodeOne(cfg config.Config) int {
	if cfg.DataDir == "" {
		fmt.Fprintln(os.Stderr, "Error: cannot find data directory. Use -data flag, config.json or pass map files.")
		return 1
	}

	img, err := warpmap.Load(cfg.MapFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	m, err := warpmap.Decode(img, cfg.DecodeOptions(false))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	s := m.Stats()
	fmt.Printf("Map: %s (%dx%d)\n", cfg.MapFile, m.Width, m.Height)
	fmt.Printf("  u: min %.4f max %.4f mean %.4f\n", s.U.Min, s.U.Max, s.U.Mean)
	fmt.Printf("  v: min %.4f max %.4f mean %.4f\n", s.V.Min, s.V.Max, s.V.Mean)
	fmt.Printf("  out of range: %d\n", s.OutOfRange)

	if !cfg.DebugExport {
		return 0
	}

	dbg, err := warpmap.Decode(img, cfg.DecodeOptions(true))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: debug decode: %v\n", err)
		return 0
	}
	if err := export.Write(cfg.ExportPath, dbg); err != nil {
		// The runtime map above is unaffected; only the diagnostic copy failed.
		fmt.Fprintf(os.Stderr, "Warning: debug export: %v\n", err)
		return 0
	}
	fmt.Printf("Debug export: %s\n", cfg.ExportPath)
	return 0
}
