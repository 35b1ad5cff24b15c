package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"imgseries/internal/rawload"
	"imgseries/pkg/config"
	"imgseries/pkg/imageseries"
	"imgseries/pkg/save"
)

func main() {
	// Parse command line arguments
	inputFile := flag.String("input", "", "Raw little-endian frame dump to load")
	configPath := flag.String("config", "imgseries.yaml", "Optional YAML config file")
	outputName := flag.String("output", "", "Output path (container directory or descriptor file)")
	format := flag.String("format", "", "Output format: hdf5 or frame-cache")
	dtypeName := flag.String("dtype", "", "Pixel dtype of the input, e.g. uint16")
	rows := flag.Int("rows", 0, "Rows per frame")
	cols := flag.Int("cols", 0, "Columns per frame")
	groupPath := flag.String("path", "", "Group path inside the container (hdf5 format)")
	compression := flag.String("compression", "", "Chunk codec: gzip, zstd, lz4, none (hdf5 format)")
	threshold := flag.Float64("threshold", -1, "Intensity cutoff (frame-cache format)")
	percentile := flag.Float64("threshold-percentile", 0, "Derive the cutoff from this pixel quantile in (0,1] (frame-cache format)")
	cacheFile := flag.String("cache-file", "", "Archive path (frame-cache format)")
	checksum := flag.Bool("checksum", false, "Record an archive checksum in the descriptor (frame-cache format)")
	flag.Parse()

	// Validate inputs
	if *inputFile == "" || *outputName == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override config values.
	if *format != "" {
		cfg.Write.Format = *format
	}
	if *dtypeName != "" {
		cfg.Input.Dtype = *dtypeName
	}
	if *rows > 0 {
		cfg.Input.Rows = *rows
	}
	if *cols > 0 {
		cfg.Input.Cols = *cols
	}
	if *groupPath != "" {
		cfg.Write.GroupPath = *groupPath
	}
	if *compression != "" {
		cfg.Write.Compression = *compression
	}
	if *threshold >= 0 {
		cfg.Write.Threshold = *threshold
	}
	if *percentile > 0 {
		cfg.Write.ThresholdPercentile = *percentile
	}
	if *cacheFile != "" {
		cfg.Write.CacheFile = *cacheFile
	}
	if *checksum {
		cfg.Write.Checksum = true
	}

	dtype, err := imageseries.ParseDtype(cfg.Input.Dtype)
	if err != nil {
		log.Fatalf("Invalid dtype: %v", err)
	}
	if cfg.Input.Rows <= 0 || cfg.Input.Cols <= 0 {
		log.Fatalf("Frame shape must be given via -rows/-cols or the config file")
	}

	series, err := rawload.Load(*inputFile, dtype, cfg.Input.Rows, cfg.Input.Cols)
	if err != nil {
		log.Fatalf("Failed to load frames: %v", err)
	}
	fmt.Printf("Loaded %d frames of %dx%d %s pixels\n", series.Len(), cfg.Input.Rows, cfg.Input.Cols, dtype)

	var opts any
	switch cfg.Write.Format {
	case save.FormatHDF5:
		opts = save.HDF5Options{
			Path:        cfg.Write.GroupPath,
			Compression: cfg.Write.Compression,
		}
	case save.FormatFrameCache:
		cutoff := cfg.Write.Threshold
		if p := cfg.Write.ThresholdPercentile; p > 0 && p <= 1 {
			cutoff = series.Percentile(p)
			fmt.Printf("Derived threshold %.4f from the %.0fth percentile\n", cutoff, p*100)
		}
		opts = save.FrameCacheOptions{
			Threshold: cutoff,
			CacheFile: cfg.Write.CacheFile,
			Checksum:  cfg.Write.Checksum,
		}
	default:
		log.Fatalf("Unknown format %q (registered: %v)", cfg.Write.Format, save.Formats())
	}

	if err := save.Write(series, *outputName, cfg.Write.Format, opts); err != nil {
		log.Fatalf("Write failed: %v", err)
	}

	fmt.Printf("Wrote %s output to: %s\n", cfg.Write.Format, *outputName)
	if cfg.Write.Format == save.FormatFrameCache {
		fmt.Printf("Sparse archive saved to: %s\n", cfg.Write.CacheFile)
	}

	stats := series.Stats()
	fmt.Printf("Pixel range: [%.2f, %.2f], mean %.2f\n", stats.Min, stats.Max, stats.Mean)
}
