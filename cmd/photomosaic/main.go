// Copyright 2025 The photomosaic Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/pixelfield/photomosaic"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	flagTarget       string
	flagCells        string
	flagRecursive    bool
	flagSettingsFile string
	flagCacheDir     string
	flagPrintSize    string
	flagCellMM       float64
	flagPercent      int
	flagPattern      string
	flagRatio        string
	flagUseAll       bool
	flagMirror       bool
	flagSpacing      int
	flagQuality      uint
	flagWorkers      int
	flagVerbose      bool
)

func main() {
	root := &cobra.Command{
		Use:   "photomosaic",
		Short: "Generate photomosaics from a target image and a pool of cell photos",
		Long: `photomosaic replaces every tile of a grid laid over the target image
with the cell photo whose average color matches that region best, under
duplicate-avoidance constraints, and writes the composed image at print
resolution (300 dpi).`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagVerbose {
				log.SetLevel(log.DebugLevel)
			}
		},
		RunE: runGenerate,
	}

	root.Flags().StringVar(&flagTarget, "target", "", "path of the target image (required)")
	root.Flags().StringVar(&flagCells, "cells", "", "directory containing the candidate cell photos (required)")
	root.Flags().BoolVar(&flagRecursive, "recursive", false, "scan the cells directory recursively")
	root.Flags().StringVar(&flagSettingsFile, "settings", "", "yaml file with mosaic settings (flags override)")
	root.Flags().StringVar(&flagCacheDir, "cache-dir", "", "directory the output file is written to (default ~/.photomosaic)")
	root.Flags().StringVar(&flagPrintSize, "print", "10x15", "print size in inches, WxH")
	root.Flags().Float64Var(&flagCellMM, "cell-mm", 12.7, "cell edge length in millimeters")
	root.Flags().IntVar(&flagPercent, "percent", 30, "color change percent (0-100)")
	root.Flags().StringVar(&flagPattern, "pattern", "square", "tile pattern: square or parquet")
	root.Flags().StringVar(&flagRatio, "ratio", "2:1", "parquet landscape:portrait ratio")
	root.Flags().BoolVar(&flagUseAll, "use-all", false, "place every candidate once before any repeat")
	root.Flags().BoolVar(&flagMirror, "mirror", false, "allow mirrored candidate variants")
	root.Flags().IntVar(&flagSpacing, "spacing", 0, "minimum grid distance between reuses of a photo")
	root.Flags().UintVar(&flagQuality, "quality", 3, "interpolation quality (0-5)")
	root.Flags().IntVar(&flagWorkers, "workers", 0, "worker goroutines for decode/compose (0 = number of CPUs)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	root.MarkFlagRequired("target")
	root.MarkFlagRequired("cells")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	settings, err := buildSettings(cmd)
	if err != nil {
		return err
	}

	cacheDir := flagCacheDir
	if cacheDir == "" {
		home, err := homedir.Dir()
		if err != nil {
			return fmt.Errorf("can't determine home directory: %w", err)
		}
		cacheDir = filepath.Join(home, ".photomosaic")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return err
	}

	candidates, err := scanCellDir(flagCells, flagRecursive)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"dir":   flagCells,
		"count": len(candidates),
	}).Debug("Scanned cell photo directory")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription("starting"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	engine := photomosaic.NewEngine(flagWorkers)
	result, err := engine.Generate(ctx, photomosaic.GenerateRequest{
		TargetPath:     flagTarget,
		CandidatePaths: candidates,
		Settings:       settings,
		CacheDir:       cacheDir,
		Progress: func(p photomosaic.GenerationProgress) {
			bar.Describe(p.Stage.String())
			bar.Set(p.Percent)
		},
	})
	bar.Finish()
	if err != nil {
		if ctx.Err() != nil {
			log.Info("Generation cancelled, no output written")
			return nil
		}
		return err
	}

	fmt.Printf("Mosaic written to %s\n", result.OutputFilePath)
	fmt.Printf("  grid: %d x %d units, canvas %dx%d px\n",
		result.GridRows, result.GridColumns, result.OutputWidth, result.OutputHeight)
	fmt.Printf("  cell photos used: %d of %d, took %d ms\n",
		result.UsedCellPhotos, result.TotalCellPhotos, result.GenerationTimeMs)
	return nil
}

// buildSettings loads the optional yaml settings file and applies every
// flag the user set explicitly on top of it.
func buildSettings(cmd *cobra.Command) (photomosaic.MosaicSettings, error) {
	var settings photomosaic.MosaicSettings

	if flagSettingsFile != "" {
		data, err := os.ReadFile(flagSettingsFile)
		if err != nil {
			return settings, err
		}
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return settings, fmt.Errorf("can't parse settings file: %w", err)
		}
	}

	fromFile := flagSettingsFile != ""
	set := func(name string) bool {
		return !fromFile || cmd.Flags().Changed(name)
	}

	if set("print") {
		w, h, err := parsePrintSize(flagPrintSize)
		if err != nil {
			return settings, err
		}
		settings.PrintSize = photomosaic.PrintSize{
			Label:        flagPrintSize,
			WidthInches:  w,
			HeightInches: h,
		}
	}
	if set("cell-mm") {
		settings.CellSize = photomosaic.CellSize{
			Label:       fmt.Sprintf("%.1f mm", flagCellMM),
			Millimeters: flagCellMM,
		}
	}
	if set("percent") {
		settings.ColorChangePercent = flagPercent
	}
	if set("pattern") {
		pattern, err := photomosaic.ParsePattern(flagPattern)
		if err != nil {
			return settings, err
		}
		settings.Pattern = pattern
	}
	if set("ratio") {
		ratio, err := parseRatio(flagRatio)
		if err != nil {
			return settings, err
		}
		settings.ParquetRatio = ratio
	}
	if set("use-all") {
		settings.UseAllImages = flagUseAll
	}
	if set("mirror") {
		settings.MirrorImages = flagMirror
	}
	if set("spacing") {
		settings.DuplicateSpacing = flagSpacing
	}
	if set("quality") {
		settings.Quality = flagQuality
	}
	return settings, nil
}

// parsePrintSize parses a string of the form "WxH" where W and H are
// positive numbers of inches.
func parsePrintSize(s string) (float64, float64, error) {
	split := strings.Split(s, "x")
	if len(split) != 2 {
		return 0, 0, fmt.Errorf("invalid print size format: %s, expect \"WxH\"", s)
	}
	w, errW := strconv.ParseFloat(strings.TrimSpace(split[0]), 64)
	h, errH := strconv.ParseFloat(strings.TrimSpace(split[1]), 64)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid print size: %s", s)
	}
	return w, h, nil
}

// parseRatio parses a string of the form "L:P" with positive integers.
func parseRatio(s string) (photomosaic.ParquetRatio, error) {
	split := strings.Split(s, ":")
	if len(split) != 2 {
		return photomosaic.ParquetRatio{}, fmt.Errorf("invalid ratio format: %s, expect \"L:P\"", s)
	}
	l, errL := strconv.Atoi(strings.TrimSpace(split[0]))
	p, errP := strconv.Atoi(strings.TrimSpace(split[1]))
	if errL != nil || errP != nil || l < 1 || p < 1 {
		return photomosaic.ParquetRatio{}, fmt.Errorf("invalid ratio: %s", s)
	}
	return photomosaic.ParquetRatio{Landscape: l, Portrait: p}, nil
}

// scanCellDir collects the candidate photo paths from a directory,
// filtering by supported extensions. The result is sorted by the walk
// order, which is lexical and therefore stable across runs.
func scanCellDir(root string, recursive bool) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	var paths []string
	if recursive {
		err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && photomosaic.DefaultSupported(filepath.Ext(path)) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return paths, nil
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if !entry.IsDir() && photomosaic.DefaultSupported(filepath.Ext(entry.Name())) {
			paths = append(paths, filepath.Join(root, entry.Name()))
		}
	}
	return paths, nil
}
