// Copyright 2026 The greedytile Authors
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
	"runtime"
	"time"

	"github.com/agfadergadefrg/greedytile"
	"github.com/agfadergadefrg/greedytile/anim"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	seed          int64
	iterations    int
	width         int
	height        int
	size          string
	rotate        bool
	mirror        bool
	prefill       bool
	visualize     bool
	analysis      bool
	quiet         bool
	noSkip        bool
	recursive     bool
	scale         int
	interp        uint
	animScale     int
	configFile    string
	logPlacements bool
	routines      int
	verbose       bool
	metric        string
)

var rootCmd = &cobra.Command{
	Use:   "greedytile TARGET",
	Short: "Generate images from the tiles of pixel art sources",
	Long: `greedytile synthesizes a new image for each source image by greedily
placing 3x3 tiles taken from the source.

TARGET is either a single image or a directory. For a source "name.png" the
result is written to "name_result.png", existing results are skipped unless
--no-skip is given. With --prefill the pixels of "name_pre.png" are fixed
before the synthesis starts.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runSynthesis,
}

var infoCmd = &cobra.Command{
	Use:   "info SOURCE",
	Short: "Print the palette and tile catalog of a source image",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	// seems reasonable
	initialRoutines := runtime.NumCPU()
	if initialRoutines <= 0 {
		initialRoutines = 4
	}
	defaults := greedytile.DefaultConfig()
	flags := rootCmd.Flags()
	flags.Int64VarP(&seed, "seed", "s", defaults.Seed, "Random seed for reproducible generation")
	flags.IntVarP(&iterations, "iterations", "i", defaults.MaxIterations, "Maximum iterations before stopping")
	flags.IntVarP(&width, "width", "w", 0, "Maximum width in pixels (implies square if height is not specified)")
	flags.IntVarP(&height, "height", "H", 0, "Maximum height in pixels")
	flags.StringVar(&size, "size", "", "Output size as \"WxH\", \"Wx\" or \"xH\"")
	flags.BoolVarP(&rotate, "rotate", "r", false, "Enable tile rotations (90°, 180°, 270°)")
	flags.BoolVarP(&mirror, "mirror", "m", false, "Enable tile mirroring (horizontal reflection)")
	flags.BoolVarP(&prefill, "prefill", "p", false, "Use prefill image if available (<input>_pre.png)")
	flags.BoolVarP(&visualize, "visualize", "v", false, "Write an animated GIF of the synthesis")
	flags.BoolVarP(&analysis, "analysis", "a", false, "Write an animated GIF of the anchor analysis (<input>_analysis.gif)")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	flags.BoolVarP(&noSkip, "no-skip", "n", false, "Process files even if the output exists")
	flags.BoolVar(&recursive, "recursive", false, "Also process images in sub directories")
	flags.IntVar(&scale, "scale", 1, "Scale the output by this integer factor")
	flags.UintVar(&interp, "interp", 0, "Interpolation used by --scale, 0 (nearest neighbour) to 5 (Lanczos3)")
	flags.IntVar(&animScale, "anim-scale", anim.DefaultOptions().Scale, "Pixel size in the animation")
	flags.StringVarP(&configFile, "config", "c", "", "YAML file with synthesis parameters, flags take precedence")
	flags.BoolVar(&logPlacements, "log-placements", false, "Write the placement log (<input>_placements.jsonl.zst)")
	flags.IntVar(&routines, "routines", initialRoutines, "Number of images processed concurrently")
	flags.StringVar(&metric, "metric", defaults.DistanceMetric, "Distance metric of the distance model")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.AddCommand(infoCmd)
}

// buildConfig reads the config file (if any) and applies all flags that have
// been set explicitly.
func buildConfig(cmd *cobra.Command) (greedytile.Config, error) {
	cfg := greedytile.DefaultConfig()
	if configFile != "" {
		path, pathErr := greedytile.ExpandPath(configFile)
		if pathErr != nil {
			return cfg, pathErr
		}
		var loadErr error
		cfg, loadErr = greedytile.LoadConfig(path)
		if loadErr != nil {
			return cfg, loadErr
		}
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("iterations") {
		cfg.MaxIterations = iterations
	}
	if flags.Changed("size") {
		w, h, sizeErr := greedytile.ParseDimensionsEmpty(size)
		if sizeErr != nil {
			return cfg, sizeErr
		}
		cfg.Width, cfg.Height = greedytile.IntMax(w, 0), greedytile.IntMax(h, 0)
	}
	if flags.Changed("width") {
		cfg.Width = width
	}
	if flags.Changed("height") {
		cfg.Height = height
	}
	if flags.Changed("rotate") {
		cfg.Rotate = rotate
	}
	if flags.Changed("mirror") {
		cfg.Mirror = mirror
	}
	if flags.Changed("metric") {
		cfg.DistanceMetric = metric
	}
	if flags.Changed("analysis") {
		cfg.Analysis = analysis
	}
	return cfg, cfg.Validate()
}

func runSynthesis(cmd *cobra.Command, args []string) error {
	cfg, cfgErr := buildConfig(cmd)
	if cfgErr != nil {
		return cfgErr
	}
	target, pathErr := greedytile.ExpandPath(args[0])
	if pathErr != nil {
		return pathErr
	}
	sources, sourcesErr := greedytile.CollectSources(target, recursive, greedytile.LosslessFormats)
	if sourcesErr != nil {
		return sourcesErr
	}
	if sources.NumSources() == 0 {
		log.WithField("target", target).Info("No source images found")
		return nil
	}
	opts := greedytile.BatchOptions{
		Config:        cfg,
		Prefill:       prefill,
		SkipExisting:  !noSkip,
		Scale:         scale,
		Resizer:       greedytile.NewNfntResizer(greedytile.GetInterP(interp)),
		LogPlacements: logPlacements,
		NumRoutines:   routines,
	}
	if !quiet {
		step := greedytile.IntMax(cfg.MaxIterations/10, 1)
		opts.Progress = func(source string) greedytile.ProgressFunc {
			if sources.NumSources() > 1 {
				// concurrent runs, log lines carry the time
				return greedytile.LoggerProgressFunc(source, cfg.MaxIterations, step)
			}
			return greedytile.StdProgressFunc(os.Stderr, source, cfg.MaxIterations, step)
		}
	}
	if visualize || cfg.Analysis {
		opts.Hook = writeAnimations(visualize, cfg.Analysis)
	}
	start := time.Now()
	reports, err := greedytile.RunBatch(context.Background(), sources, opts)
	for _, report := range reports {
		switch {
		case report.Err != nil:
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", report.Source, report.Err)
		case report.Skipped:
			if !quiet {
				fmt.Fprintf(os.Stderr, "Skipping: %s (output exists)\n", report.Source)
			}
		case report.Source != "" && !quiet:
			fmt.Printf("%s: %s after %d iterations (%v)\n", report.Output, report.Status,
				report.Iterations, report.Duration)
		}
	}
	if !quiet {
		fmt.Println("Done after", time.Since(start))
	}
	return err
}

// writeAnimations returns a hook that writes the animation and the analysis
// animation of a result next to its source.
func writeAnimations(visualization, analysis bool) greedytile.ResultHook {
	animOpts := anim.DefaultOptions()
	animOpts.Scale = animScale
	return func(source string, result *greedytile.Result) error {
		if visualization && len(result.Placements) > 0 {
			if err := anim.WriteFile(greedytile.VisualizationPath(source), result, animOpts); err != nil {
				return err
			}
		}
		if analysis && len(result.Analysis) > 0 {
			return anim.WriteAnalysisFile(greedytile.AnalysisPath(source), result, animOpts)
		}
		return nil
	}
}

func runInfo(cmd *cobra.Command, args []string) error {
	path, pathErr := greedytile.ExpandPath(args[0])
	if pathErr != nil {
		return pathErr
	}
	img, loadErr := greedytile.LoadImage(path)
	if loadErr != nil {
		return loadErr
	}
	grid, palette := greedytile.GridFromImage(img)
	histogram := greedytile.GenHistogram(grid, len(palette))
	fmt.Println("Histogram:")
	histogram.PrintInfo(os.Stdout, palette, true)
	fmt.Println("Normalized histogram:")
	histogram.Normalize().PrintInfo(os.Stdout, palette, false)
	for _, flags := range []struct{ rotate, mirror bool }{{false, false}, {true, false}, {false, true}, {true, true}} {
		catalog, catalogErr := greedytile.NewCatalog(grid, len(palette), greedytile.TileSize, flags.rotate, flags.mirror)
		if catalogErr != nil {
			return catalogErr
		}
		fmt.Printf("Variants (rotate=%v, mirror=%v): %d\n", flags.rotate, flags.mirror, catalog.Len())
	}
	return nil
}

func main() {
	cobra.OnInitialize(func() {
		switch {
		case verbose:
			log.SetLevel(log.DebugLevel)
		case quiet:
			log.SetLevel(log.WarnLevel)
		}
	})
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
