// Command stratigen generates one realization (single or stacked) from a
// scenario file or flags, writes the grayscale and facies PNGs, and
// optionally prints the metrics record as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/strata-data/stratigen/internal/config"
	"github.com/strata-data/stratigen/internal/render"
	"github.com/strata-data/stratigen/internal/stats"
	"github.com/strata-data/stratigen/internal/synth"
	"github.com/strata-data/stratigen/internal/version"
)

func main() {
	scenarioPath := flag.String("scenario", "", "Path to a scenario JSON file (overrides style flags)")
	styleName := flag.String("style", "meandering", "Depositional style")
	height := flag.Int("height", 512, "Grid height in pixels")
	width := flag.Int("width", 512, "Grid width in pixels")
	seed := flag.Int64("seed", 42, "Base seed")
	noOverlays := flag.Bool("no-overlays", false, "Disable the sedimentary overlay pass")
	packages := flag.Int("packages", 0, "Stacked mode with this many packages (0 = single)")
	stackSeed := flag.Int64("stack-seed", 42, "Stack seed for stacked mode")
	erosion := flag.String("erosion", "flat", "Erosion style for stacked mode: flat or relief")
	out := flag.String("out", "stratigen", "Output path prefix for PNGs")
	withStats := flag.Bool("stats", false, "Compute and print the full metrics record as JSON")
	variogramPlot := flag.String("variogram-plot", "", "Write a log-log variogram plot to this path")
	showVersion := flag.Bool("version", false, "Print the build version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("stratigen", version.String())
		return
	}

	var (
		cfg synth.Config
		sc  *synth.StackConfig
		err error
	)
	if *scenarioPath != "" {
		scenario, err := config.LoadScenario(*scenarioPath)
		if err != nil {
			fatal("load scenario: %v", err)
		}
		cfg, err = scenario.BuildConfig()
		if err != nil {
			fatal("scenario config: %v", err)
		}
		if scenario.Stacked() {
			stackCfg, err := scenario.BuildStackConfig()
			if err != nil {
				fatal("scenario stack config: %v", err)
			}
			sc = &stackCfg
		}
	} else {
		style, err := synth.ParseStyle(*styleName)
		if err != nil {
			fatal("%v", err)
		}
		cfg = synth.DefaultConfig(style)
		cfg.Height = *height
		cfg.Width = *width
		cfg.Seed = *seed
		cfg.Overlays.Enabled = !*noOverlays
		if *packages > 0 {
			es, err := synth.ParseErosionStyle(*erosion)
			if err != nil {
				fatal("%v", err)
			}
			stackCfg := synth.DefaultStackConfig(style)
			stackCfg.Base = cfg
			stackCfg.PackageCount = *packages
			stackCfg.StackSeed = *stackSeed
			stackCfg.Erosion = es
			sc = &stackCfg
		}
	}

	var r *synth.Realization
	if sc != nil {
		result, err := synth.GenerateStacked(*sc)
		if err != nil {
			fatal("generate stacked: %v", err)
		}
		r = result.Realization
	} else {
		r, err = synth.Generate(cfg)
		if err != nil {
			fatal("generate: %v", err)
		}
	}

	if err := render.SaveRealization(*out, cfg.Style, r); err != nil {
		fatal("save images: %v", err)
	}

	if *withStats || *variogramPlot != "" {
		styleForStats := cfg.Style.String()
		if sc != nil {
			styleForStats = "stacked"
		}
		rec, err := stats.Compute(r.Grid, r.Masks, styleForStats)
		if err != nil {
			fatal("compute metrics: %v", err)
		}
		if *withStats {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(rec); err != nil {
				fatal("encode metrics: %v", err)
			}
		}
		if *variogramPlot != "" {
			title := fmt.Sprintf("%s seed %d", styleForStats, cfg.Seed)
			if err := render.SaveVariogramPlot(*variogramPlot, title, rec.Variograms); err != nil {
				fatal("variogram plot: %v", err)
			}
		}
	}
}

func fatal(format string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", v...)
	os.Exit(1)
}
