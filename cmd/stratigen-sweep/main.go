// Command stratigen-sweep runs a batch of realizations across a seed
// range, computes metrics for each, and prints one CSV row per seed.
// Realizations are independent, so the sweep fans out across workers.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/strata-data/stratigen/internal/stats"
	"github.com/strata-data/stratigen/internal/synth"
)

type sweepResult struct {
	seed int64
	rec  *stats.Record
	err  error
}

func main() {
	styleName := flag.String("style", "meandering", "Depositional style")
	height := flag.Int("height", 512, "Grid height in pixels")
	width := flag.Int("width", 512, "Grid width in pixels")
	seedStart := flag.Int64("seed-start", 0, "First seed (inclusive)")
	seedEnd := flag.Int64("seed-end", 31, "Last seed (inclusive)")
	workers := flag.Int("workers", runtime.NumCPU(), "Parallel workers")
	preview := flag.Bool("preview", false, "Use the cheap preview metrics subset")
	flag.Parse()

	style, err := synth.ParseStyle(*styleName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if *seedEnd < *seedStart {
		fmt.Fprintf(os.Stderr, "seed-end %d before seed-start %d\n", *seedEnd, *seedStart)
		os.Exit(1)
	}
	if *workers < 1 {
		*workers = 1
	}

	n := int(*seedEnd - *seedStart + 1)
	results := make([]sweepResult, n)
	seeds := make(chan int, n)
	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range seeds {
				seed := *seedStart + int64(i)
				results[i] = runOne(style, *height, *width, seed, *preview)
			}
		}()
	}
	for i := 0; i < n; i++ {
		seeds <- i
	}
	close(seeds)
	wg.Wait()

	// Preview records carry only the cheap subset, so the preview CSV
	// restricts its columns to what Preview actually fills in.
	cols := []string{"beta_iso", "anisotropy_ratio", "entropy_bits", "fractal_dimension"}
	if *preview {
		cols = []string{"beta_dir_0", "entropy_bits"}
	}
	fmt.Printf("seed,style,%s,flags\n", strings.Join(cols, ","))
	failed := 0
	for _, res := range results {
		if res.err != nil {
			fmt.Fprintf(os.Stderr, "seed %d: %v\n", res.seed, res.err)
			failed++
			continue
		}
		row := []string{fmt.Sprintf("%d", res.seed), style.String()}
		for _, col := range cols {
			row = append(row, fmt.Sprintf("%.4f", res.rec.Values[col]))
		}
		row = append(row, flagList(res.rec.Flags))
		fmt.Println(strings.Join(row, ","))
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// flagList joins the raised flag names in sorted order so identical runs
// emit identical rows.
func flagList(flags map[string]bool) string {
	var names []string
	for name, on := range flags {
		if on {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, ";")
}

func runOne(style synth.Style, height, width int, seed int64, preview bool) sweepResult {
	cfg := synth.DefaultConfig(style)
	cfg.Height = height
	cfg.Width = width
	cfg.Seed = seed

	r, err := synth.Generate(cfg)
	if err != nil {
		return sweepResult{seed: seed, err: err}
	}
	var rec *stats.Record
	if preview {
		rec, err = stats.Preview(r.Grid, r.Masks, style.String())
	} else {
		rec, err = stats.Compute(r.Grid, r.Masks, style.String())
	}
	return sweepResult{seed: seed, rec: rec, err: err}
}
