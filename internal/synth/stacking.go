package synth

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/strata-data/stratigen/internal/logutil"
	"github.com/strata-data/stratigen/internal/raster"
	"github.com/strata-data/stratigen/internal/rngutil"
)

// ErosionStyle selects how the top of the underlying stack is truncated
// before a new package is laid down.
type ErosionStyle int

const (
	// ErosionFlat cuts a constant depth across the whole grid.
	ErosionFlat ErosionStyle = iota
	// ErosionRelief modulates the cut depth by a smoothed relief field, so
	// truncation follows an irregular surface.
	ErosionRelief
)

func (e ErosionStyle) String() string {
	switch e {
	case ErosionFlat:
		return "flat"
	case ErosionRelief:
		return "relief"
	}
	return fmt.Sprintf("erosion(%d)", int(e))
}

// ParseErosionStyle maps a config string to an ErosionStyle.
func ParseErosionStyle(s string) (ErosionStyle, error) {
	switch s {
	case "flat":
		return ErosionFlat, nil
	case "relief":
		return ErosionRelief, nil
	}
	return 0, fmt.Errorf("%w: unknown erosion style %q", ErrInvalidParam, s)
}

// StackConfig describes a vertical sequence of packages. Styles,
// ThicknessPx, ReliefPx and ErosionDepthPx broadcast: an empty slice uses
// the default (Base.Style for Styles), a single element applies to every
// package, and longer slices cycle.
type StackConfig struct {
	Base           Config // shape, seed, per-style parameters, overlays
	PackageCount   int
	StackSeed      int64
	Styles         []Style
	ThicknessPx    []float64
	ReliefPx       []float64
	ErosionDepthPx []float64
	Erosion        ErosionStyle
}

// DefaultStackConfig returns a three-package stack of the given style.
func DefaultStackConfig(style Style) StackConfig {
	return StackConfig{
		Base:           DefaultConfig(style),
		PackageCount:   3,
		StackSeed:      42,
		ThicknessPx:    []float64{42},
		ReliefPx:       []float64{18},
		ErosionDepthPx: []float64{12},
		Erosion:        ErosionFlat,
	}
}

// Validate checks the stack-level parameters and the base config against
// every style the stack will draw.
func (c StackConfig) Validate() error {
	if c.PackageCount < 1 {
		return fmt.Errorf("%w: package count %d, need at least 1", ErrInvalidParam, c.PackageCount)
	}
	if c.StackSeed < 0 {
		return fmt.Errorf("%w: stack seed %d", rngutil.ErrInvalidSeed, c.StackSeed)
	}
	for _, v := range c.ThicknessPx {
		if v <= 0 {
			return fmt.Errorf("%w: package thickness %.1f px must be positive", ErrInvalidParam, v)
		}
	}
	for _, v := range c.ReliefPx {
		if v < 0 {
			return fmt.Errorf("%w: relief amplitude %.1f px must be non-negative", ErrInvalidParam, v)
		}
	}
	for _, v := range c.ErosionDepthPx {
		if v < 0 {
			return fmt.Errorf("%w: erosion depth %.1f px must be non-negative", ErrInvalidParam, v)
		}
	}
	for i := 0; i < c.PackageCount; i++ {
		cfg := c.Base
		cfg.Style = c.styleAt(i)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("package %d: %w", i, err)
		}
	}
	return nil
}

func (c StackConfig) styleAt(i int) Style {
	if len(c.Styles) == 0 {
		return c.Base.Style
	}
	return c.Styles[i%len(c.Styles)]
}

func cycleAt(vals []float64, i int, def float64) float64 {
	if len(vals) == 0 {
		return def
	}
	return vals[i%len(vals)]
}

// PackageIDMap assigns each cell to the topmost package still present
// there, or -1 where no package deposited.
type PackageIDMap struct {
	H, W int
	IDs  []int32
}

// At returns the owning package index at (y, x).
func (m *PackageIDMap) At(y, x int) int32 { return m.IDs[y*m.W+x] }

// PackageRecord summarizes one package of a stacked result.
type PackageRecord struct {
	Index          int
	Style          string
	Seed           int64
	ThicknessPx    float64
	ReliefPx       float64
	ErosionDepthPx float64
	AreaFraction   float64 // fraction of the grid where this package is topmost
	ErosionClamped bool    // the cut into this package hit remaining thickness
}

// StackedResult is the output of GenerateStacked: the composite
// realization plus the stack bookkeeping rasters.
type StackedResult struct {
	Realization    *Realization
	PackageIDs     *PackageIDMap
	UpperSurface   *raster.Mask // cells where the final package is exposed
	ErosionSurface *raster.Mask // cells truncated by any erosion step
	Packages       []PackageRecord
}

// GenerateStacked runs the stacking sequencer: each package is a full
// single realization drawn with a sub-seed from (StackSeed, index), laid
// down with a relief-modulated thickness, after an erosion cut into the
// package below. Erosion is bounded by the underlying package's remaining
// thickness; hitting the bound clamps the cut, sets the package's
// ErosionClamped flag, and logs a warning rather than failing.
//
// A one-package stack reproduces Generate(cfg.Base) exactly.
func GenerateStacked(cfg StackConfig) (*StackedResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	h, w := cfg.Base.Height, cfg.Base.Width
	n := cfg.PackageCount

	reals := make([]*Realization, n)
	thickness := make([]*raster.Grid, n)
	records := make([]PackageRecord, n)
	erosionSurface := raster.MustMask(h, w)

	for i := 0; i < n; i++ {
		pkgCfg := cfg.Base
		pkgCfg.Style = cfg.styleAt(i)
		if n > 1 {
			seed, err := rngutil.DeriveSeed(cfg.StackSeed, "package", strconv.Itoa(i))
			if err != nil {
				return nil, err
			}
			pkgCfg.Seed = seed
		}

		r, err := Generate(pkgCfg)
		if err != nil {
			return nil, fmt.Errorf("package %d: %w", i, err)
		}
		reals[i] = r

		reliefPx := cycleAt(cfg.ReliefPx, i, 18)
		reliefRNG, err := rngutil.Derive(cfg.StackSeed, "package", strconv.Itoa(i), "relief")
		if err != nil {
			return nil, err
		}
		relief := reliefField(h, w, reliefPx, reliefRNG)

		thickPx := cycleAt(cfg.ThicknessPx, i, 42)
		foot := depositFootprint(pkgCfg.Style, r.Masks)
		t := raster.MustGrid(h, w)
		for j := range t.Data {
			if foot.Bits[j] {
				t.Data[j] = clampF(thickPx+relief.Data[j], 1, thickPx+reliefPx)
			}
		}
		thickness[i] = t

		records[i] = PackageRecord{
			Index:          i,
			Style:          pkgCfg.Style.String(),
			Seed:           pkgCfg.Seed,
			ThicknessPx:    thickPx,
			ReliefPx:       reliefPx,
			ErosionDepthPx: cycleAt(cfg.ErosionDepthPx, i, 12),
		}

		if i > 0 {
			erodeRNG, err := rngutil.Derive(cfg.StackSeed, "package", strconv.Itoa(i), "erosion")
			if err != nil {
				return nil, err
			}
			clamped := erodePackage(thickness[i-1], erosionSurface, records[i].ErosionDepthPx, cfg.Erosion, erodeRNG)
			if clamped > 0 {
				records[i-1].ErosionClamped = true
				logutil.Logf("WARNING: erosion below package %d clamped at %d cells (depth %.1f px exceeded remaining thickness)",
					i, clamped, records[i].ErosionDepthPx)
			}
		}
	}

	ids := &PackageIDMap{H: h, W: w, IDs: make([]int32, h*w)}
	gray := raster.MustGrid(h, w)
	for j := range ids.IDs {
		ids.IDs[j] = -1
		for i := n - 1; i >= 0; i-- {
			if thickness[i].Data[j] > 0 {
				ids.IDs[j] = int32(i)
				gray.Data[j] = reals[i].Grid.Data[j]
				break
			}
		}
	}

	masks := mergeStackMasks(reals, ids)

	upper := raster.MustMask(h, w)
	owned := make([]int, n)
	for j, id := range ids.IDs {
		if id >= 0 {
			owned[id]++
		}
		if id == int32(n-1) {
			upper.Bits[j] = true
		}
	}
	cells := float64(h * w)
	anyClamped := false
	pkgMeta := make([]Metadata, n)
	for i := range records {
		records[i].AreaFraction = float64(owned[i]) / cells
		anyClamped = anyClamped || records[i].ErosionClamped
		m := Metadata{
			"package_index":    records[i].Index,
			"thickness_px":     records[i].ThicknessPx,
			"relief_px":        records[i].ReliefPx,
			"erosion_depth_px": records[i].ErosionDepthPx,
			"area_fraction":    records[i].AreaFraction,
			"erosion_clamped":  records[i].ErosionClamped,
		}
		for k, v := range reals[i].Meta {
			m[k] = v
		}
		pkgMeta[i] = m
	}

	var composite *Realization
	if n == 1 {
		// Degenerate case: the stacked path must hand back the single
		// realization untouched.
		composite = reals[0]
	} else {
		meta := Metadata{
			"style":              "stacked",
			"stack_seed":         cfg.StackSeed,
			"package_count":      n,
			"erosion_style":      cfg.Erosion.String(),
			"height":             h,
			"width":              w,
			"qa_erosion_clamped": anyClamped,
		}
		composite = &Realization{Grid: gray, Masks: masks, Meta: meta}
	}
	composite.Meta["stacked_packages"] = pkgMeta

	return &StackedResult{
		Realization:    composite,
		PackageIDs:     ids,
		UpperSurface:   upper,
		ErosionSurface: erosionSurface,
		Packages:       records,
	}, nil
}

// depositFootprint is the area a package occupies in the stack: every
// schema facies except the ambient background one.
func depositFootprint(style Style, masks map[string]*raster.Mask) *raster.Mask {
	background := map[string]bool{
		"floodplain": true,
		"overbank":   true,
		"interdune":  true,
		"mudflat":    true,
	}
	var foot *raster.Mask
	for _, name := range FaciesSchema(style) {
		if background[name] {
			continue
		}
		if foot == nil {
			foot = masks[name].Clone()
			continue
		}
		foot.Union(masks[name])
	}
	return foot
}

// reliefField draws a gaussian-smoothed noise surface scaled to ±amp.
func reliefField(h, w int, amp float64, rng *rand.Rand) *raster.Grid {
	g := raster.GaussianBlur(raster.WhiteNoise(h, w, 1, rng), 6)
	g.Normalize()
	for i := range g.Data {
		g.Data[i] = (g.Data[i]*2 - 1) * amp
	}
	return g
}

// erodePackage cuts depth out of the package thickness below, bounded so
// no cell goes negative. Returns the number of cells where the requested
// cut exceeded the remaining thickness.
func erodePackage(below *raster.Grid, surface *raster.Mask, depthPx float64, style ErosionStyle, rng *rand.Rand) int {
	var depth *raster.Grid
	if style == ErosionRelief {
		depth = reliefField(below.H, below.W, 1, rng)
		for i := range depth.Data {
			// 0..depthPx, centered on depthPx/2
			depth.Data[i] = depthPx * 0.5 * (1 + depth.Data[i])
		}
	}
	clamped := 0
	for i, avail := range below.Data {
		if avail <= 0 {
			continue
		}
		cut := depthPx
		if depth != nil {
			cut = depth.Data[i]
		}
		if cut > avail {
			cut = avail
			clamped++
		}
		below.Data[i] = avail - cut
		if cut > 0 {
			surface.Bits[i] = true
		}
	}
	return clamped
}

// mergeStackMasks restricts each package's facies masks to the cells it
// owns and unions them by facies name across packages.
func mergeStackMasks(reals []*Realization, ids *PackageIDMap) map[string]*raster.Mask {
	merged := make(map[string]*raster.Mask)
	for i, r := range reals {
		for name, m := range r.Masks {
			out, ok := merged[name]
			if !ok {
				out = raster.MustMask(ids.H, ids.W)
				merged[name] = out
			}
			for j, b := range m.Bits {
				if b && ids.IDs[j] == int32(i) {
					out.Bits[j] = true
				}
			}
		}
	}
	return merged
}
