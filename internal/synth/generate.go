package synth

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/strata-data/stratigen/internal/raster"
	"github.com/strata-data/stratigen/internal/rngutil"
)

// Metadata carries the per-realization summary values. Callers must treat
// a returned Metadata as immutable; Generate never retains a reference.
type Metadata map[string]any

// Realization is one synthetic depositional environment: a normalized
// grayscale intensity grid plus a boolean mask per facies in the style's
// schema and the metadata describing how it was drawn.
type Realization struct {
	Grid  *raster.Grid
	Masks map[string]*raster.Mask
	Meta  Metadata
}

// realizationNamespace keys provenance IDs so that equal (style, seed,
// shape) tuples map to equal IDs across processes.
var realizationNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("stratigen/realization"))

// Generate draws one realization of the configured style. The same Config
// always yields the same Realization; all randomness flows from streams
// derived off cfg.Seed, so changing the style or seed reshuffles every
// stage while leaving other configs untouched.
func Generate(cfg Config) (*Realization, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	styleName := cfg.Style.String()

	geomRNG, err := rngutil.Derive(cfg.Seed, styleName, "geometry")
	if err != nil {
		return nil, err
	}

	var prim *primitives
	switch cfg.Style {
	case StyleMeandering:
		prim, err = buildMeandering(cfg.Meander, geomRNG, cfg.Height, cfg.Width)
	case StyleBraided:
		prim, err = buildBraided(cfg.Braided, geomRNG, cfg.Height, cfg.Width)
	case StyleAnastomosing:
		prim, err = buildAnastomosing(cfg.Anasto, geomRNG, cfg.Height, cfg.Width)
	case StyleBarchan, StyleLinearDune, StyleTransverseDune:
		prim, err = buildAeolian(cfg.Style, cfg.Aeolian, geomRNG, cfg.Height, cfg.Width)
	case StyleTideEstuary, StyleWaveEstuary, StyleMixedEstuary:
		prim, err = buildEstuarine(cfg.Style, cfg.Estuary, geomRNG, cfg.Height, cfg.Width)
	default:
		return nil, fmt.Errorf("%w: style %q has no builder", ErrInvalidParam, styleName)
	}
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", styleName, err)
	}

	composeRNG, err := rngutil.Derive(cfg.Seed, styleName, "compose")
	if err != nil {
		return nil, err
	}
	gray, masks, err := compose(prim, composeRNG)
	if err != nil {
		return nil, err
	}

	meta := Metadata{
		"style":  styleName,
		"seed":   cfg.Seed,
		"height": cfg.Height,
		"width":  cfg.Width,
	}
	for k, v := range prim.meta {
		meta[k] = v
	}

	if cfg.Overlays.Enabled {
		overlayRNG, err := rngutil.Derive(cfg.Seed, styleName, "overlay")
		if err != nil {
			return nil, err
		}
		for k, v := range applyOverlays(gray, masks, cfg.Style, cfg.Overlays, overlayRNG) {
			meta[k] = v
		}
	}

	tag := fmt.Sprintf("%s/%d/%dx%d", styleName, cfg.Seed, cfg.Height, cfg.Width)
	meta["realization_id"] = uuid.NewSHA1(realizationNamespace, []byte(tag)).String()

	return &Realization{Grid: gray, Masks: masks, Meta: meta}, nil
}
