package stats

import (
	"math"

	"github.com/strata-data/stratigen/internal/raster"
)

// FaciesTopology summarizes the planform structure of one facies mask.
type FaciesTopology struct {
	Facies       string
	Components   int
	AreaFraction float64
	Compactness  float64 // 4*pi*area/perimeter^2, 1 for a disc
	LargestRatio float64 // largest component area over total facies area
	Elongation   float64 // sqrt of principal axis variance ratio, >= 1
}

// ComputeTopology measures one facies mask. Empty masks return zeroed
// measures rather than an error; the caller flags expectation mismatches.
func ComputeTopology(name string, m *raster.Mask) FaciesTopology {
	ft := FaciesTopology{Facies: name}
	area := m.Count()
	if area == 0 {
		return ft
	}
	ft.AreaFraction = m.Fraction()

	labels := raster.LabelComponents(m)
	ft.Components = labels.Count
	if _, size := labels.LargestComponent(); labels.Count > 0 {
		ft.LargestRatio = float64(size) / float64(area)
	}

	perimeter := raster.Boundary(m).Count()
	if perimeter > 0 {
		ft.Compactness = 4 * math.Pi * float64(area) / float64(perimeter*perimeter)
	}
	ft.Elongation = maskElongation(m)
	return ft
}

// maskElongation is the square root of the ratio of the principal axis
// variances of the mask cell coordinates. Isotropic blobs report near 1,
// channel threads report large values.
func maskElongation(m *raster.Mask) float64 {
	var n, sy, sx float64
	for i, b := range m.Bits {
		if !b {
			continue
		}
		n++
		sy += float64(i / m.W)
		sx += float64(i % m.W)
	}
	if n < 2 {
		return 1
	}
	my, mx := sy/n, sx/n
	var cyy, cxx, cxy float64
	for i, b := range m.Bits {
		if !b {
			continue
		}
		dy := float64(i/m.W) - my
		dx := float64(i%m.W) - mx
		cyy += dy * dy
		cxx += dx * dx
		cxy += dx * dy
	}
	cyy /= n
	cxx /= n
	cxy /= n

	tr := cxx + cyy
	det := cxx*cyy - cxy*cxy
	disc := math.Sqrt(math.Max(0, tr*tr/4-det))
	l1 := tr/2 + disc
	l2 := tr/2 - disc
	if l2 <= 1e-12 {
		// Degenerate single-row or single-column mask.
		return math.Sqrt(l1 + 1)
	}
	return math.Sqrt(l1 / l2)
}
