package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/strata-data/stratigen/internal/stats"
)

// variogramColors gives each direction a stable line color across plots.
var variogramColors = []color.Color{
	color.RGBA{R: 31, G: 119, B: 180, A: 255},
	color.RGBA{R: 255, G: 127, B: 14, A: 255},
	color.RGBA{R: 44, G: 160, B: 44, A: 255},
	color.RGBA{R: 214, G: 39, B: 40, A: 255},
}

// SaveVariogramPlot writes a log-log plot of the directional variograms
// with one line per direction, annotated with the fitted slope.
func SaveVariogramPlot(path, title string, vs []stats.DirectionalVariogram) error {
	if len(vs) == 0 {
		return fmt.Errorf("render: no variograms to plot")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "log10 lag (px)"
	p.Y.Label.Text = "log10 semivariance"

	for i, v := range vs {
		pts := make(plotter.XYs, 0, len(v.Lags))
		for j := range v.Lags {
			if v.Gamma[j] <= 0 {
				continue
			}
			pts = append(pts, plotter.XY{
				X: math.Log10(v.Lags[j]),
				Y: math.Log10(v.Gamma[j]),
			})
		}
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = variogramColors[i%len(variogramColors)]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("%s (beta %.2f)", v.Direction, v.Beta), line)
	}

	p.Legend.Top = true
	p.Legend.Left = true
	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}
