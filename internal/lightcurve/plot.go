package lightcurve

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// errPoints couples XY samples with their flux uncertainties for error-bar
// rendering.
type errPoints struct {
	plotter.XYs
	plotter.YErrors
}

// Visualize renders the assembled light curve (flux vs. MJD, one series per
// bandpass) to an image file. The output format follows the file extension.
func (lc *LightCurve) Visualize(path string) error {
	if lc.points == nil {
		return ErrNotBuilt
	}

	byBand := make(map[string]*errPoints)
	var bands []string
	for _, pt := range lc.points {
		series, ok := byBand[pt.Bandpass]
		if !ok {
			series = &errPoints{}
			byBand[pt.Bandpass] = series
			bands = append(bands, pt.Bandpass)
		}
		series.XYs = append(series.XYs, plotter.XY{X: pt.MJD, Y: pt.Flux})
		series.YErrors = append(series.YErrors, struct{ Low, High float64 }{pt.FluxErr, pt.FluxErr})
	}

	p := plot.New()
	p.Title.Text = "Forced-photometry light curve"
	p.X.Label.Text = "MJD"
	p.Y.Label.Text = "Flux"
	p.Legend.Top = true

	for i, band := range bands {
		series := byBand[band]
		scatter, err := plotter.NewScatter(series.XYs)
		if err != nil {
			return fmt.Errorf("lightcurve: plot %s: %w", band, err)
		}
		scatter.GlyphStyle.Color = plotutil.Color(i)

		bars, err := plotter.NewYErrorBars(series)
		if err != nil {
			return fmt.Errorf("lightcurve: plot %s errors: %w", band, err)
		}
		bars.LineStyle.Color = plotutil.Color(i)

		p.Add(scatter, bars)
		p.Legend.Add(band, scatter)
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("lightcurve: save plot %s: %w", path, err)
	}
	return nil
}
