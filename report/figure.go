package report

import (
	"fmt"
	"time"

	"github.com/qjob-team/qjob/core"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// figureName stamps each figure with a fresh timestamp so repeated
// runs never clobber earlier images.
func figureName(basename, backendName, kind string) string {
	return fmt.Sprintf("%s_%s_%s.%s.png",
		basename, backendName, time.Now().UTC().Format(time.RFC3339), kind)
}

// HistogramFile renders the counts as a bar chart and returns the
// written path.
func HistogramFile(basename, backendName string, counts core.Counts) (string, error) {
	p := plot.New()
	p.Title.Text = backendName
	p.Y.Label.Text = "counts"

	keys := counts.SortedKeys()
	values := make(plotter.Values, len(keys))
	for i, k := range keys {
		values[i] = float64(counts[k])
	}
	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return "", core.NewRuntimeError(err, "failed to build histogram")
	}
	p.Add(bars)
	p.NominalX(keys...)

	path := figureName(basename, backendName, "histogram")
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return "", core.NewRuntimeError(err, "failed to save histogram %s", path)
	}
	return path, nil
}

// StateCityFile renders the real and imaginary amplitude parts of the
// statevector as grouped bars, the flat rendition of a state city.
func StateCityFile(basename, backendName string, sv []complex128) (string, error) {
	p := plot.New()
	p.Title.Text = backendName
	p.Y.Label.Text = "amplitude"

	reals := make(plotter.Values, len(sv))
	imags := make(plotter.Values, len(sv))
	labels := make([]string, len(sv))
	for i, a := range sv {
		reals[i] = real(a)
		imags[i] = imag(a)
		labels[i] = basisLabel(i, len(sv))
	}
	w := vg.Points(12)
	realBars, err := plotter.NewBarChart(reals, w)
	if err != nil {
		return "", core.NewRuntimeError(err, "failed to build state city")
	}
	realBars.Offset = -w / 2
	imagBars, err := plotter.NewBarChart(imags, w)
	if err != nil {
		return "", core.NewRuntimeError(err, "failed to build state city")
	}
	imagBars.Offset = w / 2
	p.Add(realBars, imagBars)
	p.Legend.Add("Re", realBars)
	p.Legend.Add("Im", imagBars)
	p.NominalX(labels...)

	path := figureName(basename, backendName, "state_city")
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return "", core.NewRuntimeError(err, "failed to save state city %s", path)
	}
	return path, nil
}
