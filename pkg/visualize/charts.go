package visualize

import (
	"fmt"
	"math"

	"gonum.org/v1/plot/plotter"

	"github.com/timeplus-io/processviz/pkg/analysis"
	"github.com/timeplus-io/processviz/pkg/models"
)

// ParameterLines plots exp_param, const_param and sin_param against date
func ParameterLines(title string, ds models.Dataset) (*Figure, error) {
	if len(ds) == 0 {
		return nil, fmt.Errorf("no data to plot")
	}

	series := []struct {
		name   string
		values []float64
	}{
		{"Exponential Parameter", ds.ExpParams()},
		{"Constant Parameter", ds.ConstParams()},
		{"Sinusoidal Parameter", ds.SinParams()},
	}

	dates := ds.Dates()
	fig := NewFigure(title, "date", "")
	fig.UseTimeAxis("2006-01")
	for _, s := range series {
		xys := make(plotter.XYs, len(dates))
		for i, d := range dates {
			xys[i].X = float64(d.Unix())
			xys[i].Y = s.values[i]
		}
		if err := fig.AddLine(s.name, xys, false); err != nil {
			return nil, err
		}
	}
	return fig, nil
}

// Regression describes a scatter chart with its fitted line
type Regression struct {
	Title  string
	XLabel string
	YLabel string
	X, Y   []float64
	Fit    analysis.Fit
	// LabelX, LabelY place the r² annotation in data coordinates
	LabelX, LabelY float64
}

// RegressionScatter plots Y against X with the dashed fit line and its r²
func RegressionScatter(r Regression) (*Figure, error) {
	if len(r.X) == 0 || len(r.X) != len(r.Y) {
		return nil, fmt.Errorf("regression chart %q needs matching non-empty series", r.Title)
	}

	points := make(plotter.XYs, len(r.X))
	minX, maxX := math.Inf(1), math.Inf(-1)
	for i := range r.X {
		points[i].X = r.X[i]
		points[i].Y = r.Y[i]
		minX = math.Min(minX, r.X[i])
		maxX = math.Max(maxX, r.X[i])
	}

	fig := NewFigure(r.Title, r.XLabel, r.YLabel)
	if err := fig.AddScatter("", points); err != nil {
		return nil, err
	}
	fitLine := plotter.XYs{
		{X: minX, Y: r.Fit.Predict(minX)},
		{X: maxX, Y: r.Fit.Predict(maxX)},
	}
	if err := fig.AddLine("", fitLine, true); err != nil {
		return nil, err
	}
	if err := fig.Annotate(r.LabelX, r.LabelY, RSquaredLabel(r.Fit)); err != nil {
		return nil, err
	}
	return fig, nil
}

// RSquaredLabel formats the coefficient of determination for a chart
func RSquaredLabel(f analysis.Fit) string {
	return fmt.Sprintf("r² = %.6f", f.RSquared)
}
