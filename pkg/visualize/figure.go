// Package visualize renders process charts with gonum/plot.
//
// Every chart is its own Figure. A Figure is saved once and then discarded,
// so no plotting state is shared between charts.
package visualize

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrFigureClosed is returned when a saved figure is used again
var ErrFigureClosed = errors.New("figure already saved")

// ggplot-like palette and panel colours
var (
	palette = []color.Color{
		color.RGBA{R: 0xE2, G: 0x4A, B: 0x33, A: 0xFF},
		color.RGBA{R: 0x34, G: 0x8A, B: 0xBD, A: 0xFF},
		color.RGBA{R: 0x98, G: 0x8E, B: 0xD5, A: 0xFF},
		color.RGBA{R: 0x77, G: 0x77, B: 0x77, A: 0xFF},
		color.RGBA{R: 0xFB, G: 0xC1, B: 0x5E, A: 0xFF},
	}
	panelColor = color.RGBA{R: 0xE5, G: 0xE5, B: 0xE5, A: 0xFF}
	gridColor  = color.White
)

// Figure is a single chart
type Figure struct {
	p      *plot.Plot
	series int
}

// NewFigure creates an empty styled chart
func NewFigure(title, xLabel, yLabel string) *Figure {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.BackgroundColor = panelColor
	p.Legend.Top = true

	grid := plotter.NewGrid()
	grid.Vertical.Color = gridColor
	grid.Horizontal.Color = gridColor
	p.Add(grid)

	return &Figure{p: p}
}

func (f *Figure) nextColor() color.Color {
	c := palette[f.series%len(palette)]
	f.series++
	return c
}

// AddLine draws a connected series. An empty name keeps it out of the legend.
func (f *Figure) AddLine(name string, xys plotter.XYs, dashed bool) error {
	if f.p == nil {
		return ErrFigureClosed
	}
	l, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("failed to create line %q: %w", name, err)
	}
	l.LineStyle.Color = f.nextColor()
	l.LineStyle.Width = vg.Points(1.5)
	if dashed {
		l.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
	}
	f.p.Add(l)
	if name != "" {
		f.p.Legend.Add(name, l)
	}
	return nil
}

// AddScatter draws unconnected points
func (f *Figure) AddScatter(name string, xys plotter.XYs) error {
	if f.p == nil {
		return ErrFigureClosed
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("failed to create scatter %q: %w", name, err)
	}
	s.GlyphStyle.Color = f.nextColor()
	s.GlyphStyle.Radius = vg.Points(2)
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	f.p.Add(s)
	if name != "" {
		f.p.Legend.Add(name, s)
	}
	return nil
}

// Annotate writes text at data coordinate (x, y)
func (f *Figure) Annotate(x, y float64, text string) error {
	if f.p == nil {
		return ErrFigureClosed
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: x, Y: y}},
		Labels: []string{text},
	})
	if err != nil {
		return fmt.Errorf("failed to create annotation: %w", err)
	}
	f.p.Add(labels)
	return nil
}

// UseTimeAxis formats the x axis as dates; x values must be Unix seconds.
func (f *Figure) UseTimeAxis(format string) {
	if f.p == nil {
		return
	}
	f.p.X.Tick.Marker = plot.TimeTicks{Format: format}
}

// Save renders the figure to path, picking the format from the extension,
// and releases the figure. The parent directory must exist.
func (f *Figure) Save(path string, width, height vg.Length) error {
	if f.p == nil {
		return ErrFigureClosed
	}
	defer f.close()
	if err := f.p.Save(width, height, path); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", path, err)
	}
	return nil
}

// Encode renders the figure to w in the given format ("png", "svg", ...) and releases it.
func (f *Figure) Encode(w io.Writer, width, height vg.Length, format string) error {
	if f.p == nil {
		return ErrFigureClosed
	}
	defer f.close()
	wt, err := f.p.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("failed to create %s writer: %w", format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	return nil
}

func (f *Figure) close() {
	f.p = nil
}
