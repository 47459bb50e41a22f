// Package render draws analysis results as PNG charts.
package render

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ErrNoData is returned when nothing drawable was supplied.
var ErrNoData = errors.New("render: no data")

// Options sets the chart text, size and axis direction.
type Options struct {
	Title    string
	XLabel   string
	YLabel   string
	WidthIn  float64
	HeightIn float64
	InvertX  bool
	InvertY  bool
}

func (o Options) size() (vg.Length, vg.Length) {
	w, h := o.WidthIn, o.HeightIn
	if w <= 0 {
		w = 12
	}
	if h <= 0 {
		h = 6
	}
	return vg.Length(w) * vg.Inch, vg.Length(h) * vg.Inch
}

// Series is one named line, typically one year.
type Series struct {
	Name string
	X, Y []float64
}

func newPlot(o Options) *plot.Plot {
	p := plot.New()
	p.Title.Text = o.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = o.XLabel
	p.Y.Label.Text = o.YLabel
	if o.InvertX {
		p.X.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	}
	if o.InvertY {
		p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p
}

func save(p *plot.Plot, o Options, path string) error {
	w, h := o.size()
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("save %s: %w", filepath.Base(path), err)
	}
	return nil
}

// segments splits a series at NaN points so undefined values leave gaps.
func segments(xs, ys []float64) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	for i := range xs {
		if i >= len(ys) || math.IsNaN(xs[i]) || math.IsNaN(ys[i]) ||
			math.IsInf(xs[i], 0) || math.IsInf(ys[i], 0) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: xs[i], Y: ys[i]})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func addSeries(p *plot.Plot, i int, name string, xs, ys []float64) (bool, error) {
	drawn := false
	for _, seg := range segments(xs, ys) {
		line, points, err := plotter.NewLinePoints(seg)
		if err != nil {
			return false, err
		}
		c := plotutil.Color(i)
		line.Color = c
		line.Width = vg.Points(1.5)
		points.Color = c
		points.Radius = vg.Points(2)
		p.Add(line, points)
		if !drawn && name != "" {
			p.Legend.Add(name, line, points)
		}
		drawn = true
	}
	return drawn, nil
}

// Lines draws each series as a line over sorted X values.
func Lines(path string, o Options, series []Series) error {
	p := newPlot(o)
	drew := false
	for i, s := range series {
		drawn, err := addSeries(p, i, s.Name, s.X, s.Y)
		if err != nil {
			return fmt.Errorf("series %s: %w", s.Name, err)
		}
		drew = drew || drawn
	}
	if !drew {
		return ErrNoData
	}
	return save(p, o, path)
}

// BucketLines draws one line per series over nominal bucket labels.
// Series values are bucket means; NaN buckets leave a gap.
func BucketLines(path string, o Options, labels []string, series []Series) error {
	p := newPlot(o)
	xs := make([]float64, len(labels))
	for i := range xs {
		xs[i] = float64(i)
	}
	drew := false
	for i, s := range series {
		drawn, err := addSeries(p, i, s.Name, xs, s.Y)
		if err != nil {
			return fmt.Errorf("series %s: %w", s.Name, err)
		}
		drew = drew || drawn
	}
	if !drew {
		return ErrNoData
	}
	p.NominalX(labels...)
	return save(p, o, path)
}

// Boxes draws one box per non-empty group above its label.
func Boxes(path string, o Options, labels []string, groups [][]float64) error {
	p := newPlot(o)
	w := vg.Points(20)
	drew := false
	for i, g := range groups {
		vals := make(plotter.Values, 0, len(g))
		for _, v := range g {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			continue
		}
		b, err := plotter.NewBoxPlot(w, float64(i), vals)
		if err != nil {
			return fmt.Errorf("box %d: %w", i, err)
		}
		b.FillColor = plotutil.Color(i)
		p.Add(b)
		drew = true
	}
	if !drew {
		return ErrNoData
	}
	p.NominalX(labels...)
	return save(p, o, path)
}
