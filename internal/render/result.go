package render

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/KaramelBytes/maslow-cli/internal/analysis"
	"github.com/KaramelBytes/maslow-cli/internal/utils"
)

// Result draws every chart for one pair into dir and returns the files written:
// raw lines per year, bucket means per year and one box plot per year.
// Bucket charts are drawn only for bucketed pairs. Years with nothing to draw
// are left out.
func Result(dir string, r *analysis.Result, size Options) ([]string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create plot dir: %w", err)
	}
	p := r.Pair
	name := utils.SafeFileName(p.Name)
	base := Options{
		Title:    p.Title(),
		XLabel:   p.Lower.Title(),
		YLabel:   p.Higher.Title(),
		WidthIn:  size.WidthIn,
		HeightIn: size.HeightIn,
		InvertX:  p.InvertX,
		InvertY:  p.InvertY,
	}
	var written []string
	keep := func(path string, err error) error {
		switch {
		case err == nil:
			written = append(written, path)
			return nil
		case errors.Is(err, ErrNoData):
			return nil
		}
		return err
	}

	lines := make([]Series, 0, len(r.Years))
	for _, y := range r.Years {
		s := Series{Name: strconv.Itoa(y.Year)}
		for _, pr := range y.Pairs {
			s.X = append(s.X, pr.X)
			s.Y = append(s.Y, pr.Y)
		}
		lines = append(lines, s)
	}
	path := filepath.Join(dir, name+"_lines.png")
	if err := keep(path, Lines(path, base, lines)); err != nil {
		return written, err
	}
	if p.Buckets == nil {
		return written, nil
	}

	labels := p.Buckets.Labels()
	means := make([]Series, 0, len(r.Years))
	for _, y := range r.Years {
		s := Series{Name: strconv.Itoa(y.Year)}
		for _, b := range y.Buckets {
			s.Y = append(s.Y, b.Mean)
		}
		means = append(means, s)
	}
	bucketOpt := base
	bucketOpt.Title = p.Title() + " (bucket means)"
	path = filepath.Join(dir, name+"_buckets.png")
	if err := keep(path, BucketLines(path, bucketOpt, labels, means)); err != nil {
		return written, err
	}

	for _, y := range r.Years {
		groups := make([][]float64, len(y.Buckets))
		for i, b := range y.Buckets {
			groups[i] = b.Ys
		}
		boxOpt := base
		boxOpt.Title = fmt.Sprintf("%s, %d", p.Title(), y.Year)
		path := filepath.Join(dir, fmt.Sprintf("%s_box_%d.png", name, y.Year))
		if err := keep(path, Boxes(path, boxOpt, labels, groups)); err != nil {
			return written, err
		}
	}
	return written, nil
}
