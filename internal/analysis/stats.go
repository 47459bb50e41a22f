package analysis

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/KaramelBytes/maslow-cli/internal/bucket"
)

// Correlation is Pearson's r between X and Y with a two-sided p-value.
// R and P are NaN when fewer than three pairs are available.
type Correlation struct {
	R float64 `json:"r"`
	P float64 `json:"p"`
	N int     `json:"n"`
}

// Correlate computes r over the pairs and tests it against zero with a
// Student t distribution on n-2 degrees of freedom.
func Correlate(pairs []bucket.Pair) Correlation {
	c := Correlation{R: math.NaN(), P: math.NaN(), N: len(pairs)}
	if len(pairs) < 3 {
		return c
	}
	xs := make([]float64, len(pairs))
	ys := make([]float64, len(pairs))
	for i, p := range pairs {
		xs[i], ys[i] = p.X, p.Y
	}
	c.R = stat.Correlation(xs, ys, nil)
	if math.IsNaN(c.R) {
		return c
	}
	df := float64(len(pairs) - 2)
	if math.Abs(c.R) >= 1 {
		c.P = 0
		return c
	}
	t := c.R * math.Sqrt(df/(1-c.R*c.R))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	c.P = 2 * dist.Survival(math.Abs(t))
	return c
}

// Box holds the five-number summary of one bucket's Y values.
type Box struct {
	Label  string  `json:"label"`
	N      int     `json:"n"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// BoxStats summarizes every bucket. Empty buckets get NaN fields.
func BoxStats(buckets []bucket.Bucket) []Box {
	out := make([]Box, len(buckets))
	for i, b := range buckets {
		out[i] = summarize(b.Label, b.Ys)
	}
	return out
}

func summarize(label string, ys []float64) Box {
	nan := math.NaN()
	box := Box{Label: label, N: len(ys), Min: nan, Q1: nan, Median: nan, Q3: nan, Max: nan}
	data := stats.Float64Data(ys)
	switch len(ys) {
	case 0:
		return box
	case 1:
		v := ys[0]
		box.Min, box.Q1, box.Median, box.Q3, box.Max = v, v, v, v, v
		return box
	}
	box.Min, _ = stats.Min(data)
	box.Max, _ = stats.Max(data)
	box.Median, _ = stats.Median(data)
	if q, err := stats.Quartile(data); err == nil {
		box.Q1, box.Q3 = q.Q1, q.Q3
	}
	return box
}
