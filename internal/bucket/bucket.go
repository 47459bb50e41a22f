// Package bucket sorts paired observations, drops undefined values and
// averages the dependent variable over fixed-width ranges of the independent one.
package bucket

import (
	"math"
	"sort"
	"strconv"
)

// Pair is one paired observation for a single year.
type Pair struct {
	Country string  `json:"country"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// Spec partitions [Start, End) into Count half-open ranges of equal width.
// Overflow adds a final open-ended range [End, +Inf).
type Spec struct {
	Start    float64 `yaml:"start" json:"start"`
	End      float64 `yaml:"end" json:"end"`
	Count    int     `yaml:"count" json:"count"`
	Overflow bool    `yaml:"overflow,omitempty" json:"overflow,omitempty"`
}

// Bucket is the aggregate for one range. Mean is NaN when Count is 0.
type Bucket struct {
	Label string    `json:"label"`
	Low   float64   `json:"low"`
	High  float64   `json:"high"`
	Mean  float64   `json:"mean"`
	Count int       `json:"count"`
	Ys    []float64 `json:"-"`
}

// Validate rejects non-positive counts, non-finite edges and empty ranges.
func (s Spec) Validate() error {
	if s.Count <= 0 {
		return &ValueError{Field: "count", Reason: "must be greater than zero"}
	}
	if !finite(s.Start) {
		return &ValueError{Field: "start", Reason: "must be finite"}
	}
	if !finite(s.End) {
		return &ValueError{Field: "end", Reason: "must be finite"}
	}
	if s.Start >= s.End {
		return &ValueError{Field: "start", Reason: "must be less than end"}
	}
	return nil
}

// Size is the number of buckets including the overflow bucket.
func (s Spec) Size() int {
	if s.Overflow {
		return s.Count + 1
	}
	return s.Count
}

// Bounds returns the [low, high) edges of bucket i.
func (s Spec) Bounds(i int) (low, high float64) {
	if s.Overflow && i == s.Count {
		return s.End, math.Inf(1)
	}
	return s.edge(i), s.edge(i + 1)
}

func (s Spec) edge(i int) float64 {
	if i >= s.Count {
		return s.End
	}
	return s.Start + (s.End-s.Start)*float64(i)/float64(s.Count)
}

// Labels returns "[low,high)" for every bucket, and "end+" for overflow.
func (s Spec) Labels() []string {
	out := make([]string, s.Size())
	for i := range out {
		out[i] = s.label(i)
	}
	return out
}

func (s Spec) label(i int) string {
	low, high := s.Bounds(i)
	if math.IsInf(high, 1) {
		return formatEdge(low) + "+"
	}
	return "[" + formatEdge(low) + "," + formatEdge(high) + ")"
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func formatEdge(v float64) string { return strconv.FormatFloat(v, 'g', 10, 64) }

// Assign returns the bucket holding x. NaN and out-of-range values are not
// assigned. s must be valid.
func Assign(x float64, s Spec) (int, bool) {
	if math.IsNaN(x) || x < s.Start {
		return 0, false
	}
	if x >= s.End {
		if s.Overflow {
			return s.Count, true
		}
		return 0, false
	}
	i := int(math.Floor((x - s.Start) / (s.End - s.Start) * float64(s.Count)))
	if i >= s.Count {
		i = s.Count - 1
	}
	// floor() can land one off at an edge; settle on low <= x < high.
	for i > 0 && x < s.edge(i) {
		i--
	}
	for i < s.Count-1 && x >= s.edge(i+1) {
		i++
	}
	return i, true
}

// Clean sorts pairs by X ascending (stable) and drops every pair whose X or Y
// is NaN or infinite. It returns the kept pairs and how many were dropped.
func Clean(pairs []Pair) ([]Pair, int) {
	kept := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		if !finite(p.X) || !finite(p.Y) {
			continue
		}
		kept = append(kept, p)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].X < kept[j].X })
	return kept, len(pairs) - len(kept)
}

// Aggregate averages Y per bucket of X. Pairs with non-finite values or X
// outside the range of s belong to no bucket. Every bucket is returned,
// empty ones with a NaN mean.
func Aggregate(pairs []Pair, s Spec) ([]Bucket, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	out := make([]Bucket, s.Size())
	sums := make([]float64, s.Size())
	for i := range out {
		low, high := s.Bounds(i)
		out[i] = Bucket{Label: s.label(i), Low: low, High: high}
	}
	for _, p := range pairs {
		if !finite(p.X) || !finite(p.Y) {
			continue
		}
		i, ok := Assign(p.X, s)
		if !ok {
			continue
		}
		sums[i] += p.Y
		out[i].Count++
		out[i].Ys = append(out[i].Ys, p.Y)
	}
	for i := range out {
		if out[i].Count == 0 {
			out[i].Mean = math.NaN()
			continue
		}
		out[i].Mean = sums[i] / float64(out[i].Count)
	}
	return out, nil
}
