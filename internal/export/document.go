package export

import (
	"math"

	"github.com/KaramelBytes/maslow-cli/internal/analysis"
	"github.com/KaramelBytes/maslow-cli/internal/join"
	"github.com/KaramelBytes/maslow-cli/internal/levels"
)

// Document is the JSON form of a result. encoding/json rejects NaN, so
// undefined numbers become null.
type Document struct {
	Pair      levels.Pair `json:"pair"`
	Skipped   []int       `json:"skipped,omitempty"`
	ElapsedMs int64       `json:"elapsed_ms"`
	Years     []YearDoc   `json:"years"`
}

type YearDoc struct {
	Year         int           `json:"year"`
	Join         join.Stats    `json:"join"`
	Dropped      int           `json:"dropped"`
	Correlation  CorrDoc       `json:"correlation"`
	Observations []Observation `json:"observations"`
	Buckets      []BucketDoc   `json:"buckets,omitempty"`
}

type Observation struct {
	Country string  `json:"country"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

type CorrDoc struct {
	R *float64 `json:"r"`
	P *float64 `json:"p"`
	N int      `json:"n"`
}

type BucketDoc struct {
	Label  string   `json:"label"`
	Low    *float64 `json:"low"`
	High   *float64 `json:"high"`
	Mean   *float64 `json:"mean"`
	Count  int      `json:"count"`
	Min    *float64 `json:"min,omitempty"`
	Q1     *float64 `json:"q1,omitempty"`
	Median *float64 `json:"median,omitempty"`
	Q3     *float64 `json:"q3,omitempty"`
	Max    *float64 `json:"max,omitempty"`
}

func ptr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// NewDocument converts r for JSON encoding.
func NewDocument(r *analysis.Result) Document {
	d := Document{Pair: r.Pair, Skipped: r.Skipped, ElapsedMs: r.Elapsed.Milliseconds()}
	for _, y := range r.Years {
		yd := YearDoc{
			Year:         y.Year,
			Join:         y.Join,
			Dropped:      y.Dropped,
			Correlation:  CorrDoc{R: ptr(y.Corr.R), P: ptr(y.Corr.P), N: y.Corr.N},
			Observations: make([]Observation, len(y.Pairs)),
		}
		for i, p := range y.Pairs {
			yd.Observations[i] = Observation{Country: p.Country, X: p.X, Y: p.Y}
		}
		for i, b := range y.Buckets {
			bd := BucketDoc{Label: b.Label, Low: ptr(b.Low), High: ptr(b.High), Mean: ptr(b.Mean), Count: b.Count}
			if i < len(y.Boxes) {
				bx := y.Boxes[i]
				bd.Min, bd.Q1, bd.Median, bd.Q3, bd.Max = ptr(bx.Min), ptr(bx.Q1), ptr(bx.Median), ptr(bx.Q3), ptr(bx.Max)
			}
			yd.Buckets = append(yd.Buckets, bd)
		}
		d.Years = append(d.Years, yd)
	}
	return d
}
