package analysis

import (
	"fmt"
	"math"
	"strings"
)

// Markdown renders a compact text report of the result.
func (r *Result) Markdown() string {
	var b strings.Builder
	p := r.Pair
	b.WriteString(fmt.Sprintf("[PAIR %s]\n", p.Name))
	b.WriteString(fmt.Sprintf("X: %s (%s, level %d)\n", p.Lower.Title(), p.Lower, int(p.Lower.Level())))
	b.WriteString(fmt.Sprintf("Y: %s (%s, level %d)\n", p.Higher.Title(), p.Higher, int(p.Higher.Level())))
	b.WriteString(fmt.Sprintf("Years: %d-%d", p.From, p.To))
	if len(r.Skipped) > 0 {
		b.WriteString(fmt.Sprintf(" (skipped: %s)", joinInts(r.Skipped)))
	}
	b.WriteString("\n")
	if p.Buckets != nil {
		b.WriteString(fmt.Sprintf("Buckets: %d over [%s, %s)", p.Buckets.Count, num(p.Buckets.Start), num(p.Buckets.End)))
		if p.Buckets.Overflow {
			b.WriteString(" + overflow")
		}
		b.WriteString("\n")
	}

	for _, y := range r.Years {
		b.WriteString(fmt.Sprintf("\n[YEAR %d]\n", y.Year))
		j := y.Join
		b.WriteString(fmt.Sprintf("Join: %d rows (left %d, right %d", j.Rows(), j.LeftRows, j.RightRows))
		if j.Duplicates > 0 {
			b.WriteString(fmt.Sprintf(", %d duplicates removed", j.Duplicates))
		}
		b.WriteString(")\n")
		if j.Lost() > 0 {
			b.WriteString(fmt.Sprintf("Unmatched: %d only in %s, %d only in %s\n",
				len(j.LeftOnly), p.Lower, len(j.RightOnly), p.Higher))
		}
		b.WriteString(fmt.Sprintf("Observations: %d", len(y.Pairs)))
		if y.Dropped > 0 {
			b.WriteString(fmt.Sprintf(" (%d with undefined values dropped)", y.Dropped))
		}
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("Correlation: r=%s p=%s n=%d\n", num(y.Corr.R), num(y.Corr.P), y.Corr.N))
		if len(y.Buckets) > 0 {
			b.WriteString("Buckets:\n")
			for i, bk := range y.Buckets {
				b.WriteString(fmt.Sprintf("- %s: mean %s (n=%d)", bk.Label, num(bk.Mean), bk.Count))
				if i < len(y.Boxes) && y.Boxes[i].N > 1 {
					bx := y.Boxes[i]
					b.WriteString(fmt.Sprintf("; median %s, IQR %s..%s", num(bx.Median), num(bx.Q1), num(bx.Q3)))
				}
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4g", v)
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ", ")
}
