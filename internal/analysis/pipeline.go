// Package analysis runs the load, join, clean and bucket pipeline for each
// level pair and renders a text report of the outcome.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/maslow-cli/internal/bucket"
	"github.com/KaramelBytes/maslow-cli/internal/country"
	"github.com/KaramelBytes/maslow-cli/internal/dataset"
	"github.com/KaramelBytes/maslow-cli/internal/join"
	"github.com/KaramelBytes/maslow-cli/internal/levels"
	"github.com/KaramelBytes/maslow-cli/internal/logger"
	"github.com/KaramelBytes/maslow-cli/internal/table"
)

// ErrNoOverlap is returned when none of a pair's years exist in both panels.
var ErrNoOverlap = errors.New("no overlapping years")

// PanelLoader supplies indicator panels. *dataset.Loader satisfies it.
type PanelLoader interface {
	Load(ind dataset.Indicator) (*dataset.Panel, error)
}

// Pipeline analyzes level pairs. The zero Logger and Aliases are valid.
type Pipeline struct {
	Loader  PanelLoader
	Aliases country.Aliases
	Logger  *logger.Logger
}

// YearResult is the outcome of one year of one pair.
type YearResult struct {
	Year    int             `json:"year"`
	Join    join.Stats      `json:"join"`
	Pairs   []bucket.Pair   `json:"pairs"`
	Dropped int             `json:"dropped"`
	Buckets []bucket.Bucket `json:"buckets,omitempty"`
	Boxes   []Box           `json:"boxes,omitempty"`
	Corr    Correlation     `json:"correlation"`
}

// Result collects every analyzed year of a pair, in ascending year order.
type Result struct {
	Pair    levels.Pair   `json:"pair"`
	Years   []YearResult  `json:"years"`
	Skipped []int         `json:"skipped,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
}

func (p *Pipeline) log() *logger.Logger {
	if p.Logger == nil {
		return logger.Nop()
	}
	return p.Logger
}

// Run analyzes one pair. Years missing from either panel are skipped with a
// warning; ErrNoOverlap is returned when every year is skipped.
func (p *Pipeline) Run(ctx context.Context, pair levels.Pair) (*Result, error) {
	if err := pair.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	log := p.log().WithField("pair", pair.Name)

	lower, err := p.Loader.Load(pair.Lower)
	if err != nil {
		return nil, fmt.Errorf("pair %s: %w", pair.Name, err)
	}
	higher, err := p.Loader.Load(pair.Higher)
	if err != nil {
		return nil, fmt.Errorf("pair %s: %w", pair.Name, err)
	}

	res := &Result{Pair: pair}
	for _, y := range pair.Years() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lt, okL := lower.Year(y)
		ht, okH := higher.Year(y)
		if !okL || !okH {
			missing := pair.Lower
			if okL {
				missing = pair.Higher
			}
			log.WithFields(map[string]any{"year": y, "indicator": string(missing)}).Warn("year not in panel, skipped")
			res.Skipped = append(res.Skipped, y)
			continue
		}
		yr, err := p.year(y, pair, lt, ht, log)
		if err != nil {
			return nil, fmt.Errorf("pair %s year %d: %w", pair.Name, y, err)
		}
		res.Years = append(res.Years, *yr)
	}
	res.Elapsed = time.Since(start)
	if len(res.Years) == 0 {
		return res, fmt.Errorf("pair %s: %w for %d-%d", pair.Name, ErrNoOverlap, pair.From, pair.To)
	}
	log.Infof("analyzed %d years in %s", len(res.Years), res.Elapsed.Round(time.Millisecond))
	return res, nil
}

func (p *Pipeline) year(y int, pair levels.Pair, lt, ht *table.Table, log *logger.Logger) (*YearResult, error) {
	joined, st, err := join.Inner(p.alias(lt), p.alias(ht), dataset.CountryColumn)
	if err != nil {
		return nil, err
	}
	jl := log.WithFields(map[string]any{"year": y, "matched": st.Rows(), "left_only": len(st.LeftOnly), "right_only": len(st.RightOnly)})
	jl.Info("joined")
	if len(st.LeftOnly) > 0 {
		log.WithField("year", y).Debugf("only in %s: %v", pair.Lower, st.LeftOnly)
	}
	if len(st.RightOnly) > 0 {
		log.WithField("year", y).Debugf("only in %s: %v", pair.Higher, st.RightOnly)
	}

	ci := joined.Index(dataset.CountryColumn)
	xi := joined.Index(pair.Lower.Column())
	yi := joined.Index(pair.Higher.Column())
	raw := make([]bucket.Pair, 0, joined.Len())
	for r := range joined.Rows {
		raw = append(raw, bucket.Pair{
			Country: joined.Value(r, ci),
			X:       joined.Float(r, xi),
			Y:       joined.Float(r, yi),
		})
	}
	kept, dropped := bucket.Clean(raw)
	yr := &YearResult{Year: y, Join: st, Pairs: kept, Dropped: dropped, Corr: Correlate(kept)}
	if pair.Buckets != nil {
		yr.Buckets, err = bucket.Aggregate(kept, *pair.Buckets)
		if err != nil {
			return nil, err
		}
		yr.Boxes = BoxStats(yr.Buckets)
	}
	return yr, nil
}

// alias returns t with country keys rewritten through the alias table.
func (p *Pipeline) alias(t *table.Table) *table.Table {
	if len(p.Aliases) == 0 {
		return t
	}
	out := t.Clone()
	ci := out.Index(dataset.CountryColumn)
	for _, row := range out.Rows {
		row[ci] = p.Aliases.Resolve(row[ci])
	}
	return out
}

// RunAll analyzes pairs with at most workers running at once and returns
// results in input order. The first error cancels the remaining pairs.
func (p *Pipeline) RunAll(ctx context.Context, pairs []levels.Pair, workers int) ([]*Result, error) {
	if workers < 1 {
		workers = 1
	}
	out := make([]*Result, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, pair := range pairs {
		i, pair := i, pair
		g.Go(func() error {
			r, err := p.Run(gctx, pair)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// RunEach is RunAll without early cancellation: every pair runs and its
// error, if any, is returned at the same index. A failed pair has a nil
// result unless it ran but found no overlapping years.
func (p *Pipeline) RunEach(ctx context.Context, pairs []levels.Pair, workers int) ([]*Result, []error) {
	if workers < 1 {
		workers = 1
	}
	out := make([]*Result, len(pairs))
	errs := make([]error, len(pairs))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, pair := range pairs {
		i, pair := i, pair
		g.Go(func() error {
			out[i], errs[i] = p.Run(ctx, pair)
			return nil
		})
	}
	_ = g.Wait()
	return out, errs
}
