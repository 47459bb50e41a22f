package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/maslow-cli/internal/bucket"
	"github.com/KaramelBytes/maslow-cli/internal/country"
	"github.com/KaramelBytes/maslow-cli/internal/dataset"
	"github.com/KaramelBytes/maslow-cli/internal/levels"
	"github.com/KaramelBytes/maslow-cli/internal/table"
)

type fakeLoader map[dataset.Indicator]*dataset.Panel

func (f fakeLoader) Load(ind dataset.Indicator) (*dataset.Panel, error) {
	p, ok := f[ind]
	if !ok {
		return nil, fmt.Errorf("no data for %s", ind)
	}
	return p, nil
}

// panel builds a panel from year -> [country, value, country, value, ...].
func panel(ind dataset.Indicator, years map[int][]string) *dataset.Panel {
	p := &dataset.Panel{Indicator: ind, Years: map[int]*table.Table{}}
	for y, kv := range years {
		t := table.New(fmt.Sprintf("%s_%d", ind, y), dataset.CountryColumn, ind.Column())
		for i := 0; i+1 < len(kv); i += 2 {
			t.Append(kv[i], kv[i+1])
		}
		p.Years[y] = t
	}
	return p
}

func testLoader() fakeLoader {
	return fakeLoader{
		dataset.Hunger: panel(dataset.Hunger, map[int][]string{
			2010: {"Chad", "39.6", "Peru", "7.5", "Spain", "2.5", "Mali", ""},
			2011: {"Chad", "38.1"},
		}),
		dataset.Peace: panel(dataset.Peace, map[int][]string{
			2010: {"Chad", "2.4", "Peru", "2.0", "Mali", "2.2", "Norway", "1.2"},
		}),
	}
}

func testPair() levels.Pair {
	return levels.Pair{Name: "hp", Lower: dataset.Hunger, Higher: dataset.Peace, From: 2010, To: 2011,
		Buckets: &bucket.Spec{Start: 0, End: 50, Count: 5}}
}

func TestRunJoinsCleansAndBuckets(t *testing.T) {
	p := &Pipeline{Loader: testLoader()}
	res, err := p.Run(context.Background(), testPair())
	require.NoError(t, err)

	assert.Equal(t, []int{2011}, res.Skipped)
	require.Len(t, res.Years, 1)
	y := res.Years[0]
	assert.Equal(t, 2010, y.Year)
	assert.Equal(t, 3, y.Join.Rows())
	assert.Equal(t, []string{"Spain"}, y.Join.LeftOnly)
	assert.Equal(t, []string{"Norway"}, y.Join.RightOnly)
	assert.Equal(t, 1, y.Dropped, "Mali has no hunger value")

	require.Len(t, y.Pairs, 2)
	assert.Equal(t, bucket.Pair{Country: "Peru", X: 7.5, Y: 2.0}, y.Pairs[0])
	assert.Equal(t, bucket.Pair{Country: "Chad", X: 39.6, Y: 2.4}, y.Pairs[1])

	require.Len(t, y.Buckets, 5)
	assert.InDelta(t, 2.0, y.Buckets[0].Mean, 1e-9)
	assert.Equal(t, 1, y.Buckets[3].Count)
	assert.True(t, math.IsNaN(y.Buckets[1].Mean))
	require.Len(t, y.Boxes, 5)
	assert.Equal(t, 2.4, y.Boxes[3].Median)

	assert.Equal(t, 2, y.Corr.N)
	assert.True(t, math.IsNaN(y.Corr.R))
}

func TestRunWithoutBuckets(t *testing.T) {
	pair := testPair()
	pair.Buckets = nil
	res, err := (&Pipeline{Loader: testLoader()}).Run(context.Background(), pair)
	require.NoError(t, err)
	assert.Nil(t, res.Years[0].Buckets)
	assert.Nil(t, res.Years[0].Boxes)
	assert.Len(t, res.Years[0].Pairs, 2)
}

func TestRunAppliesAliases(t *testing.T) {
	l := fakeLoader{
		dataset.Hunger: panel(dataset.Hunger, map[int][]string{2010: {"Viet Nam", "10.1"}}),
		dataset.Peace:  panel(dataset.Peace, map[int][]string{2010: {"Vietnam", "1.9"}}),
	}
	pair := testPair()
	pair.To = 2010

	res, err := (&Pipeline{Loader: l}).Run(context.Background(), pair)
	require.NoError(t, err)
	assert.Empty(t, res.Years[0].Pairs, "no fuzzy matching without aliases")

	p := &Pipeline{Loader: l, Aliases: country.NewAliases(map[string]string{"Viet Nam": "Vietnam"})}
	res, err = p.Run(context.Background(), pair)
	require.NoError(t, err)
	require.Len(t, res.Years[0].Pairs, 1)
	assert.Equal(t, "Vietnam", res.Years[0].Pairs[0].Country)

	hunger, _ := l.Load(dataset.Hunger)
	tb, _ := hunger.Year(2010)
	assert.Equal(t, "Viet Nam", tb.Value(0, 0), "panels are not modified")
}

func TestRunErrors(t *testing.T) {
	p := &Pipeline{Loader: testLoader()}

	pair := testPair()
	pair.From, pair.To = 2015, 2016
	_, err := p.Run(context.Background(), pair)
	assert.ErrorIs(t, err, ErrNoOverlap)

	pair = testPair()
	pair.Higher = dataset.Freedom
	_, err = p.Run(context.Background(), pair)
	assert.ErrorContains(t, err, "no data for freedom")

	pair = testPair()
	pair.Buckets = &bucket.Spec{Start: 1, End: 0, Count: 3}
	_, err = p.Run(context.Background(), pair)
	assert.ErrorIs(t, err, bucket.ErrInvalidSpec)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Run(ctx, testPair())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunAllKeepsInputOrder(t *testing.T) {
	p := &Pipeline{Loader: testLoader()}
	var pairs []levels.Pair
	for i := 0; i < 6; i++ {
		pr := testPair()
		pr.Name = fmt.Sprintf("p%d", i)
		pairs = append(pairs, pr)
	}
	res, err := p.RunAll(context.Background(), pairs, 3)
	require.NoError(t, err)
	require.Len(t, res, 6)
	for i, r := range res {
		assert.Equal(t, fmt.Sprintf("p%d", i), r.Pair.Name)
	}

	bad := testPair()
	bad.Higher = dataset.Innovation
	_, err = p.RunAll(context.Background(), append(pairs, bad), 0)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoOverlap))
}

func TestCorrelate(t *testing.T) {
	c := Correlate([]bucket.Pair{{X: 1, Y: 2}, {X: 2, Y: 1}, {X: 3, Y: 4}, {X: 4, Y: 3}, {X: 5, Y: 5}})
	assert.Equal(t, 5, c.N)
	assert.InDelta(t, 0.8, c.R, 1e-9)
	assert.Greater(t, c.P, 0.09)
	assert.Less(t, c.P, 0.12)

	perfect := Correlate([]bucket.Pair{{X: 1, Y: 2}, {X: 2, Y: 4}, {X: 3, Y: 6}})
	assert.InDelta(t, 1.0, perfect.R, 1e-12)
	assert.InDelta(t, 0.0, perfect.P, 1e-6)
}

func TestBoxStats(t *testing.T) {
	boxes := BoxStats([]bucket.Bucket{
		{Label: "a", Ys: []float64{8, 1, 7, 2, 6, 3, 5, 4}},
		{Label: "b", Ys: []float64{3.5}},
		{Label: "c"},
	})
	require.Len(t, boxes, 3)
	assert.Equal(t, Box{Label: "a", N: 8, Min: 1, Q1: 2.5, Median: 4.5, Q3: 6.5, Max: 8}, boxes[0])
	assert.Equal(t, Box{Label: "b", N: 1, Min: 3.5, Q1: 3.5, Median: 3.5, Q3: 3.5, Max: 3.5}, boxes[1])
	assert.Equal(t, 0, boxes[2].N)
	assert.True(t, math.IsNaN(boxes[2].Median))
}

func TestMarkdown(t *testing.T) {
	res, err := (&Pipeline{Loader: testLoader()}).Run(context.Background(), testPair())
	require.NoError(t, err)
	md := res.Markdown()
	for _, want := range []string{
		"[PAIR hp]",
		"Years: 2010-2011 (skipped: 2011)",
		"[YEAR 2010]",
		"Unmatched: 1 only in hunger, 1 only in peace",
		"Observations: 2 (1 with undefined values dropped)",
		"Correlation: r=n/a",
		"- [0,10): mean 2 (n=1)",
		"- [10,20): mean n/a (n=0)",
	} {
		assert.True(t, strings.Contains(md, want), "missing %q in:\n%s", want, md)
	}
}

func TestRunEachReportsPerPair(t *testing.T) {
	p := &Pipeline{Loader: testLoader()}
	good := testPair()
	missing := testPair()
	missing.Name, missing.Higher = "missing", dataset.Freedom
	late := testPair()
	late.Name, late.From, late.To = "late", 2020, 2021

	res, errs := p.RunEach(context.Background(), []levels.Pair{good, missing, late}, 2)
	require.Len(t, res, 3)
	require.Len(t, errs, 3)
	assert.NoError(t, errs[0])
	assert.NotNil(t, res[0])
	assert.Error(t, errs[1])
	assert.Nil(t, res[1])
	assert.ErrorIs(t, errs[2], ErrNoOverlap)
	require.NotNil(t, res[2])
	assert.Equal(t, []int{2020, 2021}, res[2].Skipped)
}
