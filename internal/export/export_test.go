package export

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/maslow-cli/internal/analysis"
	"github.com/KaramelBytes/maslow-cli/internal/bucket"
	"github.com/KaramelBytes/maslow-cli/internal/dataset"
	"github.com/KaramelBytes/maslow-cli/internal/join"
	"github.com/KaramelBytes/maslow-cli/internal/levels"
	"github.com/KaramelBytes/maslow-cli/internal/table"
)

func sampleResult(t *testing.T) *analysis.Result {
	t.Helper()
	spec := bucket.Spec{Start: 0, End: 20, Count: 2, Overflow: true}
	pairs := []bucket.Pair{{Country: "Peru", X: 7.5, Y: 2}, {Country: "Chad", X: 39.6, Y: 2.4}}
	buckets, err := bucket.Aggregate(pairs, spec)
	require.NoError(t, err)
	return &analysis.Result{
		Pair: levels.Pair{Name: "1-2", Lower: dataset.Hunger, Higher: dataset.Peace, From: 2010, To: 2010, Buckets: &spec},
		Years: []analysis.YearResult{{
			Year:    2010,
			Join:    join.Stats{LeftRows: 3, RightRows: 3, Matched: 2, LeftOnly: []string{"Spain"}, RightOnly: []string{"Norway"}},
			Pairs:   pairs,
			Buckets: buckets,
			Boxes:   analysis.BoxStats(buckets),
			Corr:    analysis.Correlate(pairs),
		}},
	}
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats([]string{"csv,JSON", "csv", " xlsx "})
	require.NoError(t, err)
	assert.Equal(t, []Format{CSV, JSON, XLSX}, got)

	_, err = ParseFormats([]string{"parquet"})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestCSVWriters(t *testing.T) {
	r := sampleResult(t)
	var obs bytes.Buffer
	require.NoError(t, WriteObservationsCSV(&obs, r))
	assert.Equal(t, "year,country,x,y\n2010,Peru,7.5,2\n2010,Chad,39.6,2.4\n", obs.String())

	var bk bytes.Buffer
	require.NoError(t, WriteBucketsCSV(&bk, r))
	assert.Equal(t, "year,bucket,low,high,mean,count\n"+
		"2010,\"[0,10)\",0,10,2,1\n"+
		"2010,\"[10,20)\",10,20,,0\n"+
		"2010,20+,20,,2.4,1\n", bk.String())
}

func TestWriteAllFormats(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	r := sampleResult(t)
	paths, err := Write(dir, r, []Format{CSV, XLSX, JSON})
	require.NoError(t, err)
	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	assert.Equal(t, []string{"1-2_observations.csv", "1-2_buckets.csv", "1-2.xlsx", "1-2.json"}, names)

	b, err := os.ReadFile(filepath.Join(dir, "1-2.json"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	years := doc["years"].([]any)
	y0 := years[0].(map[string]any)
	assert.Nil(t, y0["correlation"].(map[string]any)["r"], "NaN is encoded as null")
	buckets := y0["buckets"].([]any)
	assert.Nil(t, buckets[1].(map[string]any)["mean"])
	assert.Nil(t, buckets[2].(map[string]any)["high"])
	assert.EqualValues(t, 2, buckets[0].(map[string]any)["mean"])

	f, err := excelize.OpenFile(filepath.Join(dir, "1-2.xlsx"))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"summary", "2010"}, f.GetSheetList())
	rows, err := f.GetRows("2010")
	require.NoError(t, err)
	assert.Equal(t, []string{"country", "hunger", "peace", "", "bucket", "low", "high", "mean", "count"}, rows[0])
	assert.Equal(t, "Peru", rows[1][0])
	mean, err := f.GetCellValue("2010", "H3")
	require.NoError(t, err)
	assert.Equal(t, "", mean)
}

func TestWriteSkipsBucketsWhenUnbucketed(t *testing.T) {
	r := sampleResult(t)
	r.Pair.Buckets = nil
	r.Pair.Name = "2/3 raw"
	paths, err := Write(t.TempDir(), r, []Format{CSV})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.True(t, strings.HasSuffix(paths[0], "2_3_raw_observations.csv"))
}

func TestNewDocumentKeepsFiniteValues(t *testing.T) {
	d := NewDocument(sampleResult(t))
	require.Len(t, d.Years, 1)
	require.NotNil(t, d.Years[0].Buckets[0].Median)
	assert.Equal(t, 2.0, *d.Years[0].Buckets[0].Median)
	assert.False(t, math.IsNaN(d.Years[0].Observations[0].X))
}

type panels map[dataset.Indicator]*dataset.Panel

func (p panels) Load(ind dataset.Indicator) (*dataset.Panel, error) { return p[ind], nil }

func yearPanel(ind dataset.Indicator, year int, kv ...string) *dataset.Panel {
	t := table.New(string(ind), dataset.CountryColumn, ind.Column())
	for i := 0; i+1 < len(kv); i += 2 {
		t.Append(kv[i], kv[i+1])
	}
	return &dataset.Panel{Indicator: ind, Years: map[int]*table.Table{year: t}}
}

func TestJSONExportSurvivesInfiniteCells(t *testing.T) {
	pipe := &analysis.Pipeline{Loader: panels{
		dataset.Hunger: yearPanel(dataset.Hunger, 2010, "Chad", "39.6", "Peru", "inf", "Mali", "12"),
		dataset.Peace:  yearPanel(dataset.Peace, 2010, "Chad", "2.4", "Peru", "2.0", "Mali", "-Infinity"),
	}}
	pair := levels.Pair{Name: "1-2", Lower: dataset.Hunger, Higher: dataset.Peace, From: 2010, To: 2010}
	r, err := pipe.Run(context.Background(), pair)
	require.NoError(t, err)
	require.Len(t, r.Years, 1)
	assert.Equal(t, 2, r.Years[0].Dropped)

	dir := t.TempDir()
	paths, err := Write(dir, r, []Format{JSON})
	require.NoError(t, err)
	require.Len(t, paths, 1)

	var doc Document
	b, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &doc))
	require.Len(t, doc.Years[0].Observations, 1)
	assert.Equal(t, "Chad", doc.Years[0].Observations[0].Country)
}
