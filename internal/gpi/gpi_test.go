package gpi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/maslow-cli/internal/dataset"
)

const fixture = `<html><body>
<table class="wikitable"><tr><th>Region</th><th>2019</th></tr><tr><td>Europe</td><td>1.5</td></tr></table>
<table class="wikitable sortable">
<tr><th rowspan="2">Country</th><th colspan="2">2019</th><th colspan="2">2018</th></tr>
<tr><th>Score</th><th>Rank</th><th>Score</th><th>Rank</th></tr>
<tr><td><span class="flag"></span><a href="/wiki/Iceland">Iceland</a></td><td>1.072</td><td>1</td><td>1.096</td><td>1</td></tr>
<tr><td><a href="/wiki/New_Zealand">New  Zealand</a><sup>[a]</sup></td><td>1.221</td><td>2</td><td></td><td>2</td></tr>
<tr><td><a href="#cite">[b]</a></td><td>9</td><td>9</td><td>9</td><td>9</td></tr>
<tr><td><a href="/wiki/Syria">Syria</a></td><td>3.566</td><td>162</td><td>3.600[c]</td><td>163</td></tr>
<tr><td><a href="/wiki/Nowhere">Nowhere</a></td><td></td><td></td><td></td><td></td></tr>
</table></body></html>`

func TestParse(t *testing.T) {
	tb, err := Parse(strings.NewReader(fixture))
	require.NoError(t, err)
	assert.Equal(t, []string{"Country", "score_2018", "score_2019"}, tb.Columns)
	assert.Equal(t, [][]string{
		{"Iceland", "1.096", "1.072"},
		{"New Zealand", "", "1.221"},
		{"Syria", "3.6", "3.566"},
	}, tb.Rows)
}

func TestParseWithoutCountryTable(t *testing.T) {
	_, err := Parse(strings.NewReader(`<table class="wikitable"><tr><th>Region</th></tr></table>`))
	assert.ErrorIs(t, err, ErrNoTable)
}

func TestFetchWritesPeaceLayout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fixture))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tb, err := Fetch(ctx, srv.Client(), srv.URL)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, WriteCSV(filepath.Join(dir, "gpi.csv"), tb))

	p, err := dataset.Load(dir, dataset.Peace, dataset.Options{})
	require.NoError(t, err)
	assert.Equal(t, []int{2018, 2019}, p.YearList())
	y, ok := p.Year(2019)
	require.True(t, ok)
	assert.Equal(t, 3, y.Len())
}

func TestFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	_, err := Fetch(context.Background(), srv.Client(), srv.URL)
	assert.ErrorContains(t, err, "HTTP 503")
}
