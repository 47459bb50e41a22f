package dataset

import (
	"sort"

	"github.com/KaramelBytes/maslow-cli/internal/table"
)

// CountryColumn is the key column of every panel year table.
const CountryColumn = "Country"

// Panel maps a year to a two-column table (Country, indicator column).
type Panel struct {
	Indicator Indicator
	Years     map[int]*table.Table
}

func newPanel(ind Indicator) *Panel {
	return &Panel{Indicator: ind, Years: map[int]*table.Table{}}
}

// Column is the value column of every year table.
func (p *Panel) Column() string { return p.Indicator.Column() }

// YearList returns the years held, ascending.
func (p *Panel) YearList() []int {
	out := make([]int, 0, len(p.Years))
	for y := range p.Years {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// Year returns the table for y.
func (p *Panel) Year(y int) (*table.Table, bool) {
	t, ok := p.Years[y]
	return t, ok
}

// Validate checks every year table carries the country and value columns.
func (p *Panel) Validate() error {
	if len(p.Years) == 0 {
		return ErrNoYears
	}
	for _, y := range p.YearList() {
		if err := p.Years[y].Require(CountryColumn, p.Column()); err != nil {
			return err
		}
	}
	return nil
}

// put appends a row to the year table, creating it on first use.
func (p *Panel) put(year int, country, value string) {
	t, ok := p.Years[year]
	if !ok {
		t = table.New(string(p.Indicator)+"_"+itoa(year), CountryColumn, p.Column())
		p.Years[year] = t
	}
	t.Append(country, value)
}
