package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/maslow-cli/internal/country"
	"github.com/KaramelBytes/maslow-cli/internal/table"
)

// Reader turns the raw tables of a source into year tables of a panel.
type Reader interface {
	Layout() Layout
	Read(p *Panel, src Source, tables []*table.Table) error
}

var registry = map[Layout]Reader{}

// Register adds a reader, replacing any earlier one for the same layout.
func Register(r Reader) {
	registry[r.Layout()] = r
}

func readerFor(l Layout) (Reader, error) {
	r, ok := registry[l]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, l)
	}
	return r, nil
}

func init() {
	Register(wideReader{})
	Register(longReader{})
	Register(perYearReader{layout: LayoutArchive})
	Register(perYearReader{layout: LayoutWorkbook})
	Register(maritalReader{})
}

func valueIndex(t *table.Table, src Source, fallback string) (int, error) {
	names := src.ValueColumns
	if len(names) == 0 {
		names = []string{fallback}
	}
	for _, n := range names {
		if i := t.Index(n); i >= 0 {
			return i, nil
		}
	}
	return -1, &table.SchemaError{Table: t.Name, Column: strings.Join(names, "|")}
}

func countryIndex(t *table.Table, src Source) (int, error) {
	names := src.CountryColumns
	if len(names) == 0 {
		names = []string{CountryColumn}
	}
	for _, n := range names {
		if i := t.Index(n); i >= 0 {
			return i, nil
		}
	}
	return -1, &table.SchemaError{Table: t.Name, Column: strings.Join(names, "|")}
}

// wideReader handles one row per country with a column per year. Any column
// whose name embeds a year is a year column ("2010", "score_2010", "pi_2010").
type wideReader struct{}

func (wideReader) Layout() Layout { return LayoutWide }

func (wideReader) Read(p *Panel, src Source, tables []*table.Table) error {
	for _, t := range tables {
		ci, err := countryIndex(t, src)
		if err != nil {
			return err
		}
		years := map[int]int{}
		for i, c := range t.Columns {
			if i == ci {
				continue
			}
			if y, ok := yearIn(c); ok {
				if _, seen := years[i]; !seen {
					years[i] = y
				}
			}
		}
		for r := range t.Rows {
			name := country.Normalize(t.Value(r, ci))
			if name == "" {
				continue
			}
			for i := range t.Columns {
				y, ok := years[i]
				if !ok {
					continue
				}
				p.put(y, name, valueCell(t.Value(r, i)))
			}
		}
	}
	return nil
}

// longReader handles one row per (country, year).
type longReader struct{}

func (longReader) Layout() Layout { return LayoutLong }

func (longReader) Read(p *Panel, src Source, tables []*table.Table) error {
	yearCol := src.YearColumn
	if yearCol == "" {
		yearCol = "year"
	}
	for _, t := range tables {
		ci, err := countryIndex(t, src)
		if err != nil {
			return err
		}
		yi := t.Index(yearCol)
		if yi < 0 {
			return &table.SchemaError{Table: t.Name, Column: yearCol}
		}
		vi, err := valueIndex(t, src, p.Column())
		if err != nil {
			return err
		}
		for r := range t.Rows {
			y, ok := yearCell(t.Value(r, yi))
			if !ok {
				continue
			}
			name := country.Normalize(t.Value(r, ci))
			if name == "" {
				continue
			}
			p.put(y, name, valueCell(t.Value(r, vi)))
		}
	}
	return nil
}

// perYearReader handles sources holding one table per year, the year taken
// from the table name (a zip entry such as "2015.csv" or a sheet "2015").
type perYearReader struct{ layout Layout }

func (r perYearReader) Layout() Layout { return r.layout }

func (perYearReader) Read(p *Panel, src Source, tables []*table.Table) error {
	for _, t := range tables {
		y, ok := yearIn(t.Name)
		if !ok {
			continue
		}
		ci, err := countryIndex(t, src)
		if err != nil {
			return err
		}
		vi, err := valueIndex(t, src, p.Column())
		if err != nil {
			return err
		}
		for r := range t.Rows {
			name := country.Normalize(t.Value(r, ci))
			if name == "" {
				continue
			}
			p.put(y, name, valueCell(t.Value(r, vi)))
		}
	}
	return nil
}

const (
	maritalStatusColumn = "Marital status"
	maritalAgeColumn    = "Age"
	maritalTotal        = "Total"
	maritalSingle       = "Single (never married)"
)

// maritalReader reduces UNdata marital-status records to a marriage rate:
// (Total - Single) / Total, summing Value over rows with Age "Total" per
// (Year, Country). Trailing footnote rows carry no integer year and are skipped.
type maritalReader struct{}

func (maritalReader) Layout() Layout { return LayoutMarital }

type maritalKey struct {
	year    int
	country string
}

func (maritalReader) Read(p *Panel, src Source, tables []*table.Table) error {
	yearCol := src.YearColumn
	if yearCol == "" {
		yearCol = "Year"
	}
	total := map[maritalKey]float64{}
	single := map[maritalKey]float64{}
	var order []maritalKey
	for _, t := range tables {
		if err := t.Require(yearCol, maritalStatusColumn, maritalAgeColumn); err != nil {
			return err
		}
		ci, err := countryIndex(t, src)
		if err != nil {
			return err
		}
		vi, err := valueIndex(t, Source{ValueColumns: src.ValueColumns}, "Value")
		if err != nil {
			return err
		}
		yi, si, ai := t.Index(yearCol), t.Index(maritalStatusColumn), t.Index(maritalAgeColumn)
		for r := range t.Rows {
			y, ok := yearCell(t.Value(r, yi))
			if !ok || strings.TrimSpace(t.Value(r, ai)) != maritalTotal {
				continue
			}
			name := country.Normalize(t.Value(r, ci))
			if name == "" {
				continue
			}
			v, ok := table.ParseNumber(t.Value(r, vi), table.NumberFormat{})
			if !ok {
				continue
			}
			k := maritalKey{y, name}
			switch strings.TrimSpace(t.Value(r, si)) {
			case maritalTotal:
				if _, seen := total[k]; !seen {
					order = append(order, k)
				}
				total[k] += v
			case maritalSingle:
				single[k] += v
			}
		}
	}
	for _, k := range order {
		rate := math.NaN()
		if s, ok := single[k]; ok && total[k] != 0 {
			rate = (total[k] - s) / total[k]
		}
		cell := ""
		if !math.IsNaN(rate) {
			cell = strconv.FormatFloat(rate, 'g', -1, 64)
		}
		p.put(k.year, k.country, cell)
	}
	return nil
}
