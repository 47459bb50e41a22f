package dataset

// Layout names an on-disk arrangement of an indicator's data.
type Layout string

const (
	// LayoutWide is one row per country with one column per year.
	LayoutWide Layout = "wide"
	// LayoutLong is one row per (country, year).
	LayoutLong Layout = "long"
	// LayoutArchive is a zip of per-year CSV files, the year taken from the entry name.
	LayoutArchive Layout = "archive"
	// LayoutWorkbook is an XLSX file with one sheet per year.
	LayoutWorkbook Layout = "workbook"
	// LayoutMarital is UNdata marital-status records reduced to a marriage rate.
	LayoutMarital Layout = "marital"
)

// Source describes where an indicator lives and how to read it.
type Source struct {
	Files  []string `mapstructure:"files" yaml:"files" json:"files"`
	Layout Layout   `mapstructure:"layout" yaml:"layout" json:"layout"`
	// CountryColumns are tried in order. Some sources rename the key column
	// between years ("Country", "Country or region").
	CountryColumns []string `mapstructure:"country_columns" yaml:"country_columns,omitempty" json:"country_columns,omitempty"`
	// ValueColumns are tried in order; the first present in a table is used.
	ValueColumns []string `mapstructure:"value_columns" yaml:"value_columns,omitempty" json:"value_columns,omitempty"`
	YearColumn   string   `mapstructure:"year_column" yaml:"year_column,omitempty" json:"year_column,omitempty"`
	// Sheets limits a workbook to the named sheets; empty reads every sheet.
	Sheets []string `mapstructure:"sheets" yaml:"sheets,omitempty" json:"sheets,omitempty"`
}

// DefaultSources returns the file names and layouts of the published datasets.
func DefaultSources() map[Indicator]Source {
	return map[Indicator]Source{
		Hunger: {
			Files:          []string{"Hunger.csv"},
			Layout:         LayoutWide,
			CountryColumns: []string{"Country Name"},
		},
		Peace: {
			Files:          []string{"gpi.csv"},
			Layout:         LayoutWide,
			CountryColumns: []string{"Country"},
		},
		Marriage: {
			Files: []string{
				"UNdata_MARITAL_STATUS_2010-2013.csv",
				"UNdata_MARITAL_STATUS_2014-2017.csv",
			},
			Layout:         LayoutMarital,
			CountryColumns: []string{"Country or Area"},
			ValueColumns:   []string{"Value"},
			YearColumn:     "Year",
		},
		Happiness: {
			Files:          []string{"world-happiness-report.zip"},
			Layout:         LayoutArchive,
			CountryColumns: []string{"Country", "Country or region"},
			ValueColumns:   []string{"Happiness Score", "Happiness.Score", "Score"},
		},
		Freedom: {
			Files:          []string{"the-human-freedom-index.zip"},
			Layout:         LayoutLong,
			CountryColumns: []string{"countries"},
			ValueColumns:   []string{"hf_score"},
			YearColumn:     "year",
		},
		Innovation: {
			Files:          []string{"Innovation.zip"},
			Layout:         LayoutArchive,
			CountryColumns: []string{"Economy"},
			ValueColumns:   []string{"Score"},
		},
	}
}

// merge fills empty fields of o from base.
func (o Source) merge(base Source) Source {
	if len(o.Files) == 0 {
		o.Files = base.Files
	}
	if o.Layout == "" {
		o.Layout = base.Layout
	}
	if len(o.CountryColumns) == 0 {
		o.CountryColumns = base.CountryColumns
	}
	if len(o.ValueColumns) == 0 {
		o.ValueColumns = base.ValueColumns
	}
	if o.YearColumn == "" {
		o.YearColumn = base.YearColumn
	}
	if len(o.Sheets) == 0 {
		o.Sheets = base.Sheets
	}
	return o
}
