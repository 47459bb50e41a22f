package table

import (
	"fmt"
	"math"
	"strings"
)

// Table is a small in-memory row store. Cells are kept as the raw strings read
// from disk so that duplicate detection compares exactly what the source held;
// numeric access goes through Float.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// New returns an empty table with the given header.
func New(name string, columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Name: name, Columns: cols}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of column name, or -1. An exact match wins over
// a case-insensitive one.
func (t *Table) Index(name string) int {
	want := strings.TrimSpace(name)
	for i, c := range t.Columns {
		if c == want {
			return i
		}
	}
	for i, c := range t.Columns {
		if strings.EqualFold(strings.TrimSpace(c), want) {
			return i
		}
	}
	return -1
}

// Has reports whether every named column exists.
func (t *Table) Has(names ...string) bool {
	for _, n := range names {
		if t.Index(n) < 0 {
			return false
		}
	}
	return true
}

// Require returns a *SchemaError for the first missing column.
func (t *Table) Require(names ...string) error {
	for _, n := range names {
		if t.Index(n) < 0 {
			return &SchemaError{Table: t.Name, Column: n}
		}
	}
	return nil
}

// Append adds a row, padding or truncating it to the header width.
func (t *Table) Append(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Value returns the raw cell, or "" when out of range.
func (t *Table) Value(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Float parses the cell as a number. Undefined and unparseable cells are NaN.
func (t *Table) Float(row, col int) float64 {
	f, ok := ParseNumber(t.Value(row, col), NumberFormat{})
	if !ok {
		return math.NaN()
	}
	return f
}

// Select returns a new table holding only the named columns, in that order.
func (t *Table) Select(names ...string) (*Table, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		j := t.Index(n)
		if j < 0 {
			return nil, &SchemaError{Table: t.Name, Column: n}
		}
		idx[i] = j
	}
	out := New(t.Name, names...)
	out.Rows = make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		row := make([]string, len(idx))
		for i, j := range idx {
			if j < len(r) {
				row[i] = r[j]
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// Rename renames columns in place; unknown names are ignored.
func (t *Table) Rename(mapping map[string]string) {
	for from, to := range mapping {
		if i := t.Index(from); i >= 0 {
			t.Columns[i] = to
		}
	}
}

// Filter returns a new table with the rows for which keep returns true.
func (t *Table) Filter(keep func(row []string) bool) *Table {
	out := New(t.Name, t.Columns...)
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Clone deep-copies the table.
func (t *Table) Clone() *Table {
	out := New(t.Name, t.Columns...)
	out.Rows = make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		cp := make([]string, len(r))
		copy(cp, r)
		out.Rows[i] = cp
	}
	return out
}

// String renders a short description used in log lines and test failures.
func (t *Table) String() string {
	if t == nil {
		return "<nil table>"
	}
	return fmt.Sprintf("%s(%d cols, %d rows)", safeName(t.Name), len(t.Columns), len(t.Rows))
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
