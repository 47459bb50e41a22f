// Package join implements the inner join used to pair two indicator tables.
package join

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/maslow-cli/internal/table"
)

// ErrNoKeys is returned when Inner is called without key columns.
var ErrNoKeys = errors.New("join: at least one key column is required")

const keySep = "\x1f"

// Stats describes what an inner join kept and what it silently dropped.
type Stats struct {
	LeftRows   int `json:"left_rows"`
	RightRows  int `json:"right_rows"`
	Matched    int `json:"matched"`    // joined rows before duplicate removal
	Duplicates int `json:"duplicates"` // exact duplicate rows removed
	// Keys present on one side only, rendered as "a | b" for composite keys.
	LeftOnly  []string `json:"left_only,omitempty"`
	RightOnly []string `json:"right_only,omitempty"`
}

// Rows is the number of rows in the joined table.
func (s Stats) Rows() int { return s.Matched - s.Duplicates }

// Lost is the number of distinct keys present on exactly one side.
func (s Stats) Lost() int { return len(s.LeftOnly) + len(s.RightOnly) }

// Inner joins left and right on the given key columns and removes exact
// duplicate rows, keeping the first. Output columns are the keys, then the
// remaining left columns, then the remaining right columns; clashing non-key
// names get "_x" / "_y" suffixes. Key cells are compared exactly, so both
// inputs must already share one normalization.
func Inner(left, right *table.Table, keys ...string) (*table.Table, Stats, error) {
	if len(keys) == 0 {
		return nil, Stats{}, ErrNoKeys
	}
	lk, err := keyIndexes(left, keys)
	if err != nil {
		return nil, Stats{}, err
	}
	rk, err := keyIndexes(right, keys)
	if err != nil {
		return nil, Stats{}, err
	}
	lrest := restIndexes(len(left.Columns), lk)
	rrest := restIndexes(len(right.Columns), rk)

	cols := make([]string, 0, len(keys)+len(lrest)+len(rrest))
	cols = append(cols, keys...)
	lnames := map[string]bool{}
	for _, i := range lrest {
		lnames[left.Columns[i]] = true
	}
	rnames := map[string]bool{}
	for _, i := range rrest {
		rnames[right.Columns[i]] = true
	}
	for _, i := range lrest {
		n := left.Columns[i]
		if rnames[n] {
			n += "_x"
		}
		cols = append(cols, n)
	}
	for _, i := range rrest {
		n := right.Columns[i]
		if lnames[n] {
			n += "_y"
		}
		cols = append(cols, n)
	}

	byKey := make(map[string][]int, right.Len())
	for ri, row := range right.Rows {
		k := rowKey(row, rk)
		byKey[k] = append(byKey[k], ri)
	}

	out := table.New(joinName(left, right), cols...)
	st := Stats{LeftRows: left.Len(), RightRows: right.Len()}
	seenLeft := map[string]bool{}
	matchedKeys := map[string]bool{}
	var leftOnly []string
	for _, lrow := range left.Rows {
		k := rowKey(lrow, lk)
		matches := byKey[k]
		if len(matches) == 0 {
			if !seenLeft[k] {
				leftOnly = append(leftOnly, displayKey(k))
			}
			seenLeft[k] = true
			continue
		}
		seenLeft[k] = true
		matchedKeys[k] = true
		for _, ri := range matches {
			rrow := right.Rows[ri]
			row := make([]string, 0, len(cols))
			for _, i := range lk {
				row = append(row, cell(lrow, i))
			}
			for _, i := range lrest {
				row = append(row, cell(lrow, i))
			}
			for _, i := range rrest {
				row = append(row, cell(rrow, i))
			}
			out.Rows = append(out.Rows, row)
		}
	}
	st.Matched = out.Len()

	seenRight := map[string]bool{}
	var rightOnly []string
	for _, rrow := range right.Rows {
		k := rowKey(rrow, rk)
		if matchedKeys[k] || seenRight[k] {
			continue
		}
		seenRight[k] = true
		rightOnly = append(rightOnly, displayKey(k))
	}
	sort.Strings(leftOnly)
	sort.Strings(rightOnly)
	st.LeftOnly = leftOnly
	st.RightOnly = rightOnly

	deduped, removed := Dedup(out)
	st.Duplicates = removed
	return deduped, st, nil
}

// Dedup returns a copy of t without exact duplicate rows (first occurrence
// kept) and the number of rows removed. Applying it twice changes nothing.
func Dedup(t *table.Table) (*table.Table, int) {
	out := table.New(t.Name, t.Columns...)
	seen := make(map[string]struct{}, t.Len())
	for _, r := range t.Rows {
		k := strings.Join(r, keySep)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out.Rows = append(out.Rows, r)
	}
	return out, t.Len() - out.Len()
}

func keyIndexes(t *table.Table, keys []string) ([]int, error) {
	idx := make([]int, len(keys))
	for i, k := range keys {
		j := t.Index(k)
		if j < 0 {
			return nil, fmt.Errorf("join: %w", &table.SchemaError{Table: t.Name, Column: k})
		}
		idx[i] = j
	}
	return idx, nil
}

func restIndexes(n int, keys []int) []int {
	isKey := make(map[int]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}
	rest := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if !isKey[i] {
			rest = append(rest, i)
		}
	}
	return rest
}

func rowKey(row []string, idx []int) string {
	if len(idx) == 1 {
		return cell(row, idx[0])
	}
	parts := make([]string, len(idx))
	for i, j := range idx {
		parts[i] = cell(row, j)
	}
	return strings.Join(parts, keySep)
}

func displayKey(k string) string { return strings.ReplaceAll(k, keySep, " | ") }

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func joinName(l, r *table.Table) string {
	switch {
	case l.Name == "":
		return r.Name
	case r.Name == "":
		return l.Name
	}
	return l.Name + "+" + r.Name
}
