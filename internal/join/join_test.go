package join

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/maslow-cli/internal/table"
)

func tbl(name string, cols []string, rows ...[]string) *table.Table {
	t := table.New(name, cols...)
	for _, r := range rows {
		t.Append(r...)
	}
	return t
}

func TestInnerDropsUnmatchedCountries(t *testing.T) {
	a := tbl("a", []string{"Country", "A"}, []string{"Chad", "1"}, []string{"Peru", "2"})
	b := tbl("b", []string{"Country", "B"}, []string{"Peru", "9"}, []string{"Chad", "8"}, []string{"Spain", "5"})

	out, st, err := Inner(a, b, "Country")
	require.NoError(t, err)
	assert.Equal(t, []string{"Country", "A", "B"}, out.Columns)
	assert.Equal(t, [][]string{{"Chad", "1", "8"}, {"Peru", "2", "9"}}, out.Rows)
	assert.Equal(t, 2, st.Rows())
	assert.Empty(t, st.LeftOnly)
	assert.Equal(t, []string{"Spain"}, st.RightOnly)
	assert.Equal(t, 1, st.Lost())
}

func TestInnerNeverInventsKeys(t *testing.T) {
	a := tbl("a", []string{"Country", "v"},
		[]string{"United States", "1"}, []string{"Chad", "2"}, []string{"Chad", "3"}, []string{"Niger", "4"})
	b := tbl("b", []string{"Country", "w"},
		[]string{"United States of America", "7"}, []string{"Chad", "8"}, []string{"Mali", "9"})

	out, st, err := Inner(a, b, "Country")
	require.NoError(t, err)

	inA := map[string]bool{}
	for _, r := range a.Rows {
		inA[r[0]] = true
	}
	inB := map[string]bool{}
	for _, r := range b.Rows {
		inB[r[0]] = true
	}
	for _, r := range out.Rows {
		assert.True(t, inA[r[0]] && inB[r[0]], "row %v has key missing from an input", r)
	}
	// spelling mismatch is recorded, not reconciled
	assert.Equal(t, []string{"Niger", "United States"}, st.LeftOnly)
	assert.Equal(t, []string{"Mali", "United States of America"}, st.RightOnly)
	assert.Equal(t, 2, out.Len())
}

func TestInnerRemovesExactDuplicates(t *testing.T) {
	a := tbl("a", []string{"Country", "v"}, []string{"Chad", "1"}, []string{"Chad", "1"}, []string{"Peru", "2"})
	b := tbl("b", []string{"Country", "w"}, []string{"Chad", "5"}, []string{"Peru", "6"}, []string{"Peru", "7"})

	out, st, err := Inner(a, b, "Country")
	require.NoError(t, err)
	assert.Equal(t, 4, st.Matched)
	assert.Equal(t, 1, st.Duplicates)
	assert.Equal(t, [][]string{{"Chad", "1", "5"}, {"Peru", "2", "6"}, {"Peru", "2", "7"}}, out.Rows)

	once, n1 := Dedup(out)
	twice, n2 := Dedup(once)
	assert.Equal(t, 0, n1)
	assert.Equal(t, 0, n2)
	assert.Equal(t, once.Len(), twice.Len())
}

func TestDedupIdempotent(t *testing.T) {
	x := tbl("x", []string{"k", "v"}, []string{"a", "1"}, []string{"a", "1"}, []string{"a", "2"}, []string{"a", "1"})
	once, removed := Dedup(x)
	assert.Equal(t, 2, removed)
	twice, again := Dedup(once)
	assert.Equal(t, 0, again)
	assert.Equal(t, once.Rows, twice.Rows)
	assert.Equal(t, [][]string{{"a", "1"}, {"a", "2"}}, once.Rows)
}

func TestInnerCompositeKeyAndSuffixes(t *testing.T) {
	a := tbl("free", []string{"Year", "Country", "score"},
		[]string{"2015", "Chad", "5.1"}, []string{"2016", "Chad", "5.3"})
	b := tbl("inno", []string{"Country", "Year", "score"},
		[]string{"Chad", "2016", "20"}, []string{"Chad", "2017", "21"})

	out, st, err := Inner(a, b, "Country", "Year")
	require.NoError(t, err)
	assert.Equal(t, []string{"Country", "Year", "score_x", "score_y"}, out.Columns)
	assert.Equal(t, [][]string{{"Chad", "2016", "5.3", "20"}}, out.Rows)
	assert.Equal(t, []string{"Chad | 2015"}, st.LeftOnly)
	assert.Equal(t, []string{"Chad | 2017"}, st.RightOnly)
	assert.Equal(t, "free+inno", out.Name)
}

func TestInnerMissingKeyIsSchemaError(t *testing.T) {
	a := tbl("a", []string{"Country", "v"})
	b := tbl("b", []string{"Economy", "w"})

	_, _, err := Inner(a, b, "Country")
	require.Error(t, err)
	assert.True(t, errors.Is(err, table.ErrSchema))
	var se *table.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "b", se.Table)

	_, _, err = Inner(a, b)
	assert.ErrorIs(t, err, ErrNoKeys)
}
