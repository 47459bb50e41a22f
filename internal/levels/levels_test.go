package levels

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/maslow-cli/internal/bucket"
	"github.com/KaramelBytes/maslow-cli/internal/dataset"
)

func TestDefaultsAreValid(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range Defaults() {
		require.NoError(t, p.Validate(), p.Name)
		assert.False(t, seen[p.Name], "duplicate %s", p.Name)
		seen[p.Name] = true
		assert.Less(t, int(p.Lower.Level()), int(p.Higher.Level()), p.Name)
	}
	assert.Len(t, seen, 8)
}

func TestYears(t *testing.T) {
	p := Pair{From: 2013, To: 2016}
	assert.Equal(t, []int{2013, 2014, 2015, 2016}, p.Years())
	assert.Nil(t, Pair{From: 2016, To: 2013}.Years())
}

func TestValidate(t *testing.T) {
	ok := Pair{Name: "x", Lower: dataset.Hunger, Higher: dataset.Peace, From: 2010, To: 2011}
	require.NoError(t, ok.Validate())

	cases := map[string]Pair{
		"no name":       {Lower: dataset.Hunger, Higher: dataset.Peace, From: 2010, To: 2011},
		"bad indicator": {Name: "x", Lower: "wealth", Higher: dataset.Peace, From: 2010, To: 2011},
		"same":          {Name: "x", Lower: dataset.Peace, Higher: dataset.Peace, From: 2010, To: 2011},
		"years":         {Name: "x", Lower: dataset.Hunger, Higher: dataset.Peace, From: 2012, To: 2011},
		"buckets": {Name: "x", Lower: dataset.Hunger, Higher: dataset.Peace, From: 2010, To: 2011,
			Buckets: &bucket.Spec{Start: 0, End: 50, Count: 0}},
	}
	for name, p := range cases {
		err := p.Validate()
		assert.ErrorIs(t, err, ErrInvalidPair, name)
	}
	err := cases["bad indicator"].Validate()
	assert.ErrorIs(t, err, dataset.ErrUnknownIndicator)
	err = cases["buckets"].Validate()
	assert.ErrorIs(t, err, bucket.ErrInvalidSpec)
}

func TestLoadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "pairs.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`pairs:
  - name: hp
    lower: hunger
    higher: peace
    from: 2010
    to: 2012
    buckets: {start: 0, end: 50, count: 5}
    invert_x: true
  - name: pm
    lower: peace
    higher: marriage
    from: 2010
    to: 2010
`), 0o644))
	pairs, err := Load(p)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, dataset.Hunger, pairs[0].Lower)
	require.NotNil(t, pairs[0].Buckets)
	assert.Equal(t, bucket.Spec{Start: 0, End: 50, Count: 5}, *pairs[0].Buckets)
	assert.True(t, pairs[0].InvertX)
	assert.Nil(t, pairs[1].Buckets)
}

func TestLoadFileRejectsDuplicatesAndEmpty(t *testing.T) {
	dir := t.TempDir()
	dup := filepath.Join(dir, "dup.yaml")
	require.NoError(t, os.WriteFile(dup, []byte(`pairs:
  - {name: a, lower: hunger, higher: peace, from: 2010, to: 2010}
  - {name: a, lower: peace, higher: freedom, from: 2010, to: 2010}
`), 0o644))
	_, err := Load(dup)
	assert.ErrorIs(t, err, ErrInvalidPair)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("pairs: []\n"), 0o644))
	_, err = Load(empty)
	assert.ErrorIs(t, err, ErrInvalidPair)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSelect(t *testing.T) {
	all := Defaults()
	got, err := Select(all, nil)
	require.NoError(t, err)
	assert.Len(t, got, len(all))

	got, err = Select(all, []string{"4-5", "1-2"})
	require.NoError(t, err)
	assert.Equal(t, "4-5", got[0].Name)
	assert.Equal(t, "1-2", got[1].Name)

	_, err = Select(all, []string{"9-9"})
	assert.ErrorIs(t, err, ErrUnknownPair)
}
