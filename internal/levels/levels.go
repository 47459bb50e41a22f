// Package levels holds the table of indicator pairs analyzed against each other.
package levels

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/maslow-cli/internal/bucket"
	"github.com/KaramelBytes/maslow-cli/internal/dataset"
)

var (
	ErrUnknownPair = errors.New("unknown pair")
	ErrInvalidPair = errors.New("invalid pair")
)

// Pair is one (lower level, higher level) analysis. X comes from Lower,
// Y from Higher.
type Pair struct {
	Name    string            `yaml:"name" json:"name"`
	Lower   dataset.Indicator `yaml:"lower" json:"lower"`
	Higher  dataset.Indicator `yaml:"higher" json:"higher"`
	From    int               `yaml:"from" json:"from"`
	To      int               `yaml:"to" json:"to"`
	Buckets *bucket.Spec      `yaml:"buckets,omitempty" json:"buckets,omitempty"`
	// InvertX and InvertY flip an axis where a higher score means a worse outcome.
	InvertX bool `yaml:"invert_x,omitempty" json:"invert_x,omitempty"`
	InvertY bool `yaml:"invert_y,omitempty" json:"invert_y,omitempty"`
}

// Years returns From..To inclusive.
func (p Pair) Years() []int {
	if p.To < p.From {
		return nil
	}
	out := make([]int, 0, p.To-p.From+1)
	for y := p.From; y <= p.To; y++ {
		out = append(out, y)
	}
	return out
}

// Title is used for plot and report headings.
func (p Pair) Title() string {
	return fmt.Sprintf("%s: %s (%s) vs %s (%s)", p.Name,
		p.Lower.Title(), p.Lower.Level(), p.Higher.Title(), p.Higher.Level())
}

// Validate checks indicator names, the year range and the bucket spec.
func (p Pair) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidPair)
	}
	for _, ind := range []dataset.Indicator{p.Lower, p.Higher} {
		if !ind.Valid() {
			return fmt.Errorf("%w %s: %w: %q", ErrInvalidPair, p.Name, dataset.ErrUnknownIndicator, ind)
		}
	}
	if p.Lower == p.Higher {
		return fmt.Errorf("%w %s: lower and higher are both %s", ErrInvalidPair, p.Name, p.Lower)
	}
	if p.From <= 0 || p.To < p.From {
		return fmt.Errorf("%w %s: year range %d-%d", ErrInvalidPair, p.Name, p.From, p.To)
	}
	if p.Buckets != nil {
		if err := p.Buckets.Validate(); err != nil {
			return fmt.Errorf("%w %s: %w", ErrInvalidPair, p.Name, err)
		}
	}
	return nil
}

func spec(start, end float64, count int, overflow bool) *bucket.Spec {
	return &bucket.Spec{Start: start, End: end, Count: count, Overflow: overflow}
}

// Defaults returns the built-in pairs.
func Defaults() []Pair {
	return []Pair{
		{Name: "1-2", Lower: dataset.Hunger, Higher: dataset.Peace, From: 2010, To: 2016,
			Buckets: spec(0, 50, 10, false), InvertX: true, InvertY: true},
		{Name: "1-4", Lower: dataset.Hunger, Higher: dataset.Freedom, From: 2010, To: 2016,
			Buckets: spec(0, 50, 10, false), InvertX: true},
		{Name: "1-5", Lower: dataset.Hunger, Higher: dataset.Innovation, From: 2013, To: 2016,
			Buckets: spec(0, 50, 10, false), InvertX: true},
		{Name: "2-3", Lower: dataset.Peace, Higher: dataset.Marriage, From: 2010, To: 2017,
			InvertX: true},
		{Name: "2-3h", Lower: dataset.Peace, Higher: dataset.Happiness, From: 2015, To: 2017,
			Buckets: spec(1, 3.5, 10, true), InvertX: true},
		{Name: "2-4", Lower: dataset.Peace, Higher: dataset.Freedom, From: 2010, To: 2015,
			Buckets: spec(1, 3, 8, true), InvertX: true},
		{Name: "3-4", Lower: dataset.Happiness, Higher: dataset.Freedom, From: 2015, To: 2016,
			Buckets: spec(2.5, 7, 9, true)},
		{Name: "4-5", Lower: dataset.Freedom, Higher: dataset.Innovation, From: 2013, To: 2016,
			Buckets: spec(4.5, 9, 9, false)},
	}
}

type file struct {
	Pairs []Pair `yaml:"pairs"`
}

// Load reads a YAML pairs file. The file replaces the defaults entirely.
func Load(path string) ([]Pair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pairs file: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse pairs file: %w", err)
	}
	if len(f.Pairs) == 0 {
		return nil, fmt.Errorf("%w: %s defines no pairs", ErrInvalidPair, path)
	}
	seen := map[string]bool{}
	for _, p := range f.Pairs {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("%w: duplicate name %s", ErrInvalidPair, p.Name)
		}
		seen[p.Name] = true
	}
	return f.Pairs, nil
}

// Select returns the named pairs in the order given, or all of them when
// names is empty.
func Select(all []Pair, names []string) ([]Pair, error) {
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]Pair, len(all))
	for _, p := range all {
		byName[p.Name] = p
	}
	out := make([]Pair, 0, len(names))
	for _, n := range names {
		p, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPair, n)
		}
		out = append(out, p)
	}
	return out, nil
}
