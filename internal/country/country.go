// Package country normalizes country-name keys before tables are joined.
//
// Normalization is deliberately exact: it never guesses that two spellings
// name the same country. Sources that disagree ("United States" vs
// "United States of America") stay unmatched unless an explicit Aliases
// entry maps one onto the other.
package country

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns the canonical key for a raw country cell: NFC form,
// trimmed, with internal whitespace runs collapsed to a single space.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Aliases maps normalized source spellings to the spelling used for joins.
type Aliases map[string]string

// NewAliases normalizes both sides of a raw mapping, typically read from config.
func NewAliases(raw map[string]string) Aliases {
	if len(raw) == 0 {
		return nil
	}
	a := make(Aliases, len(raw))
	for from, to := range raw {
		a[Normalize(from)] = Normalize(to)
	}
	return a
}

// Resolve returns the joined spelling for name, which must already be normalized.
func (a Aliases) Resolve(name string) string {
	if to, ok := a[name]; ok {
		return to
	}
	return name
}
