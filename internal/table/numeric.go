package table

import (
	"math"
	"strconv"
	"strings"
)

// NumberFormat selects the separators used when parsing numeric cells.
// A zero separator means auto-detect per value.
type NumberFormat struct {
	DecimalSeparator   rune
	ThousandsSeparator rune
}

var undefinedTokens = map[string]struct{}{
	"":    {},
	"..":  {},
	"-":   {},
	"na":  {},
	"n/a": {},
	"nan": {},
}

// IsUndefined reports whether a raw cell is one of the placeholder tokens the
// statistical sources use for "no data".
func IsUndefined(s string) bool {
	_, ok := undefinedTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// ParseNumber parses a locale-formatted number. A trailing or embedded '%' is
// dropped. The boolean is false for undefined, malformed or infinite cells.
func ParseNumber(s string, nf NumberFormat) (float64, bool) {
	if IsUndefined(s) {
		return 0, false
	}
	raw := strings.TrimSpace(s)
	if strings.Contains(raw, "%") {
		raw = strings.ReplaceAll(raw, "%", "")
	}
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := nf.DecimalSeparator
	thou := nf.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0:
			// "1,000" and "1,234,567" group thousands; "38,0" is a decimal.
			if strings.Count(raw, ",") == 1 && !isThousandsGroup(raw[cpos+1:]) {
				dec = ','
			} else {
				dec, thou = '.', ','
			}
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func isThousandsGroup(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
