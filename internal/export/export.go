// Package export writes analysis results as CSV, XLSX and JSON files.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/maslow-cli/internal/analysis"
	"github.com/KaramelBytes/maslow-cli/internal/utils"
)

// Format is an output file format.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
	JSON Format = "json"
)

// ErrUnknownFormat is returned by ParseFormats.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormats accepts names such as "csv", "xlsx" or "json", also as a
// single comma-separated entry. Duplicates are collapsed.
func ParseFormats(names []string) ([]Format, error) {
	var out []Format
	seen := map[Format]bool{}
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			f := Format(strings.ToLower(strings.TrimSpace(part)))
			if f == "" {
				continue
			}
			switch f {
			case CSV, XLSX, JSON:
			default:
				return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, part)
			}
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out, nil
}

// Write exports r into dir in every requested format and returns the paths written.
func Write(dir string, r *analysis.Result, formats []Format) ([]string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	base := filepath.Join(dir, utils.SafeFileName(r.Pair.Name))
	var written []string
	for _, f := range formats {
		switch f {
		case CSV:
			for _, out := range []struct {
				suffix string
				fn     func(io.Writer, *analysis.Result) error
			}{
				{"_observations.csv", WriteObservationsCSV},
				{"_buckets.csv", WriteBucketsCSV},
			} {
				if out.suffix == "_buckets.csv" && r.Pair.Buckets == nil {
					continue
				}
				var buf bytes.Buffer
				if err := out.fn(&buf, r); err != nil {
					return written, err
				}
				p := base + out.suffix
				if err := utils.SafeWriteFile(p, buf.Bytes()); err != nil {
					return written, err
				}
				written = append(written, p)
			}
		case XLSX:
			p := base + ".xlsx"
			if err := WriteXLSX(p, r); err != nil {
				return written, err
			}
			written = append(written, p)
		case JSON:
			p := base + ".json"
			b, err := utils.PrettyJSON(NewDocument(r))
			if err != nil {
				return written, err
			}
			if err := utils.SafeWriteFile(p, b); err != nil {
				return written, err
			}
			written = append(written, p)
		default:
			return written, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
		}
	}
	return written, nil
}

// WriteObservationsCSV writes year,country,x,y for every cleaned pair.
func WriteObservationsCSV(w io.Writer, r *analysis.Result) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"year", "country", "x", "y"})
	for _, y := range r.Years {
		year := strconv.Itoa(y.Year)
		for _, p := range y.Pairs {
			_ = cw.Write([]string{year, p.Country, num(p.X), num(p.Y)})
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBucketsCSV writes year,bucket,low,high,mean,count. Undefined means
// and the open upper edge of an overflow bucket are written as empty cells.
func WriteBucketsCSV(w io.Writer, r *analysis.Result) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"year", "bucket", "low", "high", "mean", "count"})
	for _, y := range r.Years {
		year := strconv.Itoa(y.Year)
		for _, b := range y.Buckets {
			_ = cw.Write([]string{year, b.Label, num(b.Low), num(b.High), num(b.Mean), strconv.Itoa(b.Count)})
		}
	}
	cw.Flush()
	return cw.Error()
}

func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
