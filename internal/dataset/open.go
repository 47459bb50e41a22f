package dataset

import (
	"archive/zip"
	"bufio"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/maslow-cli/internal/table"
)

var yearPattern = regexp.MustCompile(`(?:^|\D)((?:19|20)\d{2})(?:\D|$)`)

// yearIn extracts a four-digit year embedded in a column, entry or sheet name.
func yearIn(s string) (int, bool) {
	m := yearPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	y, err := strconv.Atoi(m[1])
	return y, err == nil
}

// yearCell parses a year column cell such as "2014" or "2014.0".
func yearCell(s string) (int, bool) {
	f, ok := table.ParseNumber(s, table.NumberFormat{})
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// valueCell normalizes a numeric cell; undefined values become "".
func valueCell(s string) string {
	f, ok := table.ParseNumber(s, table.NumberFormat{})
	if !ok {
		return ""
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func itoa(i int) string { return strconv.Itoa(i) }

// openTables reads every table held by a file: one for CSV/TSV, one per CSV
// entry for zip archives and one per sheet for XLSX workbooks.
func openTables(p string, sheets []string) ([]*table.Table, error) {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".zip":
		return openZip(p)
	case ".xlsx", ".xlsm":
		return openWorkbook(p, sheets)
	default:
		t, err := table.ReadCSVFile(p, table.CSVOptions{})
		if err != nil {
			return nil, err
		}
		return []*table.Table{t}, nil
	}
}

func openZip(p string) ([]*table.Table, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()
	var out []*table.Table
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasPrefix(f.Name, "__MACOSX/") {
			continue
		}
		ext := strings.ToLower(path.Ext(f.Name))
		if ext != ".csv" && ext != ".tsv" && ext != ".txt" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		br := bufio.NewReader(rc)
		head, _ := br.Peek(4096)
		opt := table.CSVOptions{Delimiter: table.SniffDelimiter(f.Name, head)}
		t, err := table.ReadCSV(br, path.Base(f.Name), opt)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func openWorkbook(p string, sheets []string) ([]*table.Table, error) {
	f, err := excelize.OpenFile(p)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	names := f.GetSheetList()
	if len(sheets) > 0 {
		for _, want := range sheets {
			if idx, _ := f.GetSheetIndex(want); idx < 0 {
				return nil, fmt.Errorf("workbook %s: sheet %q not found", filepath.Base(p), want)
			}
		}
		names = sheets
	}
	var out []*table.Table
	for _, sheet := range names {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		header := make([]string, len(rows[0]))
		for i, h := range rows[0] {
			header[i] = strings.TrimSpace(h)
		}
		t := table.New(sheet, header...)
		for _, r := range rows[1:] {
			if blank(r) {
				continue
			}
			t.Append(r...)
		}
		out = append(out, t)
	}
	return out, nil
}

func blank(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
