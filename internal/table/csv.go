package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// CSVOptions controls how delimited text is read.
type CSVOptions struct {
	// Delimiter for fields. If 0, inferred from the file name (".tsv" = tab).
	Delimiter rune
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
}

// ReadCSVFile opens path and reads it as a delimited table named after the file.
func ReadCSVFile(path string, opt CSVOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	br := bufio.NewReader(f)
	if opt.Delimiter == 0 {
		head, _ := br.Peek(sniffBytes)
		opt.Delimiter = SniffDelimiter(path, head)
	}
	return ReadCSV(br, filepath.Base(path), opt)
}

// ReadCSV reads a header row followed by data rows. Short rows are padded to
// the header width; a UTF-8 BOM on the first header cell is stripped.
func ReadCSV(r io.Reader, name string, opt CSVOptions) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}
	// With a white-space delimiter the reader would fold runs of delimiters
	// into one and shift every cell after an empty one.
	cr.TrimLeadingSpace = !unicode.IsSpace(cr.Comma)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return New(name), nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		cols[i] = strings.TrimSpace(h)
	}
	t := New(name, cols...)
	line := 1
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line+1, err)
		}
		line++
		if opt.MaxRows > 0 && t.Len() >= opt.MaxRows {
			break
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		t.Append(rec...)
	}
	return t, nil
}

const sniffBytes = 4096

// SniffDelimiter picks tab for ".tsv"/".tab" names, and otherwise for content
// whose first line holds more tabs than commas. Some published ".csv" files
// are tab-separated.
func SniffDelimiter(path string, head []byte) rune {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".tab") {
		return '\t'
	}
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	if bytes.Count(head, []byte{'\t'}) > bytes.Count(head, []byte{','}) {
		return '\t'
	}
	return ','
}

// WriteCSV writes the header and rows as comma-separated values.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}
