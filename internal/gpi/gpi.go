// Package gpi scrapes the Global Peace Index table from Wikipedia into the
// wide peace layout: a Country column and one score_YYYY column per year.
package gpi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/KaramelBytes/maslow-cli/internal/country"
	"github.com/KaramelBytes/maslow-cli/internal/table"
	"github.com/KaramelBytes/maslow-cli/internal/utils"
)

// DefaultURL is the page the scores are read from.
const DefaultURL = "https://en.wikipedia.org/wiki/Global_Peace_Index"

// ErrNoTable is returned when the page has no table headed "Country" with year columns.
var ErrNoTable = errors.New("gpi: no country score table found")

var (
	yearRe     = regexp.MustCompile(`(?:^|\D)((?:19|20)\d{2})(?:\D|$)`)
	footnoteRe = regexp.MustCompile(`\[[^\]]*\]`)
)

// Fetch downloads url once and parses it. There are no retries; the caller
// bounds the attempt through ctx and the client timeout.
func Fetch(ctx context.Context, client *http.Client, url string) (*table.Table, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("User-Agent", "maslow-cli (+https://github.com/KaramelBytes/maslow-cli)")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	return Parse(resp.Body)
}

// Parse extracts the first sortable wikitable whose first header cell is
// "Country". Rows without a country link text or without any score are skipped.
func Parse(r io.Reader) (*table.Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	var out *table.Table
	doc.Find("table.wikitable").EachWithBreak(func(_ int, tbl *goquery.Selection) bool {
		if strings.TrimSpace(tbl.Find("th").First().Text()) != "Country" {
			return true
		}
		out = parseTable(tbl)
		return out == nil
	})
	if out == nil {
		return nil, ErrNoTable
	}
	return out, nil
}

func parseTable(tbl *goquery.Selection) *table.Table {
	var headerRows, dataRows []*goquery.Selection
	tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.Find("td").Length() == 0 {
			if len(dataRows) == 0 {
				headerRows = append(headerRows, tr)
			}
			return
		}
		dataRows = append(dataRows, tr)
	})
	header := flattenHeader(headerRows)
	if len(header) == 0 {
		return nil
	}
	countryCol := 0
	for i, h := range header {
		if h == "Country" {
			countryCol = i
			break
		}
	}
	years := yearColumns(header)
	if len(years) == 0 {
		return nil
	}
	ordered := make([]int, 0, len(years))
	for y := range years {
		ordered = append(ordered, y)
	}
	sort.Ints(ordered)

	cols := []string{"Country"}
	for _, y := range ordered {
		cols = append(cols, "score_"+strconv.Itoa(y))
	}
	out := table.New("gpi", cols...)
	for _, tr := range dataRows {
		cells := expandRow(tr)
		if countryCol >= len(cells) {
			continue
		}
		name := countryName(cells[countryCol])
		if name == "" || strings.HasPrefix(name, "[") {
			continue
		}
		row := []string{name}
		found := false
		for _, y := range ordered {
			v := ""
			if i := years[y]; i < len(cells) {
				raw := footnoteRe.ReplaceAllString(strings.TrimSpace(cells[i].Text()), "")
				if f, ok := table.ParseNumber(raw, table.NumberFormat{DecimalSeparator: '.'}); ok {
					v = strconv.FormatFloat(f, 'f', -1, 64)
					found = true
				}
			}
			row = append(row, v)
		}
		if found {
			out.Append(row...)
		}
	}
	return out
}

// flattenHeader expands colspan/rowspan over the header rows and joins the
// stacked labels of each column with a space, e.g. "2019 Score".
func flattenHeader(rows []*goquery.Selection) []string {
	var labels []string
	var pending []int // rows still covered by a rowspan, by column
	for _, tr := range rows {
		col := 0
		tr.Children().Filter("th, td").Each(func(_ int, c *goquery.Selection) {
			for col < len(pending) && pending[col] > 0 {
				pending[col]--
				col++
			}
			text := cellText(c)
			cs, rs := attrInt(c, "colspan"), attrInt(c, "rowspan")
			for k := 0; k < cs; k++ {
				for col >= len(labels) {
					labels = append(labels, "")
					pending = append(pending, 0)
				}
				labels[col] = strings.TrimSpace(labels[col] + " " + text)
				if rs > 1 {
					pending[col] = rs - 1
				}
				col++
			}
		})
	}
	return labels
}

// yearColumns maps each year to a header column. Score columns win over
// bare year columns; rank columns are ignored.
func yearColumns(header []string) map[int]int {
	hasScore := false
	for _, h := range header {
		if strings.Contains(strings.ToLower(h), "score") {
			hasScore = true
			break
		}
	}
	out := map[int]int{}
	for i, h := range header {
		lh := strings.ToLower(h)
		if strings.Contains(lh, "rank") || (hasScore && !strings.Contains(lh, "score")) {
			continue
		}
		m := yearRe.FindStringSubmatch(h)
		if m == nil {
			continue
		}
		y, _ := strconv.Atoi(m[1])
		if _, seen := out[y]; !seen {
			out[y] = i
		}
	}
	return out
}

func expandRow(tr *goquery.Selection) []*goquery.Selection {
	var out []*goquery.Selection
	tr.Children().Filter("th, td").Each(func(_ int, c *goquery.Selection) {
		for k := 0; k < attrInt(c, "colspan"); k++ {
			out = append(out, c)
		}
	})
	return out
}

func countryName(c *goquery.Selection) string {
	if a := c.Find("a").First(); a.Length() > 0 {
		if t := strings.TrimSpace(a.Text()); t != "" && !strings.HasPrefix(t, "[") {
			return country.Normalize(t)
		}
	}
	return country.Normalize(cellText(c))
}

func cellText(c *goquery.Selection) string {
	return strings.TrimSpace(footnoteRe.ReplaceAllString(c.Text(), ""))
}

func attrInt(c *goquery.Selection, name string) int {
	v, ok := c.Attr(name)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// WriteCSV stores t at path atomically.
func WriteCSV(path string, t *table.Table) error {
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}
