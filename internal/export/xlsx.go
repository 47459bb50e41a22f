package export

import (
	"fmt"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/maslow-cli/internal/analysis"
)

const summarySheet = "summary"

// WriteXLSX writes a workbook with a summary sheet and one sheet per year.
// Year sheets hold the observations and, when bucketed, the bucket table to
// their right.
func WriteXLSX(path string, r *analysis.Result) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	rows := [][]any{{"year", "rows", "left_only", "right_only", "dropped", "r", "p", "n"}}
	for _, y := range r.Years {
		rows = append(rows, []any{y.Year, y.Join.Rows(), len(y.Join.LeftOnly), len(y.Join.RightOnly),
			y.Dropped, cell(y.Corr.R), cell(y.Corr.P), y.Corr.N})
	}
	if err := writeRows(f, summarySheet, 1, rows); err != nil {
		return err
	}

	for _, y := range r.Years {
		sheet := strconv.Itoa(y.Year)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
		obs := [][]any{{"country", string(r.Pair.Lower), string(r.Pair.Higher)}}
		for _, p := range y.Pairs {
			obs = append(obs, []any{p.Country, p.X, p.Y})
		}
		if err := writeRows(f, sheet, 1, obs); err != nil {
			return err
		}
		if len(y.Buckets) == 0 {
			continue
		}
		bk := [][]any{{"bucket", "low", "high", "mean", "count"}}
		for _, b := range y.Buckets {
			bk = append(bk, []any{b.Label, cell(b.Low), cell(b.High), cell(b.Mean), b.Count})
		}
		if err := writeRows(f, sheet, 5, bk); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, col int, rows [][]any) error {
	for i := range rows {
		addr, err := excelize.CoordinatesToCellName(col, i+1)
		if err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
		if err := f.SetSheetRow(sheet, addr, &rows[i]); err != nil {
			return fmt.Errorf("xlsx %s!%s: %w", sheet, addr, err)
		}
	}
	return nil
}

// cell leaves undefined numbers blank.
func cell(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
