package cmd

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/maslow-cli/internal/analysis"
	"github.com/KaramelBytes/maslow-cli/internal/bucket"
	"github.com/KaramelBytes/maslow-cli/internal/country"
	"github.com/KaramelBytes/maslow-cli/internal/join"
	"github.com/KaramelBytes/maslow-cli/internal/table"
	"github.com/KaramelBytes/maslow-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	joinKeys     []string
	joinOut      string
	joinX        string
	joinY        string
	joinStart    float64
	joinEnd      float64
	joinBuckets  int
	joinOverflow bool
)

var joinCmd = &cobra.Command{
	Use:   "join <left.csv> <right.csv>",
	Short: "Inner-join two CSV/TSV files and optionally bucket one column against another",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(joinKeys) == 0 {
			return join.ErrNoKeys
		}
		left, err := readKeyed(args[0], joinKeys)
		if err != nil {
			return err
		}
		right, err := readKeyed(args[1], joinKeys)
		if err != nil {
			return err
		}
		joined, st, err := join.Inner(left, right, joinKeys...)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Joined %d rows (left %d, right %d, duplicates removed %d)\n",
			st.Rows(), st.LeftRows, st.RightRows, st.Duplicates)
		if len(st.LeftOnly) > 0 {
			fmt.Fprintf(out, "⚠ Only in %s (%d): %s\n", left.Name, len(st.LeftOnly), strings.Join(st.LeftOnly, "; "))
		}
		if len(st.RightOnly) > 0 {
			fmt.Fprintf(out, "⚠ Only in %s (%d): %s\n", right.Name, len(st.RightOnly), strings.Join(st.RightOnly, "; "))
		}
		if joinOut != "" {
			var buf bytes.Buffer
			if err := joined.WriteCSV(&buf); err != nil {
				return err
			}
			if err := utils.SafeWriteFile(joinOut, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintf(out, "Saved %s\n", joinOut)
		}
		if joinX == "" && joinY == "" {
			return nil
		}
		if joinX == "" || joinY == "" {
			return fmt.Errorf("--x and --y must be given together")
		}
		return printAggregate(cmd, joined)
	},
}

// readKeyed reads a delimited file and normalizes its key cells.
func readKeyed(path string, keys []string) (*table.Table, error) {
	t, err := table.ReadCSVFile(path, table.CSVOptions{})
	if err != nil {
		return nil, err
	}
	if err := t.Require(keys...); err != nil {
		return nil, err
	}
	for _, k := range keys {
		ci := t.Index(k)
		// Inner matches key columns by exact name.
		t.Columns[ci] = k
		for _, row := range t.Rows {
			if ci < len(row) {
				row[ci] = country.Normalize(row[ci])
			}
		}
	}
	return t, nil
}

func printAggregate(cmd *cobra.Command, joined *table.Table) error {
	if err := joined.Require(joinX, joinY); err != nil {
		return err
	}
	xi, yi := joined.Index(joinX), joined.Index(joinY)
	ki := make([]int, len(joinKeys))
	for i, k := range joinKeys {
		ki[i] = joined.Index(k)
	}
	raw := make([]bucket.Pair, 0, joined.Len())
	for r := range joined.Rows {
		parts := make([]string, len(ki))
		for i, c := range ki {
			parts[i] = joined.Value(r, c)
		}
		raw = append(raw, bucket.Pair{
			Country: strings.Join(parts, " | "),
			X:       joined.Float(r, xi),
			Y:       joined.Float(r, yi),
		})
	}
	kept, dropped := bucket.Clean(raw)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Observations: %d (dropped %d with a missing value)\n", len(kept), dropped)
	corr := analysis.Correlate(kept)
	fmt.Fprintf(out, "Correlation: r=%s p=%s n=%d\n", fmtNum(corr.R), fmtNum(corr.P), corr.N)
	if joinBuckets == 0 {
		return nil
	}
	spec := bucket.Spec{Start: joinStart, End: joinEnd, Count: joinBuckets, Overflow: joinOverflow}
	buckets, err := bucket.Aggregate(kept, spec)
	if err != nil {
		return err
	}
	for _, b := range buckets {
		fmt.Fprintf(out, "- %s: mean=%s count=%d\n", b.Label, fmtNum(b.Mean), b.Count)
	}
	return nil
}

func fmtNum(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.4g", v)
}

func init() {
	rootCmd.AddCommand(joinCmd)
	joinCmd.Flags().StringSliceVarP(&joinKeys, "key", "k", []string{"Country"}, "join key column (repeatable)")
	joinCmd.Flags().StringVarP(&joinOut, "out", "o", "", "write the joined table as CSV")
	joinCmd.Flags().StringVar(&joinX, "x", "", "independent column to bucket")
	joinCmd.Flags().StringVar(&joinY, "y", "", "dependent column averaged per bucket")
	joinCmd.Flags().Float64Var(&joinStart, "start", 0, "first bucket edge")
	joinCmd.Flags().Float64Var(&joinEnd, "end", 0, "last bucket edge")
	joinCmd.Flags().IntVar(&joinBuckets, "buckets", 0, "number of buckets (0 prints correlation only)")
	joinCmd.Flags().BoolVar(&joinOverflow, "overflow", false, "add an open-ended bucket from --end upward")
}
