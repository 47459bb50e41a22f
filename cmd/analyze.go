package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/maslow-cli/internal/analysis"
	"github.com/KaramelBytes/maslow-cli/internal/dataset"
	"github.com/KaramelBytes/maslow-cli/internal/export"
	"github.com/KaramelBytes/maslow-cli/internal/levels"
	"github.com/KaramelBytes/maslow-cli/internal/render"
	"github.com/KaramelBytes/maslow-cli/internal/run"
	"github.com/spf13/cobra"
)

var (
	anaOutDir    string
	anaWorkers   int
	anaNoPlots   bool
	anaFormats   []string
	anaPairsFile string
	anaReport    bool
	anaFailFast  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [pair...]",
	Short: "Run level-pair analyses and write exports, plots and a run manifest",
	Long: `Runs the named level pairs (all of them when none are given). For every pair
the two indicator panels are joined on country per year, rows with a missing
value are dropped and the lower-level indicator is bucketed. Results are
exported, charted and listed in run.json under the output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		pairsFile := anaPairsFile
		if pairsFile == "" {
			pairsFile = c.PairsFile
		}
		all, err := loadPairs(pairsFile)
		if err != nil {
			return err
		}
		pairs, err := levels.Select(all, args)
		if err != nil {
			return err
		}
		formatNames := c.ExportFormats
		if cmd.Flags().Changed("format") {
			formatNames = anaFormats
		}
		formats, err := export.ParseFormats(formatNames)
		if err != nil {
			return err
		}
		srcOpt, err := c.SourceOptions()
		if err != nil {
			return err
		}
		outDir := c.OutputDir
		if anaOutDir != "" {
			outDir = anaOutDir
		}
		workers := c.Workers
		if anaWorkers > 0 {
			workers = anaWorkers
		}
		plots := c.Plots && !anaNoPlots

		pipe := &analysis.Pipeline{
			Loader:  dataset.NewLoader(c.DataDir, srcOpt),
			Aliases: c.Aliases(),
			Logger:  log,
		}
		var (
			results []*analysis.Result
			errs    []error
		)
		if anaFailFast {
			results, err = pipe.RunAll(cmd.Context(), pairs, workers)
			if err != nil {
				return err
			}
			errs = make([]error, len(pairs))
		} else {
			results, errs = pipe.RunEach(cmd.Context(), pairs, workers)
		}

		out := cmd.OutOrStdout()
		m := run.New(outDir, c.DataDir)
		size := render.Options{WidthIn: c.PlotWidthIn, HeightIn: c.PlotHeightIn}
		failed := 0
		for i, pair := range pairs {
			r := results[i]
			if errs[i] != nil {
				failed++
				m.Fail(pair.Name, errs[i])
				fmt.Fprintf(out, "✗ %s: %v\n", pair.Name, errs[i])
				continue
			}
			files, err := export.Write(outDir, r, formats)
			if err != nil {
				return fmt.Errorf("export %s: %w", pair.Name, err)
			}
			if plots {
				drawn, err := render.Result(filepath.Join(outDir, "plots"), r, size)
				if err != nil {
					return fmt.Errorf("plot %s: %w", pair.Name, err)
				}
				files = append(files, drawn...)
			}
			m.Record(r, files)
			printSummary(cmd, r, len(files))
			if anaReport {
				fmt.Fprintln(out)
				fmt.Fprint(out, r.Markdown())
			}
		}
		if err := m.Save(); err != nil {
			return fmt.Errorf("save manifest: %w", err)
		}
		fmt.Fprintf(out, "Run %s: %d pairs, manifest %s\n", m.ID, len(pairs), m.Path())
		if failed > 0 {
			return fmt.Errorf("%d of %d pairs failed", failed, len(pairs))
		}
		return nil
	},
}

func printSummary(cmd *cobra.Command, r *analysis.Result, files int) {
	out := cmd.OutOrStdout()
	obs, lost := 0, 0
	for _, y := range r.Years {
		obs += len(y.Pairs)
		lost += y.Join.Lost()
	}
	fmt.Fprintf(out, "✓ %s: %d years, %d observations, %d files\n", r.Pair.Name, len(r.Years), obs, files)
	if len(r.Skipped) > 0 {
		ys := make([]string, len(r.Skipped))
		for i, y := range r.Skipped {
			ys[i] = fmt.Sprint(y)
		}
		fmt.Fprintf(out, "⚠ %s: skipped years %s (missing from a source)\n", r.Pair.Name, strings.Join(ys, ", "))
	}
	if lost > 0 {
		fmt.Fprintf(out, "⚠ %s: %d unmatched country keys across years (run with --debug to list them)\n", r.Pair.Name, lost)
	}
}

// loadPairs returns the built-in pairs, or the pairs defined in path.
func loadPairs(path string) ([]levels.Pair, error) {
	if path == "" {
		return levels.Defaults(), nil
	}
	return levels.Load(path)
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutDir, "out", "o", "", "output directory (overrides config output_dir)")
	analyzeCmd.Flags().IntVar(&anaWorkers, "workers", 0, "pairs analyzed concurrently (overrides config workers)")
	analyzeCmd.Flags().BoolVar(&anaNoPlots, "no-plots", false, "skip PNG charts")
	analyzeCmd.Flags().StringSliceVar(&anaFormats, "format", nil, "export formats: csv,xlsx,json (overrides config export_formats)")
	analyzeCmd.Flags().StringVar(&anaPairsFile, "pairs-file", "", "YAML file replacing the built-in pairs")
	analyzeCmd.Flags().BoolVar(&anaReport, "report", false, "print a Markdown report for each pair")
	analyzeCmd.Flags().BoolVar(&anaFailFast, "fail-fast", false, "stop at the first failing pair")
}
