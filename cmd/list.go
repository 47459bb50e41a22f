package cmd

import (
	"fmt"

	"github.com/KaramelBytes/maslow-cli/internal/dataset"
	"github.com/spf13/cobra"
)

var listPairsFile string

var listCmd = &cobra.Command{
	Use:       "list [indicators|pairs]",
	Short:     "List indicators or level pairs",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"indicators", "pairs"},
	RunE: func(cmd *cobra.Command, args []string) error {
		what := "pairs"
		if len(args) == 1 {
			what = args[0]
		}
		out := cmd.OutOrStdout()
		if what == "indicators" {
			for _, ind := range dataset.Indicators {
				fmt.Fprintf(out, "- %s: %s [%s] column=%s\n", ind, ind.Title(), ind.Level(), ind.Column())
			}
			return nil
		}
		pairs, err := loadPairs(listPairsFile)
		if err != nil {
			return err
		}
		for _, p := range pairs {
			buckets := "none"
			if b := p.Buckets; b != nil {
				buckets = fmt.Sprintf("%g-%g x%d", b.Start, b.End, b.Count)
				if b.Overflow {
					buckets += " +overflow"
				}
			}
			fmt.Fprintf(out, "- %s: %s -> %s, %d-%d, buckets %s\n", p.Name, p.Lower, p.Higher, p.From, p.To, buckets)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listPairsFile, "pairs-file", "", "YAML file replacing the built-in pairs")
}
