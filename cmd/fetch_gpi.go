package cmd

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/maslow-cli/internal/gpi"
	"github.com/spf13/cobra"
)

var (
	gpiURL string
	gpiOut string
)

var fetchGPICmd = &cobra.Command{
	Use:   "fetch-gpi",
	Short: "Download the Global Peace Index table and save it as gpi.csv",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		url := c.GPIURL
		if gpiURL != "" {
			url = gpiURL
		}
		out := gpiOut
		if out == "" {
			out = filepath.Join(c.DataDir, "gpi.csv")
		}
		ctx := cmd.Context()
		if c.HTTPTimeoutSec > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(c.HTTPTimeoutSec)*time.Second)
			defer cancel()
		}
		log.WithField("url", url).Info("fetching peace index")
		t, err := gpi.Fetch(ctx, &http.Client{}, url)
		if err != nil {
			return fmt.Errorf("fetch gpi: %w", err)
		}
		if err := gpi.WriteCSV(out, t); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %d countries x %d years to %s\n", t.Len(), len(t.Columns)-1, out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchGPICmd)
	fetchGPICmd.Flags().StringVar(&gpiURL, "url", "", "page to scrape (overrides config gpi_url)")
	fetchGPICmd.Flags().StringVarP(&gpiOut, "out", "o", "", "output CSV (default <data_dir>/gpi.csv)")
}
