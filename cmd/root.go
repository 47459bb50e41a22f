package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/maslow-cli/internal/config"
	"github.com/KaramelBytes/maslow-cli/internal/logger"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagDataDir   string
	flagLogFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
	log = logger.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "maslow",
	Short: "Maslow CLI: test the needs hierarchy against national indicators",
	Long: `Maslow joins socioeconomic indicators (hunger, peace, marriage, happiness,
freedom, innovation) pairwise by country and year, buckets the lower-level
indicator and charts how the higher-level one responds.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.maslow/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory holding the indicator files (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: console|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to defaults through ensureConfig
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("data-dir") && flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if f.Changed("log-format") && flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	log = logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Out: rootCmd.ErrOrStderr()})
}

// ensureConfig returns the loaded configuration, loading it on demand.
func ensureConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}
