package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/maslow-cli/internal/config"
	"github.com/KaramelBytes/maslow-cli/internal/export"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Maslow configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "data_dir: %s\n", cfg.DataDir)
		fmt.Fprintf(out, "output_dir: %s\n", cfg.OutputDir)
		if cfg.PairsFile != "" {
			fmt.Fprintf(out, "pairs_file: %s\n", cfg.PairsFile)
		}
		fmt.Fprintf(out, "workers: %d\n", cfg.Workers)
		fmt.Fprintf(out, "plots: %t\n", cfg.Plots)
		fmt.Fprintf(out, "export_formats: %s\n", strings.Join(cfg.ExportFormats, ","))
		fmt.Fprintf(out, "plot_width_in: %.2f\n", cfg.PlotWidthIn)
		fmt.Fprintf(out, "plot_height_in: %.2f\n", cfg.PlotHeightIn)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		fmt.Fprintf(out, "gpi_url: %s\n", cfg.GPIURL)
		fmt.Fprintf(out, "http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		for _, a := range cfg.CountryAliases {
			fmt.Fprintf(out, "country_alias: %s -> %s\n", a.From, a.To)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		switch key {
		case "data_dir":
			c.DataDir = val
		case "output_dir":
			c.OutputDir = val
		case "pairs_file":
			c.PairsFile = val
		case "workers":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for workers: %v", val)
			}
			c.Workers = i
		case "plots":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for plots: %w", err)
			}
			c.Plots = b
		case "export_formats":
			names := strings.Split(val, ",")
			if _, err := export.ParseFormats(names); err != nil {
				return err
			}
			c.ExportFormats = names
		case "plot_width_in", "plot_height_in":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid float for %s: %v", key, val)
			}
			if key == "plot_width_in" {
				c.PlotWidthIn = f
			} else {
				c.PlotHeightIn = f
			}
		case "log_level":
			switch strings.ToLower(val) {
			case "debug", "info", "warn", "warning", "error":
				c.LogLevel = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
			}
		case "log_format":
			switch val {
			case "console", "json":
				c.LogFormat = val
			default:
				return fmt.Errorf("invalid log_format: %s (use console or json)", val)
			}
		case "gpi_url":
			c.GPIURL = val
		case "http_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for http_timeout_sec: %v", val)
			}
			c.HTTPTimeoutSec = i
		case "country_alias":
			from, to, ok := strings.Cut(val, "=")
			if !ok || strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
				return fmt.Errorf("invalid country_alias: %q (use \"Source Name=Joined Name\")", val)
			}
			c.CountryAliases = append(c.CountryAliases, cfgpkg.Alias{From: strings.TrimSpace(from), To: strings.TrimSpace(to)})
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
