package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/maslow-cli/internal/country"
	"github.com/KaramelBytes/maslow-cli/internal/dataset"
)

const dirName = ".maslow"

// Alias renames a country key before joining. Aliases are a list rather
// than a map because viper lowercases map keys.
type Alias struct {
	From string `mapstructure:"from" yaml:"from"`
	To   string `mapstructure:"to" yaml:"to"`
}

// Global configuration structure.
type Global struct {
	DataDir       string   `mapstructure:"data_dir" yaml:"data_dir"`
	OutputDir     string   `mapstructure:"output_dir" yaml:"output_dir"`
	PairsFile     string   `mapstructure:"pairs_file" yaml:"pairs_file,omitempty"`
	Workers       int      `mapstructure:"workers" yaml:"workers"`
	Plots         bool     `mapstructure:"plots" yaml:"plots"`
	ExportFormats []string `mapstructure:"export_formats" yaml:"export_formats"`
	PlotWidthIn   float64  `mapstructure:"plot_width_in" yaml:"plot_width_in"`
	PlotHeightIn  float64  `mapstructure:"plot_height_in" yaml:"plot_height_in"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// GPI fetch
	GPIURL         string `mapstructure:"gpi_url" yaml:"gpi_url"`
	HTTPTimeoutSec int    `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`

	CountryAliases []Alias `mapstructure:"country_aliases" yaml:"country_aliases,omitempty"`
	// Per-indicator source overrides, keyed by indicator name.
	Sources map[string]dataset.Source `mapstructure:"sources" yaml:"sources,omitempty"`
}

// Aliases returns the normalized alias table.
func (c *Global) Aliases() country.Aliases {
	raw := make(map[string]string, len(c.CountryAliases))
	for _, a := range c.CountryAliases {
		if a.From != "" && a.To != "" {
			raw[a.From] = a.To
		}
	}
	return country.NewAliases(raw)
}

// SourceOptions converts the source overrides for dataset.Load.
func (c *Global) SourceOptions() (dataset.Options, error) {
	opt := dataset.Options{}
	for name, src := range c.Sources {
		ind, err := dataset.ParseIndicator(name)
		if err != nil {
			return opt, fmt.Errorf("config sources: %w", err)
		}
		if opt.Sources == nil {
			opt.Sources = map[dataset.Indicator]dataset.Source{}
		}
		opt.Sources[ind] = src
	}
	return opt, nil
}

func homeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.maslow/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := homeDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
// A .env file in the working directory is loaded into the environment first;
// variables already set win over it.
func Load(cfgFile string) (*Global, error) {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}

	v := viper.New()
	v.SetEnvPrefix("MASLOW")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data_dir", "data")
	v.SetDefault("output_dir", "out")
	v.SetDefault("pairs_file", "")
	v.SetDefault("workers", 1)
	v.SetDefault("plots", true)
	v.SetDefault("export_formats", []string{"csv"})
	v.SetDefault("plot_width_in", 12.0)
	v.SetDefault("plot_height_in", 6.0)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("gpi_url", "https://en.wikipedia.org/wiki/Global_Peace_Index")
	v.SetDefault("http_timeout_sec", 30)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := homeDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// Only a missing default file is tolerated; an explicit --config path
	// that does not exist fails with a path error instead.
	if err := v.ReadInConfig(); err != nil {
		if _, missing := err.(viper.ConfigFileNotFoundError); !missing {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	return &c, nil
}
