package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override (APIDOC_OUTPUT, APIDOC_LOG_LEVEL, ...).
const EnvPrefix = "APIDOC"

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (APIDOC_*)
// 2. Config file (explicitPath, or .apidoc/config.yaml under rootDir)
// 3. Default values
//
// A missing default config file is not an error; a missing explicit one is.
func Load(rootDir, explicitPath string) (*Config, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}

	v := viper.New()
	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(absRoot, ConfigDir))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., APIDOC_FORMAT_ENGINE)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnv(v)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicitPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.BaseDir = absRoot

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ConfigFileUsed reports the config file Load would read under rootDir, or ""
// when there is none.
func ConfigFileUsed(rootDir string) string {
	for _, name := range []string{"config.yaml", "config.yml"} {
		path := filepath.Join(rootDir, ConfigDir, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"root",
		"include",
		"exclude",
		"module_prefix",
		"output",
		"workers",
		"format.engine",
		"format.prettier_bin",
		"format.print_width",
		"format.use_tabs",
		"format.tab_width",
		"format.single_quote",
		"format.trailing_comma",
		"format.cache_size",
		"format.timeout_ms",
		"log.level",
		"log.format",
		"watch.debounce_ms",
		"mcp.log_file",
	} {
		v.BindEnv(key)
	}
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("version", defaults.Version)
	v.SetDefault("root", defaults.Root)
	v.SetDefault("include", defaults.Include)
	v.SetDefault("exclude", defaults.Exclude)
	v.SetDefault("module_prefix", defaults.ModulePrefix)
	v.SetDefault("output", defaults.Output)
	v.SetDefault("workers", defaults.Workers)

	v.SetDefault("format.engine", defaults.Format.Engine)
	v.SetDefault("format.prettier_bin", defaults.Format.PrettierBin)
	v.SetDefault("format.print_width", defaults.Format.PrintWidth)
	v.SetDefault("format.use_tabs", defaults.Format.UseTabs)
	v.SetDefault("format.tab_width", defaults.Format.TabWidth)
	v.SetDefault("format.single_quote", defaults.Format.SingleQuote)
	v.SetDefault("format.trailing_comma", defaults.Format.TrailingComma)
	v.SetDefault("format.cache_size", defaults.Format.CacheSize)
	v.SetDefault("format.timeout_ms", defaults.Format.TimeoutMS)

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)

	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMS)
	v.SetDefault("mcp.log_file", defaults.MCP.LogFile)
}
