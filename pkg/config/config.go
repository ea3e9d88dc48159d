// Package config loads and writes the apidoc project configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gnana997/apidoc/pkg/format"
	"github.com/gnana997/apidoc/pkg/util"
)

// ConfigDir is the project directory holding config.yaml.
const ConfigDir = ".apidoc"

// Config represents the complete apidoc configuration.
// It can be loaded from .apidoc/config.yaml with environment variable overrides.
type Config struct {
	Version string `yaml:"version" mapstructure:"version"`

	// Root is the directory scanned for declaration sources, relative to the
	// project directory.
	Root    string   `yaml:"root" mapstructure:"root"`
	Include []string `yaml:"include" mapstructure:"include"` // doublestar globs, relative to Root
	Exclude []string `yaml:"exclude" mapstructure:"exclude"` // doublestar globs, relative to Root

	// ModulePrefix is joined in front of every derived module name
	// (e.g. "svelte" turns "store" into "svelte/store").
	ModulePrefix string `yaml:"module_prefix" mapstructure:"module_prefix"`

	// Output is the artifact path; its extension selects JSON or a generated
	// JS/TS module.
	Output string `yaml:"output" mapstructure:"output"`

	// Workers bounds parallel extraction; 0 sizes by CPU count.
	Workers int `yaml:"workers" mapstructure:"workers"`

	Format  FormatConfig   `yaml:"format" mapstructure:"format"`
	Modules []ModuleConfig `yaml:"modules,omitempty" mapstructure:"modules"`
	Log     LogConfig      `yaml:"log" mapstructure:"log"`
	Watch   WatchConfig    `yaml:"watch" mapstructure:"watch"`
	MCP     MCPConfig      `yaml:"mcp" mapstructure:"mcp"`

	// BaseDir is the project directory relative paths resolve against.
	BaseDir string `yaml:"-" mapstructure:"-"`
}

// FormatConfig configures snippet formatting.
type FormatConfig struct {
	Engine        string `yaml:"engine" mapstructure:"engine"` // "builtin" or "prettier"
	PrettierBin   string `yaml:"prettier_bin,omitempty" mapstructure:"prettier_bin"`
	PrintWidth    int    `yaml:"print_width" mapstructure:"print_width"`
	UseTabs       bool   `yaml:"use_tabs" mapstructure:"use_tabs"`
	TabWidth      int    `yaml:"tab_width" mapstructure:"tab_width"`
	SingleQuote   bool   `yaml:"single_quote" mapstructure:"single_quote"`
	TrailingComma string `yaml:"trailing_comma" mapstructure:"trailing_comma"` // "none", "es5" or "all"
	CacheSize     int    `yaml:"cache_size" mapstructure:"cache_size"`
	TimeoutMS     int    `yaml:"timeout_ms" mapstructure:"timeout_ms"`
}

// ModuleConfig overrides the record of one module.
//
// Comment (or the contents of CommentFile) replaces the module-level doc block
// of the source. An Exempt module is emitted as given, without extraction.
type ModuleConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Comment     string `yaml:"comment,omitempty" mapstructure:"comment"`
	CommentFile string `yaml:"comment_file,omitempty" mapstructure:"comment_file"`
	Exempt      bool   `yaml:"exempt,omitempty" mapstructure:"exempt"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text or json
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// MCPConfig configures the MCP server.
type MCPConfig struct {
	// LogFile enables JSONL logging of tool calls when set.
	LogFile string `yaml:"log_file,omitempty" mapstructure:"log_file"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	opts := format.DefaultOptions()
	settings := format.DefaultSettings()

	return &Config{
		Version: "1",
		Root:    ".",
		Include: []string{"**/*.d.ts"},
		Exclude: []string{
			"**/node_modules/**",
			"**/.git/**",
		},
		Output: "docs/api.json",
		Format: FormatConfig{
			Engine:        settings.Engine,
			PrintWidth:    opts.PrintWidth,
			UseTabs:       opts.UseTabs,
			TabWidth:      opts.TabWidth,
			SingleQuote:   opts.SingleQuote,
			TrailingComma: opts.TrailingComma,
			CacheSize:     settings.CacheSize,
			TimeoutMS:     int(settings.Timeout / time.Millisecond),
		},
		Log: LogConfig{
			Level:  string(util.LevelInfo),
			Format: string(util.FormatText),
		},
		Watch: WatchConfig{
			DebounceMS: 200,
		},
	}
}

// SourceRoot returns the absolute directory scanned for sources.
func (c *Config) SourceRoot() string {
	return c.resolve(c.Root)
}

// OutputPath returns the absolute artifact path.
func (c *Config) OutputPath() string {
	return c.resolve(c.Output)
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// FormatSettings converts the format section for format.New.
func (c *Config) FormatSettings() format.Settings {
	return format.Settings{
		Engine:      c.Format.Engine,
		PrettierBin: c.Format.PrettierBin,
		CacheSize:   c.Format.CacheSize,
		Timeout:     time.Duration(c.Format.TimeoutMS) * time.Millisecond,
		Options: format.Options{
			PrintWidth:    c.Format.PrintWidth,
			UseTabs:       c.Format.UseTabs,
			TabWidth:      c.Format.TabWidth,
			SingleQuote:   c.Format.SingleQuote,
			TrailingComma: c.Format.TrailingComma,
		},
	}
}

// LoggerConfig converts the log section for util.NewLogger. Values are
// expected to have passed Validate.
func (c *Config) LoggerConfig() util.LoggerConfig {
	lc := util.DefaultLoggerConfig()
	if level, err := util.ParseLogLevel(c.Log.Level); err == nil {
		lc.Level = level
	}
	if f, err := util.ParseLogFormat(c.Log.Format); err == nil {
		lc.Format = f
	}
	return lc
}

// Debounce returns the watch debounce interval.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// ModuleOverride returns the override configured for a module name.
func (c *Config) ModuleOverride(name string) (ModuleConfig, bool) {
	for _, m := range c.Modules {
		if m.Name == name {
			return m, true
		}
	}
	return ModuleConfig{}, false
}

// ResolveComment returns the configured comment, reading CommentFile
// relative to baseDir when set.
func (m ModuleConfig) ResolveComment(baseDir string) (string, error) {
	if m.CommentFile == "" {
		return m.Comment, nil
	}
	path := m.CommentFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("module %q: failed to read comment file: %w", m.Name, err)
	}
	return strings.TrimSpace(string(data)), nil
}
