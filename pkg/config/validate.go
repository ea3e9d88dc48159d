package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/apidoc/pkg/format"
	"github.com/gnana997/apidoc/pkg/util"
)

var (
	// ErrInvalidGlob indicates a malformed include/exclude pattern
	ErrInvalidGlob = errors.New("invalid glob pattern")

	// ErrInvalidEngine indicates an unsupported formatter engine
	ErrInvalidEngine = errors.New("invalid format engine")

	// ErrInvalidOutput indicates an unsupported artifact path
	ErrInvalidOutput = errors.New("invalid output path")

	// ErrInvalidModule indicates a malformed module override
	ErrInvalidModule = errors.New("invalid module override")
)

var outputExtensions = map[string]bool{
	".json": true,
	".js":   true,
	".mjs":  true,
	".ts":   true,
}

var trailingCommas = map[string]bool{
	"":     true,
	"none": true,
	"es5":  true,
	"all":  true,
}

// Validate checks that the configuration is valid and complete.
// All problems are reported together.
func Validate(cfg *Config) error {
	var errs []error

	if len(cfg.Include) == 0 {
		errs = append(errs, fmt.Errorf("%w: include must list at least one pattern", ErrInvalidGlob))
	}
	for _, pattern := range append(append([]string{}, cfg.Include...), cfg.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidGlob, pattern))
		}
	}

	if cfg.Output == "" {
		errs = append(errs, fmt.Errorf("%w: output is required", ErrInvalidOutput))
	} else if ext := strings.ToLower(filepath.Ext(cfg.Output)); !outputExtensions[ext] {
		errs = append(errs, fmt.Errorf("%w: %q must end in .json, .js, .mjs or .ts", ErrInvalidOutput, cfg.Output))
	}

	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", cfg.Workers))
	}

	errs = append(errs, validateFormat(&cfg.Format)...)

	if _, err := util.ParseLogLevel(cfg.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if _, err := util.ParseLogFormat(cfg.Log.Format); err != nil {
		errs = append(errs, err)
	}

	if cfg.Watch.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce_ms must be >= 0, got %d", cfg.Watch.DebounceMS))
	}

	seen := make(map[string]bool, len(cfg.Modules))
	for i, m := range cfg.Modules {
		switch {
		case m.Name == "":
			errs = append(errs, fmt.Errorf("%w: modules[%d]: name is required", ErrInvalidModule, i))
		case seen[m.Name]:
			errs = append(errs, fmt.Errorf("%w: duplicate module %q", ErrInvalidModule, m.Name))
		case m.Comment != "" && m.CommentFile != "":
			errs = append(errs, fmt.Errorf("%w: module %q sets both comment and comment_file", ErrInvalidModule, m.Name))
		}
		seen[m.Name] = true
	}

	return errors.Join(errs...)
}

func validateFormat(f *FormatConfig) []error {
	var errs []error
	switch f.Engine {
	case format.EngineBuiltin, format.EnginePrettier:
	default:
		errs = append(errs, fmt.Errorf("%w: %q (must be %s or %s)", ErrInvalidEngine, f.Engine, format.EngineBuiltin, format.EnginePrettier))
	}
	if f.PrintWidth <= 0 {
		errs = append(errs, fmt.Errorf("format.print_width must be > 0, got %d", f.PrintWidth))
	}
	if !f.UseTabs && f.TabWidth <= 0 {
		errs = append(errs, fmt.Errorf("format.tab_width must be > 0 when use_tabs is false, got %d", f.TabWidth))
	}
	if !trailingCommas[f.TrailingComma] {
		errs = append(errs, fmt.Errorf("format.trailing_comma must be none, es5 or all, got %q", f.TrailingComma))
	}
	if f.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("format.cache_size must be >= 0, got %d", f.CacheSize))
	}
	return errs
}
