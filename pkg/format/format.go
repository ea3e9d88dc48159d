// Package format reformats extracted declaration snippets deterministically.
//
// Two engines are available: the builtin Canonical formatter, which has no
// external requirements, and Prettier, which shells out to the prettier CLI
// for full line wrapping. Either can be wrapped in an LRU cache because the
// same snippet text is formatted many times across watch-mode regenerations.
package format

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"
)

// ElisionMarker replaces collapsed member bodies in top-level snippets.
const ElisionMarker = "/*…*/"

// Engine names accepted by New.
const (
	EngineBuiltin  = "builtin"
	EnginePrettier = "prettier"
)

// Formatter reformats a code snippet.
//
// Implementations must be safe for concurrent use.
type Formatter interface {
	Format(code string) (string, error)
}

// Options are the fixed style options every engine honors.
type Options struct {
	PrintWidth int
	UseTabs    bool
	TabWidth   int
	// SingleQuote prefers single-quoted string literals.
	SingleQuote bool
	// TrailingComma is "none", "es5" or "all". Only "none" rewrites code.
	TrailingComma string
}

// DefaultOptions returns the house style: width 80, tabs, single quotes and
// no trailing commas.
func DefaultOptions() Options {
	return Options{
		PrintWidth:    80,
		UseTabs:       true,
		TabWidth:      2,
		SingleQuote:   true,
		TrailingComma: "none",
	}
}

// Settings selects and configures an engine.
type Settings struct {
	Engine      string
	PrettierBin string
	CacheSize   int
	Timeout     time.Duration
	Options     Options
}

// DefaultSettings returns the builtin engine with a 4096 entry cache.
func DefaultSettings() Settings {
	return Settings{
		Engine:    EngineBuiltin,
		CacheSize: 4096,
		Timeout:   10 * time.Second,
		Options:   DefaultOptions(),
	}
}

// New builds the formatter described by s.
//
// When the prettier engine is requested but no prettier executable can be
// found, New logs a warning and falls back to the builtin engine so a
// missing Node toolchain never blocks generation.
func New(s Settings, logger *slog.Logger) (Formatter, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var f Formatter
	switch s.Engine {
	case "", EngineBuiltin:
		f = NewCanonical(s.Options)
	case EnginePrettier:
		p, err := NewPrettier(s.Options, s.PrettierBin, s.Timeout, logger)
		if err != nil {
			logger.Warn("prettier unavailable, using builtin formatter", "error", err)
			f = NewCanonical(s.Options)
		} else {
			f = p
		}
	default:
		return nil, fmt.Errorf("unknown formatter engine %q", s.Engine)
	}

	if s.CacheSize > 0 {
		cached, err := NewCached(f, s.CacheSize)
		if err != nil {
			return nil, err
		}
		f = cached
	}
	return f, nil
}

var elisionRe = regexp.MustCompile(`\s*/\*…\*/\s*`)

// TightenElision removes whitespace a formatter placed around the elision
// marker, so a collapsed body always renders as `{/*…*/}`.
func TightenElision(s string) string {
	return elisionRe.ReplaceAllString(s, ElisionMarker)
}
