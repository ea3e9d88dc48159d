package format

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Prettier formats snippets by piping them through the prettier CLI.
type Prettier struct {
	bin     string
	prefix  []string
	opts    Options
	timeout time.Duration
	logger  *slog.Logger
}

// findPrettier searches the PATH for prettier, then for npx.
func findPrettier() (string, []string, bool) {
	if p, err := exec.LookPath("prettier"); err == nil {
		return p, nil, true
	}
	if p, err := exec.LookPath("npx"); err == nil {
		return p, []string{"--no-install", "prettier"}, true
	}
	return "", nil, false
}

// NewPrettier resolves the prettier executable. An empty bin searches the
// PATH. A zero timeout defaults to ten seconds.
func NewPrettier(opts Options, bin string, timeout time.Duration, logger *slog.Logger) (*Prettier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var prefix []string
	if bin == "" {
		found, pre, ok := findPrettier()
		if !ok {
			return nil, fmt.Errorf("no prettier or npx executable found on PATH")
		}
		bin, prefix = found, pre
	} else if _, err := exec.LookPath(bin); err != nil {
		return nil, fmt.Errorf("prettier executable %q: %w", bin, err)
	}

	logger.Debug("using prettier formatter", "bin", filepath.Base(bin))
	return &Prettier{bin: bin, prefix: prefix, opts: opts, timeout: timeout, logger: logger}, nil
}

// Args returns the CLI arguments derived from the style options.
func (p *Prettier) Args() []string {
	args := append([]string{}, p.prefix...)
	args = append(args,
		"--stdin-filepath", "snippet.ts",
		"--parser", "typescript",
		"--print-width", strconv.Itoa(p.opts.PrintWidth),
		"--trailing-comma", trailingComma(p.opts.TrailingComma),
	)
	if p.opts.UseTabs {
		args = append(args, "--use-tabs")
	} else if p.opts.TabWidth > 0 {
		args = append(args, "--tab-width", strconv.Itoa(p.opts.TabWidth))
	}
	if p.opts.SingleQuote {
		args = append(args, "--single-quote")
	}
	return args
}

// Format implements Formatter.
func (p *Prettier) Format(code string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.bin, p.Args()...)
	cmd.Stdin = strings.NewReader(code)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("prettier failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}

func trailingComma(v string) string {
	if v == "" {
		return "none"
	}
	return v
}
