package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/gnana997/apidoc/pkg/config"
	"github.com/gnana997/apidoc/pkg/format"
	"github.com/gnana997/apidoc/pkg/scanner"
)

type generateOptions struct {
	quiet  bool
	check  bool
	output string
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Extract declarations and write the documentation artifact",
		Long: `Discover declaration sources, extract every exported declaration in
parallel, and write the sorted module list to the configured output.

With --check nothing is written; the command fails when the artifact on disk
differs from what would be generated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), root, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "hide the progress bar and summary")
	f.BoolVar(&opts.check, "check", false, "verify the artifact is up to date instead of writing it")
	f.StringVarP(&opts.output, "output", "o", "", "artifact path (overrides config)")
	return cmd
}

func runGenerate(ctx context.Context, root *rootOptions, opts *generateOptions, stdout, stderr io.Writer) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if opts.output != "" {
		cfg.Output = opts.output
		if err := config.Validate(cfg); err != nil {
			return err
		}
	}

	logger, err := root.logger(cfg, stderr)
	if err != nil {
		return err
	}

	s, err := newScanner(cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	var bar *progressbar.ProgressBar
	if !opts.quiet {
		modules, err := s.Plan(cfg)
		if err != nil {
			return err
		}
		bar = newProgressBar(len(modules), stderr)
		s.OnModule = func(string) { bar.Add(1) }
	}

	cat, stats, err := s.Run(ctx, cfg)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	path := cfg.OutputPath()
	if opts.check {
		want, err := cat.Marshal(path)
		if err != nil {
			return err
		}
		have, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read artifact: %w", err)
		}
		if !bytes.Equal(want, have) {
			return fmt.Errorf("%s is out of date; run apidoc generate", path)
		}
		if !opts.quiet {
			fmt.Fprintf(stdout, "%s is up to date (%d modules)\n", path, stats.Modules)
		}
		return nil
	}

	if err := cat.SaveToFile(path); err != nil {
		return err
	}
	if !opts.quiet {
		printStats(stdout, path, stats)
	}
	return nil
}

// newScanner builds a scanner with the configured formatter.
func newScanner(cfg *config.Config, logger *slog.Logger) (*scanner.Scanner, error) {
	f, err := format.New(cfg.FormatSettings(), logger)
	if err != nil {
		return nil, err
	}
	return scanner.NewScanner(f, logger), nil
}

func newProgressBar(total int, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Extracting modules"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

func printStats(w io.Writer, path string, stats *scanner.Stats) {
	fmt.Fprintf(w, "Wrote %s\n", path)
	fmt.Fprintf(w, "  modules:      %d (%d exempt)\n", stats.Modules, stats.ModulesExempt)
	fmt.Fprintf(w, "  declarations: %d\n", stats.Declarations)
	fmt.Fprintf(w, "  files:        %d extracted, %d failed\n", stats.FilesExtracted, stats.FilesFailed)
	fmt.Fprintf(w, "  sources:      %d mapped, %d read without mmap\n", stats.SourcesMapped, stats.MmapFallbacks)
	fmt.Fprintf(w, "  format cache: %d snippets\n", stats.FormatCacheEntries)
	fmt.Fprintf(w, "  time:         %dms\n", stats.TotalTimeMs)

	if len(stats.Diagnostics) > 0 {
		fmt.Fprintf(w, "\n%d doc tag(s) dropped:\n", len(stats.Diagnostics))
		for _, d := range stats.Diagnostics {
			fmt.Fprintf(w, "  %s: %s\n", d.Module, d)
		}
	}
}
