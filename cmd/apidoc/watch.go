package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/apidoc/pkg/watcher"
)

func newWatchCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Regenerate the artifact whenever declaration sources change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			logger, err := root.logger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			s, err := newScanner(cfg, logger)
			if err != nil {
				return err
			}
			defer s.Close()

			regenerate := func(ctx context.Context, changed []string) error {
				logger.Debug("regenerating", "changed", changed)
				_, err := s.Generate(ctx, cfg)
				return err
			}

			// The first run may fail on a half-edited tree; keep watching.
			if err := regenerate(ctx, nil); err != nil {
				logger.Error("initial generation failed", "error", err)
			}

			exclude := cfg.Exclude
			if rel, ok := within(cfg.SourceRoot(), cfg.OutputPath()); ok {
				exclude = append(append([]string{}, exclude...), rel)
			}

			fw, err := watcher.NewFileWatcher(regenerate, watcher.Options{
				Debounce: cfg.Debounce(),
				Include:  cfg.Include,
				Exclude:  exclude,
			}, logger)
			if err != nil {
				return err
			}
			if err := fw.Start(ctx, cfg.SourceRoot()); err != nil {
				return err
			}

			<-ctx.Done()
			stats := fw.Stats()
			logger.Info("shutting down", "regenerations", stats.Regenerations, "failures", stats.Failures)
			return fw.Stop()
		},
	}
}

// within returns path relative to root when it lies inside it.
func within(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}
