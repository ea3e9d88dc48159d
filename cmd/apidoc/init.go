package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gnana997/apidoc/pkg/config"
)

type initOptions struct {
	force  bool
	root   string
	prefix string
	output string
}

func newInitCmd(root *rootOptions) *cobra.Command {
	opts := &initOptions{}
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter .apidoc/config.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := root.projectDir()
			if err != nil {
				return err
			}

			cfg := config.Default()
			if opts.root != "" {
				cfg.Root = opts.root
			}
			if opts.prefix != "" {
				cfg.ModulePrefix = opts.prefix
			}
			if opts.output != "" {
				cfg.Output = opts.output
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			path := root.configPath
			if path == "" {
				path = config.DefaultPath(dir)
			} else if !filepath.IsAbs(path) {
				path = filepath.Join(dir, path)
			}
			if _, err := os.Stat(path); err == nil && !opts.force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if err := config.Write(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.force, "force", false, "overwrite an existing config file")
	f.StringVar(&opts.root, "root", "", "directory holding the declaration sources")
	f.StringVar(&opts.prefix, "prefix", "", "module name prefix (e.g. svelte)")
	f.StringVar(&opts.output, "output", "", "artifact path (.json, .js, .mjs or .ts)")
	return cmd
}
