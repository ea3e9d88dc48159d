package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gnana997/apidoc/pkg/config"
	"github.com/gnana997/apidoc/pkg/util"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	dir        string
	configPath string
	verbose    bool
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "apidoc",
		Short: "Generate API documentation data from TypeScript declarations",
		Long: `apidoc reads TypeScript declaration files, extracts every exported
declaration with its doc comment and a formatted snippet, and writes the
result as a JSON (or generated JS/TS) artifact for a documentation site.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.dir, "dir", "C", ".", "project directory")
	pf.StringVar(&opts.configPath, "config", "", "config file (default is <dir>/.apidoc/config.yaml)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&opts.logFormat, "log-format", "", "log format: text or json (overrides config)")

	cmd.AddCommand(
		newInitCmd(opts),
		newGenerateCmd(opts),
		newWatchCmd(opts),
		newInspectCmd(opts),
		newServeCmd(opts),
		newSetupCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func (o *rootOptions) projectDir() (string, error) {
	dir, err := filepath.Abs(o.dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project directory: %w", err)
	}
	return dir, nil
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	dir, err := o.projectDir()
	if err != nil {
		return nil, err
	}
	return config.Load(dir, o.configPath)
}

// logger applies --verbose and --log-format on top of the configured logging.
func (o *rootOptions) logger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	lc := cfg.LoggerConfig()
	if o.verbose {
		lc.Level = util.LevelDebug
	}
	if o.logFormat != "" {
		f, err := util.ParseLogFormat(o.logFormat)
		if err != nil {
			return nil, err
		}
		lc.Format = f
	}
	lc.Output = w
	return util.NewLogger(lc), nil
}
