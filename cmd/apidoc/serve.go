package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gnana997/apidoc/pkg/catalog"
	mcpserver "github.com/gnana997/apidoc/pkg/mcp"
	"github.com/gnana997/apidoc/pkg/mcplog"
)

type serveOptions struct {
	catalogPath string
	logFile     string
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generated artifact over MCP on stdio",
		Long: `Load a generated artifact and expose it to agents through the Model
Context Protocol on stdin/stdout. Tools: list_modules, get_module,
get_declaration and search_declarations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			logger, err := root.logger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			path := resolvePath(cfg.BaseDir, opts.catalogPath, cfg.OutputPath())
			qs, err := catalog.LoadAndQuery(path)
			if err != nil {
				return err
			}

			callLog, err := mcplog.NewLogger(resolvePath(cfg.BaseDir, opts.logFile, cfg.MCP.LogFile))
			if err != nil {
				return err
			}
			defer callLog.Close()

			logger.Info("serving catalog", "path", path, "modules", len(qs.Catalog.Modules))
			return mcpserver.NewServer(qs, callLog).ServeStdio()
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.catalogPath, "catalog", "", "artifact to serve (default is the configured output)")
	f.StringVar(&opts.logFile, "log-file", "", "append a JSONL record of every tool call to this file")
	return cmd
}

// resolvePath returns flag when set, else fallback; relative paths resolve
// against baseDir.
func resolvePath(baseDir, flag, fallback string) string {
	p := flag
	if p == "" {
		p = fallback
	}
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
