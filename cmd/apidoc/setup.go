package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// serverName is the key apidoc registers under in agent MCP configs.
const serverName = "apidoc"

// agentDef describes the project-level MCP config file of one agent.
type agentDef struct {
	ID          string
	DisplayName string
	ConfigPath  string            // relative to the project directory
	Marker      string            // directory whose presence signals the agent
	ServersKey  string            // "servers" (VS Code) or "mcpServers" (others)
	ExtraFields map[string]string // extra JSON fields (e.g. "type": "stdio" for VS Code)
}

// agentRegistry lists all supported agents in display order.
var agentRegistry = []agentDef{
	{
		ID: "claude", DisplayName: "Claude Code",
		ConfigPath: ".mcp.json", ServersKey: "mcpServers",
	},
	{
		ID: "vscode", DisplayName: "VS Code Copilot",
		ConfigPath: filepath.Join(".vscode", "mcp.json"), Marker: ".vscode",
		ServersKey:  "servers",
		ExtraFields: map[string]string{"type": "stdio"},
	},
	{
		ID: "cursor", DisplayName: "Cursor",
		ConfigPath: filepath.Join(".cursor", "mcp.json"), Marker: ".cursor",
		ServersKey: "mcpServers",
	},
}

type setupOptions struct {
	agents []string
	dryRun bool
}

func newSetupCmd(root *rootOptions) *cobra.Command {
	opts := &setupOptions{}
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register `apidoc serve` in project-level agent MCP configs",
		Long: `Add an "apidoc" server entry to the MCP config files of the agents used in
this project. Without --agent, Claude Code's .mcp.json is always updated and
VS Code and Cursor are updated when their directories exist. Existing entries
are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := root.projectDir()
			if err != nil {
				return err
			}
			return executeSetup(cmd.OutOrStdout(), dir, opts)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&opts.agents, "agent", nil, "agents to configure: claude, vscode, cursor")
	f.BoolVar(&opts.dryRun, "dry-run", false, "print the changes without writing them")
	return cmd
}

// executeSetup contains the testable core logic, parameterized on I/O.
func executeSetup(w io.Writer, dir string, opts *setupOptions) error {
	agents, err := selectAgents(dir, opts.agents)
	if err != nil {
		return err
	}

	for _, def := range agents {
		path := filepath.Join(dir, def.ConfigPath)

		var existing []byte
		if data, err := os.ReadFile(path); err == nil {
			existing = data
		}

		merged, err := mergeServerEntry(existing, def.ServersKey, def.ExtraFields)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if merged == nil {
			fmt.Fprintf(w, "  * %s already configured (%s)\n", def.DisplayName, def.ConfigPath)
			continue
		}

		if opts.dryRun {
			fmt.Fprintf(w, "  ~ %s would be configured (%s)\n", def.DisplayName, def.ConfigPath)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
		if err := os.WriteFile(path, merged, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(w, "  + %s configured (%s)\n", def.DisplayName, def.ConfigPath)
	}
	return nil
}

// selectAgents resolves --agent values, or detects agents by their marker
// directories when none are given.
func selectAgents(dir string, ids []string) ([]agentDef, error) {
	if len(ids) == 0 {
		var out []agentDef
		for _, def := range agentRegistry {
			if def.Marker == "" {
				out = append(out, def)
				continue
			}
			if info, err := os.Stat(filepath.Join(dir, def.Marker)); err == nil && info.IsDir() {
				out = append(out, def)
			}
		}
		return out, nil
	}

	var out []agentDef
	for _, id := range ids {
		def, ok := findAgent(id)
		if !ok {
			known := make([]string, len(agentRegistry))
			for i, d := range agentRegistry {
				known[i] = d.ID
			}
			return nil, fmt.Errorf("unknown agent %q (known: %s)", id, strings.Join(known, ", "))
		}
		out = append(out, def)
	}
	return out, nil
}

func findAgent(id string) (agentDef, bool) {
	for _, def := range agentRegistry {
		if def.ID == strings.ToLower(strings.TrimSpace(id)) {
			return def, true
		}
	}
	return agentDef{}, false
}

// serverEntry returns the MCP server config object for apidoc.
func serverEntry(extra map[string]string) map[string]any {
	entry := map[string]any{
		"command": "apidoc",
		"args":    []any{"serve"},
	}
	for k, v := range extra {
		entry[k] = v
	}
	return entry
}

// mergeServerEntry reads existing JSON (or creates new), adds an "apidoc"
// entry under serversKey, and returns the merged JSON bytes.
// Returns nil, nil if apidoc is already configured.
func mergeServerEntry(existing []byte, serversKey string, extra map[string]string) ([]byte, error) {
	config := make(map[string]any)
	if len(strings.TrimSpace(string(existing))) > 0 {
		if err := json.Unmarshal(existing, &config); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	servers, ok := config[serversKey].(map[string]any)
	if !ok {
		servers = make(map[string]any)
	}
	if _, exists := servers[serverName]; exists {
		return nil, nil
	}

	servers[serverName] = serverEntry(extra)
	config[serversKey] = servers

	out, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
