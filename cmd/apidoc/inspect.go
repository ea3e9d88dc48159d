package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/apidoc/pkg/catalog"
	"github.com/gnana997/apidoc/pkg/mcplog"
)

const maxWidth = 80

type inspectOptions struct {
	catalogPath string
	json        bool
	calls       string
}

func newInspectCmd(root *rootOptions) *cobra.Command {
	opts := &inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect [module [declaration]]",
		Short: "Show what a generated artifact documents",
		Long: `Without arguments, list every module. With a module name, list its
exports and types. With a module and a declaration name, print the
declaration's snippet, comment and members.

With --calls, summarize an MCP tool-call log instead.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			if opts.calls != "" {
				entries, err := mcplog.ReadLog(resolvePath(cfg.BaseDir, opts.calls, ""))
				if err != nil {
					return err
				}
				summary := mcplog.Summarize(entries)
				if opts.json {
					return writeJSON(w, summary)
				}
				printCallSummary(w, summary)
				return nil
			}

			qs, err := catalog.LoadAndQuery(resolvePath(cfg.BaseDir, opts.catalogPath, cfg.OutputPath()))
			if err != nil {
				return err
			}

			switch len(args) {
			case 0:
				mods := qs.ListModules("")
				if opts.json {
					return writeJSON(w, mods)
				}
				printModules(w, mods)
			case 1:
				mod, ok := qs.GetModule(args[0])
				if !ok {
					return fmt.Errorf("module %q not found", args[0])
				}
				if opts.json {
					return writeJSON(w, mod)
				}
				printModule(w, mod)
			default:
				decl, ok := qs.GetDeclaration(args[0], args[1])
				if !ok {
					return fmt.Errorf("declaration %q not found in module %q", args[1], args[0])
				}
				if opts.json {
					return writeJSON(w, decl)
				}
				printDeclaration(w, decl)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.catalogPath, "catalog", "", "artifact to read (default is the configured output)")
	f.BoolVar(&opts.json, "json", false, "print JSON instead of text")
	f.StringVar(&opts.calls, "calls", "", "summarize this MCP tool-call log")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printModules(w io.Writer, mods []catalog.ModuleSummary) {
	nameW := len("MODULE")
	for _, m := range mods {
		nameW = max(nameW, len(m.Name))
	}

	fmt.Fprintf(w, "%-*s  %7s  %5s  %s\n", nameW, "MODULE", "EXPORTS", "TYPES", "COMMENT")
	fmt.Fprintf(w, "%s\n", strings.Repeat("─", min(maxWidth, nameW+26)))
	for _, m := range mods {
		comment := m.Comment
		if m.Exempt {
			comment = strings.TrimSpace("[exempt] " + comment)
		}
		fmt.Fprintf(w, "%-*s  %7d  %5d  %s\n", nameW, m.Name, m.Exports, m.Types, truncate(comment, maxWidth-nameW-20))
	}
}

func printModule(w io.Writer, mod *catalog.Module) {
	header := mod.Name
	if mod.Exempt {
		header += "  [exempt]"
	}
	fmt.Fprintln(w, header)

	if mod.Comment != "" {
		fmt.Fprintln(w)
		printWrapped(w, mod.Comment, 0, maxWidth)
	}

	printDeclarationList(w, "Exports", mod.Exports)
	printDeclarationList(w, "Types", mod.Types)
}

func printDeclarationList(w io.Writer, title string, decls []catalog.Declaration) {
	fmt.Fprintln(w)
	if len(decls) == 0 {
		fmt.Fprintf(w, "%s  (none)\n", title)
		return
	}
	fmt.Fprintln(w, title)

	nameW := 0
	for _, d := range decls {
		nameW = max(nameW, len(displayName(d.Name)))
	}
	for _, d := range decls {
		name := displayName(d.Name)
		fmt.Fprintf(w, "  %-*s  %s\n", nameW, name, truncate(firstLine(d.Comment), maxWidth-nameW-4))
	}
}

func printDeclaration(w io.Writer, d *catalog.Declaration) {
	fmt.Fprintln(w, displayName(d.Name))
	if d.Comment != "" {
		fmt.Fprintln(w)
		printWrapped(w, d.Comment, 0, maxWidth)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "  "+strings.Repeat("─", 40))
	for _, line := range strings.Split(d.Snippet, "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}

	if len(d.Children) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Members")
		printMembers(w, d.Children, 1)
	}
}

func printMembers(w io.Writer, members []catalog.Member, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, m := range members {
		fmt.Fprintf(w, "%s%s\n", indent, strings.ReplaceAll(m.Snippet, "\n", "\n"+indent))
		if m.Comment != "" {
			printWrapped(w, m.Comment, len(indent)+2, maxWidth)
		}
		for _, b := range m.Bullets {
			fmt.Fprintf(w, "%s  %s\n", indent, b)
		}
		if len(m.Children) > 0 {
			printMembers(w, m.Children, depth+1)
		}
	}
}

func printCallSummary(w io.Writer, summary []mcplog.ToolSummary) {
	if len(summary) == 0 {
		fmt.Fprintln(w, "No tool calls logged.")
		return
	}
	toolW := len("TOOL")
	for _, s := range summary {
		toolW = max(toolW, len(s.Tool))
	}
	fmt.Fprintf(w, "%-*s  %5s  %6s  %8s  %6s  %8s\n", toolW, "TOOL", "CALLS", "ERRORS", "AVG MS", "MAX MS", "TOKENS")
	for _, s := range summary {
		fmt.Fprintf(w, "%-*s  %5d  %6d  %8d  %6d  %8d\n",
			toolW, s.Tool, s.Calls, s.Errors, s.TotalMs/int64(s.Calls), s.MaxMs, s.TokensEst)
	}
}

func displayName(name string) string {
	if name == "" {
		return "(anonymous)"
	}
	return name
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width < 4 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

// printWrapped prints text word-wrapped at width with the given left indent.
// Paragraph breaks are kept.
func printWrapped(w io.Writer, text string, indent, width int) {
	prefix := strings.Repeat(" ", indent)
	for i, para := range strings.Split(text, "\n\n") {
		if i > 0 {
			fmt.Fprintln(w)
		}
		line := prefix
		for _, word := range strings.Fields(para) {
			if len(line)+len(word)+1 > width && line != prefix {
				fmt.Fprintln(w, line)
				line = prefix + word
			} else if line == prefix {
				line += word
			} else {
				line += " " + word
			}
		}
		if line != prefix {
			fmt.Fprintln(w, line)
		}
	}
}
