package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/apidoc/pkg/catalog"
)

const storeSource = `/**
 * Stores hold reactive values.
 * @module
 */

/** Creates a writable store. */
export declare function writable<T>(value?: T): Writable<T>;

/** A store that can be set. */
export interface Writable<T> {
	/**
	 * Sets the value.
	 * @param value new value
	 */
	set(value: T): void;
}
`

// --- helpers ---

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// setupProject writes sources and a config, and returns the project dir.
func setupProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "types/index.d.ts", "/** Mounts a component. */\nexport declare function mount(target: Element): void;\n")
	writeFile(t, dir, "types/store/index.d.ts", storeSource)

	_, _, err := runCLI(t, "--dir", dir, "init", "--root", "types", "--prefix", "svelte")
	require.NoError(t, err)
	return dir
}

// --- init ---

func TestInit(t *testing.T) {
	dir := t.TempDir()

	out, _, err := runCLI(t, "-C", dir, "init", "--prefix", "svelte", "--output", "site/api.js")
	require.NoError(t, err)
	assert.Contains(t, out, "Created")

	data, err := os.ReadFile(filepath.Join(dir, ".apidoc", "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "module_prefix: svelte")
	assert.Contains(t, string(data), "output: site/api.js")

	_, _, err = runCLI(t, "-C", dir, "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = runCLI(t, "-C", dir, "init", "--force")
	assert.NoError(t, err)
}

func TestInit_RejectsInvalidOutput(t *testing.T) {
	_, _, err := runCLI(t, "-C", t.TempDir(), "init", "--output", "api.yaml")
	assert.Error(t, err)
}

// --- generate ---

func TestGenerate(t *testing.T) {
	dir := setupProject(t)

	out, _, err := runCLI(t, "-C", dir, "generate")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")
	assert.Contains(t, out, "declarations: 3")
	assert.Contains(t, out, "sources:      2 mapped, 0 read without mmap")
	assert.Contains(t, out, "format cache:")

	cat, _, err := catalog.LoadFromFile(filepath.Join(dir, "docs", "api.json"))
	require.NoError(t, err)
	require.Len(t, cat.Modules, 2)
	assert.Equal(t, "svelte", cat.Modules[0].Name)
	assert.Equal(t, "svelte/store", cat.Modules[1].Name)
	assert.Equal(t, "Stores hold reactive values.", cat.Modules[1].Comment)
}

func TestGenerate_OutputFlag(t *testing.T) {
	dir := setupProject(t)

	_, _, err := runCLI(t, "-C", dir, "generate", "-q", "-o", "site/type-info.js")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "site", "type-info.js"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("export const modules = ")))
}

func TestGenerate_Check(t *testing.T) {
	dir := setupProject(t)

	_, _, err := runCLI(t, "-C", dir, "generate", "--check", "-q")
	require.Error(t, err, "no artifact yet")

	_, _, err = runCLI(t, "-C", dir, "generate", "-q")
	require.NoError(t, err)

	out, _, err := runCLI(t, "-C", dir, "generate", "--check")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")

	writeFile(t, dir, "types/motion.d.ts", "export declare const spring: number;\n")
	_, _, err = runCLI(t, "-C", dir, "generate", "--check", "-q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of date")
}

func TestGenerate_InvalidLogFormat(t *testing.T) {
	dir := setupProject(t)
	_, _, err := runCLI(t, "-C", dir, "--log-format", "xml", "generate", "-q")
	assert.Error(t, err)
}

// --- inspect ---

func TestInspect(t *testing.T) {
	dir := setupProject(t)
	_, _, err := runCLI(t, "-C", dir, "generate", "-q")
	require.NoError(t, err)

	out, _, err := runCLI(t, "-C", dir, "inspect")
	require.NoError(t, err)
	assert.Contains(t, out, "MODULE")
	assert.Contains(t, out, "svelte/store")
	assert.Contains(t, out, "Stores hold reactive values.")

	out, _, err = runCLI(t, "-C", dir, "inspect", "svelte/store")
	require.NoError(t, err)
	assert.Contains(t, out, "Exports")
	assert.Contains(t, out, "writable")
	assert.Contains(t, out, "Writable")

	out, _, err = runCLI(t, "-C", dir, "inspect", "svelte/store", "Writable")
	require.NoError(t, err)
	assert.Contains(t, out, "interface Writable<T> {/*…*/}")
	assert.Contains(t, out, "set(value: T): void;")
	assert.Contains(t, out, "- value new value")

	out, _, err = runCLI(t, "-C", dir, "inspect", "--json", "svelte/store", "writable")
	require.NoError(t, err)
	var decl catalog.Declaration
	require.NoError(t, json.Unmarshal([]byte(out), &decl))
	assert.Equal(t, "writable", decl.Name)

	_, _, err = runCLI(t, "-C", dir, "inspect", "svelte/nope")
	assert.Error(t, err)
}

func TestInspect_Calls(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "calls.jsonl",
		`{"tool":"get_module","duration_ms":4,"tokens_est":10,"error":null}`+"\n"+
			`{"tool":"get_module","duration_ms":8,"tokens_est":10,"error":"module \"x\" not found"}`+"\n")

	out, _, err := runCLI(t, "-C", dir, "inspect", "--calls", "calls.jsonl")
	require.NoError(t, err)
	assert.Contains(t, out, "TOOL")
	assert.Regexp(t, `get_module\s+2\s+1\s+6\s+8\s+20`, out)
}

// --- setup ---

func TestSetup(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".vscode"), 0o755))
	writeFile(t, dir, ".mcp.json", `{"mcpServers": {"other": {"command": "other"}}}`)

	out, _, err := runCLI(t, "-C", dir, "setup")
	require.NoError(t, err)
	assert.Contains(t, out, "Claude Code configured")
	assert.Contains(t, out, "VS Code Copilot configured")
	assert.NotContains(t, out, "Cursor")

	var claude map[string]map[string]map[string]any
	data, err := os.ReadFile(filepath.Join(dir, ".mcp.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &claude))
	assert.Contains(t, claude["mcpServers"], "other", "existing servers are kept")
	assert.Equal(t, "apidoc", claude["mcpServers"]["apidoc"]["command"])

	var vscode map[string]map[string]map[string]any
	data, err = os.ReadFile(filepath.Join(dir, ".vscode", "mcp.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &vscode))
	assert.Equal(t, "stdio", vscode["servers"]["apidoc"]["type"])

	out, _, err = runCLI(t, "-C", dir, "setup")
	require.NoError(t, err)
	assert.Contains(t, out, "already configured")
}

func TestSetup_ExplicitAgentAndDryRun(t *testing.T) {
	dir := t.TempDir()

	out, _, err := runCLI(t, "-C", dir, "setup", "--agent", "cursor", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Cursor would be configured")
	assert.NoFileExists(t, filepath.Join(dir, ".cursor", "mcp.json"))

	_, _, err = runCLI(t, "-C", dir, "setup", "--agent", "zed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown agent")
}

func TestMergeServerEntry_InvalidJSON(t *testing.T) {
	_, err := mergeServerEntry([]byte("{not json"), "mcpServers", nil)
	assert.Error(t, err)
}

// --- version ---

func TestVersion(t *testing.T) {
	out, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "apidoc dev")
}

func TestWithin(t *testing.T) {
	rel, ok := within(filepath.FromSlash("/p/types"), filepath.FromSlash("/p/types/out/api.ts"))
	assert.True(t, ok)
	assert.Equal(t, "out/api.ts", rel)

	_, ok = within(filepath.FromSlash("/p/types"), filepath.FromSlash("/p/docs/api.json"))
	assert.False(t, ok)
}
