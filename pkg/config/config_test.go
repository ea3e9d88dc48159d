package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/apidoc/pkg/format"
	"github.com/gnana997/apidoc/pkg/util"
)

// Test Plan for Config System:
// - Default() returns a valid configuration
// - Load() uses defaults when no config file exists
// - Load() merges .apidoc/config.yaml with defaults
// - Load() reads an explicit config path and fails when it is missing
// - Environment variables override file values
// - Load() rejects malformed YAML and invalid values
// - Validate() reports every problem together
// - Write() output loads back unchanged

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := DefaultPath(dir)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	assert.Equal(t, []string{"**/*.d.ts"}, cfg.Include)
	assert.Equal(t, "docs/api.json", cfg.Output)
	assert.Equal(t, format.EngineBuiltin, cfg.Format.Engine)
	assert.Equal(t, 80, cfg.Format.PrintWidth)
	assert.True(t, cfg.Format.UseTabs)
	assert.Equal(t, "none", cfg.Format.TrailingComma)
	assert.Equal(t, 200*time.Millisecond, cfg.Debounce())
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir, "")
	require.NoError(t, err)

	assert.Equal(t, Default().Include, cfg.Include)
	assert.Equal(t, dir, cfg.BaseDir)
	assert.Equal(t, dir, cfg.SourceRoot())
	assert.Equal(t, filepath.Join(dir, "docs", "api.json"), cfg.OutputPath())
}

func TestLoad_MergesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
root: types
module_prefix: svelte
output: site/type-info.js
format:
  print_width: 100
modules:
  - name: svelte/motion
    comment: Motion helpers.
    exempt: true
  - name: svelte/store
    comment_file: docs/store.md
log:
  level: debug
`)

	cfg, err := Load(dir, "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "types"), cfg.SourceRoot())
	assert.Equal(t, "svelte", cfg.ModulePrefix)
	assert.Equal(t, filepath.Join(dir, "site", "type-info.js"), cfg.OutputPath())
	assert.Equal(t, 100, cfg.Format.PrintWidth)
	assert.True(t, cfg.Format.UseTabs, "unset keys keep their defaults")
	assert.Equal(t, util.LevelDebug, cfg.LoggerConfig().Level)

	require.Len(t, cfg.Modules, 2)
	motion, ok := cfg.ModuleOverride("svelte/motion")
	require.True(t, ok)
	assert.True(t, motion.Exempt)
	assert.Equal(t, "Motion helpers.", motion.Comment)

	_, ok = cfg.ModuleOverride("svelte/unknown")
	assert.False(t, ok)
}

func TestLoad_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: out/docs.json\n"), 0o644))

	cfg, err := Load(dir, path)
	require.NoError(t, err)
	assert.Equal(t, "out/docs.json", cfg.Output)

	_, err = Load(dir, filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "output: docs/from-file.json\n")

	t.Setenv("APIDOC_OUTPUT", "docs/from-env.json")
	t.Setenv("APIDOC_FORMAT_ENGINE", "prettier")
	t.Setenv("APIDOC_WATCH_DEBOUNCE_MS", "50")

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "docs/from-env.json", cfg.Output)
	assert.Equal(t, format.EnginePrettier, cfg.Format.Engine)
	assert.Equal(t, 50*time.Millisecond, cfg.Debounce())
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "include: [unclosed\n")

	_, err := Load(dir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "output: docs/api.yaml\n")

	_, err := Load(dir, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Include = []string{"src/[unclosed"}
	cfg.Format.Engine = "gofmt"
	cfg.Format.PrintWidth = 0
	cfg.Log.Level = "loud"
	cfg.Modules = []ModuleConfig{
		{Name: "a"},
		{Name: "a"},
		{Name: ""},
		{Name: "b", Comment: "x", CommentFile: "y.md"},
	}

	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidGlob)
	assert.ErrorIs(t, err, ErrInvalidEngine)
	assert.ErrorIs(t, err, ErrInvalidModule)
	assert.Contains(t, err.Error(), "print_width")
	assert.Contains(t, err.Error(), "invalid log level")
	assert.Contains(t, err.Error(), `duplicate module "a"`)
	assert.Contains(t, err.Error(), "both comment and comment_file")
}

func TestWrite_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.ModulePrefix = "svelte"
	cfg.Modules = []ModuleConfig{{Name: "svelte/motion", Comment: "Motion.", Exempt: true}}

	path := DefaultPath(dir)
	require.NoError(t, Write(path, cfg))
	assert.Equal(t, path, ConfigFileUsed(dir))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "module_prefix: svelte")

	loaded, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, cfg.ModulePrefix, loaded.ModulePrefix)
	assert.Equal(t, cfg.Modules, loaded.Modules)
	assert.Equal(t, cfg.Format, loaded.Format)
}

func TestModuleConfig_ResolveComment(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "store.md"), []byte("\nStores.\n"), 0o644))

	comment, err := ModuleConfig{Name: "s", CommentFile: "store.md"}.ResolveComment(dir)
	require.NoError(t, err)
	assert.Equal(t, "Stores.", comment)

	comment, err = ModuleConfig{Name: "s", Comment: "Inline."}.ResolveComment(dir)
	require.NoError(t, err)
	assert.Equal(t, "Inline.", comment)

	_, err = ModuleConfig{Name: "s", CommentFile: "missing.md"}.ResolveComment(dir)
	assert.Error(t, err)
}

func TestFormatSettings(t *testing.T) {
	cfg := Default()
	s := cfg.FormatSettings()
	assert.Equal(t, format.DefaultSettings(), s)
}
