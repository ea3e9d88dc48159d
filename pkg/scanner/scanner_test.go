package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/apidoc/pkg/catalog"
	"github.com/gnana997/apidoc/pkg/config"
	"github.com/gnana997/apidoc/pkg/format"
	"github.com/gnana997/apidoc/pkg/util"
)

const indexSource = `/**
 * The main entry point.
 * @module
 */

/** Mounts a component. */
export declare function mount(target: Element): void;

/** A component instance. */
export interface Component {
	/** The root element. */
	el: Element;
}

declare const internal: number;
`

const storeSource = `/** Creates a writable store. */
export declare function writable<T>(value: T): Writable<T>;

export interface Writable<T> {
	/**
	 * Sets the value.
	 * @param value new value
	 * @since 3.0
	 */
	set(value: T): void;
}

export declare const version: string;
`

func setupProject(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "types/index.d.ts", indexSource)
	writeFile(t, dir, "types/store/index.d.ts", storeSource)
	writeFile(t, dir, "types/motion.d.ts", "export declare const spring: number;")
	writeFile(t, dir, "types/node_modules/dep/index.d.ts", "export declare const dep: number;")

	cfg := config.Default()
	cfg.BaseDir = dir
	cfg.Root = "types"
	cfg.ModulePrefix = "svelte"
	cfg.Workers = 2
	cfg.Modules = []config.ModuleConfig{
		{Name: "svelte/motion", Comment: "Motion helpers.", Exempt: true},
	}
	return cfg
}

func newTestScanner(t *testing.T) *Scanner {
	t.Helper()
	s := NewScanner(nil, util.NewDiscardLogger())
	t.Cleanup(func() { s.Close() })
	return s
}

func moduleNames(cat *catalog.Catalog) []string {
	names := make([]string, len(cat.Modules))
	for i, m := range cat.Modules {
		names[i] = m.Name
	}
	return names
}

func TestScanner_Run(t *testing.T) {
	cfg := setupProject(t)
	s := newTestScanner(t)

	cat, stats, err := s.Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"svelte", "svelte/motion", "svelte/store"}, moduleNames(cat))

	root := cat.Modules[0]
	assert.Equal(t, "The main entry point.", root.Comment)
	require.Len(t, root.Exports, 1)
	assert.Equal(t, "mount", root.Exports[0].Name)
	assert.Equal(t, "Mounts a component.", root.Exports[0].Comment)
	require.Len(t, root.Types, 1)
	assert.Equal(t, "Component", root.Types[0].Name)
	assert.Equal(t, "interface Component {/*…*/}", root.Types[0].Snippet)
	require.Len(t, root.Types[0].Children, 1)
	assert.Equal(t, "el", root.Types[0].Children[0].Name)

	motion := cat.Modules[1]
	assert.True(t, motion.Exempt)
	assert.Equal(t, "Motion helpers.", motion.Comment)
	assert.NotNil(t, motion.Exports)
	assert.Empty(t, motion.Exports, "exempt modules are not extracted")

	store := cat.Modules[2]
	assert.Equal(t, "", store.Comment)
	require.Len(t, store.Exports, 2)
	assert.Equal(t, "version", store.Exports[0].Name)
	assert.Equal(t, "writable", store.Exports[1].Name)
	assert.Equal(t, "Creates a writable store.", store.Exports[1].Comment)
	require.Len(t, store.Types, 1)
	require.Len(t, store.Types[0].Children, 1)
	set := store.Types[0].Children[0]
	assert.Equal(t, "set", set.Name)
	assert.Equal(t, "Sets the value.", set.Comment)
	assert.Equal(t, []string{"- value new value"}, set.Bullets)

	assert.Equal(t, 3, stats.FilesDiscovered)
	assert.Equal(t, 2, stats.FilesExtracted)
	assert.Equal(t, 0, stats.FilesFailed)
	assert.Equal(t, 1, stats.ModulesExempt)
	assert.Equal(t, 3, stats.Modules)
	assert.Equal(t, 5, stats.Declarations)

	require.Len(t, stats.Diagnostics, 1)
	assert.Equal(t, "svelte/store", stats.Diagnostics[0].Module)
	assert.Equal(t, "since", stats.Diagnostics[0].Tag)
	assert.Equal(t, "Writable.set", stats.Diagnostics[0].Subject)
}

func TestScanner_RunReportsCacheUsage(t *testing.T) {
	cfg := setupProject(t)
	f, err := format.New(format.DefaultSettings(), util.NewDiscardLogger())
	require.NoError(t, err)
	s := NewScanner(f, util.NewDiscardLogger())
	t.Cleanup(func() { s.Close() })

	_, stats, err := s.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.SourcesMapped, "exempt sources are never read")
	assert.Equal(t, int64(0), stats.MmapFallbacks)
	assert.Positive(t, stats.FormatCacheEntries)

	_, stats, err = newTestScanner(t).Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.FormatCacheEntries, "an uncached formatter reports nothing")
}

func TestScanner_RunIsDeterministic(t *testing.T) {
	cfg := setupProject(t)
	s := newTestScanner(t)

	first, _, err := s.Run(context.Background(), cfg)
	require.NoError(t, err)
	second, _, err := s.Run(context.Background(), cfg)
	require.NoError(t, err)

	a, err := first.Marshal("api.json")
	require.NoError(t, err)
	b, err := second.Marshal("api.json")
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestScanner_ConfiguredCommentWins(t *testing.T) {
	cfg := setupProject(t)
	writeFile(t, cfg.BaseDir, "docs/root.md", "\nRoot module.\n")
	cfg.Modules = append(cfg.Modules, config.ModuleConfig{Name: "svelte", CommentFile: "docs/root.md"})

	cat, _, err := newTestScanner(t).Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "Root module.", cat.Modules[0].Comment)
}

func TestScanner_DuplicateModule(t *testing.T) {
	cfg := setupProject(t)
	writeFile(t, cfg.BaseDir, "types/store.d.ts", "export declare const other: number;")

	_, _, err := newTestScanner(t).Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate module "svelte/store"`)
}

func TestScanner_UnreadableSourceIsCounted(t *testing.T) {
	cfg := setupProject(t)
	dangling := filepath.Join(cfg.BaseDir, "types", "dangling.d.ts")
	require.NoError(t, os.Symlink(filepath.Join(cfg.BaseDir, "missing.d.ts"), dangling))

	cat, stats, err := newTestScanner(t).Run(context.Background(), cfg)
	require.NoError(t, err, "per-file failures never abort a run")
	assert.Equal(t, 4, stats.FilesDiscovered)
	assert.Equal(t, 1, stats.FilesFailed)
	assert.Equal(t, []string{"svelte", "svelte/motion", "svelte/store"}, moduleNames(cat))
}

func TestScanner_Cancelled(t *testing.T) {
	cfg := setupProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := newTestScanner(t).Run(ctx, cfg)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanner_OnModule(t *testing.T) {
	cfg := setupProject(t)
	s := newTestScanner(t)

	var mu sync.Mutex
	var seen []string
	s.OnModule = func(name string) {
		mu.Lock()
		seen = append(seen, name)
		mu.Unlock()
	}

	_, _, err := s.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"svelte", "svelte/store"}, seen)
}

func TestScanner_Plan(t *testing.T) {
	cfg := setupProject(t)
	names, err := newTestScanner(t).Plan(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"svelte", "svelte/store"}, names)
}

func TestScanner_Generate(t *testing.T) {
	cfg := setupProject(t)
	cfg.Output = "site/type-info.js"

	stats, err := newTestScanner(t).Generate(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Modules)

	cat, idx, err := catalog.LoadFromFile(filepath.Join(cfg.BaseDir, "site", "type-info.js"))
	require.NoError(t, err)
	assert.Len(t, cat.Modules, 3)
	_, ok := idx.DeclarationByKey[catalog.DeclarationKey("svelte/store", "writable")]
	assert.True(t, ok)
}
