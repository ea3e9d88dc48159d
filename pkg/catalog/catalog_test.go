package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helpers ---

func storeModule() Module {
	return Module{
		Name:    "svelte/store",
		Comment: "Stores for shared state.",
		Exports: []Declaration{
			{Name: "readable", Comment: "Creates a readable store.", Snippet: "function readable<T>(value?: T): Readable<T>;"},
			{Name: "writable", Comment: "Creates a writable store.", Snippet: "function writable<T>(value?: T): Writable<T>;"},
		},
		Types: []Declaration{
			{
				Name:    "Readable",
				Comment: "Readable interface for subscribing.",
				Snippet: "interface Readable<T> {/*…*/}",
				Children: []Member{
					{
						Name:    "subscribe",
						Comment: "Subscribe on value changes.",
						Snippet: "subscribe(run: Subscriber<T>): Unsubscriber;",
						Bullets: []string{"- run subscription callback"},
					},
				},
			},
		},
	}
}

func sampleCatalog(t *testing.T) *Catalog {
	t.Helper()
	mods := Accumulate(nil, storeModule())
	mods = Accumulate(mods, Module{Name: "svelte", Comment: "Core runtime."})
	mods = Accumulate(mods, Module{Name: "svelte/motion", Exempt: true})
	cat, err := Finalize(mods)
	require.NoError(t, err)
	return cat
}

// --- Finalize / SortDeclarations ---

func TestFinalize_SortsModules(t *testing.T) {
	cat := sampleCatalog(t)

	names := make([]string, 0, len(cat.Modules))
	for _, m := range cat.Modules {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"svelte", "svelte/motion", "svelte/store"}, names)
	assert.Empty(t, cat.Validate())
}

func TestFinalize_RejectsDuplicates(t *testing.T) {
	mods := Accumulate(nil, Module{Name: "a"})
	mods = Accumulate(mods, Module{Name: "b"})
	mods = Accumulate(mods, Module{Name: "a"})

	_, err := Finalize(mods)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate module "a"`)
}

func TestFinalize_DoesNotMutateInput(t *testing.T) {
	mods := []Module{{Name: "b"}, {Name: "a"}}
	_, err := Finalize(mods)
	require.NoError(t, err)
	assert.Equal(t, "b", mods[0].Name)
}

func TestFinalize_EmptySlicesSerializeAsArrays(t *testing.T) {
	cat, err := Finalize([]Module{{
		Name:  "m",
		Types: []Declaration{{Name: "A", Snippet: "interface A {/*…*/}", Children: []Member{{Name: "x", Snippet: "x: 1;"}}}},
	}})
	require.NoError(t, err)

	data, err := json.Marshal(cat.Modules)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"exports":[]`)
	assert.Contains(t, s, `"bullets":[]`)
	assert.Contains(t, s, `"children":[]`)
	assert.NotContains(t, s, "null")
	assert.NotContains(t, s, "exempt", "exempt is omitted when false")
}

func TestSortDeclarations(t *testing.T) {
	decls := []Declaration{
		{Name: "b", Snippet: "1"},
		{Name: "B", Snippet: "2"},
		{Name: "a", Snippet: "3"},
		{Name: "", Snippet: "4"},
		{Name: "a", Snippet: "5"},
	}
	SortDeclarations(decls)

	var got []string
	for _, d := range decls {
		got = append(got, d.Name+":"+d.Snippet)
	}
	// Ordinal: "" < "B" < "a" < "b"; equal names keep their order.
	assert.Equal(t, []string{":4", "B:2", "a:3", "a:5", "b:1"}, got)
}

// --- Validate ---

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		modules []Module
		wantErr string
	}{
		{"empty name", []Module{{Name: ""}}, "name is required"},
		{"duplicate", []Module{{Name: "a"}, {Name: "a"}}, "duplicate module name"},
		{"out of order", []Module{{Name: "b"}, {Name: "a"}}, "out of order"},
		{
			"unsorted declarations",
			[]Module{{Name: "a", Types: []Declaration{{Name: "Z", Snippet: "x"}, {Name: "A", Snippet: "y"}}}},
			`types[1]: "A" out of order`,
		},
		{
			"missing snippet",
			[]Module{{Name: "a", Exports: []Declaration{{Name: "f"}}}},
			"snippet is required",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			errs := (&Catalog{Modules: tc.modules}).Validate()
			require.NotEmpty(t, errs)
			assert.Contains(t, errs[0].Error(), tc.wantErr)
		})
	}
}

// --- BuildIndex ---

func TestBuildIndex(t *testing.T) {
	cat := sampleCatalog(t)
	idx := cat.BuildIndex()

	assert.Len(t, idx.ModuleByName, 3)
	assert.Equal(t, "Stores for shared state.", idx.ModuleByName["svelte/store"].Comment)

	d, ok := idx.DeclarationByKey[DeclarationKey("svelte/store", "Readable")]
	require.True(t, ok)
	assert.Len(t, d.Children, 1)

	_, ok = idx.DeclarationByKey[DeclarationKey("svelte", "Readable")]
	assert.False(t, ok)
}

// --- Persistence ---

func TestSaveAndLoad_JSON(t *testing.T) {
	cat := sampleCatalog(t)
	path := filepath.Join(t.TempDir(), "out", "docs.json")

	require.NoError(t, cat.SaveToFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "["), "json output is the module array")

	loaded, idx, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cat.Modules, loaded.Modules)
	assert.NotNil(t, idx.ModuleByName["svelte/store"])
}

func TestSaveAndLoad_JSModule(t *testing.T) {
	cat := sampleCatalog(t)
	path := filepath.Join(t.TempDir(), "type-info.js")

	require.NoError(t, cat.SaveToFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "export const modules = ["))
	assert.True(t, strings.HasSuffix(string(data), "];\n"))

	loaded, _, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cat.Modules, loaded.Modules)
}

func TestSaveToFile_UnsupportedExtension(t *testing.T) {
	cat := sampleCatalog(t)
	err := cat.SaveToFile(filepath.Join(t.TempDir(), "docs.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output extension")
}

func TestLoadFromBytes_Invalid(t *testing.T) {
	_, _, err := LoadFromBytes([]byte("{not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse catalog JSON")

	_, _, err = LoadFromBytes([]byte(`[{"name":"b"},{"name":"a"}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog validation failed")
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read catalog file")
}
