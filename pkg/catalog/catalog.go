package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// jsModulePrefix introduces the generated module form of the artifact.
const jsModulePrefix = "export const modules = "

// Accumulate is the fold step of a generation run: it returns mods with m
// appended. Modules are sorted once, by Finalize.
func Accumulate(mods []Module, m Module) []Module {
	return append(mods, m)
}

// Finalize sorts the accumulated modules by name and rejects duplicates.
// Nil slices are replaced by empty ones so the artifact never carries null.
func Finalize(mods []Module) (*Catalog, error) {
	out := make([]Module, len(mods))
	copy(out, mods)

	slices.SortStableFunc(out, func(a, b Module) int {
		return strings.Compare(a.Name, b.Name)
	})

	for i := range out {
		if i > 0 && out[i].Name == out[i-1].Name {
			return nil, fmt.Errorf("duplicate module %q", out[i].Name)
		}
		out[i].fillEmpty()
	}
	return &Catalog{Modules: out}, nil
}

// SortDeclarations sorts declarations by name, ordinal and ascending.
// Declarations with equal names keep their source order.
func SortDeclarations(decls []Declaration) {
	slices.SortStableFunc(decls, func(a, b Declaration) int {
		return strings.Compare(a.Name, b.Name)
	})
}

func (m *Module) fillEmpty() {
	if m.Exports == nil {
		m.Exports = []Declaration{}
	}
	if m.Types == nil {
		m.Types = []Declaration{}
	}
	for i := range m.Exports {
		m.Exports[i].Children = fillMembers(m.Exports[i].Children)
	}
	for i := range m.Types {
		m.Types[i].Children = fillMembers(m.Types[i].Children)
	}
}

func fillMembers(members []Member) []Member {
	if members == nil {
		return []Member{}
	}
	for i := range members {
		if members[i].Bullets == nil {
			members[i].Bullets = []string{}
		}
		members[i].Children = fillMembers(members[i].Children)
	}
	return members
}

// Validate checks the catalog for internal consistency.
// Returns a slice of validation errors (empty slice if valid).
func (c *Catalog) Validate() []error {
	var errs []error

	seen := make(map[string]bool, len(c.Modules))
	for i, mod := range c.Modules {
		if mod.Name == "" {
			errs = append(errs, fmt.Errorf("modules[%d]: name is required", i))
			continue
		}
		if seen[mod.Name] {
			errs = append(errs, fmt.Errorf("module %q: duplicate module name", mod.Name))
			continue
		}
		seen[mod.Name] = true

		if i > 0 && c.Modules[i-1].Name > mod.Name {
			errs = append(errs, fmt.Errorf("module %q: out of order after %q", mod.Name, c.Modules[i-1].Name))
		}

		errs = append(errs, validateDeclarations(mod.Name, "exports", mod.Exports)...)
		errs = append(errs, validateDeclarations(mod.Name, "types", mod.Types)...)
	}

	return errs
}

func validateDeclarations(module, field string, decls []Declaration) []error {
	var errs []error
	for i, d := range decls {
		if i > 0 && decls[i-1].Name > d.Name {
			errs = append(errs, fmt.Errorf("module %q %s[%d]: %q out of order after %q", module, field, i, d.Name, decls[i-1].Name))
		}
		if d.Snippet == "" {
			errs = append(errs, fmt.Errorf("module %q %s[%d]: snippet is required", module, field, i))
		}
	}
	return errs
}

// BuildIndex creates lookup maps for fast access.
// Should be called after Validate() passes.
func (c *Catalog) BuildIndex() *Index {
	idx := &Index{
		ModuleByName:     make(map[string]*Module, len(c.Modules)),
		DeclarationByKey: make(map[string]*Declaration),
	}

	for i := range c.Modules {
		mod := &c.Modules[i]
		idx.ModuleByName[mod.Name] = mod

		for _, decls := range [][]Declaration{mod.Exports, mod.Types} {
			for j := range decls {
				d := &decls[j]
				if d.Name == "" {
					continue
				}
				key := DeclarationKey(mod.Name, d.Name)
				if _, ok := idx.DeclarationByKey[key]; !ok {
					idx.DeclarationByKey[key] = d
				}
			}
		}
	}

	return idx
}

// Marshal encodes the catalog in the format selected by the path extension:
// indented JSON for `.json`, a generated module exporting `modules` for
// `.js`, `.mjs` and `.ts`.
func (c *Catalog) Marshal(path string) ([]byte, error) {
	data, err := json.MarshalIndent(c.Modules, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return append(data, '\n'), nil
	case ".js", ".mjs", ".ts":
		var buf bytes.Buffer
		buf.WriteString(jsModulePrefix)
		buf.Write(data)
		buf.WriteString(";\n")
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported output extension %q (want .json, .js, .mjs or .ts)", filepath.Ext(path))
	}
}

// SaveToFile writes the catalog to path, creating parent directories.
// The file is written to a temporary sibling first and renamed into place.
func (c *Catalog) SaveToFile(path string) error {
	data, err := c.Marshal(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace catalog file: %w", err)
	}
	return nil
}

// LoadFromFile loads a catalog file, validates it, and builds the index.
func LoadFromFile(path string) (*Catalog, *Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses a catalog in either of the forms written by Marshal,
// validates it, and builds the index.
func LoadFromBytes(data []byte) (*Catalog, *Index, error) {
	data = bytes.TrimSpace(data)
	if rest, ok := bytes.CutPrefix(data, []byte(jsModulePrefix)); ok {
		data = bytes.TrimSuffix(bytes.TrimSpace(rest), []byte(";"))
	}

	var modules []Module
	if err := json.Unmarshal(data, &modules); err != nil {
		return nil, nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}

	catalog := &Catalog{Modules: modules}
	if errs := catalog.Validate(); len(errs) > 0 {
		return nil, nil, fmt.Errorf("catalog validation failed: %w", errors.Join(errs...))
	}

	for i := range catalog.Modules {
		catalog.Modules[i].fillEmpty()
	}
	index := catalog.BuildIndex()
	return catalog, index, nil
}
