package catalog

// Declaration is one documented top-level export of a module.
type Declaration struct {
	// Name is empty when the declaration has no bindable name
	// (e.g. `export default class {}`).
	Name     string   `json:"name,omitempty"`
	Comment  string   `json:"comment"`
	Snippet  string   `json:"snippet"`
	Children []Member `json:"children"`
}

// Member is one member of an interface or of an inline object-literal type.
type Member struct {
	Name     string   `json:"name,omitempty"`
	Comment  string   `json:"comment"`
	Snippet  string   `json:"snippet"`
	Bullets  []string `json:"bullets"`
	Children []Member `json:"children"`
}

// Module is the documentation record of one logical module.
type Module struct {
	Name    string `json:"name"`
	Comment string `json:"comment"`
	// Exports holds variable and function declarations.
	Exports []Declaration `json:"exports"`
	// Types holds class, interface, type alias and namespace declarations.
	Types []Declaration `json:"types"`
	// Exempt marks a module supplied pre-formed instead of extracted.
	Exempt bool `json:"exempt,omitempty"`
}

// Catalog is the generated documentation artifact: every module, sorted by name.
type Catalog struct {
	Modules []Module `json:"modules"`
}

// Index provides O(1) lookups into the catalog.
// Built by BuildIndex after validation passes.
type Index struct {
	// ModuleByName maps module name -> *Module.
	ModuleByName map[string]*Module

	// DeclarationByKey maps "module#name" -> *Declaration.
	DeclarationByKey map[string]*Declaration
}

// DeclarationKey returns the Index key of a declaration.
func DeclarationKey(module, name string) string {
	return module + "#" + name
}
