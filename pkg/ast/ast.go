// Package ast defines the parser-neutral view of a declaration source that the
// extractor consumes.
//
// A parser binding only has to report statement kinds, the export marker,
// byte offsets into the exact source text and the attached JSDoc blocks. No
// parser-internal types cross this boundary, so the extractor can be driven by
// tree-sitter in production and by hand-built values in tests.
package ast

import "github.com/gnana997/apidoc/pkg/jsdoc"

// DeclKind is the closed set of declaration shapes the extractor understands.
type DeclKind int

const (
	// DeclUnsupported is any statement shape outside the documented dialect
	// (enums, import aliases, expression statements, ...).
	DeclUnsupported DeclKind = iota
	DeclClass
	DeclInterface
	DeclTypeAlias
	DeclNamespace
	DeclVariable
	DeclFunction
)

// String returns the kind name used in logs.
func (k DeclKind) String() string {
	switch k {
	case DeclClass:
		return "class"
	case DeclInterface:
		return "interface"
	case DeclTypeAlias:
		return "type"
	case DeclNamespace:
		return "namespace"
	case DeclVariable:
		return "variable"
	case DeclFunction:
		return "function"
	default:
		return "unsupported"
	}
}

// IsValue reports whether declarations of this kind are routed to a module's
// value exports rather than its types.
func (k DeclKind) IsValue() bool {
	return k == DeclVariable || k == DeclFunction
}

// DocComment is one `/** ... */` block attached to a statement or member.
type DocComment interface {
	// Start is the byte offset of the opening `/**`.
	Start() int
	// End is the byte offset just past the closing `*/`.
	End() int
	// Block is the parsed description and tags.
	Block() *jsdoc.Block
}

// Statement is a top-level statement of a compilation unit.
type Statement interface {
	Kind() DeclKind
	// Exported reports whether the statement carries an explicit export marker.
	Exported() bool
	// Name returns the bindable name, or false when there is none.
	Name() (string, bool)
	// Start is the byte offset of the statement's first token (after any
	// leading doc comments).
	Start() int
	// End is the byte offset just past the statement.
	End() int
	// Docs returns the attached doc blocks in source order.
	Docs() []DocComment
	// Members returns the direct members of an interface body. It is empty for
	// every other kind.
	Members() []Member
}

// Member is one member of an interface body or of an inline object-literal type.
type Member interface {
	Name() (string, bool)
	// Pos is the full start of the member, including its leading doc blocks.
	Pos() int
	// Start is the byte offset of the member's own first token.
	Start() int
	// End is the byte offset just past the member, including its `;` or `,`
	// terminator when one is present.
	End() int
	Docs() []DocComment
	// ObjectMembers returns the members of the member's type when that type is
	// an inline object literal. The bool is false for every other member.
	ObjectMembers() ([]Member, bool)
}

// Unit is one parsed compilation unit.
type Unit struct {
	// Source is the exact text all offsets refer to.
	Source string
	// Statements are the top-level statements in source order.
	Statements []Statement
	// ModuleDoc is the module-level doc block (`@packageDocumentation`,
	// `@module` or `@fileoverview`), or nil.
	ModuleDoc *jsdoc.Block
	// HasErrors reports whether the parser recovered from syntax errors.
	HasErrors bool
}
