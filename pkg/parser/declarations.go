package parser

import (
	"regexp"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/apidoc/pkg/ast"
	"github.com/gnana997/apidoc/pkg/jsdoc"
)

// declarationKinds maps tree-sitter node kinds to the declaration shapes the
// extractor understands. Anything missing here is ast.DeclUnsupported.
var declarationKinds = map[string]ast.DeclKind{
	"class_declaration":              ast.DeclClass,
	"abstract_class_declaration":     ast.DeclClass,
	"class":                          ast.DeclClass,
	"interface_declaration":          ast.DeclInterface,
	"type_alias_declaration":         ast.DeclTypeAlias,
	"internal_module":                ast.DeclNamespace,
	"module":                         ast.DeclNamespace,
	"lexical_declaration":            ast.DeclVariable,
	"variable_declaration":           ast.DeclVariable,
	"function_declaration":           ast.DeclFunction,
	"function_signature":             ast.DeclFunction,
	"generator_function_declaration": ast.DeclFunction,
	"function_expression":            ast.DeclFunction,
	"generator_function":             ast.DeclFunction,
}

// anonymousDefaultRe matches `export default function (`, which has no name.
// The grammar rejects the bodiless .d.ts form of it outright.
var anonymousDefaultRe = regexp.MustCompile(`export(\s+)default(\s+)function(\s*)\(`)

// placeholderNames rewrites every anonymous default function head in place to
// `export function ____(`, keeping the length so byte offsets still match the
// original source. It returns the rewritten copy and the offsets where the
// placeholder names start, or the source itself when nothing matched.
func placeholderNames(source []byte) ([]byte, map[int]bool) {
	matches := anonymousDefaultRe.FindAllSubmatchIndex(source, -1)
	if len(matches) == 0 {
		return source, nil
	}

	out := make([]byte, len(source))
	copy(out, source)
	names := make(map[int]bool, len(matches))
	for _, m := range matches {
		head := m[3] // end of the whitespace after `export`
		end := m[1]  // just past `(`
		fill := end - head - len("function ") - 1
		rewritten := "function " + strings.Repeat("_", fill) + "("
		copy(out[head:end], rewritten)
		names[head+len("function ")] = true
	}
	return out, names
}

// ParseDeclarations parses a declaration source and converts its top-level
// statements into plain ast values. The tree is closed before returning, so
// the result holds no parser memory.
func (pm *ParserManager) ParseDeclarations(source []byte, dialect Dialect) (*ast.Unit, error) {
	parsed, placeholders := placeholderNames(source)
	tree, err := pm.Parse(parsed, dialect)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	b := &unitBuilder{source: source, placeholders: placeholders}

	unit := &ast.Unit{
		Source:    string(source),
		HasErrors: root.HasError(),
	}

	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() == "comment" {
			if unit.ModuleDoc == nil {
				if block := b.docBlock(child); block != nil && block.IsModuleDoc() {
					unit.ModuleDoc = block
				}
			}
			continue
		}
		unit.Statements = append(unit.Statements, b.statement(root, i, child))
	}
	return unit, nil
}

type unitBuilder struct {
	// source is the original text; node offsets are valid in it.
	source []byte
	// placeholders holds the start offsets of names invented for anonymous
	// default functions.
	placeholders map[int]bool
}

func (b *unitBuilder) text(node *ts.Node) string {
	return node.Utf8Text(b.source)
}

// docBlock parses a comment node when it is a `/**` block.
func (b *unitBuilder) docBlock(node *ts.Node) *jsdoc.Block {
	raw := b.text(node)
	if !jsdoc.IsDocComment(raw) {
		return nil
	}
	return jsdoc.Parse(raw)
}

func (b *unitBuilder) statement(parent *ts.Node, index uint, node *ts.Node) *ast.Decl {
	decl := &ast.Decl{
		StartByte: int(node.StartByte()),
		EndByte:   int(node.EndByte()),
	}

	inner := node
	if node.Kind() == "export_statement" {
		decl.IsExported = true
		inner = node.ChildByFieldName("declaration")
		if inner == nil {
			inner = node.ChildByFieldName("value")
		}
	}
	inner = unwrapDeclaration(inner)
	if inner == nil {
		decl.DeclKind = ast.DeclUnsupported
	} else {
		decl.DeclKind = declarationKinds[inner.Kind()]
	}

	// Module-level blocks describe the file, not the statement after them.
	docs, _ := b.leadingDocs(parent, index)
	for _, d := range docs {
		if d.Block().IsModuleDoc() {
			continue
		}
		decl.DocBlocks = append(decl.DocBlocks, d)
	}

	if decl.DeclKind == ast.DeclUnsupported {
		return decl
	}

	decl.Ident, decl.HasName = b.declarationName(inner)
	if decl.DeclKind == ast.DeclInterface {
		if body := inner.ChildByFieldName("body"); body != nil {
			decl.Fields = b.members(body)
		}
	}
	return decl
}

// unwrapDeclaration looks through `declare` and expression wrappers to the
// declaration they carry.
func unwrapDeclaration(node *ts.Node) *ts.Node {
	for node != nil {
		switch node.Kind() {
		case "ambient_declaration", "expression_statement":
			var next *ts.Node
			for i := uint(0); i < node.NamedChildCount(); i++ {
				child := node.NamedChild(i)
				if child != nil && child.Kind() != "comment" {
					next = child
					break
				}
			}
			node = next
		default:
			return node
		}
	}
	return nil
}

func (b *unitBuilder) declarationName(node *ts.Node) (string, bool) {
	switch node.Kind() {
	case "lexical_declaration", "variable_declaration":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if child != nil && child.Kind() == "variable_declarator" {
				return b.nameOf(child)
			}
		}
		return "", false
	default:
		return b.nameOf(node)
	}
}

func (b *unitBuilder) nameOf(node *ts.Node) (string, bool) {
	name := node.ChildByFieldName("name")
	if name == nil || b.placeholders[int(name.StartByte())] {
		return "", false
	}
	text := b.text(name)
	if name.Kind() == "string" {
		text = strings.Trim(text, `"'`)
	}
	return text, true
}

// leadingDocs collects the comment siblings directly before parent's child at
// index. It returns the `/**` blocks in source order and the start of the
// earliest comment of any kind, or -1 when there is none.
func (b *unitBuilder) leadingDocs(parent *ts.Node, index uint) ([]ast.DocComment, int) {
	var docs []ast.DocComment
	pos := -1
	for i := int(index) - 1; i >= 0; i-- {
		prev := parent.Child(uint(i))
		if prev == nil || prev.Kind() != "comment" {
			break
		}
		pos = int(prev.StartByte())
		if block := b.docBlock(prev); block != nil {
			docs = append(docs, &ast.Doc{
				StartByte: int(prev.StartByte()),
				EndByte:   int(prev.EndByte()),
				Parsed:    block,
			})
		}
	}
	for l, r := 0, len(docs)-1; l < r; l, r = l+1, r-1 {
		docs[l], docs[r] = docs[r], docs[l]
	}
	return docs, pos
}

// members converts the members of an interface body or object type.
func (b *unitBuilder) members(body *ts.Node) []ast.Member {
	var out []ast.Member
	count := body.ChildCount()
	for i := uint(0); i < count; i++ {
		child := body.Child(i)
		if child == nil || !child.IsNamed() || child.Kind() == "comment" {
			continue
		}
		field := &ast.Field{
			StartByte: int(child.StartByte()),
			EndByte:   int(child.EndByte()),
		}
		docs, pos := b.leadingDocs(body, i)
		field.DocBlocks = docs
		field.PosByte = field.StartByte
		if pos >= 0 {
			field.PosByte = pos
		}

		if i+1 < count {
			if next := body.Child(i + 1); next != nil && !next.IsNamed() {
				if k := next.Kind(); k == ";" || k == "," {
					field.EndByte = int(next.EndByte())
				}
			}
		}

		switch child.Kind() {
		case "property_signature", "method_signature", "abstract_method_signature":
			field.Ident, field.HasName = b.nameOf(child)
		}
		if child.Kind() == "property_signature" {
			if object := objectType(child); object != nil {
				field.IsObject = true
				field.Object = b.members(object)
			}
		}
		out = append(out, field)
	}
	return out
}

// objectType returns the inline object-literal type of a property signature.
func objectType(prop *ts.Node) *ts.Node {
	annotation := prop.ChildByFieldName("type")
	if annotation == nil {
		return nil
	}
	for i := uint(0); i < annotation.NamedChildCount(); i++ {
		child := annotation.NamedChild(i)
		if child != nil && child.Kind() == "object_type" {
			return child
		}
	}
	return nil
}
