package ast

import "github.com/gnana997/apidoc/pkg/jsdoc"

// Doc is the plain DocComment implementation filled in by parser adapters.
type Doc struct {
	StartByte int
	EndByte   int
	Parsed    *jsdoc.Block
}

func (d *Doc) Start() int          { return d.StartByte }
func (d *Doc) End() int            { return d.EndByte }
func (d *Doc) Block() *jsdoc.Block { return d.Parsed }

// Decl is the plain Statement implementation.
type Decl struct {
	DeclKind   DeclKind
	IsExported bool
	// Ident is the bindable name; empty when HasName is false.
	Ident     string
	HasName   bool
	StartByte int
	EndByte   int
	DocBlocks []DocComment
	Fields    []Member
}

func (d *Decl) Kind() DeclKind       { return d.DeclKind }
func (d *Decl) Exported() bool       { return d.IsExported }
func (d *Decl) Name() (string, bool) { return d.Ident, d.HasName }
func (d *Decl) Start() int           { return d.StartByte }
func (d *Decl) End() int             { return d.EndByte }
func (d *Decl) Docs() []DocComment   { return d.DocBlocks }
func (d *Decl) Members() []Member    { return d.Fields }

// Field is the plain Member implementation.
type Field struct {
	Ident     string
	HasName   bool
	PosByte   int
	StartByte int
	EndByte   int
	DocBlocks []DocComment
	// Object holds the members of an inline object-literal type.
	Object   []Member
	IsObject bool
}

func (f *Field) Name() (string, bool) { return f.Ident, f.HasName }
func (f *Field) Pos() int             { return f.PosByte }
func (f *Field) Start() int           { return f.StartByte }
func (f *Field) End() int             { return f.EndByte }
func (f *Field) Docs() []DocComment   { return f.DocBlocks }

func (f *Field) ObjectMembers() ([]Member, bool) {
	return f.Object, f.IsObject
}

// FirstBlock returns the first attached doc block, or nil.
func FirstBlock(docs []DocComment) *jsdoc.Block {
	if len(docs) == 0 {
		return nil
	}
	return docs[0].Block()
}

// HasDocs reports whether any of the members carries a doc block.
func HasDocs(members []Member) bool {
	for _, m := range members {
		if len(m.Docs()) > 0 {
			return true
		}
	}
	return false
}
