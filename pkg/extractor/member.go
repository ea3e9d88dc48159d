package extractor

import (
	"github.com/gnana997/apidoc/pkg/ast"
	"github.com/gnana997/apidoc/pkg/catalog"
)

// unpackMember documents one member nested depth levels deep in its
// top-level declaration. parent names the enclosing declaration or member for
// diagnostics.
func (e *Extractor) unpackMember(source string, m ast.Member, depth int, parent string, r *Result) catalog.Member {
	name, _ := m.Name()
	subject := parent + "." + name

	comment := e.normalizer.Normalize(ast.FirstBlock(m.Docs()), subject)
	r.Diagnostics = append(r.Diagnostics, comment.Diagnostics...)

	member := catalog.Member{
		Name:     name,
		Comment:  comment.Text,
		Bullets:  comment.Bullets,
		Children: []catalog.Member{},
		Snippet:  dedent(source[m.Start():m.End()], depth),
	}

	if nested, ok := m.ObjectMembers(); ok && ast.HasDocs(nested) {
		member.Snippet = collapseAfterBrace(member.Snippet)
		for _, n := range nested {
			member.Children = append(member.Children, e.unpackMember(source, n, depth+1, subject, r))
		}
	}

	return member
}
