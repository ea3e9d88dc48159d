// Package jsdoc parses JSDoc comment blocks and normalizes them into the
// description and bullet lines rendered by the documentation site.
package jsdoc

import (
	"strings"
)

// Tag is one structured `@tag` of a doc block.
type Tag struct {
	// Name is the tag name without the leading '@' (e.g. "param").
	Name string
	// Param is the parameter or property name for @param-like tags.
	Param string
	// Type is the `{...}` type expression when one was written.
	Type string
	// Text is the free text after the name (and parameter), possibly spanning
	// several lines.
	Text string
}

// Block is a parsed `/** ... */` comment.
type Block struct {
	Description string
	Tags        []Tag
}

// HasTag reports whether the block carries a tag with the given name.
func (b *Block) HasTag(name string) bool {
	if b == nil {
		return false
	}
	for _, t := range b.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

// IsModuleDoc reports whether the block documents a whole module rather than
// the declaration that happens to follow it.
func (b *Block) IsModuleDoc() bool {
	return b.HasTag("packageDocumentation") || b.HasTag("module") || b.HasTag("fileoverview")
}

// paramTags name a parameter or property right after the optional type.
var paramTags = map[string]bool{
	"param":    true,
	"arg":      true,
	"argument": true,
	"prop":     true,
	"property": true,
	"template": true,
}

// typedTags may start with a `{T}` type expression. Any other tag keeps a
// leading brace in its text, so `@default { duration: 400 }` stays a value.
var typedTags = map[string]bool{
	"param":    true,
	"arg":      true,
	"argument": true,
	"prop":     true,
	"property": true,
	"returns":  true,
	"return":   true,
	"type":     true,
	"typedef":  true,
	"template": true,
	"throws":   true,
}

// IsDocComment reports whether raw comment text is a JSDoc block (`/**` but
// not the empty `/**/`).
func IsDocComment(raw string) bool {
	return strings.HasPrefix(raw, "/**") && !strings.HasPrefix(raw, "/**/")
}

// Parse parses raw comment text, including the `/**` and `*/` delimiters.
//
// The leading `*` gutter and one following space are stripped from every line;
// indentation beyond the gutter is kept so nested lists survive. The
// description ends at the first line starting with a tag.
func Parse(raw string) *Block {
	body := strings.TrimSpace(raw)
	body = strings.TrimPrefix(body, "/**")
	body = strings.TrimSuffix(body, "*/")

	block := &Block{}
	var desc []string
	var cur *Tag
	var curLines []string

	flush := func() {
		if cur == nil {
			return
		}
		extra := strings.Trim(strings.Join(curLines, "\n"), "\n")
		if extra != "" {
			if cur.Text != "" {
				cur.Text += "\n" + extra
			} else {
				cur.Text = extra
			}
		}
		cur.Text = strings.TrimSpace(cur.Text)
		block.Tags = append(block.Tags, *cur)
		cur = nil
		curLines = nil
	}

	for i, line := range strings.Split(body, "\n") {
		line = stripGutter(line, i == 0)
		trimmed := strings.TrimSpace(line)

		if isTagStart(trimmed) {
			flush()
			tag := parseTagLine(trimmed[1:])
			cur = &tag
			continue
		}

		if cur != nil {
			curLines = append(curLines, line)
		} else {
			desc = append(desc, line)
		}
	}
	flush()

	block.Description = strings.Trim(strings.Join(desc, "\n"), "\n")
	return block
}

// stripGutter removes the ` * ` prefix of a comment line.
func stripGutter(line string, first bool) string {
	line = strings.TrimRight(line, " \t\r")
	if first {
		return strings.TrimLeft(line, " \t")
	}
	rest := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(rest, "*") {
		return rest
	}
	rest = rest[1:]
	if strings.HasPrefix(rest, " ") {
		rest = rest[1:]
	}
	return rest
}

func isTagStart(s string) bool {
	if len(s) < 2 || s[0] != '@' {
		return false
	}
	c := s[1]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// parseTagLine parses the first line of a tag, without the leading '@'.
func parseTagLine(s string) Tag {
	name, rest := cutWord(s)
	tag := Tag{Name: name}

	rest = strings.TrimSpace(rest)
	if typedTags[name] && strings.HasPrefix(rest, "{") {
		if end := matchingBrace(rest); end > 0 {
			tag.Type = strings.TrimSpace(rest[1:end])
			rest = strings.TrimSpace(rest[end+1:])
		}
	}

	if paramTags[name] && rest != "" {
		var param string
		if strings.HasPrefix(rest, "[") {
			end := strings.Index(rest, "]")
			if end < 0 {
				end = len(rest) - 1
			}
			param = rest[1:end]
			if eq := strings.Index(param, "="); eq >= 0 {
				param = param[:eq]
			}
			rest = rest[end+1:]
		} else {
			param, rest = cutWord(rest)
		}
		tag.Param = strings.TrimSpace(param)
		rest = strings.TrimSpace(rest)
		if rest == "-" {
			rest = ""
		}
		rest = strings.TrimPrefix(rest, "- ")
	}

	tag.Text = strings.TrimSpace(rest)
	return tag
}

func cutWord(s string) (string, string) {
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

// matchingBrace returns the index of the '}' closing the '{' at s[0].
func matchingBrace(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
