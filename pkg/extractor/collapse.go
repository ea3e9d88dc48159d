package extractor

import (
	"strings"

	"github.com/gnana997/apidoc/pkg/format"
)

// collapseBody returns source[start:end] with the interface body between
// first and last replaced by the elision marker.
//
// first is the full start of the first member (before its doc blocks) and
// last is the end of the last member. The opening brace is the nearest `{`
// before first and the closing brace the nearest `}` after last; the text
// scanned between the braces and the members is assumed to be trivia, so a
// brace inside a comment there is matched as if it were real. When either
// brace is missing the text is returned unchanged.
func collapseBody(source string, start, end, first, last int) string {
	open := strings.LastIndexByte(source[start:first], '{')
	if open < 0 {
		return source[start:end]
	}
	open += start

	closing := strings.IndexByte(source[last:end], '}')
	if closing < 0 {
		return source[start:end]
	}
	closing += last

	return source[start:open+1] + format.ElisionMarker + source[closing:end]
}

// collapseAfterBrace cuts a member snippet after its first `{` and closes it
// with the elision marker: `a: {/*…*/}`.
func collapseAfterBrace(snippet string) string {
	i := strings.IndexByte(snippet, '{')
	if i < 0 {
		return snippet
	}
	return snippet[:i+1] + format.ElisionMarker + "}"
}

// dedent strips up to depth leading tabs from every line but the first, which
// starts at the member's own first token.
func dedent(s string, depth int) string {
	if depth <= 0 || !strings.Contains(s, "\n") {
		return s
	}
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		line := lines[i]
		for n := 0; n < depth && strings.HasPrefix(line, "\t"); n++ {
			line = line[1:]
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
