package format

import (
	"strings"
)

// Canonical is the builtin formatter.
//
// It re-indents by bracket depth, normalizes quotes and trailing commas, trims
// trailing whitespace and collapses runs of blank lines. It never wraps long
// lines; PrintWidth is only honored by the prettier engine. Output is
// idempotent: formatting formatted text returns it unchanged.
type Canonical struct {
	opts Options
	unit string
}

// NewCanonical creates the builtin formatter.
func NewCanonical(opts Options) *Canonical {
	unit := "\t"
	if !opts.UseTabs {
		w := opts.TabWidth
		if w <= 0 {
			w = 2
		}
		unit = strings.Repeat(" ", w)
	}
	return &Canonical{opts: opts, unit: unit}
}

// Format implements Formatter. It never fails.
func (c *Canonical) Format(code string) (string, error) {
	code = strings.ReplaceAll(code, "\r\n", "\n")
	code = c.rewriteTokens(code)
	return c.reindent(code), nil
}

// rewriteTokens converts string quotes and drops trailing commas, leaving
// comments and template literals untouched.
func (c *Canonical) rewriteTokens(src string) string {
	var b strings.Builder
	b.Grow(len(src))

	for i := 0; i < len(src); {
		ch := src[i]
		switch {
		case ch == '/' && i+1 < len(src) && src[i+1] == '/':
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				end = len(src) - i
			}
			b.WriteString(src[i : i+end])
			i += end

		case ch == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				b.WriteString(src[i:])
				i = len(src)
				continue
			}
			b.WriteString(src[i : i+2+end+2])
			i += 2 + end + 2

		case ch == '"' || ch == '\'':
			end := scanString(src, i)
			lit := src[i:end]
			if ch == '"' && c.opts.SingleQuote {
				lit = toSingleQuotes(lit)
			}
			b.WriteString(lit)
			i = end

		case ch == '`':
			end := scanString(src, i)
			b.WriteString(src[i:end])
			i = end

		case ch == ',' && c.dropsTrailingCommas():
			j := i + 1
			for j < len(src) && isSpace(src[j]) {
				j++
			}
			if j < len(src) && strings.IndexByte("}])", src[j]) >= 0 {
				i++
				continue
			}
			b.WriteByte(ch)
			i++

		default:
			b.WriteByte(ch)
			i++
		}
	}
	return b.String()
}

func (c *Canonical) dropsTrailingCommas() bool {
	return c.opts.TrailingComma == "" || c.opts.TrailingComma == "none"
}

// lexState carries multi-line constructs from one line to the next.
type lexState struct {
	depth    int
	comment  bool // inside /* */
	template bool // inside a template literal
}

func (c *Canonical) reindent(src string) string {
	lines := strings.Split(src, "\n")
	out := make([]string, 0, len(lines))
	st := lexState{}

	for _, line := range lines {
		if st.template {
			out = append(out, strings.TrimRight(line, " \t"))
			st = scanLine(line, st)
			continue
		}

		text := strings.TrimSpace(line)
		if text == "" {
			out = append(out, "")
			continue
		}

		level := st.depth
		if st.comment {
			if strings.HasPrefix(text, "*") {
				text = " " + text
			}
		} else {
			level -= leadingClosers(text)
			if strings.HasPrefix(text, "| ") || strings.HasPrefix(text, "& ") {
				level++
			}
		}
		if level < 0 {
			level = 0
		}

		out = append(out, strings.Repeat(c.unit, level)+text)
		st = scanLine(text, st)
	}

	return strings.Join(collapseBlankLines(out), "\n")
}

// scanLine updates bracket depth and multi-line state for one line.
func scanLine(line string, st lexState) lexState {
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case st.comment:
			if ch == '*' && i+1 < len(line) && line[i+1] == '/' {
				st.comment = false
				i++
			}
		case st.template:
			if ch == '\\' {
				i++
			} else if ch == '`' {
				st.template = false
			}
		case ch == '/' && i+1 < len(line) && line[i+1] == '/':
			return st
		case ch == '/' && i+1 < len(line) && line[i+1] == '*':
			st.comment = true
			i++
		case ch == '"' || ch == '\'':
			i = scanString(line, i) - 1
		case ch == '`':
			st.template = true
		case ch == '{' || ch == '[' || ch == '(':
			st.depth++
		case ch == '}' || ch == ']' || ch == ')':
			if st.depth > 0 {
				st.depth--
			}
		}
	}
	return st
}

// scanString returns the index just past the literal opened at src[start].
// Single and double quoted literals also stop at a newline.
func scanString(src string, start int) int {
	quote := src[start]
	for j := start + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		case '\n':
			if quote != '`' {
				return j
			}
		}
	}
	return len(src)
}

func toSingleQuotes(lit string) string {
	if len(lit) < 2 || lit[len(lit)-1] != '"' {
		return lit
	}
	inner := lit[1 : len(lit)-1]
	if strings.Contains(inner, "'") {
		return lit
	}
	return "'" + strings.ReplaceAll(inner, `\"`, `"`) + "'"
}

func leadingClosers(text string) int {
	n := 0
	for _, ch := range text {
		if ch != '}' && ch != ']' && ch != ')' {
			break
		}
		n++
	}
	return n
}

func collapseBlankLines(lines []string) []string {
	out := lines[:0]
	blank := false
	for _, l := range lines {
		if l == "" {
			if blank || len(out) == 0 {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, l)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}
