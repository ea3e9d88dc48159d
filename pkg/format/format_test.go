package format

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical_Reindent(t *testing.T) {
	f := NewCanonical(DefaultOptions())

	in := "class Store {\n    get(): number;\n  set(v: number): void;\n        }"
	out, err := f.Format(in)
	require.NoError(t, err)
	assert.Equal(t, "class Store {\n\tget(): number;\n\tset(v: number): void;\n}", out)
}

func TestCanonical_Quotes(t *testing.T) {
	f := NewCanonical(DefaultOptions())

	out, _ := f.Format(`type Mode = "light" | "dark";`)
	assert.Equal(t, `type Mode = 'light' | 'dark';`, out)

	out, _ = f.Format(`type Q = "it's";`)
	assert.Equal(t, `type Q = "it's";`, out, "strings containing a single quote keep double quotes")

	out, _ = f.Format(`type E = "say \"hi\"";`)
	assert.Equal(t, `type E = 'say "hi"';`, out)
}

func TestCanonical_TrailingCommas(t *testing.T) {
	f := NewCanonical(DefaultOptions())

	out, _ := f.Format("function f(\n\ta: string,\n\tb: number,\n): void;")
	assert.Equal(t, "function f(\n\ta: string,\n\tb: number\n): void;", out)

	out, _ = f.Format("type T = [a, b,];")
	assert.Equal(t, "type T = [a, b];", out)
}

func TestCanonical_LeavesCommentsAndTemplates(t *testing.T) {
	f := NewCanonical(DefaultOptions())

	in := "type A = {\n/**\n* \"quoted\", }\n*/\nb: `x, }`;\n};"
	out, _ := f.Format(in)
	assert.Equal(t, "type A = {\n\t/**\n\t * \"quoted\", }\n\t */\n\tb: `x, }`;\n};", out)
}

func TestCanonical_UnionContinuation(t *testing.T) {
	f := NewCanonical(DefaultOptions())

	out, _ := f.Format("type Mode =\n| 'a'\n| 'b';")
	assert.Equal(t, "type Mode =\n\t| 'a'\n\t| 'b';", out)
}

func TestCanonical_BlankLines(t *testing.T) {
	f := NewCanonical(DefaultOptions())

	out, _ := f.Format("\n\nnamespace N {\n\n\n\tconst a: 1;\n}\n\n")
	assert.Equal(t, "namespace N {\n\n\tconst a: 1;\n}", out)
}

func TestCanonical_SpacesIndent(t *testing.T) {
	opts := DefaultOptions()
	opts.UseTabs = false
	opts.TabWidth = 4
	f := NewCanonical(opts)

	out, _ := f.Format("interface A {\nb: string;\n}")
	assert.Equal(t, "interface A {\n    b: string;\n}", out)
}

func TestCanonical_Idempotent(t *testing.T) {
	f := NewCanonical(DefaultOptions())

	inputs := []string{
		"interface Foo {/*…*/}",
		"function f(x: number): void {}",
		"class A {\n  constructor(options: {\n    target: Element,\n    props?: \"x\",\n  });\n}",
		"type T = {\n/** doc */\na: string; // trailing }\n};",
		"const s: `a\n  b`;",
	}
	for _, in := range inputs {
		once, err := f.Format(in)
		require.NoError(t, err)
		twice, err := f.Format(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "input: %q", in)
	}
}

func TestTightenElision(t *testing.T) {
	assert.Equal(t, "interface Foo {/*…*/}", TightenElision("interface Foo {\n\t/*…*/\n}"))
	assert.Equal(t, "interface Foo {/*…*/}", TightenElision("interface Foo { /*…*/ }"))
	assert.Equal(t, "type A = string;", TightenElision("type A = string;"))
}

type countingFormatter struct {
	calls int
	err   error
}

func (c *countingFormatter) Format(code string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return "<" + code + ">", nil
}

func TestCached(t *testing.T) {
	inner := &countingFormatter{}
	c, err := NewCached(inner, 8)
	require.NoError(t, err)

	out, err := c.Format("a")
	require.NoError(t, err)
	assert.Equal(t, "<a>", out)

	out, _ = c.Format("a")
	assert.Equal(t, "<a>", out)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, c.Len())
}

func TestCached_DoesNotCacheErrors(t *testing.T) {
	inner := &countingFormatter{err: errors.New("boom")}
	c, err := NewCached(inner, 8)
	require.NoError(t, err)

	_, err = c.Format("a")
	require.Error(t, err)
	_, err = c.Format("a")
	require.Error(t, err)
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 0, c.Len())
}

func TestNew(t *testing.T) {
	f, err := New(Settings{Engine: EngineBuiltin, Options: DefaultOptions()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Canonical{}, f)

	f, err = New(DefaultSettings(), nil)
	require.NoError(t, err)
	assert.IsType(t, &Cached{}, f)

	_, err = New(Settings{Engine: "gofmt"}, nil)
	assert.Error(t, err)
}

func TestNew_PrettierFallsBackWhenMissing(t *testing.T) {
	s := DefaultSettings()
	s.Engine = EnginePrettier
	s.PrettierBin = "definitely-not-a-prettier-binary"
	s.CacheSize = 0

	f, err := New(s, nil)
	require.NoError(t, err)
	assert.IsType(t, &Canonical{}, f)
}

func TestPrettier_Args(t *testing.T) {
	p := &Prettier{bin: "prettier", opts: DefaultOptions()}
	assert.Equal(t, []string{
		"--stdin-filepath", "snippet.ts",
		"--parser", "typescript",
		"--print-width", "80",
		"--trailing-comma", "none",
		"--use-tabs",
		"--single-quote",
	}, p.Args())
}
