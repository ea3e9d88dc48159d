// Package extractor turns the exported declarations of a TypeScript
// declaration source into documentation records.
package extractor

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gnana997/apidoc/pkg/ast"
	"github.com/gnana997/apidoc/pkg/catalog"
	"github.com/gnana997/apidoc/pkg/format"
	"github.com/gnana997/apidoc/pkg/jsdoc"
	"github.com/gnana997/apidoc/pkg/parser"
)

// exportKeyword is skipped so snippets never repeat it.
const exportKeyword = "export"

// Extractor extracts documented declarations from parsed declaration sources.
//
// Extraction is a pure function of the source text and its statements; the
// Extractor only holds collaborators that are safe for concurrent use, so one
// instance serves every worker of a generation run.
//
// Usage:
//
//	extractor := NewExtractor(parserManager, formatter, logger)
//	result, err := extractor.ExtractFile(path, source)
//	if err != nil {
//	    return err
//	}
//	// Use result.Exports, result.Types, result.ModuleDoc
type Extractor struct {
	parserManager *parser.ParserManager
	formatter     format.Formatter
	normalizer    *jsdoc.Normalizer
	logger        *slog.Logger
}

// Result is the documentation extracted from one source.
type Result struct {
	// Exports holds variable and function declarations, sorted by name.
	Exports []catalog.Declaration
	// Types holds class, interface, type alias and namespace declarations,
	// sorted by name.
	Types []catalog.Declaration
	// Diagnostics lists doc tags that were dropped from the output.
	Diagnostics []jsdoc.Diagnostic
	// Skipped counts exported statements of an unsupported shape.
	Skipped int
}

// FileResult is a Result plus what the parser reports about the whole file.
type FileResult struct {
	*Result
	Path      string
	ModuleDoc *jsdoc.Block
	HasErrors bool
}

// NewExtractor creates an extractor.
//
// parserManager is only needed by ExtractFile. A nil formatter uses the
// builtin canonical formatter with default options; a nil logger uses
// slog.Default().
func NewExtractor(pm *parser.ParserManager, f format.Formatter, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if f == nil {
		f = format.NewCanonical(format.DefaultOptions())
	}
	return &Extractor{
		parserManager: pm,
		formatter:     f,
		normalizer:    jsdoc.NewNormalizer(logger),
		logger:        logger,
	}
}

// ExtractFile parses source and extracts its declarations.
func (e *Extractor) ExtractFile(path string, source []byte) (*FileResult, error) {
	if e.parserManager == nil {
		return nil, fmt.Errorf("extractor has no parser manager")
	}

	dialect := parser.DetectDialect(path)
	if dialect == parser.DialectUnknown {
		return nil, fmt.Errorf("unsupported source file: %s", path)
	}

	unit, err := e.parserManager.ParseDeclarations(source, dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if unit.HasErrors {
		e.logger.Warn("source has syntax errors, extracting recovered statements", "file", path)
	}

	result := e.Extract(unit.Source, unit.Statements)

	e.logger.Debug("extracted file",
		"file", path,
		"exports", len(result.Exports),
		"types", len(result.Types),
		"diagnostics", len(result.Diagnostics),
		"skipped", result.Skipped)

	return &FileResult{
		Result:    result,
		Path:      path,
		ModuleDoc: unit.ModuleDoc,
		HasErrors: unit.HasErrors,
	}, nil
}

// Extract documents every exported statement of one compilation unit.
//
// source must be exactly the text the statements were parsed from: all
// offsets are byte offsets into it.
func (e *Extractor) Extract(source string, statements []ast.Statement) *Result {
	r := &Result{
		Exports: []catalog.Declaration{},
		Types:   []catalog.Declaration{},
	}

	for _, stmt := range statements {
		if !stmt.Exported() {
			continue
		}
		if stmt.Kind() == ast.DeclUnsupported {
			r.Skipped++
			continue
		}

		decl := e.declaration(source, stmt, r)
		if stmt.Kind().IsValue() {
			r.Exports = append(r.Exports, decl)
		} else {
			r.Types = append(r.Types, decl)
		}
	}

	catalog.SortDeclarations(r.Exports)
	catalog.SortDeclarations(r.Types)
	return r
}

func (e *Extractor) declaration(source string, stmt ast.Statement, r *Result) catalog.Declaration {
	name, _ := stmt.Name()
	decl := catalog.Declaration{
		Name:     name,
		Children: []catalog.Member{},
	}

	start, end := stmt.Start(), stmt.End()
	if docs := stmt.Docs(); len(docs) > 0 {
		decl.Comment = jsdoc.NormalizeDescription(docs[0].Block().Description)
		start = max(start, docs[0].End())
	}
	if i := strings.Index(source[start:end], exportKeyword); i >= 0 {
		start += i + len(exportKeyword)
	}

	snippet := source[start:end]
	if members := stmt.Members(); stmt.Kind() == ast.DeclInterface && len(members) > 0 {
		for _, m := range members {
			decl.Children = append(decl.Children, e.unpackMember(source, m, 1, name, r))
		}
		snippet = collapseBody(source, start, end, members[0].Pos(), members[len(members)-1].End())
	}

	decl.Snippet = e.format(strings.TrimSpace(snippet), name)
	return decl
}

// format runs the formatter and tightens the elision marker. A formatter
// failure keeps the unformatted snippet.
func (e *Extractor) format(snippet, name string) string {
	out, err := e.formatter.Format(snippet)
	if err != nil {
		e.logger.Warn("failed to format snippet, keeping source text", "declaration", name, "error", err)
		out = snippet
	}
	return format.TightenElision(out)
}
