package parser

import (
	"path/filepath"
	"strings"
)

// Dialect selects the tree-sitter grammar used for a source.
type Dialect int

const (
	// DialectTypeScript covers .ts, .mts, .cts and the .d.ts family.
	DialectTypeScript Dialect = iota
	// DialectTSX is TypeScript with JSX enabled.
	DialectTSX
	// DialectUnknown is any file the extractor cannot read.
	DialectUnknown
)

// String returns the dialect name used in logs.
func (d Dialect) String() string {
	switch d {
	case DialectTypeScript:
		return "typescript"
	case DialectTSX:
		return "tsx"
	default:
		return "unknown"
	}
}

// declarationSuffixes are checked before the plain extensions so that
// "index.d.ts" reports a declaration file.
var declarationSuffixes = []string{".d.ts", ".d.mts", ".d.cts"}

// DetectDialect detects the grammar from a file path.
func DetectDialect(filePath string) Dialect {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ts", ".mts", ".cts":
		return DialectTypeScript
	case ".tsx":
		return DialectTSX
	default:
		return DialectUnknown
	}
}

// IsDeclarationFile reports whether the path is a type-only declaration source.
func IsDeclarationFile(filePath string) bool {
	lower := strings.ToLower(filePath)
	for _, s := range declarationSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// TrimSourceExt removes the declaration or source extension from a path.
func TrimSourceExt(filePath string) string {
	lower := strings.ToLower(filePath)
	for _, s := range declarationSuffixes {
		if strings.HasSuffix(lower, s) {
			return filePath[:len(filePath)-len(s)]
		}
	}
	if DetectDialect(filePath) != DialectUnknown {
		return strings.TrimSuffix(filePath, filepath.Ext(filePath))
	}
	return filePath
}
