// Package scanner turns a tree of TypeScript declaration sources into a
// documentation catalog: discovery, parallel extraction and the final fold.
package scanner

import (
	"github.com/gnana997/apidoc/pkg/extractor"
	"github.com/gnana997/apidoc/pkg/jsdoc"
)

// ScanConfig selects the sources a run documents.
type ScanConfig struct {
	// Include glob patterns for file matching, relative to the root.
	Include []string
	// Exclude glob patterns. A matching directory is not descended into.
	Exclude []string
}

// DefaultScanConfig returns every declaration file outside dependency and
// VCS directories.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		Include: []string{
			"**/*.d.ts",
			"**/*.d.mts",
			"**/*.d.cts",
		},
		Exclude: []string{
			"**/node_modules/**",
			"**/.git/**",
		},
	}
}

// FileExtractionResult is the outcome of extracting one source file.
type FileExtractionResult struct {
	FilePath string
	Module   string
	Result   *extractor.FileResult
}

// ModuleDiagnostic is a dropped doc tag, attributed to its module.
type ModuleDiagnostic struct {
	Module string `json:"module"`
	jsdoc.Diagnostic
}

// Stats tracks what a run did and how long each phase took.
type Stats struct {
	FilesDiscovered  int
	FilesExtracted   int
	FilesFailed      int
	ModulesExempt    int
	Modules          int
	Declarations     int
	Skipped          int
	Diagnostics      []ModuleDiagnostic
	DiscoveryTimeMs  int64
	ExtractionTimeMs int64
	BuildTimeMs      int64
	TotalTimeMs      int64

	// SourcesMapped counts the sources held by the run's source cache and
	// MmapFallbacks those of them read without a memory map.
	SourcesMapped      int
	MmapFallbacks      int64
	FormatCacheEntries int
}
