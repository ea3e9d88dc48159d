package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/gnana997/apidoc/pkg/catalog"
	"github.com/gnana997/apidoc/pkg/config"
	"github.com/gnana997/apidoc/pkg/extractor"
	"github.com/gnana997/apidoc/pkg/format"
	"github.com/gnana997/apidoc/pkg/jsdoc"
	"github.com/gnana997/apidoc/pkg/parser"
	"github.com/gnana997/apidoc/pkg/util"
)

// Scanner orchestrates a generation run: discovery, extraction and the fold
// into a sorted catalog.
type Scanner struct {
	pm        *parser.ParserManager
	ext       *extractor.Extractor
	formatter format.Formatter
	log       *slog.Logger

	// OnModule, if set, is called once per discovered module after its
	// extraction finishes (successfully or not). Calls come from a single
	// goroutine.
	OnModule func(name string)
}

// NewScanner creates a scanner with all required dependencies.
// A nil formatter uses the builtin formatter.
func NewScanner(f format.Formatter, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	pm := parser.NewParserManager(logger)
	ext := extractor.NewExtractor(pm, f, logger)
	return &Scanner{pm: pm, ext: ext, formatter: f, log: logger}
}

// Plan lists the modules a run over cfg would extract, without reading
// any source. Exempt modules are left out.
func (s *Scanner) Plan(cfg *config.Config) ([]string, error) {
	jobs, _, err := s.plan(cfg)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(jobs))
	for i, j := range jobs {
		names[i] = j.module
	}
	return names, nil
}

func (s *Scanner) plan(cfg *config.Config) ([]extractionJob, int, error) {
	root := cfg.SourceRoot()
	files, err := DiscoverFiles(root, ScanConfig{Include: cfg.Include, Exclude: cfg.Exclude})
	if err != nil {
		return nil, 0, fmt.Errorf("discovery failed: %w", err)
	}

	absRoot, err := absDir(root)
	if err != nil {
		return nil, 0, err
	}

	jobs := make([]extractionJob, 0, len(files))
	for _, f := range files {
		name, err := ModuleName(absRoot, f, cfg.ModulePrefix)
		if err != nil {
			return nil, 0, err
		}
		if o, ok := cfg.ModuleOverride(name); ok && o.Exempt {
			s.log.Debug("skipping exempt module source", "module", name, "file", f)
			continue
		}
		jobs = append(jobs, extractionJob{path: f, module: name})
	}
	return jobs, len(files), nil
}

// Run executes a generation run and returns the finalized catalog.
//
// Files that cannot be read or parsed are logged and counted in Stats; they
// never abort the run. Discovery errors, configuration errors, duplicate
// module names and cancellation do.
func (s *Scanner) Run(ctx context.Context, cfg *config.Config) (*catalog.Catalog, *Stats, error) {
	totalStart := time.Now()
	stats := &Stats{}

	// Phase 1: Discovery
	discoveryStart := time.Now()
	jobs, discovered, err := s.plan(cfg)
	if err != nil {
		return nil, stats, err
	}
	stats.FilesDiscovered = discovered
	stats.DiscoveryTimeMs = time.Since(discoveryStart).Milliseconds()

	s.log.Info("discovery complete", "files", discovered, "modules", len(jobs), "ms", stats.DiscoveryTimeMs)

	// Phase 2: Extraction
	extractionStart := time.Now()
	cache := util.NewSourceCache(s.log)
	results, failed := extractAll(ctx, jobs, s.ext, cache, cfg.Workers, s.log, s.OnModule)
	cacheStats := cache.Stats()
	stats.SourcesMapped = cacheStats.FilesCached
	stats.MmapFallbacks = cacheStats.MmapFailures
	if err := cache.Close(); err != nil {
		s.log.Warn("failed to release source cache", "error", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}
	stats.FilesExtracted = len(results)
	stats.FilesFailed = failed
	stats.ExtractionTimeMs = time.Since(extractionStart).Milliseconds()

	s.log.Info("extraction complete",
		"extracted", len(results), "failed", failed, "ms", stats.ExtractionTimeMs)

	// Phase 3: Catalog Build
	buildStart := time.Now()
	cat, err := s.build(cfg, results, stats)
	if err != nil {
		return nil, stats, err
	}
	stats.Modules = len(cat.Modules)
	if sized, ok := s.formatter.(interface{ Len() int }); ok {
		stats.FormatCacheEntries = sized.Len()
	}
	stats.BuildTimeMs = time.Since(buildStart).Milliseconds()
	stats.TotalTimeMs = time.Since(totalStart).Milliseconds()

	s.log.Info("catalog build complete",
		"modules", stats.Modules,
		"declarations", stats.Declarations,
		"diagnostics", len(stats.Diagnostics),
		"ms", stats.BuildTimeMs)

	return cat, stats, nil
}

// Generate runs a generation and writes the artifact to cfg.OutputPath().
func (s *Scanner) Generate(ctx context.Context, cfg *config.Config) (*Stats, error) {
	cat, stats, err := s.Run(ctx, cfg)
	if err != nil {
		return stats, err
	}
	if err := cat.SaveToFile(cfg.OutputPath()); err != nil {
		return stats, err
	}
	s.log.Info("catalog written", "path", cfg.OutputPath(), "modules", stats.Modules)
	return stats, nil
}

func (s *Scanner) build(cfg *config.Config, results []FileExtractionResult, stats *Stats) (*catalog.Catalog, error) {
	// Workers finish in any order.
	sort.Slice(results, func(i, j int) bool {
		return results[i].FilePath < results[j].FilePath
	})

	var mods []catalog.Module
	for _, r := range results {
		comment, err := moduleComment(cfg, r.Module, r.Result.ModuleDoc)
		if err != nil {
			return nil, err
		}

		mods = catalog.Accumulate(mods, catalog.Module{
			Name:    r.Module,
			Comment: comment,
			Exports: r.Result.Exports,
			Types:   r.Result.Types,
		})

		stats.Declarations += len(r.Result.Exports) + len(r.Result.Types)
		stats.Skipped += r.Result.Skipped
		for _, d := range r.Result.Diagnostics {
			stats.Diagnostics = append(stats.Diagnostics, ModuleDiagnostic{Module: r.Module, Diagnostic: d})
		}
	}

	for _, m := range cfg.Modules {
		if !m.Exempt {
			continue
		}
		comment, err := m.ResolveComment(cfg.BaseDir)
		if err != nil {
			return nil, err
		}
		mods = catalog.Accumulate(mods, catalog.Module{
			Name:    m.Name,
			Comment: comment,
			Exempt:  true,
		})
		stats.ModulesExempt++
	}

	return catalog.Finalize(mods)
}

// moduleComment prefers the configured comment over the source's module doc.
func moduleComment(cfg *config.Config, name string, doc *jsdoc.Block) (string, error) {
	if o, ok := cfg.ModuleOverride(name); ok && (o.Comment != "" || o.CommentFile != "") {
		return o.ResolveComment(cfg.BaseDir)
	}
	if doc == nil {
		return "", nil
	}
	return strings.TrimSpace(jsdoc.NormalizeDescription(doc.Description)), nil
}

// Close releases parser resources.
func (s *Scanner) Close() error {
	return s.pm.Close()
}
