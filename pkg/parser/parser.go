// Package parser parses TypeScript declaration sources with tree-sitter and
// converts them into the parser-neutral statements of package ast.
package parser

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/gnana997/apidoc/pkg/util"
)

// ParserManager owns one lazily created parser pool per dialect.
//
// Memory Management:
// - Pools are created on first use and released by Close()
// - Parse returns a Tree the caller must Close()
// - ParseDeclarations closes its tree before returning
//
// Thread Safety:
// - Safe for concurrent use; up to poolSize goroutines parse one dialect at a time
//
// Example:
//
//	manager := NewParserManager(logger)
//	defer manager.Close()
//
//	unit, err := manager.ParseDeclarations(source, DialectTypeScript)
type ParserManager struct {
	pools    map[Dialect]*parserPool
	poolSize int
	mutex    sync.RWMutex
	logger   *slog.Logger

	stats struct {
		parsesCalled int
	}
}

// NewParserManager creates a manager sized for the machine's CPU count.
func NewParserManager(logger *slog.Logger) *ParserManager {
	return NewParserManagerWithPoolSize(0, logger)
}

// NewParserManagerWithPoolSize creates a manager with a fixed pool size per
// dialect. A size of 0 uses util.GetOptimalPoolSize().
func NewParserManagerWithPoolSize(poolSize int, logger *slog.Logger) *ParserManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParserManager{
		pools:    make(map[Dialect]*parserPool),
		poolSize: util.GetOptimalPoolSizeWithOverride(poolSize),
		logger:   logger,
	}
}

// Parse parses source with the dialect's grammar.
//
// Trees with syntax errors are still returned (partial trees are useful);
// the error is only logged. The returned Tree MUST be closed by the caller.
func (pm *ParserManager) Parse(source []byte, dialect Dialect) (*ts.Tree, error) {
	if dialect == DialectUnknown {
		return nil, fmt.Errorf("cannot parse unknown dialect")
	}

	pm.mutex.Lock()
	pm.stats.parsesCalled++
	pm.mutex.Unlock()

	pool, err := pm.getOrCreatePool(dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool for %s: %w", dialect, err)
	}

	parser, err := pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire parser: %w", err)
	}
	tree := parser.Parse(source, nil)
	pool.release(parser)

	if tree == nil {
		return nil, fmt.Errorf("parser.Parse returned nil tree")
	}

	if tree.RootNode().HasError() {
		pm.logger.Warn("parse tree contains errors", "dialect", dialect.String())
	}
	return tree, nil
}

// Close releases all parser pools. The manager cannot be used afterwards.
func (pm *ParserManager) Close() error {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	closed := 0
	for _, pool := range pm.pools {
		closed += pool.close()
	}
	pm.pools = make(map[Dialect]*parserPool)

	pm.logger.Debug("closed ParserManager",
		"parsers_closed", closed,
		"parses_called", pm.stats.parsesCalled)
	return nil
}

// getOrCreatePool uses double-checked locking so the common path only takes
// the read lock.
func (pm *ParserManager) getOrCreatePool(dialect Dialect) (*parserPool, error) {
	pm.mutex.RLock()
	pool, ok := pm.pools[dialect]
	pm.mutex.RUnlock()
	if ok {
		return pool, nil
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if pool, ok = pm.pools[dialect]; ok {
		return pool, nil
	}

	langPtr, err := languagePointer(dialect)
	if err != nil {
		return nil, err
	}
	pool = newParserPool(dialect, langPtr, pm.poolSize, pm.logger)
	pm.pools[dialect] = pool

	pm.logger.Debug("created new parser pool", "dialect", dialect.String(), "maxSize", pm.poolSize)
	return pool, nil
}

func languagePointer(dialect Dialect) (unsafe.Pointer, error) {
	switch dialect {
	case DialectTypeScript:
		return ts_typescript.LanguageTypescript(), nil
	case DialectTSX:
		return ts_typescript.LanguageTSX(), nil
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", dialect)
	}
}

// GetStats returns parser usage statistics.
func (pm *ParserManager) GetStats() ParserStats {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	total := 0
	for _, pool := range pm.pools {
		total += pool.getCreatedCount()
	}
	return ParserStats{
		ParsersCreated: total,
		ParsesCalled:   pm.stats.parsesCalled,
	}
}

// ParserStats contains parser usage statistics.
type ParserStats struct {
	ParsersCreated int
	ParsesCalled   int
}
