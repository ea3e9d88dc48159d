package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/apidoc/pkg/parser"
)

// DiscoverFiles walks rootDir applying include/exclude globs from cfg.
// Returns a sorted slice of absolute file paths for deterministic output.
func DiscoverFiles(rootDir string, cfg ScanConfig) ([]string, error) {
	// Validate patterns.
	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range cfg.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}

	absRoot, err := absDir(rootDir)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read source root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source root %s is not a directory", absRoot)
	}

	var files []string

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Continue walking on errors.
		}
		if path == absRoot {
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		// Check exclusions (directories and files).
		if IsExcluded(relPath, d.IsDir(), cfg.Exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		// Only TypeScript sources can be parsed.
		if parser.DetectDialect(path) == parser.DialectUnknown {
			return nil
		}

		if !matchesAny(relPath, cfg.Include) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// IsExcluded reports whether a slash-separated relative path matches one of
// the exclude patterns. Directories also match a pattern that names their
// contents ("dir/**").
func IsExcluded(relPath string, isDir bool, exclude []string) bool {
	if matchesAny(relPath, exclude) {
		return true
	}
	if isDir {
		return matchesAny(relPath+"/x", exclude)
	}
	return false
}

// MatchesInclude reports whether relPath is selected by the include patterns.
// An empty list selects everything.
func MatchesInclude(relPath string, include []string) bool {
	return matchesAny(relPath, include)
}

func matchesAny(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	for _, pattern := range patterns {
		if m, _ := doublestar.PathMatch(pattern, relPath); m {
			return true
		}
	}
	return false
}

// ModuleName derives a module name from a source path.
//
// The path is taken relative to root, its source extension is removed along
// with a trailing "/index", and prefix is joined in front with "/". A root
// index file is named after the prefix alone.
func ModuleName(root, path, prefix string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("failed to relativize %s: %w", path, err)
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is outside the source root %s", path, root)
	}

	name := strings.TrimSuffix(parser.TrimSourceExt(rel), "/index")
	prefix = strings.Trim(prefix, "/")

	switch {
	case prefix == "":
		return name, nil
	case name == "index":
		return prefix, nil
	default:
		return prefix + "/" + name, nil
	}
}

func absDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root path: %w", err)
	}
	return abs, nil
}
