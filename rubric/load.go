package rubric

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPatterns is the glob set used by Discover when none are configured.
var DefaultPatterns = []string{"**/*.md"}

// Load parses each path as a dimension document and builds a registry.
func Load(paths ...string) (*Registry, error) {
	dims := make([]Dimension, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read rubric document: %w", err)
		}
		dim, err := ParseDocument(path, content)
		if err != nil {
			return nil, err
		}
		dims = append(dims, dim)
	}
	return NewRegistry(dims)
}

// Discover expands doublestar glob patterns under root and loads every
// matching rubric document.
func Discover(root string, patterns []string) (*Registry, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var paths []string

	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("expand rubric pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			info, err := fs.Stat(fsys, match)
			if err != nil || info.IsDir() {
				continue
			}
			full := filepath.Join(root, filepath.FromSlash(match))
			if !seen[full] {
				seen[full] = true
				paths = append(paths, full)
			}
		}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no rubric documents found under %s", root)
	}
	sort.Strings(paths)

	return Load(paths...)
}
