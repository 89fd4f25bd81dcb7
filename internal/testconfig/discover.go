package testconfig

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Discover returns the files under root matching any test_match pattern,
// as slash-separated paths relative to root in lexical order.
func (c *Config) Discover(root string) ([]string, error) {
	return walkMatching(root, c.TestMatch, nil)
}

// CoverageSources returns the files under root selected by collect_from.
// Patterns prefixed with "!" exclude files the other patterns include.
func (c *Config) CoverageSources(root string) ([]string, error) {
	var include, exclude []string
	for _, p := range c.Coverage.CollectFrom {
		if strings.HasPrefix(p, excludeMark) {
			exclude = append(exclude, strings.TrimPrefix(p, excludeMark))
		} else {
			include = append(include, p)
		}
	}
	return walkMatching(root, include, exclude)
}

// Covered reports whether a file relative to the module root is selected
// by collect_from
func (c *Config) Covered(rel string) bool {
	included := false
	for _, p := range c.Coverage.CollectFrom {
		if strings.HasPrefix(p, excludeMark) {
			if ok, _ := doublestar.Match(strings.TrimPrefix(p, excludeMark), rel); ok {
				return false
			}
			continue
		}
		if ok, _ := doublestar.Match(p, rel); ok {
			included = true
		}
	}
	return included
}

func walkMatching(root string, include, exclude []string) ([]string, error) {
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern: %s", p)
		}
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if matchAny(include, rel) && !matchAny(exclude, rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// skipDir reports whether the go tool ignores the directory
func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
		name == "testdata" || name == "vendor"
}

func matchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}
