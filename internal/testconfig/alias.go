package testconfig

import (
	"path/filepath"
	"regexp"
	"strings"
)

// ResolveAlias maps an aliased import path to a filesystem path. The first
// mapping whose pattern matches wins; <rootDir> in its target is replaced
// by rootDir and capture group references are expanded.
func (c *Config) ResolveAlias(importPath, rootDir string) (string, bool) {
	for _, a := range c.ModuleNameMapping {
		re, err := regexp.Compile(a.Pattern)
		if err != nil {
			continue
		}
		match := re.FindStringSubmatchIndex(importPath)
		if match == nil {
			continue
		}
		target := strings.ReplaceAll(a.Target, RootDirVar, filepath.ToSlash(rootDir))
		resolved := re.ExpandString(nil, target, importPath, match)
		return string(resolved), true
	}
	return "", false
}
