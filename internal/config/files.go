package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// configMemSuffix is the naming convention for per-tile configuration
// memory mapping tables: <TileName>_ConfigMem.csv.
const configMemSuffix = "_ConfigMem.csv"

// ResolveConfigMems expands the configured glob patterns and returns the
// discovered mapping table paths, sorted and deduplicated.
func (c *Config) ResolveConfigMems(rootPath string) ([]string, error) {
	fileSet := make(map[string]bool)
	for _, pattern := range c.ConfigMem.Patterns {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(rootPath, pattern)
		}

		matches, err := expandGlob(pattern)
		if err != nil {
			continue
		}
		for _, match := range matches {
			if strings.HasSuffix(match, configMemSuffix) {
				fileSet[match] = true
			}
		}
	}

	for _, pattern := range c.ConfigMem.Exclude {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(rootPath, pattern)
		}
		matches, err := expandGlob(pattern)
		if err != nil {
			continue
		}
		for _, match := range matches {
			delete(fileSet, match)
		}
	}

	result := make([]string, 0, len(fileSet))
	for f := range fileSet {
		result = append(result, f)
	}
	sort.Strings(result)
	return result, nil
}

// TileNameFromConfigMem derives the tile name a mapping table belongs to
// from its file name. Returns "" when the file does not follow the naming
// convention.
func TileNameFromConfigMem(path string) string {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, configMemSuffix) {
		return ""
	}
	return strings.TrimSuffix(base, configMemSuffix)
}

// expandGlob expands a glob pattern, handling ** for recursive matching.
func expandGlob(pattern string) ([]string, error) {
	if strings.Contains(pattern, "**") {
		return expandDoubleStarGlob(pattern)
	}
	return filepath.Glob(pattern)
}

// expandDoubleStarGlob handles ** patterns by walking the directory tree.
func expandDoubleStarGlob(pattern string) ([]string, error) {
	var results []string

	parts := strings.SplitN(pattern, "**", 2)
	if len(parts) != 2 {
		return filepath.Glob(pattern)
	}

	baseDir := filepath.Clean(parts[0])
	if baseDir == "" {
		baseDir = "."
	}
	suffix := strings.TrimPrefix(parts[1], string(filepath.Separator))

	err := filepath.Walk(baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if suffix == "" {
			results = append(results, path)
			return nil
		}

		relPath, err := filepath.Rel(baseDir, path)
		if err != nil {
			return nil
		}
		if matchSuffix(relPath, suffix) {
			results = append(results, path)
		}
		return nil
	})

	return results, err
}

// matchSuffix checks if a path matches a suffix pattern (after **).
func matchSuffix(path, pattern string) bool {
	pattern = strings.TrimPrefix(pattern, string(filepath.Separator))

	if !strings.Contains(pattern, string(filepath.Separator)) {
		matched, _ := filepath.Match(pattern, filepath.Base(path))
		return matched
	}

	matched, _ := filepath.Match(pattern, path)
	if matched {
		return true
	}
	if len(path) > len(pattern) {
		matched, _ = filepath.Match(pattern, path[len(path)-len(pattern):])
		return matched
	}
	return false
}
