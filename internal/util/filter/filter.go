// Package filter provides reusable file filtering logic.
// This package is shared by the session view and the CLI listing flags so both
// apply the same matching rules.
package filter

import (
	"path/filepath"
	"strings"

	"github.com/minidrive/minidrive/internal/models"
)

// Config holds filter configuration.
type Config struct {
	// Include patterns (glob-style). Empty means include all.
	// Example: []string{"*.pdf", "*.png"}
	Include []string

	// Exclude patterns (glob-style). Takes precedence over Include.
	// Example: []string{"draft*", "tmp*"}
	Exclude []string

	// Search terms (case-insensitive substring match).
	// File must match ALL search terms to be included.
	Search []string
}

// IsEmpty reports whether the configuration filters nothing.
func (c Config) IsEmpty() bool {
	return len(c.Include) == 0 && len(c.Exclude) == 0 && len(c.Search) == 0
}

// ContainsFold reports whether query occurs in name, ignoring case.
// An empty query matches every name.
func ContainsFold(name, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(query))
}

// BySearch returns the records whose original name contains query, ignoring case.
// The result preserves input order and is never nil.
func BySearch(files []models.FileRecord, query string) []models.FileRecord {
	result := make([]models.FileRecord, 0, len(files))
	for _, f := range files {
		if ContainsFold(f.OriginalName, query) {
			result = append(result, f)
		}
	}
	return result
}

// ApplyToFiles filters file records based on the filter configuration.
func ApplyToFiles(files []models.FileRecord, config Config) []models.FileRecord {
	if config.IsEmpty() {
		return files
	}

	filtered := make([]models.FileRecord, 0, len(files))
	for _, file := range files {
		if matchesFilter(file.OriginalName, config) {
			filtered = append(filtered, file)
		}
	}
	return filtered
}

// matchesFilter checks if a filename matches the filter configuration.
func matchesFilter(filename string, config Config) bool {
	// 1. Exclude patterns win
	for _, pattern := range config.Exclude {
		if matchesPattern(pattern, filename) {
			return false
		}
	}

	// 2. Include patterns
	if len(config.Include) > 0 {
		included := false
		for _, pattern := range config.Include {
			if matchesPattern(pattern, filename) {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}

	// 3. Every search term must appear
	for _, term := range config.Search {
		if !ContainsFold(filename, term) {
			return false
		}
	}

	return true
}

// matchesPattern matches a glob against the name and its base name, ignoring case
// so "*.PDF" and "*.pdf" behave the same.
func matchesPattern(pattern, filename string) bool {
	pattern = strings.ToLower(pattern)
	lower := strings.ToLower(filename)
	if matched, _ := filepath.Match(pattern, lower); matched {
		return true
	}
	matched, _ := filepath.Match(pattern, filepath.Base(lower))
	return matched
}

// ParsePatternList parses a comma-separated list of patterns into a slice.
// Example: "*.pdf,*.png" -> []string{"*.pdf", "*.png"}
func ParsePatternList(patternStr string) []string {
	if patternStr == "" {
		return nil
	}
	parts := strings.Split(patternStr, ",")
	patterns := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			patterns = append(patterns, trimmed)
		}
	}
	return patterns
}
