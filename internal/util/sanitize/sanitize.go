// Package sanitize cleans text that arrives from outside the program:
// filenames from response headers and lines typed into the shell.
package sanitize

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

var (
	spaceRun   = regexp.MustCompile(`[ \t]+`)
	newlineRun = regexp.MustCompile(`\n+`)
)

// Line normalizes one line of interactive input: line endings are
// removed, invisible characters dropped, and runs of blanks collapsed.
func Line(s string) string {
	if s == "" {
		return s
	}

	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = removeInvisibleChars(s)
	s = normalizeWhitespace(s)
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

// Filename reduces name to a single safe path element. Directory parts,
// control and invisible characters are stripped. Returns "" when nothing
// usable is left.
func Filename(name string) string {
	name = removeInvisibleChars(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base("/" + name)

	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)

	if name == "." || name == ".." || name == "/" {
		return ""
	}
	return name
}

// removeInvisibleChars removes zero-width and other invisible Unicode characters
func removeInvisibleChars(s string) string {
	invisibleChars := []string{
		"\u200B", // Zero-width space
		"\u200C", // Zero-width non-joiner
		"\u200D", // Zero-width joiner
		"\uFEFF", // Zero-width no-break space (BOM)
		"\u00AD", // Soft hyphen
		"\u2060", // Word joiner
		"\u180E", // Mongolian vowel separator
	}

	for _, char := range invisibleChars {
		s = strings.ReplaceAll(s, char, "")
	}

	return s
}

// normalizeWhitespace replaces sequences of whitespace with single spaces
func normalizeWhitespace(s string) string {
	s = spaceRun.ReplaceAllString(s, " ")
	return newlineRun.ReplaceAllString(s, "\n")
}
