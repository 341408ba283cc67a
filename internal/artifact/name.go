package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxExtBytes  = 12
	fallbackStem = "media"
)

// SanitizeName turns a name built from remote metadata into a safe file
// name of at most maxBytes bytes. The extension survives truncation.
func SanitizeName(name string, maxBytes int) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	ext = clean(strings.TrimPrefix(ext, "."))
	if ext != "" && len(ext) <= maxExtBytes {
		ext = "." + ext
	} else {
		ext = ""
	}
	stem = clean(stem)
	if stem == "" {
		stem = fallbackStem
	}
	budget := maxBytes - len(ext)
	if budget < 1 {
		budget = 1
	}
	return truncate(stem, budget) + ext
}

func clean(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		ok := unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.'
		if !ok {
			if lastUnderscore {
				continue
			}
			r = '_'
		}
		lastUnderscore = r == '_'
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), "._- ")
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return strings.TrimRight(s, "._- ")
}

// Normalize renames the artifact in place to its sanitized name.
func Normalize(a Artifact, maxBytes int) (Artifact, error) {
	name := SanitizeName(a.Name(), maxBytes)
	if name == a.Name() {
		return a, nil
	}
	dir := filepath.Dir(a.Path)
	target := filepath.Join(dir, name)
	if _, err := os.Lstat(target); err == nil {
		target = filepath.Join(dir, "1_"+name)
	}
	if err := os.Rename(a.Path, target); err != nil {
		return a, fmt.Errorf("rename artifact: %w", err)
	}
	return Artifact{Path: target, Size: a.Size}, nil
}
