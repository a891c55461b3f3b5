// Package security guards the file paths the recorder writes to.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// canonicalPath returns the absolute form of p with symlinks resolved for
// the longest prefix that exists on disk. Components past that prefix are
// appended unchanged, so a new file under a symlinked directory still
// resolves to where it would really be written.
func canonicalPath(p string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	existing := abs
	for {
		if resolved, err := filepath.EvalSymlinks(existing); err == nil {
			rest, _ := filepath.Rel(existing, abs)
			return filepath.Join(resolved, rest), nil
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return abs, nil
		}
		existing = parent
	}
}

// ValidatePathWithinDirectory returns an error if filePath, after cleaning
// and symlink resolution, is not inside dir.
func ValidatePathWithinDirectory(filePath, dir string) error {
	target, err := canonicalPath(filePath)
	if err != nil {
		return err
	}
	root, err := canonicalPath(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve directory %s: %w", dir, err)
	}

	rel, err := filepath.Rel(root, target)
	if err != nil {
		return fmt.Errorf("path is outside directory: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("path traversal detected: %s escapes %s", filePath, dir)
	}
	return nil
}

// ExportPath joins a sanitised file name onto the export directory and
// checks the result cannot escape it.
func ExportPath(exportDir, name string) (string, error) {
	p := filepath.Join(exportDir, SanitizeFilename(name))
	if err := ValidatePathWithinDirectory(p, exportDir); err != nil {
		return "", err
	}
	return p, nil
}

// SanitizeFilename keeps ASCII letters, digits, '.', '_' and '-', replacing
// each run of anything else with a single underscore. The result is at most
// 128 bytes and never empty.
func SanitizeFilename(s string) string {
	const maxLen = 128
	var b strings.Builder
	underscore := false
	for _, r := range s {
		if b.Len() >= maxLen {
			break
		}
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == '.' || r == '_' || r == '-'
		switch {
		case ok:
			b.WriteRune(r)
			underscore = false
		case !underscore:
			b.WriteByte('_')
			underscore = true
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}
