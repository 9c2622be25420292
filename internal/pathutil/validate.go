// Package pathutil confines file writes requested by MCP clients to known
// directories.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nvandessel/samplespace/internal/config"
)

// ExportDirName is the subdirectory of a state directory that holds exports.
const ExportDirName = "exports"

// RedactPath reduces a full path to .../<parent>/<basename> for safe error messages.
// For example, "/home/user/.samplespace/exports/a.arrow" becomes ".../exports/a.arrow".
func RedactPath(path string) string {
	if path == "" {
		return ""
	}
	cleaned := filepath.Clean(path)
	parent := filepath.Base(filepath.Dir(cleaned))
	if parent == "." || parent == string(filepath.Separator) {
		return filepath.Base(cleaned)
	}
	return ".../" + parent + "/" + filepath.Base(cleaned)
}

// ExportDirs returns the directories exports may be written to, project
// first: <projectRoot>/.samplespace/exports and ~/.samplespace/exports.
func ExportDirs(projectRoot string) ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return []string{
		filepath.Join(projectRoot, config.DirName, ExportDirName),
		filepath.Join(homeDir, config.DirName, ExportDirName),
	}, nil
}

// ResolveExport maps a client-supplied export name to an absolute path. A
// relative name is placed under the first of dirs; either way the result
// must be confined to dirs.
func ResolveExport(name string, dirs []string) (string, error) {
	if len(dirs) == 0 {
		return "", fmt.Errorf("path validation failed: no allowed directories configured")
	}
	path := name
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(dirs[0], path)
	}
	if err := Confine(path, dirs); err != nil {
		return "", err
	}
	return filepath.Abs(path)
}

// Confine returns an error unless path lies within one of dirs once cleaned
// and with symlinks resolved on its existing ancestors. The file itself need
// not exist.
func Confine(path string, dirs []string) error {
	switch {
	case path == "":
		return fmt.Errorf("path validation failed: path is empty")
	case len(dirs) == 0:
		return fmt.Errorf("path validation failed: no allowed directories configured")
	case strings.ContainsRune(path, '\x00'):
		return fmt.Errorf("path validation failed: path contains null byte")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("path validation failed: cannot resolve absolute path: %w", err)
	}
	parent, err := evalExisting(filepath.Dir(abs))
	if err != nil {
		return fmt.Errorf("path validation failed: cannot resolve parent directory: %w", err)
	}
	resolved := filepath.Join(parent, filepath.Base(abs))

	for _, dir := range dirs {
		dirAbs, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		base, err := evalExisting(dirAbs)
		if err != nil {
			continue
		}
		if within(resolved, base) {
			return nil
		}
	}
	return fmt.Errorf("path validation failed: %q is outside allowed directories", RedactPath(abs))
}

// evalExisting resolves symlinks on the deepest existing ancestor of dir and
// re-appends the missing tail.
func evalExisting(dir string) (string, error) {
	var tail []string
	for {
		resolved, err := filepath.EvalSymlinks(dir)
		if err == nil {
			for i := len(tail) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, tail[i])
			}
			return resolved, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("cannot resolve path: %s", RedactPath(dir))
		}
		tail = append(tail, filepath.Base(dir))
		dir = parent
	}
}

// within reports whether path is base or below it.
func within(path, base string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
