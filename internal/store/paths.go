package store

import (
	"path/filepath"

	"github.com/nvandessel/samplespace/internal/config"
)

// LocalDir returns the .samplespace directory for the given project root.
func LocalDir(projectRoot string) string {
	return filepath.Join(projectRoot, config.DirName)
}
