// Package imagestore persists rendered illustration bytes under a
// configured directory with per-run unique names, and owns the fixed
// placeholder path used when rendering fails.
package imagestore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/randalmurphal/postflow/internal/model"
)

// sentinelName is the fixed "no image available" marker file name.
const sentinelName = "error_placeholder.png"

// Store writes PNG bytes beneath a base directory.
type Store struct {
	dir string
}

// New creates a store rooted at dir. The directory is created on the
// first Save, not here, so constructing a store is side-effect free.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the base directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes data under a unique platform-scoped name and returns the
// full path, e.g. "data/images/twitter_1a2b3c4d.png".
func (s *Store) Save(platform model.Platform, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create image directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s.png", platform, uuid.New().String()[:8])
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return path, nil
}

// SentinelPath returns the fixed placeholder path substituted when
// image rendering fails. The file itself need not exist; the path is a
// marker, and consumers render "no image available" when they see it.
func (s *Store) SentinelPath() string {
	return filepath.Join(s.dir, sentinelName)
}

// IsSentinel reports whether path is the placeholder path.
func (s *Store) IsSentinel(path string) bool {
	return path == s.SentinelPath()
}
