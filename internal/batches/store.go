// Package batches locates and rewrites the per-batch markdown files of one
// year: <root>/<year>/<slug>.md.
package batches

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/calvinalkan/batchsync/internal/fs"
)

// ErrNotFound is returned by [Store.Read] when the batch has no file.
var ErrNotFound = errors.New("batch file not found")

// ErrNotAFile is returned by [Store.Read] when the batch path is a directory.
var ErrNotAFile = errors.New("batch path is not a file")

const filePerms = 0o644

// Store reads and writes batch files in one year directory.
type Store struct {
	fs  fs.FS
	dir string
}

// NewStore returns a store for <root>/<year>.
func NewStore(fsys fs.FS, root, year string) *Store {
	return &Store{fs: fsys, dir: filepath.Join(root, year)}
}

// Dir returns the year directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path for slug.
func (s *Store) Path(slug string) string {
	return filepath.Join(s.dir, slug+".md")
}

// Read returns the content of the batch file for slug.
// A missing file yields an error wrapping [ErrNotFound], a directory one
// wrapping [ErrNotAFile].
func (s *Store) Read(slug string) (string, error) {
	path := s.Path(slug)

	info, err := s.fs.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotAFile, path)
	}

	data, err := s.fs.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	return string(data), nil
}

// Write replaces the batch file for slug atomically.
func (s *Store) Write(slug, content string) error {
	path := s.Path(slug)

	if err := s.fs.WriteFileAtomic(path, []byte(content), filePerms); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}
