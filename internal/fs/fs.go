// Package fs provides the filesystem abstraction the sync run reads and
// writes batch files through.
//
// The main types are:
//   - [FS]: interface for the filesystem operations batchsync needs
//   - [Real]: production implementation using [os] and atomic renames
//
// Example usage:
//
//	fsys := fs.NewReal()
//	data, err := fsys.ReadFile("_batches/2022/batch-09.md")
//	if err != nil {
//	    return err
//	}
//
//	err = fsys.WriteFileAtomic("_batches/2022/batch-09.md", data, 0o644)
package fs

import (
	"os"
)

// FS defines the filesystem operations used to locate, read and rewrite
// batch files.
//
// All methods mirror their [os] package equivalents so tests can substitute
// an in-memory or failing implementation.
type FS interface {
	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic writes data to a file atomically.
	// Uses a temp file + rename so a crash never leaves a half-written
	// batch file behind.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	// Returns [os.ErrNotExist] if file doesn't exist.
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)
}

// Compile-time interface check.
var _ FS = (*Real)(nil)
