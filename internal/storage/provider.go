// Package storage defines the document library file-system abstraction.
package storage

import "github.com/starford/lotsawa/internal/models"

// Provider is the interface for library file operations. Paths are
// relative to the library root.
type Provider interface {
	// List returns metadata for every document under dir.
	List(dir string) ([]models.DocumentMetadata, error)
	// Exists reports whether a file is present at path.
	Exists(path string) (bool, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath. An existing target yields os.ErrExist.
	Move(oldPath, newPath string) error
	// Root returns the absolute library directory.
	Root() string
}
