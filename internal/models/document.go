// Package models defines the library types shared by storage and the index.
package models

import (
	"path/filepath"
	"strings"
	"time"
)

// File extensions recognised as library documents.
const (
	ExtNotation = ".tib"
	ExtPlain    = ".txt"
)

// DocumentMetadata is the lightweight view of a library file returned by
// list operations.
type DocumentMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsDocument reports whether name has a library document extension.
func IsDocument(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ExtNotation, ExtPlain:
		return true
	}
	return false
}

// Title derives a display title from a document path.
func Title(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
