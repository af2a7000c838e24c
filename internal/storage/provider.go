// Package storage reads markdown files from a locally mounted vault.
package storage

import "time"

// FileMeta describes one markdown file in the vault.
type FileMeta struct {
	Path     string    `json:"path"`
	Checksum string    `json:"checksum"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"mod_time"`
}

// Provider is the read-only vault abstraction used by sync.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to the vault root).
	List(dir string) ([]FileMeta, error)
	// Read returns the raw bytes of the file at path (relative to the vault root).
	Read(path string) ([]byte, error)
	// Root returns the absolute vault directory.
	Root() string
}
