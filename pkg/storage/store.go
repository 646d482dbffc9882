package storage

import (
	"errors"
	"io"
)

// Store is the local persistence collaborator of the transfer
// engine. File content only flows through the engine as opaque
// byte chunks; how it lands on disk is up to the Store.
type Store interface {
	// OpenRead opens the named file for reading and reports its
	// size. ErrNotFound when the file does not exist.
	OpenRead(name string) (io.ReadCloser, int64, error)
	// OpenWrite opens the named file for writing, truncating any
	// previous content. ErrCannotCreate when the open fails.
	OpenWrite(name string) (io.WriteCloser, error)
	Remove(name string) error
	// Duplicate makes a backup copy of the named file. Called
	// best-effort after a completed upload.
	Duplicate(name string) error
}

var (
	ErrNotFound     = errors.New("error: file not found")
	ErrCannotCreate = errors.New("error: file can not be created")
)
