// Package storage provides the synchronous key-value persistence the history
// cache is built on. Every backend stores one string value per key and can
// replace it atomically.
package storage

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Errors
var (
	ErrInvalidKey   = errors.New("invalid storage key")
	ErrClosed       = errors.New("storage is closed")
	ErrUnknownStore = errors.New("unknown storage backend")
)

// Store is a synchronous key-value adapter. Get reports whether the key
// exists; a missing key is not an error.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// CompareAndSwapper is implemented by stores that can replace a value only
// if it still equals what the caller read. When existed is false the swap
// succeeds only if the key is still absent.
type CompareAndSwapper interface {
	CompareAndSwap(key, old string, existed bool, value string) (swapped bool, err error)
}

// Backend is a store that supports compare-and-swap and owns resources.
type Backend interface {
	Store
	CompareAndSwapper
	io.Closer
}

// Ensure all backends implement the full interface
var (
	_ Backend = (*MemoryStore)(nil)
	_ Backend = (*FileStore)(nil)
	_ Backend = (*SQLiteStore)(nil)
)

// Open creates the backend named by kind ("file", "sqlite", "memory").
// For "file" path is a directory, for "sqlite" a database file.
func Open(kind, path string) (Backend, error) {
	switch strings.ToLower(kind) {
	case "memory":
		return NewMemoryStore(), nil
	case "file", "":
		return NewFileStore(path)
	case "sqlite":
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, kind)
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
