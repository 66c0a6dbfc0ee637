package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileStore keeps each key in its own file under a directory. Writes go
// through a temp file and rename, and are serialized across processes by an
// advisory lock file next to the value.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store rooted at dir, creating it if needed
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store requires a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory holding the value files
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get returns the value stored under key
func (s *FileStore) Get(key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	return s.read(key)
}

func (s *FileStore) read(key string) (string, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set replaces the value stored under key
func (s *FileStore) Set(key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return s.locked(key, func() error {
		return s.write(key, value)
	})
}

// CompareAndSwap replaces the value only if the file still holds old
func (s *FileStore) CompareAndSwap(key, old string, existed bool, value string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	swapped := false
	err := s.locked(key, func() error {
		current, ok, err := s.read(key)
		if err != nil {
			return err
		}
		if ok != existed || (ok && current != old) {
			return nil
		}
		if err := s.write(key, value); err != nil {
			return err
		}
		swapped = true
		return nil
	})
	return swapped, err
}

// Close is a no-op for FileStore
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) locked(key string, fn func() error) error {
	lock := flock.New(s.path(key) + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", key, err)
	}
	defer func() { _ = lock.Unlock() }()
	return fn()
}

func (s *FileStore) write(key, value string) error {
	target := s.path(key)
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
