// Package logostore is a narrow file-backed blob store for company logos.
// Callers deal in raw bytes and opaque filenames; base64/data-URI transcoding
// belongs to the HTTP layer.
package logostore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var ErrNotFound = errors.New("logostore: not found")

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logostore: create dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Put writes data to a new logo_<ts>.png file and returns its name. The file
// is written to a temp path and renamed only after a successful sync, so a
// returned name always refers to a durable file.
func (s *Store) Put(data []byte) (string, error) {
	name := fmt.Sprintf("logo_%d.png", time.Now().UnixNano())
	tmp, err := os.CreateTemp(s.dir, "logo_*.tmp")
	if err != nil {
		return "", fmt.Errorf("logostore: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("logostore: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("logostore: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("logostore: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("logostore: rename: %w", err)
	}
	return name, nil
}

// Get returns the bytes of a stored logo.
func (s *Store) Get(name string) ([]byte, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// Delete removes a stored logo. Missing files are not an error: replacement
// and company deletion must stay idempotent.
func (s *Store) Delete(name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("logostore: invalid name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}
