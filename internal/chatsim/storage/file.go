package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend stores each key as <dir>/<key>.json.
type FileBackend struct {
	dir string
}

// NewFileBackend creates the directory if needed and returns a backend rooted at dir.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) Name() string { return "file" }

func (b *FileBackend) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key: %q", key)
	}
	return filepath.Join(b.dir, key+".json"), nil
}

func (b *FileBackend) Get(key string) ([]byte, error) {
	file, err := b.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	return data, nil
}

// Set writes value to a temporary file and renames it into place, so readers
// see either the old or the new value.
func (b *FileBackend) Set(key string, value []byte) error {
	file, err := b.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(b.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", file, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", file, err)
	}
	if err := os.Rename(tmpName, file); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", file, err)
	}
	return nil
}

func (b *FileBackend) Delete(key string) error {
	file, err := b.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(file); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete %s: %w", file, err)
	}
	return nil
}

func (b *FileBackend) Close() error { return nil }
