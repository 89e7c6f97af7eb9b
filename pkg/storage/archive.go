package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Archive keeps rendered report exports on disk so signed download links
// can be served after the original request completed.
type Archive struct {
	baseDir string
}

// NewArchive ensures the base directory exists and returns a handle.
func NewArchive(baseDir string) (*Archive, error) {
	if baseDir == "" {
		baseDir = "./exports"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	return &Archive{baseDir: baseDir}, nil
}

// Save writes an export under the base directory and returns its name.
func (a *Archive) Save(name string, data []byte) (string, error) {
	path := a.resolve(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare archive directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return name, nil
}

// Read returns the bytes of a stored export.
func (a *Archive) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(a.resolve(name))
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	return data, nil
}

// Delete removes a stored export if present.
func (a *Archive) Delete(name string) error {
	if err := os.Remove(a.resolve(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete export: %w", err)
	}
	return nil
}

// CleanupOlderThan removes exports past the retention window and returns
// the deleted names.
func (a *Archive) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-ttl)
	deleted := make([]string, 0)
	err := filepath.WalkDir(a.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		rel, err := filepath.Rel(a.baseDir, path)
		if err != nil {
			rel = path
		}
		deleted = append(deleted, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cleanup archive: %w", err)
	}
	return deleted, nil
}

func (a *Archive) resolve(name string) string {
	return filepath.Join(a.baseDir, filepath.Clean("/"+name))
}
