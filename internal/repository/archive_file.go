package repository

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// FileArchiveRepository implements ArchiveRepository on a single JSON file.
// Writes go through a temp file in the same directory followed by a rename,
// so a crash mid-write never leaves a truncated archive behind.
type FileArchiveRepository struct {
	path string
}

// NewFileArchiveRepository creates a file-backed archive repository. The
// parent directory is created if it does not exist.
func NewFileArchiveRepository(path string) (*FileArchiveRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	log.Printf("[FileArchiveRepository] Initialized with archive file: %s", path)
	return &FileArchiveRepository{path: path}, nil
}

// Load reads the archive file. A missing file means no archive yet.
func (r *FileArchiveRepository) Load(ctx context.Context) ([]byte, error) {
	payload, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read archive file: %w", err)
	}
	return payload, nil
}

// Store writes the payload to a temp file, syncs it, then renames it over
// the archive. The temp file lives in the target directory so the rename
// stays on one filesystem.
func (r *FileArchiveRepository) Store(ctx context.Context, payload []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp archive: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp archive: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp archive: %w", err)
	}

	if err := os.Rename(tmpPath, r.path); err != nil {
		return fmt.Errorf("failed to replace archive file: %w", err)
	}
	return nil
}

// Close is a no-op; the file handle is not held between operations.
func (r *FileArchiveRepository) Close() error {
	return nil
}

// Ensure FileArchiveRepository implements ArchiveRepository
var _ ArchiveRepository = (*FileArchiveRepository)(nil)
