package repository

import "context"

// ArchiveRepository defines durable storage for one market history archive.
// The archive is an opaque payload; parsing and shaping it belongs to the
// service layer.
type ArchiveRepository interface {
	// Load retrieves the current archive payload. It returns (nil, nil)
	// when no archive has been stored yet.
	Load(ctx context.Context) ([]byte, error)

	// Store replaces the archive payload. The swap is atomic: a concurrent
	// Load observes either the previous payload or the new one, never a
	// partial write.
	Store(ctx context.Context, payload []byte) error

	// Close releases the underlying storage handle.
	Close() error
}
