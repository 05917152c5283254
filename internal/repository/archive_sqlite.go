package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteArchiveRepository implements ArchiveRepository using SQLite. Each
// archive is one row keyed by name, so the payload swap is a single upsert
// and inherits SQLite's transactional atomicity.
type SQLiteArchiveRepository struct {
	db   *sql.DB
	name string
	mu   sync.RWMutex
}

// NewSQLiteArchiveRepository creates a SQLite-backed archive repository.
// dbPath is the path to the database file (e.g., "./data/market_archive.db")
// and name identifies the archive row.
func NewSQLiteArchiveRepository(dbPath, name string) (*SQLiteArchiveRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// WAL mode so readers are not blocked during the upsert
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	// SQLite connection pool settings
	db.SetMaxOpenConns(1) // SQLite only supports 1 writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createArchiveTable(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create archive table: %w", err)
	}

	log.Printf("[SQLiteArchiveRepository] Initialized with database: %s (archive: %s)", dbPath, name)
	return &SQLiteArchiveRepository{db: db, name: name}, nil
}

func createArchiveTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS market_archive (
		name TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	_, err := db.Exec(query)
	return err
}

// Load retrieves the archive payload. A missing row means no archive yet.
func (r *SQLiteArchiveRepository) Load(ctx context.Context) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM market_archive WHERE name = ?`, r.name).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load archive: %w", err)
	}
	if payload == nil {
		payload = []byte{}
	}
	return payload, nil
}

// Store replaces the archive payload in one upsert.
func (r *SQLiteArchiveRepository) Store(ctx context.Context, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO market_archive (name, payload, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(name) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`

	if _, err := r.db.ExecContext(ctx, query, r.name, payload); err != nil {
		return fmt.Errorf("failed to store archive: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *SQLiteArchiveRepository) Close() error {
	return r.db.Close()
}

// Ensure SQLiteArchiveRepository implements ArchiveRepository
var _ ArchiveRepository = (*SQLiteArchiveRepository)(nil)
