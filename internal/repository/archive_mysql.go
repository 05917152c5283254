package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLArchiveRepository implements ArchiveRepository using MySQL. Same
// single-row-per-archive contract as the SQLite backend, for deployments
// that already run a MySQL instance.
type MySQLArchiveRepository struct {
	db   *sql.DB
	name string
}

// NewMySQLArchiveRepository creates a MySQL-backed archive repository from a
// DSN (e.g., "user:pass@tcp(localhost:3306)/donutmarket?parseTime=true").
func NewMySQLArchiveRepository(dsn, name string) (*MySQLArchiveRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	query := `
	CREATE TABLE IF NOT EXISTS market_archive (
		name VARCHAR(64) NOT NULL PRIMARY KEY,
		payload LONGBLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create archive table: %w", err)
	}

	log.Printf("[MySQLArchiveRepository] Initialized (archive: %s)", name)
	return &MySQLArchiveRepository{db: db, name: name}, nil
}

// Load retrieves the archive payload. A missing row means no archive yet.
func (r *MySQLArchiveRepository) Load(ctx context.Context) ([]byte, error) {
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
func (r *MySQLArchiveRepository) Store(ctx context.Context, payload []byte) error {
	query := `
		INSERT INTO market_archive (name, payload)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE payload = VALUES(payload)`

	if _, err := r.db.ExecContext(ctx, query, r.name, payload); err != nil {
		return fmt.Errorf("failed to store archive: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *MySQLArchiveRepository) Close() error {
	return r.db.Close()
}

// Ensure MySQLArchiveRepository implements ArchiveRepository
var _ ArchiveRepository = (*MySQLArchiveRepository)(nil)
