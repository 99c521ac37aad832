// Package sqlite stores project snapshots in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mamadbah2/boq/internal/domain/models"
)

// Repository implements snapshot storage on top of database/sql.
type Repository struct {
	db *sql.DB
}

// NewRepository opens path, applies migrations and returns a ready repository.
func NewRepository(path string) (*Repository, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Repository{db: db}, nil
}

// SaveSnapshot inserts a project snapshot.
func (r *Repository) SaveSnapshot(ctx context.Context, snapshot models.ProjectSnapshot) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO project_snapshots (project_code, title, total, format, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		snapshot.ProjectCode,
		snapshot.Title,
		snapshot.Total,
		snapshot.Format,
		snapshot.Payload,
		snapshot.CreatedAt.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert project snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot stored for projectCode.
func (r *Repository) LatestSnapshot(ctx context.Context, projectCode string) (*models.ProjectSnapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT project_code, title, total, format, payload, created_at
		FROM project_snapshots
		WHERE project_code = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, projectCode)

	var (
		snapshot models.ProjectSnapshot
		created  int64
	)
	err := row.Scan(
		&snapshot.ProjectCode,
		&snapshot.Title,
		&snapshot.Total,
		&snapshot.Format,
		&snapshot.Payload,
		&created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrSnapshotNotFound, projectCode)
	}
	if err != nil {
		return nil, fmt.Errorf("load project snapshot: %w", err)
	}
	snapshot.CreatedAt = time.Unix(0, created).UTC()
	return &snapshot, nil
}

// Close releases the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}
