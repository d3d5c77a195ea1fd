package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for preparation record persistence.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// Create inserts a new preparation record.
	Create(ctx context.Context, rec *Record) error

	// UpdateState updates the state of an in-flight preparation.
	UpdateState(ctx context.Context, id string, state State) error

	// Finish stores the terminal state, outcome and result detail.
	Finish(ctx context.Context, id string, state State, success bool, detail string) error

	// GetByID retrieves a preparation record.
	// Returns ErrNotFound if the record does not exist.
	GetByID(ctx context.Context, id string) (*Record, error)

	// List retrieves the most recent preparations, newest first.
	List(ctx context.Context, limit int) ([]Record, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new preparation record.
func (r *SQLiteRepository) Create(ctx context.Context, rec *Record) error {
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO preparations (id, recipe_id, target_ml, state, success, detail, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.RecipeID,
		rec.TargetML,
		string(rec.State),
		boolToInt(rec.Success),
		rec.Detail,
		rec.StartedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting preparation: %w", err)
	}
	return nil
}

// UpdateState updates the state of an in-flight preparation.
func (r *SQLiteRepository) UpdateState(ctx context.Context, id string, state State) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE preparations SET state = ? WHERE id = ?",
		string(state), id)
	if err != nil {
		return fmt.Errorf("updating preparation state: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Finish stores the terminal state, outcome and result detail.
func (r *SQLiteRepository) Finish(ctx context.Context, id string, state State, success bool, detail string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE preparations SET state = ?, success = ?, detail = ?, finished_at = ? WHERE id = ?",
		string(state),
		boolToInt(success),
		detail,
		time.Now().UTC().Format(time.RFC3339),
		id,
	)
	if err != nil {
		return fmt.Errorf("finishing preparation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a preparation record.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Record, error) {
	query := `
		SELECT id, recipe_id, target_ml, state, success, detail, started_at, finished_at
		FROM preparations
		WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying preparation by id: %w", err)
	}
	return rec, nil
}

// List retrieves the most recent preparations, newest first.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, recipe_id, target_ml, state, success, detail, started_at, finished_at
		FROM preparations
		ORDER BY started_at DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying preparations: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning preparation row: %w", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating preparations: %w", err)
	}
	return records, nil
}

// scanner matches both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord scans a single preparation row.
func scanRecord(s scanner) (*Record, error) {
	var rec Record
	var state string
	var success int
	var detail sql.NullString
	var startedAt string
	var finishedAt sql.NullString

	if err := s.Scan(&rec.ID, &rec.RecipeID, &rec.TargetML, &state, &success,
		&detail, &startedAt, &finishedAt); err != nil {
		return nil, err
	}

	rec.State = State(state)
	rec.Success = success != 0
	rec.Detail = detail.String
	rec.StartedAt, _ = time.Parse(time.RFC3339, startedAt) //nolint:errcheck // Format is controlled
	if finishedAt.Valid {
		if t, err := time.Parse(time.RFC3339, finishedAt.String); err == nil {
			rec.FinishedAt = &t
		}
	}

	return &rec, nil
}

// boolToInt converts a bool to SQLite's integer representation.
func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
