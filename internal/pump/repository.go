package pump

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for pump binding persistence.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByID retrieves a binding by its unique identifier.
	// Returns ErrNotFound if the binding does not exist.
	GetByID(ctx context.Context, id string) (*Binding, error)

	// List retrieves all bindings ordered by pin.
	List(ctx context.Context) ([]Binding, error)

	// Create inserts a new binding.
	// Returns ErrExists if a binding with the same ID or pin exists.
	Create(ctx context.Context, b *Binding) error

	// Update modifies an existing binding.
	// Returns ErrNotFound if the binding does not exist.
	Update(ctx context.Context, b *Binding) error

	// Delete removes a binding by ID.
	// Returns ErrNotFound if the binding does not exist.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByID retrieves a binding by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Binding, error) {
	query := `
		SELECT id, pin, ingredient_id, flow_rate_ml_sec, enabled, vent_duration_ms,
			created_at, updated_at
		FROM pumps
		WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	b, err := scanBinding(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying pump by id: %w", err)
	}
	return b, nil
}

// List retrieves all bindings ordered by pin.
func (r *SQLiteRepository) List(ctx context.Context) ([]Binding, error) {
	query := `
		SELECT id, pin, ingredient_id, flow_rate_ml_sec, enabled, vent_duration_ms,
			created_at, updated_at
		FROM pumps
		ORDER BY pin`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying pumps: %w", err)
	}
	defer rows.Close()

	var bindings []Binding
	for rows.Next() {
		b, err := scanBinding(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pump row: %w", err)
		}
		bindings = append(bindings, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pumps: %w", err)
	}
	return bindings, nil
}

// Create inserts a new binding.
func (r *SQLiteRepository) Create(ctx context.Context, b *Binding) error {
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now

	query := `
		INSERT INTO pumps (id, pin, ingredient_id, flow_rate_ml_sec, enabled,
			vent_duration_ms, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		b.ID,
		b.Pin,
		b.IngredientID,
		b.FlowRateMLPerSec,
		boolToInt(b.Enabled),
		b.VentDurationMS,
		b.CreatedAt.Format(time.RFC3339),
		b.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrExists
		}
		return fmt.Errorf("inserting pump: %w", err)
	}
	return nil
}

// Update modifies an existing binding.
func (r *SQLiteRepository) Update(ctx context.Context, b *Binding) error {
	b.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE pumps
		SET pin = ?, ingredient_id = ?, flow_rate_ml_sec = ?, enabled = ?,
			vent_duration_ms = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		b.Pin,
		b.IngredientID,
		b.FlowRateMLPerSec,
		boolToInt(b.Enabled),
		b.VentDurationMS,
		b.UpdatedAt.Format(time.RFC3339),
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("updating pump: %w", err)
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

// Delete removes a binding by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM pumps WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting pump: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner matches both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanBinding scans a single pump row.
func scanBinding(s scanner) (*Binding, error) {
	var b Binding
	var enabled int
	var createdAt, updatedAt string

	if err := s.Scan(&b.ID, &b.Pin, &b.IngredientID, &b.FlowRateMLPerSec,
		&enabled, &b.VentDurationMS, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	b.Enabled = enabled != 0
	b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // Format is controlled
	b.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // Format is controlled

	return &b, nil
}

// boolToInt converts a bool to SQLite's integer representation.
func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
