package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for inventory level persistence.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByIngredient retrieves the level for an ingredient.
	// Returns ErrNotFound if no level exists.
	GetByIngredient(ctx context.Context, ingredientID string) (*Level, error)

	// List retrieves all levels ordered by ingredient ID.
	List(ctx context.Context) ([]Level, error)

	// Upsert inserts or replaces the level for an ingredient.
	Upsert(ctx context.Context, level *Level) error

	// Delete removes the level for an ingredient.
	Delete(ctx context.Context, ingredientID string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByIngredient retrieves the level for an ingredient.
func (r *SQLiteRepository) GetByIngredient(ctx context.Context, ingredientID string) (*Level, error) {
	query := `
		SELECT ingredient_id, current_ml, capacity_ml, last_refill, updated_at
		FROM inventory_levels
		WHERE ingredient_id = ?`

	row := r.db.QueryRowContext(ctx, query, ingredientID)
	level, err := scanLevel(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying inventory level: %w", err)
	}
	return level, nil
}

// List retrieves all levels ordered by ingredient ID.
func (r *SQLiteRepository) List(ctx context.Context) ([]Level, error) {
	query := `
		SELECT ingredient_id, current_ml, capacity_ml, last_refill, updated_at
		FROM inventory_levels
		ORDER BY ingredient_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying inventory levels: %w", err)
	}
	defer rows.Close()

	var levels []Level
	for rows.Next() {
		level, err := scanLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning inventory row: %w", err)
		}
		levels = append(levels, *level)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating inventory levels: %w", err)
	}
	return levels, nil
}

// Upsert inserts or replaces the level for an ingredient.
func (r *SQLiteRepository) Upsert(ctx context.Context, level *Level) error {
	var lastRefill interface{}
	if level.LastRefill != nil {
		lastRefill = level.LastRefill.Format(time.RFC3339)
	}

	query := `
		INSERT INTO inventory_levels (ingredient_id, current_ml, capacity_ml, last_refill, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(ingredient_id) DO UPDATE SET
			current_ml = excluded.current_ml,
			capacity_ml = excluded.capacity_ml,
			last_refill = excluded.last_refill,
			updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		level.IngredientID,
		level.CurrentML,
		level.CapacityML,
		lastRefill,
		level.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting inventory level: %w", err)
	}
	return nil
}

// Delete removes the level for an ingredient.
func (r *SQLiteRepository) Delete(ctx context.Context, ingredientID string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM inventory_levels WHERE ingredient_id = ?", ingredientID)
	if err != nil {
		return fmt.Errorf("deleting inventory level: %w", err)
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

// scanLevel scans a single inventory level row.
func scanLevel(s scanner) (*Level, error) {
	var level Level
	var lastRefill sql.NullString
	var updatedAt string

	if err := s.Scan(&level.IngredientID, &level.CurrentML, &level.CapacityML, &lastRefill, &updatedAt); err != nil {
		return nil, err
	}

	if lastRefill.Valid {
		if t, err := time.Parse(time.RFC3339, lastRefill.String); err == nil {
			level.LastRefill = &t
		}
	}
	level.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // Format is controlled

	return &level, nil
}
