package ingredient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for ingredient persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByID retrieves an ingredient by its unique identifier.
	// Returns ErrNotFound if the ingredient does not exist.
	GetByID(ctx context.Context, id string) (*Ingredient, error)

	// List retrieves all ingredients ordered by name.
	List(ctx context.Context) ([]Ingredient, error)

	// Create inserts a new ingredient.
	// Returns ErrExists if an ingredient with the same ID already exists.
	Create(ctx context.Context, ing *Ingredient) error

	// Update modifies an existing ingredient.
	// Returns ErrNotFound if the ingredient does not exist.
	Update(ctx context.Context, ing *Ingredient) error

	// Delete removes an ingredient by ID.
	// Returns ErrNotFound if the ingredient does not exist.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByID retrieves an ingredient by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Ingredient, error) {
	query := `
		SELECT id, name, alcoholic, created_at, updated_at
		FROM ingredients
		WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	ing, err := scanIngredient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying ingredient by id: %w", err)
	}
	return ing, nil
}

// List retrieves all ingredients ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Ingredient, error) {
	query := `
		SELECT id, name, alcoholic, created_at, updated_at
		FROM ingredients
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []Ingredient
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ingredient row: %w", err)
		}
		ingredients = append(ingredients, *ing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ingredients: %w", err)
	}
	return ingredients, nil
}

// Create inserts a new ingredient.
func (r *SQLiteRepository) Create(ctx context.Context, ing *Ingredient) error {
	now := time.Now().UTC()
	if ing.CreatedAt.IsZero() {
		ing.CreatedAt = now
	}
	ing.UpdatedAt = now

	query := `
		INSERT INTO ingredients (id, name, alcoholic, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		ing.ID,
		ing.Name,
		boolToInt(ing.Alcoholic),
		ing.CreatedAt.Format(time.RFC3339),
		ing.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrExists
		}
		return fmt.Errorf("inserting ingredient: %w", err)
	}
	return nil
}

// Update modifies an existing ingredient.
func (r *SQLiteRepository) Update(ctx context.Context, ing *Ingredient) error {
	ing.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE ingredients
		SET name = ?, alcoholic = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		ing.Name,
		boolToInt(ing.Alcoholic),
		ing.UpdatedAt.Format(time.RFC3339),
		ing.ID,
	)
	if err != nil {
		return fmt.Errorf("updating ingredient: %w", err)
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

// Delete removes an ingredient by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM ingredients WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting ingredient: %w", err)
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

// scanIngredient scans a single ingredient row.
func scanIngredient(s scanner) (*Ingredient, error) {
	var ing Ingredient
	var alcoholic int
	var createdAt, updatedAt string

	if err := s.Scan(&ing.ID, &ing.Name, &alcoholic, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	ing.Alcoholic = alcoholic != 0
	ing.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // Format is controlled
	ing.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // Format is controlled

	return &ing, nil
}

// boolToInt converts a bool to SQLite's integer representation.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueConstraintError checks whether err is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
