package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for recipe persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByID retrieves a recipe by its unique identifier.
	// Returns ErrNotFound if the recipe does not exist.
	GetByID(ctx context.Context, id string) (*Recipe, error)

	// List retrieves all recipes ordered by name.
	List(ctx context.Context) ([]Recipe, error)

	// Create inserts a new recipe.
	// Returns ErrExists if a recipe with the same ID already exists.
	Create(ctx context.Context, r *Recipe) error

	// Update modifies an existing recipe.
	// Returns ErrNotFound if the recipe does not exist.
	Update(ctx context.Context, r *Recipe) error

	// Delete removes a recipe by ID.
	// Returns ErrNotFound if the recipe does not exist.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
// Recipe lines and sizes are stored as JSON columns.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByID retrieves a recipe by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Recipe, error) {
	query := `
		SELECT id, name, alcoholic, lines, sizes, created_at, updated_at
		FROM recipes
		WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	rec, err := scanRecipe(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying recipe by id: %w", err)
	}
	return rec, nil
}

// List retrieves all recipes ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Recipe, error) {
	query := `
		SELECT id, name, alcoholic, lines, sizes, created_at, updated_at
		FROM recipes
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying recipes: %w", err)
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning recipe row: %w", err)
		}
		recipes = append(recipes, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recipes: %w", err)
	}
	return recipes, nil
}

// Create inserts a new recipe.
func (r *SQLiteRepository) Create(ctx context.Context, rec *Recipe) error {
	linesJSON, sizesJSON, err := marshalRecipeFields(rec)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	query := `
		INSERT INTO recipes (id, name, alcoholic, lines, sizes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		rec.ID,
		rec.Name,
		boolToInt(rec.Alcoholic),
		linesJSON,
		sizesJSON,
		rec.CreatedAt.Format(time.RFC3339),
		rec.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrExists
		}
		return fmt.Errorf("inserting recipe: %w", err)
	}
	return nil
}

// Update modifies an existing recipe.
func (r *SQLiteRepository) Update(ctx context.Context, rec *Recipe) error {
	linesJSON, sizesJSON, err := marshalRecipeFields(rec)
	if err != nil {
		return err
	}

	rec.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE recipes
		SET name = ?, alcoholic = ?, lines = ?, sizes = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		rec.Name,
		boolToInt(rec.Alcoholic),
		linesJSON,
		sizesJSON,
		rec.UpdatedAt.Format(time.RFC3339),
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("updating recipe: %w", err)
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

// Delete removes a recipe by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM recipes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting recipe: %w", err)
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

// marshalRecipeFields serialises the JSON columns.
func marshalRecipeFields(rec *Recipe) (linesJSON, sizesJSON string, err error) {
	lines, err := json.Marshal(rec.Lines)
	if err != nil {
		return "", "", fmt.Errorf("marshalling lines: %w", err)
	}
	sizes, err := json.Marshal(rec.Sizes)
	if err != nil {
		return "", "", fmt.Errorf("marshalling sizes: %w", err)
	}
	return string(lines), string(sizes), nil
}

// scanner matches both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecipe scans a single recipe row.
func scanRecipe(s scanner) (*Recipe, error) {
	var rec Recipe
	var alcoholic int
	var linesJSON, sizesJSON string
	var createdAt, updatedAt string

	if err := s.Scan(&rec.ID, &rec.Name, &alcoholic, &linesJSON, &sizesJSON,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}

	rec.Alcoholic = alcoholic != 0
	if err := json.Unmarshal([]byte(linesJSON), &rec.Lines); err != nil {
		return nil, fmt.Errorf("unmarshalling lines: %w", err)
	}
	if err := json.Unmarshal([]byte(sizesJSON), &rec.Sizes); err != nil {
		return nil, fmt.Errorf("unmarshalling sizes: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // Format is controlled
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // Format is controlled

	return &rec, nil
}

// boolToInt converts a bool to SQLite's integer representation.
func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
