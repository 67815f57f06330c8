package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gamesforgood/catalog/internal/domain"
)

// themeRepository implements ThemeRepository over Postgres.
type themeRepository struct {
	pool *pgxpool.Pool
}

// NewThemeRepository creates a new theme repository.
func NewThemeRepository(pool *pgxpool.Pool) ThemeRepository {
	return &themeRepository{pool: pool}
}

func (r *themeRepository) Create(ctx context.Context, name string) (domain.Theme, error) {
	var theme domain.Theme
	err := r.pool.QueryRow(ctx,
		`INSERT INTO themes (name) VALUES ($1) RETURNING id, name`,
		name,
	).Scan(&theme.ID, &theme.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Theme{}, fmt.Errorf("theme %q already exists", name)
		}
		return domain.Theme{}, fmt.Errorf("failed to create theme: %w", err)
	}
	return theme, nil
}

func (r *themeRepository) GetByNames(ctx context.Context, names []string) ([]domain.Theme, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name FROM themes WHERE name = ANY($1)`, names)
	if err != nil {
		return nil, fmt.Errorf("failed to get themes by name: %w", err)
	}
	return scanThemes(rows)
}

func (r *themeRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Theme, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name FROM themes WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get themes by id: %w", err)
	}
	return scanThemes(rows)
}

func (r *themeRepository) List(ctx context.Context) ([]domain.Theme, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM themes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list themes: %w", err)
	}
	return scanThemes(rows)
}

func (r *themeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM themes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete theme: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("theme %s not found", id)
	}
	return nil
}

func scanThemes(rows pgx.Rows) ([]domain.Theme, error) {
	defer rows.Close()

	var themes []domain.Theme
	for rows.Next() {
		var theme domain.Theme
		if err := rows.Scan(&theme.ID, &theme.Name); err != nil {
			return nil, fmt.Errorf("failed to scan theme: %w", err)
		}
		themes = append(themes, theme)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read theme rows: %w", err)
	}
	return themes, nil
}
