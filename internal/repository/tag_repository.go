package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gamesforgood/catalog/internal/domain"
)

// tagRepository implements TagRepository over Postgres. Tags are a single
// table partitioned by type; every name lookup is scoped to one type so a
// custom tag can never satisfy an accessibility filter.
type tagRepository struct {
	pool *pgxpool.Pool
}

// NewTagRepository creates a new tag repository.
func NewTagRepository(pool *pgxpool.Pool) TagRepository {
	return &tagRepository{pool: pool}
}

func (r *tagRepository) Create(ctx context.Context, name string, tagType domain.TagType) (domain.Tag, error) {
	var tag domain.Tag
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tags (name, type) VALUES ($1, $2) RETURNING id, name, type`,
		name, tagType,
	).Scan(&tag.ID, &tag.Name, &tag.Type)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Tag{}, fmt.Errorf("%s tag %q already exists", tagType, name)
		}
		return domain.Tag{}, fmt.Errorf("failed to create tag: %w", err)
	}
	return tag, nil
}

func (r *tagRepository) GetByNames(ctx context.Context, names []string, tagType domain.TagType) ([]domain.Tag, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, type FROM tags WHERE name = ANY($1) AND type = $2`,
		names, tagType)
	if err != nil {
		return nil, fmt.Errorf("failed to get tags by name: %w", err)
	}
	return scanTags(rows)
}

func (r *tagRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Tag, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, type FROM tags WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get tags by id: %w", err)
	}
	return scanTags(rows)
}

func (r *tagRepository) IDsOfType(ctx context.Context, ids []uuid.UUID, tagType domain.TagType) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM tags WHERE id = ANY($1) AND type = $2`, ids, tagType)
	if err != nil {
		return nil, fmt.Errorf("failed to narrow tag ids: %w", err)
	}
	defer rows.Close()

	var narrowed []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan tag id: %w", err)
		}
		narrowed = append(narrowed, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tag ids: %w", err)
	}
	return narrowed, nil
}

func (r *tagRepository) List(ctx context.Context) ([]domain.Tag, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, type FROM tags ORDER BY type, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return scanTags(rows)
}

func (r *tagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tag %s not found", id)
	}
	return nil
}

func scanTags(rows pgx.Rows) ([]domain.Tag, error) {
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Type); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tag rows: %w", err)
	}
	return tags, nil
}
