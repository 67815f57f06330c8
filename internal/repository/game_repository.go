package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gamesforgood/catalog/internal/domain"
)

const gameColumns = `id, name, lowercase_name, description, image, themes, tags, builds,
	webgl_build, remote_url, lesson, parenting_guide, answer_key, video_trailer,
	preview, popularity, created_at, updated_at`

// gameRepository implements GameRepository over Postgres.
type gameRepository struct {
	pool *pgxpool.Pool
}

// NewGameRepository creates a new game repository.
func NewGameRepository(pool *pgxpool.Pool) GameRepository {
	return &gameRepository{pool: pool}
}

// Create inserts a new game. The lowercase name mirror must already be
// set; collisions on it surface as domain.ErrGameExists.
func (r *gameRepository) Create(ctx context.Context, game domain.Game) (domain.Game, error) {
	buildsJSON, err := marshalBuilds(game.Builds)
	if err != nil {
		return domain.Game{}, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO games (name, lowercase_name, description, image, themes, tags, builds,
			webgl_build, remote_url, lesson, parenting_guide, answer_key, video_trailer,
			preview, popularity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+gameColumns,
		game.Name, game.LowercaseName, game.Description, game.Image,
		idsOrEmpty(game.ThemeIDs), idsOrEmpty(game.TagIDs), buildsJSON,
		game.WebGLBuild, game.RemoteURL, game.Lesson, game.ParentingGuide,
		game.AnswerKey, game.VideoTrailer, game.Preview, game.Popularity,
	)

	created, err := scanGame(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Game{}, domain.ErrGameExists
		}
		return domain.Game{}, fmt.Errorf("failed to create game: %w", err)
	}
	return created, nil
}

// GetByID retrieves a game by id.
func (r *gameRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Game, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id)
	game, err := scanGame(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Game{}, domain.ErrGameNotFound
		}
		return domain.Game{}, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}

// Update rewrites a game's editable fields.
func (r *gameRepository) Update(ctx context.Context, game domain.Game) (domain.Game, error) {
	buildsJSON, err := marshalBuilds(game.Builds)
	if err != nil {
		return domain.Game{}, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE games
		SET name = $2, lowercase_name = $3, description = $4, image = $5,
			themes = $6, tags = $7, builds = $8, webgl_build = $9, remote_url = $10,
			lesson = $11, parenting_guide = $12, answer_key = $13, video_trailer = $14,
			preview = $15, updated_at = now()
		WHERE id = $1
		RETURNING `+gameColumns,
		game.ID, game.Name, game.LowercaseName, game.Description, game.Image,
		idsOrEmpty(game.ThemeIDs), idsOrEmpty(game.TagIDs), buildsJSON,
		game.WebGLBuild, game.RemoteURL, game.Lesson, game.ParentingGuide,
		game.AnswerKey, game.VideoTrailer, game.Preview,
	)

	updated, err := scanGame(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Game{}, domain.ErrGameNotFound
		}
		if isUniqueViolation(err) {
			return domain.Game{}, domain.ErrGameExists
		}
		return domain.Game{}, fmt.Errorf("failed to update game: %w", err)
	}
	return updated, nil
}

// SetTags replaces a game's tag references.
func (r *gameRepository) SetTags(ctx context.Context, id uuid.UUID, tagIDs []uuid.UUID) (domain.Game, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE games SET tags = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+gameColumns,
		id, idsOrEmpty(tagIDs),
	)
	updated, err := scanGame(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Game{}, domain.ErrGameNotFound
		}
		return domain.Game{}, fmt.Errorf("failed to set game tags: %w", err)
	}
	return updated, nil
}

// Delete removes a game.
func (r *gameRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGameNotFound
	}
	return nil
}

// Query runs the facet query: the WHERE body is built once and shared by
// the count statement and the windowed page statement.
func (r *gameRepository) Query(ctx context.Context, filter domain.GameFilter, sort domain.SortType, page *int) ([]domain.Game, int, error) {
	whereSQL, args, err := buildWhere(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build catalog predicate: %w", err)
	}

	var totalCount int
	countSQL := `SELECT count(*) FROM games WHERE ` + whereSQL
	if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count catalog matches: %w", err)
	}

	pageSQL := `SELECT ` + gameColumns + ` FROM games WHERE ` + whereSQL + ` ORDER BY ` + orderBy(sort)
	if page != nil {
		limit, offset := pageWindow(*page)
		pageSQL += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	}

	rows, err := r.pool.Query(ctx, pageSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	var games []domain.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read catalog rows: %w", err)
	}

	return games, totalCount, nil
}

// GameNames returns the display-name to id map over the whole catalog.
func (r *gameRepository) GameNames(ctx context.Context) (map[string]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM games`)
	if err != nil {
		return nil, fmt.Errorf("failed to list game names: %w", err)
	}
	defer rows.Close()

	names := make(map[string]uuid.UUID)
	for rows.Next() {
		var id uuid.UUID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan game name: %w", err)
		}
		names[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read game names: %w", err)
	}
	return names, nil
}

// SetPopularity applies the full popularity rewrite as one batch: an
// absolute set per visited name plus a zero-out of every other game. The
// batch is not transactional across rows; a concurrent reader may observe
// a mix of old and new scores while it runs.
func (r *gameRepository) SetPopularity(ctx context.Context, counts map[string]int) error {
	batch := &pgx.Batch{}
	names := make([]string, 0, len(counts))
	for name, count := range counts {
		batch.Queue(`UPDATE games SET popularity = $1 WHERE name = $2`, count, name)
		names = append(names, name)
	}
	batch.Queue(`UPDATE games SET popularity = 0 WHERE name != ALL($1)`, names)

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return &domain.BatchWriteFailureError{Err: err}
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (domain.Game, error) {
	var game domain.Game
	var buildsJSON []byte

	err := row.Scan(
		&game.ID, &game.Name, &game.LowercaseName, &game.Description, &game.Image,
		&game.ThemeIDs, &game.TagIDs, &buildsJSON,
		&game.WebGLBuild, &game.RemoteURL, &game.Lesson, &game.ParentingGuide,
		&game.AnswerKey, &game.VideoTrailer, &game.Preview, &game.Popularity,
		&game.CreatedAt, &game.UpdatedAt,
	)
	if err != nil {
		return domain.Game{}, err
	}

	if len(buildsJSON) > 0 {
		if err := json.Unmarshal(buildsJSON, &game.Builds); err != nil {
			return domain.Game{}, fmt.Errorf("failed to decode builds for game %s: %w", game.ID, err)
		}
	}
	return game, nil
}

func marshalBuilds(builds []domain.Build) ([]byte, error) {
	if builds == nil {
		builds = []domain.Build{}
	}
	data, err := json.Marshal(builds)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal builds: %w", err)
	}
	return data, nil
}

func idsOrEmpty(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
