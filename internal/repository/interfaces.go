package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/gamesforgood/catalog/internal/domain"
)

// GameRepository defines the interface for catalog item persistence.
type GameRepository interface {
	Create(ctx context.Context, game domain.Game) (domain.Game, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Game, error)
	Update(ctx context.Context, game domain.Game) (domain.Game, error)
	SetTags(ctx context.Context, id uuid.UUID, tagIDs []uuid.UUID) (domain.Game, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Query executes the compiled filter as a facet query: it returns one
	// page of games (or the full result set when page is nil) together
	// with the total match count, both derived from the same predicate.
	Query(ctx context.Context, filter domain.GameFilter, sort domain.SortType, page *int) ([]domain.Game, int, error)

	// GameNames returns a display-name to id map over the whole catalog.
	GameNames(ctx context.Context) (map[string]uuid.UUID, error)

	// SetPopularity rewrites every game's popularity in one bulk batch:
	// names present in counts receive their tally, every other game is
	// set to zero.
	SetPopularity(ctx context.Context, counts map[string]int) error
}

// ThemeRepository defines the interface for the theme reference store.
type ThemeRepository interface {
	Create(ctx context.Context, name string) (domain.Theme, error)
	GetByNames(ctx context.Context, names []string) ([]domain.Theme, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Theme, error)
	List(ctx context.Context) ([]domain.Theme, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TagRepository defines the interface for the tag reference store.
type TagRepository interface {
	Create(ctx context.Context, name string, tagType domain.TagType) (domain.Tag, error)
	// GetByNames returns tags matching the given names within one type; a
	// name carried by a tag of the other type does not match.
	GetByNames(ctx context.Context, names []string, tagType domain.TagType) ([]domain.Tag, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Tag, error)
	// IDsOfType narrows ids to those belonging to tags of tagType.
	IDsOfType(ctx context.Context, ids []uuid.UUID, tagType domain.TagType) ([]uuid.UUID, error)
	List(ctx context.Context) ([]domain.Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
