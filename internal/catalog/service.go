package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gamesforgood/catalog/internal/domain"
	"github.com/gamesforgood/catalog/internal/repository"
)

// QueryResult is one page of the filtered catalog together with the total
// match count. Both come from the same compiled predicate, so the count is
// always consistent with the page contents.
type QueryResult struct {
	Games      []domain.HydratedGame `json:"games"`
	TotalCount int                   `json:"count"`
}

// Service is the catalog application layer: it validates and compiles
// filter requests, hydrates results, and fronts all game and reference
// writes.
type Service struct {
	games    repository.GameRepository
	themes   repository.ThemeRepository
	tags     repository.TagRepository
	resolver *ReferenceResolver
	compiler *Compiler
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewService wires the catalog service over its stores.
func NewService(games repository.GameRepository, themes repository.ThemeRepository, tags repository.TagRepository, logger zerolog.Logger) *Service {
	resolver := NewReferenceResolver(themes, tags)
	return &Service{
		games:    games,
		themes:   themes,
		tags:     tags,
		resolver: resolver,
		compiler: NewCompiler(resolver),
		validate: validator.New(),
		logger:   logger.With().Str("component", "catalog").Logger(),
	}
}

// Query runs a filter request end to end: validate, compile, execute the
// facet query, hydrate references. An absent sort defaults to most popular;
// an absent page returns the full result set.
func (s *Service) Query(ctx context.Context, query domain.GameQuery) (QueryResult, error) {
	if err := s.validate.Struct(query); err != nil {
		return QueryResult{}, asFilterValueError(err)
	}

	sort := query.Sort
	if sort == "" {
		sort = domain.SortMostPopular
	}

	filter, err := s.compiler.Compile(ctx, query)
	if err != nil {
		return QueryResult{}, err
	}

	games, total, err := s.games.Query(ctx, filter, sort, query.Page)
	if err != nil {
		return QueryResult{}, &domain.UpstreamError{Collaborator: "catalog store", Err: err}
	}

	hydrated, err := s.hydrate(ctx, games)
	if err != nil {
		return QueryResult{}, err
	}

	s.logger.Debug().
		Int("matches", total).
		Int("returned", len(hydrated)).
		Str("sort", string(sort)).
		Msg("catalog query served")

	return QueryResult{Games: hydrated, TotalCount: total}, nil
}

// GetGame returns one game with its references joined in.
func (s *Service) GetGame(ctx context.Context, id uuid.UUID) (domain.HydratedGame, error) {
	game, err := s.games.GetByID(ctx, id)
	if err != nil {
		return domain.HydratedGame{}, err
	}
	hydrated, err := s.hydrate(ctx, []domain.Game{game})
	if err != nil {
		return domain.HydratedGame{}, err
	}
	return hydrated[0], nil
}

// CreateGame stores a new game after normalizing its name key and checking
// that every referenced theme and tag exists.
func (s *Service) CreateGame(ctx context.Context, game domain.Game) (domain.Game, error) {
	game.Normalize()
	if err := s.checkReferences(ctx, game); err != nil {
		return domain.Game{}, err
	}
	created, err := s.games.Create(ctx, game)
	if err != nil {
		return domain.Game{}, err
	}
	s.logger.Info().Str("game", created.Name).Str("id", created.ID.String()).Msg("game created")
	return created, nil
}

// UpdateGame rewrites a game's fields with the same checks as creation.
func (s *Service) UpdateGame(ctx context.Context, game domain.Game) (domain.Game, error) {
	game.Normalize()
	if err := s.checkReferences(ctx, game); err != nil {
		return domain.Game{}, err
	}
	return s.games.Update(ctx, game)
}

// DeleteGame removes a game.
func (s *Service) DeleteGame(ctx context.Context, id uuid.UUID) error {
	if err := s.games.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("id", id.String()).Msg("game deleted")
	return nil
}

// ReplaceTags swaps out a game's tags of one type while preserving its
// tags of the other type. Names are resolved all-or-nothing before any
// write.
func (s *Service) ReplaceTags(ctx context.Context, id uuid.UUID, names []string, tagType domain.TagType) (domain.Game, error) {
	resolved, err := s.resolver.ResolveTags(ctx, names, tagType)
	if err != nil {
		return domain.Game{}, err
	}

	game, err := s.games.GetByID(ctx, id)
	if err != nil {
		return domain.Game{}, err
	}

	kept, err := s.tags.IDsOfType(ctx, game.TagIDs, tagType.Opposite())
	if err != nil {
		return domain.Game{}, fmt.Errorf("failed to partition game tags: %w", err)
	}

	return s.games.SetTags(ctx, id, append(kept, resolved...))
}

// GameNames returns the display-name to id directory over the catalog.
func (s *Service) GameNames(ctx context.Context) (map[string]uuid.UUID, error) {
	return s.games.GameNames(ctx)
}

// ListThemes returns all themes.
func (s *Service) ListThemes(ctx context.Context) ([]domain.Theme, error) {
	return s.themes.List(ctx)
}

// CreateTheme adds a theme to the reference store.
func (s *Service) CreateTheme(ctx context.Context, name string) (domain.Theme, error) {
	return s.themes.Create(ctx, name)
}

// DeleteTheme removes a theme.
func (s *Service) DeleteTheme(ctx context.Context, id uuid.UUID) error {
	return s.themes.Delete(ctx, id)
}

// ListTags returns all tags of both types.
func (s *Service) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return s.tags.List(ctx)
}

// CreateTag adds a tag of the given type.
func (s *Service) CreateTag(ctx context.Context, name string, tagType domain.TagType) (domain.Tag, error) {
	return s.tags.Create(ctx, name, tagType)
}

// DeleteTag removes a tag.
func (s *Service) DeleteTag(ctx context.Context, id uuid.UUID) error {
	return s.tags.Delete(ctx, id)
}

// ResolveThemes maps theme names to ids, all-or-nothing.
func (s *Service) ResolveThemes(ctx context.Context, names []string) ([]uuid.UUID, error) {
	return s.resolver.ResolveThemes(ctx, names)
}

// ResolveTags maps tag names of one type to ids, all-or-nothing.
func (s *Service) ResolveTags(ctx context.Context, names []string, tagType domain.TagType) ([]uuid.UUID, error) {
	return s.resolver.ResolveTags(ctx, names, tagType)
}

// hydrate joins themes and tags onto a page of games with one batch lookup
// per reference store, preserving the page's order.
func (s *Service) hydrate(ctx context.Context, games []domain.Game) ([]domain.HydratedGame, error) {
	themeIDs := make(map[uuid.UUID]struct{})
	tagIDs := make(map[uuid.UUID]struct{})
	for _, game := range games {
		for _, id := range game.ThemeIDs {
			themeIDs[id] = struct{}{}
		}
		for _, id := range game.TagIDs {
			tagIDs[id] = struct{}{}
		}
	}

	themesByID := make(map[uuid.UUID]domain.Theme, len(themeIDs))
	if len(themeIDs) > 0 {
		themes, err := s.themes.GetByIDs(ctx, keys(themeIDs))
		if err != nil {
			return nil, &domain.UpstreamError{Collaborator: "theme store", Err: err}
		}
		for _, theme := range themes {
			themesByID[theme.ID] = theme
		}
	}

	tagsByID := make(map[uuid.UUID]domain.Tag, len(tagIDs))
	if len(tagIDs) > 0 {
		tags, err := s.tags.GetByIDs(ctx, keys(tagIDs))
		if err != nil {
			return nil, &domain.UpstreamError{Collaborator: "tag store", Err: err}
		}
		for _, tag := range tags {
			tagsByID[tag.ID] = tag
		}
	}

	hydrated := make([]domain.HydratedGame, len(games))
	for i, game := range games {
		item := domain.HydratedGame{Game: game, Themes: []domain.Theme{}, Tags: []domain.Tag{}}
		for _, id := range game.ThemeIDs {
			if theme, ok := themesByID[id]; ok {
				item.Themes = append(item.Themes, theme)
			}
		}
		for _, id := range game.TagIDs {
			if tag, ok := tagsByID[id]; ok {
				item.Tags = append(item.Tags, tag)
			}
		}
		hydrated[i] = item
	}
	return hydrated, nil
}

// checkReferences verifies that every theme and tag id on a game exists.
func (s *Service) checkReferences(ctx context.Context, game domain.Game) error {
	if len(game.ThemeIDs) > 0 {
		themes, err := s.themes.GetByIDs(ctx, game.ThemeIDs)
		if err != nil {
			return &domain.UpstreamError{Collaborator: "theme store", Err: err}
		}
		if len(themes) != len(game.ThemeIDs) {
			return &domain.ReferenceNotFoundError{Kind: domain.ReferenceTheme}
		}
	}
	if len(game.TagIDs) > 0 {
		tags, err := s.tags.GetByIDs(ctx, game.TagIDs)
		if err != nil {
			return &domain.UpstreamError{Collaborator: "tag store", Err: err}
		}
		if len(tags) != len(game.TagIDs) {
			return &domain.ReferenceNotFoundError{Kind: domain.ReferenceTagCustom}
		}
	}
	return nil
}

func keys(set map[uuid.UUID]struct{}) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// asFilterValueError converts a validator failure into the domain's
// invalid-filter error, keeping the first offending field.
func asFilterValueError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &domain.InvalidFilterValueError{
			Field: fe.Field(),
			Value: fmt.Sprintf("%v", fe.Value()),
		}
	}
	return err
}
