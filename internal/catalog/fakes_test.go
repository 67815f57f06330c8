package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/gamesforgood/catalog/internal/domain"
)

// fakeGameRepo is an in-memory GameRepository that records the arguments of
// the last facet query instead of executing a predicate.
type fakeGameRepo struct {
	games      map[uuid.UUID]domain.Game
	queryGames []domain.Game
	queryTotal int
	queryErr   error

	lastFilter domain.GameFilter
	lastSort   domain.SortType
	lastPage   *int

	popularity map[string]int
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: make(map[uuid.UUID]domain.Game)}
}

func (f *fakeGameRepo) Create(_ context.Context, game domain.Game) (domain.Game, error) {
	for _, existing := range f.games {
		if existing.LowercaseName == game.LowercaseName {
			return domain.Game{}, domain.ErrGameExists
		}
	}
	game.ID = uuid.New()
	f.games[game.ID] = game
	return game, nil
}

func (f *fakeGameRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Game, error) {
	game, ok := f.games[id]
	if !ok {
		return domain.Game{}, domain.ErrGameNotFound
	}
	return game, nil
}

func (f *fakeGameRepo) Update(_ context.Context, game domain.Game) (domain.Game, error) {
	if _, ok := f.games[game.ID]; !ok {
		return domain.Game{}, domain.ErrGameNotFound
	}
	f.games[game.ID] = game
	return game, nil
}

func (f *fakeGameRepo) SetTags(_ context.Context, id uuid.UUID, tagIDs []uuid.UUID) (domain.Game, error) {
	game, ok := f.games[id]
	if !ok {
		return domain.Game{}, domain.ErrGameNotFound
	}
	game.TagIDs = tagIDs
	f.games[id] = game
	return game, nil
}

func (f *fakeGameRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.games[id]; !ok {
		return domain.ErrGameNotFound
	}
	delete(f.games, id)
	return nil
}

func (f *fakeGameRepo) Query(_ context.Context, filter domain.GameFilter, sortType domain.SortType, page *int) ([]domain.Game, int, error) {
	f.lastFilter = filter
	f.lastSort = sortType
	f.lastPage = page
	if f.queryErr != nil {
		return nil, 0, f.queryErr
	}
	return f.queryGames, f.queryTotal, nil
}

func (f *fakeGameRepo) GameNames(_ context.Context) (map[string]uuid.UUID, error) {
	names := make(map[string]uuid.UUID, len(f.games))
	for id, game := range f.games {
		names[game.Name] = id
	}
	return names, nil
}

func (f *fakeGameRepo) SetPopularity(_ context.Context, counts map[string]int) error {
	f.popularity = counts
	return nil
}

// fakeThemeRepo is an in-memory ThemeRepository.
type fakeThemeRepo struct {
	themes []domain.Theme
	err    error
}

func (f *fakeThemeRepo) Create(_ context.Context, name string) (domain.Theme, error) {
	theme := domain.Theme{ID: uuid.New(), Name: name}
	f.themes = append(f.themes, theme)
	return theme, nil
}

func (f *fakeThemeRepo) GetByNames(_ context.Context, names []string) ([]domain.Theme, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Theme
	for _, theme := range f.themes {
		for _, name := range names {
			if theme.Name == name {
				out = append(out, theme)
			}
		}
	}
	return out, nil
}

func (f *fakeThemeRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]domain.Theme, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Theme
	for _, theme := range f.themes {
		for _, id := range ids {
			if theme.ID == id {
				out = append(out, theme)
			}
		}
	}
	return out, nil
}

func (f *fakeThemeRepo) List(_ context.Context) ([]domain.Theme, error) {
	out := append([]domain.Theme(nil), f.themes...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeThemeRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, theme := range f.themes {
		if theme.ID == id {
			f.themes = append(f.themes[:i], f.themes[i+1:]...)
			return nil
		}
	}
	return domain.ErrGameNotFound
}

// fakeTagRepo is an in-memory TagRepository.
type fakeTagRepo struct {
	tags []domain.Tag
	err  error
}

func (f *fakeTagRepo) Create(_ context.Context, name string, tagType domain.TagType) (domain.Tag, error) {
	tag := domain.Tag{ID: uuid.New(), Name: name, Type: tagType}
	f.tags = append(f.tags, tag)
	return tag, nil
}

func (f *fakeTagRepo) GetByNames(_ context.Context, names []string, tagType domain.TagType) ([]domain.Tag, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Tag
	for _, tag := range f.tags {
		if tag.Type != tagType {
			continue
		}
		for _, name := range names {
			if tag.Name == name {
				out = append(out, tag)
			}
		}
	}
	return out, nil
}

func (f *fakeTagRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]domain.Tag, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Tag
	for _, tag := range f.tags {
		for _, id := range ids {
			if tag.ID == id {
				out = append(out, tag)
			}
		}
	}
	return out, nil
}

func (f *fakeTagRepo) IDsOfType(_ context.Context, ids []uuid.UUID, tagType domain.TagType) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, tag := range f.tags {
		if tag.Type != tagType {
			continue
		}
		for _, id := range ids {
			if tag.ID == id {
				out = append(out, id)
			}
		}
	}
	return out, nil
}

func (f *fakeTagRepo) List(_ context.Context) ([]domain.Tag, error) {
	out := append([]domain.Tag(nil), f.tags...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return strings.Compare(out[i].Name, out[j].Name) < 0
	})
	return out, nil
}

func (f *fakeTagRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, tag := range f.tags {
		if tag.ID == id {
			f.tags = append(f.tags[:i], f.tags[i+1:]...)
			return nil
		}
	}
	return domain.ErrGameNotFound
}
