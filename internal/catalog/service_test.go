package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gamesforgood/catalog/internal/domain"
)

func newTestService(games *fakeGameRepo, themes *fakeThemeRepo, tags *fakeTagRepo) *Service {
	return NewService(games, themes, tags, zerolog.Nop())
}

func TestQueryDefaultsToMostPopular(t *testing.T) {
	games := newFakeGameRepo()
	svc := newTestService(games, &fakeThemeRepo{}, &fakeTagRepo{})

	_, err := svc.Query(context.Background(), domain.GameQuery{})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if games.lastSort != domain.SortMostPopular {
		t.Errorf("expected default sort %q, got %q", domain.SortMostPopular, games.lastSort)
	}
	if games.lastPage != nil {
		t.Errorf("expected nil page passthrough, got %v", *games.lastPage)
	}
}

func TestQueryPassesPageThrough(t *testing.T) {
	games := newFakeGameRepo()
	svc := newTestService(games, &fakeThemeRepo{}, &fakeTagRepo{})

	page := 3
	_, err := svc.Query(context.Background(), domain.GameQuery{Page: &page})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if games.lastPage == nil || *games.lastPage != 3 {
		t.Errorf("expected page 3 passed through, got %v", games.lastPage)
	}
}

func TestQueryRejectsInvalidSort(t *testing.T) {
	svc := newTestService(newFakeGameRepo(), &fakeThemeRepo{}, &fakeTagRepo{})

	_, err := svc.Query(context.Background(), domain.GameQuery{Sort: "newest"})
	var ferr *domain.InvalidFilterValueError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected invalid filter value error, got %v", err)
	}
}

func TestQueryRejectsNonPositivePage(t *testing.T) {
	svc := newTestService(newFakeGameRepo(), &fakeThemeRepo{}, &fakeTagRepo{})

	zero := 0
	_, err := svc.Query(context.Background(), domain.GameQuery{Page: &zero})
	var ferr *domain.InvalidFilterValueError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected invalid filter value error, got %v", err)
	}
}

func TestQueryHydratesReferences(t *testing.T) {
	themes := &fakeThemeRepo{}
	science, _ := themes.Create(context.Background(), "science")
	tags := &fakeTagRepo{}
	puzzle, _ := tags.Create(context.Background(), "puzzle", domain.TagTypeCustom)

	games := newFakeGameRepo()
	games.queryGames = []domain.Game{
		{
			Name:     "Orbit",
			ThemeIDs: []uuid.UUID{science.ID},
			TagIDs:   []uuid.UUID{puzzle.ID},
		},
	}
	games.queryTotal = 13

	svc := newTestService(games, themes, tags)
	result, err := svc.Query(context.Background(), domain.GameQuery{})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	if result.TotalCount != 13 {
		t.Errorf("expected total 13, got %d", result.TotalCount)
	}
	if len(result.Games) != 1 {
		t.Fatalf("expected 1 game, got %d", len(result.Games))
	}
	game := result.Games[0]
	if len(game.Themes) != 1 || game.Themes[0].Name != "science" {
		t.Errorf("expected hydrated theme science, got %+v", game.Themes)
	}
	if len(game.Tags) != 1 || game.Tags[0].Name != "puzzle" {
		t.Errorf("expected hydrated tag puzzle, got %+v", game.Tags)
	}
}

func TestQueryWrapsStoreFailure(t *testing.T) {
	games := newFakeGameRepo()
	games.queryErr = errors.New("connection refused")
	svc := newTestService(games, &fakeThemeRepo{}, &fakeTagRepo{})

	_, err := svc.Query(context.Background(), domain.GameQuery{})
	var uerr *domain.UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestCreateGameNormalizesAndChecksReferences(t *testing.T) {
	themes := &fakeThemeRepo{}
	science, _ := themes.Create(context.Background(), "science")
	games := newFakeGameRepo()
	svc := newTestService(games, themes, &fakeTagRepo{})

	created, err := svc.CreateGame(context.Background(), domain.Game{
		Name:     "Gravity Lab",
		ThemeIDs: []uuid.UUID{science.ID},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.LowercaseName != "gravity lab" {
		t.Errorf("expected normalized name key, got %q", created.LowercaseName)
	}

	// A second create differing only in case collides on the name key.
	_, err = svc.CreateGame(context.Background(), domain.Game{Name: "GRAVITY LAB"})
	if !errors.Is(err, domain.ErrGameExists) {
		t.Fatalf("expected ErrGameExists, got %v", err)
	}
}

func TestCreateGameRejectsUnknownThemeReference(t *testing.T) {
	svc := newTestService(newFakeGameRepo(), &fakeThemeRepo{}, &fakeTagRepo{})

	_, err := svc.CreateGame(context.Background(), domain.Game{
		Name:     "Orphan",
		ThemeIDs: []uuid.UUID{uuid.New()},
	})
	if !domain.IsReferenceNotFound(err) {
		t.Fatalf("expected reference-not-found error, got %v", err)
	}
}

func TestReplaceTagsPreservesOtherType(t *testing.T) {
	tags := &fakeTagRepo{}
	subtitles, _ := tags.Create(context.Background(), "subtitles", domain.TagTypeAccessibility)
	oldCustom, _ := tags.Create(context.Background(), "arcade", domain.TagTypeCustom)
	newCustom, _ := tags.Create(context.Background(), "puzzle", domain.TagTypeCustom)

	games := newFakeGameRepo()
	svc := newTestService(games, &fakeThemeRepo{}, tags)

	game, err := games.Create(context.Background(), domain.Game{
		Name:          "Maze Runner",
		LowercaseName: "maze runner",
		TagIDs:        []uuid.UUID{subtitles.ID, oldCustom.ID},
	})
	if err != nil {
		t.Fatalf("seed create failed: %v", err)
	}

	updated, err := svc.ReplaceTags(context.Background(), game.ID, []string{"puzzle"}, domain.TagTypeCustom)
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	if len(updated.TagIDs) != 2 {
		t.Fatalf("expected 2 tags after replace, got %d", len(updated.TagIDs))
	}
	if updated.TagIDs[0] != subtitles.ID {
		t.Errorf("expected accessibility tag preserved first, got %v", updated.TagIDs)
	}
	if updated.TagIDs[1] != newCustom.ID {
		t.Errorf("expected new custom tag, got %v", updated.TagIDs)
	}
}

func TestReplaceTagsAllOrNothing(t *testing.T) {
	games := newFakeGameRepo()
	game, _ := games.Create(context.Background(), domain.Game{Name: "Solo", LowercaseName: "solo"})
	svc := newTestService(games, &fakeThemeRepo{}, &fakeTagRepo{})

	_, err := svc.ReplaceTags(context.Background(), game.ID, []string{"missing"}, domain.TagTypeCustom)
	if !domain.IsReferenceNotFound(err) {
		t.Fatalf("expected reference-not-found error, got %v", err)
	}
	stored, _ := games.GetByID(context.Background(), game.ID)
	if len(stored.TagIDs) != 0 {
		t.Errorf("tags must be untouched after failed resolution, got %v", stored.TagIDs)
	}
}
