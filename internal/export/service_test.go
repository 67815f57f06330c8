package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gamesforgood/catalog/internal/catalog"
	"github.com/gamesforgood/catalog/internal/domain"
)

type fakeCatalog struct {
	result   catalog.QueryResult
	err      error
	gotQuery domain.GameQuery
}

func (f *fakeCatalog) Query(_ context.Context, query domain.GameQuery) (catalog.QueryResult, error) {
	f.gotQuery = query
	if f.err != nil {
		return catalog.QueryResult{}, f.err
	}
	return f.result, nil
}

func TestWriteStreamsAllMatches(t *testing.T) {
	created := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	source := &fakeCatalog{result: catalog.QueryResult{
		Games: []domain.HydratedGame{
			{
				Game: domain.Game{
					Name:        "Orbit",
					Description: "physics sandbox",
					WebGLBuild:  true,
					Popularity:  42,
					CreatedAt:   created,
					Builds:      []domain.Build{{Type: domain.BuildWindows}},
				},
				Themes: []domain.Theme{{Name: "science"}, {Name: "space"}},
				Tags:   []domain.Tag{{Name: "puzzle"}},
			},
		},
		TotalCount: 1,
	}}

	svc := NewService(source, zerolog.Nop())
	var buf bytes.Buffer

	page := 4
	rows, err := svc.Write(context.Background(), &buf, domain.GameQuery{Page: &page})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if rows != 1 {
		t.Errorf("expected 1 row, got %d", rows)
	}
	if source.gotQuery.Page != nil {
		t.Error("export must clear the page window before querying")
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse exported CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus 1 row, got %d records", len(records))
	}
	row := records[1]
	if row[0] != "Orbit" || row[3] != "science;space" || row[4] != "puzzle" {
		t.Errorf("unexpected row contents: %v", row)
	}
	if row[5] != "windows" || row[6] != "true" || row[13] != "42" {
		t.Errorf("unexpected row contents: %v", row)
	}
	if row[14] != "2026-05-01 09:30:00" {
		t.Errorf("unexpected created_at format: %q", row[14])
	}
}

func TestWritePropagatesQueryFailure(t *testing.T) {
	source := &fakeCatalog{err: errors.New("store down")}
	svc := NewService(source, zerolog.Nop())

	var buf bytes.Buffer
	_, err := svc.Write(context.Background(), &buf, domain.GameQuery{})
	if err == nil {
		t.Fatal("expected error when the query fails")
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written after a failed query, got %q", buf.String())
	}
}
