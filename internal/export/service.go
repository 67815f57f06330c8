package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gamesforgood/catalog/internal/catalog"
	"github.com/gamesforgood/catalog/internal/domain"
)

// Catalog is the slice of the catalog service the exporter needs.
type Catalog interface {
	Query(ctx context.Context, query domain.GameQuery) (catalog.QueryResult, error)
}

// Service writes the filtered catalog as CSV.
type Service struct {
	catalog Catalog
	logger  zerolog.Logger
}

// NewService creates a new export service.
func NewService(c Catalog, logger zerolog.Logger) *Service {
	return &Service{
		catalog: c,
		logger:  logger.With().Str("component", "export").Logger(),
	}
}

var csvHeader = []string{
	"name", "description", "image", "themes", "tags", "builds",
	"webgl_build", "remote_url", "lesson", "parenting_guide",
	"answer_key", "video_trailer", "preview", "popularity", "created_at",
}

// Write runs the filter with no page window and streams every match as one
// CSV row. It returns the number of data rows written.
func (s *Service) Write(ctx context.Context, w io.Writer, query domain.GameQuery) (int, error) {
	query.Page = nil

	result, err := s.catalog.Query(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch games for export: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("failed to write export header: %w", err)
	}

	rows := 0
	for _, game := range result.Games {
		if err := writer.Write(exportRow(game)); err != nil {
			return rows, fmt.Errorf("failed to write export row: %w", err)
		}
		rows++
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return rows, fmt.Errorf("failed to flush export: %w", err)
	}

	s.logger.Info().Int("rows", rows).Msg("catalog exported")
	return rows, nil
}

func exportRow(game domain.HydratedGame) []string {
	themes := make([]string, len(game.Themes))
	for i, theme := range game.Themes {
		themes[i] = theme.Name
	}
	tags := make([]string, len(game.Tags))
	for i, tag := range game.Tags {
		tags[i] = tag.Name
	}
	builds := make([]string, len(game.Builds))
	for i, build := range game.Builds {
		builds[i] = string(build.Type)
	}

	return []string{
		game.Name,
		game.Description,
		game.Image,
		strings.Join(themes, ";"),
		strings.Join(tags, ";"),
		strings.Join(builds, ";"),
		strconv.FormatBool(game.WebGLBuild),
		strconv.FormatBool(game.RemoteURL),
		game.Lesson,
		game.ParentingGuide,
		game.AnswerKey,
		game.VideoTrailer,
		strconv.FormatBool(game.Preview),
		strconv.Itoa(game.Popularity),
		game.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}
