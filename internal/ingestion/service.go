package ingestion

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/gamesforgood/catalog/internal/domain"
)

var (
	// ErrUnsupportedFormat is returned when an uploaded file is not supported.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}
)

// Catalog is the slice of the catalog service the importer needs.
type Catalog interface {
	CreateGame(ctx context.Context, game domain.Game) (domain.Game, error)
	ResolveThemes(ctx context.Context, names []string) ([]uuid.UUID, error)
	ResolveTags(ctx context.Context, names []string, tagType domain.TagType) ([]uuid.UUID, error)
}

// Service ingests tabular game uploads into the catalog.
type Service struct {
	catalog Catalog
	logger  zerolog.Logger
}

// NewService creates a new ingestion service.
func NewService(c Catalog, logger zerolog.Logger) *Service {
	return &Service{
		catalog: c,
		logger:  logger.With().Str("component", "ingestion").Logger(),
	}
}

// RowError records why one upload row was rejected.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Report summarizes an import run. Row failures do not abort the run;
// every valid row is created.
type Report struct {
	TotalRows int        `json:"totalRows"`
	Created   int        `json:"created"`
	Failed    int        `json:"failed"`
	Errors    []RowError `json:"errors,omitempty"`
}

// Import reads a CSV or XLSX upload and creates a game per data row.
func (s *Service) Import(ctx context.Context, data io.Reader, fileName string) (Report, error) {
	rows, err := parseTable(data, fileName)
	if err != nil {
		return Report{}, err
	}
	if len(rows) == 0 {
		return Report{}, errors.New("upload has no header row")
	}

	header := normalizeHeader(rows[0])
	report := Report{}

	for i, row := range rows[1:] {
		rowNumber := i + 2
		if isBlankRow(row) {
			continue
		}
		report.TotalRows++

		game, err := s.buildGame(ctx, header, row)
		if err == nil {
			_, err = s.catalog.CreateGame(ctx, game)
		}
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, RowError{Row: rowNumber, Message: err.Error()})
			continue
		}
		report.Created++
	}

	s.logger.Info().
		Str("file", fileName).
		Int("created", report.Created).
		Int("failed", report.Failed).
		Msg("import finished")
	return report, nil
}

// buildGame maps one upload row onto a game, resolving theme and tag names
// through the catalog so unknown references reject the row.
func (s *Service) buildGame(ctx context.Context, header map[string]int, row []string) (domain.Game, error) {
	cell := func(column string) string {
		idx, ok := header[column]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	name := cell("name")
	if name == "" {
		return domain.Game{}, errors.New("missing game name")
	}

	game := domain.Game{
		Name:           name,
		Description:    cell("description"),
		Image:          cell("image"),
		Lesson:         cell("lesson"),
		ParentingGuide: cell("parenting_guide"),
		AnswerKey:      cell("answer_key"),
		VideoTrailer:   cell("video_trailer"),
	}

	var err error
	if game.WebGLBuild, err = parseBool(cell("webgl_build")); err != nil {
		return domain.Game{}, fmt.Errorf("webgl_build: %w", err)
	}
	if game.RemoteURL, err = parseBool(cell("remote_url")); err != nil {
		return domain.Game{}, fmt.Errorf("remote_url: %w", err)
	}
	// Sheets without a preview column import as unpublished.
	if _, ok := header["preview"]; !ok {
		game.Preview = true
	} else if game.Preview, err = parseBool(cell("preview")); err != nil {
		return domain.Game{}, fmt.Errorf("preview: %w", err)
	}

	if game.Builds, err = parseBuilds(cell("builds")); err != nil {
		return domain.Game{}, err
	}

	if themes := splitList(cell("themes")); len(themes) > 0 {
		game.ThemeIDs, err = s.catalog.ResolveThemes(ctx, themes)
		if err != nil {
			return domain.Game{}, err
		}
	}
	if tags := splitList(cell("tags")); len(tags) > 0 {
		ids, err := s.catalog.ResolveTags(ctx, tags, domain.TagTypeCustom)
		if err != nil {
			return domain.Game{}, err
		}
		game.TagIDs = append(game.TagIDs, ids...)
	}
	if access := splitList(cell("accessibility")); len(access) > 0 {
		ids, err := s.catalog.ResolveTags(ctx, access, domain.TagTypeAccessibility)
		if err != nil {
			return domain.Game{}, err
		}
		game.TagIDs = append(game.TagIDs, ids...)
	}

	return game, nil
}

// parseTable dispatches on the file extension.
func parseTable(data io.Reader, fileName string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return parseCSV(data)
	case ".xlsx":
		return parseExcel(data)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func parseCSV(data io.Reader) ([][]string, error) {
	buffered := bufio.NewReader(data)
	if peeked, err := buffered.Peek(len(byteOrderMark)); err == nil && bytes.Equal(peeked, byteOrderMark) {
		buffered.Discard(len(byteOrderMark))
	}

	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV upload: %w", err)
	}
	return rows, nil
}

func parseExcel(data io.Reader) ([][]string, error) {
	file, err := excelize.OpenReader(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX upload: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("XLSX upload has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read XLSX sheet: %w", err)
	}
	return rows, nil
}

// normalizeHeader maps lowercased, trimmed column names to their index.
func normalizeHeader(row []string) map[string]int {
	header := make(map[string]int, len(row))
	for i, label := range row {
		label = strings.ToLower(strings.TrimSpace(label))
		if label != "" {
			header[label] = i
		}
	}
	return header
}

// parseBuilds reads a "type|link" list separated by semicolons, such as
// "windows|https://example.com/win;mac|https://example.com/mac".
func parseBuilds(value string) ([]domain.Build, error) {
	if value == "" {
		return nil, nil
	}

	var builds []domain.Build
	for _, item := range strings.Split(value, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		buildType, link, _ := strings.Cut(item, "|")
		buildType = strings.TrimSpace(buildType)
		if !domain.KnownBuildType(buildType) || domain.BuildType(buildType) == domain.BuildWebGL {
			return nil, fmt.Errorf("unknown build type %q", buildType)
		}
		builds = append(builds, domain.Build{
			Type: domain.BuildType(buildType),
			Link: strings.TrimSpace(link),
		})
	}
	return builds, nil
}

func parseBool(value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(strings.ToLower(value))
	if err != nil {
		return false, fmt.Errorf("not a boolean: %q", value)
	}
	return parsed, nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
