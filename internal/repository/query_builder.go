package repository

import (
	"fmt"
	"strings"

	"github.com/gamesforgood/catalog/internal/domain"
)

// contentColumns maps supplementary content keys to their table columns.
var contentColumns = map[domain.ContentKey]string{
	domain.ContentLesson:         "lesson",
	domain.ContentParentingGuide: "parenting_guide",
	domain.ContentAnswerKey:      "answer_key",
	domain.ContentVideoTrailer:   "video_trailer",
}

// buildWhere renders the compiled filter into a parameterized WHERE body
// and its arguments. It is called exactly once per facet query so the
// count and page statements cannot diverge.
func buildWhere(filter domain.GameFilter) (string, []any, error) {
	var conditions []string
	var args []any

	for _, clause := range filter.Required {
		sql, err := renderClause(clause, &args)
		if err != nil {
			return "", nil, err
		}
		conditions = append(conditions, sql)
	}

	if len(filter.AnyOf) > 0 {
		var alternatives []string
		for _, clause := range filter.AnyOf {
			sql, err := renderClause(clause, &args)
			if err != nil {
				return "", nil, err
			}
			alternatives = append(alternatives, sql)
		}
		conditions = append(conditions, "("+strings.Join(alternatives, " OR ")+")")
	}

	if len(conditions) == 0 {
		return "TRUE", args, nil
	}
	return strings.Join(conditions, " AND "), args, nil
}

func renderClause(clause domain.FilterClause, args *[]any) (string, error) {
	switch clause.Kind {
	case domain.ClauseThemesOverlap:
		*args = append(*args, clause.IDs)
		return fmt.Sprintf("themes && $%d", len(*args)), nil
	case domain.ClauseNameContains:
		*args = append(*args, "%"+escapeLike(clause.Text)+"%")
		return fmt.Sprintf("name ILIKE $%d", len(*args)), nil
	case domain.ClauseTagsContainAll:
		*args = append(*args, clause.IDs)
		return fmt.Sprintf("tags @> $%d", len(*args)), nil
	case domain.ClauseContentPresent:
		column, ok := contentColumns[clause.Key]
		if !ok {
			return "", fmt.Errorf("no column for content key %q", clause.Key)
		}
		return fmt.Sprintf("coalesce(%s, '') <> ''", column), nil
	case domain.ClauseBuildTypeIn:
		types := make([]string, len(clause.BuildTypes))
		for i, t := range clause.BuildTypes {
			types[i] = string(t)
		}
		*args = append(*args, types)
		return fmt.Sprintf("EXISTS (SELECT 1 FROM jsonb_array_elements(builds) AS b WHERE b->>'type' = ANY($%d))", len(*args)), nil
	case domain.ClauseWebGLBuild:
		return "webgl_build", nil
	case domain.ClauseNotPreview:
		return "NOT preview", nil
	default:
		return "", fmt.Errorf("unknown filter clause kind %q", clause.Kind)
	}
}

// escapeLike neutralizes LIKE metacharacters in user-supplied search text
// so the name filter is a plain substring match.
func escapeLike(text string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(text)
}

// orderBy maps a sort selection to its ORDER BY body. Insertion-order
// sorts key off created_at with id as tiebreak.
func orderBy(sort domain.SortType) string {
	switch sort {
	case domain.SortAtoZ:
		return "lowercase_name ASC"
	case domain.SortLastCreated:
		return "created_at DESC, id DESC"
	case domain.SortFirstCreated:
		return "created_at ASC, id ASC"
	default:
		return "popularity DESC, lowercase_name ASC"
	}
}

// pageWindow computes the LIMIT/OFFSET pair for a 1-based page number.
func pageWindow(page int) (limit, offset int) {
	return domain.ResultsPerPage, (page - 1) * domain.ResultsPerPage
}
