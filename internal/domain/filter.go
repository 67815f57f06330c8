package domain

import "github.com/google/uuid"

// ResultsPerPage is the fixed catalog page size.
const ResultsPerPage = 6

// SortType selects the ordering of catalog listings.
type SortType string

const (
	SortMostPopular  SortType = "most_popular"
	SortAtoZ         SortType = "a_z"
	SortLastCreated  SortType = "last_created"
	SortFirstCreated SortType = "first_created"
)

// GameQuery is the sparse filter request for the public gallery. Every
// field is optional; absent fields add no constraint.
type GameQuery struct {
	Name          string   `validate:"omitempty,max=50"`
	Themes        []string `validate:"omitempty,dive,required"`
	GameBuilds    []string
	GameContent   []string
	Tags          []string `validate:"omitempty,dive,required"`
	Accessibility []string `validate:"omitempty,dive,required"`
	Sort          SortType `validate:"omitempty,oneof=most_popular a_z last_created first_created"`
	Page          *int     `validate:"omitempty,gte=1"`
}

// ClauseKind tags the FilterClause variants.
type ClauseKind string

const (
	// ClauseThemesOverlap matches games whose theme set intersects IDs.
	ClauseThemesOverlap ClauseKind = "themes_overlap"
	// ClauseNameContains matches games whose display name contains Text,
	// case-insensitively. Text is raw user input; the store layer escapes
	// pattern metacharacters when rendering it.
	ClauseNameContains ClauseKind = "name_contains"
	// ClauseTagsContainAll matches games whose tag set contains every id
	// in IDs.
	ClauseTagsContainAll ClauseKind = "tags_contain_all"
	// ClauseContentPresent matches games with a non-empty value under Key.
	ClauseContentPresent ClauseKind = "content_present"
	// ClauseBuildTypeIn matches games with at least one build whose type is
	// in BuildTypes.
	ClauseBuildTypeIn ClauseKind = "build_type_in"
	// ClauseWebGLBuild matches games with a playable WebGL build.
	ClauseWebGLBuild ClauseKind = "webgl_build"
	// ClauseNotPreview matches published games only.
	ClauseNotPreview ClauseKind = "not_preview"
)

// FilterClause is one compiled predicate over catalog fields. Only the
// fields relevant to its Kind are set.
type FilterClause struct {
	Kind       ClauseKind
	Text       string
	IDs        []uuid.UUID
	BuildTypes []BuildType
	Key        ContentKey
}

// GameFilter is the compiled predicate for a catalog query: every Required
// clause must hold, and at least one AnyOf clause when AnyOf is non-empty.
// Keeping the AND/OR composition explicit here keeps it auditable
// independent of the store's query language.
type GameFilter struct {
	Required []FilterClause
	AnyOf    []FilterClause
}
