package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/gamesforgood/catalog/internal/domain"
)

// Compiler turns a sparse GameQuery into the predicate the store executes.
// Clause order is deterministic so a given request always compiles to the
// same filter: themes, name, builds, content, tags, then the publication
// guard.
type Compiler struct {
	resolver *ReferenceResolver
}

// NewCompiler creates a filter compiler over a reference resolver.
func NewCompiler(resolver *ReferenceResolver) *Compiler {
	return &Compiler{resolver: resolver}
}

// Compile builds the store predicate for a filter request. Name resolution
// failures and unknown filter tokens abort compilation; nothing is queried.
func (c *Compiler) Compile(ctx context.Context, query domain.GameQuery) (domain.GameFilter, error) {
	var filter domain.GameFilter

	if len(query.Themes) > 0 {
		ids, err := c.resolver.ResolveThemes(ctx, query.Themes)
		if err != nil {
			return domain.GameFilter{}, err
		}
		filter.Required = append(filter.Required, domain.FilterClause{
			Kind: domain.ClauseThemesOverlap,
			IDs:  ids,
		})
	}

	if query.Name != "" {
		filter.Required = append(filter.Required, domain.FilterClause{
			Kind: domain.ClauseNameContains,
			Text: query.Name,
		})
	}

	if len(query.GameBuilds) > 0 {
		if err := c.compileBuilds(query.GameBuilds, &filter); err != nil {
			return domain.GameFilter{}, err
		}
	}

	for _, token := range query.GameContent {
		key, ok := domain.ParseContentKey(token)
		if !ok {
			return domain.GameFilter{}, &domain.InvalidFilterValueError{Field: "gameContent", Value: token}
		}
		filter.Required = append(filter.Required, domain.FilterClause{
			Kind: domain.ClauseContentPresent,
			Key:  key,
		})
	}

	tagIDs, err := c.compileTags(ctx, query)
	if err != nil {
		return domain.GameFilter{}, err
	}
	if len(tagIDs) > 0 {
		filter.Required = append(filter.Required, domain.FilterClause{
			Kind: domain.ClauseTagsContainAll,
			IDs:  tagIDs,
		})
	}

	// The public gallery never lists preview games, whatever the request.
	filter.Required = append(filter.Required, domain.FilterClause{
		Kind: domain.ClauseNotPreview,
	})

	return filter, nil
}

// compileBuilds handles the webgl special case: webgl is not a build list
// entry but a flag on the game, so a request naming it matches either the
// flag or any of the other requested platforms.
func (c *Compiler) compileBuilds(tokens []string, filter *domain.GameFilter) error {
	var platforms []domain.BuildType
	wantsWebGL := false

	for _, token := range tokens {
		if !domain.KnownBuildType(token) {
			return &domain.InvalidFilterValueError{Field: "gameBuilds", Value: token}
		}
		if domain.BuildType(token) == domain.BuildWebGL {
			wantsWebGL = true
			continue
		}
		platforms = append(platforms, domain.BuildType(token))
	}

	switch {
	case wantsWebGL && len(platforms) > 0:
		filter.AnyOf = append(filter.AnyOf,
			domain.FilterClause{Kind: domain.ClauseWebGLBuild},
			domain.FilterClause{Kind: domain.ClauseBuildTypeIn, BuildTypes: platforms},
		)
	case wantsWebGL:
		filter.Required = append(filter.Required, domain.FilterClause{
			Kind: domain.ClauseWebGLBuild,
		})
	case len(platforms) > 0:
		filter.Required = append(filter.Required, domain.FilterClause{
			Kind:       domain.ClauseBuildTypeIn,
			BuildTypes: platforms,
		})
	}
	return nil
}

// compileTags resolves custom and accessibility tag names separately, each
// scoped to its own type, and merges the ids into one contains-all set.
func (c *Compiler) compileTags(ctx context.Context, query domain.GameQuery) ([]uuid.UUID, error) {
	var ids []uuid.UUID

	if len(query.Tags) > 0 {
		custom, err := c.resolver.ResolveTags(ctx, query.Tags, domain.TagTypeCustom)
		if err != nil {
			return nil, err
		}
		ids = append(ids, custom...)
	}

	if len(query.Accessibility) > 0 {
		accessibility, err := c.resolver.ResolveTags(ctx, query.Accessibility, domain.TagTypeAccessibility)
		if err != nil {
			return nil, err
		}
		ids = append(ids, accessibility...)
	}

	return ids, nil
}
