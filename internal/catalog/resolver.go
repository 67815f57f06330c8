package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gamesforgood/catalog/internal/domain"
	"github.com/gamesforgood/catalog/internal/repository"
)

// ReferenceResolver turns theme and tag names from filter requests into
// store ids. Resolution is all-or-nothing: if any requested name has no
// match, the whole lookup fails rather than silently narrowing the filter.
type ReferenceResolver struct {
	themes repository.ThemeRepository
	tags   repository.TagRepository
}

// NewReferenceResolver creates a resolver over the reference stores.
func NewReferenceResolver(themes repository.ThemeRepository, tags repository.TagRepository) *ReferenceResolver {
	return &ReferenceResolver{themes: themes, tags: tags}
}

// ResolveThemes maps theme names to ids. Every name must resolve.
func (r *ReferenceResolver) ResolveThemes(ctx context.Context, names []string) ([]uuid.UUID, error) {
	if len(names) == 0 {
		return nil, nil
	}
	themes, err := r.themes.GetByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve themes: %w", err)
	}
	if len(themes) != len(names) {
		return nil, &domain.ReferenceNotFoundError{Kind: domain.ReferenceTheme}
	}
	ids := make([]uuid.UUID, len(themes))
	for i, theme := range themes {
		ids[i] = theme.ID
	}
	return ids, nil
}

// ResolveTags maps tag names of one type to ids. Every name must resolve
// within that type; a matching name carried by the other type does not
// count.
func (r *ReferenceResolver) ResolveTags(ctx context.Context, names []string, tagType domain.TagType) ([]uuid.UUID, error) {
	if len(names) == 0 {
		return nil, nil
	}
	tags, err := r.tags.GetByNames(ctx, names, tagType)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tags: %w", err)
	}
	if len(tags) != len(names) {
		kind := domain.ReferenceTagCustom
		if tagType == domain.TagTypeAccessibility {
			kind = domain.ReferenceTagAccessibility
		}
		return nil, &domain.ReferenceNotFoundError{Kind: kind}
	}
	ids := make([]uuid.UUID, len(tags))
	for i, tag := range tags {
		ids[i] = tag.ID
	}
	return ids, nil
}
