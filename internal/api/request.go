package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gamesforgood/catalog/internal/domain"
)

// parseGameQuery maps gallery query parameters onto a filter request.
// List parameters accept both repeated keys and comma-separated values.
func parseGameQuery(r *http.Request) (domain.GameQuery, error) {
	values := r.URL.Query()

	query := domain.GameQuery{
		Name:          values.Get("name"),
		Themes:        listParam(values["themes"]),
		GameBuilds:    listParam(values["gameBuilds"]),
		GameContent:   listParam(values["gameContent"]),
		Tags:          listParam(values["tags"]),
		Accessibility: listParam(values["accessibility"]),
		Sort:          domain.SortType(values.Get("sort")),
	}

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return domain.GameQuery{}, &domain.InvalidFilterValueError{Field: "page", Value: raw}
		}
		query.Page = &page
	}

	return query, nil
}

// listParam flattens repeated and comma-separated values, dropping blanks.
func listParam(raw []string) []string {
	var out []string
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
