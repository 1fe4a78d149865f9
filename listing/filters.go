// Package listing keeps the apartment listing's filter state in sync with a
// shareable URL and accumulates fetched pages for display.
package listing

import (
	"apartmenthub/models"
	"net/url"
	"strconv"
	"strings"
)

const (
	// AllProjects is the project filter value that disables filtering.
	AllProjects = "all"
	DefaultPage = 1
)

// Filters is the user-controlled listing state.
type Filters struct {
	Search  string
	Project string
	Page    int
}

func DefaultFilters() Filters {
	return Filters{Project: AllProjects, Page: DefaultPage}
}

// normalize maps the zero values onto the defaults.
func (f Filters) normalize() Filters {
	f.Search = strings.TrimSpace(f.Search)
	f.Project = strings.TrimSpace(f.Project)
	if f.Project == "" {
		f.Project = AllProjects
	}
	if f.Page < DefaultPage {
		f.Page = DefaultPage
	}
	return f
}

// Values encodes only the parameters that differ from the defaults.
func (f Filters) Values() url.Values {
	f = f.normalize()
	v := url.Values{}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.Project != AllProjects {
		v.Set("project", f.Project)
	}
	if f.Page > DefaultPage {
		v.Set("page", strconv.Itoa(f.Page))
	}
	return v
}

// URL returns path with the non-default parameters as its query string.
// The default view has no query string.
func (f Filters) URL(path string) string {
	if path == "" {
		path = "/"
	}
	if qs := f.Values().Encode(); qs != "" {
		return path + "?" + qs
	}
	return path
}

// ParseFilters reads filters back from a query string. Missing or
// malformed values fall back to the defaults.
func ParseFilters(v url.Values) Filters {
	f := Filters{
		Search:  v.Get("search"),
		Project: v.Get("project"),
	}
	if n, err := strconv.Atoi(v.Get("page")); err == nil {
		f.Page = n
	}
	return f.normalize()
}

// Query converts f into an API list request.
func (f Filters) Query(perPage int) models.ListApartmentsQuery {
	f = f.normalize()
	q := models.ListApartmentsQuery{
		Page:    f.Page,
		PerPage: perPage,
		Search:  f.Search,
	}
	if f.Project != AllProjects {
		q.Project = f.Project
	}
	return q
}
