package models

import (
	"strconv"
	"strings"
)

// Pagination bounds for the list endpoint. Page and page size are capped to
// bound the cost of the page query and the count.
const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPage        = 50
	MaxPerPage     = 50
)

// ListApartmentsParams is the raw query string of the list endpoint. Fields
// are pointers so an absent parameter can be told apart from an empty one.
type ListApartmentsParams struct {
	Page    *string `form:"page" validate:"omitempty,intrange=1:50"`
	PerPage *string `form:"perPage" validate:"omitempty,intrange=1:50"`
	Search  *string `form:"search" validate:"omitempty,utf8,min=1,max=255,nohtml"`
	Project *string `form:"project" validate:"omitempty,utf8,min=1,max=255,nohtml"`
	Status  *string `form:"status" validate:"omitempty,oneof=available rented pending"`
}

// Normalize trims the free-text filters.
func (p *ListApartmentsParams) Normalize() {
	trimPtr(p.Search)
	trimPtr(p.Project)
	trimPtr(p.Status)
}

// Query converts validated params into a ListApartmentsQuery, applying the
// default page and page size.
func (p ListApartmentsParams) Query() ListApartmentsQuery {
	q := ListApartmentsQuery{
		Page:    atoiOr(p.Page, DefaultPage),
		PerPage: atoiOr(p.PerPage, DefaultPerPage),
	}
	if p.Search != nil {
		q.Search = *p.Search
	}
	if p.Project != nil {
		q.Project = *p.Project
	}
	if p.Status != nil {
		q.Status = ApartmentStatus(*p.Status)
	}
	return q
}

// ListApartmentsQuery is a validated filter/pagination request. Blank
// filters mean "no filter".
type ListApartmentsQuery struct {
	Page    int
	PerPage int
	Search  string
	Project string
	Status  ApartmentStatus
}

// Offset is the number of rows skipped for the requested page.
func (q ListApartmentsQuery) Offset() int {
	return (q.Page - 1) * q.PerPage
}

// SearchParams is the query string of the legacy free-text search endpoint.
type SearchParams struct {
	Q string `form:"q" validate:"required,utf8,min=3,max=255,nohtml"`
}

func (p *SearchParams) Normalize() {
	p.Q = strings.TrimSpace(p.Q)
}

// PaginatedApartments is one page of the apartment listing.
type PaginatedApartments struct {
	Data       []Apartment `json:"data"`
	Page       int         `json:"page"`
	PerPage    int         `json:"perPage"`
	Total      *int64      `json:"total,omitempty"`
	TotalPages int         `json:"totalPages"`
}

// TotalPages returns ceil(total/perPage).
func TotalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

func atoiOr(s *string, def int) int {
	if s == nil {
		return def
	}
	n, err := strconv.Atoi(*s)
	if err != nil {
		return def
	}
	return n
}
