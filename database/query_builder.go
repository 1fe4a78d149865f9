package database

import (
	"apartmenthub/models"
	"fmt"
	"strings"
)

const (
	columnUnitName    = "a.unit_name"
	columnUnitNumber  = "a.unit_number"
	columnAddress     = "a.address"
	columnDescription = "a.description"
	columnStatus      = "a.status"
	columnCreatedAt   = "a.created_at"
	columnProjectName = "p.name"
)

// searchColumns are matched by the free-text search.
var searchColumns = []string{
	columnUnitName,
	columnUnitNumber,
	columnAddress,
	columnDescription,
	columnProjectName,
}

// QueryBuilder helps build WHERE clauses safely. Column names are supplied
// by code; every value goes through a $N placeholder.
type QueryBuilder struct {
	conditions []string
	args       []any
	argCount   int
}

func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{
		conditions: []string{},
		args:       []any{},
		argCount:   1,
	}
}

// AddCondition adds an exact-match condition.
func (qb *QueryBuilder) AddCondition(column string, value any) {
	qb.conditions = append(qb.conditions, fmt.Sprintf("%s = $%d", column, qb.argCount))
	qb.args = append(qb.args, value)
	qb.argCount++
}

// AddContains adds a case-insensitive substring match.
func (qb *QueryBuilder) AddContains(column, value string) {
	qb.AddAnyContains([]string{column}, value)
}

// AddAnyContains adds one condition that matches when any of columns
// contains value, case-insensitively. All columns share one argument.
func (qb *QueryBuilder) AddAnyContains(columns []string, value string) {
	if len(columns) == 0 {
		return
	}
	matches := make([]string, 0, len(columns))
	for _, column := range columns {
		matches = append(matches, fmt.Sprintf(`%s ILIKE $%d ESCAPE '\'`, column, qb.argCount))
	}
	cond := strings.Join(matches, " OR ")
	if len(matches) > 1 {
		cond = "(" + cond + ")"
	}
	qb.conditions = append(qb.conditions, cond)
	qb.args = append(qb.args, "%"+escapeLike(value)+"%")
	qb.argCount++
}

func (qb *QueryBuilder) WhereClause() string {
	if len(qb.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(qb.conditions, " AND ")
}

func (qb *QueryBuilder) Args() []any {
	return qb.args
}

func (qb *QueryBuilder) NextArgNum() int {
	return qb.argCount
}

// ApartmentFilter is the predicate part of a listing request.
type ApartmentFilter struct {
	Search  string
	Project string
	Status  models.ApartmentStatus
}

// ApartmentFilterFrom copies the predicate fields out of a list query.
func ApartmentFilterFrom(q models.ListApartmentsQuery) ApartmentFilter {
	return ApartmentFilter{Search: q.Search, Project: q.Project, Status: q.Status}
}

// BuildApartmentFilter translates a filter into WHERE conditions. Blank
// filters are left out entirely. A status outside the enumerated set is
// ignored here; it is rejected at the request boundary.
func BuildApartmentFilter(filter ApartmentFilter) *QueryBuilder {
	qb := NewQueryBuilder()

	if search := strings.TrimSpace(filter.Search); search != "" {
		qb.AddAnyContains(searchColumns, search)
	}

	if status := models.ApartmentStatus(strings.TrimSpace(string(filter.Status))); status != "" && status.Valid() {
		qb.AddCondition(columnStatus, string(status))
	}

	if project := strings.TrimSpace(filter.Project); project != "" {
		qb.AddContains(columnProjectName, project)
	}

	return qb
}

// Helper functions

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes value match literally inside a LIKE pattern.
func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
