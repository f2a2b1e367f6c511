package repository

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"todoservice/internal/core/domain"
)

const likeEscape = "!"

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

var sortColumns = map[domain.SortField]string{
	domain.SortByCreatedAt: "created_at",
	domain.SortByUpdatedAt: "updated_at",
	domain.SortByDueDate:   "due_date",
	domain.SortByPriority:  "priority",
	domain.SortByTitle:     "title",
}

const priorityRank = "CASE priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 ELSE 0 END"

// BuildTodoFilter turns a normalized list query into the predicate shared by
// the count and the page statements. An empty query matches every row.
func BuildTodoFilter(q domain.ListQuery) sq.Sqlizer {
	filter := sq.And{}

	switch q.Status {
	case domain.StatusCompleted:
		filter = append(filter, sq.Eq{"completed": true})
	case domain.StatusPending:
		filter = append(filter, sq.Eq{"completed": false})
	}

	if q.Priority != nil {
		filter = append(filter, sq.Eq{"priority": string(*q.Priority)})
	}

	if q.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(q.Search)) + "%"

		filter = append(filter, sq.Or{
			sq.Expr("LOWER(title) LIKE ? ESCAPE '"+likeEscape+"'", pattern),
			sq.Expr("LOWER(description) LIKE ? ESCAPE '"+likeEscape+"'", pattern),
		})
	}

	if q.Tag != "" {
		filter = append(filter, sq.Expr("tags LIKE ? ESCAPE '"+likeEscape+"'", tagPattern(q.Tag)))
	}

	return filter
}

// buildOrderBy sorts on a single key with id as the tiebreak. Priority sorts
// by rank and todos without a due date always come last.
func buildOrderBy(q domain.ListQuery) []string {
	direction := "DESC"
	if q.SortOrder == domain.SortAsc {
		direction = "ASC"
	}

	var clauses []string

	switch q.SortBy {
	case domain.SortByPriority:
		clauses = append(clauses, priorityRank+" "+direction)
	case domain.SortByDueDate:
		clauses = append(clauses,
			"CASE WHEN due_date IS NULL THEN 1 ELSE 0 END ASC",
			"due_date "+direction,
		)
	default:
		column, ok := sortColumns[q.SortBy]
		if !ok {
			column = "created_at"
		}
		clauses = append(clauses, column+" "+direction)
	}

	return append(clauses, "id ASC")
}

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
