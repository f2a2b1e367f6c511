package domain

import "math"

type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusCompleted StatusFilter = "completed"
	StatusPending   StatusFilter = "pending"
)

type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
	SortByDueDate   SortField = "dueDate"
	SortByPriority  SortField = "priority"
	SortByTitle     SortField = "title"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

const (
	DefaultPage    = 1
	DefaultLimit   = 10
	DefaultDueDays = 7
)

// ListQuery is a normalized list request; every field already holds a valid
// value or its default.
type ListQuery struct {
	Page      int
	Limit     int
	Status    StatusFilter
	Priority  *Priority
	SortBy    SortField
	SortOrder SortOrder
	Search    string
	Tag       string
}

func DefaultListQuery() ListQuery {
	return ListQuery{
		Page:      DefaultPage,
		Limit:     DefaultLimit,
		Status:    StatusAll,
		SortBy:    SortByCreatedAt,
		SortOrder: SortDesc,
	}
}

// Offset saturates at math.MaxInt for pages too far out to address, which
// reads as past the end.
func (q ListQuery) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}

	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}

	return (q.Page - 1) * q.Limit
}

type Pagination struct {
	CurrentPage  int
	TotalPages   int
	TotalItems   int
	ItemsPerPage int
	HasNextPage  bool
	HasPrevPage  bool
}

func NewPagination(page, limit, totalItems int) Pagination {
	totalPages := 0

	if limit > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(limit)))
	}

	return Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   totalItems,
		ItemsPerPage: limit,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}
}

type TodoPage struct {
	Todos      []Todo
	Pagination Pagination
	Query      ListQuery
}

type Stats struct {
	Total     int
	Completed int
	Pending   int
	Overdue   int
}

// CompletionRate is the completed share in percent, rounded to two decimals.
func (s Stats) CompletionRate() float64 {
	if s.Total == 0 {
		return 0
	}

	return math.Round(float64(s.Completed)/float64(s.Total)*10000) / 100
}
