package response

import (
	"time"
)

type TodoResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Completed   bool       `json:"completed"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Tags        []string   `json:"tags"`
	IsOverdue   bool       `json:"isOverdue"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type PaginationResponse struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

type FiltersResponse struct {
	Status   string  `json:"status"`
	Priority *string `json:"priority"`
	Search   *string `json:"search"`
	Tag      *string `json:"tag"`
}

type SortingResponse struct {
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
}

type StatsResponse struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Pending        int     `json:"pending"`
	Overdue        int     `json:"overdue"`
	CompletionRate float64 `json:"completionRate"`
}

type BulkUpdateResponse struct {
	UpdatedCount int `json:"updatedCount"`
}

type BulkDeleteResponse struct {
	DeletedCount int `json:"deletedCount"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type SuccessResponse struct {
	Success    bool                `json:"success"`
	Data       any                 `json:"data"`
	Message    string              `json:"message,omitempty"`
	Pagination *PaginationResponse `json:"pagination,omitempty"`
	Filters    *FiltersResponse    `json:"filters,omitempty"`
	Sorting    *SortingResponse    `json:"sorting,omitempty"`
	Timestamp  time.Time           `json:"timestamp"`
}

type ErrorResponse struct {
	Success   bool          `json:"success"`
	Error     ResponseError `json:"error"`
	Timestamp time.Time     `json:"timestamp"`
}
