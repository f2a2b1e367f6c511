package request

import "time"

// CreateTodoRequest is the trimmed creation payload checked by struct tags.
type CreateTodoRequest struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description *string    `json:"description" validate:"omitnil,max=1000"`
	Completed   *bool      `json:"completed"`
	Priority    *string    `json:"priority" validate:"omitnil,oneof=low medium high"`
	DueDate     *time.Time `json:"dueDate" validate:"omitnil,notpast"`
	Tags        []string   `json:"tags" validate:"omitempty,max=10,dive,required,max=50"`
}

// UpdateTodoRequest is the trimmed update payload. Every field is optional and
// dueDate is only checked for format.
type UpdateTodoRequest struct {
	Title       *string    `json:"title" validate:"omitnil,min=1,max=255"`
	Description *string    `json:"description" validate:"omitnil,max=1000"`
	Completed   *bool      `json:"completed"`
	Priority    *string    `json:"priority" validate:"omitnil,oneof=low medium high"`
	DueDate     *time.Time `json:"dueDate"`
	Tags        []string   `json:"tags" validate:"omitempty,max=10,dive,required,max=50"`
}

type ListTodosRequest struct {
	Page      int    `json:"page" validate:"min=1"`
	Limit     int    `json:"limit" validate:"min=1,max=100"`
	Status    string `json:"status" validate:"oneof=completed pending all"`
	Priority  string `json:"priority" validate:"omitempty,oneof=low medium high"`
	SortBy    string `json:"sortBy" validate:"oneof=createdAt updatedAt dueDate priority title"`
	SortOrder string `json:"sortOrder" validate:"oneof=asc desc"`
	Search    string `json:"search" validate:"max=100"`
	Tag       string `json:"tag" validate:"max=50"`
}

type TodoIDRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

type BulkIDsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=50,dive,uuid"`
}

type DueSoonRequest struct {
	Days int `json:"days" validate:"min=1,max=365"`
}
