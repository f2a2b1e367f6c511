package helper

import (
	"time"

	"github.com/gin-gonic/gin"

	"todoservice/internal/core/domain"
	"todoservice/internal/core/model/response"
)

const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeDuplicateEntry     = "DUPLICATE_ENTRY"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	CodeRouteNotFound      = "ROUTE_NOT_FOUND"
	CodeInternal           = "INTERNAL_ERROR"
)

// Clock stamps envelopes and evaluates isOverdue. Tests replace it.
var Clock = time.Now

func SendSuccess(c *gin.Context, statusCode int, data any, message ...string) {
	body := response.SuccessResponse{
		Success:   true,
		Data:      data,
		Timestamp: Clock().UTC(),
	}

	if len(message) > 0 && message[0] != "" {
		body.Message = message[0]
	}

	c.JSON(statusCode, body)
}

// SendPage writes a list envelope carrying pagination, the applied filters
// and the applied sorting.
func SendPage(c *gin.Context, statusCode int, page domain.TodoPage) {
	now := Clock().UTC()
	query := page.Query

	c.JSON(statusCode, response.SuccessResponse{
		Success: true,
		Data:    TodoResponses(page.Todos, now),
		Pagination: &response.PaginationResponse{
			CurrentPage:  page.Pagination.CurrentPage,
			TotalPages:   page.Pagination.TotalPages,
			TotalItems:   page.Pagination.TotalItems,
			ItemsPerPage: page.Pagination.ItemsPerPage,
			HasNextPage:  page.Pagination.HasNextPage,
			HasPrevPage:  page.Pagination.HasPrevPage,
		},
		Filters: &response.FiltersResponse{
			Status:   string(query.Status),
			Priority: priorityFilter(query.Priority),
			Search:   optional(query.Search),
			Tag:      optional(query.Tag),
		},
		Sorting: &response.SortingResponse{
			SortBy:    string(query.SortBy),
			SortOrder: string(query.SortOrder),
		},
		Timestamp: now,
	})
}

func SendError(c *gin.Context, statusCode int, code, message string, details ...any) {
	body := response.ErrorResponse{
		Success: false,
		Error: response.ResponseError{
			Code:    code,
			Message: message,
		},
		Timestamp: Clock().UTC(),
	}

	if len(details) > 0 && details[0] != nil {
		body.Error.Details = details[0]
	}

	c.AbortWithStatusJSON(statusCode, body)
}

func NewTodoResponse(todo domain.Todo, now time.Time) response.TodoResponse {
	return response.TodoResponse{
		ID:          todo.ID,
		Title:       todo.Title,
		Description: todo.Description,
		Completed:   todo.Completed,
		Priority:    string(todo.Priority),
		DueDate:     todo.DueDate,
		Tags:        todo.Tags,
		IsOverdue:   todo.IsOverdue(now),
		CreatedAt:   todo.CreatedAt,
		UpdatedAt:   todo.UpdatedAt,
	}
}

func TodoResponses(todos []domain.Todo, now time.Time) []response.TodoResponse {
	result := make([]response.TodoResponse, 0, len(todos))
	for _, todo := range todos {
		result = append(result, NewTodoResponse(todo, now))
	}
	return result
}

func NewStatsResponse(stats domain.Stats) response.StatsResponse {
	return response.StatsResponse{
		Total:          stats.Total,
		Completed:      stats.Completed,
		Pending:        stats.Pending,
		Overdue:        stats.Overdue,
		CompletionRate: stats.CompletionRate(),
	}
}

func priorityFilter(p *domain.Priority) *string {
	if p == nil {
		return nil
	}
	value := string(*p)
	return &value
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
