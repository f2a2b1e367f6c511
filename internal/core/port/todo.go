package port

import (
	"context"
	"time"

	"todoservice/internal/core/domain"
)

type TodoRepository interface {
	List(ctx context.Context, query domain.ListQuery) ([]domain.Todo, int, error)
	GetByID(ctx context.Context, id string) (domain.Todo, error)
	Create(ctx context.Context, todo domain.Todo) (domain.Todo, error)
	Update(ctx context.Context, todo domain.Todo) (domain.Todo, error)
	DeleteByID(ctx context.Context, id string) error
	UpdateMany(ctx context.Context, ids []string, patch domain.TodoPatch, updatedAt time.Time) (int, error)
	DeleteMany(ctx context.Context, ids []string) (int, error)
	Stats(ctx context.Context, now time.Time) (domain.Stats, error)
	DueBefore(ctx context.Context, deadline time.Time) ([]domain.Todo, error)
}

type TodoService interface {
	List(ctx context.Context, query domain.ListQuery) (domain.TodoPage, error)
	GetByID(ctx context.Context, id string) (domain.Todo, error)
	Create(ctx context.Context, input domain.CreateTodoInput) (domain.Todo, error)
	Update(ctx context.Context, id string, patch domain.TodoPatch) (domain.Todo, error)
	Toggle(ctx context.Context, id string) (domain.Todo, error)
	DeleteByID(ctx context.Context, id string) error
	BulkUpdate(ctx context.Context, ids []string, patch domain.TodoPatch) (int, error)
	BulkDelete(ctx context.Context, ids []string) (int, error)
	Stats(ctx context.Context) (domain.Stats, error)
	DueSoon(ctx context.Context, days int) ([]domain.Todo, error)
}

// HealthChecker is implemented by stores that can report connectivity.
type HealthChecker interface {
	TestConnection(ctx context.Context) error
}
