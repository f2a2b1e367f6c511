package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"todoservice/internal/core/domain"
	"todoservice/internal/core/port"
)

const todoServiceName = "todo"

type TodoService struct {
	repo      port.TodoRepository
	telemetry port.Telemetry
	now       func() time.Time
}

type Option func(*TodoService)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *TodoService) {
		s.now = now
	}
}

func NewTodoService(repo port.TodoRepository, telemetry port.Telemetry, opts ...Option) *TodoService {
	s := &TodoService{
		repo:      repo,
		telemetry: telemetry,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *TodoService) List(ctx context.Context, query domain.ListQuery) (page domain.TodoPage, err error) {
	ctx, done := s.trace(ctx, "List",
		attribute.Int("query.page", query.Page),
		attribute.Int("query.limit", query.Limit),
		attribute.String("query.status", string(query.Status)),
		attribute.String("query.sort_by", string(query.SortBy)),
	)
	defer func() { done(err) }()

	todos, total, err := s.repo.List(ctx, query)
	if err != nil {
		return domain.TodoPage{}, err
	}

	return domain.TodoPage{
		Todos:      todos,
		Pagination: domain.NewPagination(query.Page, query.Limit, total),
		Query:      query,
	}, nil
}

func (s *TodoService) GetByID(ctx context.Context, id string) (todo domain.Todo, err error) {
	ctx, done := s.trace(ctx, "GetByID", attribute.String("todo.id", id))
	defer func() { done(err) }()

	return s.repo.GetByID(ctx, id)
}

func (s *TodoService) Create(ctx context.Context, input domain.CreateTodoInput) (todo domain.Todo, err error) {
	ctx, done := s.trace(ctx, "Create")
	defer func() { done(err) }()

	todo, err = s.repo.Create(ctx, domain.NewTodo(input, s.now()))
	if err != nil {
		return domain.Todo{}, err
	}

	s.telemetry.RecordBusinessEvent(ctx, "created", "todo", todo.ID, map[string]interface{}{
		"priority": string(todo.Priority),
		"has_due":  todo.DueDate != nil,
	})

	return todo, nil
}

func (s *TodoService) Update(ctx context.Context, id string, patch domain.TodoPatch) (todo domain.Todo, err error) {
	ctx, done := s.trace(ctx, "Update", attribute.String("todo.id", id))
	defer func() { done(err) }()

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Todo{}, err
	}

	todo, err = s.repo.Update(ctx, domain.ApplyPatch(current, patch, s.now()))
	if err != nil {
		return domain.Todo{}, err
	}

	s.telemetry.RecordBusinessEvent(ctx, "updated", "todo", todo.ID, nil)

	return todo, nil
}

func (s *TodoService) Toggle(ctx context.Context, id string) (todo domain.Todo, err error) {
	ctx, done := s.trace(ctx, "Toggle", attribute.String("todo.id", id))
	defer func() { done(err) }()

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Todo{}, err
	}

	todo, err = s.repo.Update(ctx, domain.Toggle(current, s.now()))
	if err != nil {
		return domain.Todo{}, err
	}

	event := "reopened"
	if todo.Completed {
		event = "completed"
	}

	s.telemetry.RecordBusinessEvent(ctx, event, "todo", todo.ID, nil)

	return todo, nil
}

func (s *TodoService) DeleteByID(ctx context.Context, id string) (err error) {
	ctx, done := s.trace(ctx, "DeleteByID", attribute.String("todo.id", id))
	defer func() { done(err) }()

	if err = s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.telemetry.RecordBusinessEvent(ctx, "deleted", "todo", id, nil)

	return nil
}

func (s *TodoService) BulkUpdate(ctx context.Context, ids []string, patch domain.TodoPatch) (count int, err error) {
	ctx, done := s.trace(ctx, "BulkUpdate", attribute.Int("todo.ids", len(ids)))
	defer func() { done(err) }()

	count, err = s.repo.UpdateMany(ctx, ids, patch, domain.Timestamp(s.now()))
	if err != nil {
		return 0, err
	}

	s.telemetry.RecordBusinessEvent(ctx, "bulk_updated", "todo", "", map[string]interface{}{
		"requested": len(ids),
		"updated":   count,
	})

	return count, nil
}

func (s *TodoService) BulkDelete(ctx context.Context, ids []string) (count int, err error) {
	ctx, done := s.trace(ctx, "BulkDelete", attribute.Int("todo.ids", len(ids)))
	defer func() { done(err) }()

	count, err = s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, err
	}

	s.telemetry.RecordBusinessEvent(ctx, "bulk_deleted", "todo", "", map[string]interface{}{
		"requested": len(ids),
		"deleted":   count,
	})

	return count, nil
}

func (s *TodoService) Stats(ctx context.Context) (stats domain.Stats, err error) {
	ctx, done := s.trace(ctx, "Stats")
	defer func() { done(err) }()

	return s.repo.Stats(ctx, domain.Timestamp(s.now()))
}

// DueSoon lists pending todos due within the next days, overdue ones included.
func (s *TodoService) DueSoon(ctx context.Context, days int) (todos []domain.Todo, err error) {
	ctx, done := s.trace(ctx, "DueSoon", attribute.Int("days", days))
	defer func() { done(err) }()

	deadline := domain.Timestamp(s.now()).AddDate(0, 0, days)

	return s.repo.DueBefore(ctx, deadline)
}

func (s *TodoService) trace(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.telemetry.StartServiceSpan(ctx, todoServiceName, operation, attrs)

	return ctx, func(err error) {
		s.telemetry.RecordServiceOperation(ctx, todoServiceName, operation, time.Since(start), err)
		span.End()
	}
}
