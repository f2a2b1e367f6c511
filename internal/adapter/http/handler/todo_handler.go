package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	. "todoservice/internal/adapter/http/helper"
	"todoservice/internal/adapter/http/validation"
	"todoservice/internal/core/model/response"
	"todoservice/internal/core/port"
	"todoservice/internal/core/telemetry"
)

type TodoHandler struct {
	svc       port.TodoService
	validator *validation.Validator
	responder *Responder
}

func NewTodoHandler(svc port.TodoService, validator *validation.Validator, responder *Responder) *TodoHandler {
	return &TodoHandler{
		svc:       svc,
		validator: validator,
		responder: responder,
	}
}

func (t *TodoHandler) ListTodos(c *gin.Context) {
	ctx, span := startSpan(c, "ListTodos")
	defer span.End()

	query, err := t.validator.ListQuery(c.Request.URL.Query(), Language(c))
	if err != nil {
		t.fail(c, span, err)
		return
	}

	span.SetAttributes(
		attribute.Int("todo.page", query.Page),
		attribute.Int("todo.limit", query.Limit),
		attribute.String("todo.status", string(query.Status)),
	)

	page, err := t.svc.List(ctx, query)
	if err != nil {
		t.fail(c, span, err)
		return
	}

	SendPage(c, http.StatusOK, page)
}

func (t *TodoHandler) GetTodo(c *gin.Context) {
	ctx, span := startSpan(c, "GetTodo")
	defer span.End()

	id, err := t.validator.TodoID(c.Param("id"), Language(c))
	if err != nil {
		t.fail(c, span, err)
		return
	}

	todo, err := t.svc.GetByID(ctx, id)
	if err != nil {
		t.fail(c, span, err)
		return
	}

	SendSuccess(c, http.StatusOK, NewTodoResponse(todo, Clock()))
}

func (t *TodoHandler) CreateTodo(c *gin.Context) {
	ctx, span := startSpan(c, "CreateTodo")
	defer span.End()

	input, err := t.validator.CreateTodo(readBody(c), Language(c))
	if err != nil {
		t.fail(c, span, err)
		return
	}

	todo, err := t.svc.Create(ctx, input)
	if err != nil {
		t.fail(c, span, err)
		return
	}

	span.SetAttributes(attribute.String("todo.id", todo.ID))

	SendSuccess(c, http.StatusCreated, NewTodoResponse(todo, Clock()), t.responder.Message(c, "TODO_CREATED", nil))
}

func (t *TodoHandler) UpdateTodo(c *gin.Context) {
	ctx, span := startSpan(c, "UpdateTodo")
	defer span.End()

	id, patch, err := t.validator.UpdateRequest(c.Param("id"), readBody(c), Language(c))
	if err != nil {
		t.fail(c, span, err)
		return
	}

	todo, err := t.svc.Update(ctx, id, patch)
	if err != nil {
		t.fail(c, span, err)
		return
	}

	SendSuccess(c, http.StatusOK, NewTodoResponse(todo, Clock()), t.responder.Message(c, "TODO_UPDATED", nil))
}

func (t *TodoHandler) DeleteTodo(c *gin.Context) {
	ctx, span := startSpan(c, "DeleteTodo")
	defer span.End()

	id, err := t.validator.TodoID(c.Param("id"), Language(c))
	if err != nil {
		t.fail(c, span, err)
		return
	}

	if err := t.svc.DeleteByID(ctx, id); err != nil {
		t.fail(c, span, err)
		return
	}

	SendSuccess(c, http.StatusOK, nil, t.responder.Message(c, "TODO_DELETED", nil))
}

func (t *TodoHandler) ToggleTodo(c *gin.Context) {
	ctx, span := startSpan(c, "ToggleTodo")
	defer span.End()

	id, err := t.validator.TodoID(c.Param("id"), Language(c))
	if err != nil {
		t.fail(c, span, err)
		return
	}

	todo, err := t.svc.Toggle(ctx, id)
	if err != nil {
		t.fail(c, span, err)
		return
	}

	state := "STATE_PENDING"
	if todo.Completed {
		state = "STATE_COMPLETED"
	}

	message := t.responder.Message(c, "TODO_TOGGLED", map[string]any{
		"State": t.responder.Message(c, state, nil),
	})

	SendSuccess(c, http.StatusOK, NewTodoResponse(todo, Clock()), message)
}

func (t *TodoHandler) BulkUpdate(c *gin.Context) {
	ctx, span := startSpan(c, "BulkUpdate")
	defer span.End()

	ids, patch, err := t.validator.BulkUpdate(readBody(c), Language(c))
	if err != nil {
		t.fail(c, span, err)
		return
	}

	span.SetAttributes(attribute.Int("todo.bulk_size", len(ids)))

	count, err := t.svc.BulkUpdate(ctx, ids, patch)
	if err != nil {
		t.fail(c, span, err)
		return
	}

	SendSuccess(c, http.StatusOK, response.BulkUpdateResponse{UpdatedCount: count}, t.responder.Plural(c, "TODOS_UPDATED", count))
}

func (t *TodoHandler) BulkDelete(c *gin.Context) {
	ctx, span := startSpan(c, "BulkDelete")
	defer span.End()

	ids, err := t.validator.BulkDelete(readBody(c), Language(c))
	if err != nil {
		t.fail(c, span, err)
		return
	}

	span.SetAttributes(attribute.Int("todo.bulk_size", len(ids)))

	count, err := t.svc.BulkDelete(ctx, ids)
	if err != nil {
		t.fail(c, span, err)
		return
	}

	SendSuccess(c, http.StatusOK, response.BulkDeleteResponse{DeletedCount: count}, t.responder.Plural(c, "TODOS_DELETED", count))
}

func (t *TodoHandler) GetStats(c *gin.Context) {
	ctx, span := startSpan(c, "GetStats")
	defer span.End()

	stats, err := t.svc.Stats(ctx)
	if err != nil {
		t.fail(c, span, err)
		return
	}

	SendSuccess(c, http.StatusOK, NewStatsResponse(stats))
}

func (t *TodoHandler) GetDueSoon(c *gin.Context) {
	ctx, span := startSpan(c, "GetDueSoon")
	defer span.End()

	days, err := t.validator.DueSoonDays(c.Request.URL.Query(), Language(c))
	if err != nil {
		t.fail(c, span, err)
		return
	}

	span.SetAttributes(attribute.Int("todo.due_days", days))

	todos, err := t.svc.DueSoon(ctx, days)
	if err != nil {
		t.fail(c, span, err)
		return
	}

	SendSuccess(c, http.StatusOK, TodoResponses(todos, Clock()))
}

func (t *TodoHandler) fail(c *gin.Context, span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	t.responder.SendServiceError(c, err)
}

func startSpan(c *gin.Context, operation string) (context.Context, trace.Span) {
	return otel.Tracer(telemetry.TracerName).Start(c.Request.Context(), "handler.todo."+operation,
		trace.WithAttributes(
			attribute.String("handler.operation", operation),
			attribute.String("handler.method", c.Request.Method),
			attribute.String("handler.path", c.FullPath()),
		))
}

// readBody keeps the raw body on the context so failures can log it.
func readBody(c *gin.Context) []byte {
	body, err := c.GetRawData()
	if err != nil {
		return nil
	}

	c.Set(BodyKey, string(body))
	return body
}
