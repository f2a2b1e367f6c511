package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"

	"todoservice/internal/adapter/database"
	"todoservice/internal/core/domain"
	"todoservice/internal/core/port"
	tel "todoservice/internal/core/telemetry"
)

const (
	todosTable = "todos"
	todoEntity = "todo"
)

var todoColumns = []string{
	"id", "title", "description", "completed", "priority",
	"due_date", "tags", "created_at", "updated_at",
}

type todoRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	Completed   bool           `db:"completed"`
	Priority    string         `db:"priority"`
	DueDate     sql.NullTime   `db:"due_date"`
	Tags        sql.NullString `db:"tags"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r todoRow) toDomain() domain.Todo {
	todo := domain.Todo{
		ID:        r.ID,
		Title:     r.Title,
		Completed: r.Completed,
		Priority:  domain.Priority(r.Priority),
		Tags:      decodeTags(r.Tags),
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}

	if r.Description.Valid {
		description := r.Description.String
		todo.Description = &description
	}

	if r.DueDate.Valid {
		dueDate := r.DueDate.Time.UTC()
		todo.DueDate = &dueDate
	}

	return todo
}

type statsRow struct {
	Total     int `db:"total"`
	Completed int `db:"completed"`
	Pending   int `db:"pending"`
	Overdue   int `db:"overdue"`
}

type TodoRepository struct {
	db        *database.DB
	telemetry port.Telemetry
}

func NewTodoRepository(db *database.DB, telemetry port.Telemetry) port.TodoRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpRecorder()
	}

	return &TodoRepository{
		db:        db,
		telemetry: telemetry,
	}
}

func (tr *TodoRepository) List(ctx context.Context, query domain.ListQuery) (todos []domain.Todo, total int, err error) {
	ctx, done := tr.trace(ctx, "List",
		attribute.Int("pagination.page", query.Page),
		attribute.Int("pagination.limit", query.Limit),
	)
	defer func() { done(err) }()

	filter := BuildTodoFilter(query)

	countSQL, countArgs, err := tr.db.QueryBuilder.
		Select("COUNT(*)").
		From(todosTable).
		Where(filter).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	pageSQL, pageArgs, err := tr.db.QueryBuilder.
		Select(todoColumns...).
		From(todosTable).
		Where(filter).
		OrderBy(buildOrderBy(query)...).
		Limit(uint64(query.Limit)).
		Offset(uint64(query.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	var rows []todoRow

	err = tr.db.WithConn(ctx, func(ctx context.Context, conn *sqlx.Conn) error {
		tr.telemetry.RecordRepositoryQuery(ctx, "List", todoEntity, countSQL, countArgs)

		if err := conn.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
			return err
		}

		if total == 0 || query.Offset() >= total {
			return nil
		}

		tr.telemetry.RecordRepositoryQuery(ctx, "List", todoEntity, pageSQL, pageArgs)

		return conn.SelectContext(ctx, &rows, pageSQL, pageArgs...)
	})
	if err != nil {
		return nil, 0, err
	}

	return toDomainList(rows), total, nil
}

func (tr *TodoRepository) GetByID(ctx context.Context, id string) (todo domain.Todo, err error) {
	ctx, done := tr.trace(ctx, "GetByID", attribute.String("todo.id", id))
	defer func() { done(err) }()

	query, args, err := tr.db.QueryBuilder.
		Select(todoColumns...).
		From(todosTable).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return domain.Todo{}, err
	}

	var row todoRow

	err = tr.db.WithConn(ctx, func(ctx context.Context, conn *sqlx.Conn) error {
		tr.telemetry.RecordRepositoryQuery(ctx, "GetByID", todoEntity, query, args)
		return conn.GetContext(ctx, &row, query, args...)
	})

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Todo{}, domain.ErrTodoNotFound
	}

	if err != nil {
		return domain.Todo{}, err
	}

	return row.toDomain(), nil
}

func (tr *TodoRepository) Create(ctx context.Context, todo domain.Todo) (_ domain.Todo, err error) {
	ctx, done := tr.trace(ctx, "Create",
		attribute.String("db.operation", "INSERT"),
		attribute.String("todo.id", todo.ID),
	)
	defer func() { done(err) }()

	tags, err := encodeTags(todo.Tags)
	if err != nil {
		return domain.Todo{}, err
	}

	query, args, err := tr.db.QueryBuilder.
		Insert(todosTable).
		Columns(todoColumns...).
		Values(
			todo.ID,
			todo.Title,
			nullString(todo.Description),
			todo.Completed,
			string(todo.Priority),
			nullTime(todo.DueDate),
			tags,
			todo.CreatedAt,
			todo.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return domain.Todo{}, err
	}

	err = tr.db.WithConn(ctx, func(ctx context.Context, conn *sqlx.Conn) error {
		tr.telemetry.RecordRepositoryQuery(ctx, "Create", todoEntity, query, args)

		_, err := conn.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return domain.Todo{}, err
	}

	return todo, nil
}

// Update writes every mutable column of todo. Last write wins.
func (tr *TodoRepository) Update(ctx context.Context, todo domain.Todo) (_ domain.Todo, err error) {
	ctx, done := tr.trace(ctx, "Update",
		attribute.String("db.operation", "UPDATE"),
		attribute.String("todo.id", todo.ID),
	)
	defer func() { done(err) }()

	tags, err := encodeTags(todo.Tags)
	if err != nil {
		return domain.Todo{}, err
	}

	query, args, err := tr.db.QueryBuilder.
		Update(todosTable).
		SetMap(map[string]interface{}{
			"title":       todo.Title,
			"description": nullString(todo.Description),
			"completed":   todo.Completed,
			"priority":    string(todo.Priority),
			"due_date":    nullTime(todo.DueDate),
			"tags":        tags,
			"updated_at":  todo.UpdatedAt,
		}).
		Where(sq.Eq{"id": todo.ID}).
		ToSql()
	if err != nil {
		return domain.Todo{}, err
	}

	affected, err := tr.exec(ctx, "Update", query, args)
	if err != nil {
		return domain.Todo{}, err
	}

	if affected == 0 {
		return domain.Todo{}, domain.ErrTodoNotFound
	}

	return todo, nil
}

func (tr *TodoRepository) DeleteByID(ctx context.Context, id string) (err error) {
	ctx, done := tr.trace(ctx, "DeleteByID",
		attribute.String("db.operation", "DELETE"),
		attribute.String("todo.id", id),
	)
	defer func() { done(err) }()

	query, args, err := tr.db.QueryBuilder.
		Delete(todosTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	affected, err := tr.exec(ctx, "DeleteByID", query, args)
	if err != nil {
		return err
	}

	if affected == 0 {
		return domain.ErrTodoNotFound
	}

	return nil
}

// UpdateMany applies the same patch to every existing id in one statement and
// returns how many rows matched.
func (tr *TodoRepository) UpdateMany(ctx context.Context, ids []string, patch domain.TodoPatch, updatedAt time.Time) (count int, err error) {
	ctx, done := tr.trace(ctx, "UpdateMany",
		attribute.String("db.operation", "UPDATE"),
		attribute.Int("todo.ids", len(ids)),
	)
	defer func() { done(err) }()

	values, err := patchValues(patch)
	if err != nil {
		return 0, err
	}
	values["updated_at"] = updatedAt

	query, args, err := tr.db.QueryBuilder.
		Update(todosTable).
		SetMap(values).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return 0, err
	}

	affected, err := tr.exec(ctx, "UpdateMany", query, args)

	return int(affected), err
}

func (tr *TodoRepository) DeleteMany(ctx context.Context, ids []string) (count int, err error) {
	ctx, done := tr.trace(ctx, "DeleteMany",
		attribute.String("db.operation", "DELETE"),
		attribute.Int("todo.ids", len(ids)),
	)
	defer func() { done(err) }()

	query, args, err := tr.db.QueryBuilder.
		Delete(todosTable).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return 0, err
	}

	affected, err := tr.exec(ctx, "DeleteMany", query, args)

	return int(affected), err
}

// Stats counts every bucket in a single aggregate so the numbers come from
// one view of the table.
func (tr *TodoRepository) Stats(ctx context.Context, now time.Time) (stats domain.Stats, err error) {
	ctx, done := tr.trace(ctx, "Stats")
	defer func() { done(err) }()

	query, args, err := tr.db.QueryBuilder.
		Select("COUNT(*) AS total").
		Column(sq.Expr("COALESCE(SUM(CASE WHEN completed = ? THEN 1 ELSE 0 END), 0) AS completed", true)).
		Column(sq.Expr("COALESCE(SUM(CASE WHEN completed = ? THEN 1 ELSE 0 END), 0) AS pending", false)).
		Column(sq.Expr("COALESCE(SUM(CASE WHEN completed = ? AND due_date IS NOT NULL AND due_date < ? THEN 1 ELSE 0 END), 0) AS overdue", false, now)).
		From(todosTable).
		ToSql()
	if err != nil {
		return domain.Stats{}, err
	}

	var row statsRow

	err = tr.db.WithConn(ctx, func(ctx context.Context, conn *sqlx.Conn) error {
		tr.telemetry.RecordRepositoryQuery(ctx, "Stats", todoEntity, query, args)
		return conn.GetContext(ctx, &row, query, args...)
	})
	if err != nil {
		return domain.Stats{}, err
	}

	return domain.Stats{
		Total:     row.Total,
		Completed: row.Completed,
		Pending:   row.Pending,
		Overdue:   row.Overdue,
	}, nil
}

// DueBefore lists pending todos due at or before deadline, earliest first.
func (tr *TodoRepository) DueBefore(ctx context.Context, deadline time.Time) (todos []domain.Todo, err error) {
	ctx, done := tr.trace(ctx, "DueBefore", attribute.String("deadline", deadline.Format(time.RFC3339)))
	defer func() { done(err) }()

	query, args, err := tr.db.QueryBuilder.
		Select(todoColumns...).
		From(todosTable).
		Where(sq.Eq{"completed": false}).
		Where(sq.NotEq{"due_date": nil}).
		Where(sq.LtOrEq{"due_date": deadline}).
		OrderBy("due_date ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []todoRow

	err = tr.db.WithConn(ctx, func(ctx context.Context, conn *sqlx.Conn) error {
		tr.telemetry.RecordRepositoryQuery(ctx, "DueBefore", todoEntity, query, args)
		return conn.SelectContext(ctx, &rows, query, args...)
	})
	if err != nil {
		return nil, err
	}

	return toDomainList(rows), nil
}

func (tr *TodoRepository) exec(ctx context.Context, operation string, query string, args []interface{}) (int64, error) {
	var affected int64

	err := tr.db.WithConn(ctx, func(ctx context.Context, conn *sqlx.Conn) error {
		tr.telemetry.RecordRepositoryQuery(ctx, operation, todoEntity, query, args)

		result, err := conn.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}

		affected, err = result.RowsAffected()
		return err
	})

	return affected, err
}

func (tr *TodoRepository) trace(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()

	attrs = append(attrs,
		attribute.String("db.system", string(tr.db.Dialect)),
		attribute.String("db.table", todosTable),
	)
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, operation, todoEntity, attrs)

	return ctx, func(err error) {
		tr.telemetry.RecordRepositoryOperation(ctx, operation, todoEntity, time.Since(start), err)
		span.End()
	}
}

func patchValues(patch domain.TodoPatch) (map[string]interface{}, error) {
	values := map[string]interface{}{}

	if patch.Title != nil {
		values["title"] = *patch.Title
	}

	if patch.DescriptionSet {
		values["description"] = nullString(patch.Description)
	}

	if patch.Completed != nil {
		values["completed"] = *patch.Completed
	}

	if patch.Priority != nil {
		values["priority"] = string(*patch.Priority)
	}

	if patch.DueDateSet {
		values["due_date"] = nullTime(patch.DueDate)
	}

	if patch.TagsSet {
		tags, err := encodeTags(patch.Tags)
		if err != nil {
			return nil, err
		}
		values["tags"] = tags
	}

	return values, nil
}

func toDomainList(rows []todoRow) []domain.Todo {
	todos := make([]domain.Todo, 0, len(rows))
	for _, row := range rows {
		todos = append(todos, row.toDomain())
	}
	return todos
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: domain.Timestamp(*value), Valid: true}
}
