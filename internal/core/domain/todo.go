package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities low < medium < high. Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	default:
		return 0
	}
}

func (p Priority) IsValid() bool {
	return p.Rank() > 0
}

func ParsePriority(value string) (Priority, error) {
	p := Priority(value)

	if !p.IsValid() {
		return "", fmt.Errorf("invalid priority: %s", value)
	}

	return p, nil
}

type Todo struct {
	ID          string
	Title       string
	Description *string
	Completed   bool
	Priority    Priority
	DueDate     *time.Time
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateTodoInput is a normalized creation request. Optional fields are nil
// when the caller did not provide them.
type CreateTodoInput struct {
	Title       string
	Description *string
	Completed   *bool
	Priority    *Priority
	DueDate     *time.Time
	Tags        []string
}

// TodoPatch holds the fields of a partial update. Pointer fields are applied
// when non-nil; the *Set flags mark nullable fields that were present in the
// request, so a nil value with the flag set clears the field.
type TodoPatch struct {
	Title          *string
	Description    *string
	DescriptionSet bool
	Completed      *bool
	Priority       *Priority
	DueDate        *time.Time
	DueDateSet     bool
	Tags           []string
	TagsSet        bool
}

func (p TodoPatch) IsEmpty() bool {
	return p.Title == nil &&
		!p.DescriptionSet &&
		p.Completed == nil &&
		p.Priority == nil &&
		!p.DueDateSet &&
		!p.TagsSet
}

// Timestamp normalizes t to the precision shared by every supported store.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func NewTodo(input CreateTodoInput, now time.Time) Todo {
	now = Timestamp(now)

	todo := Todo{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Priority:    PriorityMedium,
		Tags:        input.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if input.Completed != nil {
		todo.Completed = *input.Completed
	}

	if input.Priority != nil {
		todo.Priority = *input.Priority
	}

	if input.DueDate != nil {
		dueDate := Timestamp(*input.DueDate)
		todo.DueDate = &dueDate
	}

	return todo
}

func ApplyPatch(todo Todo, patch TodoPatch, now time.Time) Todo {
	if patch.Title != nil {
		todo.Title = *patch.Title
	}

	if patch.DescriptionSet {
		todo.Description = patch.Description
	}

	if patch.Completed != nil {
		todo.Completed = *patch.Completed
	}

	if patch.Priority != nil {
		todo.Priority = *patch.Priority
	}

	if patch.DueDateSet {
		todo.DueDate = nil

		if patch.DueDate != nil {
			dueDate := Timestamp(*patch.DueDate)
			todo.DueDate = &dueDate
		}
	}

	if patch.TagsSet {
		todo.Tags = patch.Tags
	}

	todo.UpdatedAt = NextUpdatedAt(todo.UpdatedAt, now)

	return todo
}

func Toggle(todo Todo, now time.Time) Todo {
	todo.Completed = !todo.Completed
	todo.UpdatedAt = NextUpdatedAt(todo.UpdatedAt, now)

	return todo
}

// NextUpdatedAt returns now, bumped past previous when the clock has not
// advanced at store precision.
func NextUpdatedAt(previous, now time.Time) time.Time {
	now = Timestamp(now)

	if !now.After(previous) {
		return Timestamp(previous).Add(time.Microsecond)
	}

	return now
}

func (t Todo) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.Completed
}
