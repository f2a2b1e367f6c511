package factory

import (
	"time"

	fab "github.com/Goldziher/fabricator"
	"github.com/google/uuid"

	"todoservice/internal/core/domain"
)

// NewTodo builds a persisted-shape todo with random text fields. Fields that
// carry invariants get sane defaults unless overridden.
func NewTodo(customData ...map[string]any) domain.Todo {
	now := domain.Timestamp(time.Now())

	defaults := map[string]any{
		"ID":          uuid.NewString(),
		"Priority":    domain.PriorityMedium,
		"Completed":   false,
		"Description": (*string)(nil),
		"DueDate":     (*time.Time)(nil),
		"Tags":        []string(nil),
		"CreatedAt":   now,
		"UpdatedAt":   now,
	}

	for _, data := range customData {
		for key, value := range data {
			defaults[key] = value
		}
	}

	return fab.New(domain.Todo{}).Build(defaults)
}
