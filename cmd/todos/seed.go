package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"todoservice/internal/adapter/database"
	"todoservice/internal/adapter/database/repository"
	"todoservice/internal/core/domain"
	"todoservice/internal/core/port"
	"todoservice/internal/core/service"
	"todoservice/internal/core/telemetry"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert a sample set of todos",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db, database.Up); err != nil {
		return err
	}

	recorder := telemetry.NewNoOpRecorder()
	svc := service.NewTodoService(repository.NewTodoRepository(db, recorder), recorder)

	created, err := seedTodos(ctx, svc, time.Now())
	if err != nil {
		return err
	}

	log.Logger.Info("Seeded todos", zap.Int("count", created))
	return nil
}

func seedTodos(ctx context.Context, svc port.TodoService, now time.Time) (int, error) {
	samples := sampleTodos(now)

	for i, input := range samples {
		if _, err := svc.Create(ctx, input); err != nil {
			return i, fmt.Errorf("seed %q: %w", input.Title, err)
		}
	}

	return len(samples), nil
}

func sampleTodos(now time.Time) []domain.CreateTodoInput {
	day := 24 * time.Hour

	return []domain.CreateTodoInput{
		{
			Title:       "Buy milk",
			Description: ptr("Two liters, semi-skimmed"),
			Priority:    ptr(domain.PriorityLow),
			DueDate:     ptr(now.Add(day)),
			Tags:        []string{"shopping", "home"},
		},
		{
			Title:    "Prepare quarterly report",
			Priority: ptr(domain.PriorityHigh),
			DueDate:  ptr(now.Add(3 * day)),
			Tags:     []string{"work"},
		},
		{
			Title:       "Renew passport",
			Description: ptr("Book an appointment first"),
			Priority:    ptr(domain.PriorityHigh),
			DueDate:     ptr(now.Add(30 * day)),
			Tags:        []string{"personal"},
		},
		{
			Title:     "Fix the bike",
			Completed: ptr(true),
			Tags:      []string{"home"},
		},
		{
			Title:    "Read a book",
			Priority: ptr(domain.PriorityLow),
		},
		{
			Title:   "Review pull requests",
			DueDate: ptr(now.Add(2 * time.Hour)),
			Tags:    []string{"work", "code-review"},
		},
	}
}

func ptr[T any](v T) *T {
	return &v
}
