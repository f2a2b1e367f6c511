package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"todoservice/internal/adapter/database"
	"todoservice/internal/adapter/database/repository"
	"todoservice/internal/core/domain"
	"todoservice/internal/core/port"
	. "todoservice/pkg/test"
	"todoservice/pkg/test/factory"
)

type TodoRepositoryTestSuite struct {
	suite.Suite
	DB       *database.DB
	TodoRepo port.TodoRepository
	now      time.Time
}

func (s *TodoRepositoryTestSuite) SetupTest() {
	s.DB = InitTestDB()
	s.TodoRepo = repository.NewTodoRepository(s.DB, nil)
	s.now = domain.Timestamp(time.Now())
}

func (s *TodoRepositoryTestSuite) TearDownTest() {
	s.DB.Close()
}

func TestTodoRepositoryTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TodoRepositoryTestSuite))
}

func (s *TodoRepositoryTestSuite) create(overrides map[string]any) domain.Todo {
	todo, err := s.TodoRepo.Create(context.Background(), factory.NewTodo(overrides))
	s.Require().NoError(err)

	return todo
}

func (s *TodoRepositoryTestSuite) list(mutate func(q *domain.ListQuery)) ([]domain.Todo, int) {
	query := domain.DefaultListQuery()
	if mutate != nil {
		mutate(&query)
	}

	todos, total, err := s.TodoRepo.List(context.Background(), query)
	s.Require().NoError(err)

	return todos, total
}

func ids(todos []domain.Todo) []string {
	result := make([]string, 0, len(todos))
	for _, todo := range todos {
		result = append(result, todo.ID)
	}
	return result
}

func ptr[T any](v T) *T {
	return &v
}

func (s *TodoRepositoryTestSuite) TestRepository_List_Empty() {
	todos, total := s.list(nil)

	Expect(todos).To(BeEmpty())
	Expect(total).To(Equal(0))
}

func (s *TodoRepositoryTestSuite) TestRepository_CreateAndGet_RoundTrip() {
	due := s.now.Add(48 * time.Hour)

	created := s.create(map[string]any{
		"Title":       "Buy milk",
		"Description": ptr("two liters"),
		"Priority":    domain.PriorityLow,
		"DueDate":     &due,
		"Tags":        []string{"home", "errand"},
		"CreatedAt":   s.now,
		"UpdatedAt":   s.now,
	})

	found, err := s.TodoRepo.GetByID(context.Background(), created.ID)

	Expect(err).To(BeNil())
	Expect(found.Title).To(Equal("Buy milk"))
	Expect(*found.Description).To(Equal("two liters"))
	Expect(found.Priority).To(Equal(domain.PriorityLow))
	Expect(found.Tags).To(Equal([]string{"home", "errand"}))
	Expect(found.DueDate.Equal(due)).To(BeTrue())
	Expect(found.CreatedAt.Equal(s.now)).To(BeTrue())
	Expect(found.UpdatedAt.Equal(s.now)).To(BeTrue())
}

func (s *TodoRepositoryTestSuite) TestRepository_Create_KeepsNullFields() {
	created := s.create(map[string]any{"Title": "No extras"})

	found, err := s.TodoRepo.GetByID(context.Background(), created.ID)

	Expect(err).To(BeNil())
	Expect(found.Description).To(BeNil())
	Expect(found.DueDate).To(BeNil())
	Expect(found.Tags).To(BeNil())
}

func (s *TodoRepositoryTestSuite) TestRepository_Create_DuplicateID() {
	todo := s.create(nil)

	_, err := s.TodoRepo.Create(context.Background(), todo)

	Expect(err).To(MatchError(domain.ErrDuplicateKey))
}

func (s *TodoRepositoryTestSuite) TestRepository_GetByID_NotFound() {
	_, err := s.TodoRepo.GetByID(context.Background(), uuid.NewString())

	Expect(err).To(MatchError(domain.ErrTodoNotFound))
}

func (s *TodoRepositoryTestSuite) TestRepository_Update() {
	todo := s.create(map[string]any{"Title": "Before", "Tags": []string{"a"}})

	todo.Title = "After"
	todo.Tags = nil
	todo.Completed = true
	todo.UpdatedAt = todo.UpdatedAt.Add(time.Second)

	_, err := s.TodoRepo.Update(context.Background(), todo)
	Expect(err).To(BeNil())

	found, _ := s.TodoRepo.GetByID(context.Background(), todo.ID)
	Expect(found.Title).To(Equal("After"))
	Expect(found.Tags).To(BeNil())
	Expect(found.Completed).To(BeTrue())
	Expect(found.UpdatedAt.Equal(todo.UpdatedAt)).To(BeTrue())
}

func (s *TodoRepositoryTestSuite) TestRepository_Update_NotFound() {
	_, err := s.TodoRepo.Update(context.Background(), factory.NewTodo())

	Expect(err).To(MatchError(domain.ErrTodoNotFound))
}

func (s *TodoRepositoryTestSuite) TestRepository_DeleteByID() {
	todo := s.create(nil)

	Expect(s.TodoRepo.DeleteByID(context.Background(), todo.ID)).To(Succeed())
	Expect(s.TodoRepo.DeleteByID(context.Background(), todo.ID)).To(MatchError(domain.ErrTodoNotFound))
}

func (s *TodoRepositoryTestSuite) TestRepository_List_StatusAndPriority() {
	pendingLow := s.create(map[string]any{"Priority": domain.PriorityLow})
	s.create(map[string]any{"Priority": domain.PriorityLow, "Completed": true})
	s.create(map[string]any{"Priority": domain.PriorityHigh})

	todos, total := s.list(func(q *domain.ListQuery) {
		q.Status = domain.StatusPending
		q.Priority = ptr(domain.PriorityLow)
	})

	Expect(total).To(Equal(1))
	Expect(ids(todos)).To(Equal([]string{pendingLow.ID}))

	_, completed := s.list(func(q *domain.ListQuery) { q.Status = domain.StatusCompleted })
	Expect(completed).To(Equal(1))
}

func (s *TodoRepositoryTestSuite) TestRepository_List_SearchIsCaseInsensitive() {
	byTitle := s.create(map[string]any{"Title": "Buy MILK"})
	byDescription := s.create(map[string]any{"Title": "Groceries", "Description": ptr("oat milk too")})
	s.create(map[string]any{"Title": "Walk the dog"})

	todos, total := s.list(func(q *domain.ListQuery) {
		q.Search = "Milk"
		q.SortBy = domain.SortByTitle
		q.SortOrder = domain.SortAsc
	})

	Expect(total).To(Equal(2))
	Expect(ids(todos)).To(Equal([]string{byTitle.ID, byDescription.ID}))
}

func (s *TodoRepositoryTestSuite) TestRepository_List_SearchFoldsNonASCIICase() {
	cafe := s.create(map[string]any{"Title": "CAFÉ run"})
	s.create(map[string]any{"Title": "Tea break"})
	naive := s.create(map[string]any{"Title": "Groceries", "Description": ptr("Ÿ naïve ÅNGSTRÖM")})

	for _, term := range []string{"CAFÉ", "café", "Café RUN", "run"} {
		todos, total := s.list(func(q *domain.ListQuery) { q.Search = term })

		Expect(total).To(Equal(1), "search %q", term)
		Expect(ids(todos)).To(Equal([]string{cafe.ID}), "search %q", term)
	}

	todos, total := s.list(func(q *domain.ListQuery) { q.Search = "ångström" })
	Expect(total).To(Equal(1))
	Expect(ids(todos)).To(Equal([]string{naive.ID}))
}

func (s *TodoRepositoryTestSuite) TestRepository_List_SearchTreatsWildcardsLiterally() {
	literal := s.create(map[string]any{"Title": "50% off"})
	s.create(map[string]any{"Title": "500 off"})

	todos, _ := s.list(func(q *domain.ListQuery) { q.Search = "50%" })

	Expect(ids(todos)).To(Equal([]string{literal.ID}))
}

func (s *TodoRepositoryTestSuite) TestRepository_List_TagIsExactElement() {
	work := s.create(map[string]any{"Tags": []string{"work", "urgent"}})
	s.create(map[string]any{"Tags": []string{"homework"}})
	s.create(map[string]any{"Tags": []string{"work_items"}})

	todos, total := s.list(func(q *domain.ListQuery) { q.Tag = "work" })

	Expect(total).To(Equal(1))
	Expect(ids(todos)).To(Equal([]string{work.ID}))

	upper := s.create(map[string]any{"Tags": []string{"Work"}})

	todos, total = s.list(func(q *domain.ListQuery) { q.Tag = "Work" })

	Expect(total).To(Equal(1))
	Expect(ids(todos)).To(Equal([]string{upper.ID}))
}

func (s *TodoRepositoryTestSuite) TestRepository_List_SortByPriorityRank() {
	high := s.create(map[string]any{"Priority": domain.PriorityHigh})
	low := s.create(map[string]any{"Priority": domain.PriorityLow})
	medium := s.create(map[string]any{"Priority": domain.PriorityMedium})

	asc, _ := s.list(func(q *domain.ListQuery) {
		q.SortBy = domain.SortByPriority
		q.SortOrder = domain.SortAsc
	})
	desc, _ := s.list(func(q *domain.ListQuery) { q.SortBy = domain.SortByPriority })

	Expect(ids(asc)).To(Equal([]string{low.ID, medium.ID, high.ID}))
	Expect(ids(desc)).To(Equal([]string{high.ID, medium.ID, low.ID}))
}

func (s *TodoRepositoryTestSuite) TestRepository_List_SortByDueDatePutsNullsLast() {
	soon := s.now.Add(time.Hour)
	later := s.now.Add(24 * time.Hour)

	none := s.create(nil)
	second := s.create(map[string]any{"DueDate": &later})
	first := s.create(map[string]any{"DueDate": &soon})

	asc, _ := s.list(func(q *domain.ListQuery) {
		q.SortBy = domain.SortByDueDate
		q.SortOrder = domain.SortAsc
	})
	desc, _ := s.list(func(q *domain.ListQuery) { q.SortBy = domain.SortByDueDate })

	Expect(ids(asc)).To(Equal([]string{first.ID, second.ID, none.ID}))
	Expect(ids(desc)).To(Equal([]string{second.ID, first.ID, none.ID}))
}

func (s *TodoRepositoryTestSuite) TestRepository_List_PagesCoverEveryRowOnce() {
	// identical timestamps force the id tiebreak
	for i := 0; i < 23; i++ {
		s.create(map[string]any{"Title": fmt.Sprintf("todo %02d", i), "CreatedAt": s.now, "UpdatedAt": s.now})
	}

	seen := map[string]bool{}
	count := 0

	for page := 1; page <= 3; page++ {
		todos, total := s.list(func(q *domain.ListQuery) {
			q.Page = page
			q.Limit = 10
		})

		Expect(total).To(Equal(23))

		for _, todo := range todos {
			Expect(seen).NotTo(HaveKey(todo.ID))
			seen[todo.ID] = true
			count++
		}
	}

	Expect(count).To(Equal(23))

	beyond, total := s.list(func(q *domain.ListQuery) {
		q.Page = 9
		q.Limit = 10
	})
	Expect(beyond).To(BeEmpty())
	Expect(total).To(Equal(23))
}

func (s *TodoRepositoryTestSuite) TestRepository_List_PageBeyondAddressableOffset() {
	s.create(nil)

	todos, total := s.list(func(q *domain.ListQuery) {
		q.Page = 4611686018427387905
		q.Limit = 10
	})

	Expect(todos).To(BeEmpty())
	Expect(total).To(Equal(1))
}

func (s *TodoRepositoryTestSuite) TestRepository_UpdateMany() {
	first := s.create(map[string]any{"Tags": []string{"old"}})
	second := s.create(nil)
	untouched := s.create(nil)
	updatedAt := s.now.Add(time.Minute)

	count, err := s.TodoRepo.UpdateMany(context.Background(),
		[]string{first.ID, second.ID, uuid.NewString()},
		domain.TodoPatch{Completed: ptr(true), TagsSet: true},
		updatedAt,
	)

	Expect(err).To(BeNil())
	Expect(count).To(Equal(2))

	found, _ := s.TodoRepo.GetByID(context.Background(), first.ID)
	Expect(found.Completed).To(BeTrue())
	Expect(found.Tags).To(BeNil())
	Expect(found.UpdatedAt.Equal(updatedAt)).To(BeTrue())

	other, _ := s.TodoRepo.GetByID(context.Background(), untouched.ID)
	Expect(other.Completed).To(BeFalse())
}

func (s *TodoRepositoryTestSuite) TestRepository_DeleteMany_PartialSuccess() {
	first := s.create(nil)
	second := s.create(nil)
	missing := uuid.NewString()

	count, err := s.TodoRepo.DeleteMany(context.Background(), []string{first.ID, second.ID, missing})

	Expect(err).To(BeNil())
	Expect(count).To(Equal(2))

	_, err = s.TodoRepo.GetByID(context.Background(), first.ID)
	Expect(err).To(MatchError(domain.ErrTodoNotFound))
}

func (s *TodoRepositoryTestSuite) TestRepository_Stats() {
	past := s.now.Add(-time.Hour)
	future := s.now.Add(time.Hour)

	s.create(map[string]any{"Completed": true})
	s.create(map[string]any{"Completed": true, "DueDate": &past})
	s.create(map[string]any{"DueDate": &past})
	s.create(map[string]any{"DueDate": &future})
	s.create(nil)

	stats, err := s.TodoRepo.Stats(context.Background(), s.now)

	Expect(err).To(BeNil())
	assert.Equal(s.T(), domain.Stats{Total: 5, Completed: 2, Pending: 3, Overdue: 1}, stats)
}

func (s *TodoRepositoryTestSuite) TestRepository_Stats_Empty() {
	stats, err := s.TodoRepo.Stats(context.Background(), s.now)

	Expect(err).To(BeNil())
	assert.Equal(s.T(), domain.Stats{}, stats)
}

func (s *TodoRepositoryTestSuite) TestRepository_DueBefore() {
	overdue := s.now.Add(-24 * time.Hour)
	inTwoDays := s.now.Add(48 * time.Hour)
	inFourDays := s.now.Add(96 * time.Hour)

	late := s.create(map[string]any{"DueDate": &overdue})
	soon := s.create(map[string]any{"DueDate": &inTwoDays})
	s.create(map[string]any{"DueDate": &inFourDays})
	s.create(map[string]any{"DueDate": &inTwoDays, "Completed": true})
	s.create(nil)

	todos, err := s.TodoRepo.DueBefore(context.Background(), s.now.Add(72*time.Hour))

	Expect(err).To(BeNil())
	Expect(ids(todos)).To(Equal([]string{late.ID, soon.ID}))
}
