package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"todoservice/internal/adapter/database"
	"todoservice/internal/adapter/database/repository"
	"todoservice/internal/core/domain"
	"todoservice/internal/core/port"
	"todoservice/internal/core/service"
	"todoservice/internal/core/telemetry"
	. "todoservice/pkg/test"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time {
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type TodoServiceTestSuite struct {
	suite.Suite
	DB       *database.DB
	Service  *service.TodoService
	TodoRepo port.TodoRepository
	clock    *clock
}

func (s *TodoServiceTestSuite) SetupTest() {
	s.DB = InitTestDB()
	s.clock = &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s.TodoRepo = repository.NewTodoRepository(s.DB, nil)
	s.Service = service.NewTodoService(s.TodoRepo, telemetry.NewNoOpRecorder(), service.WithClock(s.clock.Now))
}

func (s *TodoServiceTestSuite) TearDownTest() {
	s.DB.Close()
}

func TestTodoServiceTestSuite(t *testing.T) {
	RegisterTestingT(t)

	suite.Run(t, new(TodoServiceTestSuite))
}

func ptr[T any](v T) *T {
	return &v
}

func (s *TodoServiceTestSuite) TestService_Create_AppliesDefaults() {
	first, err := s.Service.Create(context.Background(), domain.CreateTodoInput{Title: "Buy milk"})
	Expect(err).To(BeNil())

	second, err := s.Service.Create(context.Background(), domain.CreateTodoInput{Title: "Buy milk"})
	Expect(err).To(BeNil())

	Expect(first.Completed).To(BeFalse())
	Expect(first.Priority).To(Equal(domain.PriorityMedium))
	Expect(first.CreatedAt).To(Equal(first.UpdatedAt))
	Expect(first.CreatedAt).To(Equal(s.clock.now))
	Expect(first.ID).NotTo(Equal(second.ID))
}

func (s *TodoServiceTestSuite) TestService_List_ReturnsPagination() {
	for i := 0; i < 3; i++ {
		_, err := s.Service.Create(context.Background(), domain.CreateTodoInput{Title: "todo"})
		s.Require().NoError(err)
	}

	query := domain.DefaultListQuery()
	query.Limit = 2

	page, err := s.Service.List(context.Background(), query)

	Expect(err).To(BeNil())
	Expect(page.Todos).To(HaveLen(2))
	assert.Equal(s.T(), domain.Pagination{
		CurrentPage:  1,
		TotalPages:   2,
		TotalItems:   3,
		ItemsPerPage: 2,
		HasNextPage:  true,
		HasPrevPage:  false,
	}, page.Pagination)
	Expect(page.Query).To(Equal(query))
}

func (s *TodoServiceTestSuite) TestService_List_EmptyResult() {
	page, err := s.Service.List(context.Background(), domain.DefaultListQuery())

	Expect(err).To(BeNil())
	Expect(page.Todos).To(BeEmpty())
	Expect(page.Pagination.TotalPages).To(Equal(0))
	Expect(page.Pagination.HasNextPage).To(BeFalse())
}

func (s *TodoServiceTestSuite) TestService_Update_OnlyProvidedFields() {
	created, _ := s.Service.Create(context.Background(), domain.CreateTodoInput{
		Title:       "Original",
		Description: ptr("keep me"),
		Tags:        []string{"a"},
	})

	s.clock.Advance(time.Minute)

	updated, err := s.Service.Update(context.Background(), created.ID, domain.TodoPatch{
		Title:   ptr("Renamed"),
		TagsSet: true,
	})

	Expect(err).To(BeNil())
	Expect(updated.Title).To(Equal("Renamed"))
	Expect(*updated.Description).To(Equal("keep me"))
	Expect(updated.Tags).To(BeNil())
	Expect(updated.CreatedAt).To(Equal(created.CreatedAt))
	Expect(updated.UpdatedAt).To(Equal(s.clock.now))

	stored, _ := s.Service.GetByID(context.Background(), created.ID)
	Expect(stored.Title).To(Equal("Renamed"))
}

func (s *TodoServiceTestSuite) TestService_Update_NotFound() {
	_, err := s.Service.Update(context.Background(), uuid.NewString(), domain.TodoPatch{Title: ptr("x")})

	Expect(err).To(MatchError(domain.ErrTodoNotFound))
}

func (s *TodoServiceTestSuite) TestService_Toggle_Twice() {
	created, _ := s.Service.Create(context.Background(), domain.CreateTodoInput{Title: "Flip"})

	// a stalled clock must still move updatedAt forward
	once, err := s.Service.Toggle(context.Background(), created.ID)
	Expect(err).To(BeNil())

	twice, err := s.Service.Toggle(context.Background(), created.ID)
	Expect(err).To(BeNil())

	Expect(once.Completed).To(BeTrue())
	Expect(twice.Completed).To(Equal(created.Completed))
	Expect(once.UpdatedAt.After(created.UpdatedAt)).To(BeTrue())
	Expect(twice.UpdatedAt.After(once.UpdatedAt)).To(BeTrue())
}

func (s *TodoServiceTestSuite) TestService_Toggle_NotFound() {
	_, err := s.Service.Toggle(context.Background(), uuid.NewString())

	Expect(err).To(MatchError(domain.ErrTodoNotFound))
}

func (s *TodoServiceTestSuite) TestService_DeleteByID() {
	created, _ := s.Service.Create(context.Background(), domain.CreateTodoInput{Title: "Gone"})

	Expect(s.Service.DeleteByID(context.Background(), created.ID)).To(Succeed())
	Expect(s.Service.DeleteByID(context.Background(), created.ID)).To(MatchError(domain.ErrTodoNotFound))
}

func (s *TodoServiceTestSuite) TestService_BulkDelete_PartialSuccess() {
	first, _ := s.Service.Create(context.Background(), domain.CreateTodoInput{Title: "one"})
	second, _ := s.Service.Create(context.Background(), domain.CreateTodoInput{Title: "two"})

	count, err := s.Service.BulkDelete(context.Background(), []string{first.ID, second.ID, uuid.NewString()})

	Expect(err).To(BeNil())
	Expect(count).To(Equal(2))

	_, err = s.Service.GetByID(context.Background(), first.ID)
	Expect(err).To(MatchError(domain.ErrTodoNotFound))
}

func (s *TodoServiceTestSuite) TestService_BulkUpdate() {
	first, _ := s.Service.Create(context.Background(), domain.CreateTodoInput{Title: "one"})
	second, _ := s.Service.Create(context.Background(), domain.CreateTodoInput{Title: "two"})

	s.clock.Advance(time.Hour)

	count, err := s.Service.BulkUpdate(context.Background(),
		[]string{first.ID, second.ID, uuid.NewString()},
		domain.TodoPatch{Priority: ptr(domain.PriorityHigh)},
	)

	Expect(err).To(BeNil())
	Expect(count).To(Equal(2))

	stored, _ := s.Service.GetByID(context.Background(), second.ID)
	Expect(stored.Priority).To(Equal(domain.PriorityHigh))
	Expect(stored.UpdatedAt).To(BeTemporally("==", s.clock.now))
}

func (s *TodoServiceTestSuite) TestService_Stats_ToggleRaisesCompleted() {
	created, _ := s.Service.Create(context.Background(), domain.CreateTodoInput{
		Title:    "Buy milk",
		Priority: ptr(domain.PriorityLow),
	})

	query := domain.DefaultListQuery()
	query.Status = domain.StatusPending
	query.Priority = ptr(domain.PriorityLow)

	page, err := s.Service.List(context.Background(), query)
	Expect(err).To(BeNil())
	Expect(page.Todos).To(HaveLen(1))
	Expect(page.Todos[0].ID).To(Equal(created.ID))

	before, _ := s.Service.Stats(context.Background())

	_, err = s.Service.Toggle(context.Background(), created.ID)
	Expect(err).To(BeNil())

	after, _ := s.Service.Stats(context.Background())
	Expect(after.Completed).To(Equal(before.Completed + 1))
}

func (s *TodoServiceTestSuite) TestService_Stats_CountsOverdue() {
	past := s.clock.now.Add(-time.Hour)

	_, _ = s.Service.Create(context.Background(), domain.CreateTodoInput{Title: "late", DueDate: &past})
	_, _ = s.Service.Create(context.Background(), domain.CreateTodoInput{Title: "done late", DueDate: &past, Completed: ptr(true)})

	stats, err := s.Service.Stats(context.Background())

	Expect(err).To(BeNil())
	assert.Equal(s.T(), domain.Stats{Total: 2, Completed: 1, Pending: 1, Overdue: 1}, stats)
	Expect(stats.CompletionRate()).To(Equal(50.0))
}

func (s *TodoServiceTestSuite) TestService_DueSoon() {
	inTwoDays := s.clock.now.Add(48 * time.Hour)
	inFourDays := s.clock.now.Add(96 * time.Hour)

	near, _ := s.Service.Create(context.Background(), domain.CreateTodoInput{Title: "near", DueDate: &inTwoDays})
	_, _ = s.Service.Create(context.Background(), domain.CreateTodoInput{Title: "far", DueDate: &inFourDays})

	todos, err := s.Service.DueSoon(context.Background(), 3)

	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(1))
	Expect(todos[0].ID).To(Equal(near.ID))
}

type mockTodoRepository struct {
	mock.Mock
	port.TodoRepository
}

func (m *mockTodoRepository) Stats(ctx context.Context, now time.Time) (domain.Stats, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(domain.Stats), args.Error(1)
}

func TestTodoService_Stats_PropagatesStoreErrors(t *testing.T) {
	repo := new(mockTodoRepository)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	storeErr := errors.Join(domain.ErrStoreUnavailable, errors.New("dial tcp: refused"))

	repo.On("Stats", mock.Anything, now).Return(domain.Stats{}, storeErr)

	svc := service.NewTodoService(repo, telemetry.NewNoOpRecorder(), service.WithClock(func() time.Time { return now }))
	_, err := svc.Stats(context.Background())

	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	repo.AssertExpectations(t)
}
