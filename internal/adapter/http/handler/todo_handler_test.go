package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	. "todoservice/pkg/test"

	"todoservice/internal/adapter/database"
	"todoservice/internal/adapter/database/repository"
	"todoservice/internal/adapter/http/handler"
	"todoservice/internal/adapter/http/helper"
	"todoservice/internal/adapter/http/routes"
	"todoservice/internal/adapter/http/validation"
	"todoservice/internal/adapter/i18n"
	"todoservice/internal/adapter/logger"
	"todoservice/internal/core/domain"
	"todoservice/internal/core/model/response"
	"todoservice/internal/core/port"
	"todoservice/internal/core/service"
	"todoservice/internal/core/telemetry"

	"todoservice/pkg/test/factory"
)

var ctx = context.Background()

type envelope struct {
	Success    bool                         `json:"success"`
	Data       json.RawMessage              `json:"data"`
	Message    string                       `json:"message"`
	Pagination *response.PaginationResponse `json:"pagination"`
	Filters    *response.FiltersResponse    `json:"filters"`
	Sorting    *response.SortingResponse    `json:"sorting"`
	Error      *response.ResponseError      `json:"error"`
	Timestamp  time.Time                    `json:"timestamp"`
}

type TodoHandlerSuite struct {
	suite.Suite
	TodoRepo port.TodoRepository
	Router   *gin.Engine
	DB       *database.DB
}

func (s *TodoHandlerSuite) SetupTest() {
	s.DB = InitTestDB()
	recorder := telemetry.NewNoOpRecorder()

	s.TodoRepo = repository.NewTodoRepository(s.DB, recorder)
	todoService := service.NewTodoService(s.TodoRepo, recorder)

	s.Router = newTestRouter(s.T(), todoService, s.DB)
}

func (s *TodoHandlerSuite) TearDownTest() {
	if s.DB != nil {
		s.DB.Close()
	}
}

func TestTodoHandlerSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TodoHandlerSuite))
}

func newTestRouter(t *testing.T, svc port.TodoService, store handler.StoreChecker) *gin.Engine {
	translator, err := i18n.NewTranslator()
	if err != nil {
		t.Fatal(err)
	}

	responder := helper.NewResponder(logger.NewNopLogger(), translator, false)

	handlers := routes.HandlersConfig{
		TodoHandler: handler.NewTodoHandler(svc, validation.New(), responder),
	}

	if store != nil {
		handlers.HealthHandler = handler.NewHealthHandler(store, responder, "test", "test")
	}

	return routes.SetupRouterForTests(handlers, responder, translator)
}

func (s *TodoHandlerSuite) do(method, path, body string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	var env envelope
	_ = json.Unmarshal(rr.Body.Bytes(), &env)

	return rr, env
}

func decodeTodo(env envelope) response.TodoResponse {
	var todo response.TodoResponse
	Expect(json.Unmarshal(env.Data, &todo)).To(Succeed())
	return todo
}

func decodeTodos(env envelope) []response.TodoResponse {
	var todos []response.TodoResponse
	Expect(json.Unmarshal(env.Data, &todos)).To(Succeed())
	return todos
}

func (s *TodoHandlerSuite) createTodo(body string) response.TodoResponse {
	rr, env := s.do(http.MethodPost, "/todos", body)
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	return decodeTodo(env)
}

func (s *TodoHandlerSuite) TestCreateTodo_Defaults() {
	rr, env := s.do(http.MethodPost, "/todos", `{"title": "Buy milk"}`)

	Expect(rr.Code).To(Equal(http.StatusCreated))
	Expect(rr.Header().Get("Content-Type")).To(ContainSubstring("application/json"))
	Expect(env.Success).To(BeTrue())
	Expect(env.Message).To(Equal("Todo created successfully"))

	todo := decodeTodo(env)
	Expect(todo.ID).NotTo(BeEmpty())
	Expect(todo.Completed).To(BeFalse())
	Expect(todo.Priority).To(Equal("medium"))
	Expect(todo.CreatedAt).To(Equal(todo.UpdatedAt))
	Expect(todo.IsOverdue).To(BeFalse())

	other := s.createTodo(`{"title": "Buy milk"}`)
	Expect(other.ID).NotTo(Equal(todo.ID))
}

func (s *TodoHandlerSuite) TestCreateTodo_ValidationCollectsAll() {
	rr, env := s.do(http.MethodPost, "/todos", `{"title": "", "priority": "urgent", "tags": "home"}`)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(env.Success).To(BeFalse())
	Expect(env.Error.Code).To(Equal(helper.CodeValidation))

	var details []response.ValidationError
	raw, _ := json.Marshal(env.Error.Details)
	Expect(json.Unmarshal(raw, &details)).To(Succeed())

	var fields []string
	for _, d := range details {
		fields = append(fields, d.Field)
	}
	Expect(fields).To(ConsistOf("title", "priority", "tags"))

	todos, total, _ := s.TodoRepo.List(ctx, domain.DefaultListQuery())
	Expect(todos).To(BeEmpty())
	Expect(total).To(Equal(0))
}

func (s *TodoHandlerSuite) TestCreateTodo_LocalizedValidation() {
	rr, env := s.do(http.MethodPost, "/todos", `{"completed": null, "title": "x"}`, "Accept-Language", "pt-BR")

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(env.Error.Message).To(Equal("Falha na validação"))
	Expect(env.Error.Details).To(ContainElement(HaveKeyWithValue("message", "completed não pode ser nulo")))
}

func (s *TodoHandlerSuite) TestGetTodo() {
	created := s.createTodo(`{"title": "Read", "tags": ["books"]}`)

	rr, env := s.do(http.MethodGet, "/todos/"+created.ID, "")

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(decodeTodo(env).Tags).To(Equal([]string{"books"}))
}

func (s *TodoHandlerSuite) TestGetTodo_NotFoundAndMalformed() {
	rr, env := s.do(http.MethodGet, "/todos/"+uuid.NewString(), "")

	Expect(rr.Code).To(Equal(http.StatusNotFound))
	Expect(env.Error.Code).To(Equal(helper.CodeNotFound))
	Expect(env.Error.Message).To(Equal("Todo not found"))

	rr, env = s.do(http.MethodGet, "/todos/not-a-uuid", "")

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(env.Error.Code).To(Equal(helper.CodeValidation))
}

func (s *TodoHandlerSuite) TestUpdateTodo_EmptyBodyDoesNotMutate() {
	created := s.createTodo(`{"title": "Keep"}`)

	rr, env := s.do(http.MethodPut, "/todos/"+created.ID, `{}`)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(env.Error.Code).To(Equal(helper.CodeValidation))

	stored, err := s.TodoRepo.GetByID(ctx, created.ID)
	Expect(err).To(BeNil())
	Expect(stored.Title).To(Equal("Keep"))
	Expect(stored.UpdatedAt).To(BeTemporally("==", created.UpdatedAt))
}

func (s *TodoHandlerSuite) TestUpdateTodo_PartialPatch() {
	created := s.createTodo(`{"title": "Draft", "description": "first", "priority": "low"}`)

	rr, env := s.do(http.MethodPut, "/todos/"+created.ID, `{"title": "Final", "description": null}`)

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(env.Message).To(Equal("Todo updated successfully"))

	updated := decodeTodo(env)
	Expect(updated.Title).To(Equal("Final"))
	Expect(updated.Description).To(BeNil())
	Expect(updated.Priority).To(Equal("low"))
	Expect(updated.UpdatedAt.After(created.UpdatedAt) || updated.UpdatedAt.Equal(created.UpdatedAt)).To(BeTrue())
}

func (s *TodoHandlerSuite) TestUpdateTodo_NotFound() {
	rr, env := s.do(http.MethodPut, "/todos/"+uuid.NewString(), `{"title": "x"}`)

	Expect(rr.Code).To(Equal(http.StatusNotFound))
	Expect(env.Error.Code).To(Equal(helper.CodeNotFound))
}

func (s *TodoHandlerSuite) TestUpdateTodo_ReportsIDAndBodyTogether() {
	rr, env := s.do(http.MethodPut, "/todos/not-a-uuid", `{}`)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(env.Error.Code).To(Equal(helper.CodeValidation))
	Expect(detailFields(env)).To(Equal([]string{"id", "body"}))

	rr, env = s.do(http.MethodPut, "/todos/not-a-uuid", `{"title": "", "priority": "urgent"}`)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(detailFields(env)).To(ConsistOf("id", "title", "priority"))
}

func detailFields(env envelope) []string {
	details, _ := env.Error.Details.([]interface{})

	fields := make([]string, 0, len(details))
	for _, detail := range details {
		if violation, ok := detail.(map[string]interface{}); ok {
			fields = append(fields, fmt.Sprint(violation["field"]))
		}
	}

	return fields
}

func (s *TodoHandlerSuite) TestToggleTodo_Twice() {
	created := s.createTodo(`{"title": "Flip"}`)

	rr, env := s.do(http.MethodPatch, "/todos/"+created.ID+"/toggle", "")
	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(env.Message).To(Equal("Todo marked as completed"))
	once := decodeTodo(env)

	_, env = s.do(http.MethodPatch, "/todos/"+created.ID+"/toggle", "")
	Expect(env.Message).To(Equal("Todo marked as pending"))
	twice := decodeTodo(env)

	Expect(once.Completed).To(BeTrue())
	Expect(twice.Completed).To(Equal(created.Completed))
	Expect(once.UpdatedAt.After(created.UpdatedAt)).To(BeTrue())
	Expect(twice.UpdatedAt.After(once.UpdatedAt)).To(BeTrue())
}

func (s *TodoHandlerSuite) TestDeleteTodo() {
	created := s.createTodo(`{"title": "Gone"}`)

	rr, env := s.do(http.MethodDelete, "/todos/"+created.ID, "")

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(env.Message).To(Equal("Todo deleted successfully"))

	rr, env = s.do(http.MethodDelete, "/todos/"+created.ID, "")

	Expect(rr.Code).To(Equal(http.StatusNotFound))
	Expect(env.Error.Code).To(Equal(helper.CodeNotFound))
}

func (s *TodoHandlerSuite) TestListTodos_PaginationCoversEveryItem() {
	for i := 0; i < 7; i++ {
		s.createTodo(fmt.Sprintf(`{"title": "todo %d"}`, i))
	}

	seen := map[string]bool{}
	sum := 0

	for page := 1; page <= 3; page++ {
		rr, env := s.do(http.MethodGet, fmt.Sprintf("/todos?limit=3&page=%d", page), "")
		Expect(rr.Code).To(Equal(http.StatusOK))

		todos := decodeTodos(env)
		sum += len(todos)

		for _, todo := range todos {
			Expect(seen).NotTo(HaveKey(todo.ID))
			seen[todo.ID] = true
		}

		Expect(env.Pagination.TotalItems).To(Equal(7))
		Expect(env.Pagination.TotalPages).To(Equal(3))
		Expect(env.Pagination.HasPrevPage).To(Equal(page > 1))
		Expect(env.Pagination.HasNextPage).To(Equal(page < 3))
	}

	Expect(sum).To(Equal(7))

	_, env := s.do(http.MethodGet, "/todos?limit=3&page=9", "")
	Expect(decodeTodos(env)).To(BeEmpty())
	Expect(env.Pagination.TotalItems).To(Equal(7))
}

func (s *TodoHandlerSuite) TestListTodos_PageFarPastTheEnd() {
	s.createTodo(`{"title": "Only one"}`)

	rr, env := s.do(http.MethodGet, "/todos?page=4611686018427387905&limit=10", "")

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(decodeTodos(env)).To(BeEmpty())
	Expect(env.Pagination.TotalItems).To(Equal(1))
	Expect(env.Pagination.TotalPages).To(Equal(1))
	Expect(env.Pagination.CurrentPage).To(Equal(4611686018427387905))
	Expect(env.Pagination.HasNextPage).To(BeFalse())
}

func (s *TodoHandlerSuite) TestListTodos_LimitBounds() {
	rr, _ := s.do(http.MethodGet, "/todos?limit=100", "")
	Expect(rr.Code).To(Equal(http.StatusOK))

	rr, env := s.do(http.MethodGet, "/todos?limit=101", "")
	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(env.Error.Code).To(Equal(helper.CodeValidation))

	rr, _ = s.do(http.MethodGet, "/todos?page=0", "")
	Expect(rr.Code).To(Equal(http.StatusBadRequest))
}

func (s *TodoHandlerSuite) TestListTodos_EmptyResult() {
	rr, env := s.do(http.MethodGet, "/todos", "")

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(string(env.Data)).To(Equal("[]"))
	Expect(env.Pagination.TotalPages).To(Equal(0))
	Expect(env.Pagination.HasNextPage).To(BeFalse())
	Expect(env.Filters.Status).To(Equal("all"))
	Expect(env.Sorting.SortBy).To(Equal("createdAt"))
	Expect(env.Sorting.SortOrder).To(Equal("desc"))
}

func (s *TodoHandlerSuite) TestBuyMilkScenario() {
	created := s.createTodo(`{"title": "Buy milk", "priority": "low"}`)

	rr, env := s.do(http.MethodGet, "/todos?status=pending&priority=low", "")
	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(decodeTodos(env)).To(ContainElement(HaveField("ID", created.ID)))
	Expect(*env.Filters.Priority).To(Equal("low"))

	_, env = s.do(http.MethodGet, "/todos/stats", "")
	var before response.StatsResponse
	Expect(json.Unmarshal(env.Data, &before)).To(Succeed())

	rr, _ = s.do(http.MethodPatch, "/todos/"+created.ID+"/toggle", "")
	Expect(rr.Code).To(Equal(http.StatusOK))

	_, env = s.do(http.MethodGet, "/todos/stats", "")
	var after response.StatsResponse
	Expect(json.Unmarshal(env.Data, &after)).To(Succeed())

	Expect(after.Completed).To(Equal(before.Completed + 1))
	Expect(after.CompletionRate).To(Equal(100.0))
}

func (s *TodoHandlerSuite) TestDueSoon() {
	now := time.Now().UTC()
	inTwoDays := now.Add(48 * time.Hour).Format(time.RFC3339)
	inFourDays := now.Add(96 * time.Hour).Format(time.RFC3339)

	near := s.createTodo(fmt.Sprintf(`{"title": "near", "dueDate": %q}`, inTwoDays))
	s.createTodo(fmt.Sprintf(`{"title": "far", "dueDate": %q}`, inFourDays))

	rr, env := s.do(http.MethodGet, "/todos/due-soon?days=3", "")

	Expect(rr.Code).To(Equal(http.StatusOK))

	todos := decodeTodos(env)
	Expect(todos).To(HaveLen(1))
	Expect(todos[0].ID).To(Equal(near.ID))

	rr, _ = s.do(http.MethodGet, "/todos/due-soon?days=0", "")
	Expect(rr.Code).To(Equal(http.StatusBadRequest))
}

func (s *TodoHandlerSuite) TestBulkDelete_PartialSuccess() {
	first := s.createTodo(`{"title": "one"}`)
	second := s.createTodo(`{"title": "two"}`)

	body := fmt.Sprintf(`{"ids": [%q, %q, %q]}`, first.ID, second.ID, uuid.NewString())
	rr, env := s.do(http.MethodDelete, "/todos/bulk", body)

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(string(env.Data)).To(MatchJSON(`{"deletedCount": 2}`))
	Expect(env.Message).To(Equal("2 todos deleted"))

	rr, _ = s.do(http.MethodGet, "/todos/"+first.ID, "")
	Expect(rr.Code).To(Equal(http.StatusNotFound))
}

func (s *TodoHandlerSuite) TestBulkUpdate() {
	first := s.createTodo(`{"title": "one"}`)
	second := s.createTodo(`{"title": "two"}`)

	body := fmt.Sprintf(`{"ids": [%q, %q], "updateData": {"priority": "high", "completed": true}}`, first.ID, second.ID)
	rr, env := s.do(http.MethodPatch, "/todos/bulk", body)

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(string(env.Data)).To(MatchJSON(`{"updatedCount": 2}`))

	stored, _ := s.TodoRepo.GetByID(ctx, second.ID)
	Expect(stored.Priority).To(Equal(domain.PriorityHigh))
	Expect(stored.Completed).To(BeTrue())

	rr, env = s.do(http.MethodPatch, "/todos/bulk", fmt.Sprintf(`{"ids": [%q], "updateData": {}}`, first.ID))
	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(env.Error.Details).To(ContainElement(HaveKeyWithValue("field", "updateData")))
}

func (s *TodoHandlerSuite) TestStats_CountsOverdue() {
	past := domain.Timestamp(time.Now().Add(-time.Hour))

	_, err := s.TodoRepo.Create(ctx, factory.NewTodo(map[string]any{"DueDate": &past}))
	s.Require().NoError(err)

	_, env := s.do(http.MethodGet, "/todos/stats", "")

	Expect(string(env.Data)).To(MatchJSON(`{"total":1,"completed":0,"pending":1,"overdue":1,"completionRate":0}`))

	_, env = s.do(http.MethodGet, "/todos", "")
	Expect(decodeTodos(env)[0].IsOverdue).To(BeTrue())
}

func (s *TodoHandlerSuite) TestRouteNotFound() {
	rr, env := s.do(http.MethodGet, "/nope", "")

	Expect(rr.Code).To(Equal(http.StatusNotFound))
	Expect(env.Error.Code).To(Equal(helper.CodeRouteNotFound))
	Expect(env.Error.Message).To(Equal("Route GET /nope not found"))
}

func (s *TodoHandlerSuite) TestHealthEndpoints() {
	for _, path := range []string{"/health", "/health/live", "/health/ready", "/health/detailed"} {
		rr, env := s.do(http.MethodGet, path, "")

		Expect(rr.Code).To(Equal(http.StatusOK), path)
		Expect(env.Success).To(BeTrue(), path)
	}

	_, env := s.do(http.MethodGet, "/health/detailed", "")
	Expect(string(env.Data)).To(ContainSubstring(`"pool"`))
}
