package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"todo/internal/handler"
	"todo/internal/model"
	"todo/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTaskRepository struct {
	mock.Mock
}

var _ repository.TaskRepositoryInterface = (*MockTaskRepository)(nil)

func (m *MockTaskRepository) List(ctx context.Context) ([]model.Task, error) {
	args := m.Called(ctx)
	tasks := args.Get(0)
	if tasks == nil {
		return nil, args.Error(1)
	}
	return tasks.([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	args := m.Called(ctx, id)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	args := m.Called(ctx, task)
	created := args.Get(0)
	if created == nil {
		return nil, args.Error(1)
	}
	return created.(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, id int64, update *model.TaskUpdate) (*model.Task, error) {
	args := m.Called(ctx, id, update)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func setupTest(exposeErrors bool) (*gin.Engine, *MockTaskRepository) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mockRepo := new(MockTaskRepository)
	h := handler.NewTaskHandler(mockRepo, zerolog.Nop(), exposeErrors)

	r.GET("/api/tasks", h.List)
	r.POST("/api/tasks", h.Create)
	r.GET("/api/tasks/:id", h.GetByID)
	r.PATCH("/api/tasks/:id", h.Update)
	r.PUT("/api/tasks/:id", h.Update)
	r.DELETE("/api/tasks/:id", h.Delete)
	r.GET("/health", handler.Health)
	return r, mockRepo
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body
}

func sampleTask(id int64, title string) *model.Task {
	return &model.Task{
		ID:        id,
		Title:     title,
		Status:    model.StatusPending,
		CreatedAt: "2024-01-01 10:00:00.000",
		UpdatedAt: "2024-01-01 10:00:00.000",
	}
}

func TestList_Success(t *testing.T) {
	router, mockRepo := setupTest(true)
	mockRepo.On("List", mock.Anything).Return([]model.Task{*sampleTask(2, "b"), *sampleTask(1, "a")}, nil)

	resp := doRequest(router, http.MethodGet, "/api/tasks", "")

	assert.Equal(t, http.StatusOK, resp.Code)
	var body handler.TaskListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Tasks, 2)
	assert.Equal(t, int64(2), body.Tasks[0].ID)
	mockRepo.AssertExpectations(t)
}

func TestList_EmptyIsArray(t *testing.T) {
	router, mockRepo := setupTest(true)
	mockRepo.On("List", mock.Anything).Return(nil, nil)

	resp := doRequest(router, http.MethodGet, "/api/tasks", "")

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"tasks":[]}`, resp.Body.String())
}

func TestList_StorageError(t *testing.T) {
	router, mockRepo := setupTest(true)
	mockRepo.On("List", mock.Anything).Return(nil, errors.New("database is locked"))

	resp := doRequest(router, http.MethodGet, "/api/tasks", "")

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	body := decodeError(t, resp)
	assert.Equal(t, handler.ErrKindInternal, body.Error)
	assert.Equal(t, "database is locked", body.Message)
}

func TestList_StorageErrorRedacted(t *testing.T) {
	router, mockRepo := setupTest(false)
	mockRepo.On("List", mock.Anything).Return(nil, errors.New("database is locked"))

	resp := doRequest(router, http.MethodGet, "/api/tasks", "")

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.JSONEq(t, `{"error":"internal_server_error"}`, resp.Body.String())
}

func TestGetByID_Success(t *testing.T) {
	router, mockRepo := setupTest(true)
	mockRepo.On("GetByID", mock.Anything, int64(5)).Return(sampleTask(5, "Buy milk"), nil)

	resp := doRequest(router, http.MethodGet, "/api/tasks/5", "")

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"task":{"id":5,"title":"Buy milk","description":null,"due_date":null,
		"status":"pending","created_at":"2024-01-01 10:00:00.000","updated_at":"2024-01-01 10:00:00.000"}}`,
		resp.Body.String())
	mockRepo.AssertExpectations(t)
}

func TestGetByID_NotFound(t *testing.T) {
	router, mockRepo := setupTest(true)
	mockRepo.On("GetByID", mock.Anything, int64(999999)).Return(nil, repository.ErrTaskNotFound)

	resp := doRequest(router, http.MethodGet, "/api/tasks/999999", "")

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.JSONEq(t, `{"error":"not_found"}`, resp.Body.String())
}

func TestGetByID_NonNumericID(t *testing.T) {
	router, mockRepo := setupTest(true)

	for _, path := range []string{"/api/tasks/abc", "/api/tasks/-1", "/api/tasks/0"} {
		resp := doRequest(router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, resp.Code, path)
	}
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestCreate_Success(t *testing.T) {
	router, mockRepo := setupTest(true)
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(task *model.Task) bool {
		return task.Title == "Buy milk" && task.Status == model.StatusPending && task.Description == nil
	})).Return(sampleTask(1, "Buy milk"), nil)

	resp := doRequest(router, http.MethodPost, "/api/tasks", `{"title":"  Buy milk  "}`)

	assert.Equal(t, http.StatusCreated, resp.Code)
	var body handler.TaskResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.Task.ID)
	assert.Equal(t, model.StatusPending, body.Task.Status)
	mockRepo.AssertExpectations(t)
}

func TestCreate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"whitespace title", `{"title":"  "}`, "title is required"},
		{"missing title", `{"description":"x"}`, "title is required"},
		{"bogus status", `{"title":"x","status":"bogus"}`, "invalid status"},
		{"malformed json", `{"title":`, model.ErrInvalidBody.Error()},
		{"empty body", ``, model.ErrInvalidBody.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mockRepo := setupTest(true)

			resp := doRequest(router, http.MethodPost, "/api/tasks", tt.body)

			assert.Equal(t, http.StatusBadRequest, resp.Code)
			body := decodeError(t, resp)
			assert.Equal(t, handler.ErrKindValidation, body.Error)
			assert.Equal(t, tt.message, body.Message)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreate_ConstraintViolation(t *testing.T) {
	router, mockRepo := setupTest(true)
	mockRepo.On("Create", mock.Anything, mock.Anything).
		Return(nil, errors.Join(repository.ErrConstraintViolation, errors.New("CHECK constraint failed")))

	resp := doRequest(router, http.MethodPost, "/api/tasks", `{"title":"x"}`)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, handler.ErrKindValidation, decodeError(t, resp).Error)
}

func TestUpdate_Success(t *testing.T) {
	router, mockRepo := setupTest(true)
	updated := sampleTask(3, "Report")
	updated.Status = model.StatusDone
	mockRepo.On("GetByID", mock.Anything, int64(3)).Return(sampleTask(3, "Report"), nil)
	mockRepo.On("Update", mock.Anything, int64(3), mock.MatchedBy(func(u *model.TaskUpdate) bool {
		return u.Status != nil && *u.Status == model.StatusDone && u.Title == nil
	})).Return(updated, nil)

	for _, method := range []string{http.MethodPatch, http.MethodPut} {
		resp := doRequest(router, method, "/api/tasks/3", `{"status":"done","owner":"ignored"}`)

		assert.Equal(t, http.StatusOK, resp.Code, method)
		var body handler.TaskResponse
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, model.StatusDone, body.Task.Status)
	}
	mockRepo.AssertNumberOfCalls(t, "Update", 2)
}

func TestUpdate_ValidationErrors(t *testing.T) {
	tests := []struct {
		body    string
		message string
	}{
		{`{"foo":"bar"}`, "no valid fields"},
		{`{"status":"bogus"}`, "invalid status"},
		{`{"title":""}`, "title is required"},
	}

	for _, tt := range tests {
		router, mockRepo := setupTest(true)
		mockRepo.On("GetByID", mock.Anything, int64(1)).Return(sampleTask(1, "Task"), nil)

		resp := doRequest(router, http.MethodPatch, "/api/tasks/1", tt.body)

		assert.Equal(t, http.StatusBadRequest, resp.Code, tt.body)
		assert.Equal(t, tt.message, decodeError(t, resp).Message, tt.body)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestUpdate_NotFoundRegardlessOfBody(t *testing.T) {
	for _, body := range []string{`{"status":"done"}`, `{"foo":"bar"}`, `{"status":"bogus"}`, `not json`} {
		router, mockRepo := setupTest(true)
		mockRepo.On("GetByID", mock.Anything, int64(999999)).Return(nil, repository.ErrTaskNotFound)

		resp := doRequest(router, http.MethodPatch, "/api/tasks/999999", body)

		assert.Equal(t, http.StatusNotFound, resp.Code, body)
		assert.JSONEq(t, `{"error":"not_found"}`, resp.Body.String(), body)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestUpdate_DeletedBetweenLookupAndWrite(t *testing.T) {
	router, mockRepo := setupTest(true)
	mockRepo.On("GetByID", mock.Anything, int64(8)).Return(sampleTask(8, "Gone"), nil)
	mockRepo.On("Update", mock.Anything, int64(8), mock.Anything).Return(nil, repository.ErrTaskNotFound)

	resp := doRequest(router, http.MethodPatch, "/api/tasks/8", `{"status":"done"}`)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDelete_Success(t *testing.T) {
	router, mockRepo := setupTest(true)
	mockRepo.On("Delete", mock.Anything, int64(4)).Return(nil)

	resp := doRequest(router, http.MethodDelete, "/api/tasks/4", "")

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"deleted":true}`, resp.Body.String())
	mockRepo.AssertExpectations(t)
}

func TestDelete_NotFound(t *testing.T) {
	router, mockRepo := setupTest(true)
	mockRepo.On("Delete", mock.Anything, int64(4)).Return(repository.ErrTaskNotFound)

	resp := doRequest(router, http.MethodDelete, "/api/tasks/4", "")

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDelete_StorageError(t *testing.T) {
	router, mockRepo := setupTest(true)
	mockRepo.On("Delete", mock.Anything, int64(4)).Return(assert.AnError)

	resp := doRequest(router, http.MethodDelete, "/api/tasks/4", "")

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, assert.AnError.Error(), decodeError(t, resp).Message)
}

func TestHealth(t *testing.T) {
	router, mockRepo := setupTest(true)

	resp := doRequest(router, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok"}`, resp.Body.String())
	mockRepo.AssertExpectations(t)
}
