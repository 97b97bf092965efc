package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"todo/internal/middleware"
	"todo/internal/model"
	"todo/internal/repository"
)

type TaskHandler struct {
	repo         repository.TaskRepositoryInterface
	log          zerolog.Logger
	exposeErrors bool
}

func NewTaskHandler(repo repository.TaskRepositoryInterface, log zerolog.Logger, exposeErrors bool) *TaskHandler {
	return &TaskHandler{
		repo:         repo,
		log:          log,
		exposeErrors: exposeErrors,
	}
}

type TaskListResponse struct {
	Tasks []model.Task `json:"tasks"`
}

type TaskResponse struct {
	Task *model.Task `json:"task"`
}

// UpdateTaskRequest documents the update body. Every field is optional;
// description and due_date may be null to clear them.
type UpdateTaskRequest struct {
	Title       *string           `json:"title,omitempty" example:"Buy milk"`
	Description *string           `json:"description,omitempty" extensions:"x-nullable"`
	DueDate     *string           `json:"due_date,omitempty" extensions:"x-nullable"`
	Status      *model.TaskStatus `json:"status,omitempty"`
}

type DeleteResponse struct {
	Deleted bool `json:"deleted" example:"true"`
}

// List godoc
// @Summary      List tasks
// @Description  Returns every task, newest first
// @Tags         Tasks
// @Produce      json
// @Success      200  {object}  TaskListResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.storageError(c, err, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	c.JSON(http.StatusOK, TaskListResponse{Tasks: tasks})
}

// GetByID godoc
// @Summary      Get a task
// @Tags         Tasks
// @Produce      json
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  TaskResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		notFound(c)
		return
	}

	task, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.storageError(c, err, "failed to get task")
		return
	}
	c.JSON(http.StatusOK, TaskResponse{Task: task})
}

// Create godoc
// @Summary      Create a task
// @Description  Title is required; status defaults to pending
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        task  body      model.CreateTaskInput  true  "New task"
// @Success      201   {object}  TaskResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		validationError(c, err)
		return
	}

	input, err := model.DecodeCreateTaskInput(body)
	if err != nil {
		validationError(c, err)
		return
	}

	task, err := input.Validate()
	if err != nil {
		validationError(c, err)
		return
	}

	created, err := h.repo.Create(c.Request.Context(), task)
	if err != nil {
		h.storageError(c, err, "failed to create task")
		return
	}

	middleware.Logger(c, h.log).Info().
		Int64("task_id", created.ID).
		Msg("created task")
	c.JSON(http.StatusCreated, TaskResponse{Task: created})
}

// Update godoc
// @Summary      Update a task
// @Description  Applies any subset of title, description, due_date and status. Other fields are ignored.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Task ID"
// @Param        task  body      UpdateTaskRequest  true  "Fields to change"
// @Success      200   {object}  TaskResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /api/tasks/{id} [patch]
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		notFound(c)
		return
	}

	// An unknown id wins over any problem with the body.
	if _, err := h.repo.GetByID(c.Request.Context(), id); err != nil {
		h.storageError(c, err, "failed to get task for update")
		return
	}

	body, err := readBody(c)
	if err != nil {
		validationError(c, err)
		return
	}

	update, err := model.ParseTaskUpdate(body)
	if err != nil {
		validationError(c, err)
		return
	}

	task, err := h.repo.Update(c.Request.Context(), id, update)
	if err != nil {
		h.storageError(c, err, "failed to update task")
		return
	}

	middleware.Logger(c, h.log).Info().
		Int64("task_id", id).
		Msg("updated task")
	c.JSON(http.StatusOK, TaskResponse{Task: task})
}

// Delete godoc
// @Summary      Delete a task
// @Tags         Tasks
// @Produce      json
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  DeleteResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		notFound(c)
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.storageError(c, err, "failed to delete task")
		return
	}

	middleware.Logger(c, h.log).Info().
		Int64("task_id", id).
		Msg("deleted task")
	c.JSON(http.StatusOK, DeleteResponse{Deleted: true})
}

// parseTaskID accepts positive integers only; anything else is treated as
// an unknown task.
func parseTaskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func readBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil {
		return nil, nil
	}
	body, err := c.GetRawData()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errors.New("request body too large")
		}
		return nil, errors.New("failed to read request body")
	}
	return body, nil
}
