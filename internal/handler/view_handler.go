package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"todo/internal/middleware"
	"todo/internal/model"
	"todo/internal/repository"
)

// ViewHandler renders the HTML pages on top of the task repository.
type ViewHandler struct {
	repo repository.TaskRepositoryInterface
	log  zerolog.Logger
}

func NewViewHandler(repo repository.TaskRepositoryInterface, log zerolog.Logger) *ViewHandler {
	return &ViewHandler{repo: repo, log: log}
}

type taskView struct {
	ID          int64
	Title       string
	Description string
	DueDate     string
	Status      string
	CreatedAt   string
	UpdatedAt   string
}

func newTaskView(t model.Task) taskView {
	v := taskView{
		ID:        t.ID,
		Title:     t.Title,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.Description != nil {
		v.Description = *t.Description
	}
	if t.DueDate != nil {
		v.DueDate = *t.DueDate
	}
	return v
}

var statuses = []string{string(model.StatusPending), string(model.StatusInProgress), string(model.StatusDone)}

func (h *ViewHandler) Index(c *gin.Context) {
	tasks, err := h.repo.List(c.Request.Context())
	if err != nil {
		middleware.Logger(c, h.log).Error().Err(err).Msg("failed to list tasks for index")
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, newTaskView(t))
	}
	c.HTML(http.StatusOK, "index.html", gin.H{"Tasks": views})
}

func (h *ViewHandler) AddForm(c *gin.Context) {
	c.HTML(http.StatusOK, "form.html", gin.H{
		"Action":   "Create",
		"Task":     nil,
		"Statuses": statuses,
	})
}

func (h *ViewHandler) EditForm(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		c.String(http.StatusNotFound, "Task not found")
		return
	}

	task, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.String(http.StatusNotFound, "Task not found")
			return
		}
		middleware.Logger(c, h.log).Error().Err(err).Int64("task_id", id).Msg("failed to load task for edit form")
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	view := newTaskView(*task)
	c.HTML(http.StatusOK, "form.html", gin.H{
		"Action":   "Update",
		"Task":     &view,
		"Statuses": statuses,
	})
}
