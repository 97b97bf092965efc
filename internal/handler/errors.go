package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo/internal/middleware"
	"todo/internal/repository"
)

const (
	ErrKindValidation = "validation_error"
	ErrKindNotFound   = "not_found"
	ErrKindInternal   = "internal_server_error"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error   string `json:"error" example:"validation_error"`
	Message string `json:"message,omitempty" example:"title is required"`
}

func validationError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: ErrKindValidation, Message: err.Error()})
}

func notFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: ErrKindNotFound})
}

// storageError maps a repository error to a response. Faults other than
// not-found and constraint violations are logged and reported as 500.
func (h *TaskHandler) storageError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, repository.ErrTaskNotFound):
		notFound(c)
	case errors.Is(err, repository.ErrConstraintViolation):
		validationError(c, repository.ErrConstraintViolation)
	default:
		middleware.Logger(c, h.log).Error().Err(err).Msg(msg)

		resp := ErrorResponse{Error: ErrKindInternal}
		if h.exposeErrors {
			resp.Message = err.Error()
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
	}
}
