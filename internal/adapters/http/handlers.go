package http

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/tasklist/internal/application/services"
	"github.com/taskmaster/tasklist/internal/infrastructure/logger"
)

// TaskHandler serves the whole task document over GET and PUT /tasks.
type TaskHandler struct {
	documentService *services.DocumentService
	logger          *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(documentService *services.DocumentService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		documentService: documentService,
		logger:          logger.WithComponent("task_handler"),
	}
}

// GetTasks returns the stored document.
//
//	@Summary		Fetch the task document
//	@Tags			Tasks
//	@Produce		json
//	@Success		200	{object}	entities.Document
//	@Failure		500	{object}	ErrorResponse
//	@Router			/tasks [get]
func (h *TaskHandler) GetTasks(c echo.Context) error {
	data, err := h.documentService.Read(c.Request().Context())
	if err != nil {
		h.logger.Errorw("Error reading task list", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load tasks"})
	}

	c.Response().Header().Set("Cache-Control", "no-store")
	return c.JSONBlob(http.StatusOK, data)
}

// PutTasks replaces the stored document with the request body, verbatim.
//
//	@Summary		Replace the task document
//	@Tags			Tasks
//	@Accept			json
//	@Produce		json
//	@Param			document	body		entities.Document	true	"Full task document"
//	@Success		200			{object}	MessageResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/tasks [put]
func (h *TaskHandler) PutTasks(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Errorw("Error saving tasks", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to save tasks"})
	}

	if err := h.documentService.Write(c.Request().Context(), body); err != nil {
		h.logger.Errorw("Error saving tasks", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to save tasks"})
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Tasks saved successfully"})
}

// Request/Response types
type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
