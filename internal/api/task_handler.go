package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/taskboardhq/taskboard-api/internal/api/shared"
	"github.com/taskboardhq/taskboard-api/internal/domain"
	"github.com/taskboardhq/taskboard-api/internal/service"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTask handles POST /tasks requests
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithValidationError(w, r, ValidationDetails(err))
		return
	}

	ownerID, err := uuid.Parse(req.UserID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		UserID:      ownerID,
	})
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithData(w, r, http.StatusCreated, task)
}

// GetTask handles GET /tasks/{id} requests
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), taskID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, task)
}

// ListTasks handles GET /tasks requests with pagination, search, filters
// and sort.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	params, err := ParseListTasksParams(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := shared.ValidateRequest(params); err != nil {
		shared.RespondWithValidationError(w, r, ValidationDetails(err))
		return
	}

	page, err := h.taskService.ListTasks(r.Context(), params.ToQuery())
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithPage(w, r, http.StatusOK, page)
}

// UpdateTask handles PUT /tasks/{id} requests
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithValidationError(w, r, ValidationDetails(err))
		return
	}

	if !req.HasUpdates() {
		shared.RespondWithError(w, r, http.StatusBadRequest, "At least one field must be provided")
		return
	}

	input := service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.UserID != nil {
		ownerID, err := uuid.Parse(*req.UserID)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user ID format")
			return
		}
		input.UserID = &ownerID
	}

	task, err := h.taskService.UpdateTask(r.Context(), taskID, input)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{id} requests
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.taskService.DeleteTask(r.Context(), taskID); err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithMessage(w, r, http.StatusOK, nil, "Task deleted successfully")
}

// ListTasksByUser handles GET /tasks/user/{userId} requests
func (h *TaskHandler) ListTasksByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(w, r, "userId")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTasksByUser(r.Context(), userID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, tasks)
}

// GetStatistics handles GET /tasks/statistics requests
func (h *TaskHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.taskService.GetStatistics(r.Context())
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, stats)
}
