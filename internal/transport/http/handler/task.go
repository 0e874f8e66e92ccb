package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"todohub/internal/app"
	"todohub/internal/transport/http/response"
)

type TaskHandler struct {
	taskService *app.TaskService
}

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=1000"`
}

type CreateTaskBatchRequest struct {
	Tasks []CreateTaskRequest `json:"tasks" binding:"required,min=1,max=50,dive"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Completed   *bool   `json:"completed"`
}

type CompleteTaskRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

func NewTaskHandler(taskService *app.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	task, err := h.taskService.CreateTask(app.CreateTaskInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.writeTaskError(c, err, "create task failed")
		return
	}

	response.OK(c, task)
}

func (h *TaskHandler) CreateBatch(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req CreateTaskBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	inputs := make([]app.CreateTaskInput, 0, len(req.Tasks))
	for _, item := range req.Tasks {
		inputs = append(inputs, app.CreateTaskInput{
			UserID:      userID,
			Title:       item.Title,
			Description: item.Description,
		})
	}

	tasks, err := h.taskService.CreateTasks(userID, inputs)
	if err != nil {
		h.writeTaskError(c, err, "create tasks failed")
		return
	}

	response.OK(c, tasks)
}

func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	filter := c.DefaultQuery("status", app.TaskFilterAll)
	tasks, err := h.taskService.ListTasks(userID, filter)
	if err != nil {
		h.writeTaskError(c, err, "list tasks failed")
		return
	}

	response.OK(c, tasks)
}

func (h *TaskHandler) Get(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(userID, taskID)
	if err != nil {
		h.writeTaskError(c, err, "get task failed")
		return
	}

	response.OK(c, task)
}

func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	task, err := h.taskService.UpdateTask(userID, taskID, app.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		h.writeTaskError(c, err, "update task failed")
		return
	}

	response.OK(c, task)
}

func (h *TaskHandler) Complete(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	var req CompleteTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Completed == nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	task, err := h.taskService.SetTaskCompleted(userID, taskID, *req.Completed)
	if err != nil {
		h.writeTaskError(c, err, "complete task failed")
		return
	}

	response.OK(c, task)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(userID, taskID); err != nil {
		h.writeTaskError(c, err, "delete task failed")
		return
	}

	response.OK(c, gin.H{"deleted_task_id": taskID})
}

func (h *TaskHandler) writeTaskError(c *gin.Context, err error, fallbackMessage string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrTaskValidation):
		response.Error(c, http.StatusUnprocessableEntity, response.CodeValidationFailed, err.Error())
	case errors.Is(err, app.ErrTaskNotFound):
		response.Error(c, http.StatusNotFound, response.CodeTaskNotFound, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallbackMessage)
	}
}

func parseTaskID(c *gin.Context) (uint, bool) {
	taskID64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || taskID64 == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid task id")
		return 0, false
	}
	return uint(taskID64), true
}
