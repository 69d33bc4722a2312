package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskdesk/backend/services"
)

type SubmitTaskRequest struct {
	TaskID uint `json:"taskId" binding:"required"`
}

// SubmitTask marks one of the caller's tasks completed
// POST /employee/submit-task
func (h *Handler) SubmitTask(c *gin.Context) {
	var req SubmitTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "taskId is required"})
		return
	}

	if err := h.Tasks.Complete(c.Request.Context(), req.TaskID, CurrentUser(c).ID); err != nil {
		if errors.Is(err, services.ErrTaskNotFoundOrNotOwned) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Task not found or not yours"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task submitted successfully"})
}

// ListTasks returns the role-scoped task list
// GET /tasks
func (h *Handler) ListTasks(c *gin.Context) {
	tasks, err := h.Tasks.ListFor(c.Request.Context(), CurrentUser(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tasks"})
		return
	}

	c.JSON(http.StatusOK, tasks)
}
