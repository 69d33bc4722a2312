package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskdesk/backend/models"
	"github.com/taskdesk/backend/services"
)

// CreateEmployee provisions an employee account on behalf of an admin
// POST /admin/create-employee
func (h *Handler) CreateEmployee(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	user, err := h.Users.Create(c.Request.Context(), req.Username, req.Password, models.RoleEmployee)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create employee"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Employee created successfully",
		"employeeId": user.EmployeeID,
	})
}

type AssignTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	EmployeeID  string `json:"employeeId" binding:"required"`
}

// AssignTask creates a task for an employee, referenced by badge
// POST /admin/assign-task
func (h *Handler) AssignTask(c *gin.Context) {
	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and employeeId are required"})
		return
	}

	task, err := h.Tasks.Assign(c.Request.Context(), req.Title, req.Description, req.EmployeeID, CurrentUser(c).ID)
	if err != nil {
		if errors.Is(err, services.ErrEmployeeNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Employee not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error assigning task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task assigned successfully",
		"taskId":  task.ID,
	})
}

type PromoteRequest struct {
	EmployeeID string `json:"employeeId" binding:"required"`
}

// Promote raises an employee to admin, referenced by badge. Promoting an
// admin again succeeds without change.
// POST /admin/promote
func (h *Handler) Promote(c *gin.Context) {
	var req PromoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "employeeId is required"})
		return
	}

	if _, err := h.Users.Promote(c.Request.Context(), req.EmployeeID); err != nil {
		if errors.Is(err, services.ErrEmployeeNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Promotion failed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Promotion failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Employee promoted to admin"})
}

// ListEmployees returns all employee accounts
// GET /admin/employees?include_tasks=true
func (h *Handler) ListEmployees(c *gin.Context) {
	withTasks := c.Query("include_tasks") == "true"

	employees, err := h.Users.ListEmployees(c.Request.Context(), withTasks)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list employees"})
		return
	}

	c.JSON(http.StatusOK, employees)
}
