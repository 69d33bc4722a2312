package services

import (
	"context"
	"errors"

	"github.com/nats-io/nats.go"
	"gorm.io/gorm"

	"github.com/taskdesk/backend/models"
)

// ErrTaskNotFoundOrNotOwned covers both a missing task and someone else's
// task. The two cases are deliberately indistinguishable so callers cannot
// probe other employees' task ids.
var ErrTaskNotFoundOrNotOwned = errors.New("task not found or not yours")

// TaskService is the task ledger: assignment, completion and role-scoped
// listings.
type TaskService struct {
	db   *gorm.DB
	nats *nats.Conn
}

// NewTaskService creates a task service. A nil NATS connection disables
// event publishing (tests, seed tool).
func NewTaskService(db *gorm.DB, nc *nats.Conn) *TaskService {
	return &TaskService{db: db, nats: nc}
}

// Assign creates a task for the employee with the given badge. The badge
// resolves to an internal id first; an unknown badge fails before anything
// is written.
func (s *TaskService) Assign(ctx context.Context, title, description, badge string, assignerID uint) (*models.Task, error) {
	var assignee models.User
	if err := s.db.WithContext(ctx).Where("employee_id = ?", badge).First(&assignee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}

	task := models.Task{
		Title:       title,
		Description: description,
		Status:      models.TaskAssigned,
		AssignedTo:  assignee.ID,
		AssignedBy:  assignerID,
	}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, err
	}

	publishEvent(s.nats, SubjectTaskAssigned, map[string]interface{}{
		"taskId":     task.ID,
		"title":      task.Title,
		"assignedTo": badge,
	})
	return &task, nil
}

// Complete marks a task done. The guard clause keeps the transition to
// exactly once and only for the assignee; zero rows affected becomes the
// combined error.
func (s *TaskService) Complete(ctx context.Context, taskID, callerID uint) error {
	res := s.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND assigned_to = ? AND status = ?", taskID, callerID, models.TaskAssigned).
		Update("status", models.TaskCompleted)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTaskNotFoundOrNotOwned
	}

	publishEvent(s.nats, SubjectTaskCompleted, map[string]interface{}{
		"taskId": taskID,
	})
	return nil
}

// ListFor returns all tasks for admins, with assigner/assignee preloaded
// for display names, and only the caller's own tasks for employees.
// Insertion (id) order.
func (s *TaskService) ListFor(ctx context.Context, caller *models.User) ([]models.Task, error) {
	q := s.db.WithContext(ctx).Order("id")
	if caller.Role == models.RoleAdmin {
		q = q.Preload("AssignedToUser").Preload("AssignedByUser")
	} else {
		q = q.Where("assigned_to = ?", caller.ID)
	}

	var tasks []models.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
