package models

import (
	"time"
)

// TaskStatus enum
type TaskStatus string

const (
	TaskAssigned  TaskStatus = "Assigned"
	TaskCompleted TaskStatus = "Completed"
)

// Task model. AssignedTo/AssignedBy are immutable assignment edges; only
// Status ever changes, and only Assigned -> Completed.
type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      TaskStatus `gorm:"default:Assigned" json:"status"`
	AssignedTo  uint       `gorm:"column:assigned_to;not null" json:"assignedTo"`
	AssignedBy  uint       `gorm:"column:assigned_by;not null" json:"assignedBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	AssignedToUser *User `gorm:"foreignKey:AssignedTo" json:"assignedToUser,omitempty"`
	AssignedByUser *User `gorm:"foreignKey:AssignedBy" json:"assignedByUser,omitempty"`
}

func (Task) TableName() string {
	return "tasks"
}
