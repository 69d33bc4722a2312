package models

import (
	"time"
)

// Role determines which endpoints a user may call.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// User model for authentication and task assignment.
// EmployeeID is the public badge (EMP001, ...); only the bootstrap admin
// carries none.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EmployeeID   *string   `gorm:"uniqueIndex;column:employee_id" json:"employeeId,omitempty"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"default:employee" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Tasks []Task `gorm:"foreignKey:AssignedTo" json:"tasks,omitempty"`
}

func (User) TableName() string {
	return "users"
}
