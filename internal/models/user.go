package model

import (
	"time"

	"task-kpi-system.com/task-kpi-system/internal/constants"
)

// User is the slice of the user-management record the task core reads.
type User struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Name         string         `gorm:"not null;index" json:"name"`
	Role         constants.Role `gorm:"type:varchar(20);not null" json:"role"`
	DepartmentID string         `gorm:"size:36" json:"departmentId"`
	CreatedAt    time.Time      `json:"createdAt"`
}
