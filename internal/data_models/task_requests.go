package dto

import model "task-kpi-system.com/task-kpi-system/internal/models"

type CreateTaskRequest struct {
	Description  string             `json:"description"`
	ExternalID   *string            `json:"externalId"`
	Remarks      string             `json:"remarks"`
	Date         *Date              `json:"date"`
	DepartmentID string             `json:"departmentId"`
	Tags         []string           `json:"tags"`
	Attachments  []model.Attachment `json:"attachments"`
	UserID       UserRef            `json:"userId"`
}

type UpdateTaskRequest struct {
	Description  *string             `json:"description"`
	ExternalID   *string             `json:"externalId"`
	Remarks      *string             `json:"remarks"`
	Date         *Date               `json:"date"`
	DepartmentID *string             `json:"departmentId"`
	Tags         *[]string           `json:"tags"`
	Attachments  *[]model.Attachment `json:"attachments"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type EscalateTaskRequest struct {
	TargetUserID UserRef `json:"targetUserId"`
	Reason       string  `json:"reason"`
}
