package model

import (
	"fmt"
	"time"

	"gorm.io/datatypes"

	"task-kpi-system.com/task-kpi-system/internal/constants"
)

// Attachment describes a file stored by the upload collaborator. Only the
// descriptor is kept on the task.
type Attachment struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	MimeType string `json:"mimeType,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

type Task struct {
	ID           string                          `gorm:"primaryKey;size:36" json:"id"`
	Description  string                          `gorm:"type:text;not null" json:"description"`
	ExternalID   *string                         `gorm:"size:64" json:"externalId"`
	Remarks      string                          `gorm:"type:text" json:"remarks"`
	Status       constants.TaskStatus            `gorm:"type:varchar(20);not null;index" json:"status"`
	Date         time.Time                       `gorm:"not null;index" json:"date"`
	DepartmentID string                          `gorm:"size:36;index" json:"departmentId"`
	Tags         datatypes.JSONSlice[string]     `json:"tags"`
	Attachments  datatypes.JSONSlice[Attachment] `json:"attachments"`

	UserID           string     `gorm:"size:36;not null;index" json:"userId"`
	CreatedByID      string     `gorm:"size:36;not null" json:"createdById"`
	IsEscalated      bool       `gorm:"not null;default:false" json:"isEscalated"`
	OriginalUserID   *string    `gorm:"size:36;index" json:"originalUserId"`
	EscalatedToID    *string    `gorm:"size:36" json:"escalatedToId"`
	EscalatedByID    *string    `gorm:"size:36" json:"escalatedById"`
	EscalatedAt      *time.Time `json:"escalatedAt"`
	EscalationReason *string    `gorm:"type:text" json:"escalationReason"`
	ClosedAt         *time.Time `json:"closedAt"`

	Version   uint      `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *Task) IsClosed() bool {
	return t.Status == constants.StatusClosed
}

// AccountableUserID is the owner a task is attributed to for reporting:
// the pre-escalation owner while escalated, the current owner otherwise.
func (t *Task) AccountableUserID() string {
	if t.OriginalUserID != nil {
		return *t.OriginalUserID
	}
	return t.UserID
}

// CheckInvariants verifies the ownership and lifecycle invariants every
// committed task must satisfy.
func (t *Task) CheckInvariants() error {
	if (t.ClosedAt != nil) != t.IsClosed() {
		return fmt.Errorf("task %s: closedAt set=%t with status %s", t.ID, t.ClosedAt != nil, t.Status)
	}

	complete := t.EscalatedToID != nil && t.EscalatedByID != nil && t.EscalatedAt != nil && t.OriginalUserID != nil
	if t.IsEscalated != complete {
		return fmt.Errorf("task %s: isEscalated=%t but escalation attributes complete=%t", t.ID, t.IsEscalated, complete)
	}
	if !t.IsEscalated && (t.OriginalUserID != nil || t.EscalatedToID != nil || t.EscalatedByID != nil || t.EscalatedAt != nil || t.EscalationReason != nil) {
		return fmt.Errorf("task %s: unescalated task carries escalation attributes", t.ID)
	}

	if t.OriginalUserID != nil && *t.OriginalUserID == t.UserID {
		return fmt.Errorf("task %s: originalUserId equals userId", t.ID)
	}

	return nil
}
