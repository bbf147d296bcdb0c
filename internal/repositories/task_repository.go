package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"task-kpi-system.com/task-kpi-system/internal/constants"
	apperrors "task-kpi-system.com/task-kpi-system/internal/errors"
	model "task-kpi-system.com/task-kpi-system/internal/models"
)

type TaskRepository struct {
	db *gorm.DB
}

// DateRange bounds the work date of a task. From is inclusive, To is
// exclusive; a nil bound is open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

type TaskFilter struct {
	// OwnerID matches the accountable owner: the original owner of an
	// escalated task, the current owner otherwise.
	OwnerID   string
	UserID    string
	Status    constants.TaskStatus
	Escalated *bool
	Range     DateRange
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	now := time.Now().UTC()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.Version = 1
	task.CreatedAt = now
	task.UpdatedAt = now

	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound.Withf("task %s not found", id)
		}
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Query(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	query := r.db.WithContext(ctx).Model(&model.Task{})

	if filter.OwnerID != "" {
		query = query.Where("COALESCE(original_user_id, user_id) = ?", filter.OwnerID)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Escalated != nil {
		query = query.Where("is_escalated = ?", *filter.Escalated)
	}
	if filter.Range.From != nil {
		query = query.Where("date >= ?", *filter.Range.From)
	}
	if filter.Range.To != nil {
		query = query.Where("date < ?", *filter.Range.To)
	}

	var tasks []model.Task
	err := query.Order("date desc").Order("created_at desc").Find(&tasks).Error
	return tasks, err
}

// Update writes task if its version still matches the stored row and bumps
// the version. A mismatch means another writer committed first.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	now := time.Now().UTC()

	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND version = ?", task.ID, task.Version).
		Updates(map[string]interface{}{
			"description":       task.Description,
			"external_id":       task.ExternalID,
			"remarks":           task.Remarks,
			"status":            task.Status,
			"date":              task.Date,
			"department_id":     task.DepartmentID,
			"tags":              task.Tags,
			"attachments":       task.Attachments,
			"user_id":           task.UserID,
			"is_escalated":      task.IsEscalated,
			"original_user_id":  task.OriginalUserID,
			"escalated_to_id":   task.EscalatedToID,
			"escalated_by_id":   task.EscalatedByID,
			"escalated_at":      task.EscalatedAt,
			"escalation_reason": task.EscalationReason,
			"closed_at":         task.ClosedAt,
			"updated_at":        now,
			"version":           gorm.Expr("version + 1"),
		})

	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, task.ID); err != nil {
			return err
		}
		return apperrors.ErrConflict.Withf("task %s was modified concurrently", task.ID)
	}

	task.Version++
	task.UpdatedAt = now
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTaskNotFound.Withf("task %s not found", id)
	}
	return nil
}
