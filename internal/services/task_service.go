package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"task-kpi-system.com/task-kpi-system/internal/constants"
	apperrors "task-kpi-system.com/task-kpi-system/internal/errors"
	"task-kpi-system.com/task-kpi-system/internal/metrics"
	model "task-kpi-system.com/task-kpi-system/internal/models"
	repository "task-kpi-system.com/task-kpi-system/internal/repositories"
)

// Publisher announces committed task mutations to connected observers.
type Publisher interface {
	Publish(ctx context.Context, event constants.EventName, task *model.Task) error
	PublishDeleted(ctx context.Context, task *model.Task) error
}

// TaskService owns every mutation of a task. Transitions on one task are
// serialized in-process and committed with a version check, so a write
// that lost a race against another process fails with ErrConflict instead
// of overwriting it. Events are published after the commit while the task
// is still locked, which keeps per-task event order equal to commit order.
type TaskService struct {
	repo      *repository.TaskRepository
	users     *repository.UserRepository
	publisher Publisher
	locks     *taskLocks
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

type CreateTaskInput struct {
	Description  string
	ExternalID   *string
	Remarks      string
	Date         time.Time
	DepartmentID string
	Tags         []string
	Attachments  []model.Attachment
	// UserID assigns the task to another user. Empty means the caller.
	UserID string
}

// UpdateTaskInput is a partial update; nil fields are left unchanged.
type UpdateTaskInput struct {
	Description  *string
	ExternalID   *string
	Remarks      *string
	Date         *time.Time
	DepartmentID *string
	Tags         *[]string
	Attachments  *[]model.Attachment
}

func NewTaskService(
	repo *repository.TaskRepository,
	users *repository.UserRepository,
	publisher Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		repo:      repo,
		users:     users,
		publisher: publisher,
		locks:     newTaskLocks(),
		metrics:   m,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *TaskService) GetTask(ctx context.Context, id string) (*model.Task, error) {
	if id == "" {
		return nil, apperrors.ErrTaskIDRequired
	}
	return s.repo.FindByID(ctx, id)
}

func (s *TaskService) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]model.Task, error) {
	return s.repo.Query(ctx, filter)
}

func (s *TaskService) CreateTask(ctx context.Context, actor model.Identity, in CreateTaskInput) (*model.Task, error) {
	task, err := s.createTask(ctx, actor, in)
	s.record("create", err)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, constants.EventTaskCreated, task)
	s.logger.Info("task created", "task_id", task.ID, "user_id", task.UserID, "created_by", task.CreatedByID)
	return task, nil
}

func (s *TaskService) createTask(ctx context.Context, actor model.Identity, in CreateTaskInput) (*model.Task, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, apperrors.ErrValidation.Withf("description is required")
	}

	ownerID := in.UserID
	if ownerID == "" {
		ownerID = actor.UserID
	}
	if ownerID != actor.UserID && !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden.Withf("only administrators may create tasks for other users")
	}

	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	date := in.Date
	if date.IsZero() {
		date = s.now()
	}
	departmentID := in.DepartmentID
	if departmentID == "" {
		departmentID = owner.DepartmentID
	}

	task := &model.Task{
		Description:  in.Description,
		ExternalID:   in.ExternalID,
		Remarks:      in.Remarks,
		Status:       constants.StatusInProgress,
		Date:         truncateDay(date),
		DepartmentID: departmentID,
		Tags:         in.Tags,
		Attachments:  in.Attachments,
		UserID:       owner.ID,
		CreatedByID:  actor.UserID,
	}
	if err := task.CheckInvariants(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, id string, actor model.Identity, in UpdateTaskInput) (*model.Task, error) {
	if in.Description != nil && strings.TrimSpace(*in.Description) == "" {
		return nil, apperrors.ErrValidation.Withf("description must not be empty")
	}

	return s.mutate(ctx, "update", id, constants.EventTaskUpdated, func(task *model.Task) error {
		if !canModify(actor, task) {
			return apperrors.ErrForbidden
		}

		if in.Description != nil {
			task.Description = *in.Description
		}
		if in.ExternalID != nil {
			if *in.ExternalID == "" {
				task.ExternalID = nil
			} else {
				externalID := *in.ExternalID
				task.ExternalID = &externalID
			}
		}
		if in.Remarks != nil {
			task.Remarks = *in.Remarks
		}
		if in.Date != nil {
			task.Date = truncateDay(*in.Date)
		}
		if in.DepartmentID != nil {
			task.DepartmentID = *in.DepartmentID
		}
		if in.Tags != nil {
			task.Tags = *in.Tags
		}
		if in.Attachments != nil {
			task.Attachments = *in.Attachments
		}
		return nil
	})
}

// UpdateStatus moves a task to status. Closing is the only legal change:
// closed is terminal and an open task is already in progress.
func (s *TaskService) UpdateStatus(ctx context.Context, id string, actor model.Identity, status constants.TaskStatus) (*model.Task, error) {
	if !status.Valid() {
		return nil, apperrors.ErrValidation.Withf("unknown status %q", status)
	}

	return s.mutate(ctx, "update_status", id, constants.EventTaskStatusUpdated, func(task *model.Task) error {
		if !canModify(actor, task) {
			return apperrors.ErrForbidden
		}
		if status == constants.StatusClosed {
			return s.closeTask(task)
		}
		if task.IsClosed() {
			return apperrors.ErrInvalidState.Withf("task %s is closed and cannot be reopened", task.ID)
		}
		return apperrors.ErrInvalidState.Withf("task %s is already %s", task.ID, status)
	})
}

// CloseTask closes a task. Escalation attributes are kept as they are so
// the task stays attributed for reporting.
func (s *TaskService) CloseTask(ctx context.Context, id string, actor model.Identity) (*model.Task, error) {
	return s.mutate(ctx, "close", id, constants.EventTaskStatusUpdated, func(task *model.Task) error {
		if !canModify(actor, task) {
			return apperrors.ErrForbidden
		}
		return s.closeTask(task)
	})
}

func (s *TaskService) closeTask(task *model.Task) error {
	if task.IsClosed() {
		return apperrors.ErrInvalidState.Withf("task %s is already closed", task.ID)
	}
	closedAt := s.now()
	task.Status = constants.StatusClosed
	task.ClosedAt = &closedAt
	return nil
}

// EscalateTask delegates a task to targetUserID. The owner displaced by the
// first escalation is remembered as the original owner; re-escalating to
// another delegate keeps it.
func (s *TaskService) EscalateTask(ctx context.Context, id string, actor model.Identity, targetUserID, reason string) (*model.Task, error) {
	if targetUserID == "" {
		return nil, apperrors.ErrValidation.Withf("targetUserId is required")
	}

	return s.mutate(ctx, "escalate", id, constants.EventTaskEscalated, func(task *model.Task) error {
		if !canModify(actor, task) {
			return apperrors.ErrForbidden
		}
		if task.IsClosed() {
			return apperrors.ErrTaskClosed.Withf("task %s is closed", task.ID)
		}
		if targetUserID == task.UserID {
			return apperrors.ErrInvalidState.Withf("task %s is already owned by %s", task.ID, targetUserID)
		}
		if task.IsEscalated && *task.OriginalUserID == targetUserID {
			return apperrors.ErrInvalidState.Withf("%s is the original owner of task %s; roll back instead", targetUserID, task.ID)
		}
		if _, err := s.users.FindByID(ctx, targetUserID); err != nil {
			return err
		}

		if !task.IsEscalated {
			originalUserID := task.UserID
			task.OriginalUserID = &originalUserID
		}

		now := s.now()
		escalatedBy := actor.UserID
		escalatedTo := targetUserID
		escalationReason := reason

		task.IsEscalated = true
		task.EscalatedByID = &escalatedBy
		task.EscalatedToID = &escalatedTo
		task.EscalatedAt = &now
		task.EscalationReason = &escalationReason
		task.UserID = targetUserID
		return nil
	})
}

// RollbackTask returns an escalated task to its original owner and clears
// the escalation.
func (s *TaskService) RollbackTask(ctx context.Context, id string, actor model.Identity) (*model.Task, error) {
	return s.mutate(ctx, "rollback", id, constants.EventTaskRollback, func(task *model.Task) error {
		if !canRollback(actor, task) {
			return apperrors.ErrForbidden
		}
		if task.IsClosed() {
			return apperrors.ErrTaskClosed.Withf("task %s is closed", task.ID)
		}
		if !task.IsEscalated {
			return apperrors.ErrNotEscalated.Withf("task %s is not escalated", task.ID)
		}

		task.UserID = *task.OriginalUserID
		task.IsEscalated = false
		task.OriginalUserID = nil
		task.EscalatedToID = nil
		task.EscalatedByID = nil
		task.EscalatedAt = nil
		task.EscalationReason = nil
		return nil
	})
}

// DeleteTask hard-deletes a task. Administrators only.
func (s *TaskService) DeleteTask(ctx context.Context, id string, actor model.Identity) error {
	if id == "" {
		return apperrors.ErrTaskIDRequired
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	err := s.deleteTask(ctx, id, actor)
	s.record("delete", err)
	return err
}

func (s *TaskService) deleteTask(ctx context.Context, id string, actor model.Identity) error {
	if !actor.IsAdmin() {
		return apperrors.ErrForbidden.Withf("only administrators may delete tasks")
	}

	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.publisher.PublishDeleted(context.WithoutCancel(ctx), task); err != nil {
		s.logger.Error("failed to publish task event", "event", constants.EventTaskDeleted, "task_id", id, "error", err)
	}
	s.logger.Info("task deleted", "task_id", id, "deleted_by", actor.UserID)
	return nil
}

// mutate loads the task under its lock, applies fn and commits the result.
// If fn fails nothing is written.
func (s *TaskService) mutate(
	ctx context.Context,
	op string,
	id string,
	event constants.EventName,
	fn func(task *model.Task) error,
) (*model.Task, error) {
	if id == "" {
		return nil, apperrors.ErrTaskIDRequired
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	task, err := s.apply(ctx, id, fn)
	s.record(op, err)
	if err != nil {
		s.logger.Debug("task transition rejected", "operation", op, "task_id", id, "error", err)
		return nil, err
	}

	s.publish(ctx, event, task)
	s.logger.Info("task transition committed",
		"operation", op,
		"task_id", task.ID,
		"user_id", task.UserID,
		"status", task.Status,
		"escalated", task.IsEscalated)

	return task, nil
}

func (s *TaskService) apply(ctx context.Context, id string, fn func(task *model.Task) error) (*model.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(task); err != nil {
		return nil, err
	}
	if err := task.CheckInvariants(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// publish runs after the commit. The caller may already have gone away,
// so cancellation is detached; a failed publish is logged, not returned.
func (s *TaskService) publish(ctx context.Context, event constants.EventName, task *model.Task) {
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event, task); err != nil {
		s.logger.Error("failed to publish task event", "event", event, "task_id", task.ID, "error", err)
	}
}

func (s *TaskService) record(op string, err error) {
	if err == nil {
		s.metrics.Transition(op, "ok")
		return
	}
	s.metrics.Transition(op, apperrors.Code(err))
}

func canModify(actor model.Identity, task *model.Task) bool {
	return actor.IsAdmin() || actor.UserID == task.UserID
}

func canRollback(actor model.Identity, task *model.Task) bool {
	if canModify(actor, task) {
		return true
	}
	if task.OriginalUserID != nil && *task.OriginalUserID == actor.UserID {
		return true
	}
	return task.EscalatedByID != nil && *task.EscalatedByID == actor.UserID
}
