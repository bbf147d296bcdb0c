package validators

import (
	"strings"

	"task-kpi-system.com/task-kpi-system/internal/constants"
	dto "task-kpi-system.com/task-kpi-system/internal/data_models"
	apperrors "task-kpi-system.com/task-kpi-system/internal/errors"
)

func ValidateCreateTaskRequest(r *dto.CreateTaskRequest) error {
	if strings.TrimSpace(r.Description) == "" {
		return apperrors.ErrValidation.Withf("description is required")
	}
	return validateTags(r.Tags)
}

func ValidateUpdateTaskRequest(r *dto.UpdateTaskRequest) error {
	if r.Description != nil && strings.TrimSpace(*r.Description) == "" {
		return apperrors.ErrValidation.Withf("description must not be empty")
	}
	if r.Tags != nil {
		return validateTags(*r.Tags)
	}
	return nil
}

func ValidateUpdateStatusRequest(r *dto.UpdateStatusRequest) error {
	if !constants.TaskStatus(r.Status).Valid() {
		return apperrors.ErrValidation.Withf("status must be %q or %q", constants.StatusInProgress, constants.StatusClosed)
	}
	return nil
}

func ValidateEscalateTaskRequest(r *dto.EscalateTaskRequest) error {
	if r.TargetUserID.ID == "" {
		return apperrors.ErrValidation.Withf("targetUserId is required")
	}
	return nil
}

func validateTags(tags []string) error {
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return apperrors.ErrValidation.Withf("tags must not be empty")
		}
	}
	return nil
}
