package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"task-kpi-system.com/task-kpi-system/internal/constants"
	dto "task-kpi-system.com/task-kpi-system/internal/data_models"
	apperrors "task-kpi-system.com/task-kpi-system/internal/errors"
	middleware "task-kpi-system.com/task-kpi-system/internal/http/middlewares"
	"task-kpi-system.com/task-kpi-system/internal/http/validators"
	model "task-kpi-system.com/task-kpi-system/internal/models"
	"task-kpi-system.com/task-kpi-system/internal/notifier"
	repository "task-kpi-system.com/task-kpi-system/internal/repositories"
	"task-kpi-system.com/task-kpi-system/internal/services"
)

type Handler struct {
	taskService *services.TaskService
	kpiService  *services.KPIService
	hub         *notifier.Hub
}

func NewHandler(taskService *services.TaskService, kpiService *services.KPIService, hub *notifier.Hub) *Handler {
	return &Handler{
		taskService: taskService,
		kpiService:  kpiService,
		hub:         hub,
	}
}

func identity(c echo.Context) (model.Identity, error) {
	id, ok := middleware.Identity(c)
	if !ok {
		return model.Identity{}, apperrors.ErrUnauthorized
	}
	return id, nil
}

func (h *Handler) CreateTask(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}

	var req dto.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ErrInvalidJSON
	}
	if err := validators.ValidateCreateTaskRequest(&req); err != nil {
		return err
	}

	in := services.CreateTaskInput{
		Description:  req.Description,
		ExternalID:   req.ExternalID,
		Remarks:      req.Remarks,
		DepartmentID: req.DepartmentID,
		Tags:         req.Tags,
		Attachments:  req.Attachments,
		UserID:       req.UserID.ID,
	}
	if req.Date != nil {
		in.Date = req.Date.Time
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), actor, in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) GetTask(c echo.Context) error {
	task, err := h.taskService.GetTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) ListTasks(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}

	window, err := validators.WindowFromQuery(c)
	if err != nil {
		return err
	}
	rng, err := window.Range()
	if err != nil {
		return err
	}

	filter := repository.TaskFilter{
		OwnerID: c.QueryParam("ownerId"),
		UserID:  c.QueryParam("userId"),
		Status:  constants.TaskStatus(c.QueryParam("status")),
		Range:   rng,
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return apperrors.ErrValidation.Withf("unknown status %q", filter.Status)
	}
	if v := c.QueryParam("escalated"); v != "" {
		escalated, err := strconv.ParseBool(v)
		if err != nil {
			return apperrors.ErrValidation.Withf("escalated must be true or false")
		}
		filter.Escalated = &escalated
	}
	// ownerId selects tasks attributed to a user, escalated ones included;
	// userId selects the current assignee.
	if !actor.IsAdmin() {
		if (filter.UserID != "" && filter.UserID != actor.UserID) ||
			(filter.OwnerID != "" && filter.OwnerID != actor.UserID) {
			return apperrors.ErrForbidden.Withf("only administrators may list other users' tasks")
		}
		if filter.OwnerID == "" {
			filter.UserID = actor.UserID
		}
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count": len(tasks),
		"tasks": tasks,
	})
}

func (h *Handler) UpdateTask(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}

	var req dto.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ErrInvalidJSON
	}
	if err := validators.ValidateUpdateTaskRequest(&req); err != nil {
		return err
	}

	in := services.UpdateTaskInput{
		Description:  req.Description,
		ExternalID:   req.ExternalID,
		Remarks:      req.Remarks,
		DepartmentID: req.DepartmentID,
		Tags:         req.Tags,
		Attachments:  req.Attachments,
	}
	if req.Date != nil {
		in.Date = &req.Date.Time
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), c.Param("id"), actor, in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}

	var req dto.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ErrInvalidJSON
	}
	if err := validators.ValidateUpdateStatusRequest(&req); err != nil {
		return err
	}

	task, err := h.taskService.UpdateStatus(c.Request().Context(), c.Param("id"), actor, constants.TaskStatus(req.Status))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) CloseTask(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.CloseTask(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) EscalateTask(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}

	var req dto.EscalateTaskRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ErrInvalidJSON
	}
	if err := validators.ValidateEscalateTaskRequest(&req); err != nil {
		return err
	}

	task, err := h.taskService.EscalateTask(c.Request().Context(), c.Param("id"), actor, req.TargetUserID.ID, req.Reason)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) RollbackTask(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.RollbackTask(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), c.Param("id"), actor); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) MyKPI(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	return h.userKPI(c, actor.UserID)
}

func (h *Handler) UserKPI(c echo.Context) error {
	return h.userKPI(c, c.Param("id"))
}

func (h *Handler) userKPI(c echo.Context, userID string) error {
	window, err := validators.WindowFromQuery(c)
	if err != nil {
		return err
	}

	snapshot, err := h.kpiService.GetUserKPI(c.Request().Context(), userID, window)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, snapshot)
}

func (h *Handler) AllUsersKPI(c echo.Context) error {
	window, err := validators.WindowFromQuery(c)
	if err != nil {
		return err
	}

	snapshots, err := h.kpiService.GetAllUsersKPI(c.Request().Context(), window)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count": len(snapshots),
		"users": snapshots,
	})
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
