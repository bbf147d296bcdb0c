package http

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"task-kpi-system.com/task-kpi-system/internal/auth"
	middleware "task-kpi-system.com/task-kpi-system/internal/http/middlewares"
)

func Register(
	e *echo.Echo,
	h *Handler,
	authManager *auth.Manager,
	rateLimitPerMinute int,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) {
	e.HTTPErrorHandler = ErrorHandler(logger)

	e.GET("/healthz", h.Healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := e.Group("",
		middleware.Authenticate(authManager),
		middleware.RateLimiter(rateLimitPerMinute, time.Minute),
	)

	api.POST("/tasks", h.CreateTask)
	api.GET("/tasks", h.ListTasks)
	api.GET("/tasks/:id", h.GetTask)
	api.PUT("/tasks/:id", h.UpdateTask)
	api.DELETE("/tasks/:id", h.DeleteTask)
	api.PATCH("/tasks/:id/status", h.UpdateStatus)
	api.POST("/tasks/:id/close", h.CloseTask)
	api.POST("/tasks/:id/escalate", h.EscalateTask)
	api.POST("/tasks/:id/rollback", h.RollbackTask)

	api.GET("/kpi/me", h.MyKPI)
	api.GET("/kpi/users", h.AllUsersKPI)
	api.GET("/kpi/users/:id", h.UserKPI)

	// Long-lived stream, registered without the rate limiter.
	e.GET("/events", h.StreamEvents, middleware.Authenticate(authManager))
}
