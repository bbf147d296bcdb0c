package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"task-kpi-system.com/task-kpi-system/internal/auth"
	config "task-kpi-system.com/task-kpi-system/internal/configs"
	httpapi "task-kpi-system.com/task-kpi-system/internal/http"
	"task-kpi-system.com/task-kpi-system/internal/metrics"
	"task-kpi-system.com/task-kpi-system/internal/notifier"
	"task-kpi-system.com/task-kpi-system/internal/pubsub"
	repository "task-kpi-system.com/task-kpi-system/internal/repositories"
	"task-kpi-system.com/task-kpi-system/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the task HTTP API, the KPI endpoints and the live event stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		authManager, err := auth.NewManager(cfg.JWTSecret)
		if err != nil {
			return fmt.Errorf("JWT_SECRET: %w", err)
		}

		database, err := config.NewDatabase(cfg.DatabaseDSN)
		if err != nil {
			return err
		}

		transport, err := newTransport()
		if err != nil {
			return err
		}

		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := metrics.New(registry)

		users := repository.NewUserRepository(database)
		hub := notifier.NewHub(transport, m, logger)
		taskService := services.NewTaskService(
			repository.NewTaskRepository(database),
			users,
			notifier.NewNotifier(transport, m, logger),
			m,
			logger,
		)
		kpiService := services.NewKPIService(repository.NewKPIRepository(database), users, m)

		e := echo.New()
		e.HideBanner = true
		e.HidePort = true
		httpapi.Register(e, httpapi.NewHandler(taskService, kpiService, hub), authManager, cfg.RateLimit, registry, logger)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		go func() {
			logger.Info("HTTP server listening", "addr", cfg.AppURL(), "transport", cfg.NotifyTransport)
			if err := e.Start(cfg.AppURL()); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server stopped", "error", err)
				stop()
			}
		}()

		<-ctx.Done()

		// Streams block Shutdown until they end, so the hub goes first.
		hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown", "error", err)
		}
		if err := transport.Close(); err != nil {
			logger.Error("transport close", "error", err)
		}

		logger.Info("HTTP server and event hub shut down gracefully")
		return nil
	},
}

func newTransport() (pubsub.Transport, error) {
	if cfg.NotifyTransport != config.TransportRedis {
		return pubsub.NewMemoryTransport(), nil
	}

	client, err := config.NewRedisClient(cfg.RedisAddr())
	if err != nil {
		return nil, err
	}
	return pubsub.NewRedisTransport(client), nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
