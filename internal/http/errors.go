package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "task-kpi-system.com/task-kpi-system/internal/errors"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ErrorHandler renders application errors as {"error": code, "message": ...}
// with the status their category maps to.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := apperrors.StatusCode(err)
		body := errorResponse{Error: apperrors.Code(err), Message: err.Error()}

		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &httpErr):
			status = httpErr.Code
			body = errorResponse{Error: "http", Message: http.StatusText(httpErr.Code)}
			if msg, ok := httpErr.Message.(string); ok {
				body.Message = msg
			}
		case status == http.StatusInternalServerError:
			logger.Error("request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"error", err)
			body.Message = "internal server error"
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error("failed to write error response", "error", err)
		}
	}
}
