package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	apperrors "task-kpi-system.com/task-kpi-system/internal/errors"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "category error", err: apperrors.ErrTaskNotFound, wantStatus: http.StatusNotFound, wantCode: "not_found"},
		{name: "wrapped category error", err: fmt.Errorf("escalate: %w", apperrors.ErrConflict), wantStatus: http.StatusConflict, wantCode: "conflict"},
		{name: "echo error", err: echo.NewHTTPError(http.StatusServiceUnavailable, "shutting down"), wantStatus: http.StatusServiceUnavailable, wantCode: "http"},
		{name: "unknown error", err: errors.New("disk full"), wantStatus: http.StatusInternalServerError, wantCode: "internal"},
	}

	handler := ErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	e := echo.New()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			handler(tt.err, c)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, body.Error)
			}
			if tt.wantCode == "internal" && body.Message != "internal server error" {
				t.Errorf("expected internal details to be hidden, got %q", body.Message)
			}
		})
	}
}
