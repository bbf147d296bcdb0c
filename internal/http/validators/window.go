package validators

import (
	"strconv"

	"github.com/labstack/echo/v4"

	dto "task-kpi-system.com/task-kpi-system/internal/data_models"
	apperrors "task-kpi-system.com/task-kpi-system/internal/errors"
	"task-kpi-system.com/task-kpi-system/internal/services"
)

// WindowFromQuery reads the year, month, dateFrom and dateTo query
// parameters. Combination rules are checked by services.Window.
func WindowFromQuery(c echo.Context) (services.Window, error) {
	var w services.Window

	if v := c.QueryParam("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return w, apperrors.ErrInvalidWindow.Withf("year must be a number")
		}
		w.Year = &year
	}
	if v := c.QueryParam("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil {
			return w, apperrors.ErrInvalidWindow.Withf("month must be a number")
		}
		w.Month = &month
	}
	if v := c.QueryParam("dateFrom"); v != "" {
		from, err := dto.ParseDate(v)
		if err != nil {
			return w, apperrors.ErrInvalidWindow.Withf("dateFrom: %v", err)
		}
		w.DateFrom = &from
	}
	if v := c.QueryParam("dateTo"); v != "" {
		to, err := dto.ParseDate(v)
		if err != nil {
			return w, apperrors.ErrInvalidWindow.Withf("dateTo: %v", err)
		}
		w.DateTo = &to
	}

	if _, err := w.Range(); err != nil {
		return w, err
	}
	return w, nil
}
