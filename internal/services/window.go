package services

import (
	"time"

	apperrors "task-kpi-system.com/task-kpi-system/internal/errors"
	repository "task-kpi-system.com/task-kpi-system/internal/repositories"
)

// Window filters tasks by work date. Year (optionally with Month) and the
// DateFrom/DateTo range are mutually exclusive; the zero Window is all time.
// A Year or Month that is set must be in range, zero included.
type Window struct {
	Year     *int
	Month    *int
	DateFrom *time.Time
	DateTo   *time.Time
}

// Range converts w into a half-open date range on the task work date.
// DateFrom and DateTo are both inclusive days.
func (w Window) Range() (repository.DateRange, error) {
	calendar := w.Year != nil || w.Month != nil
	explicit := w.DateFrom != nil || w.DateTo != nil

	switch {
	case calendar && explicit:
		return repository.DateRange{}, apperrors.ErrInvalidWindow.Withf("year/month and dateFrom/dateTo cannot be combined")
	case calendar:
		return w.calendarRange()
	case explicit:
		return w.explicitRange()
	}
	return repository.DateRange{}, nil
}

func (w Window) calendarRange() (repository.DateRange, error) {
	if w.Year == nil {
		return repository.DateRange{}, apperrors.ErrInvalidWindow.Withf("month requires year")
	}
	if *w.Year < 1 || *w.Year > 9999 {
		return repository.DateRange{}, apperrors.ErrInvalidWindow.Withf("year must be between 1 and 9999")
	}

	if w.Month == nil {
		from := time.Date(*w.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(1, 0, 0)
		return repository.DateRange{From: &from, To: &to}, nil
	}

	if *w.Month < 1 || *w.Month > 12 {
		return repository.DateRange{}, apperrors.ErrInvalidWindow.Withf("month must be between 1 and 12")
	}
	from := time.Date(*w.Year, time.Month(*w.Month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	return repository.DateRange{From: &from, To: &to}, nil
}

func (w Window) explicitRange() (repository.DateRange, error) {
	var rng repository.DateRange

	if w.DateFrom != nil {
		from := truncateDay(*w.DateFrom)
		rng.From = &from
	}
	if w.DateTo != nil {
		to := truncateDay(*w.DateTo).AddDate(0, 0, 1)
		rng.To = &to
	}
	if rng.From != nil && rng.To != nil && !rng.From.Before(*rng.To) {
		return repository.DateRange{}, apperrors.ErrInvalidWindow.Withf("dateFrom must not be after dateTo")
	}

	return rng, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
