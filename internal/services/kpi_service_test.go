package services

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "task-kpi-system.com/task-kpi-system/internal/errors"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func intPtr(v int) *int {
	return &v
}

func TestKPIService_UserScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ids := make([]string, 10)
	for i := range ids {
		ids[i] = f.create(t, alice).ID
	}
	for _, id := range ids[:2] {
		if _, err := f.tasks.EscalateTask(ctx, id, alice, "u2", "overload"); err != nil {
			t.Fatalf("EscalateTask: %v", err)
		}
	}
	if _, err := f.tasks.CloseTask(ctx, ids[0], bob); err != nil {
		t.Fatalf("CloseTask escalated: %v", err)
	}
	for _, id := range ids[2:7] {
		if _, err := f.tasks.CloseTask(ctx, id, alice); err != nil {
			t.Fatalf("CloseTask: %v", err)
		}
	}

	snap, err := f.kpi.GetUserKPI(ctx, "u1", Window{Year: intPtr(2024), Month: intPtr(3)})
	if err != nil {
		t.Fatalf("GetUserKPI: %v", err)
	}

	if snap.Total != 10 || snap.Closed != 6 || snap.Escalated != 2 {
		t.Errorf("unexpected counters: %+v", snap)
	}
	if snap.Open != 3 || snap.Pending != 4 {
		t.Errorf("expected open=3 pending=4, got open=%d pending=%d", snap.Open, snap.Pending)
	}
	if snap.CompletionRate != 60 {
		t.Errorf("expected completionRate 60.00, got %.2f", snap.CompletionRate)
	}
	if snap.PenalizedRate != 40 {
		t.Errorf("expected penalizedRate 40.00, got %.2f", snap.PenalizedRate)
	}
	if snap.UserName != "Alice" {
		t.Errorf("expected user name Alice, got %s", snap.UserName)
	}

	delegate, err := f.kpi.GetUserKPI(ctx, "u2", Window{})
	if err != nil {
		t.Fatalf("GetUserKPI delegate: %v", err)
	}
	if delegate.Total != 0 || delegate.CompletionRate != 0 || delegate.PenalizedRate != 0 {
		t.Errorf("expected empty snapshot for delegate, got %+v", delegate)
	}
}

func TestKPIService_AllUsersOrderedByName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.create(t, carol)
	f.create(t, alice)
	f.create(t, bob)
	if _, err := f.tasks.CreateTask(ctx, alice, CreateTaskInput{Description: "old", Date: *date(2023, 12, 31)}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	all, err := f.kpi.GetAllUsersKPI(ctx, Window{})
	if err != nil {
		t.Fatalf("GetAllUsersKPI: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(all))
	}
	for i, name := range []string{"Alice", "Bob", "Carol"} {
		if all[i].UserName != name {
			t.Errorf("position %d: expected %s, got %s", i, name, all[i].UserName)
		}
	}
	if all[0].Total != 2 {
		t.Errorf("expected Alice to have 2 tasks all-time, got %d", all[0].Total)
	}

	in2024, err := f.kpi.GetAllUsersKPI(ctx, Window{DateFrom: date(2024, 1, 1), DateTo: date(2024, 3, 15)})
	if err != nil {
		t.Fatalf("GetAllUsersKPI: %v", err)
	}
	if len(in2024) != 3 || in2024[0].Total != 1 {
		t.Errorf("expected inclusive range to hold one task per user, got %+v", in2024)
	}

	none, err := f.kpi.GetAllUsersKPI(ctx, Window{Year: intPtr(2022)})
	if err != nil {
		t.Fatalf("GetAllUsersKPI: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no snapshots for 2022, got %d", len(none))
	}
}

func TestKPIService_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.kpi.GetUserKPI(ctx, "ghost", Window{})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	_, err = f.kpi.GetUserKPI(ctx, "u1", Window{Year: intPtr(2024), DateFrom: date(2024, 1, 1)})
	if !errors.Is(err, apperrors.ErrInvalidWindow) {
		t.Errorf("expected invalid window, got %v", err)
	}

	_, err = f.kpi.GetAllUsersKPI(ctx, Window{Month: intPtr(4)})
	if !errors.Is(err, apperrors.ErrInvalidWindow) {
		t.Errorf("expected invalid window, got %v", err)
	}
}

func TestWindow_Range(t *testing.T) {
	tests := []struct {
		name     string
		window   Window
		from, to *time.Time
		invalid  bool
	}{
		{name: "all time", window: Window{}},
		{name: "year", window: Window{Year: intPtr(2024)}, from: date(2024, 1, 1), to: date(2025, 1, 1)},
		{name: "december", window: Window{Year: intPtr(2024), Month: intPtr(12)}, from: date(2024, 12, 1), to: date(2025, 1, 1)},
		{name: "explicit range", window: Window{DateFrom: date(2024, 2, 1), DateTo: date(2024, 2, 29)}, from: date(2024, 2, 1), to: date(2024, 3, 1)},
		{name: "single day", window: Window{DateFrom: date(2024, 2, 1), DateTo: date(2024, 2, 1)}, from: date(2024, 2, 1), to: date(2024, 2, 2)},
		{name: "open ended", window: Window{DateFrom: date(2024, 2, 1)}, from: date(2024, 2, 1)},
		{name: "month without year", window: Window{Month: intPtr(3)}, invalid: true},
		{name: "zero year", window: Window{Year: intPtr(0)}, invalid: true},
		{name: "zero year and month", window: Window{Year: intPtr(0), Month: intPtr(0)}, invalid: true},
		{name: "zero month", window: Window{Year: intPtr(2024), Month: intPtr(0)}, invalid: true},
		{name: "month out of range", window: Window{Year: intPtr(2024), Month: intPtr(13)}, invalid: true},
		{name: "mixed modes", window: Window{Year: intPtr(2024), DateTo: date(2024, 2, 1)}, invalid: true},
		{name: "reversed range", window: Window{DateFrom: date(2024, 3, 1), DateTo: date(2024, 2, 1)}, invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng, err := tt.window.Range()
			if tt.invalid {
				if !errors.Is(err, apperrors.ErrInvalidWindow) {
					t.Fatalf("expected invalid window, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Range: %v", err)
			}
			if !sameBound(rng.From, tt.from) || !sameBound(rng.To, tt.to) {
				t.Errorf("expected [%v, %v), got [%v, %v)", tt.from, tt.to, rng.From, rng.To)
			}
		})
	}
}

func sameBound(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func TestPercentage(t *testing.T) {
	if got := percentage(1, 3); got != 33.33 {
		t.Errorf("expected 33.33, got %v", got)
	}
	if got := percentage(2, 3); got != 66.67 {
		t.Errorf("expected 66.67, got %v", got)
	}
	if got := percentage(5, 0); got != 0 {
		t.Errorf("expected 0 for empty total, got %v", got)
	}
}
