package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	config "task-kpi-system.com/task-kpi-system/internal/configs"
	"task-kpi-system.com/task-kpi-system/internal/constants"
	apperrors "task-kpi-system.com/task-kpi-system/internal/errors"
	model "task-kpi-system.com/task-kpi-system/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := config.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

func newTask(userID string, date time.Time) *model.Task {
	return &model.Task{
		Description: "daily report",
		Status:      constants.StatusInProgress,
		Date:        date,
		UserID:      userID,
		CreatedByID: userID,
		Tags:        []string{"ops"},
	}
}

func TestTaskRepository_CreateAndFind(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	ctx := context.Background()

	task := newTask("u1", day(2024, 3, 1))
	task.Attachments = []model.Attachment{{Name: "log.txt", URL: "/files/log.txt"}}
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.ID == "" {
		t.Fatal("expected generated id")
	}
	if task.Version != 1 {
		t.Errorf("expected version 1, got %d", task.Version)
	}

	got, err := repo.FindByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.UserID != "u1" || got.OriginalUserID != nil {
		t.Errorf("unexpected ownership: user=%s original=%v", got.UserID, got.OriginalUserID)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "ops" {
		t.Errorf("expected tags [ops], got %v", got.Tags)
	}
	if len(got.Attachments) != 1 || got.Attachments[0].Name != "log.txt" {
		t.Errorf("expected one attachment, got %v", got.Attachments)
	}
}

func TestTaskRepository_FindByID_NotFound(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))

	_, err := repo.FindByID(context.Background(), "missing")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTaskRepository_UpdateDetectsStaleVersion(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	ctx := context.Background()

	task := newTask("u1", day(2024, 3, 1))
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, _ := repo.FindByID(ctx, task.ID)
	second, _ := repo.FindByID(ctx, task.ID)

	first.Remarks = "first writer"
	if err := repo.Update(ctx, first); err != nil {
		t.Fatalf("first Update: %v", err)
	}
	if first.Version != 2 {
		t.Errorf("expected version 2, got %d", first.Version)
	}

	second.Remarks = "second writer"
	err := repo.Update(ctx, second)
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	stored, _ := repo.FindByID(ctx, task.ID)
	if stored.Remarks != "first writer" {
		t.Errorf("expected first write to survive, got %q", stored.Remarks)
	}
}

func TestTaskRepository_UpdateClearsNullableFields(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	ctx := context.Background()

	task := newTask("u2", day(2024, 3, 1))
	task.IsEscalated = true
	task.OriginalUserID = ptr("u1")
	task.EscalatedToID = ptr("u2")
	task.EscalatedByID = ptr("u1")
	task.EscalatedAt = ptr(time.Now().UTC())
	task.EscalationReason = ptr("overload")
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create: %v", err)
	}

	task.UserID = "u1"
	task.IsEscalated = false
	task.OriginalUserID = nil
	task.EscalatedToID = nil
	task.EscalatedByID = nil
	task.EscalatedAt = nil
	task.EscalationReason = nil
	if err := repo.Update(ctx, task); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := repo.FindByID(ctx, task.ID)
	if got.OriginalUserID != nil || got.EscalatedToID != nil || got.EscalatedAt != nil || got.EscalationReason != nil {
		t.Errorf("expected escalation attributes cleared, got %+v", got)
	}
	if err := got.CheckInvariants(); err != nil {
		t.Errorf("invariants: %v", err)
	}
}

func TestTaskRepository_DeleteMissing(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))

	err := repo.Delete(context.Background(), "missing")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTaskRepository_QueryFilters(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	ctx := context.Background()

	march := newTask("u1", day(2024, 3, 10))
	april := newTask("u1", day(2024, 4, 2))
	escalated := newTask("u2", day(2024, 3, 15))
	escalated.IsEscalated = true
	escalated.OriginalUserID = ptr("u1")
	escalated.EscalatedToID = ptr("u2")
	escalated.EscalatedByID = ptr("u1")
	escalated.EscalatedAt = ptr(time.Now().UTC())
	other := newTask("u3", day(2024, 3, 20))

	for _, task := range []*model.Task{march, april, escalated, other} {
		if err := repo.Create(ctx, task); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	owned, err := repo.Query(ctx, TaskFilter{OwnerID: "u1"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(owned) != 3 {
		t.Errorf("expected 3 tasks attributed to u1, got %d", len(owned))
	}

	current, _ := repo.Query(ctx, TaskFilter{UserID: "u2"})
	if len(current) != 1 || current[0].ID != escalated.ID {
		t.Errorf("expected only the escalated task for u2, got %d", len(current))
	}

	inMarch, _ := repo.Query(ctx, TaskFilter{Range: DateRange{From: ptr(day(2024, 3, 1)), To: ptr(day(2024, 4, 1))}})
	if len(inMarch) != 3 {
		t.Errorf("expected 3 tasks in March, got %d", len(inMarch))
	}

	onlyEscalated, _ := repo.Query(ctx, TaskFilter{Escalated: ptr(true)})
	if len(onlyEscalated) != 1 {
		t.Errorf("expected 1 escalated task, got %d", len(onlyEscalated))
	}
}

func TestKPIRepository_CountByOwner(t *testing.T) {
	db := setupTestDB(t)
	tasks := NewTaskRepository(db)
	kpi := NewKPIRepository(db)
	ctx := context.Background()

	closedAt := time.Now().UTC()
	seed := []*model.Task{
		newTask("u1", day(2024, 5, 1)),
		newTask("u1", day(2024, 5, 2)),
		newTask("u2", day(2024, 5, 3)),
		newTask("u1", day(2023, 5, 3)),
	}
	seed[1].Status = constants.StatusClosed
	seed[1].ClosedAt = &closedAt
	seed[2].IsEscalated = true
	seed[2].OriginalUserID = ptr("u1")
	seed[2].EscalatedToID = ptr("u2")
	seed[2].EscalatedByID = ptr("u1")
	seed[2].EscalatedAt = ptr(closedAt)

	for _, task := range seed {
		if err := tasks.Create(ctx, task); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	rows, err := kpi.CountByOwner(ctx, "", DateRange{From: ptr(day(2024, 1, 1)), To: ptr(day(2025, 1, 1))})
	if err != nil {
		t.Fatalf("CountByOwner: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected a single owner row, got %d", len(rows))
	}

	row := rows[0]
	if row.OwnerID != "u1" {
		t.Errorf("expected owner u1, got %s", row.OwnerID)
	}
	if row.Total != 3 || row.Closed != 1 || row.Pending != 2 || row.Open != 1 || row.Escalated != 1 {
		t.Errorf("unexpected counters: %+v", row)
	}

	none, err := kpi.CountByOwner(ctx, "u2", DateRange{})
	if err != nil {
		t.Fatalf("CountByOwner: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no rows for delegate-only user, got %+v", none)
	}
}
