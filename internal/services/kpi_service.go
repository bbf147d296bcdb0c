package services

import (
	"context"
	"math"
	"sort"

	"task-kpi-system.com/task-kpi-system/internal/metrics"
	repository "task-kpi-system.com/task-kpi-system/internal/repositories"
)

// Snapshot is a computed, unstored KPI aggregate for one user.
type Snapshot struct {
	UserID         string  `json:"userId"`
	UserName       string  `json:"userName"`
	Total          int64   `json:"total"`
	Closed         int64   `json:"closed"`
	Open           int64   `json:"open"`
	Pending        int64   `json:"pending"`
	Escalated      int64   `json:"escalated"`
	CompletionRate float64 `json:"completionRate"`
	PenalizedRate  float64 `json:"penalizedRate"`
}

// KPIService derives completion statistics from task state. It never
// writes and may observe a state that is one transition behind.
//
// Tasks are attributed to their accountable owner: the original owner of
// an escalated task, the current owner otherwise. Escalating a task away
// therefore keeps it in the original owner's totals and counts against
// their penalized rate.
type KPIService struct {
	kpi     *repository.KPIRepository
	users   *repository.UserRepository
	metrics *metrics.Metrics
}

func NewKPIService(kpi *repository.KPIRepository, users *repository.UserRepository, m *metrics.Metrics) *KPIService {
	return &KPIService{
		kpi:     kpi,
		users:   users,
		metrics: m,
	}
}

func (s *KPIService) GetUserKPI(ctx context.Context, userID string, window Window) (*Snapshot, error) {
	rng, err := window.Range()
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.kpi.CountByOwner(ctx, user.ID, rng)
	if err != nil {
		return nil, err
	}
	s.metrics.KPIQuery("user")

	snapshot := Snapshot{UserID: user.ID, UserName: user.Name}
	if len(rows) > 0 {
		snapshot = newSnapshot(rows[0], user.Name)
	}
	return &snapshot, nil
}

// GetAllUsersKPI returns one snapshot per user with at least one attributed
// task in window, ordered by user name.
func (s *KPIService) GetAllUsersKPI(ctx context.Context, window Window) ([]Snapshot, error) {
	rng, err := window.Range()
	if err != nil {
		return nil, err
	}

	rows, err := s.kpi.CountByOwner(ctx, "", rng)
	if err != nil {
		return nil, err
	}
	s.metrics.KPIQuery("all")

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.OwnerID)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	snapshots := make([]Snapshot, 0, len(rows))
	for _, row := range rows {
		snapshots = append(snapshots, newSnapshot(row, users[row.OwnerID].Name))
	}

	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].UserName != snapshots[j].UserName {
			return snapshots[i].UserName < snapshots[j].UserName
		}
		return snapshots[i].UserID < snapshots[j].UserID
	})

	return snapshots, nil
}

func newSnapshot(row repository.OwnerCounts, name string) Snapshot {
	return Snapshot{
		UserID:         row.OwnerID,
		UserName:       name,
		Total:          row.Total,
		Closed:         row.Closed,
		Open:           row.Open,
		Pending:        row.Pending,
		Escalated:      row.Escalated,
		CompletionRate: percentage(row.Closed, row.Total),
		PenalizedRate:  percentage(max(row.Closed-row.Escalated, 0), row.Total),
	}
}

// percentage returns part/total as a percentage rounded to two decimals,
// or 0 when total is 0.
func percentage(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}
