package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	"task-kpi-system.com/task-kpi-system/internal/constants"
)

const ownerExpr = "COALESCE(original_user_id, user_id)"

// OwnerCounts is one row of the KPI aggregate, keyed by accountable owner.
type OwnerCounts struct {
	OwnerID   string `gorm:"column:owner_id"`
	Total     int64  `gorm:"column:total"`
	Closed    int64  `gorm:"column:closed"`
	Open      int64  `gorm:"column:open"`
	Pending   int64  `gorm:"column:pending"`
	Escalated int64  `gorm:"column:escalated"`
}

type KPIRepository struct {
	db      *gorm.DB
	builder sq.StatementBuilderType
}

func NewKPIRepository(db *gorm.DB) *KPIRepository {
	return &KPIRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

// CountByOwner aggregates task counters per accountable owner inside rng.
// An empty ownerID aggregates every owner.
func (r *KPIRepository) CountByOwner(ctx context.Context, ownerID string, rng DateRange) ([]OwnerCounts, error) {
	query := r.builder.
		Select(ownerExpr+" AS owner_id", "COUNT(*) AS total").
		Column(sq.Expr("SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS closed", constants.StatusClosed)).
		Column(sq.Expr("SUM(CASE WHEN status = ? AND is_escalated = ? THEN 1 ELSE 0 END) AS open", constants.StatusInProgress, false)).
		Column(sq.Expr("SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS pending", constants.StatusInProgress)).
		Column(sq.Expr("SUM(CASE WHEN is_escalated = ? THEN 1 ELSE 0 END) AS escalated", true)).
		From("tasks").
		GroupBy(ownerExpr)

	if ownerID != "" {
		query = query.Where(sq.Expr(ownerExpr+" = ?", ownerID))
	}
	if rng.From != nil {
		query = query.Where(sq.GtOrEq{"date": *rng.From})
	}
	if rng.To != nil {
		query = query.Where(sq.Lt{"date": *rng.To})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []OwnerCounts
	if err := r.db.WithContext(ctx).Raw(stmt, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
