package report

import (
	"context"
	"fmt"
	"time"
)

// RecentActivity is the lightweight overview of the last days of a
// course: per context, a sparse map of day offset to summed amount.
type RecentActivity struct {
	CourseID  uint                   `json:"course_id"`
	Since     time.Time              `json:"since"`
	Contexts  map[uint]map[int]int64 `json:"contexts"`
	MaxAmount int64                  `json:"max_amount"`
}

// Recent sums usage since the date days before now. Offsets count from
// that date.
func (s *Service) Recent(ctx context.Context, courseID uint, days int, now time.Time) (*RecentActivity, error) {
	if days < 1 {
		return nil, fmt.Errorf("%w: %d days", ErrInvalidWindow, days)
	}
	if _, err := s.queries.CourseContext(ctx, courseID); err != nil {
		return nil, err
	}

	since := midnight(now.AddDate(0, 0, -days), now.Location())

	var rows []UsageRow
	err := s.queries.db.WithContext(ctx).
		Table("usage_logs ul").
		Select(`ul.context_id AS context_id, ul.year_created AS usage_year, ul.month_created AS usage_month,
			ul.day_created AS usage_day, CAST(SUM(ul.amount) AS BIGINT) AS amount`).
		Where("ul.course_id = ? AND "+dateKeyExpr+" >= ?", courseID, DateKey(since)).
		Group("ul.context_id, ul.year_created, ul.month_created, ul.day_created").
		Order("ul.context_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query recent usage: %w", err)
	}

	activity := &RecentActivity{
		CourseID: courseID,
		Since:    since,
		Contexts: make(map[uint]map[int]int64),
	}
	for _, row := range rows {
		if row.Amount > activity.MaxAmount {
			activity.MaxAmount = row.Amount
		}
		perDay, ok := activity.Contexts[row.ContextID]
		if !ok {
			perDay = make(map[int]int64)
			activity.Contexts[row.ContextID] = perDay
		}
		perDay[DayOffset(since, row.Year, row.Month, row.Day)] = row.Amount
	}
	return activity, nil
}
