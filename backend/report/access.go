package report

import (
	"context"
	"fmt"

	"usagereport/backend/models"
)

// Access decides who may see a course's usage report. Platform admins
// always can; everybody else needs one of the configured roles in the
// course context or one of its parents.
type Access struct {
	queries          *Queries
	viewerRoles      []string
	deanonymizeRoles []string
}

func NewAccess(queries *Queries, viewerRoles, deanonymizeRoles []string) *Access {
	return &Access{
		queries:          queries,
		viewerRoles:      viewerRoles,
		deanonymizeRoles: deanonymizeRoles,
	}
}

func (a *Access) CanView(ctx context.Context, user *models.User, courseID uint) (bool, error) {
	return a.allowed(ctx, user, courseID, a.viewerRoles)
}

// CanDeanonymize reports whether user may see per-user rows.
func (a *Access) CanDeanonymize(ctx context.Context, user *models.User, courseID uint) (bool, error) {
	return a.allowed(ctx, user, courseID, a.deanonymizeRoles)
}

func (a *Access) allowed(ctx context.Context, user *models.User, courseID uint, roles []string) (bool, error) {
	if user == nil {
		return false, nil
	}
	chain, err := a.queries.CourseContextChain(ctx, courseID)
	if err != nil {
		return false, err
	}
	if user.IsAdmin() {
		return true, nil
	}
	if len(roles) == 0 {
		return false, nil
	}

	var count int64
	err = a.queries.db.WithContext(ctx).
		Table("role_assignments ra").
		Joins("JOIN roles r ON r.id = ra.role_id").
		Where("ra.user_id = ? AND ra.context_id IN ? AND r.short_name IN ?", user.ID, chain, roles).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check report access: %w", err)
	}
	return count > 0, nil
}
