package report

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"usagereport/backend/models"
)

type Option struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// FilterOptions feeds the report's filter form.
type FilterOptions struct {
	Roles           []Option `json:"roles"`
	Sections        []Option `json:"sections"`
	GradeCategories []Option `json:"grade_categories"`
}

func (s *Service) FilterOptions(ctx context.Context, courseID uint) (*FilterOptions, error) {
	chain, err := s.queries.CourseContextChain(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var opts FilterOptions
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		roles, err := s.queries.RolesInContexts(gctx, chain)
		opts.Roles = roles
		return err
	})
	g.Go(func() error {
		sections, err := s.queries.Sections(gctx, courseID)
		opts.Sections = sections
		return err
	})
	g.Go(func() error {
		cats, err := s.queries.GradeCategories(gctx, courseID)
		opts.GradeCategories = cats
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &opts, nil
}

// RolesInContexts lists the distinct roles assigned in any of the contexts.
func (q *Queries) RolesInContexts(ctx context.Context, contextIDs []uint) ([]Option, error) {
	opts := []Option{}
	if len(contextIDs) == 0 {
		return opts, nil
	}
	err := q.db.WithContext(ctx).
		Table("role_assignments ra").
		Select("DISTINCT r.id AS id, r.short_name AS name").
		Joins("JOIN roles r ON r.id = ra.role_id").
		Where("ra.context_id IN ?", contextIDs).
		Order("r.id").
		Scan(&opts).Error
	if err != nil {
		return nil, fmt.Errorf("roles in course: %w", err)
	}
	return opts, nil
}

func (q *Queries) Sections(ctx context.Context, courseID uint) ([]Option, error) {
	var sections []models.Section
	if err := q.db.WithContext(ctx).Where("course_id = ?", courseID).Order("number").Find(&sections).Error; err != nil {
		return nil, fmt.Errorf("sections in course: %w", err)
	}
	opts := make([]Option, 0, len(sections))
	for _, s := range sections {
		opts = append(opts, Option{ID: s.ID, Name: s.DisplayName()})
	}
	return opts, nil
}

func (q *Queries) GradeCategories(ctx context.Context, courseID uint) ([]Option, error) {
	var cats []models.GradeCategory
	if err := q.db.WithContext(ctx).Where("course_id = ?", courseID).Order("id").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("grade categories in course: %w", err)
	}
	opts := make([]Option, 0, len(cats))
	for _, c := range cats {
		opts = append(opts, Option{ID: c.ID, Name: c.Name})
	}
	return opts, nil
}
