package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"usagereport/backend/models"
)

var ErrCourseNotFound = errors.New("course not found")

const dateKeyExpr = "(ul.year_created * 10000 + ul.month_created * 100 + ul.day_created)"

// Filter selects which usage rows feed a report.
type Filter struct {
	CourseID        uint
	Window          Window
	Roles           []uint
	Sections        []uint
	GradeCategories []uint
	// UniqueUsers counts users instead of summing events.
	UniqueUsers bool
	PerUser     bool
}

func (f Filter) CacheKey() string {
	return fmt.Sprintf("c%d|%d-%d|%s|r%v|s%v|g%v|u%t|p%t",
		f.CourseID, f.Window.MinKey(), f.Window.MaxKey(), f.Window.Location(),
		f.Roles, f.Sections, f.GradeCategories, f.UniqueUsers, f.PerUser)
}

// ModuleInfo describes the course module behind a module context.
type ModuleInfo struct {
	ContextID     uint   `json:"context_id"`
	ModuleID      uint   `json:"module_id"`
	Name          string `json:"name"`
	ModType       string `json:"mod_type"`
	SectionNumber int    `json:"section_number"`
	SectionName   string `json:"section_name"`
}

func (m ModuleInfo) SectionLabel() string {
	return models.SectionLabel(m.SectionName, m.SectionNumber)
}

type Queries struct {
	db *gorm.DB
}

func NewQueries(db *gorm.DB) *Queries {
	return &Queries{db: db}
}

func (q *Queries) CourseContext(ctx context.Context, courseID uint) (models.Context, error) {
	var con models.Context
	err := q.db.WithContext(ctx).
		Where("level = ? AND instance_id = ?", models.LevelCourse, courseID).
		First(&con).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Context{}, ErrCourseNotFound
	}
	if err != nil {
		return models.Context{}, fmt.Errorf("load course context: %w", err)
	}
	return con, nil
}

// CourseContextChain returns the course context id and all of its parents.
func (q *Queries) CourseContextChain(ctx context.Context, courseID uint) ([]uint, error) {
	con, err := q.CourseContext(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return con.ParentIDs(true), nil
}

// ModulesInSections returns the module context ids of a course, limited to
// the given sections when any are given.
func (q *Queries) ModulesInSections(ctx context.Context, courseID uint, sectionIDs []uint) ([]uint, error) {
	tx := q.db.WithContext(ctx).
		Table("contexts con").
		Joins("JOIN course_modules cm ON con.instance_id = cm.id").
		Where("cm.course_id = ? AND con.level = ?", courseID, models.LevelModule)
	if len(sectionIDs) > 0 {
		tx = tx.Where("cm.section_id IN ?", sectionIDs)
	}

	var ids []uint
	if err := tx.Order("con.id").Pluck("con.id", &ids).Error; err != nil {
		return nil, fmt.Errorf("modules in sections: %w", err)
	}
	return ids, nil
}

// ModulesInGradeCategories returns the module context ids whose grade item
// belongs to one of the categories.
func (q *Queries) ModulesInGradeCategories(ctx context.Context, categoryIDs []uint) ([]uint, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}

	var ids []uint
	err := q.db.WithContext(ctx).
		Table("grade_items gi").
		Joins("JOIN course_modules cm ON cm.id = gi.module_id").
		Joins("JOIN contexts con ON con.instance_id = cm.id").
		Where("gi.category_id IN ? AND con.level = ?", categoryIDs, models.LevelModule).
		Group("con.id").
		Order("con.id").
		Pluck("con.id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("modules in grade categories: %w", err)
	}
	return ids, nil
}

// UsageRows runs the grouped usage log query for f. An empty result is
// returned without touching the log when no module can match.
func (q *Queries) UsageRows(ctx context.Context, f Filter) ([]UsageRow, error) {
	modules, err := q.ModulesInSections(ctx, f.CourseID, f.Sections)
	if err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		return nil, nil
	}

	amount := "CAST(SUM(ul.amount) AS BIGINT)"
	if f.UniqueUsers {
		amount = "CAST(COUNT(ul.amount) AS BIGINT)"
	}

	columns := []string{"ul.context_id AS context_id"}
	groupBy := []string{"ul.context_id"}
	if f.PerUser {
		columns = append(columns, "ul.user_id AS user_id")
		groupBy = append(groupBy, "ul.user_id")
	}
	columns = append(columns,
		"ul.year_created AS usage_year",
		"ul.month_created AS usage_month",
		"ul.day_created AS usage_day",
		amount+" AS amount",
	)
	groupBy = append(groupBy, "ul.year_created", "ul.month_created", "ul.day_created")

	tx := q.db.WithContext(ctx).
		Table("usage_logs ul").
		Select(strings.Join(columns, ", ")).
		Where("ul.course_id = ?", f.CourseID).
		Where(dateKeyExpr+" >= ? AND "+dateKeyExpr+" <= ?", f.Window.MinKey(), f.Window.MaxKey()).
		Where("ul.context_id IN ?", modules)

	if len(f.Roles) > 0 {
		chain, err := q.CourseContextChain(ctx, f.CourseID)
		if err != nil {
			return nil, err
		}
		holders := q.db.Table("role_assignments").
			Select("user_id").
			Where("context_id IN ? AND role_id IN ?", chain, f.Roles)
		tx = tx.Where("ul.user_id IN (?)", holders)
	}

	if len(f.GradeCategories) > 0 {
		graded, err := q.ModulesInGradeCategories(ctx, f.GradeCategories)
		if err != nil {
			return nil, err
		}
		if len(graded) == 0 {
			return nil, nil
		}
		tx = tx.Where("ul.context_id IN ?", graded)
	}

	order := "ul.context_id, ul.year_created, ul.month_created, ul.day_created"
	if f.PerUser {
		order = "ul.context_id, ul.user_id, ul.year_created, ul.month_created, ul.day_created"
	}

	var rows []UsageRow
	if err := tx.Group(strings.Join(groupBy, ", ")).Order(order).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("query usage log: %w", err)
	}
	return rows, nil
}

// ModuleInfo maps every module context of the course to its module.
func (q *Queries) ModuleInfo(ctx context.Context, courseID uint) (map[uint]ModuleInfo, error) {
	var rows []ModuleInfo
	err := q.db.WithContext(ctx).
		Table("contexts con").
		Select(`con.id AS context_id, cm.id AS module_id, cm.name AS name, cm.mod_type AS mod_type,
			COALESCE(s.number, 0) AS section_number, COALESCE(s.name, '') AS section_name`).
		Joins("JOIN course_modules cm ON con.instance_id = cm.id").
		Joins("LEFT JOIN course_sections s ON s.id = cm.section_id").
		Where("cm.course_id = ? AND con.level = ?", courseID, models.LevelModule).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load module info: %w", err)
	}

	modules := make(map[uint]ModuleInfo, len(rows))
	for _, m := range rows {
		modules[m.ContextID] = m
	}
	return modules, nil
}

func (q *Queries) Users(ctx context.Context, ids []uint) (map[uint]models.User, error) {
	users := make(map[uint]models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	var list []models.User
	if err := q.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	for _, u := range list {
		users[u.ID] = u
	}
	return users, nil
}
