package models

// UsageLog is one row of the usage log store: how many events a user
// produced in a module context on a given day.
type UsageLog struct {
	ID           uint `gorm:"primaryKey"`
	UserID       uint `gorm:"index"`
	ContextID    uint `gorm:"index"`
	CourseID     uint `gorm:"index:idx_usage_course_day"`
	YearCreated  int  `gorm:"index:idx_usage_course_day"`
	MonthCreated int  `gorm:"index:idx_usage_course_day"`
	DayCreated   int  `gorm:"index:idx_usage_course_day"`
	Amount       int64
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Course{},
		&Section{},
		&CourseModule{},
		&Context{},
		&Role{},
		&RoleAssignment{},
		&GradeCategory{},
		&GradeItem{},
		&UsageLog{},
	}
}
