package models

type GradeCategory struct {
	ID       uint `gorm:"primaryKey"`
	CourseID uint `gorm:"index"`
	ParentID *uint
	Name     string
}

// GradeItem links a graded course module to its grade category.
type GradeItem struct {
	ID         uint `gorm:"primaryKey"`
	CourseID   uint `gorm:"index"`
	CategoryID uint `gorm:"index"`
	ModuleID   uint `gorm:"index"`
	Name       string
}
