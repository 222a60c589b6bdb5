package models

type Role struct {
	ID        uint   `gorm:"primaryKey"`
	ShortName string `gorm:"unique;not null"`
	Name      string
	SortOrder int
}

type RoleAssignment struct {
	ID        uint `gorm:"primaryKey"`
	RoleID    uint `gorm:"index"`
	ContextID uint `gorm:"index"`
	UserID    uint `gorm:"index"`
}
