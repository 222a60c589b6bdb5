package models

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type Course struct {
	gorm.Model
	Title      string
	ShortName  string
	CategoryID uint
}

// Section is a topic block of a course. Number is the display position,
// 0 being the general section at the top.
type Section struct {
	ID       uint `gorm:"primaryKey"`
	CourseID uint `gorm:"index"`
	Number   int
	Name     string
}

func (Section) TableName() string {
	return "course_sections"
}

// DisplayName falls back to "Topic N" for unnamed sections.
func (s Section) DisplayName() string {
	return SectionLabel(s.Name, s.Number)
}

func SectionLabel(name string, number int) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	return fmt.Sprintf("Topic %d", number)
}

// CourseModule is an activity or resource placed in a course section.
type CourseModule struct {
	ID        uint   `gorm:"primaryKey"`
	CourseID  uint   `gorm:"index"`
	SectionID uint   `gorm:"index"`
	ModType   string // quiz, resource, forum, ...
	Name      string
	Visible   bool `gorm:"default:true"`
}
