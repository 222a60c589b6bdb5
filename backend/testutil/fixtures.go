// Package testutil seeds a small course into a throwaway sqlite database.
//
// Course 1 lives in category context 2 under system context 1; its course
// context is 3. Module contexts 20 (quiz, section "Week 1"), 21 (resource,
// general section) and 22 (forum, "Week 1") belong to it, context 29 is a
// leftover module context whose module was deleted. Usage is logged from
// 2024-02-28 to 2024-03-03.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"usagereport/backend/models"
)

const (
	Password = "password"

	CourseID        uint = 1
	MissingCourseID uint = 99

	AdminID   uint = 1
	TeacherID uint = 2
	AliceID   uint = 3
	BobID     uint = 4
	ManagerID uint = 5
	EveID     uint = 6
	// GhostID appears in the usage log without a user record.
	GhostID uint = 77

	RoleManager        uint = 1
	RoleEditingTeacher uint = 3
	RoleStudent        uint = 5

	SectionGeneral uint = 10
	SectionWeek1   uint = 11
	SectionWeek2   uint = 12

	QuizModuleID   uint = 100
	SlidesModuleID uint = 101
	ForumModuleID  uint = 102

	QuizContext   uint = 20
	SlidesContext uint = 21
	ForumContext  uint = 22
	StaleContext  uint = 29

	GradeCatQuizzes uint = 1
	GradeCatEmpty   uint = 2
)

// OpenDB returns a migrated, empty database in the test's temp dir.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()
	return OpenFile(t, filepath.Join(t.TempDir(), "usage.db"))
}

// OpenFile is OpenDB for a caller-chosen database file.
func OpenFile(t testing.TB, path string) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Seeded opens a database and fills it with the course fixture.
func Seeded(t testing.TB) *gorm.DB {
	t.Helper()
	db := OpenDB(t)
	Seed(t, db)
	return db
}

func Seed(t testing.TB, db *gorm.DB) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	user := func(id uint, username, first, last, role string) *models.User {
		return &models.User{
			Model:        gorm.Model{ID: id},
			Username:     username,
			Email:        username + "@example.org",
			PasswordHash: string(hash),
			FirstName:    first,
			LastName:     last,
			Role:         role,
		}
	}

	records := []interface{}{
		user(AdminID, "admin", "Ada", "Admin", "admin"),
		user(TeacherID, "teacher", "Tina", "Teach", "user"),
		user(AliceID, "alice", "Alice", "Smith", "user"),
		user(BobID, "bob", "Bob", "Jones", "user"),
		user(ManagerID, "manny", "Manny", "Ger", "user"),
		user(EveID, "eve", "Eve", "Outside", "user"),

		&models.Course{Model: gorm.Model{ID: CourseID}, Title: "Introduction", ShortName: "intro", CategoryID: 1},

		&models.Context{ID: 1, Level: models.LevelSystem, Path: "/1"},
		&models.Context{ID: 2, Level: models.LevelCategory, InstanceID: 1, Path: "/1/2"},
		&models.Context{ID: 3, Level: models.LevelCourse, InstanceID: CourseID, Path: "/1/2/3"},
		&models.Context{ID: QuizContext, Level: models.LevelModule, InstanceID: QuizModuleID, Path: "/1/2/3/20"},
		&models.Context{ID: SlidesContext, Level: models.LevelModule, InstanceID: SlidesModuleID, Path: "/1/2/3/21"},
		&models.Context{ID: ForumContext, Level: models.LevelModule, InstanceID: ForumModuleID, Path: "/1/2/3/22"},
		&models.Context{ID: StaleContext, Level: models.LevelModule, InstanceID: 999, Path: "/1/2/3/29"},

		&models.Section{ID: SectionGeneral, CourseID: CourseID, Number: 0},
		&models.Section{ID: SectionWeek1, CourseID: CourseID, Number: 1, Name: "Week 1"},
		&models.Section{ID: SectionWeek2, CourseID: CourseID, Number: 2, Name: "Week 2"},

		&models.CourseModule{ID: QuizModuleID, CourseID: CourseID, SectionID: SectionWeek1, ModType: "quiz", Name: "Quiz 1", Visible: true},
		&models.CourseModule{ID: SlidesModuleID, CourseID: CourseID, SectionID: SectionGeneral, ModType: "resource", Name: "Slides", Visible: true},
		&models.CourseModule{ID: ForumModuleID, CourseID: CourseID, SectionID: SectionWeek1, ModType: "forum", Name: "Forum", Visible: true},

		&models.Role{ID: RoleManager, ShortName: "manager", Name: "Manager", SortOrder: 1},
		&models.Role{ID: RoleEditingTeacher, ShortName: "editingteacher", Name: "Teacher", SortOrder: 3},
		&models.Role{ID: RoleStudent, ShortName: "student", Name: "Student", SortOrder: 5},

		&models.RoleAssignment{RoleID: RoleEditingTeacher, ContextID: 3, UserID: TeacherID},
		&models.RoleAssignment{RoleID: RoleStudent, ContextID: 3, UserID: AliceID},
		&models.RoleAssignment{RoleID: RoleStudent, ContextID: 3, UserID: BobID},
		&models.RoleAssignment{RoleID: RoleManager, ContextID: 2, UserID: ManagerID},

		&models.GradeCategory{ID: GradeCatQuizzes, CourseID: CourseID, Name: "Quizzes"},
		&models.GradeCategory{ID: GradeCatEmpty, CourseID: CourseID, Name: "Essays"},
		&models.GradeItem{ID: 1, CourseID: CourseID, CategoryID: GradeCatQuizzes, ModuleID: QuizModuleID, Name: "Quiz 1"},

		usage(QuizContext, AliceID, 2024, 3, 1, 3),
		usage(QuizContext, BobID, 2024, 3, 1, 2),
		usage(QuizContext, AliceID, 2024, 3, 3, 4),
		usage(QuizContext, GhostID, 2024, 3, 3, 1),
		usage(SlidesContext, TeacherID, 2024, 3, 2, 5),
		usage(SlidesContext, AliceID, 2024, 3, 2, 1),
		usage(ForumContext, BobID, 2024, 2, 28, 7),
		usage(StaleContext, AliceID, 2024, 3, 2, 9),
	}

	for _, r := range records {
		require.NoError(t, db.Create(r).Error)
	}
}

func usage(contextID, userID uint, year, month, day int, amount int64) *models.UsageLog {
	return &models.UsageLog{
		UserID:       userID,
		ContextID:    contextID,
		CourseID:     CourseID,
		YearCreated:  year,
		MonthCreated: month,
		DayCreated:   day,
		Amount:       amount,
	}
}
