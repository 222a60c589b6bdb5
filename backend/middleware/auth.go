package middleware

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"usagereport/backend/config"
	"usagereport/backend/models"
	"usagereport/backend/report"
	"usagereport/backend/utils"
)

const (
	localUser     = "user"
	localCourseID = "course_id"
)

// AuthMiddleware проверяет JWT и кладёт пользователя в контекст запроса
func AuthMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.Unauthorized(c, "Unknown user")
			}
			return utils.InternalServerError(c, "Could not query database")
		}

		c.Locals(localUser, &user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}

// CourseID returns the course id validated by ReportAccessMiddleware.
func CourseID(c *fiber.Ctx) uint {
	id, _ := c.Locals(localCourseID).(uint)
	return id
}

// ReportAccessMiddleware пропускает только тех, кому разрешено смотреть
// отчёт по курсу из параметра :id
func ReportAccessMiddleware(access *report.Access) fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil || courseID == 0 {
			return utils.BadRequest(c, "Invalid course ID")
		}

		ok, err := access.CanView(c.UserContext(), CurrentUser(c), uint(courseID))
		switch {
		case errors.Is(err, report.ErrCourseNotFound):
			return utils.NotFound(c, "Course not found")
		case err != nil:
			return utils.InternalServerError(c, "Could not check permissions")
		case !ok:
			return utils.Forbidden(c, "You don't have permission to view this report")
		}

		c.Locals(localCourseID, uint(courseID))
		return c.Next()
	}
}
