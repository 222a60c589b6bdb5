package routes

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"usagereport/backend/config"
	"usagereport/backend/controllers"
	"usagereport/backend/middleware"
	"usagereport/backend/report"
	"usagereport/backend/utils"
)

// NewApp builds the HTTP application together with the report service it
// serves, so callers can register the service cache for cleanup.
func NewApp(db *gorm.DB, cfg *config.Config, logger *log.Logger) (*fiber.App, *report.Service) {
	app := fiber.New(fiber.Config{
		AppName:      "usage-report",
		ErrorHandler: errorHandler(logger),
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(middleware.LoggingMiddleware(logger))

	service := report.NewService(db, logger, cfg.ReportCacheSize, cfg.ReportCacheTTL)
	SetupRoutes(app, db, cfg, logger, service)
	return app, service
}

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *log.Logger, service *report.Service) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return utils.Error(c, fiber.StatusServiceUnavailable, "Database unavailable")
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Auth routes
	authController := controllers.NewAuthController(db, cfg, logger)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(db, cfg)
	access := report.NewAccess(service.Queries(), cfg.ViewerRoles, cfg.DeanonymizeRoles)
	reportAccess := middleware.ReportAccessMiddleware(access)

	// Report routes
	reportController := controllers.NewReportController(service, access, cfg, logger)
	usage := app.Group("/api/courses/:id/usage", authMiddleware, reportAccess)
	usage.Get("/", reportController.GetUsage)
	usage.Get("/filters", reportController.GetFilters)
	usage.Get("/recent", reportController.GetRecent)
}

func errorHandler(logger *log.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error("unhandled error", "path", c.Path(), "err", err)
			return utils.InternalServerError(c, "Internal server error")
		}
		return utils.Error(c, code, err.Error())
	}
}
