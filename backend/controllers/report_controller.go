package controllers

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"

	"usagereport/backend/config"
	"usagereport/backend/middleware"
	"usagereport/backend/report"
	"usagereport/backend/report/table"
	"usagereport/backend/utils"
)

var ErrWindowTooLarge = errors.New("report window is too large")

type ReportController struct {
	Service *report.Service
	Access  *report.Access
	Cfg     *config.Config
	Logger  *log.Logger
	Now     func() time.Time
}

func NewReportController(service *report.Service, access *report.Access, cfg *config.Config, logger *log.Logger) *ReportController {
	return &ReportController{
		Service: service,
		Access:  access,
		Cfg:     cfg,
		Logger:  logger,
		Now:     time.Now,
	}
}

// GetUsage godoc
// @Summary Course usage report
// @Description Daily activity per course module, optionally per user, as an HTML table, CSV, XLSX or JSON
// @Tags reports
// @Produce html
// @Produce json
// @Param id path int true "Course ID"
// @Param start query string false "First day, YYYY-MM-DD"
// @Param end query string false "Last day, YYYY-MM-DD"
// @Param roles query string false "Comma separated role ids"
// @Param sections query string false "Comma separated section ids"
// @Param gradecats query string false "Comma separated grade category ids"
// @Param unique query bool false "Count unique users instead of events"
// @Param deanonymize query bool false "One row per module and user"
// @Param format query string false "html, csv, xlsx or json"
// @Success 200 {object} report.Report
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Security BearerAuth
// @Router /courses/{id}/usage [get]
func (rc *ReportController) GetUsage(c *fiber.Ctx) error {
	courseID := middleware.CourseID(c)

	format, err := table.ParseFormat(c.Query("format"))
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	filter, err := rc.parseFilter(c, courseID)
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	if filter.PerUser {
		ok, err := rc.Access.CanDeanonymize(c.UserContext(), middleware.CurrentUser(c), courseID)
		if err != nil {
			rc.Logger.Error("check deanonymize permission", "course_id", courseID, "err", err)
			return utils.InternalServerError(c, "Could not check permissions")
		}
		if !ok {
			return utils.Forbidden(c, "You don't have permission to view per-user activity")
		}
	}

	r, err := rc.Service.Build(c.UserContext(), filter)
	if err != nil {
		if errors.Is(err, report.ErrCourseNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		rc.Logger.Error("build usage report", "course_id", courseID, "err", err)
		return utils.InternalServerError(c, "Could not build report")
	}

	if format == table.FormatJSON {
		report.RecordRender(string(format))
		return utils.Success(c, fiber.StatusOK, r)
	}

	tbl, err := table.Build(r, rc.Cfg.SiteURL)
	if err != nil {
		rc.Logger.Error("lay out usage table", "course_id", courseID, "err", err)
		return utils.InternalServerError(c, "Could not render report")
	}
	body, err := table.Render(tbl, format)
	if err != nil {
		rc.Logger.Error("render usage table", "course_id", courseID, "format", format, "err", err)
		return utils.InternalServerError(c, "Could not render report")
	}
	report.RecordRender(string(format))

	if format.IsDownload() {
		return utils.Download(c, format.Filename(downloadName(r)), format.ContentType(), body)
	}
	c.Set(fiber.HeaderContentType, format.ContentType())
	return c.Status(fiber.StatusOK).Send(body)
}

// GetFilters godoc
// @Summary Usage report filter options
// @Description Roles, sections and grade categories the usage report can be filtered by
// @Tags reports
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} report.FilterOptions
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security BearerAuth
// @Router /courses/{id}/usage/filters [get]
func (rc *ReportController) GetFilters(c *fiber.Ctx) error {
	courseID := middleware.CourseID(c)

	opts, err := rc.Service.FilterOptions(c.UserContext(), courseID)
	if err != nil {
		if errors.Is(err, report.ErrCourseNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		rc.Logger.Error("load filter options", "course_id", courseID, "err", err)
		return utils.InternalServerError(c, "Could not load filter options")
	}
	return utils.Success(c, fiber.StatusOK, opts)
}

// GetRecent godoc
// @Summary Recent course activity
// @Description Summed activity per module context for the last days
// @Tags reports
// @Produce json
// @Param id path int true "Course ID"
// @Param days query int false "Number of days to look back"
// @Success 200 {object} report.RecentActivity
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security BearerAuth
// @Router /courses/{id}/usage/recent [get]
func (rc *ReportController) GetRecent(c *fiber.Ctx) error {
	courseID := middleware.CourseID(c)

	days := c.QueryInt("days", rc.Cfg.ReportDefaultDays)
	if days < 1 || days > rc.Cfg.ReportMaxDays {
		return utils.BadRequest(c, fmt.Sprintf("days must be between 1 and %d", rc.Cfg.ReportMaxDays))
	}

	activity, err := rc.Service.Recent(c.UserContext(), courseID, days, rc.Now().In(rc.Cfg.Location()))
	if err != nil {
		if errors.Is(err, report.ErrCourseNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		rc.Logger.Error("load recent activity", "course_id", courseID, "err", err)
		return utils.InternalServerError(c, "Could not load recent activity")
	}
	return utils.Success(c, fiber.StatusOK, activity)
}

func (rc *ReportController) parseFilter(c *fiber.Ctx, courseID uint) (report.Filter, error) {
	window, err := ParseWindow(c.Query("start"), c.Query("end"), rc.Now(), rc.Cfg)
	if err != nil {
		return report.Filter{}, err
	}

	f := report.Filter{
		CourseID:    courseID,
		Window:      window,
		UniqueUsers: c.QueryBool("unique"),
		PerUser:     c.QueryBool("deanonymize"),
	}
	if f.Roles, err = ParseIDList(c.Query("roles")); err != nil {
		return report.Filter{}, fmt.Errorf("roles: %w", err)
	}
	if f.Sections, err = ParseIDList(c.Query("sections")); err != nil {
		return report.Filter{}, fmt.Errorf("sections: %w", err)
	}
	if f.GradeCategories, err = ParseIDList(c.Query("gradecats")); err != nil {
		return report.Filter{}, fmt.Errorf("gradecats: %w", err)
	}
	return f, nil
}

// ParseWindow resolves the requested dates in the configured timezone.
// Missing bounds default to the last ReportDefaultDays days ending today.
func ParseWindow(start, end string, now time.Time, cfg *config.Config) (report.Window, error) {
	loc := cfg.Location()

	var w report.Window
	var err error
	switch {
	case start == "" && end == "":
		w, err = report.LastDays(now, cfg.ReportDefaultDays, loc)
	default:
		var from, to time.Time
		if end == "" {
			to = now
		} else if to, err = report.ParseDate(end, loc); err != nil {
			return report.Window{}, err
		}
		if start == "" {
			from = to.AddDate(0, 0, -(cfg.ReportDefaultDays - 1))
		} else if from, err = report.ParseDate(start, loc); err != nil {
			return report.Window{}, err
		}
		w, err = report.NewWindow(from, to, loc)
	}
	if err != nil {
		return report.Window{}, err
	}

	if w.Days()+1 > cfg.ReportMaxDays {
		return report.Window{}, fmt.Errorf("%w: %d days, at most %d allowed", ErrWindowTooLarge, w.Days()+1, cfg.ReportMaxDays)
	}
	return w, nil
}

// ParseIDList parses "3, 1,3" into a sorted list of distinct ids.
func ParseIDList(value string) ([]uint, error) {
	seen := make(map[uint]bool)
	var ids []uint
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		if !seen[uint(id)] {
			seen[uint(id)] = true
			ids = append(ids, uint(id))
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func downloadName(r *report.Report) string {
	return fmt.Sprintf("usage_course%d_%s_%s", r.CourseID,
		r.Window.Start.Format("20060102"), r.Window.End.Format("20060102"))
}
