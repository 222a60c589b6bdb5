package report

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"usagereport/backend/cache"
)

// UserInfo is what the per-user table shows about a person.
type UserInfo struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
}

type Report struct {
	CourseID    uint                `json:"course_id"`
	Window      Window              `json:"window"`
	UniqueUsers bool                `json:"unique_users"`
	Matrix      Matrix              `json:"matrix"`
	Modules     map[uint]ModuleInfo `json:"modules"`
	Users       map[uint]UserInfo   `json:"users,omitempty"`
	GeneratedAt time.Time           `json:"generated_at"`
}

type Service struct {
	queries *Queries
	cache   *cache.LRU[*Report]
	logger  *log.Logger
	now     func() time.Time
}

// NewService creates a report service. A cacheSize of 0 disables caching.
func NewService(db *gorm.DB, logger *log.Logger, cacheSize int, cacheTTL time.Duration) *Service {
	if logger == nil {
		logger = log.Default()
	}
	s := &Service{
		queries: NewQueries(db),
		logger:  logger.WithPrefix("report"),
		now:     time.Now,
	}
	if cacheSize > 0 {
		s.cache = cache.NewLRU[*Report](cacheSize, cacheTTL)
	}
	return s
}

func (s *Service) Queries() *Queries {
	return s.queries
}

// Cache is nil when caching is disabled.
func (s *Service) Cache() *cache.LRU[*Report] {
	return s.cache
}

// Build queries the usage log for f and aggregates it into a dense
// matrix with module (and, in per-user mode, user) metadata attached.
func (s *Service) Build(ctx context.Context, f Filter) (*Report, error) {
	mode := modeLabel(f.PerUser)
	key := f.CacheKey()
	if s.cache != nil {
		if r, ok := s.cache.Get(key); ok {
			reportCacheLookups.WithLabelValues("hit").Inc()
			reportBuilds.WithLabelValues(mode, "cached").Inc()
			return r, nil
		}
		reportCacheLookups.WithLabelValues("miss").Inc()
	}

	r, err := s.build(ctx, f)
	if err != nil {
		reportBuilds.WithLabelValues(mode, "error").Inc()
		return nil, err
	}
	reportBuilds.WithLabelValues(mode, "ok").Inc()

	if s.cache != nil {
		s.cache.Set(key, r)
	}
	return r, nil
}

func (s *Service) build(ctx context.Context, f Filter) (*Report, error) {
	if _, err := s.queries.CourseContext(ctx, f.CourseID); err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := s.queries.UsageRows(ctx, f)
	reportQueryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	modules, err := s.queries.ModuleInfo(ctx, f.CourseID)
	if err != nil {
		return nil, err
	}

	matrix := Aggregate(rows, f.Window, f.PerUser, func(contextID uint) bool {
		_, ok := modules[contextID]
		return ok
	})
	if matrix.Empty() {
		s.logger.Info("no usage in window",
			"course_id", f.CourseID, "window", f.Window.String())
	}
	if len(matrix.Dropped) > 0 {
		s.logger.Warn("skipping contexts without a course module",
			"course_id", f.CourseID, "contexts", matrix.Dropped)
	}

	r := &Report{
		CourseID:    f.CourseID,
		Window:      f.Window,
		UniqueUsers: f.UniqueUsers,
		Matrix:      matrix,
		Modules:     make(map[uint]ModuleInfo, len(matrix.Rows)),
		GeneratedAt: s.now(),
	}
	for _, row := range matrix.Rows {
		r.Modules[row.ContextID] = modules[row.ContextID]
	}

	if f.PerUser {
		r.Users, err = s.userInfo(ctx, matrix)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Debug("report built",
		"course_id", f.CourseID, "window", f.Window.String(),
		"rows", len(rows), "contexts", len(matrix.Rows), "per_user", f.PerUser)
	return r, nil
}

func (s *Service) userInfo(ctx context.Context, m Matrix) (map[uint]UserInfo, error) {
	seen := make(map[uint]bool)
	var ids []uint
	for _, row := range m.Rows {
		for _, u := range row.Users {
			if !seen[u.UserID] {
				seen[u.UserID] = true
				ids = append(ids, u.UserID)
			}
		}
	}

	users, err := s.queries.Users(ctx, ids)
	if err != nil {
		return nil, err
	}

	info := make(map[uint]UserInfo, len(ids))
	for _, id := range ids {
		u, ok := users[id]
		if !ok {
			s.logger.Warn("usage log references unknown user", "user_id", id)
			u.ID = id
		}
		info[id] = UserInfo{ID: id, FullName: u.FullName()}
	}
	return info, nil
}
