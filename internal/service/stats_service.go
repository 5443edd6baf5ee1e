package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/learnhub/lms-api/internal/models"
	"github.com/learnhub/lms-api/pkg/export"
	appErrors "github.com/learnhub/lms-api/pkg/errors"
)

const statsCacheKey = "stats:enrolled_per_course"

type statsRepository interface {
	StatsPerCourse(ctx context.Context) ([]models.EnrolledStat, error)
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// StatsService computes per-course enrollment counts joined with course
// metadata, with an optional cached fast path.
type StatsService struct {
	repo     statsRepository
	cache    statsCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewStatsService constructs StatsService. The cache may be nil.
func NewStatsService(repo statsRepository, cache statsCache, cacheTTL time.Duration, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// EnrolledStatsPerCourse returns one row per course holding at least one
// enrollment, ordered ascending by course name. The boolean reports whether
// the payload was served from cache.
func (s *StatsService) EnrolledStatsPerCourse(ctx context.Context) ([]models.EnrolledStat, bool, error) {
	if s.cache != nil {
		var cached []models.EnrolledStat
		err := s.cache.Get(ctx, statsCacheKey, &cached)
		if err == nil {
			return cached, true, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
	}

	stats, err := s.repo.StatsPerCourse(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate enrollment stats")
	}
	if stats == nil {
		stats = []models.EnrolledStat{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, statsCacheKey, stats, s.cacheTTL); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}

	return stats, false, nil
}

// Export renders the current stats as CSV or PDF bytes together with the
// response content type.
func (s *StatsService) Export(ctx context.Context, format string) ([]byte, string, error) {
	stats, _, err := s.EnrolledStatsPerCourse(ctx)
	if err != nil {
		return nil, "", err
	}

	table := export.Table{
		Title: "Enrolled students per course",
		Columns: []export.Column{
			{Key: "course_id", Label: "Course ID", Weight: 1.4},
			{Key: "course_name", Label: "Course", Weight: 1.2},
			{Key: "course_description", Label: "Description", Weight: 2},
			{Key: "enrolled_students", Label: "Enrolled", Weight: 0.6},
		},
		Rows: make([]map[string]string, 0, len(stats)),
	}
	for _, stat := range stats {
		table.Rows = append(table.Rows, map[string]string{
			"course_id":          stat.CourseID,
			"course_name":        stat.CourseName,
			"course_description": stat.CourseDescription,
			"enrolled_students":  strconv.Itoa(stat.EnrolledStudents),
		})
	}

	switch format {
	case "csv", "":
		payload, err := export.CSV(table)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := export.PDF(table)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

// Invalidate drops the cached aggregate so the next read recomputes it.
// Called after any write that can change per-course counts.
func (s *StatsService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}
