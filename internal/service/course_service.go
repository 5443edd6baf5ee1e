package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/learnhub/lms-api/internal/models"
	appErrors "github.com/learnhub/lms-api/pkg/errors"
)

type courseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Update(ctx context.Context, course *models.Course) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	ListAll(ctx context.Context) ([]models.CourseDetail, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Course, error)
}

// CourseRequest carries the editable fields of a course.
type CourseRequest struct {
	Name        string `json:"course_name" validate:"required"`
	Description string `json:"course_description" validate:"required"`
	VideoURL    string `json:"course_video" validate:"required,url"`
}

// CourseService manages the course catalog.
type CourseService struct {
	repo      courseRepository
	stats     statsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs CourseService.
func NewCourseService(repo courseRepository, stats statsInvalidator, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, stats: stats, validator: validate, logger: logger}
}

// Create publishes a new course owned by the given user.
func (s *CourseService) Create(ctx context.Context, ownerID string, req CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course := &models.Course{
		Name:        req.Name,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		OwnerID:     ownerID,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	return course, nil
}

// Update overwrites the display fields of an existing course.
func (s *CourseService) Update(ctx context.Context, id string, req CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	course.Name = req.Name
	course.Description = req.Description
	course.VideoURL = req.VideoURL

	affected, err := s.repo.Update(ctx, course)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	if affected == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	s.invalidateStats(ctx)
	return course, nil
}

// Delete removes a course. Enrollments referencing it become orphans and
// are filtered out of reads rather than cascaded.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	s.invalidateStats(ctx)
	return nil
}

// Get returns a single course by identifier.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// ListAll returns the full catalog with owner display fields.
func (s *CourseService) ListAll(ctx context.Context) ([]models.CourseDetail, error) {
	courses, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	if courses == nil {
		courses = []models.CourseDetail{}
	}
	return courses, nil
}

// ListMine returns courses created by the given user.
func (s *CourseService) ListMine(ctx context.Context, ownerID string) ([]models.Course, error) {
	courses, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list owned courses")
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

func (s *CourseService) invalidateStats(ctx context.Context) {
	if s.stats == nil {
		return
	}
	s.stats.Invalidate(ctx)
}
