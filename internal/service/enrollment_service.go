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

type enrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	Exists(ctx context.Context, userID, courseID string) (bool, error)
	UpdateProgress(ctx context.Context, id string, progress int) error
	ListByUser(ctx context.Context, userID string) ([]models.EnrolledCourse, error)
	ListStudentsByCourse(ctx context.Context, courseID string) ([]models.EnrolledStudent, error)
}

type statsInvalidator interface {
	Invalidate(ctx context.Context)
}

// UpdateProgressRequest carries the new progress percentage for an
// enrollment. The pointer distinguishes an absent field from an explicit 0.
type UpdateProgressRequest struct {
	Progress *int `json:"progress" validate:"required,min=0,max=100"`
}

// EnrollmentService enforces enrollment semantics and progress transitions.
type EnrollmentService struct {
	repo      enrollmentRepository
	stats     statsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService. The stats invalidator
// may be nil when no aggregate cache is configured.
func NewEnrollmentService(repo enrollmentRepository, stats statsInvalidator, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, stats: stats, validator: validate, logger: logger}
}

// Enroll registers the user in a course with zero progress. The uniqueness
// of (user, course) is guaranteed by the store's constraint, so two
// concurrent identical requests cannot both succeed: the loser receives
// ErrAlreadyEnrolled.
func (s *EnrollmentService) Enroll(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	if userID == "" || courseID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user and course identifiers are required")
	}

	enrollment := &models.Enrollment{UserID: userID, CourseID: courseID, Progress: 0}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, appErrors.ErrAlreadyEnrolled) {
			return nil, appErrors.ErrAlreadyEnrolled
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	s.invalidateStats(ctx)
	return enrollment, nil
}

// IsEnrolled reports whether an enrollment exists for (user, course).
func (s *EnrollmentService) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	enrolled, err := s.repo.Exists(ctx, userID, courseID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	return enrolled, nil
}

// UpdateProgress overwrites the progress of an enrollment. Out-of-range
// values are rejected; within range the write is last-write-wins, so a
// client may legitimately replay the same value without creating state.
func (s *EnrollmentService) UpdateProgress(ctx context.Context, id string, req UpdateProgressRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "progress must be an integer between 0 and 100")
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	if err := s.repo.UpdateProgress(ctx, id, *req.Progress); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update progress")
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return updated, nil
}

// ListByUser returns the user's enrollments joined with course display
// fields. Enrollments whose course was deleted out-of-band are silently
// dropped by the repository join; that filtering is policy, not an error.
func (s *EnrollmentService) ListByUser(ctx context.Context, userID string) ([]models.EnrolledCourse, error) {
	enrollments, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	if enrollments == nil {
		enrollments = []models.EnrolledCourse{}
	}
	return enrollments, nil
}

// ListByCourse returns name and email for every user enrolled in the course.
func (s *EnrollmentService) ListByCourse(ctx context.Context, courseID string) ([]models.EnrolledStudent, error) {
	students, err := s.repo.ListStudentsByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrolled students")
	}
	if students == nil {
		students = []models.EnrolledStudent{}
	}
	return students, nil
}

func (s *EnrollmentService) invalidateStats(ctx context.Context) {
	if s.stats == nil {
		return
	}
	s.stats.Invalidate(ctx)
}
