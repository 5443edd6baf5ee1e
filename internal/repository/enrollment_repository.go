package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/learnhub/lms-api/internal/models"
	appErrors "github.com/learnhub/lms-api/pkg/errors"
)

// uniqueViolation is the PostgreSQL error code raised when the
// (user_id, course_id) unique constraint rejects an insert.
const uniqueViolation = "23505"

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create persists a new enrollment record. The enrollments table carries a
// unique constraint on (user_id, course_id); a conflicting insert returns
// ErrAlreadyEnrolled, which makes the insert the atomic "enroll if absent"
// primitive instead of a racy read-then-write.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = now
	}
	enrollment.UpdatedAt = now

	const query = `INSERT INTO enrollments (id, user_id, course_id, progress, created_at, updated_at)
        VALUES (:id, :user_id, :course_id, :progress, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return appErrors.ErrAlreadyEnrolled
		}
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, user_id, course_id, progress, created_at, updated_at FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Exists reports whether the user holds an enrollment for the course.
func (r *EnrollmentRepository) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE user_id = $1 AND course_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, userID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// UpdateProgress overwrites the progress value for an enrollment.
func (r *EnrollmentRepository) UpdateProgress(ctx context.Context, id string, progress int) error {
	const query = `UPDATE enrollments SET progress = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, progress, time.Now().UTC()); err != nil {
		return fmt.Errorf("update enrollment progress: %w", err)
	}
	return nil
}

// ListByUser returns the user's enrollments joined with course display
// fields and the per-course enrollment count. The inner join drops
// enrollments whose course has since been deleted (tolerant read).
func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID string) ([]models.EnrolledCourse, error) {
	const query = `SELECT e.id, e.user_id, e.course_id, e.progress, e.created_at, e.updated_at,
        c.name AS course_name, c.description AS course_description, c.video_url AS course_video,
        (SELECT COUNT(*) FROM enrollments e2 WHERE e2.course_id = e.course_id) AS enrolled_students
        FROM enrollments e
        JOIN courses c ON c.id = e.course_id
        WHERE e.user_id = $1
        ORDER BY e.created_at DESC`
	var enrollments []models.EnrolledCourse
	if err := r.db.SelectContext(ctx, &enrollments, query, userID); err != nil {
		return nil, fmt.Errorf("list user enrollments: %w", err)
	}
	return enrollments, nil
}

// ListStudentsByCourse returns name and email for every user enrolled in the course.
func (r *EnrollmentRepository) ListStudentsByCourse(ctx context.Context, courseID string) ([]models.EnrolledStudent, error) {
	const query = `SELECT u.full_name AS name, u.email
        FROM enrollments e
        JOIN users u ON u.id = e.user_id
        WHERE e.course_id = $1
        ORDER BY u.full_name ASC`
	var students []models.EnrolledStudent
	if err := r.db.SelectContext(ctx, &students, query, courseID); err != nil {
		return nil, fmt.Errorf("list enrolled students: %w", err)
	}
	return students, nil
}

// StatsPerCourse groups enrollments by course and joins course metadata.
// Courses with zero enrollments are absent, deleted courses fall out of the
// inner join, and rows are ordered by course name ascending.
func (r *EnrollmentRepository) StatsPerCourse(ctx context.Context) ([]models.EnrolledStat, error) {
	const query = `SELECT c.id AS course_id, c.name AS course_name, c.description AS course_description,
        c.video_url AS course_video, COUNT(e.id) AS enrolled_students
        FROM enrollments e
        JOIN courses c ON c.id = e.course_id
        GROUP BY c.id, c.name, c.description, c.video_url
        ORDER BY c.name ASC`
	var stats []models.EnrolledStat
	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("aggregate enrollment stats: %w", err)
	}
	return stats, nil
}
