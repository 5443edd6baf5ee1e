package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/learnhub/lms-api/internal/models"
)

// CourseRepository provides database access for the course catalog.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new instance of CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// Create persists a new course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	const query = `INSERT INTO courses (id, name, description, video_url, owner_id, created_at, updated_at)
        VALUES (:id, :name, :description, :video_url, :owner_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// FindByID returns a course by identifier.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, name, description, video_url, owner_id, created_at, updated_at FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// Update overwrites the display fields of a course. It reports the number of
// affected rows so the caller can distinguish a missing course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) (int64, error) {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET name = :name, description = :description, video_url = :video_url, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, course)
	if err != nil {
		return 0, fmt.Errorf("update course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update course rows affected: %w", err)
	}
	return affected, nil
}

// Delete removes a course. Enrollments referencing it are left in place;
// reads filter such orphans instead.
func (r *CourseRepository) Delete(ctx context.Context, id string) (int64, error) {
	const query = `DELETE FROM courses WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("delete course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete course rows affected: %w", err)
	}
	return affected, nil
}

// ListAll returns every course joined with its owner's display fields.
func (r *CourseRepository) ListAll(ctx context.Context) ([]models.CourseDetail, error) {
	const query = `SELECT c.id, c.name, c.description, c.video_url, c.owner_id, c.created_at, c.updated_at,
        u.full_name AS owner_name, u.email AS owner_email
        FROM courses c
        JOIN users u ON u.id = c.owner_id
        ORDER BY c.created_at DESC`
	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ListByOwner returns courses created by the given user.
func (r *CourseRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Course, error) {
	const query = `SELECT id, name, description, video_url, owner_id, created_at, updated_at FROM courses WHERE owner_id = $1 ORDER BY created_at DESC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, ownerID); err != nil {
		return nil, fmt.Errorf("list courses by owner: %w", err)
	}
	return courses, nil
}
