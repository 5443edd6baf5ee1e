package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/lms-api/internal/models"
)

func TestCourseRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO courses")).
		WithArgs(sqlmock.AnyArg(), "Go Basics", "Intro", "https://v/1", "user-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	course := &models.Course{Name: "Go Basics", Description: "Intro", VideoURL: "https://v/1", OwnerID: "user-1"}
	err := repo.Create(context.Background(), course)
	require.NoError(t, err)
	assert.NotEmpty(t, course.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "description", "video_url", "owner_id", "created_at", "updated_at"}).
		AddRow("course-1", "Go Basics", "Intro", "https://v/1", "user-1", now, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE id = $1")).
		WithArgs("course-1").
		WillReturnRows(rows)

	course, err := repo.FindByID(context.Background(), "course-1")
	require.NoError(t, err)
	assert.Equal(t, "Go Basics", course.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.Update(context.Background(), &models.Course{ID: "missing"})
	require.NoError(t, err)
	assert.Zero(t, affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM courses WHERE id = $1")).
		WithArgs("course-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.Delete(context.Background(), "course-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "name", "description", "video_url", "owner_id", "created_at", "updated_at",
		"owner_name", "owner_email",
	}).AddRow("course-1", "Go Basics", "Intro", "https://v/1", "user-1", now, now, "Ada Lovelace", "ada@example.com")

	mock.ExpectQuery(regexp.QuoteMeta("JOIN users u ON u.id = c.owner_id")).
		WillReturnRows(rows)

	courses, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "ada@example.com", courses[0].OwnerEmail)
	require.NoError(t, mock.ExpectationsWereMet())
}
