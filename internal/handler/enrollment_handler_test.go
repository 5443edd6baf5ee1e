package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/lms-api/internal/middleware"
	"github.com/learnhub/lms-api/internal/models"
	"github.com/learnhub/lms-api/internal/service"
	appErrors "github.com/learnhub/lms-api/pkg/errors"
	"github.com/learnhub/lms-api/pkg/response"
)

type enrollmentServiceMock struct {
	enrollResp   *models.Enrollment
	enrollErr    error
	enrolled     bool
	enrolledErr  error
	updateResp   *models.Enrollment
	updateErr    error
	listResp     []models.EnrolledCourse
	listErr      error
	studentsResp []models.EnrolledStudent
	studentsErr  error

	lastUserID   string
	lastCourseID string
	lastEnrollID string
	lastProgress *int
}

func (m *enrollmentServiceMock) Enroll(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	m.lastUserID = userID
	m.lastCourseID = courseID
	return m.enrollResp, m.enrollErr
}

func (m *enrollmentServiceMock) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	m.lastUserID = userID
	m.lastCourseID = courseID
	return m.enrolled, m.enrolledErr
}

func (m *enrollmentServiceMock) UpdateProgress(ctx context.Context, id string, req service.UpdateProgressRequest) (*models.Enrollment, error) {
	m.lastEnrollID = id
	m.lastProgress = req.Progress
	return m.updateResp, m.updateErr
}

func (m *enrollmentServiceMock) ListByUser(ctx context.Context, userID string) ([]models.EnrolledCourse, error) {
	m.lastUserID = userID
	return m.listResp, m.listErr
}

func (m *enrollmentServiceMock) ListByCourse(ctx context.Context, courseID string) ([]models.EnrolledStudent, error) {
	m.lastCourseID = courseID
	return m.studentsResp, m.studentsErr
}

type statsServiceMock struct {
	stats     []models.EnrolledStat
	cacheHit  bool
	statsErr  error
	payload   []byte
	mime      string
	exportErr error

	lastFormat string
}

func (m *statsServiceMock) EnrolledStatsPerCourse(ctx context.Context) ([]models.EnrolledStat, bool, error) {
	return m.stats, m.cacheHit, m.statsErr
}

func (m *statsServiceMock) Export(ctx context.Context, format string) ([]byte, string, error) {
	m.lastFormat = format
	return m.payload, m.mime, m.exportErr
}

func newEnrollmentTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func TestEnrollmentHandlerEnroll(t *testing.T) {
	mockSvc := &enrollmentServiceMock{
		enrollResp: &models.Enrollment{ID: "enr-1", UserID: "user-1", CourseID: "course-1"},
	}
	handler := NewEnrollmentHandler(mockSvc, &statsServiceMock{}, nil)

	c, w := newEnrollmentTestContext(t)
	req, _ := http.NewRequest(http.MethodPost, "/enrollment/course-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "courseId", Value: "course-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})

	handler.Enroll(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "user-1", mockSvc.lastUserID)
	assert.Equal(t, "course-1", mockSvc.lastCourseID)
}

func TestEnrollmentHandlerEnrollUnauthenticated(t *testing.T) {
	handler := NewEnrollmentHandler(&enrollmentServiceMock{}, &statsServiceMock{}, nil)

	c, w := newEnrollmentTestContext(t)
	req, _ := http.NewRequest(http.MethodPost, "/enrollment/course-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "courseId", Value: "course-1"}}

	handler.Enroll(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEnrollmentHandlerEnrollDuplicate(t *testing.T) {
	mockSvc := &enrollmentServiceMock{enrollErr: appErrors.ErrAlreadyEnrolled}
	handler := NewEnrollmentHandler(mockSvc, &statsServiceMock{}, nil)

	c, w := newEnrollmentTestContext(t)
	req, _ := http.NewRequest(http.MethodPost, "/enrollment/course-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "courseId", Value: "course-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})

	handler.Enroll(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrAlreadyEnrolled.Code, envelope.Error.Code)
}

func TestEnrollmentHandlerCheck(t *testing.T) {
	mockSvc := &enrollmentServiceMock{enrolled: true}
	handler := NewEnrollmentHandler(mockSvc, &statsServiceMock{}, nil)

	c, w := newEnrollmentTestContext(t)
	req, _ := http.NewRequest(http.MethodGet, "/enrollment/check/course-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "courseId", Value: "course-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})

	handler.Check(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"enrolled":true`)
}

func TestEnrollmentHandlerMyCourses(t *testing.T) {
	mockSvc := &enrollmentServiceMock{
		listResp: []models.EnrolledCourse{{CourseName: "Go Basics", EnrolledStudents: 3}},
	}
	handler := NewEnrollmentHandler(mockSvc, &statsServiceMock{}, nil)

	c, w := newEnrollmentTestContext(t)
	req, _ := http.NewRequest(http.MethodGet, "/enrollment/my-courses", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})

	handler.MyCourses(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", mockSvc.lastUserID)
	assert.Contains(t, w.Body.String(), `"course_name":"Go Basics"`)
}

func TestEnrollmentHandlerUpdateProgress(t *testing.T) {
	mockSvc := &enrollmentServiceMock{
		updateResp: &models.Enrollment{ID: "enr-1", Progress: 75},
	}
	handler := NewEnrollmentHandler(mockSvc, &statsServiceMock{}, nil)

	c, w := newEnrollmentTestContext(t)
	req, _ := http.NewRequest(http.MethodPut, "/enrollment/enr-1/status", bytes.NewBufferString(`{"progress":75}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "enr-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})

	handler.UpdateProgress(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "enr-1", mockSvc.lastEnrollID)
	require.NotNil(t, mockSvc.lastProgress)
	assert.Equal(t, 75, *mockSvc.lastProgress)
}

func TestEnrollmentHandlerUpdateProgressInvalidBody(t *testing.T) {
	handler := NewEnrollmentHandler(&enrollmentServiceMock{}, &statsServiceMock{}, nil)

	c, w := newEnrollmentTestContext(t)
	req, _ := http.NewRequest(http.MethodPut, "/enrollment/enr-1/status", bytes.NewBufferString(`{"progress":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "enr-1"}}

	handler.UpdateProgress(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrollmentHandlerUpdateProgressNotFound(t *testing.T) {
	mockSvc := &enrollmentServiceMock{updateErr: appErrors.ErrNotFound}
	handler := NewEnrollmentHandler(mockSvc, &statsServiceMock{}, nil)

	c, w := newEnrollmentTestContext(t)
	req, _ := http.NewRequest(http.MethodPut, "/enrollment/missing/status", bytes.NewBufferString(`{"progress":10}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.UpdateProgress(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestEnrollmentHandlerEnrolledStats(t *testing.T) {
	mockStats := &statsServiceMock{
		stats:    []models.EnrolledStat{{CourseID: "course-1", CourseName: "Go Basics", EnrolledStudents: 4}},
		cacheHit: true,
	}
	handler := NewEnrollmentHandler(&enrollmentServiceMock{}, mockStats, nil)

	c, w := newEnrollmentTestContext(t)
	req, _ := http.NewRequest(http.MethodGet, "/enrollment/enrolled-stats", nil)
	c.Request = req

	handler.EnrolledStats(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Contains(t, w.Body.String(), `"enrolled_students":4`)
}

func TestEnrollmentHandlerExportStats(t *testing.T) {
	mockStats := &statsServiceMock{payload: []byte("course_name,enrolled_students\n"), mime: "text/csv"}
	handler := NewEnrollmentHandler(&enrollmentServiceMock{}, mockStats, nil)

	c, w := newEnrollmentTestContext(t)
	req, _ := http.NewRequest(http.MethodGet, "/enrollment/enrolled-stats/export?format=csv", nil)
	c.Request = req

	handler.ExportStats(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", mockStats.lastFormat)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
}

func TestEnrollmentHandlerCourseStudents(t *testing.T) {
	mockSvc := &enrollmentServiceMock{
		studentsResp: []models.EnrolledStudent{{Name: "Ada Lovelace", Email: "ada@example.com"}},
	}
	handler := NewEnrollmentHandler(mockSvc, &statsServiceMock{}, nil)

	c, w := newEnrollmentTestContext(t)
	req, _ := http.NewRequest(http.MethodGet, "/enrollment/course/course-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "courseId", Value: "course-1"}}

	handler.CourseStudents(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "course-1", mockSvc.lastCourseID)
	assert.Contains(t, w.Body.String(), `ada@example.com`)
}
