package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/learnhub/lms-api/internal/models"
	"github.com/learnhub/lms-api/internal/service"
	appErrors "github.com/learnhub/lms-api/pkg/errors"
	"github.com/learnhub/lms-api/pkg/response"
)

type enrollmentServiceAPI interface {
	Enroll(ctx context.Context, userID, courseID string) (*models.Enrollment, error)
	IsEnrolled(ctx context.Context, userID, courseID string) (bool, error)
	UpdateProgress(ctx context.Context, id string, req service.UpdateProgressRequest) (*models.Enrollment, error)
	ListByUser(ctx context.Context, userID string) ([]models.EnrolledCourse, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.EnrolledStudent, error)
}

type statsServiceAPI interface {
	EnrolledStatsPerCourse(ctx context.Context) ([]models.EnrolledStat, bool, error)
	Export(ctx context.Context, format string) ([]byte, string, error)
}

// EnrollmentHandler exposes enrollment and stats endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentServiceAPI
	stats       statsServiceAPI
	metrics     *service.MetricsService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentServiceAPI, stats statsServiceAPI, metrics *service.MetricsService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, stats: stats, metrics: metrics}
}

// Enroll godoc
// @Summary Enroll the authenticated user in a course
// @Tags Enrollments
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /enrollment/{courseId} [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	enrollment, err := h.enrollments.Enroll(c.Request.Context(), claims.UserID, c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// MyCourses godoc
// @Summary List the authenticated user's enrollments with course info
// @Tags Enrollments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /enrollment/my-courses [get]
func (h *EnrollmentHandler) MyCourses(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	enrollments, err := h.enrollments.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments)
}

// EnrolledStats godoc
// @Summary Enrolled student counts per course
// @Tags Enrollments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /enrollment/enrolled-stats [get]
func (h *EnrollmentHandler) EnrolledStats(c *gin.Context) {
	stats, cacheHit, err := h.stats.EnrolledStatsPerCourse(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordStatsCacheLookup(cacheHit)
	response.JSON(c, http.StatusOK, stats, map[string]interface{}{"cache_hit": cacheHit})
}

// ExportStats godoc
// @Summary Export enrolled stats as CSV or PDF
// @Tags Enrollments
// @Produce text/csv
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /enrollment/enrolled-stats/export [get]
func (h *EnrollmentHandler) ExportStats(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	payload, contentType, err := h.stats.Export(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("enrolled-stats-%s.%s", time.Now().UTC().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

// UpdateProgress godoc
// @Summary Update playback progress for an enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body service.UpdateProgressRequest true "Progress payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollment/{id}/status [put]
func (h *EnrollmentHandler) UpdateProgress(c *gin.Context) {
	var req service.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	enrollment, err := h.enrollments.UpdateProgress(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment)
}

// CourseStudents godoc
// @Summary List users enrolled in a course
// @Tags Enrollments
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /enrollment/course/{courseId} [get]
func (h *EnrollmentHandler) CourseStudents(c *gin.Context) {
	students, err := h.enrollments.ListByCourse(c.Request.Context(), c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}

// Check godoc
// @Summary Check whether the authenticated user is enrolled in a course
// @Tags Enrollments
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /enrollment/check/{courseId} [get]
func (h *EnrollmentHandler) Check(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	enrolled, err := h.enrollments.IsEnrolled(c.Request.Context(), claims.UserID, c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"enrolled": enrolled})
}
