package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-portal-api/internal/middleware"
	"github.com/noah-isme/campus-portal-api/internal/models"
	appErrors "github.com/noah-isme/campus-portal-api/pkg/errors"
	"github.com/noah-isme/campus-portal-api/pkg/response"
)

type analyticsService interface {
	MarksAnalytics(ctx context.Context, studentID string) (*models.MarksAnalytics, bool, error)
	AttendanceSummary(ctx context.Context, studentID string) ([]models.AttendanceCourseSummary, bool, error)
}

// AnalyticsHandler exposes per-student marks and attendance analytics.
type AnalyticsHandler struct {
	analytics analyticsService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics analyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Marks godoc
// @Summary Marks by course with class averages
// @Tags Analytics
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /analytics/marks/{studentId} [get]
func (h *AnalyticsHandler) Marks(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	result, cacheHit, err := h.analytics.MarksAnalytics(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, cacheMeta(c, cacheHit, start))
}

// AttendanceSummary godoc
// @Summary Attendance percentage per course
// @Tags Analytics
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/summary/{studentId} [get]
func (h *AnalyticsHandler) AttendanceSummary(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.analytics.AttendanceSummary(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil, cacheMeta(c, cacheHit, start))
}

func cacheMeta(c *gin.Context, cacheHit bool, start time.Time) map[string]interface{} {
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	return meta
}
