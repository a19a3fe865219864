package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-portal-api/internal/dto"
	"github.com/noah-isme/campus-portal-api/pkg/response"
)

type enrollmentService interface {
	Transition(ctx context.Context, courseCode string, req dto.EnrollmentTransitionRequest) (*dto.EnrollmentTransitionResult, error)
	Enrollment(ctx context.Context, courseCode string) (*dto.CourseEnrollment, error)
}

// EnrollmentHandler exposes course membership endpoints.
type EnrollmentHandler struct {
	service enrollmentService
}

// NewEnrollmentHandler constructs the handler.
func NewEnrollmentHandler(svc enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc}
}

// View godoc
// @Summary Course enrollment with student names
// @Tags Enrollment
// @Produce json
// @Security BearerAuth
// @Param courseCode path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /management/enrollment/{courseCode} [get]
func (h *EnrollmentHandler) View(c *gin.Context) {
	result, err := h.service.Enrollment(c.Request.Context(), c.Param("courseCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Transition godoc
// @Summary Enroll, waitlist or drop a student
// @Tags Enrollment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseCode path string true "Course code"
// @Param payload body dto.EnrollmentTransitionRequest true "Transition"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /management/enrollment/{courseCode} [post]
func (h *EnrollmentHandler) Transition(c *gin.Context) {
	var req dto.EnrollmentTransitionRequest
	if !bindJSON(c, &req, "Missing studentId or action.") {
		return
	}
	result, err := h.service.Transition(c.Request.Context(), c.Param("courseCode"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, result.Message, result)
}
