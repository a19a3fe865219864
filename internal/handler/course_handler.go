package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-portal-api/internal/dto"
	"github.com/noah-isme/campus-portal-api/internal/models"
	appErrors "github.com/noah-isme/campus-portal-api/pkg/errors"
	"github.com/noah-isme/campus-portal-api/pkg/response"
)

type courseService interface {
	Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateCourseRequest) (*models.Course, error)
	Update(ctx context.Context, courseCode string, req dto.UpdateCourseRequest) (*models.Course, error)
	ListAll(ctx context.Context) ([]models.CourseListing, error)
	ListMine(ctx context.Context, actor *models.JWTClaims) ([]models.Course, error)
}

type courseCascade interface {
	DeleteCourse(ctx context.Context, courseCode string) (*dto.CascadeReport, error)
}

// CourseHandler exposes course catalogue endpoints.
type CourseHandler struct {
	service courseService
	cascade courseCascade
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(svc courseService, cascade courseCascade) *CourseHandler {
	return &CourseHandler{service: svc, cascade: cascade}
}

// Create godoc
// @Summary Add a course taught by the caller
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /management/courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateCourseRequest
	if !bindJSON(c, &req, "Missing course code, title, max seats, or teacher username.") {
		return
	}
	course, err := h.service.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Course added successfully!", course)
}

// Update godoc
// @Summary Update course details
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseCode path string true "Course code"
// @Param payload body dto.UpdateCourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /management/courses/{courseCode} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	var req dto.UpdateCourseRequest
	if !bindJSON(c, &req, "invalid course payload") {
		return
	}
	course, err := h.service.Update(c.Request.Context(), c.Param("courseCode"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Course updated successfully.", course)
}

// Delete godoc
// @Summary Delete a course and every dependent record
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param courseCode path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /management/courses/{courseCode} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	report, err := h.cascade.DeleteCourse(c.Request.Context(), c.Param("courseCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Course and all associated records deleted successfully.", report)
}

// ListAll godoc
// @Summary List every course with teacher name and seat counts
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses/all [get]
func (h *CourseHandler) ListAll(c *gin.Context) {
	courses, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// ListMine godoc
// @Summary List courses taught by the caller
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /courses/my-courses [get]
func (h *CourseHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	courses, err := h.service.ListMine(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}
