package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-portal-api/internal/dto"
	"github.com/noah-isme/campus-portal-api/internal/models"
	"github.com/noah-isme/campus-portal-api/pkg/response"
)

type timetableService interface {
	Create(ctx context.Context, req dto.CreateTimetableRequest) (*models.Timetable, error)
	ForRole(ctx context.Context, role models.UserRole, username string) ([]models.Timetable, error)
}

// TimetableHandler exposes weekly schedule endpoints.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc timetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Create godoc
// @Summary Add a timetable slot
// @Tags Timetable
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateTimetableRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable [post]
func (h *TimetableHandler) Create(c *gin.Context) {
	var req dto.CreateTimetableRequest
	if !bindJSON(c, &req, "Error adding timetable slot") {
		return
	}
	slot, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Timetable slot created successfully.", slot)
}

// ForRole godoc
// @Summary Weekly schedule for a teacher or student
// @Tags Timetable
// @Produce json
// @Param userRole path string true "student, teacher or admin"
// @Param username path string true "Username"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /timetable/{userRole}/{username} [get]
func (h *TimetableHandler) ForRole(c *gin.Context) {
	slots, err := h.service.ForRole(c.Request.Context(), models.UserRole(c.Param("userRole")), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}
