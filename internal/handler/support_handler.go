package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-portal-api/internal/dto"
	"github.com/noah-isme/campus-portal-api/internal/models"
	"github.com/noah-isme/campus-portal-api/pkg/response"
)

type supportService interface {
	BookAppointment(ctx context.Context, req dto.BookAppointmentRequest) (*models.Appointment, error)
	PendingAppointments(ctx context.Context, teacherUsername string) ([]models.Appointment, error)
	SubmitTicket(ctx context.Context, req dto.SubmitTicketRequest) (*models.Ticket, error)
	OpenTickets(ctx context.Context) ([]models.Ticket, error)
	UpdateTicketStatus(ctx context.Context, id string, status models.TicketStatus) (*models.Ticket, error)
}

// SupportHandler serves appointments and IT tickets.
type SupportHandler struct {
	service supportService
}

// NewSupportHandler constructs the handler.
func NewSupportHandler(svc supportService) *SupportHandler {
	return &SupportHandler{service: svc}
}

// BookAppointment godoc
// @Summary Book an appointment with a teacher
// @Tags Appointments
// @Accept json
// @Produce json
// @Param payload body dto.BookAppointmentRequest true "Appointment payload"
// @Success 201 {object} response.Envelope
// @Router /appointments [post]
func (h *SupportHandler) BookAppointment(c *gin.Context) {
	var req dto.BookAppointmentRequest
	if !bindJSON(c, &req, "Error booking appointment.") {
		return
	}
	appt, err := h.service.BookAppointment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Appointment booked successfully.", appt)
}

// PendingAppointments godoc
// @Summary Appointments of a teacher that are not completed
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param teacherUsername path string true "Teacher username"
// @Success 200 {object} response.Envelope
// @Router /appointments/{teacherUsername} [get]
func (h *SupportHandler) PendingAppointments(c *gin.Context) {
	appts, err := h.service.PendingAppointments(c.Request.Context(), c.Param("teacherUsername"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appts, nil)
}

// SubmitTicket godoc
// @Summary Submit an IT support ticket
// @Tags Tickets
// @Accept json
// @Produce json
// @Param payload body dto.SubmitTicketRequest true "Ticket payload"
// @Success 201 {object} response.Envelope
// @Router /tickets [post]
func (h *SupportHandler) SubmitTicket(c *gin.Context) {
	var req dto.SubmitTicketRequest
	if !bindJSON(c, &req, "Missing required fields for ticket submission.") {
		return
	}
	ticket, err := h.service.SubmitTicket(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "IT ticket submitted successfully.", ticket)
}

// OpenTickets godoc
// @Summary Tickets that are not closed
// @Tags Tickets
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /tickets/open [get]
func (h *SupportHandler) OpenTickets(c *gin.Context) {
	tickets, err := h.service.OpenTickets(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tickets, nil)
}

// UpdateTicketStatus godoc
// @Summary Change a ticket's status
// @Tags Tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Param payload body dto.UpdateTicketStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tickets/{id} [put]
func (h *SupportHandler) UpdateTicketStatus(c *gin.Context) {
	var req dto.UpdateTicketStatusRequest
	if !bindJSON(c, &req, "Invalid ticket status.") {
		return
	}
	ticket, err := h.service.UpdateTicketStatus(c.Request.Context(), c.Param("id"), models.TicketStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Ticket status updated successfully.", ticket)
}
