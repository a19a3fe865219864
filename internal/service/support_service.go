package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-portal-api/internal/dto"
	"github.com/noah-isme/campus-portal-api/internal/models"
	appErrors "github.com/noah-isme/campus-portal-api/pkg/errors"
)

type appointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	ListPendingForTeacher(ctx context.Context, teacherUsername string) ([]models.Appointment, error)
}

type ticketRepository interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	ListOpen(ctx context.Context) ([]models.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status models.TicketStatus) (*models.Ticket, error)
}

type supportUserLookup interface {
	FindStudent(ctx context.Context, studentID string) (*models.User, error)
	FindStaff(ctx context.Context, username string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// SupportService handles advising appointments and IT tickets.
type SupportService struct {
	appointments appointmentRepository
	tickets      ticketRepository
	users        supportUserLookup
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewSupportService constructs the support service.
func NewSupportService(appointments appointmentRepository, tickets ticketRepository, users supportUserLookup, validate *validator.Validate, logger *zap.Logger) *SupportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupportService{appointments: appointments, tickets: tickets, users: users, validator: validate, logger: logger}
}

// BookAppointment books a pending meeting between an existing student and teacher.
func (s *SupportService) BookAppointment(ctx context.Context, req dto.BookAppointmentRequest) (*models.Appointment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Missing studentId, studentName, teacherUsername or date.")
	}
	if _, err := s.users.FindStudent(ctx, req.StudentID); err != nil {
		return nil, lookupError(err, "Student not found.", "Error booking appointment.")
	}
	if _, err := s.users.FindStaff(ctx, req.TeacherUsername); err != nil {
		return nil, lookupError(err, "Teacher not found.", "Error booking appointment.")
	}

	appt := &models.Appointment{
		StudentID:       req.StudentID,
		StudentName:     req.StudentName,
		TeacherUsername: req.TeacherUsername,
		Date:            req.Date.UTC(),
		Topic:           req.Topic,
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		return nil, appErrors.Internal(err, "Error booking appointment.")
	}
	return appt, nil
}

// PendingAppointments lists a teacher's appointments that are not completed, soonest first.
func (s *SupportService) PendingAppointments(ctx context.Context, teacherUsername string) ([]models.Appointment, error) {
	appts, err := s.appointments.ListPendingForTeacher(ctx, teacherUsername)
	if err != nil {
		return nil, appErrors.Internal(err, "Error fetching appointments.")
	}
	return appts, nil
}

// SubmitTicket opens a ticket. Student submitters must reference an existing student username.
func (s *SupportService) SubmitTicket(ctx context.Context, req dto.SubmitTicketRequest) (*models.Ticket, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Missing required fields for ticket submission.")
	}
	role := models.UserRole(req.SubmittedRole)
	if role == "" {
		role = models.RoleStudent
	}
	if role == models.RoleStudent {
		user, err := s.users.FindByUsername(ctx, req.SubmittedBy)
		if err != nil {
			return nil, lookupError(err, "Student not found.", "Error submitting ticket.")
		}
		if user.Role != models.RoleStudent {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found.")
		}
	}

	ticket := &models.Ticket{
		SubmittedBy:   req.SubmittedBy,
		SubmittedRole: role,
		Title:         req.Title,
		Description:   req.Description,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, appErrors.Internal(err, "Error submitting ticket.")
	}
	return ticket, nil
}

// OpenTickets returns tickets that are not closed, newest first.
func (s *SupportService) OpenTickets(ctx context.Context) ([]models.Ticket, error) {
	tickets, err := s.tickets.ListOpen(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "Error fetching tickets.")
	}
	return tickets, nil
}

// UpdateTicketStatus moves a ticket to Open, In Progress or Closed.
func (s *SupportService) UpdateTicketStatus(ctx context.Context, id string, status models.TicketStatus) (*models.Ticket, error) {
	switch status {
	case models.TicketOpen, models.TicketInProgress, models.TicketClosed:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "Invalid ticket status.")
	}
	ticket, err := s.tickets.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, lookupError(err, "Ticket not found.", "Error updating ticket status.")
	}
	return ticket, nil
}
