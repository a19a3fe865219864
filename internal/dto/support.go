package dto

import "time"

// BookAppointmentRequest books a meeting with a teacher.
type BookAppointmentRequest struct {
	StudentID       string    `json:"studentId" validate:"required"`
	StudentName     string    `json:"studentName" validate:"required"`
	TeacherUsername string    `json:"teacherUsername" validate:"required"`
	Date            time.Time `json:"date" validate:"required"`
	Topic           string    `json:"topic"`
}

// SubmitTicketRequest opens an IT support ticket. SubmittedRole defaults to student.
type SubmitTicketRequest struct {
	SubmittedBy   string `json:"submittedBy" validate:"required"`
	SubmittedRole string `json:"submittedRole" validate:"omitempty,oneof=student teacher admin"`
	Title         string `json:"title" validate:"required"`
	Description   string `json:"description" validate:"required"`
}

// UpdateTicketStatusRequest changes a ticket's status.
type UpdateTicketStatusRequest struct {
	Status string `json:"status"`
}

// AnnouncementRequest creates or edits an announcement.
type AnnouncementRequest struct {
	Title      string `json:"title" validate:"required"`
	Content    string `json:"content" validate:"required"`
	PostedBy   string `json:"postedBy"`
	TargetRole string `json:"targetRole" validate:"required,audience"`
}
