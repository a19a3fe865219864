package dto

import "github.com/noah-isme/campus-portal-api/internal/models"

// EnrollmentTransitionRequest moves a student relative to a course.
type EnrollmentTransitionRequest struct {
	StudentID string                  `json:"studentId" validate:"required"`
	Action    models.EnrollmentAction `json:"action" validate:"required"`
}

// EnrollmentTransitionResult is returned after a transition is persisted.
type EnrollmentTransitionResult struct {
	Message string                   `json:"message"`
	Outcome models.EnrollmentOutcome `json:"outcome"`
	Course  *models.Course           `json:"course"`
}

// CourseEnrollment shows a course with resolved student names.
type CourseEnrollment struct {
	Course   *models.Course       `json:"course"`
	Enrolled []models.StudentName `json:"enrolled"`
	Waitlist []models.StudentName `json:"waitlist"`
}
