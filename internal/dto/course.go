package dto

// CreateCourseRequest adds a course taught by the acting staff member.
type CreateCourseRequest struct {
	CourseCode string `json:"courseCode" validate:"required"`
	Title      string `json:"title" validate:"required"`
	MaxSeats   int    `json:"maxSeats" validate:"required,gt=0"`
}

// UpdateCourseRequest replaces a course's descriptive fields.
type UpdateCourseRequest struct {
	Title           string `json:"title" validate:"required"`
	MaxSeats        int    `json:"maxSeats" validate:"required,gt=0"`
	TeacherUsername string `json:"teacherUsername" validate:"required"`
}

// CreateTimetableRequest adds one weekly slot.
type CreateTimetableRequest struct {
	Course          string `json:"course" validate:"required"`
	Day             string `json:"day" validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday"`
	StartTime       string `json:"startTime" validate:"required"`
	EndTime         string `json:"endTime" validate:"required"`
	TeacherUsername string `json:"teacherUsername" validate:"required"`
}
