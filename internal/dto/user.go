package dto

// CreateStudentRequest is the staff payload for adding a student account.
type CreateStudentRequest struct {
	Name      string `json:"name" validate:"required"`
	StudentID string `json:"studentId" validate:"required"`
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

// UpdateStudentRequest changes a student's profile. Changing studentId or username rewrites references.
type UpdateStudentRequest struct {
	Name      string `json:"name" validate:"required"`
	StudentID string `json:"studentId" validate:"required"`
	Username  string `json:"username" validate:"required"`
}
