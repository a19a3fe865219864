package dto

// RecordMarkRequest records one student's score for an exam.
type RecordMarkRequest struct {
	StudentID string  `json:"studentId" validate:"required"`
	Course    string  `json:"course" validate:"required"`
	ExamType  string  `json:"examType" validate:"required"`
	Score     float64 `json:"score" validate:"gte=0"`
	MaxScore  float64 `json:"maxScore" validate:"gte=0"`
}

// ClassAverageRequest sets the class average for a course exam.
type ClassAverageRequest struct {
	Course   string  `json:"course" validate:"required"`
	ExamType string  `json:"examType" validate:"required"`
	Score    float64 `json:"score" validate:"gte=0"`
	MaxScore float64 `json:"maxScore" validate:"gte=0"`
}

// LogAttendanceRequest records presence for one class meeting. Date accepts YYYY-MM-DD or RFC 3339.
type LogAttendanceRequest struct {
	StudentID string `json:"studentId" validate:"required"`
	Course    string `json:"course" validate:"required"`
	Date      string `json:"date" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=Present Absent Late"`
}
