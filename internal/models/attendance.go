package models

import "time"

// AttendanceStatus records presence for a class meeting.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceAbsent  AttendanceStatus = "Absent"
	AttendanceLate    AttendanceStatus = "Late"
)

// Attendance is one student's presence for one course on one calendar day.
type Attendance struct {
	ID             string           `db:"id" json:"id"`
	StudentID      string           `db:"student_id" json:"studentId"`
	Course         string           `db:"course" json:"course"`
	Date           time.Time        `db:"date" json:"date"`
	AttendanceDate time.Time        `db:"attendance_date" json:"-"`
	Status         AttendanceStatus `db:"status" json:"status"`
}

// AttendanceCourseSummary aggregates attendance per course.
type AttendanceCourseSummary struct {
	Course       string  `db:"course" json:"course"`
	TotalClasses int     `db:"total_classes" json:"totalClasses"`
	PresentCount int     `db:"present_count" json:"presentCount"`
	Percentage   float64 `db:"-" json:"percentage"`
}
