package models

import "time"

// AppointmentStatus tracks an advising appointment.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "Pending"
	AppointmentConfirmed AppointmentStatus = "Confirmed"
	AppointmentCompleted AppointmentStatus = "Completed"
)

// Appointment is a meeting booked by a student with a teacher.
type Appointment struct {
	ID              string            `db:"id" json:"id"`
	StudentID       string            `db:"student_id" json:"studentId"`
	StudentName     string            `db:"student_name" json:"studentName"`
	TeacherUsername string            `db:"teacher_username" json:"teacherUsername"`
	Date            time.Time         `db:"date" json:"date"`
	Topic           string            `db:"topic" json:"topic"`
	Status          AppointmentStatus `db:"status" json:"status"`
}
