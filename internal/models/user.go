package models

import (
	"time"

	"github.com/lib/pq"
)

// UserRole represents the available portal roles.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// IsStaff reports whether the role may perform staff-only operations.
func (r UserRole) IsStaff() bool {
	return r == RoleTeacher || r == RoleAdmin
}

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// User represents an application user stored in the users table.
type User struct {
	ID            string         `db:"id" json:"id"`
	Username      string         `db:"username" json:"username"`
	Password      string         `db:"password" json:"-"`
	Role          UserRole       `db:"role" json:"role"`
	StudentID     *string        `db:"student_id" json:"studentId,omitempty"`
	Name          string         `db:"name" json:"name"`
	CoursesTaught pq.StringArray `db:"courses_taught" json:"coursesTaught,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updatedAt"`
}

// StudentKey returns the student identifier or an empty string for staff accounts.
func (u *User) StudentKey() string {
	if u == nil || u.StudentID == nil {
		return ""
	}
	return *u.StudentID
}

// StudentName pairs a student identifier with its display name.
type StudentName struct {
	StudentID string `db:"student_id" json:"studentId"`
	Name      string `db:"name" json:"name"`
}
