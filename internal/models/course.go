package models

import (
	"time"

	"github.com/lib/pq"
)

// Course is a capacity-bounded offering with ordered enrolled and waitlisted student ids.
type Course struct {
	ID               string         `db:"id" json:"id"`
	CourseCode       string         `db:"course_code" json:"courseCode"`
	Title            string         `db:"title" json:"title"`
	TeacherUsername  string         `db:"teacher_username" json:"teacherUsername"`
	MaxSeats         int            `db:"max_seats" json:"maxSeats"`
	EnrolledStudents pq.StringArray `db:"enrolled_students" json:"enrolledStudents"`
	WaitlistStudents pq.StringArray `db:"waitlist_students" json:"waitlistStudents"`
	Version          int64          `db:"version" json:"version"`
	CreatedAt        time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updatedAt"`
}

// CourseListing is the public course catalogue row.
type CourseListing struct {
	Course
	TeacherName   string `db:"teacher_name" json:"teacherName"`
	EnrolledCount int    `db:"enrolled_count" json:"enrolledCount"`
	WaitlistCount int    `db:"waitlist_count" json:"waitlistCount"`
}

// EnrollmentAction is a requested membership transition.
type EnrollmentAction string

const (
	ActionEnroll   EnrollmentAction = "enroll"
	ActionWaitlist EnrollmentAction = "waitlist"
	ActionDrop     EnrollmentAction = "drop"
)

// EnrollmentOutcome describes where a student ended up after a transition.
type EnrollmentOutcome string

const (
	OutcomeEnrolled           EnrollmentOutcome = "enrolled"
	OutcomeWaitlisted         EnrollmentOutcome = "waitlisted"
	OutcomeWaitlistedCapacity EnrollmentOutcome = "waitlisted_capacity"
	OutcomeDropped            EnrollmentOutcome = "dropped"
)
