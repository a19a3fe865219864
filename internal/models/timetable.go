package models

// Timetable is one weekly slot of a course.
type Timetable struct {
	ID              string `db:"id" json:"id"`
	Course          string `db:"course" json:"course"`
	Day             string `db:"day" json:"day"`
	StartTime       string `db:"start_time" json:"startTime"`
	EndTime         string `db:"end_time" json:"endTime"`
	TeacherUsername string `db:"teacher_username" json:"teacherUsername"`
}

// Weekdays lists valid timetable days in calendar order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
