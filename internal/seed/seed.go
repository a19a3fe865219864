// Package seed loads the portal's sample data set into an empty record store.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-portal-api/internal/models"
	"github.com/noah-isme/campus-portal-api/internal/repository"
)

const defaultPassword = "pass"

// Seeder writes the sample data through the regular repositories.
type Seeder struct {
	db            *sqlx.DB
	users         *repository.UserRepository
	courses       *repository.CourseRepository
	fees          *repository.FeeRepository
	appointments  *repository.AppointmentRepository
	tickets       *repository.TicketRepository
	marks         *repository.MarkRepository
	timetables    *repository.TimetableRepository
	attendance    *repository.AttendanceRepository
	announcements *repository.AnnouncementRepository
	logger        *zap.Logger
}

// New constructs a seeder.
func New(db *sqlx.DB, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{
		db:            db,
		users:         repository.NewUserRepository(db),
		courses:       repository.NewCourseRepository(db),
		fees:          repository.NewFeeRepository(db),
		appointments:  repository.NewAppointmentRepository(db),
		tickets:       repository.NewTicketRepository(db),
		marks:         repository.NewMarkRepository(db),
		timetables:    repository.NewTimetableRepository(db),
		attendance:    repository.NewAttendanceRepository(db),
		announcements: repository.NewAnnouncementRepository(db),
		logger:        logger,
	}
}

// Run loads the sample data when users, courses or fees are empty, or unconditionally when force is set.
// Every table is cleared first so partial data never survives. It reports whether data was written.
func (s *Seeder) Run(ctx context.Context, force bool) (bool, error) {
	if !force {
		incomplete, err := s.incomplete(ctx)
		if err != nil {
			return false, err
		}
		if !incomplete {
			s.logger.Info("sample data already present, skipping")
			return false, nil
		}
	}

	if err := s.reset(ctx); err != nil {
		return false, err
	}
	if err := s.load(ctx); err != nil {
		return false, err
	}
	s.logger.Info("sample data created")
	return true, nil
}

func (s *Seeder) incomplete(ctx context.Context) (bool, error) {
	const query = `SELECT NOT EXISTS (SELECT 1 FROM users) OR NOT EXISTS (SELECT 1 FROM courses) OR NOT EXISTS (SELECT 1 FROM fees)`
	var incomplete bool
	if err := s.db.GetContext(ctx, &incomplete, query); err != nil {
		return false, fmt.Errorf("check existing data: %w", err)
	}
	return incomplete, nil
}

func (s *Seeder) reset(ctx context.Context) error {
	const query = `TRUNCATE users, courses, fees, appointments, tickets, marks, timetables, attendance, announcements`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("clear tables: %w", err)
	}
	return nil
}

func (s *Seeder) load(ctx context.Context) error {
	for _, u := range sampleUsers() {
		if err := s.users.Create(ctx, u, nil); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
	}
	for _, c := range sampleCourses() {
		if err := s.courses.Create(ctx, c); err != nil {
			return fmt.Errorf("seed course %s: %w", c.CourseCode, err)
		}
	}
	due := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	for _, f := range []models.Fee{
		{StudentID: "S001", AmountDue: 5000, PaymentStatus: models.PaymentFullyPaid},
		{StudentID: "S002", AmountDue: 5000, PaymentStatus: models.PaymentUnpaid},
		{StudentID: "S003", AmountDue: 5000, PaymentStatus: models.PaymentPartiallyPaid},
		{StudentID: "S004", AmountDue: 4500, PaymentStatus: models.PaymentFullyPaid},
	} {
		fee := f
		fee.DueDate = due
		fee.Semester = "Fall 2025"
		if err := s.fees.Create(ctx, &fee); err != nil {
			return fmt.Errorf("seed fee for %s: %w", fee.StudentID, err)
		}
	}

	if err := s.appointments.Create(ctx, &models.Appointment{
		StudentID:       "S001",
		StudentName:     "Alice Smith",
		TeacherUsername: "amita",
		Date:            time.Date(2025, time.November, 1, 10, 0, 0, 0, time.UTC),
		Topic:           "Course Selection",
	}); err != nil {
		return fmt.Errorf("seed appointment: %w", err)
	}
	if err := s.tickets.Create(ctx, &models.Ticket{
		SubmittedBy:   "student1",
		SubmittedRole: models.RoleStudent,
		Title:         "LMS Password Reset",
		Description:   "Can't log into the Learning Management System.",
	}); err != nil {
		return fmt.Errorf("seed ticket: %w", err)
	}

	for _, m := range []models.Mark{
		{Kind: models.MarkIndividual, StudentID: "S001", Course: "MATH101", ExamType: "Midterm", Score: 85, MaxScore: 100},
		{Kind: models.MarkAggregate, Course: "MATH101", ExamType: "Midterm", Score: 78, MaxScore: 100},
	} {
		mark := m
		if _, err := s.marks.Upsert(ctx, &mark); err != nil {
			return fmt.Errorf("seed mark: %w", err)
		}
	}

	for _, t := range []models.Timetable{
		{Course: "MATH101", Day: "Monday", StartTime: "09:00", EndTime: "10:00", TeacherUsername: "mehak"},
		{Course: "CS101", Day: "Tuesday", StartTime: "10:00", EndTime: "11:30", TeacherUsername: "amita"},
		{Course: "ENG101", Day: "Wednesday", StartTime: "14:00", EndTime: "15:00", TeacherUsername: "sachin"},
	} {
		slot := t
		if err := s.timetables.Create(ctx, &slot); err != nil {
			return fmt.Errorf("seed timetable: %w", err)
		}
	}

	for _, a := range []models.Attendance{
		{StudentID: "S001", Course: "MATH101", Date: time.Date(2025, time.October, 20, 0, 0, 0, 0, time.UTC), Status: models.AttendancePresent},
		{StudentID: "S001", Course: "CS101", Date: time.Date(2025, time.October, 22, 0, 0, 0, 0, time.UTC), Status: models.AttendancePresent},
	} {
		record := a
		if _, err := s.attendance.InsertIfAbsent(ctx, &record); err != nil {
			return fmt.Errorf("seed attendance: %w", err)
		}
	}

	for _, a := range []models.Announcement{
		{Title: "Welcome Back!", Content: "Check your schedules.", PostedBy: "Admin", TargetRole: models.AudienceAll},
		{Title: "Faculty Meeting Next Week", Content: "Mandatory meeting on Tuesday.", PostedBy: "Admin", TargetRole: string(models.RoleTeacher)},
		{Title: "Important Math Update", Content: "Math midterm rescheduled.", PostedBy: "Dr. Bob Johnson", TargetRole: string(models.RoleStudent)},
	} {
		item := a
		if err := s.announcements.Create(ctx, &item); err != nil {
			return fmt.Errorf("seed announcement: %w", err)
		}
	}
	return nil
}

func sampleUsers() []*models.User {
	staff := func(username string, role models.UserRole, name string, courses ...string) *models.User {
		return &models.User{Username: username, Password: defaultPassword, Role: role, Name: name, CoursesTaught: pq.StringArray(courses)}
	}
	student := func(username, studentID, name string) *models.User {
		id := studentID
		return &models.User{Username: username, Password: defaultPassword, Role: models.RoleStudent, StudentID: &id, Name: name}
	}
	return []*models.User{
		staff("amita", models.RoleTeacher, "Amita Sharma", "CS101", "PHY101"),
		staff("sachin", models.RoleTeacher, "Sachin Verma", "ENG101"),
		staff("mehak", models.RoleTeacher, "Mehak Kaur", "MATH101"),
		staff("admin1", models.RoleAdmin, "Portal Admin", "CS101", "PHY101"),
		student("student1", "S001", "Alice Smith"),
		student("student2", "S002", "Bob Jones"),
		student("student3", "S003", "Charlie Brown"),
		student("student4", "S004", "Diana Prince"),
	}
}

func sampleCourses() []*models.Course {
	return []*models.Course{
		{CourseCode: "CS101", Title: "Intro to Programming", TeacherUsername: "amita", MaxSeats: 4,
			EnrolledStudents: pq.StringArray{"S001", "S002", "S003"}, WaitlistStudents: pq.StringArray{"S004"}},
		{CourseCode: "MATH101", Title: "Calculus I", TeacherUsername: "mehak", MaxSeats: 3,
			EnrolledStudents: pq.StringArray{"S001", "S002"}, WaitlistStudents: pq.StringArray{"S003"}},
		{CourseCode: "ENG101", Title: "Academic Writing", TeacherUsername: "sachin", MaxSeats: 5,
			EnrolledStudents: pq.StringArray{"S004"}},
	}
}
