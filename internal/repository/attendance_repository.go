package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-portal-api/internal/models"
)

// AttendanceRepository persists attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// InsertIfAbsent stores the record unless one already exists for the same student, course and calendar
// day. It reports false when the unique key was already taken.
func (r *AttendanceRepository) InsertIfAbsent(ctx context.Context, record *models.Attendance) (bool, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Status == "" {
		record.Status = models.AttendancePresent
	}
	record.AttendanceDate = calendarDay(record.Date)

	const query = `INSERT INTO attendance (id, student_id, course, date, attendance_date, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (student_id, course, attendance_date) DO NOTHING
        RETURNING id`
	var id string
	err := r.db.GetContext(ctx, &id, query, record.ID, record.StudentID, record.Course, record.Date, record.AttendanceDate, record.Status)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert attendance: %w", err)
	}
	return true, nil
}

// SummaryByStudent counts classes and presences per course for a student.
func (r *AttendanceRepository) SummaryByStudent(ctx context.Context, studentID string) ([]models.AttendanceCourseSummary, error) {
	const query = `SELECT course, COUNT(*) AS total_classes,
        COUNT(*) FILTER (WHERE status = $2) AS present_count
        FROM attendance WHERE student_id = $1
        GROUP BY course ORDER BY course ASC`
	var rows []models.AttendanceCourseSummary
	if err := r.db.SelectContext(ctx, &rows, query, studentID, models.AttendancePresent); err != nil {
		return nil, fmt.Errorf("summarize attendance: %w", err)
	}
	return rows, nil
}

// ListByStudentAndDay returns a student's records for one calendar day ordered by time.
func (r *AttendanceRepository) ListByStudentAndDay(ctx context.Context, studentID string, day time.Time) ([]models.Attendance, error) {
	const query = `SELECT id, student_id, course, date, attendance_date, status FROM attendance
        WHERE student_id = $1 AND attendance_date = $2 ORDER BY date ASC`
	var rows []models.Attendance
	if err := r.db.SelectContext(ctx, &rows, query, studentID, calendarDay(day)); err != nil {
		return nil, fmt.Errorf("list attendance by day: %w", err)
	}
	return rows, nil
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
