package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-portal-api/internal/dto"
	"github.com/noah-isme/campus-portal-api/internal/models"
	appErrors "github.com/noah-isme/campus-portal-api/pkg/errors"
)

type attendanceRepository interface {
	InsertIfAbsent(ctx context.Context, record *models.Attendance) (bool, error)
	ListByStudentAndDay(ctx context.Context, studentID string, day time.Time) ([]models.Attendance, error)
}

// AttendanceService logs class attendance, at most once per student, course and day.
type AttendanceService struct {
	repo      attendanceRepository
	students  studentLookup
	courses   courseLookup
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, students studentLookup, courses courseLookup, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, students: students, courses: courses, cache: cache, validator: validate, logger: logger}
}

// Log stores an attendance record. A second record for the same student, course and calendar day
// is rejected with Conflict by the unique key, not by a prior read.
func (s *AttendanceService) Log(ctx context.Context, req dto.LogAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Missing studentId, course, date or status.")
	}
	date, err := parseDay(req.Date)
	if err != nil {
		return nil, appErrors.Validation(err, "Invalid attendance date.")
	}
	if _, err := s.students.FindStudent(ctx, req.StudentID); err != nil {
		return nil, lookupError(err, "Student not found.", "Error logging attendance")
	}
	if _, err := s.courses.FindByCode(ctx, req.Course); err != nil {
		return nil, lookupError(err, "Course not found.", "Error logging attendance")
	}

	record := &models.Attendance{
		StudentID: req.StudentID,
		Course:    req.Course,
		Date:      date,
		Status:    models.AttendanceStatus(req.Status),
	}
	inserted, err := s.repo.InsertIfAbsent(ctx, record)
	if err != nil {
		return nil, appErrors.Internal(err, "Error logging attendance")
	}
	if !inserted {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Attendance already logged for this student and course on this date.")
	}
	s.cache.Invalidate(ctx, attendanceSummaryKey(req.StudentID))
	return record, nil
}

// ByDate returns a student's attendance for one calendar day.
func (s *AttendanceService) ByDate(ctx context.Context, studentID, rawDate string) ([]models.Attendance, error) {
	day, err := parseDay(rawDate)
	if err != nil {
		return nil, appErrors.Validation(err, "Invalid attendance date.")
	}
	records, err := s.repo.ListByStudentAndDay(ctx, studentID, day)
	if err != nil {
		return nil, appErrors.Internal(err, "Error fetching attendance by date")
	}
	return records, nil
}

func parseDay(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
