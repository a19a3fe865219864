package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-portal-api/internal/dto"
	"github.com/noah-isme/campus-portal-api/internal/models"
	appErrors "github.com/noah-isme/campus-portal-api/pkg/errors"
)

type timetableRepository interface {
	Create(ctx context.Context, slot *models.Timetable) error
	ListByTeacher(ctx context.Context, username string) ([]models.Timetable, error)
	ListByCourses(ctx context.Context, courseCodes []string) ([]models.Timetable, error)
}

type timetableUserLookup interface {
	FindStaff(ctx context.Context, username string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type studentCourseLookup interface {
	FindByCode(ctx context.Context, courseCode string) (*models.Course, error)
	ListCodesForStudent(ctx context.Context, studentID string) ([]string, error)
}

// TimetableService manages weekly course slots.
type TimetableService struct {
	repo      timetableRepository
	users     timetableUserLookup
	courses   studentCourseLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService constructs the timetable service.
func NewTimetableService(repo timetableRepository, users timetableUserLookup, courses studentCourseLookup, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{repo: repo, users: users, courses: courses, validator: validate, logger: logger}
}

// Create adds a slot for an existing course taught by an existing teacher or admin.
func (s *TimetableService) Create(ctx context.Context, req dto.CreateTimetableRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Error adding timetable slot")
	}
	if _, err := s.users.FindStaff(ctx, req.TeacherUsername); err != nil {
		return nil, lookupError(err, "Teacher not found.", "Error adding timetable slot")
	}
	if _, err := s.courses.FindByCode(ctx, req.Course); err != nil {
		return nil, lookupError(err, "Course not found.", "Error adding timetable slot")
	}

	slot := &models.Timetable{
		Course:          req.Course,
		Day:             req.Day,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		TeacherUsername: req.TeacherUsername,
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, appErrors.Internal(err, "Error adding timetable slot")
	}
	return slot, nil
}

// ForRole returns the schedule for a user. Staff see the slots they teach; students see slots of
// courses they are enrolled or waitlisted in. Unknown students get an empty schedule.
func (s *TimetableService) ForRole(ctx context.Context, role models.UserRole, username string) ([]models.Timetable, error) {
	switch role {
	case models.RoleTeacher, models.RoleAdmin:
		slots, err := s.repo.ListByTeacher(ctx, username)
		if err != nil {
			return nil, appErrors.Internal(err, "Error fetching schedule")
		}
		return slots, nil
	case models.RoleStudent:
		return s.forStudent(ctx, username)
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Unauthorized role for timetable access.")
	}
}

func (s *TimetableService) forStudent(ctx context.Context, username string) ([]models.Timetable, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []models.Timetable{}, nil
		}
		return nil, appErrors.Internal(err, "Error fetching schedule")
	}
	if user.StudentKey() == "" {
		return []models.Timetable{}, nil
	}
	codes, err := s.courses.ListCodesForStudent(ctx, user.StudentKey())
	if err != nil {
		return nil, appErrors.Internal(err, "Error fetching schedule")
	}
	slots, err := s.repo.ListByCourses(ctx, codes)
	if err != nil {
		return nil, appErrors.Internal(err, "Error fetching schedule")
	}
	return slots, nil
}
