package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-portal-api/internal/dto"
	"github.com/noah-isme/campus-portal-api/internal/models"
	"github.com/noah-isme/campus-portal-api/internal/repository"
	appErrors "github.com/noah-isme/campus-portal-api/pkg/errors"
)

type courseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	UpdateDetails(ctx context.Context, courseCode, title string, maxSeats int, teacherUsername string) (*models.Course, error)
	ListAll(ctx context.Context) ([]models.CourseListing, error)
	ListByTeacher(ctx context.Context, teacherUsername string) ([]models.Course, error)
}

type courseStaffLookup interface {
	FindStaff(ctx context.Context, username string) (*models.User, error)
}

// CourseService manages the course catalogue.
type CourseService struct {
	repo      courseRepository
	staff     courseStaffLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, staff courseStaffLookup, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, staff: staff, validator: validate, logger: logger}
}

// Create adds a course taught by the acting user.
func (s *CourseService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil || actor == nil || actor.Username == "" {
		return nil, appErrors.Validation(err, "Missing course code, title, max seats, or teacher username.")
	}
	course := &models.Course{
		CourseCode:      req.CourseCode,
		Title:           req.Title,
		TeacherUsername: actor.Username,
		MaxSeats:        req.MaxSeats,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "Course Code already exists.")
		}
		return nil, appErrors.Internal(err, "Error adding course.")
	}
	return course, nil
}

// Update replaces title, capacity and teacher. Capacity cannot drop below the enrolled count.
func (s *CourseService) Update(ctx context.Context, courseCode string, req dto.UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Missing title, max seats or teacher username.")
	}
	if _, err := s.staff.FindStaff(ctx, req.TeacherUsername); err != nil {
		return nil, lookupError(err, "Teacher not found.", "Error updating course.")
	}
	course, err := s.repo.UpdateDetails(ctx, courseCode, req.Title, req.MaxSeats, req.TeacherUsername)
	if err != nil {
		if errors.Is(err, repository.ErrCapacityBelowEnrollment) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "Max seats cannot be lower than the number of enrolled students.")
		}
		return nil, lookupError(err, "Course not found.", "Error updating course.")
	}
	return course, nil
}

// ListAll returns the catalogue with teacher names and membership counts.
func (s *CourseService) ListAll(ctx context.Context) ([]models.CourseListing, error) {
	courses, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "Error fetching course list.")
	}
	return courses, nil
}

// ListMine returns the courses taught by the acting user.
func (s *CourseService) ListMine(ctx context.Context, actor *models.JWTClaims) ([]models.Course, error) {
	if actor == nil || actor.Username == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "Missing user identity.")
	}
	courses, err := s.repo.ListByTeacher(ctx, actor.Username)
	if err != nil {
		return nil, appErrors.Internal(err, "Error fetching courses taught by this user.")
	}
	return courses, nil
}
