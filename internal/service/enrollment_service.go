package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-portal-api/internal/dto"
	"github.com/noah-isme/campus-portal-api/internal/models"
	"github.com/noah-isme/campus-portal-api/internal/repository"
	appErrors "github.com/noah-isme/campus-portal-api/pkg/errors"
)

type enrollmentCourseRepository interface {
	FindByCode(ctx context.Context, courseCode string) (*models.Course, error)
	UpdateMembership(ctx context.Context, courseCode string, mutate repository.MembershipMutator) (*models.Course, error)
}

type enrollmentStudentRepository interface {
	FindStudent(ctx context.Context, studentID string) (*models.User, error)
	ListStudentNames(ctx context.Context, studentIDs []string) ([]models.StudentName, error)
}

var errInvalidAction = appErrors.Clone(appErrors.ErrValidation, "Invalid action.")

// EnrollmentService moves students between a course's enrolled and waitlisted lists.
type EnrollmentService struct {
	courses   enrollmentCourseRepository
	students  enrollmentStudentRepository
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(courses enrollmentCourseRepository, students enrollmentStudentRepository, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{courses: courses, students: students, metrics: metrics, validator: validate, logger: logger}
}

// Transition applies an enroll, waitlist or drop action. The capacity check and the write happen under
// the course row lock, so concurrent transitions on one course cannot overfill it.
func (s *EnrollmentService) Transition(ctx context.Context, courseCode string, req dto.EnrollmentTransitionRequest) (*dto.EnrollmentTransitionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Missing studentId or action.")
	}
	if !validAction(req.Action) {
		return nil, errInvalidAction
	}

	student, err := s.students.FindStudent(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Course or Student not found.")
		}
		return nil, appErrors.Internal(err, "Error updating enrollment status.")
	}

	var outcome models.EnrollmentOutcome
	course, err := s.courses.UpdateMembership(ctx, courseCode, func(c *models.Course) error {
		var applyErr error
		outcome, applyErr = applyTransition(c, req.StudentID, req.Action)
		return applyErr
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Course or Student not found.")
		}
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Internal(err, "Error updating enrollment status.")
	}

	s.metrics.RecordTransition(req.Action, outcome)
	s.logger.Info("enrollment transition",
		zap.String("course", courseCode),
		zap.String("student_id", req.StudentID),
		zap.String("action", string(req.Action)),
		zap.String("outcome", string(outcome)),
		zap.Int64("version", course.Version),
	)

	return &dto.EnrollmentTransitionResult{
		Message: transitionMessage(outcome, student.Name, req.StudentID, courseCode),
		Outcome: outcome,
		Course:  course,
	}, nil
}

// Enrollment returns a course with the names of its enrolled and waitlisted students.
func (s *EnrollmentService) Enrollment(ctx context.Context, courseCode string) (*dto.CourseEnrollment, error) {
	course, err := s.courses.FindByCode(ctx, courseCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Course not found.")
		}
		return nil, appErrors.Internal(err, "Error fetching enrollment details.")
	}

	ids := make([]string, 0, len(course.EnrolledStudents)+len(course.WaitlistStudents))
	ids = append(ids, course.EnrolledStudents...)
	ids = append(ids, course.WaitlistStudents...)
	names, err := s.students.ListStudentNames(ctx, ids)
	if err != nil {
		return nil, appErrors.Internal(err, "Error fetching enrollment details.")
	}
	byID := make(map[string]models.StudentName, len(names))
	for _, n := range names {
		byID[n.StudentID] = n
	}

	return &dto.CourseEnrollment{
		Course:   course,
		Enrolled: resolveNames(course.EnrolledStudents, byID),
		Waitlist: resolveNames(course.WaitlistStudents, byID),
	}, nil
}

// applyTransition removes studentID from both lists and re-inserts it according to action.
// A drop never promotes anyone from the waitlist.
func applyTransition(course *models.Course, studentID string, action models.EnrollmentAction) (models.EnrollmentOutcome, error) {
	if !validAction(action) {
		return "", errInvalidAction
	}
	course.EnrolledStudents = without(course.EnrolledStudents, studentID)
	course.WaitlistStudents = without(course.WaitlistStudents, studentID)

	switch action {
	case models.ActionEnroll:
		if len(course.EnrolledStudents) < course.MaxSeats {
			course.EnrolledStudents = append(course.EnrolledStudents, studentID)
			return models.OutcomeEnrolled, nil
		}
		course.WaitlistStudents = append(course.WaitlistStudents, studentID)
		return models.OutcomeWaitlistedCapacity, nil
	case models.ActionWaitlist:
		course.WaitlistStudents = append(course.WaitlistStudents, studentID)
		return models.OutcomeWaitlisted, nil
	default:
		return models.OutcomeDropped, nil
	}
}

func validAction(action models.EnrollmentAction) bool {
	switch action {
	case models.ActionEnroll, models.ActionWaitlist, models.ActionDrop:
		return true
	}
	return false
}

func transitionMessage(outcome models.EnrollmentOutcome, name, studentID, courseCode string) string {
	switch outcome {
	case models.OutcomeEnrolled:
		return fmt.Sprintf("Student %s (%s) successfully enrolled in %s.", name, studentID, courseCode)
	case models.OutcomeWaitlistedCapacity:
		return fmt.Sprintf("Course %s is full. Student %s (%s) added to waitlist.", courseCode, name, studentID)
	case models.OutcomeWaitlisted:
		return fmt.Sprintf("Student %s (%s) successfully placed on waitlist for %s.", name, studentID, courseCode)
	default:
		return fmt.Sprintf("Student %s (%s) successfully dropped from %s/waitlist.", name, studentID, courseCode)
	}
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func resolveNames(ids []string, byID map[string]models.StudentName) []models.StudentName {
	out := make([]models.StudentName, 0, len(ids))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			out = append(out, n)
		}
	}
	return out
}
