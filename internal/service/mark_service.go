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

const defaultMaxScore = 100

type markRepository interface {
	Upsert(ctx context.Context, mark *models.Mark) (*models.Mark, error)
}

type studentLookup interface {
	FindStudent(ctx context.Context, studentID string) (*models.User, error)
}

type courseLookup interface {
	FindByCode(ctx context.Context, courseCode string) (*models.Course, error)
}

// MarkService records individual marks and class averages.
type MarkService struct {
	repo      markRepository
	students  studentLookup
	courses   courseLookup
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMarkService constructs the mark service.
func NewMarkService(repo markRepository, students studentLookup, courses courseLookup, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *MarkService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarkService{repo: repo, students: students, courses: courses, cache: cache, validator: validate, logger: logger}
}

// Record upserts a student's mark by (student, course, exam type). The reserved class-average
// identity is rejected here; class averages go through RecordClassAverage.
func (s *MarkService) Record(ctx context.Context, req dto.RecordMarkRequest) (*models.Mark, error) {
	if req.StudentID == models.ClassAverageID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Cannot set individual mark for CLASS_AVG identifier.")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Missing studentId, course, examType or score.")
	}
	if _, err := s.students.FindStudent(ctx, req.StudentID); err != nil {
		return nil, lookupError(err, "Student not found.", "Error recording mark")
	}
	if err := s.requireCourse(ctx, req.Course); err != nil {
		return nil, err
	}

	mark, err := s.repo.Upsert(ctx, &models.Mark{
		Kind:      models.MarkIndividual,
		StudentID: req.StudentID,
		Course:    req.Course,
		ExamType:  req.ExamType,
		Score:     req.Score,
		MaxScore:  maxScoreOrDefault(req.MaxScore),
	})
	if err != nil {
		return nil, appErrors.Internal(err, "Error recording mark")
	}
	s.cache.Invalidate(ctx, marksAnalyticsKey(req.StudentID))
	return mark, nil
}

// RecordClassAverage upserts the aggregate mark for a course exam.
func (s *MarkService) RecordClassAverage(ctx context.Context, req dto.ClassAverageRequest) (*models.Mark, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Missing course, examType or score.")
	}
	if err := s.requireCourse(ctx, req.Course); err != nil {
		return nil, err
	}

	mark, err := s.repo.Upsert(ctx, &models.Mark{
		Kind:     models.MarkAggregate,
		Course:   req.Course,
		ExamType: req.ExamType,
		Score:    req.Score,
		MaxScore: maxScoreOrDefault(req.MaxScore),
	})
	if err != nil {
		return nil, appErrors.Internal(err, "Error recording class average")
	}
	s.cache.Invalidate(ctx, analyticsCachePattern)
	return mark, nil
}

func (s *MarkService) requireCourse(ctx context.Context, courseCode string) error {
	if _, err := s.courses.FindByCode(ctx, courseCode); err != nil {
		return lookupError(err, "Course not found.", "Error recording mark")
	}
	return nil
}

func maxScoreOrDefault(v float64) float64 {
	if v <= 0 {
		return defaultMaxScore
	}
	return v
}

// lookupError maps a repository lookup failure to NotFound or Internal.
func lookupError(err error, notFound, internal string) *appErrors.Error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Internal(err, internal)
}
