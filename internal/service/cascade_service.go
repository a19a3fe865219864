package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-portal-api/internal/dto"
	"github.com/noah-isme/campus-portal-api/internal/models"
	"github.com/noah-isme/campus-portal-api/internal/repository"
	appErrors "github.com/noah-isme/campus-portal-api/pkg/errors"
)

type cascadeRunner interface {
	Run(ctx context.Context, steps []repository.CascadeStep) ([]repository.CascadeStepResult, error)
}

type cascadeUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// CascadeService deletes students and courses together with every record that references them.
type CascadeService struct {
	runner  cascadeRunner
	users   cascadeUserRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewCascadeService constructs the cascade service.
func NewCascadeService(runner cascadeRunner, users cascadeUserRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *CascadeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CascadeService{runner: runner, users: users, cache: cache, metrics: metrics, logger: logger}
}

// DeleteStudent removes a student account and its marks, attendance, fees, appointments, tickets
// and course memberships in one transaction.
func (s *CascadeService) DeleteStudent(ctx context.Context, userID string) (*dto.CascadeReport, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found.")
		}
		return nil, appErrors.Internal(err, "Error deleting student.")
	}
	if user.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found.")
	}

	report, err := s.run(ctx, "student", user.StudentKey(), repository.StudentCascade(user))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found.")
		}
		return nil, appErrors.Internal(err, "Error deleting student.")
	}
	s.cache.Invalidate(ctx, feeReportCachePattern, marksAnalyticsKey(user.StudentKey()), attendanceSummaryKey(user.StudentKey()))
	return report, nil
}

// DeleteCourse removes a course and its timetable slots, marks and attendance in one transaction.
func (s *CascadeService) DeleteCourse(ctx context.Context, courseCode string) (*dto.CascadeReport, error) {
	report, err := s.run(ctx, "course", courseCode, repository.CourseCascade(courseCode))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Course not found.")
		}
		return nil, appErrors.Internal(err, "Error deleting course.")
	}
	s.cache.Invalidate(ctx, analyticsCachePattern)
	return report, nil
}

func (s *CascadeService) run(ctx context.Context, entity, key string, steps []repository.CascadeStep) (*dto.CascadeReport, error) {
	start := time.Now()
	results, err := s.runner.Run(ctx, steps)
	s.metrics.ObserveDBQuery("cascade_"+entity, time.Since(start))
	if err != nil {
		var stepErr *repository.CascadeStepError
		if errors.As(err, &stepErr) {
			s.metrics.RecordCascadeStep(entity, stepErr.Step, "failed")
			s.logger.Error("cascade rolled back",
				zap.String("entity", entity),
				zap.String("key", key),
				zap.String("step", stepErr.Step),
				zap.Error(stepErr.Err),
			)
		}
		return nil, err
	}

	report := &dto.CascadeReport{Entity: entity, Key: key, Steps: make([]dto.CascadeStepReport, 0, len(results))}
	for _, r := range results {
		s.metrics.RecordCascadeStep(entity, r.Name, "applied")
		report.Steps = append(report.Steps, dto.CascadeStepReport{Step: r.Name, Collection: r.Collection, Affected: r.Affected})
	}
	s.logger.Info("cascade committed", zap.String("entity", entity), zap.String("key", key), zap.Int("steps", len(results)))
	return report, nil
}
