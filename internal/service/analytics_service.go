package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-portal-api/internal/models"
	appErrors "github.com/noah-isme/campus-portal-api/pkg/errors"
)

type analyticsMarkRepository interface {
	ListForAnalytics(ctx context.Context, studentID string) ([]models.Mark, error)
}

type analyticsAttendanceRepository interface {
	SummaryByStudent(ctx context.Context, studentID string) ([]models.AttendanceCourseSummary, error)
}

// AnalyticsService compares a student's marks against class averages and summarises attendance.
type AnalyticsService struct {
	marks      analyticsMarkRepository
	attendance analyticsAttendanceRepository
	cache      *CacheService
	logger     *zap.Logger
}

// NewAnalyticsService constructs the analytics service.
func NewAnalyticsService(marks analyticsMarkRepository, attendance analyticsAttendanceRepository, cache *CacheService, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{marks: marks, attendance: attendance, cache: cache, logger: logger}
}

// MarksAnalytics groups the student's marks by course and class averages by course and exam type.
// The boolean reports whether the result came from cache.
func (s *AnalyticsService) MarksAnalytics(ctx context.Context, studentID string) (*models.MarksAnalytics, bool, error) {
	key := marksAnalyticsKey(studentID)
	var cached models.MarksAnalytics
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	marks, err := s.marks.ListForAnalytics(ctx, studentID)
	if err != nil {
		return nil, false, appErrors.Internal(err, "Error fetching marks analytics")
	}
	result := partitionMarks(marks, studentID)
	_ = s.cache.Set(ctx, key, result, 0)
	return result, false, nil
}

// AttendanceSummary returns per-course attendance percentages. Courses without records are absent.
func (s *AnalyticsService) AttendanceSummary(ctx context.Context, studentID string) ([]models.AttendanceCourseSummary, bool, error) {
	key := attendanceSummaryKey(studentID)
	var cached []models.AttendanceCourseSummary
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, true, nil
	}

	rows, err := s.attendance.SummaryByStudent(ctx, studentID)
	if err != nil {
		return nil, false, appErrors.Internal(err, "Error calculating attendance summary.")
	}
	summary := make([]models.AttendanceCourseSummary, 0, len(rows))
	for _, row := range rows {
		if row.TotalClasses == 0 {
			continue
		}
		row.Percentage = float64(row.PresentCount) / float64(row.TotalClasses) * 100
		summary = append(summary, row)
	}
	_ = s.cache.Set(ctx, key, summary, 0)
	return summary, false, nil
}

func partitionMarks(marks []models.Mark, studentID string) *models.MarksAnalytics {
	result := &models.MarksAnalytics{
		StudentScores: map[string][]models.Mark{},
		ClassAverages: map[string]map[string]float64{},
	}
	for _, m := range marks {
		switch {
		case m.Kind == models.MarkAggregate:
			if result.ClassAverages[m.Course] == nil {
				result.ClassAverages[m.Course] = map[string]float64{}
			}
			result.ClassAverages[m.Course][m.ExamType] = m.Score
		case m.StudentID == studentID:
			result.StudentScores[m.Course] = append(result.StudentScores[m.Course], m)
		}
	}
	return result
}
