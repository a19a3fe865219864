package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-portal-api/internal/models"
)

// MarkRepository persists individual marks and class aggregates.
type MarkRepository struct {
	db *sqlx.DB
}

// NewMarkRepository constructs the repository.
func NewMarkRepository(db *sqlx.DB) *MarkRepository {
	return &MarkRepository{db: db}
}

// Upsert writes a mark keyed by (kind, student_id, course, exam_type) and returns the stored row.
func (r *MarkRepository) Upsert(ctx context.Context, mark *models.Mark) (*models.Mark, error) {
	if mark.ID == "" {
		mark.ID = uuid.NewString()
	}
	if mark.Kind == models.MarkAggregate {
		mark.StudentID = ""
	}
	const query = `INSERT INTO marks (id, kind, student_id, course, exam_type, score, max_score)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (kind, student_id, course, exam_type)
        DO UPDATE SET score = EXCLUDED.score, max_score = EXCLUDED.max_score
        RETURNING id, kind, student_id, course, exam_type, score, max_score`
	var stored models.Mark
	if err := r.db.GetContext(ctx, &stored, query, mark.ID, mark.Kind, mark.StudentID, mark.Course, mark.ExamType, mark.Score, mark.MaxScore); err != nil {
		return nil, fmt.Errorf("upsert mark: %w", err)
	}
	return &stored, nil
}

// ListForAnalytics returns the student's individual marks together with every class aggregate,
// ordered by course then exam type.
func (r *MarkRepository) ListForAnalytics(ctx context.Context, studentID string) ([]models.Mark, error) {
	const query = `SELECT id, kind, student_id, course, exam_type, score, max_score FROM marks
        WHERE (kind = $1 AND student_id = $2) OR kind = $3
        ORDER BY course ASC, exam_type ASC`
	var marks []models.Mark
	if err := r.db.SelectContext(ctx, &marks, query, models.MarkIndividual, studentID, models.MarkAggregate); err != nil {
		return nil, fmt.Errorf("list marks for analytics: %w", err)
	}
	return marks, nil
}
