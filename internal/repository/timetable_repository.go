package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/campus-portal-api/internal/models"
)

// TimetableRepository persists weekly timetable slots.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

const timetableOrder = `ORDER BY array_position($2::text[], day), start_time ASC`

// Create stores a timetable slot.
func (r *TimetableRepository) Create(ctx context.Context, slot *models.Timetable) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	const query = `INSERT INTO timetables (id, course, day, start_time, end_time, teacher_username)
        VALUES (:id, :course, :day, :start_time, :end_time, :teacher_username)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create timetable slot: %w", err)
	}
	return nil
}

// ListByTeacher returns slots taught by username in weekday order.
func (r *TimetableRepository) ListByTeacher(ctx context.Context, username string) ([]models.Timetable, error) {
	query := `SELECT id, course, day, start_time, end_time, teacher_username FROM timetables
        WHERE teacher_username = $1 ` + timetableOrder
	var slots []models.Timetable
	if err := r.db.SelectContext(ctx, &slots, query, username, pq.Array(models.Weekdays)); err != nil {
		return nil, fmt.Errorf("list teacher timetable: %w", err)
	}
	return slots, nil
}

// ListByCourses returns slots of the given course codes in weekday order.
func (r *TimetableRepository) ListByCourses(ctx context.Context, courseCodes []string) ([]models.Timetable, error) {
	if len(courseCodes) == 0 {
		return []models.Timetable{}, nil
	}
	query := `SELECT id, course, day, start_time, end_time, teacher_username FROM timetables
        WHERE course = ANY($1) ` + timetableOrder
	var slots []models.Timetable
	if err := r.db.SelectContext(ctx, &slots, query, pq.Array(courseCodes), pq.Array(models.Weekdays)); err != nil {
		return nil, fmt.Errorf("list course timetable: %w", err)
	}
	return slots, nil
}
