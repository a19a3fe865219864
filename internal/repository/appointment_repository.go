package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-portal-api/internal/models"
)

// AppointmentRepository persists advising appointments.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository constructs the repository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// Create books an appointment.
func (r *AppointmentRepository) Create(ctx context.Context, appt *models.Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	if appt.Status == "" {
		appt.Status = models.AppointmentPending
	}
	const query = `INSERT INTO appointments (id, student_id, student_name, teacher_username, date, topic, status)
        VALUES (:id, :student_id, :student_name, :teacher_username, :date, :topic, :status)`
	if _, err := r.db.NamedExecContext(ctx, query, appt); err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

// ListPendingForTeacher returns the teacher's appointments that are not completed, soonest first.
func (r *AppointmentRepository) ListPendingForTeacher(ctx context.Context, teacherUsername string) ([]models.Appointment, error) {
	const query = `SELECT id, student_id, student_name, teacher_username, date, topic, status FROM appointments
        WHERE teacher_username = $1 AND status <> $2 ORDER BY date ASC`
	var appts []models.Appointment
	if err := r.db.SelectContext(ctx, &appts, query, teacherUsername, models.AppointmentCompleted); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}
