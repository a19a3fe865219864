package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-portal-api/internal/models"
)

// FeeRepository persists fee records.
type FeeRepository struct {
	db *sqlx.DB
}

// NewFeeRepository constructs the repository.
func NewFeeRepository(db *sqlx.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

// ListStudentFees left-joins every student against their fee records. Students without any fee
// appear once with nil fee columns; students with several fees appear once per fee.
func (r *FeeRepository) ListStudentFees(ctx context.Context) ([]models.StudentFeeRow, error) {
	const query = `SELECT u.id AS user_id, u.student_id, u.name AS student_name,
        f.id AS fee_id, f.amount_due, f.payment_status, f.due_date, f.semester
        FROM users u
        LEFT JOIN fees f ON f.student_id = u.student_id
        WHERE u.role = $1 AND u.student_id IS NOT NULL
        ORDER BY u.student_id ASC, f.due_date ASC NULLS LAST`
	var rows []models.StudentFeeRow
	if err := r.db.SelectContext(ctx, &rows, query, models.RoleStudent); err != nil {
		return nil, fmt.Errorf("list student fees: %w", err)
	}
	return rows, nil
}

// FindByID returns a stored fee record.
func (r *FeeRepository) FindByID(ctx context.Context, id string) (*models.Fee, error) {
	const query = `SELECT id, student_id, amount_due, payment_status, due_date, semester, created_at FROM fees WHERE id = $1`
	var fee models.Fee
	if err := r.db.GetContext(ctx, &fee, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find fee: %w", err)
	}
	return &fee, nil
}

// Create stores a new fee record.
func (r *FeeRepository) Create(ctx context.Context, fee *models.Fee) error {
	prepareFee(fee)
	if _, err := r.db.NamedExecContext(ctx, insertFeeQuery, fee); err != nil {
		return fmt.Errorf("create fee: %w", err)
	}
	return nil
}

// UpdateStatus changes the payment status of a stored fee and returns the updated record.
func (r *FeeRepository) UpdateStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.Fee, error) {
	const query = `UPDATE fees SET payment_status = $2 WHERE id = $1
        RETURNING id, student_id, amount_due, payment_status, due_date, semester, created_at`
	var fee models.Fee
	if err := r.db.GetContext(ctx, &fee, query, id, status); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("update fee status: %w", err)
	}
	return &fee, nil
}

const insertFeeQuery = `INSERT INTO fees (id, student_id, amount_due, payment_status, due_date, semester, created_at)
        VALUES (:id, :student_id, :amount_due, :payment_status, :due_date, :semester, :created_at)`

func prepareFee(fee *models.Fee) {
	if fee.ID == "" {
		fee.ID = uuid.NewString()
	}
	if fee.PaymentStatus == "" {
		fee.PaymentStatus = models.PaymentUnpaid
	}
	fee.CreatedAt = time.Now().UTC()
}

func insertFee(ctx context.Context, tx *sqlx.Tx, fee *models.Fee) error {
	prepareFee(fee)
	if _, err := tx.NamedExecContext(ctx, insertFeeQuery, fee); err != nil {
		return fmt.Errorf("insert fee: %w", err)
	}
	return nil
}
