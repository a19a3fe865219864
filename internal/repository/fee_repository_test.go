package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-portal-api/internal/models"
)

func TestFeeRepositoryListStudentFeesKeepsStudentsWithoutFees(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFeeRepository(db)
	due := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	cols := []string{"user_id", "student_id", "student_name", "fee_id", "amount_due", "payment_status", "due_date", "semester"}
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN fees f ON f.student_id = u.student_id")).
		WithArgs(models.RoleStudent).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("u1", "S001", "Alice", "f1", 5000.0, "Fully Paid", due, "Fall 2025").
			AddRow("u1", "S001", "Alice", "f2", 1200.0, "Unpaid", due.AddDate(0, 6, 0), "Spring 2026").
			AddRow("u2", "S002", "Bob", nil, nil, nil, nil, nil))

	rows, err := repo.ListStudentFees(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Nil(t, rows[2].FeeID)
	require.NotNil(t, rows[1].PaymentStatus)
	assert.Equal(t, models.PaymentUnpaid, *rows[1].PaymentStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}
