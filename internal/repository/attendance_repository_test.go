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

func TestAttendanceRepositoryInsertIfAbsent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)
	day := time.Date(2025, 10, 20, 15, 30, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (student_id, course, attendance_date) DO NOTHING")).
		WithArgs(sqlmock.AnyArg(), "S001", "MATH101", day, time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC), models.AttendancePresent).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a1"))
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	inserted, err := repo.InsertIfAbsent(context.Background(), &models.Attendance{StudentID: "S001", Course: "MATH101", Date: day})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.InsertIfAbsent(context.Background(), &models.Attendance{StudentID: "S001", Course: "MATH101", Date: day.Add(time.Hour)})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositorySummaryByStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY course")).
		WithArgs("S001", models.AttendancePresent).
		WillReturnRows(sqlmock.NewRows([]string{"course", "total_classes", "present_count"}).AddRow("CS101", 3, 2))

	rows, err := repo.SummaryByStudent(context.Background(), "S001")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].TotalClasses)
	assert.NoError(t, mock.ExpectationsWereMet())
}
