package seed

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockSeeder(t *testing.T) (*Seeder, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(sqlx.NewDb(db, "sqlmock"), nil), mock
}

func TestRunSkipsWhenDataPresent(t *testing.T) {
	seeder, mock := newMockSeeder(t)
	mock.ExpectQuery("SELECT NOT EXISTS").WillReturnRows(sqlmock.NewRows([]string{"incomplete"}).AddRow(false))

	wrote, err := seeder.Run(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunStopsWhenResetFails(t *testing.T) {
	seeder, mock := newMockSeeder(t)
	mock.ExpectQuery("SELECT NOT EXISTS").WillReturnRows(sqlmock.NewRows([]string{"incomplete"}).AddRow(true))
	mock.ExpectExec("TRUNCATE users").WillReturnError(assert.AnError)

	wrote, err := seeder.Run(context.Background(), false)
	require.Error(t, err)
	assert.False(t, wrote)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSampleDataIsConsistent(t *testing.T) {
	students := map[string]bool{}
	for _, u := range sampleUsers() {
		if id := u.StudentKey(); id != "" {
			students[id] = true
		}
	}
	for _, c := range sampleCourses() {
		assert.LessOrEqual(t, len(c.EnrolledStudents), c.MaxSeats, c.CourseCode)
		for _, id := range append(append([]string{}, c.EnrolledStudents...), c.WaitlistStudents...) {
			assert.True(t, students[id], "%s references unknown student %s", c.CourseCode, id)
		}
	}
}
