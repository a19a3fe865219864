package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-portal-api/internal/models"
)

func TestStudentCascadeCoversEveryDependent(t *testing.T) {
	sid := "S001"
	steps := StudentCascade(&models.User{ID: "u1", Username: "student1", StudentID: &sid})
	var collections []string
	for _, s := range steps {
		collections = append(collections, s.Collection)
	}
	assert.Equal(t, []string{"users", "marks", "attendance", "fees", "appointments", "tickets", "courses"}, collections)
	assert.True(t, steps[0].Primary)
	assert.Equal(t, []interface{}{"student1"}, steps[5].Args)
}

func TestCascadeRepositoryRunCommits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCascadeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM courses WHERE course_code = $1")).WithArgs("CS101").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetables")).WithArgs("CS101").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM marks")).WithArgs("CS101").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attendance")).WithArgs("CS101").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET courses_taught")).WithArgs("CS101").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	results, err := repo.Run(context.Background(), CourseCascade("CS101"))
	require.NoError(t, err)
	require.Len(t, results, 5)
	assert.Equal(t, int64(3), results[2].Affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCascadeRepositoryRunRollsBackPrimaryOnStepFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCascadeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM courses")).WithArgs("CS101").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetables")).WithArgs("CS101").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.Run(context.Background(), CourseCascade("CS101"))
	var stepErr *CascadeStepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "timetables", stepErr.Step)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCascadeRepositoryRunMissingPrimary(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCascadeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM courses")).WithArgs("NOPE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Run(context.Background(), CourseCascade("NOPE"))
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
