package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/campus-portal-api/internal/dto"
	"github.com/noah-isme/campus-portal-api/internal/models"
	appErrors "github.com/noah-isme/campus-portal-api/pkg/errors"
)

type fakeMarkSrv struct {
	err error
}

func (f *fakeMarkSrv) Record(_ context.Context, req dto.RecordMarkRequest) (*models.Mark, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Mark{ID: "m1", Kind: models.MarkIndividual, StudentID: req.StudentID, Course: req.Course, ExamType: req.ExamType, Score: req.Score}, nil
}

func (f *fakeMarkSrv) RecordClassAverage(_ context.Context, req dto.ClassAverageRequest) (*models.Mark, error) {
	return &models.Mark{ID: "m2", Kind: models.MarkAggregate, Course: req.Course, ExamType: req.ExamType, Score: req.Score}, f.err
}

type fakeAttendanceSrv struct {
	err       error
	studentID string
	rawDate   string
}

func (f *fakeAttendanceSrv) Log(_ context.Context, req dto.LogAttendanceRequest) (*models.Attendance, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Attendance{ID: "a1", StudentID: req.StudentID, Course: req.Course, Status: models.AttendanceStatus(req.Status)}, nil
}

func (f *fakeAttendanceSrv) ByDate(_ context.Context, studentID, rawDate string) ([]models.Attendance, error) {
	f.studentID = studentID
	f.rawDate = rawDate
	return []models.Attendance{}, f.err
}

func TestAcademicHandlerRecordMarkRejectsReservedIdentity(t *testing.T) {
	handler := NewAcademicHandler(&fakeMarkSrv{err: appErrors.Clone(appErrors.ErrValidation, "Cannot set individual mark for CLASS_AVG identifier.")}, &fakeAttendanceSrv{})

	c, rec := newTestContext(http.MethodPost, "/marks/entry", dto.RecordMarkRequest{StudentID: models.ClassAverageID, Course: "MATH101", ExamType: "Midterm", Score: 70})
	handler.RecordMark(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot set individual mark for CLASS_AVG identifier.", decodeEnvelope(t, rec).Message)
}

func TestAcademicHandlerRecordMarkCreated(t *testing.T) {
	handler := NewAcademicHandler(&fakeMarkSrv{}, &fakeAttendanceSrv{})

	c, rec := newTestContext(http.MethodPost, "/marks/entry", dto.RecordMarkRequest{StudentID: "S001", Course: "MATH101", ExamType: "Final", Score: 91})
	handler.RecordMark(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Mark recorded successfully.", decodeEnvelope(t, rec).Message)
}

func TestAcademicHandlerClassAverage(t *testing.T) {
	handler := NewAcademicHandler(&fakeMarkSrv{}, &fakeAttendanceSrv{})

	c, rec := newTestContext(http.MethodPut, "/marks/class-average", dto.ClassAverageRequest{Course: "MATH101", ExamType: "Final", Score: 74})
	handler.RecordClassAverage(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"AGGREGATE"`)
}

func TestAcademicHandlerDuplicateAttendanceConflict(t *testing.T) {
	handler := NewAcademicHandler(&fakeMarkSrv{}, &fakeAttendanceSrv{
		err: appErrors.Clone(appErrors.ErrConflict, "Attendance already logged for this student and course on this date."),
	})

	c, rec := newTestContext(http.MethodPost, "/attendance/log", dto.LogAttendanceRequest{StudentID: "S001", Course: "CS101", Date: "2025-10-22", Status: "Present"})
	handler.LogAttendance(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, appErrors.ErrConflict.Code, errorCode(decodeEnvelope(t, rec)))
}

func TestAcademicHandlerAttendanceByDatePassesParams(t *testing.T) {
	srv := &fakeAttendanceSrv{}
	handler := NewAcademicHandler(&fakeMarkSrv{}, srv)

	c, rec := newTestContext(http.MethodGet, "/attendance/S001/2025-10-20", nil)
	c.AddParam("studentId", "S001")
	c.AddParam("date", "2025-10-20")
	handler.AttendanceByDate(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "S001", srv.studentID)
	assert.Equal(t, "2025-10-20", srv.rawDate)
}
