package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-portal-api/internal/dto"
	"github.com/noah-isme/campus-portal-api/internal/models"
	"github.com/noah-isme/campus-portal-api/pkg/response"
)

type markService interface {
	Record(ctx context.Context, req dto.RecordMarkRequest) (*models.Mark, error)
	RecordClassAverage(ctx context.Context, req dto.ClassAverageRequest) (*models.Mark, error)
}

type attendanceService interface {
	Log(ctx context.Context, req dto.LogAttendanceRequest) (*models.Attendance, error)
	ByDate(ctx context.Context, studentID, rawDate string) ([]models.Attendance, error)
}

// AcademicHandler records marks and attendance.
type AcademicHandler struct {
	marks      markService
	attendance attendanceService
}

// NewAcademicHandler constructs the handler.
func NewAcademicHandler(marks markService, attendance attendanceService) *AcademicHandler {
	return &AcademicHandler{marks: marks, attendance: attendance}
}

// RecordMark godoc
// @Summary Record or replace a student's mark
// @Tags Marks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.RecordMarkRequest true "Mark payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /marks/entry [post]
func (h *AcademicHandler) RecordMark(c *gin.Context) {
	var req dto.RecordMarkRequest
	if !bindJSON(c, &req, "Error recording mark") {
		return
	}
	mark, err := h.marks.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Mark recorded successfully.", mark)
}

// RecordClassAverage godoc
// @Summary Record or replace the class average for a course and exam
// @Tags Marks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ClassAverageRequest true "Class average payload"
// @Success 200 {object} response.Envelope
// @Router /marks/class-average [put]
func (h *AcademicHandler) RecordClassAverage(c *gin.Context) {
	var req dto.ClassAverageRequest
	if !bindJSON(c, &req, "Error recording class average") {
		return
	}
	mark, err := h.marks.RecordClassAverage(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Class average recorded successfully.", mark)
}

// LogAttendance godoc
// @Summary Log a student's attendance for a course and day
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.LogAttendanceRequest true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /attendance/log [post]
func (h *AcademicHandler) LogAttendance(c *gin.Context) {
	var req dto.LogAttendanceRequest
	if !bindJSON(c, &req, "Error logging attendance") {
		return
	}
	record, err := h.attendance.Log(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Attendance logged successfully.", record)
}

// AttendanceByDate godoc
// @Summary Attendance records for a student on one day
// @Tags Attendance
// @Produce json
// @Param studentId path string true "Student ID"
// @Param date path string true "Day (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/{studentId}/{date} [get]
func (h *AcademicHandler) AttendanceByDate(c *gin.Context) {
	records, err := h.attendance.ByDate(c.Request.Context(), c.Param("studentId"), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}
