package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-portal-api/internal/dto"
	"github.com/noah-isme/campus-portal-api/internal/models"
	appErrors "github.com/noah-isme/campus-portal-api/pkg/errors"
)

const (
	syntheticFeePrefix    = "default-"
	syntheticSemester     = "N/A"
	newEnrollmentSemester = "New Enrollment"
)

var errFeeRecordNotFound = appErrors.Clone(appErrors.ErrNotFound, "Fee record not found. Please add a new fee record for this student first.")

type feeRepository interface {
	ListStudentFees(ctx context.Context) ([]models.StudentFeeRow, error)
	FindByID(ctx context.Context, id string) (*models.Fee, error)
	Create(ctx context.Context, fee *models.Fee) error
	UpdateStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.Fee, error)
}

type feeStudentLookup interface {
	FindStudent(ctx context.Context, studentID string) (*models.User, error)
}

// FeeService exposes the gap-free fee report and fee record maintenance.
type FeeService struct {
	repo          feeRepository
	students      feeStudentLookup
	cache         *CacheService
	defaultAmount float64
	validator     *validator.Validate
	logger        *zap.Logger
	now           func() time.Time
}

// NewFeeService constructs the fee service.
func NewFeeService(repo feeRepository, students feeStudentLookup, cache *CacheService, defaultAmount float64, validate *validator.Validate, logger *zap.Logger) *FeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultAmount <= 0 {
		defaultAmount = 5000
	}
	return &FeeService{repo: repo, students: students, cache: cache, defaultAmount: defaultAmount, validator: validate, logger: logger, now: time.Now}
}

// ProjectFees returns one row per stored fee, plus exactly one synthesized row for every student
// without any fee. Students with several fees appear several times.
func (s *FeeService) ProjectFees(ctx context.Context) ([]models.FeeView, error) {
	var cached []models.FeeView
	if hit, _ := s.cache.Get(ctx, feeReportCacheKey, &cached); hit {
		due := s.now().UTC().AddDate(1, 0, 0)
		for i := range cached {
			if cached[i].Synthetic {
				cached[i].DueDate = due
			}
		}
		return cached, nil
	}

	rows, err := s.repo.ListStudentFees(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "Error fetching fee data.")
	}
	views := projectFeeRows(rows, s.defaultAmount, s.now().UTC())

	_ = s.cache.Set(ctx, feeReportCacheKey, views, 0)
	return views, nil
}

// UpdateFeeStatus sets the payment status of a stored fee. Projected rows cannot be updated.
func (s *FeeService) UpdateFeeStatus(ctx context.Context, feeID string, status models.PaymentStatus) (*models.Fee, error) {
	if !validPaymentStatus(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Invalid payment status.")
	}
	if IsSyntheticFeeID(feeID) {
		return nil, errFeeRecordNotFound
	}

	fee, err := s.repo.UpdateStatus(ctx, feeID, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errFeeRecordNotFound
		}
		return nil, appErrors.Internal(err, "Error updating fee status.")
	}
	s.cache.Invalidate(ctx, feeReportCachePattern)
	return fee, nil
}

// CreateFee stores a real fee record for an existing student.
func (s *FeeService) CreateFee(ctx context.Context, req dto.CreateFeeRequest) (*models.Fee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Missing or invalid fee fields.")
	}
	if _, err := s.students.FindStudent(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found.")
		}
		return nil, appErrors.Internal(err, "Error adding fee record.")
	}

	status := req.PaymentStatus
	if status == "" {
		status = models.PaymentUnpaid
	}
	fee := &models.Fee{
		StudentID:     req.StudentID,
		AmountDue:     req.AmountDue,
		PaymentStatus: status,
		DueDate:       req.DueDate,
		Semester:      req.Semester,
	}
	if err := s.repo.Create(ctx, fee); err != nil {
		return nil, appErrors.Internal(err, "Error adding fee record.")
	}
	s.cache.Invalidate(ctx, feeReportCachePattern)
	return fee, nil
}

// DefaultFee builds the unpaid fee every new student starts with, due one year after now.
func (s *FeeService) DefaultFee(studentID string) *models.Fee {
	return &models.Fee{
		StudentID:     studentID,
		AmountDue:     s.defaultAmount,
		PaymentStatus: models.PaymentUnpaid,
		DueDate:       s.now().UTC().AddDate(1, 0, 0),
		Semester:      newEnrollmentSemester,
	}
}

// IsSyntheticFeeID reports whether id names a projected row rather than a stored fee.
func IsSyntheticFeeID(id string) bool {
	return strings.HasPrefix(id, syntheticFeePrefix)
}

func projectFeeRows(rows []models.StudentFeeRow, defaultAmount float64, now time.Time) []models.FeeView {
	views := make([]models.FeeView, 0, len(rows))
	for _, row := range rows {
		if row.FeeID == nil {
			views = append(views, models.FeeView{
				ID:            syntheticFeePrefix + row.UserID,
				StudentID:     row.StudentID,
				StudentName:   row.StudentName,
				AmountDue:     defaultAmount,
				PaymentStatus: models.PaymentNoRecord,
				DueDate:       now.AddDate(1, 0, 0),
				Semester:      syntheticSemester,
				Synthetic:     true,
			})
			continue
		}
		view := models.FeeView{ID: *row.FeeID, StudentID: row.StudentID, StudentName: row.StudentName}
		if row.AmountDue != nil {
			view.AmountDue = *row.AmountDue
		}
		if row.PaymentStatus != nil {
			view.PaymentStatus = *row.PaymentStatus
		}
		if row.DueDate != nil {
			view.DueDate = *row.DueDate
		}
		if row.Semester != nil {
			view.Semester = *row.Semester
		}
		views = append(views, view)
	}
	return views
}

func validPaymentStatus(status models.PaymentStatus) bool {
	switch status {
	case models.PaymentUnpaid, models.PaymentPartiallyPaid, models.PaymentFullyPaid:
		return true
	}
	return false
}
