package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-portal-api/internal/dto"
	"github.com/noah-isme/campus-portal-api/internal/models"
	"github.com/noah-isme/campus-portal-api/internal/repository"
	appErrors "github.com/noah-isme/campus-portal-api/pkg/errors"
)

type studentRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListStudents(ctx context.Context) ([]models.User, error)
	ExistsByUsernameOrStudentID(ctx context.Context, username, studentID, excludeID string) (bool, error)
	Create(ctx context.Context, user *models.User, initialFee *models.Fee) error
	UpdateStudent(ctx context.Context, user *models.User, previous *models.User) error
}

// StudentService handles staff management of student accounts.
type StudentService struct {
	repo      studentRepository
	fees      defaultFeeFactory
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, fees defaultFeeFactory, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, fees: fees, cache: cache, validator: validate, logger: logger}
}

// List returns every student account.
func (s *StudentService) List(ctx context.Context) ([]models.User, error) {
	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "Error fetching students.")
	}
	return students, nil
}

// Create adds a student and the student's initial fee record.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Missing name, studentId, username or password.")
	}
	if err := checkStudentID(req.StudentID); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, req.Username, req.StudentID, ""); err != nil {
		return nil, err
	}

	studentID := req.StudentID
	user := &models.User{
		Username:  req.Username,
		Password:  req.Password,
		Role:      models.RoleStudent,
		StudentID: &studentID,
		Name:      req.Name,
	}
	var fee *models.Fee
	if s.fees != nil {
		fee = s.fees.DefaultFee(studentID)
	}
	if err := s.repo.Create(ctx, user, fee); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateStudentError()
		}
		return nil, appErrors.Internal(err, "Error adding student.")
	}
	s.cache.Invalidate(ctx, feeReportCachePattern)
	return user, nil
}

// Update changes a student's name, id or username. References to a changed id are rewritten atomically.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Missing name, studentId or username.")
	}
	if err := checkStudentID(req.StudentID); err != nil {
		return nil, err
	}
	previous, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Student not found.", "Error updating student details.")
	}
	if previous.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found.")
	}
	if err := s.ensureUnique(ctx, req.Username, req.StudentID, id); err != nil {
		return nil, err
	}

	updated := *previous
	studentID := req.StudentID
	updated.Name = req.Name
	updated.Username = req.Username
	updated.StudentID = &studentID
	if err := s.repo.UpdateStudent(ctx, &updated, previous); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateStudentError()
		}
		return nil, lookupError(err, "Student not found.", "Error updating student details.")
	}

	if previous.StudentKey() != studentID {
		s.logger.Info("student id changed",
			zap.String("user_id", id),
			zap.String("from", previous.StudentKey()),
			zap.String("to", studentID))
	}
	s.cache.Invalidate(ctx, feeReportCachePattern, analyticsCachePattern)
	return &updated, nil
}

func (s *StudentService) ensureUnique(ctx context.Context, username, studentID, excludeID string) error {
	exists, err := s.repo.ExistsByUsernameOrStudentID(ctx, username, studentID, excludeID)
	if err != nil {
		return appErrors.Internal(err, "Error checking student uniqueness.")
	}
	if exists {
		return duplicateStudentError()
	}
	return nil
}

func duplicateStudentError() *appErrors.Error {
	return appErrors.Clone(appErrors.ErrConflict, "Username or Student ID already exists.")
}

// checkStudentID rejects the identifier reserved for class-average marks.
func checkStudentID(studentID string) error {
	if studentID == models.ClassAverageID {
		return appErrors.Clone(appErrors.ErrValidation, "CLASS_AVG is reserved and cannot be used as a Student ID.")
	}
	return nil
}
