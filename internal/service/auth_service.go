package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-portal-api/internal/models"
	"github.com/noah-isme/campus-portal-api/internal/repository"
	appErrors "github.com/noah-isme/campus-portal-api/pkg/errors"
)

type authUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsernameOrStudentID(ctx context.Context, username, studentID, excludeID string) (bool, error)
	Create(ctx context.Context, user *models.User, initialFee *models.Fee) error
}

type defaultFeeFactory interface {
	DefaultFee(studentID string) *models.Fee
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	TeacherSecretKey  string
}

// AuthService registers users and issues the tokens that carry their verified identity.
type AuthService struct {
	repo      authUserRepository
	fees      defaultFeeFactory
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, fees defaultFeeFactory, cache *CacheService, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	return &AuthService{repo: repo, fees: fees, cache: cache, validator: validate, logger: logger, config: config}
}

// Signup registers a student, or a teacher when the secret key matches. A student account is
// created together with its initial unpaid fee record.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	teacherKey := req.SecretKey != "" && req.SecretKey == s.config.TeacherSecretKey
	if err := s.validator.Struct(req); err != nil || (req.StudentID == "" && !teacherKey) {
		return nil, appErrors.Validation(err, "Missing required fields or secret key.")
	}
	if err := checkStudentID(req.StudentID); err != nil {
		return nil, err
	}

	role := models.RoleStudent
	switch {
	case teacherKey:
		role = models.RoleTeacher
	case req.SecretKey != "":
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Invalid secret key for Teacher registration.")
	}

	user := &models.User{
		Username: req.Username,
		Password: req.Password,
		Role:     role,
		Name:     req.Name,
	}
	var initialFee *models.Fee
	if role == models.RoleStudent {
		studentID := req.StudentID
		user.StudentID = &studentID
		if s.fees != nil {
			initialFee = s.fees.DefaultFee(studentID)
		}
	} else if req.StudentID != "" {
		studentID := req.StudentID
		user.StudentID = &studentID
	}

	exists, err := s.repo.ExistsByUsernameOrStudentID(ctx, req.Username, user.StudentKey(), "")
	if err != nil {
		return nil, appErrors.Internal(err, "Server error during registration.")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Username or Student ID already registered.")
	}

	if err := s.repo.Create(ctx, user, initialFee); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "Username or Student ID already registered.")
		}
		return nil, appErrors.Internal(err, "Server error during registration.")
	}
	if initialFee != nil {
		s.cache.Invalidate(ctx, feeReportCachePattern)
	}
	s.logger.Info("user registered", zap.String("username", user.Username), zap.String("role", string(role)))
	return user, nil
}

// Login compares the plaintext password and issues an access token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Missing username or password.")
	}

	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid username or password")
		}
		return nil, appErrors.Internal(err, "Server error during authentication")
	}
	if user.Password != req.Password {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid username or password")
	}

	accessToken, _, err := s.generateAccessToken(user)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create access token")
	}

	return &models.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		User: models.UserInfo{
			ID:            user.ID,
			Username:      user.Username,
			Name:          user.Name,
			Role:          user.Role,
			StudentID:     user.StudentKey(),
			CoursesTaught: user.CoursesTaught,
		},
	}, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token role")
	}
	return claims, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	claims := &models.JWTClaims{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		StudentID: user.StudentKey(),
		Name:      user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
