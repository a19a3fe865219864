package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-portal-api/internal/dto"
	"github.com/noah-isme/campus-portal-api/internal/models"
	appErrors "github.com/noah-isme/campus-portal-api/pkg/errors"
)

const latestAnnouncements = 10

type announcementRepository interface {
	ListLatest(ctx context.Context, limit int) ([]models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
	Update(ctx context.Context, announcement *models.Announcement) (*models.Announcement, error)
	Delete(ctx context.Context, id string) error
}

// AnnouncementService handles announcement workflows.
type AnnouncementService struct {
	repo      announcementRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnnouncementService constructs the service.
func NewAnnouncementService(repo announcementRepository, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AnnouncementService{repo: repo, validator: validate, logger: logger}
	_ = svc.validator.RegisterValidation("audience", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case string(models.RoleStudent), string(models.RoleTeacher), models.AudienceAll:
			return true
		default:
			return false
		}
	})
	return svc
}

// Latest returns the ten most recent announcements.
func (s *AnnouncementService) Latest(ctx context.Context) ([]models.Announcement, error) {
	items, err := s.repo.ListLatest(ctx, latestAnnouncements)
	if err != nil {
		return nil, appErrors.Internal(err, "Error fetching announcements")
	}
	return items, nil
}

// Create posts an announcement. postedBy falls back to the acting user's name.
func (s *AnnouncementService) Create(ctx context.Context, actor *models.JWTClaims, req dto.AnnouncementRequest) (*models.Announcement, error) {
	if req.PostedBy == "" && actor != nil {
		req.PostedBy = actor.Name
	}
	if err := s.validator.Struct(req); err != nil || req.PostedBy == "" {
		return nil, appErrors.Validation(err, "Missing announcement title, content, postedBy, or targetRole.")
	}
	item := &models.Announcement{
		Title:      req.Title,
		Content:    req.Content,
		PostedBy:   req.PostedBy,
		TargetRole: req.TargetRole,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, appErrors.Internal(err, "Error posting announcement.")
	}
	return item, nil
}

// Update edits title, content and audience.
func (s *AnnouncementService) Update(ctx context.Context, id string, req dto.AnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Missing announcement title, content or targetRole.")
	}
	item, err := s.repo.Update(ctx, &models.Announcement{
		ID:         id,
		Title:      req.Title,
		Content:    req.Content,
		TargetRole: req.TargetRole,
	})
	if err != nil {
		return nil, lookupError(err, "Announcement not found.", "Error updating announcement.")
	}
	return item, nil
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupError(err, "Announcement not found.", "Error deleting announcement.")
	}
	return nil
}
