package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-portal-api/internal/models"
)

// AnnouncementRepository provides persistence for announcements.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository creates the repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

const announcementColumns = `id, title, content, posted_by, date, target_role`

// ListLatest returns the most recent announcements.
func (r *AnnouncementRepository) ListLatest(ctx context.Context, limit int) ([]models.Announcement, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	query := `SELECT ` + announcementColumns + ` FROM announcements ORDER BY date DESC LIMIT $1`
	var announcements []models.Announcement
	if err := r.db.SelectContext(ctx, &announcements, query, limit); err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return announcements, nil
}

// Create stores an announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, a *models.Announcement) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Date.IsZero() {
		a.Date = time.Now().UTC()
	}
	const query = `INSERT INTO announcements (id, title, content, posted_by, date, target_role)
        VALUES (:id, :title, :content, :posted_by, :date, :target_role)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// Update replaces the editable fields, bumps the date and returns the stored row.
func (r *AnnouncementRepository) Update(ctx context.Context, a *models.Announcement) (*models.Announcement, error) {
	query := `UPDATE announcements SET title = $2, content = $3, target_role = $4, date = $5
        WHERE id = $1 RETURNING ` + announcementColumns
	var stored models.Announcement
	if err := r.db.GetContext(ctx, &stored, query, a.ID, a.Title, a.Content, a.TargetRole, time.Now().UTC()); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("update announcement: %w", err)
	}
	return &stored, nil
}

// Delete removes an announcement.
func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete announcement rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
