package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-portal-api/internal/dto"
	"github.com/noah-isme/campus-portal-api/internal/models"
	appErrors "github.com/noah-isme/campus-portal-api/pkg/errors"
)

type fakeAnnouncementSrv struct {
	actor   *models.JWTClaims
	deleted string
	err     error
}

func (f *fakeAnnouncementSrv) Latest(context.Context) ([]models.Announcement, error) {
	return []models.Announcement{{ID: "n1", Title: "Welcome", TargetRole: models.AudienceAll}}, f.err
}

func (f *fakeAnnouncementSrv) Create(_ context.Context, actor *models.JWTClaims, req dto.AnnouncementRequest) (*models.Announcement, error) {
	f.actor = actor
	postedBy := req.PostedBy
	if postedBy == "" && actor != nil {
		postedBy = actor.Name
	}
	return &models.Announcement{ID: "n2", Title: req.Title, Content: req.Content, PostedBy: postedBy, TargetRole: req.TargetRole}, f.err
}

func (f *fakeAnnouncementSrv) Update(_ context.Context, id string, req dto.AnnouncementRequest) (*models.Announcement, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Announcement{ID: id, Title: req.Title}, nil
}

func (f *fakeAnnouncementSrv) Delete(_ context.Context, id string) error {
	f.deleted = id
	return f.err
}

func TestAnnouncementHandlerCreatePassesCaller(t *testing.T) {
	srv := &fakeAnnouncementSrv{}
	handler := NewAnnouncementHandler(srv)

	c, rec := newTestContext(http.MethodPost, "/announcements", dto.AnnouncementRequest{Title: "Exam week", Content: "Good luck", TargetRole: "student"})
	withClaims(c, models.RoleTeacher, "amita")
	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, srv.actor)
	assert.Equal(t, "amita", srv.actor.Username)
	assert.Contains(t, rec.Body.String(), `"postedBy":"amita"`)
}

func TestAnnouncementHandlerList(t *testing.T) {
	handler := NewAnnouncementHandler(&fakeAnnouncementSrv{})

	c, rec := newTestContext(http.MethodGet, "/announcements", nil)
	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"targetRole":"all"`)
}

func TestAnnouncementHandlerUpdateMissing(t *testing.T) {
	handler := NewAnnouncementHandler(&fakeAnnouncementSrv{err: appErrors.Clone(appErrors.ErrNotFound, "Announcement not found.")})

	c, rec := newTestContext(http.MethodPut, "/announcements/nope", dto.AnnouncementRequest{Title: "x", Content: "y", TargetRole: "all"})
	c.AddParam("id", "nope")
	handler.Update(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnnouncementHandlerDelete(t *testing.T) {
	srv := &fakeAnnouncementSrv{}
	handler := NewAnnouncementHandler(srv)

	c, rec := newTestContext(http.MethodDelete, "/announcements/n1", nil)
	c.AddParam("id", "n1")
	handler.Delete(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "n1", srv.deleted)
}
