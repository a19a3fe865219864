package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-portal-api/internal/models"
	appErrors "github.com/noah-isme/campus-portal-api/pkg/errors"
	"github.com/noah-isme/campus-portal-api/pkg/jobs"
	"github.com/noah-isme/campus-portal-api/pkg/response"
)

type integrityScheduler interface {
	TriggerSweep() error
	LastReport() *models.IntegrityReport
	Stats() jobs.Stats
}

// IntegrityHandler lets admins run and inspect the orphan sweep.
type IntegrityHandler struct {
	scheduler integrityScheduler
}

// NewIntegrityHandler constructs the handler. scheduler may be nil when the sweep is disabled.
func NewIntegrityHandler(scheduler integrityScheduler) *IntegrityHandler {
	return &IntegrityHandler{scheduler: scheduler}
}

// Trigger godoc
// @Summary Queue an immediate integrity sweep
// @Tags Integrity
// @Produce json
// @Security BearerAuth
// @Success 202 {object} response.Envelope
// @Router /admin/integrity/sweep [post]
func (h *IntegrityHandler) Trigger(c *gin.Context) {
	if h.scheduler == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "integrity sweep disabled"))
		return
	}
	if err := h.scheduler.TriggerSweep(); err != nil {
		response.Error(c, appErrors.Internal(err, "failed to queue integrity sweep"))
		return
	}
	response.Message(c, http.StatusAccepted, "Integrity sweep queued.", nil)
}

// Report godoc
// @Summary Last integrity sweep and queue statistics
// @Tags Integrity
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/integrity/report [get]
func (h *IntegrityHandler) Report(c *gin.Context) {
	if h.scheduler == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "integrity sweep disabled"))
		return
	}
	stats := h.scheduler.Stats()
	response.JSON(c, http.StatusOK, gin.H{
		"lastReport": h.scheduler.LastReport(),
		"jobs": gin.H{
			"succeeded": stats.Succeeded,
			"retried":   stats.Retried,
			"abandoned": stats.Abandoned,
		},
	}, nil)
}
