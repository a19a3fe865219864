package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-portal-api/internal/dto"
	"github.com/noah-isme/campus-portal-api/internal/models"
	"github.com/noah-isme/campus-portal-api/internal/service"
	appErrors "github.com/noah-isme/campus-portal-api/pkg/errors"
	"github.com/noah-isme/campus-portal-api/pkg/response"
)

type feeService interface {
	ProjectFees(ctx context.Context) ([]models.FeeView, error)
	UpdateFeeStatus(ctx context.Context, feeID string, status models.PaymentStatus) (*models.Fee, error)
	CreateFee(ctx context.Context, req dto.CreateFeeRequest) (*models.Fee, error)
}

type feeExporter interface {
	Export(ctx context.Context, req dto.FeeExportRequest) (*dto.FeeExportResult, error)
	Open(token string) (*service.ExportDownload, error)
}

// FeeHandler exposes the fee report and fee record maintenance.
type FeeHandler struct {
	service  feeService
	exporter feeExporter
}

// NewFeeHandler constructs the handler. exporter may be nil when exports are disabled.
func NewFeeHandler(svc feeService, exporter feeExporter) *FeeHandler {
	return &FeeHandler{service: svc, exporter: exporter}
}

// Report godoc
// @Summary Fee report with one row per fee record or a synthesized default per student
// @Tags Fees
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /management/fees [get]
func (h *FeeHandler) Report(c *gin.Context) {
	views, err := h.service.ProjectFees(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// Create godoc
// @Summary Add a fee record
// @Tags Fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateFeeRequest true "Fee payload"
// @Success 201 {object} response.Envelope
// @Router /management/fees [post]
func (h *FeeHandler) Create(c *gin.Context) {
	var req dto.CreateFeeRequest
	if !bindJSON(c, &req, "Missing or invalid fee fields.") {
		return
	}
	fee, err := h.service.CreateFee(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Fee record added successfully.", fee)
}

// UpdateStatus godoc
// @Summary Update a fee's payment status
// @Tags Fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Fee ID"
// @Param payload body dto.UpdateFeeStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /management/fees/{id} [put]
func (h *FeeHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateFeeStatusRequest
	if !bindJSON(c, &req, "Invalid payment status.") {
		return
	}
	fee, err := h.service.UpdateFeeStatus(c.Request.Context(), c.Param("id"), req.PaymentStatus)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Fee status updated successfully.", fee)
}

// Export godoc
// @Summary Export the fee report as CSV or PDF
// @Tags Fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.FeeExportRequest true "Export format"
// @Success 201 {object} response.Envelope
// @Router /management/fees/export [post]
func (h *FeeHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "fee export not configured"))
		return
	}
	var req dto.FeeExportRequest
	if !bindJSON(c, &req, "format must be csv or pdf") {
		return
	}
	result, err := h.exporter.Export(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Fee report exported.", result)
}

// Download godoc
// @Summary Download an exported fee report via signed token
// @Tags Fees
// @Produce octet-stream
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Router /management/fees/download [get]
func (h *FeeHandler) Download(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "fee export not configured"))
		return
	}
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	result, err := h.exporter.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, result.SizeBytes, result.ContentType, result.File, nil)
}
