package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-portal-api/internal/dto"
	"github.com/noah-isme/campus-portal-api/internal/models"
	"github.com/noah-isme/campus-portal-api/internal/service"
	appErrors "github.com/noah-isme/campus-portal-api/pkg/errors"
)

type fakeFeeSrv struct {
	views     []models.FeeView
	updatedID string
	status    models.PaymentStatus
	err       error
}

func (f *fakeFeeSrv) ProjectFees(context.Context) ([]models.FeeView, error) {
	return f.views, f.err
}

func (f *fakeFeeSrv) UpdateFeeStatus(_ context.Context, feeID string, status models.PaymentStatus) (*models.Fee, error) {
	f.updatedID = feeID
	f.status = status
	if f.err != nil {
		return nil, f.err
	}
	return &models.Fee{ID: feeID, PaymentStatus: status}, nil
}

func (f *fakeFeeSrv) CreateFee(_ context.Context, req dto.CreateFeeRequest) (*models.Fee, error) {
	return &models.Fee{ID: "f1", StudentID: req.StudentID}, f.err
}

type fakeExporter struct {
	token    string
	download *service.ExportDownload
	err      error
}

func (f *fakeExporter) Export(_ context.Context, req dto.FeeExportRequest) (*dto.FeeExportResult, error) {
	return &dto.FeeExportResult{ExportID: "e1", Format: req.Format}, f.err
}

func (f *fakeExporter) Open(token string) (*service.ExportDownload, error) {
	f.token = token
	return f.download, f.err
}

func TestFeeHandlerReportIncludesSyntheticRows(t *testing.T) {
	handler := NewFeeHandler(&fakeFeeSrv{views: []models.FeeView{
		{ID: "f1", StudentID: "S001", PaymentStatus: models.PaymentFullyPaid},
		{ID: "default-u2", StudentID: "S002", PaymentStatus: models.PaymentNoRecord, Synthetic: true},
	}}, nil)

	c, rec := newTestContext(http.MethodGet, "/management/fees", nil)
	handler.Report(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"_id":"default-u2"`)
	assert.Contains(t, rec.Body.String(), `"paymentStatus":"No Record"`)
}

func TestFeeHandlerUpdateSyntheticIsNotFound(t *testing.T) {
	srv := &fakeFeeSrv{err: appErrors.Clone(appErrors.ErrNotFound, "Fee record not found. Please add a new fee record for this student first.")}
	handler := NewFeeHandler(srv, nil)

	c, rec := newTestContext(http.MethodPut, "/management/fees/default-u2", dto.UpdateFeeStatusRequest{PaymentStatus: models.PaymentFullyPaid})
	c.AddParam("id", "default-u2")
	handler.UpdateStatus(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "default-u2", srv.updatedID)
	assert.Equal(t, models.PaymentFullyPaid, srv.status)
}

func TestFeeHandlerExportDisabled(t *testing.T) {
	handler := NewFeeHandler(&fakeFeeSrv{}, nil)

	c, rec := newTestContext(http.MethodPost, "/management/fees/export", dto.FeeExportRequest{Format: "csv"})
	handler.Export(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestFeeHandlerDownloadRequiresToken(t *testing.T) {
	handler := NewFeeHandler(&fakeFeeSrv{}, &fakeExporter{})

	c, rec := newTestContext(http.MethodGet, "/management/fees/download", nil)
	handler.Download(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeeHandlerDownloadStreamsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(path, []byte("Fee ID,Student ID\nf1,S001\n"), 0o600))
	file, err := os.Open(path)
	require.NoError(t, err)

	exporter := &fakeExporter{download: &service.ExportDownload{
		File:        file,
		Filename:    "fee-report-e1.csv",
		ContentType: "text/csv",
		SizeBytes:   int64(len("Fee ID,Student ID\nf1,S001\n")),
	}}
	handler := NewFeeHandler(&fakeFeeSrv{}, exporter)

	c, rec := newTestContext(http.MethodGet, "/management/fees/download?token=abc", nil)
	handler.Download(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", exporter.token)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "fee-report-e1.csv")
	assert.Equal(t, "Fee ID,Student ID\nf1,S001\n", rec.Body.String())
}

func TestFeeHandlerDownloadExpiredToken(t *testing.T) {
	handler := NewFeeHandler(&fakeFeeSrv{}, &fakeExporter{err: appErrors.Clone(appErrors.ErrForbidden, "download link expired")})

	c, rec := newTestContext(http.MethodGet, "/management/fees/download?token=old", nil)
	handler.Download(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
