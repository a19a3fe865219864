package service

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-portal-api/internal/dto"
	"github.com/noah-isme/campus-portal-api/internal/models"
	appErrors "github.com/noah-isme/campus-portal-api/pkg/errors"
	"github.com/noah-isme/campus-portal-api/pkg/storage"
)

type stubProjector struct{ views []models.FeeView }

func (s stubProjector) ProjectFees(ctx context.Context) ([]models.FeeView, error) { return s.views, nil }

func newTestExportService(t *testing.T) *FeeExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	views := []models.FeeView{
		{ID: "f1", StudentID: "S1", StudentName: "Alice", AmountDue: 5000, PaymentStatus: models.PaymentUnpaid, DueDate: time.Now(), Semester: "Fall"},
		{ID: "default-u2", StudentID: "S2", StudentName: "Bob", AmountDue: 5000, PaymentStatus: models.PaymentNoRecord, DueDate: time.Now(), Semester: "N/A", Synthetic: true},
	}
	return NewFeeExportService(stubProjector{views: views}, store, signer, "/api/management/fees/download", nil, nil)
}

func TestFeeExportCSVRoundTrip(t *testing.T) {
	svc := newTestExportService(t)

	result, err := svc.Export(context.Background(), dto.FeeExportRequest{Format: "csv"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Rows)
	require.True(t, strings.HasPrefix(result.DownloadURL, "/api/management/fees/download?token="))

	parsed, err := url.Parse(result.DownloadURL)
	require.NoError(t, err)
	download, err := svc.Open(parsed.Query().Get("token"))
	require.NoError(t, err)
	defer download.File.Close()

	assert.Equal(t, "text/csv", download.ContentType)
	assert.Equal(t, "fee-report-"+result.ExportID+".csv", download.Filename)
	body, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.Contains(t, string(body), "No Record")
	assert.Contains(t, string(body), "Alice")
}

func TestFeeExportRejectsUnknownFormatAndBadToken(t *testing.T) {
	svc := newTestExportService(t)

	_, err := svc.Export(context.Background(), dto.FeeExportRequest{Format: "xlsx"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Open("not.a.valid.token")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}
