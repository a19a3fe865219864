package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-portal-api/internal/dto"
	"github.com/noah-isme/campus-portal-api/internal/models"
	appErrors "github.com/noah-isme/campus-portal-api/pkg/errors"
	"github.com/noah-isme/campus-portal-api/pkg/export"
	"github.com/noah-isme/campus-portal-api/pkg/storage"
)

type feeProjector interface {
	ProjectFees(ctx context.Context) ([]models.FeeView, error)
}

type fileStorage interface {
	Save(name string, data []byte) error
	Open(name string) (*os.File, error)
}

type downloadSigner interface {
	Sign(exportID, path string) (string, time.Time, error)
	Verify(token string) (storage.Grant, error)
}

// ExportDownload is an opened export file ready to stream.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	SizeBytes   int64
}

var feeExportHeaders = []string{"Fee ID", "Student ID", "Student Name", "Amount Due", "Payment Status", "Due Date", "Semester"}

// FeeExportService renders the fee report to CSV or PDF and hands out signed download links.
type FeeExportService struct {
	fees        feeProjector
	storage     fileStorage
	signer      downloadSigner
	downloadURL string
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewFeeExportService constructs the export service. downloadURL is the route serving signed tokens.
func NewFeeExportService(fees feeProjector, store fileStorage, signer downloadSigner, downloadURL string, validate *validator.Validate, logger *zap.Logger) *FeeExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeExportService{fees: fees, storage: store, signer: signer, downloadURL: downloadURL, validator: validate, logger: logger}
}

// Export renders the current projection and stores it.
func (s *FeeExportService) Export(ctx context.Context, req dto.FeeExportRequest) (*dto.FeeExportResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "format must be csv or pdf")
	}
	renderer, err := export.ForFormat(req.Format)
	if err != nil {
		return nil, appErrors.Validation(err, "format must be csv or pdf")
	}

	views, err := s.fees.ProjectFees(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := renderer.Render(feeTable(views))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render fee report")
	}

	exportID := uuid.NewString()
	path := fmt.Sprintf("fees/%s/%s.%s", time.Now().UTC().Format("2006-01-02"), exportID, renderer.Extension())
	if err := s.storage.Save(path, payload); err != nil {
		return nil, appErrors.Internal(err, "failed to store fee report")
	}
	token, expiresAt, err := s.signer.Sign(exportID, path)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign download link")
	}

	s.logger.Info("fee report exported", zap.String("export_id", exportID), zap.String("format", req.Format), zap.Int("rows", len(views)))
	return &dto.FeeExportResult{
		ExportID:    exportID,
		Format:      req.Format,
		Rows:        len(views),
		DownloadURL: s.downloadURL + "?token=" + token,
		ExpiresAt:   expiresAt,
	}, nil
}

// Open verifies a download token and opens the referenced file.
func (s *FeeExportService) Open(token string) (*ExportDownload, error) {
	grant, err := s.signer.Verify(token)
	if err != nil {
		if errors.Is(err, storage.ErrExpiredToken) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	file, err := s.storage.Open(grant.Path)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
	}
	renderer, err := export.ForFormat(strings.TrimPrefix(filepath.Ext(grant.Path), "."))
	if err != nil {
		_ = file.Close()
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, appErrors.Internal(err, "failed to read export")
	}
	return &ExportDownload{
		File:        file,
		Filename:    "fee-report-" + grant.ExportID + "." + renderer.Extension(),
		ContentType: renderer.ContentType(),
		SizeBytes:   info.Size(),
	}, nil
}

func feeTable(views []models.FeeView) export.Table {
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{
			v.ID,
			v.StudentID,
			v.StudentName,
			strconv.FormatFloat(v.AmountDue, 'f', 2, 64),
			string(v.PaymentStatus),
			v.DueDate.Format("2006-01-02"),
			v.Semester,
		})
	}
	return export.Table{Title: "Student Fee Report", Headers: feeExportHeaders, Rows: rows}
}
