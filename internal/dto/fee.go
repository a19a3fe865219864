package dto

import (
	"time"

	"github.com/noah-isme/campus-portal-api/internal/models"
)

// CreateFeeRequest adds a real fee record for an existing student.
type CreateFeeRequest struct {
	StudentID     string               `json:"studentId" validate:"required"`
	AmountDue     float64              `json:"amountDue" validate:"gt=0"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus" validate:"omitempty,oneof=Unpaid 'Partially Paid' 'Fully Paid'"`
	DueDate       time.Time            `json:"dueDate" validate:"required"`
	Semester      string               `json:"semester" validate:"required"`
}

// UpdateFeeStatusRequest changes a stored fee's payment status.
type UpdateFeeStatusRequest struct {
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
}

// FeeExportRequest selects the export document format.
type FeeExportRequest struct {
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}

// FeeExportResult points at a stored export.
type FeeExportResult struct {
	ExportID    string    `json:"exportId"`
	Format      string    `json:"format"`
	Rows        int       `json:"rows"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
