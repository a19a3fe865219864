package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-portal-api/internal/dto"
	"github.com/noah-isme/campus-portal-api/internal/models"
	appErrors "github.com/noah-isme/campus-portal-api/pkg/errors"
)

func feeRow(userID, studentID, name string, feeID string, amount float64, status models.PaymentStatus) models.StudentFeeRow {
	row := models.StudentFeeRow{UserID: userID, StudentID: studentID, StudentName: name}
	if feeID != "" {
		due := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		semester := "Fall"
		row.FeeID = &feeID
		row.AmountDue = &amount
		row.PaymentStatus = &status
		row.DueDate = &due
		row.Semester = &semester
	}
	return row
}

func TestProjectFeesIsTotalAndPreservesMultiplicity(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := []models.StudentFeeRow{
		feeRow("u1", "S1", "Alice", "f1", 5000, models.PaymentUnpaid),
		feeRow("u1", "S1", "Alice", "f2", 1200, models.PaymentFullyPaid),
		feeRow("u2", "S2", "Bob", "", 0, ""),
	}

	views := projectFeeRows(rows, 5000, now)
	require.Len(t, views, 3)
	assert.Equal(t, "f1", views[0].ID)
	assert.Equal(t, "f2", views[1].ID)
	assert.False(t, views[0].Synthetic)

	synthetic := views[2]
	assert.True(t, synthetic.Synthetic)
	assert.Equal(t, "default-u2", synthetic.ID)
	assert.Equal(t, models.PaymentNoRecord, synthetic.PaymentStatus)
	assert.Equal(t, 5000.0, synthetic.AmountDue)
	assert.Equal(t, "N/A", synthetic.Semester)
	assert.Equal(t, now.AddDate(1, 0, 0), synthetic.DueDate)
	assert.Equal(t, "Bob", synthetic.StudentName)
}

func TestProjectFeesUsesCache(t *testing.T) {
	repo := &fakeFees{rows: []models.StudentFeeRow{feeRow("u1", "S1", "Alice", "", 0, "")}}
	svc := NewFeeService(repo, newFakeUsers(), newTestCache(newMemoryCache()), 0, nil, nil)

	first, err := svc.ProjectFees(context.Background())
	require.NoError(t, err)
	second, err := svc.ProjectFees(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestProjectFeesCachedSyntheticDueDateFollowsClock(t *testing.T) {
	repo := &fakeFees{rows: []models.StudentFeeRow{
		feeRow("u1", "S1", "Alice", "f1", 5000, models.PaymentUnpaid),
		feeRow("u2", "S2", "Bob", "", 0, ""),
	}}
	svc := NewFeeService(repo, newFakeUsers(), newTestCache(newMemoryCache()), 5000, nil, nil)
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	ctx := context.Background()

	_, err := svc.ProjectFees(ctx)
	require.NoError(t, err)

	clock = clock.Add(48 * time.Hour)
	views, err := svc.ProjectFees(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, 1, repo.calls)
	assert.True(t, views[0].DueDate.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, views[1].DueDate.Equal(clock.AddDate(1, 0, 0)))
}

func TestUpdateFeeStatus(t *testing.T) {
	repo := &fakeFees{fees: map[string]*models.Fee{"f1": {ID: "f1", StudentID: "S1", PaymentStatus: models.PaymentUnpaid}}}
	svc := NewFeeService(repo, newFakeUsers(), nil, 0, nil, nil)
	ctx := context.Background()

	fee, err := svc.UpdateFeeStatus(ctx, "f1", models.PaymentPartiallyPaid)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPartiallyPaid, fee.PaymentStatus)

	_, err = svc.UpdateFeeStatus(ctx, "f1", "Refunded")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.UpdateFeeStatus(ctx, "f1", models.PaymentNoRecord)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.UpdateFeeStatus(ctx, "default-u2", models.PaymentFullyPaid)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Equal(t, "Fee record not found. Please add a new fee record for this student first.", appErrors.FromError(err).Message)

	_, err = svc.UpdateFeeStatus(ctx, "missing", models.PaymentFullyPaid)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestCreateFeeRequiresStudent(t *testing.T) {
	repo := &fakeFees{}
	svc := NewFeeService(repo, newFakeUsers(newStudent("u1", "S1", "alice", "Alice")), nil, 0, nil, nil)
	due := time.Now().AddDate(0, 6, 0)

	fee, err := svc.CreateFee(context.Background(), dto.CreateFeeRequest{StudentID: "S1", AmountDue: 300, DueDate: due, Semester: "Spring"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentUnpaid, fee.PaymentStatus)
	assert.Len(t, repo.created, 1)

	_, err = svc.CreateFee(context.Background(), dto.CreateFeeRequest{StudentID: "S9", AmountDue: 300, DueDate: due, Semester: "Spring"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestDefaultFee(t *testing.T) {
	svc := NewFeeService(&fakeFees{}, newFakeUsers(), nil, 0, nil, nil)
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	fee := svc.DefaultFee("S1")
	assert.Equal(t, 5000.0, fee.AmountDue)
	assert.Equal(t, models.PaymentUnpaid, fee.PaymentStatus)
	assert.Equal(t, "New Enrollment", fee.Semester)
	assert.Equal(t, now.AddDate(1, 0, 0), fee.DueDate)
	assert.True(t, IsSyntheticFeeID("default-abc"))
	assert.False(t, IsSyntheticFeeID(fee.ID))
}
