package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-portal-api/internal/dto"
	"github.com/noah-isme/campus-portal-api/internal/models"
	appErrors "github.com/noah-isme/campus-portal-api/pkg/errors"
)

func timetableFixture() (*TimetableService, *fakeTimetables) {
	users := newFakeUsers(
		newStudent("u1", "S1", "alice", "Alice"),
		&models.User{ID: "t1", Username: "amita", Role: models.RoleTeacher, Name: "Amita"},
	)
	courses := newFakeCourses(
		newCourse("CS101", 30, []string{"S1"}, nil),
		newCourse("PHY101", 30, nil, []string{"S1"}),
		newCourse("ENG101", 30, nil, nil),
	)
	slots := &fakeTimetables{}
	return NewTimetableService(slots, users, courses, nil, nil), slots
}

func TestTimetableCreate(t *testing.T) {
	svc, slots := timetableFixture()
	ctx := context.Background()

	slot, err := svc.Create(ctx, dto.CreateTimetableRequest{Course: "CS101", Day: "Monday", StartTime: "09:00", EndTime: "10:00", TeacherUsername: "amita"})
	require.NoError(t, err)
	assert.NotEmpty(t, slot.ID)

	_, err = svc.Create(ctx, dto.CreateTimetableRequest{Course: "CS101", Day: "Monday", StartTime: "09:00", EndTime: "10:00", TeacherUsername: "alice"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Equal(t, "Teacher not found.", appErrors.FromError(err).Message)

	_, err = svc.Create(ctx, dto.CreateTimetableRequest{Course: "CS101", Day: "Sunday", StartTime: "09:00", EndTime: "10:00", TeacherUsername: "amita"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Len(t, slots.slots, 1)
}

func TestTimetableForRole(t *testing.T) {
	svc, _ := timetableFixture()
	ctx := context.Background()
	for _, req := range []dto.CreateTimetableRequest{
		{Course: "CS101", Day: "Monday", StartTime: "09:00", EndTime: "10:00", TeacherUsername: "amita"},
		{Course: "PHY101", Day: "Tuesday", StartTime: "11:00", EndTime: "12:00", TeacherUsername: "amita"},
		{Course: "ENG101", Day: "Friday", StartTime: "14:00", EndTime: "15:00", TeacherUsername: "amita"},
	} {
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	teacher, err := svc.ForRole(ctx, models.RoleTeacher, "amita")
	require.NoError(t, err)
	assert.Len(t, teacher, 3)

	student, err := svc.ForRole(ctx, models.RoleStudent, "alice")
	require.NoError(t, err)
	assert.Len(t, student, 2)

	unknown, err := svc.ForRole(ctx, models.RoleStudent, "ghost")
	require.NoError(t, err)
	assert.Empty(t, unknown)

	_, err = svc.ForRole(ctx, "parent", "alice")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Equal(t, "Unauthorized role for timetable access.", appErrors.FromError(err).Message)
}
