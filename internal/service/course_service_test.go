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

func TestCourseCreateUsesActingTeacher(t *testing.T) {
	courses := newFakeCourses(newCourse("CS101", 30, nil, nil))
	svc := NewCourseService(courses, newFakeUsers(), nil, nil)
	actor := &models.JWTClaims{Username: "amita", Role: models.RoleTeacher}

	course, err := svc.Create(context.Background(), actor, dto.CreateCourseRequest{CourseCode: "MATH101", Title: "Calculus", MaxSeats: 25})
	require.NoError(t, err)
	assert.Equal(t, "amita", course.TeacherUsername)

	_, err = svc.Create(context.Background(), actor, dto.CreateCourseRequest{CourseCode: "CS101", Title: "Dup", MaxSeats: 10})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Equal(t, "Course Code already exists.", appErrors.FromError(err).Message)

	_, err = svc.Create(context.Background(), actor, dto.CreateCourseRequest{CourseCode: "X", Title: "No seats"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func courseStaff() *fakeUsers {
	return newFakeUsers(
		&models.User{ID: "t1", Username: "sachin", Role: models.RoleTeacher, Name: "Sachin"},
		newStudent("u1", "S1", "alice", "Alice"),
	)
}

func TestCourseUpdateAndLists(t *testing.T) {
	courses := newFakeCourses(newCourse("CS101", 30, []string{"S1", "S2"}, nil))
	svc := NewCourseService(courses, courseStaff(), nil, nil)
	ctx := context.Background()

	course, err := svc.Update(ctx, "CS101", dto.UpdateCourseRequest{Title: "Intro CS", MaxSeats: 2, TeacherUsername: "sachin"})
	require.NoError(t, err)
	assert.Equal(t, 2, course.MaxSeats)
	assert.Len(t, course.EnrolledStudents, 2)

	_, err = svc.Update(ctx, "NOPE", dto.UpdateCourseRequest{Title: "X", MaxSeats: 1, TeacherUsername: "sachin"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	mine, err := svc.ListMine(ctx, &models.JWTClaims{Username: "sachin", Role: models.RoleTeacher})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Unassigned Teacher", all[0].TeacherName)
}

func TestCourseUpdateKeepsCapacityAboveEnrollment(t *testing.T) {
	courses := newFakeCourses(newCourse("CS101", 2, []string{"S1", "S2"}, []string{"S3"}))
	svc := NewCourseService(courses, courseStaff(), nil, nil)
	ctx := context.Background()

	_, err := svc.Update(ctx, "CS101", dto.UpdateCourseRequest{Title: "Intro", MaxSeats: 1, TeacherUsername: "sachin"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Equal(t, "Max seats cannot be lower than the number of enrolled students.", appErrors.FromError(err).Message)

	_, err = svc.Update(ctx, "CS101", dto.UpdateCourseRequest{Title: "Intro", MaxSeats: 0, TeacherUsername: "sachin"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	stored, err := courses.FindByCode(ctx, "CS101")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.MaxSeats)
	assert.LessOrEqual(t, len(stored.EnrolledStudents), stored.MaxSeats)
}

func TestCourseUpdateRequiresStaffTeacher(t *testing.T) {
	courses := newFakeCourses(newCourse("CS101", 30, nil, nil))
	svc := NewCourseService(courses, courseStaff(), nil, nil)
	ctx := context.Background()

	_, err := svc.Update(ctx, "CS101", dto.UpdateCourseRequest{Title: "Intro", MaxSeats: 30, TeacherUsername: "nobody"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Equal(t, "Teacher not found.", appErrors.FromError(err).Message)

	_, err = svc.Update(ctx, "CS101", dto.UpdateCourseRequest{Title: "Intro", MaxSeats: 30, TeacherUsername: "alice"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	stored, err := courses.FindByCode(ctx, "CS101")
	require.NoError(t, err)
	assert.Equal(t, "CS101", stored.Title)
}
