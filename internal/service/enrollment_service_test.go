package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-portal-api/internal/dto"
	"github.com/noah-isme/campus-portal-api/internal/models"
	appErrors "github.com/noah-isme/campus-portal-api/pkg/errors"
)

func newCourse(code string, seats int, enrolled, waitlist []string) *models.Course {
	return &models.Course{
		ID:               "c-" + code,
		CourseCode:       code,
		Title:            code,
		MaxSeats:         seats,
		EnrolledStudents: pq.StringArray(enrolled),
		WaitlistStudents: pq.StringArray(waitlist),
	}
}

func TestApplyTransitionCapacityBoundary(t *testing.T) {
	course := newCourse("CS101", 2, []string{"S1"}, nil)

	outcome, err := applyTransition(course, "S2", models.ActionEnroll)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeEnrolled, outcome)

	outcome, err = applyTransition(course, "S3", models.ActionEnroll)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeWaitlistedCapacity, outcome)
	assert.Equal(t, []string{"S1", "S2"}, []string(course.EnrolledStudents))
	assert.Equal(t, []string{"S3"}, []string(course.WaitlistStudents))
}

func TestApplyTransitionDropDoesNotPromote(t *testing.T) {
	course := newCourse("CS101", 1, []string{"S1"}, []string{"S2"})

	outcome, err := applyTransition(course, "S1", models.ActionDrop)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeDropped, outcome)
	assert.Empty(t, course.EnrolledStudents)
	assert.Equal(t, []string{"S2"}, []string(course.WaitlistStudents))
}

func TestApplyTransitionDropIsIdempotent(t *testing.T) {
	course := newCourse("CS101", 3, []string{"S1"}, []string{"S2"})

	outcome, err := applyTransition(course, "S9", models.ActionDrop)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeDropped, outcome)
	assert.Equal(t, []string{"S1"}, []string(course.EnrolledStudents))
	assert.Equal(t, []string{"S2"}, []string(course.WaitlistStudents))
}

func TestApplyTransitionMovesBetweenLists(t *testing.T) {
	course := newCourse("CS101", 3, []string{"S1"}, nil)

	_, err := applyTransition(course, "S1", models.ActionWaitlist)
	require.NoError(t, err)
	assert.Empty(t, course.EnrolledStudents)
	assert.Equal(t, []string{"S1"}, []string(course.WaitlistStudents))

	_, err = applyTransition(course, "S1", models.ActionEnroll)
	require.NoError(t, err)
	assert.Equal(t, []string{"S1"}, []string(course.EnrolledStudents))
	assert.Empty(t, course.WaitlistStudents)
}

func TestApplyTransitionRejectsUnknownAction(t *testing.T) {
	course := newCourse("CS101", 3, []string{"S1"}, nil)
	_, err := applyTransition(course, "S1", "promote")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, []string{"S1"}, []string(course.EnrolledStudents))
}

func TestApplyTransitionInvariantsHoldForAnySequence(t *testing.T) {
	course := newCourse("CS101", 2, nil, nil)
	actions := []models.EnrollmentAction{models.ActionEnroll, models.ActionWaitlist, models.ActionDrop}
	students := []string{"S1", "S2", "S3", "S4"}

	for i := 0; i < 200; i++ {
		student := students[(i*7)%len(students)]
		action := actions[(i*5+i/3)%len(actions)]
		_, err := applyTransition(course, student, action)
		require.NoError(t, err)

		assert.LessOrEqual(t, len(course.EnrolledStudents), course.MaxSeats)
		seen := map[string]int{}
		for _, id := range course.EnrolledStudents {
			seen[id]++
		}
		for _, id := range course.WaitlistStudents {
			seen[id]++
		}
		for id, n := range seen {
			assert.Equalf(t, 1, n, "student %s appears %d times", id, n)
		}
	}
}

func TestEnrollmentTransitionMessages(t *testing.T) {
	users := newFakeUsers(newStudent("u1", "S1", "alice", "Alice"))
	courses := newFakeCourses(newCourse("CS101", 1, nil, nil))
	svc := NewEnrollmentService(courses, users, nil, nil, nil)

	res, err := svc.Transition(context.Background(), "CS101", dto.EnrollmentTransitionRequest{StudentID: "S1", Action: models.ActionEnroll})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeEnrolled, res.Outcome)
	assert.Equal(t, "Student Alice (S1) successfully enrolled in CS101.", res.Message)
	assert.Equal(t, int64(1), res.Course.Version)

	res, err = svc.Transition(context.Background(), "CS101", dto.EnrollmentTransitionRequest{StudentID: "S1", Action: models.ActionDrop})
	require.NoError(t, err)
	assert.Equal(t, "Student Alice (S1) successfully dropped from CS101/waitlist.", res.Message)
}

func TestEnrollmentTransitionFullCourse(t *testing.T) {
	users := newFakeUsers(newStudent("u2", "S2", "bob", "Bob"))
	courses := newFakeCourses(newCourse("CS101", 1, []string{"S1"}, nil))
	svc := NewEnrollmentService(courses, users, nil, nil, nil)

	res, err := svc.Transition(context.Background(), "CS101", dto.EnrollmentTransitionRequest{StudentID: "S2", Action: models.ActionEnroll})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeWaitlistedCapacity, res.Outcome)
	assert.Equal(t, "Course CS101 is full. Student Bob (S2) added to waitlist.", res.Message)
}

func TestEnrollmentTransitionErrors(t *testing.T) {
	users := newFakeUsers(newStudent("u1", "S1", "alice", "Alice"))
	courses := newFakeCourses(newCourse("CS101", 1, nil, nil))
	svc := NewEnrollmentService(courses, users, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Transition(ctx, "CS101", dto.EnrollmentTransitionRequest{Action: models.ActionEnroll})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Transition(ctx, "CS101", dto.EnrollmentTransitionRequest{StudentID: "S1", Action: "promote"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Transition(ctx, "CS101", dto.EnrollmentTransitionRequest{StudentID: "S404", Action: models.ActionEnroll})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Transition(ctx, "NOPE", dto.EnrollmentTransitionRequest{StudentID: "S1", Action: models.ActionEnroll})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Equal(t, "Course or Student not found.", appErrors.FromError(err).Message)
}

func TestEnrollmentConcurrentEnrollNeverOverfills(t *testing.T) {
	var students []*models.User
	for i := 0; i < 20; i++ {
		students = append(students, newStudent(fmt.Sprintf("u%d", i), fmt.Sprintf("S%d", i), fmt.Sprintf("user%d", i), fmt.Sprintf("Student %d", i)))
	}
	users := newFakeUsers(students...)
	courses := newFakeCourses(newCourse("CS101", 5, nil, nil))
	svc := NewEnrollmentService(courses, users, NewMetricsService(), nil, nil)

	var wg sync.WaitGroup
	for _, st := range students {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := svc.Transition(context.Background(), "CS101", dto.EnrollmentTransitionRequest{StudentID: id, Action: models.ActionEnroll})
			assert.NoError(t, err)
		}(st.StudentKey())
	}
	wg.Wait()

	course, err := courses.FindByCode(context.Background(), "CS101")
	require.NoError(t, err)
	assert.Len(t, course.EnrolledStudents, 5)
	assert.Len(t, course.WaitlistStudents, 15)
	assert.Equal(t, int64(20), course.Version)
}

func TestEnrollmentResolvesNames(t *testing.T) {
	users := newFakeUsers(newStudent("u1", "S1", "alice", "Alice"), newStudent("u2", "S2", "bob", "Bob"))
	courses := newFakeCourses(newCourse("CS101", 1, []string{"S1"}, []string{"S2", "GONE"}))
	svc := NewEnrollmentService(courses, users, nil, nil, nil)

	view, err := svc.Enrollment(context.Background(), "CS101")
	require.NoError(t, err)
	assert.Equal(t, []models.StudentName{{StudentID: "S1", Name: "Alice"}}, view.Enrolled)
	assert.Equal(t, []models.StudentName{{StudentID: "S2", Name: "Bob"}}, view.Waitlist)

	_, err = svc.Enrollment(context.Background(), "NOPE")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
