package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-portal-api/internal/models"
)

// CascadeStep is one (collection, filter) statement of a deletion cascade.
type CascadeStep struct {
	Name       string
	Collection string
	Statement  string
	Args       []interface{}
	// Primary steps must affect at least one row or the whole cascade is abandoned.
	Primary bool
}

// CascadeStepResult records how many rows a step touched.
type CascadeStepResult struct {
	Name       string `json:"step"`
	Collection string `json:"collection"`
	Affected   int64  `json:"affected"`
}

// CascadeStepError names the step that failed.
type CascadeStepError struct {
	Step string
	Err  error
}

func (e *CascadeStepError) Error() string {
	return fmt.Sprintf("cascade step %s: %v", e.Step, e.Err)
}

func (e *CascadeStepError) Unwrap() error { return e.Err }

// StudentCascade lists the statements removing a student and everything that references it.
func StudentCascade(user *models.User) []CascadeStep {
	studentID := user.StudentKey()
	return []CascadeStep{
		{Name: "user", Collection: "users", Statement: `DELETE FROM users WHERE id = $1 AND role = 'student'`, Args: []interface{}{user.ID}, Primary: true},
		{Name: "marks", Collection: "marks", Statement: `DELETE FROM marks WHERE kind = 'INDIVIDUAL' AND student_id = $1`, Args: []interface{}{studentID}},
		{Name: "attendance", Collection: "attendance", Statement: `DELETE FROM attendance WHERE student_id = $1`, Args: []interface{}{studentID}},
		{Name: "fees", Collection: "fees", Statement: `DELETE FROM fees WHERE student_id = $1`, Args: []interface{}{studentID}},
		{Name: "appointments", Collection: "appointments", Statement: `DELETE FROM appointments WHERE student_id = $1`, Args: []interface{}{studentID}},
		{Name: "tickets", Collection: "tickets", Statement: `DELETE FROM tickets WHERE submitted_by = $1 AND submitted_role = 'student'`, Args: []interface{}{user.Username}},
		{Name: "course_membership", Collection: "courses", Statement: `UPDATE courses SET enrolled_students = array_remove(enrolled_students, $1),
        waitlist_students = array_remove(waitlist_students, $1), version = version + 1
        WHERE $1 = ANY(enrolled_students) OR $1 = ANY(waitlist_students)`, Args: []interface{}{studentID}},
	}
}

// CourseCascade lists the statements removing a course and everything that references its code.
func CourseCascade(courseCode string) []CascadeStep {
	return []CascadeStep{
		{Name: "course", Collection: "courses", Statement: `DELETE FROM courses WHERE course_code = $1`, Args: []interface{}{courseCode}, Primary: true},
		{Name: "timetables", Collection: "timetables", Statement: `DELETE FROM timetables WHERE course = $1`, Args: []interface{}{courseCode}},
		{Name: "marks", Collection: "marks", Statement: `DELETE FROM marks WHERE course = $1`, Args: []interface{}{courseCode}},
		{Name: "attendance", Collection: "attendance", Statement: `DELETE FROM attendance WHERE course = $1`, Args: []interface{}{courseCode}},
		{Name: "courses_taught", Collection: "users", Statement: `UPDATE users SET courses_taught = array_remove(courses_taught, $1)
        WHERE $1 = ANY(courses_taught)`, Args: []interface{}{courseCode}},
	}
}

// CascadeRepository executes deletion cascades atomically.
type CascadeRepository struct {
	db *sqlx.DB
}

// NewCascadeRepository constructs the repository.
func NewCascadeRepository(db *sqlx.DB) *CascadeRepository {
	return &CascadeRepository{db: db}
}

// Run executes steps in order inside one transaction. Any failing step rolls back every earlier one,
// including the primary delete, and is reported as a *CascadeStepError. A primary step that matches
// nothing aborts with sql.ErrNoRows.
func (r *CascadeRepository) Run(ctx context.Context, steps []CascadeStep) (results []CascadeStepResult, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin cascade: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	results = make([]CascadeStepResult, 0, len(steps))
	for _, step := range steps {
		res, execErr := tx.ExecContext(ctx, step.Statement, step.Args...)
		if execErr != nil {
			return nil, &CascadeStepError{Step: step.Name, Err: execErr}
		}
		affected, rowsErr := res.RowsAffected()
		if rowsErr != nil {
			return nil, &CascadeStepError{Step: step.Name, Err: rowsErr}
		}
		if step.Primary && affected == 0 {
			return nil, sql.ErrNoRows
		}
		results = append(results, CascadeStepResult{Name: step.Name, Collection: step.Collection, Affected: affected})
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit cascade: %w", err)
	}
	return results, nil
}
