package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// OrphanRule deletes dependents whose soft reference no longer resolves.
type OrphanRule struct {
	Collection string
	Statement  string
}

// OrphanRules covers every soft reference between collections.
var OrphanRules = []OrphanRule{
	{Collection: "marks", Statement: `DELETE FROM marks m WHERE m.kind = 'INDIVIDUAL'
        AND NOT EXISTS (SELECT 1 FROM users u WHERE u.role = 'student' AND u.student_id = m.student_id)`},
	{Collection: "attendance", Statement: `DELETE FROM attendance a
        WHERE NOT EXISTS (SELECT 1 FROM users u WHERE u.role = 'student' AND u.student_id = a.student_id)`},
	{Collection: "fees", Statement: `DELETE FROM fees f
        WHERE NOT EXISTS (SELECT 1 FROM users u WHERE u.role = 'student' AND u.student_id = f.student_id)`},
	{Collection: "appointments", Statement: `DELETE FROM appointments ap
        WHERE NOT EXISTS (SELECT 1 FROM users u WHERE u.role = 'student' AND u.student_id = ap.student_id)`},
	{Collection: "tickets", Statement: `DELETE FROM tickets t WHERE t.submitted_role = 'student'
        AND NOT EXISTS (SELECT 1 FROM users u WHERE u.role = 'student' AND u.username = t.submitted_by)`},
	{Collection: "timetables", Statement: `DELETE FROM timetables tt
        WHERE NOT EXISTS (SELECT 1 FROM courses c WHERE c.course_code = tt.course)`},
	{Collection: "course_marks", Statement: `DELETE FROM marks m
        WHERE NOT EXISTS (SELECT 1 FROM courses c WHERE c.course_code = m.course)`},
	{Collection: "course_attendance", Statement: `DELETE FROM attendance a
        WHERE NOT EXISTS (SELECT 1 FROM courses c WHERE c.course_code = a.course)`},
}

// IntegrityRepository removes dangling dependents left behind by interrupted writes.
type IntegrityRepository struct {
	db *sqlx.DB
}

// NewIntegrityRepository constructs the repository.
func NewIntegrityRepository(db *sqlx.DB) *IntegrityRepository {
	return &IntegrityRepository{db: db}
}

// DeleteOrphans applies one rule and returns the number of removed rows.
func (r *IntegrityRepository) DeleteOrphans(ctx context.Context, rule OrphanRule) (int64, error) {
	res, err := r.db.ExecContext(ctx, rule.Statement)
	if err != nil {
		return 0, fmt.Errorf("delete orphan %s: %w", rule.Collection, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("orphan %s rows: %w", rule.Collection, err)
	}
	return affected, nil
}
