package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/campus-portal-api/internal/models"
)

const courseColumns = `id, course_code, title, teacher_username, max_seats, enrolled_students, waitlist_students, version, created_at, updated_at`

// CourseRepository handles persistence of courses and their membership lists.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByCode returns a course by its code.
func (r *CourseRepository) FindByCode(ctx context.Context, courseCode string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE course_code = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, courseCode); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// Create persists a new course with empty membership lists.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	now := time.Now().UTC()
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	if course.EnrolledStudents == nil {
		course.EnrolledStudents = pq.StringArray{}
	}
	if course.WaitlistStudents == nil {
		course.WaitlistStudents = pq.StringArray{}
	}
	course.CreatedAt = now
	course.UpdatedAt = now
	const query = `INSERT INTO courses (id, course_code, title, teacher_username, max_seats, enrolled_students, waitlist_students, version, created_at, updated_at)
        VALUES (:id, :course_code, :title, :teacher_username, :max_seats, :enrolled_students, :waitlist_students, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// UpdateDetails locks the course row and replaces its descriptive fields. Capacity may not drop below
// the number of students already enrolled.
func (r *CourseRepository) UpdateDetails(ctx context.Context, courseCode, title string, maxSeats int, teacherUsername string) (course *models.Course, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin course update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	locked, err := lockCourse(ctx, tx, courseCode)
	if err != nil {
		return nil, err
	}
	if maxSeats < len(locked.EnrolledStudents) {
		return nil, ErrCapacityBelowEnrollment
	}

	locked.Title = title
	locked.MaxSeats = maxSeats
	locked.TeacherUsername = teacherUsername
	locked.Version++
	locked.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET title = $2, max_seats = $3, teacher_username = $4, version = $5, updated_at = $6 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, query, locked.ID, locked.Title, locked.MaxSeats, locked.TeacherUsername, locked.Version, locked.UpdatedAt); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit course update: %w", err)
	}
	return locked, nil
}

// ListAll returns the catalogue joined with the teacher's display name.
func (r *CourseRepository) ListAll(ctx context.Context) ([]models.CourseListing, error) {
	const query = `SELECT c.id, c.course_code, c.title, c.teacher_username, c.max_seats, c.enrolled_students, c.waitlist_students,
        c.version, c.created_at, c.updated_at,
        COALESCE(u.name, 'Unassigned Teacher') AS teacher_name,
        COALESCE(array_length(c.enrolled_students, 1), 0) AS enrolled_count,
        COALESCE(array_length(c.waitlist_students, 1), 0) AS waitlist_count
        FROM courses c
        LEFT JOIN users u ON u.username = c.teacher_username
        ORDER BY c.course_code ASC`
	var courses []models.CourseListing
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ListByTeacher returns courses taught by the given username.
func (r *CourseRepository) ListByTeacher(ctx context.Context, teacherUsername string) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE teacher_username = $1 ORDER BY course_code ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, teacherUsername); err != nil {
		return nil, fmt.Errorf("list teacher courses: %w", err)
	}
	return courses, nil
}

// ListCodesForStudent returns codes of courses where the student is enrolled or waitlisted.
func (r *CourseRepository) ListCodesForStudent(ctx context.Context, studentID string) ([]string, error) {
	const query = `SELECT course_code FROM courses WHERE $1 = ANY(enrolled_students) OR $1 = ANY(waitlist_students) ORDER BY course_code ASC`
	var codes []string
	if err := r.db.SelectContext(ctx, &codes, query, studentID); err != nil {
		return nil, fmt.Errorf("list student course codes: %w", err)
	}
	return codes, nil
}

// MembershipMutator rewrites a locked course's membership lists in place.
type MembershipMutator func(course *models.Course) error

// UpdateMembership locks the course row, lets mutate rewrite the membership lists and persists them,
// so concurrent transitions on the same course are serialized and each one sees the previous write.
func (r *CourseRepository) UpdateMembership(ctx context.Context, courseCode string, mutate MembershipMutator) (course *models.Course, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin membership transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	locked, err := lockCourse(ctx, tx, courseCode)
	if err != nil {
		return nil, err
	}

	if err = mutate(locked); err != nil {
		return nil, err
	}

	locked.Version++
	locked.UpdatedAt = time.Now().UTC()
	const updateQuery = `UPDATE courses SET enrolled_students = $2, waitlist_students = $3, version = $4, updated_at = $5 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, updateQuery, locked.ID, locked.EnrolledStudents, locked.WaitlistStudents, locked.Version, locked.UpdatedAt); err != nil {
		return nil, fmt.Errorf("update course membership: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit membership transaction: %w", err)
	}
	return locked, nil
}

func lockCourse(ctx context.Context, tx *sqlx.Tx, courseCode string) (*models.Course, error) {
	var locked models.Course
	query := `SELECT ` + courseColumns + ` FROM courses WHERE course_code = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &locked, query, courseCode); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock course: %w", err)
	}
	return &locked, nil
}
