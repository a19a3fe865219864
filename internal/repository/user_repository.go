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

const userColumns = `id, username, password, role, student_id, name, courses_taught, created_at, updated_at`

// UserRepository provides database access for user accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// FindByUsername returns a user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &user, nil
}

// FindStudent returns the student account owning studentID.
func (r *UserRepository) FindStudent(ctx context.Context, studentID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE student_id = $1 AND role = $2 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, studentID, models.RoleStudent); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &user, nil
}

// FindStaff returns a teacher or admin by username.
func (r *UserRepository) FindStaff(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND role = ANY($2) LIMIT 1`
	roles := pq.Array([]string{string(models.RoleTeacher), string(models.RoleAdmin)})
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, username, roles); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find staff: %w", err)
	}
	return &user, nil
}

// ExistsByUsernameOrStudentID reports whether either identifier is already registered, ignoring excludeID.
func (r *UserRepository) ExistsByUsernameOrStudentID(ctx context.Context, username, studentID, excludeID string) (bool, error) {
	const query = `SELECT EXISTS (
        SELECT 1 FROM users
        WHERE (username = $1 OR ($2 <> '' AND student_id = $2)) AND id <> $3
    )`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, username, studentID, excludeID); err != nil {
		return false, fmt.Errorf("check user uniqueness: %w", err)
	}
	return exists, nil
}

// ListStudents returns every student account ordered by student id.
func (r *UserRepository) ListStudents(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY student_id ASC`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, models.RoleStudent); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return users, nil
}

// ListStudentNames resolves student ids to names, preserving no particular order.
func (r *UserRepository) ListStudentNames(ctx context.Context, studentIDs []string) ([]models.StudentName, error) {
	if len(studentIDs) == 0 {
		return []models.StudentName{}, nil
	}
	const query = `SELECT student_id, name FROM users WHERE role = $1 AND student_id = ANY($2)`
	var names []models.StudentName
	if err := r.db.SelectContext(ctx, &names, query, models.RoleStudent, pq.Array(studentIDs)); err != nil {
		return nil, fmt.Errorf("list student names: %w", err)
	}
	return names, nil
}

// Create persists a user and, when provided, the user's initial fee record in the same transaction.
func (r *UserRepository) Create(ctx context.Context, user *models.User, initialFee *models.Fee) (err error) {
	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CoursesTaught == nil {
		user.CoursesTaught = pq.StringArray{}
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create user: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertUser = `INSERT INTO users (id, username, password, role, student_id, name, courses_taught, created_at, updated_at)
        VALUES (:id, :username, :password, :role, :student_id, :name, :courses_taught, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertUser, user); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}

	if initialFee != nil {
		if err = insertFee(ctx, tx, initialFee); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create user: %w", err)
	}
	return nil
}

// UpdateStudent updates a student's profile fields. When the student id or username changes, every soft
// reference to the old value is rewritten in the same transaction so no dependent record is orphaned.
func (r *UserRepository) UpdateStudent(ctx context.Context, user *models.User, previous *models.User) (err error) {
	user.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update student: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `UPDATE users SET name = :name, student_id = :student_id, username = :username, updated_at = :updated_at
        WHERE id = :id AND role = 'student'`
	res, err := tx.NamedExecContext(ctx, query, user)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update student rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	oldID, newID := previous.StudentKey(), user.StudentKey()
	if oldID != "" && newID != "" && oldID != newID {
		for _, stmt := range studentIDRenames {
			if _, err = tx.ExecContext(ctx, stmt, oldID, newID); err != nil {
				return fmt.Errorf("rename student references: %w", err)
			}
		}
	}
	if previous.Username != user.Username {
		const renameTickets = `UPDATE tickets SET submitted_by = $2 WHERE submitted_by = $1 AND submitted_role = 'student'`
		if _, err = tx.ExecContext(ctx, renameTickets, previous.Username, user.Username); err != nil {
			return fmt.Errorf("rename ticket submitter: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update student: %w", err)
	}
	return nil
}

var studentIDRenames = []string{
	`UPDATE marks SET student_id = $2 WHERE kind = 'INDIVIDUAL' AND student_id = $1`,
	`UPDATE attendance SET student_id = $2 WHERE student_id = $1`,
	`UPDATE fees SET student_id = $2 WHERE student_id = $1`,
	`UPDATE appointments SET student_id = $2 WHERE student_id = $1`,
	`UPDATE courses SET enrolled_students = array_replace(enrolled_students, $1, $2),
        waitlist_students = array_replace(waitlist_students, $1, $2), version = version + 1
        WHERE $1 = ANY(enrolled_students) OR $1 = ANY(waitlist_students)`,
}
