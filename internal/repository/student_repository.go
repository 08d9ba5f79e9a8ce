package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/digital-diary-api/internal/models"
)

const (
	studentColumns  = "id, first_name, last_name, class_name, created_at, updated_at"
	bulkInsertChunk = 500
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters ordered by class and name.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.ClassName != "" {
		args = append(args, filter.ClassName)
		conditions = append(conditions, fmt.Sprintf("class_name = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d OR LOWER(class_name) LIKE $%d)", len(args), len(args), len(args)))
	}
	where := strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM students WHERE %s ORDER BY class_name, last_name, first_name LIMIT %d OFFSET %d", studentColumns, where, size, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students WHERE "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListByClass returns the full roster of a class ordered by last then first name.
func (r *StudentRepository) ListByClass(ctx context.Context, className string) ([]models.Student, error) {
	query := "SELECT " + studentColumns + " FROM students WHERE class_name = $1 ORDER BY last_name, first_name"
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, className); err != nil {
		return nil, fmt.Errorf("list class students: %w", err)
	}
	return students, nil
}

// FindInClass fetches a student only if they belong to className.
func (r *StudentRepository) FindInClass(ctx context.Context, id, className string) (*models.Student, error) {
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	query := "SELECT " + studentColumns + " FROM students WHERE id = $1 AND class_name = $2"
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id, className); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	prepareStudent(student, time.Now().UTC())
	const query = `INSERT INTO students (id, first_name, last_name, class_name, created_at, updated_at)
        VALUES (:id, :first_name, :last_name, :class_name, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// BulkCreate inserts students in multi-row batches.
func (r *StudentRepository) BulkCreate(ctx context.Context, students []models.Student) error {
	now := time.Now().UTC()
	for i := range students {
		prepareStudent(&students[i], now)
	}
	const query = `INSERT INTO students (id, first_name, last_name, class_name, created_at, updated_at)
        VALUES (:id, :first_name, :last_name, :class_name, :created_at, :updated_at)`
	for start := 0; start < len(students); start += bulkInsertChunk {
		end := start + bulkInsertChunk
		if end > len(students) {
			end = len(students)
		}
		if _, err := r.db.NamedExecContext(ctx, query, students[start:end]); err != nil {
			return fmt.Errorf("bulk create students: %w", err)
		}
	}
	return nil
}

// Delete removes a student. Grades and attendance cascade at the storage level.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return sql.ErrNoRows
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteAll truncates the student table, cascading to grades and attendance.
func (r *StudentRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM students"); err != nil {
		return fmt.Errorf("delete students: %w", err)
	}
	return nil
}

func prepareStudent(student *models.Student, now time.Time) {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
}

// validID reports whether id can match a UUID primary key. Lookups by a
// malformed id answer sql.ErrNoRows without reaching Postgres.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// IsNotFound reports whether err means a repository lookup matched no row.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
