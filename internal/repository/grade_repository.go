package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/digital-diary-api/internal/models"
)

const gradeColumns = "g.id, g.student_id, g.teacher_id, g.subject, g.value, g.date, g.created_at, g.updated_at"

// GradeRepository persists grades. Every query is scoped to the authoring teacher.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs a GradeRepository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// List returns the teacher's grades filtered by subject, class and date.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error) {
	args := []interface{}{filter.TeacherID}
	conditions := []string{"g.teacher_id = $1"}
	if filter.Subject != "" {
		args = append(args, filter.Subject)
		conditions = append(conditions, fmt.Sprintf("g.subject = $%d", len(args)))
	}
	if filter.ClassName != "" {
		args = append(args, filter.ClassName)
		conditions = append(conditions, fmt.Sprintf("s.class_name = $%d", len(args)))
	}
	if filter.Date != nil {
		args = append(args, models.DateKey(*filter.Date))
		conditions = append(conditions, fmt.Sprintf("g.date = $%d", len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM grades g JOIN students s ON s.id = g.student_id WHERE %s ORDER BY g.date, g.created_at",
		gradeColumns, strings.Join(conditions, " AND "))
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// FindForTeacher fetches a grade owned by teacherID.
func (r *GradeRepository) FindForTeacher(ctx context.Context, id, teacherID string) (*models.Grade, error) {
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	query := "SELECT " + gradeColumns + " FROM grades g WHERE g.id = $1 AND g.teacher_id = $2"
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, id, teacherID); err != nil {
		return nil, err
	}
	return &grade, nil
}

// Create inserts a grade. Several grades per student and date are allowed.
func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	prepareGrade(grade, time.Now().UTC())
	const query = `INSERT INTO grades (id, student_id, teacher_id, subject, value, date, created_at, updated_at)
        VALUES (:id, :student_id, :teacher_id, :subject, :value, :date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("create grade: %w", err)
	}
	return nil
}

// BulkCreate inserts grades in a single transaction.
func (r *GradeRepository) BulkCreate(ctx context.Context, grades []models.Grade) error {
	if len(grades) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range grades {
		prepareGrade(&grades[i], now)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin grade batch: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO grades (id, student_id, teacher_id, subject, value, date, created_at, updated_at)
        VALUES (:id, :student_id, :teacher_id, :subject, :value, :date, :created_at, :updated_at)`
	for start := 0; start < len(grades); start += bulkInsertChunk {
		end := start + bulkInsertChunk
		if end > len(grades) {
			end = len(grades)
		}
		if _, err = tx.NamedExecContext(ctx, query, grades[start:end]); err != nil {
			return fmt.Errorf("bulk create grades: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit grade batch: %w", err)
	}
	return nil
}

// UpdateValue changes only the value of a grade owned by teacherID.
func (r *GradeRepository) UpdateValue(ctx context.Context, id, teacherID string, value int) (*models.Grade, error) {
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	const query = `UPDATE grades g SET value = $3, updated_at = $4 WHERE g.id = $1 AND g.teacher_id = $2
        RETURNING ` + gradeColumns
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, id, teacherID, value, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &grade, nil
}

// DistinctSubjects lists the subjects the teacher has graded.
func (r *GradeRepository) DistinctSubjects(ctx context.Context, teacherID string) ([]string, error) {
	const query = `SELECT DISTINCT subject FROM grades WHERE teacher_id = $1 ORDER BY subject`
	var subjects []string
	if err := r.db.SelectContext(ctx, &subjects, query, teacherID); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// DistinctClasses lists the classes the teacher has graded within a subject.
func (r *GradeRepository) DistinctClasses(ctx context.Context, teacherID, subject string) ([]string, error) {
	const query = `SELECT DISTINCT s.class_name FROM grades g JOIN students s ON s.id = g.student_id
        WHERE g.teacher_id = $1 AND g.subject = $2 ORDER BY s.class_name`
	var classes []string
	if err := r.db.SelectContext(ctx, &classes, query, teacherID, subject); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// DeleteAll removes every grade.
func (r *GradeRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM grades"); err != nil {
		return fmt.Errorf("delete grades: %w", err)
	}
	return nil
}

func prepareGrade(grade *models.Grade, now time.Time) {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	grade.Date = models.TruncateDate(grade.Date)
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = now
	}
	grade.UpdatedAt = now
}
