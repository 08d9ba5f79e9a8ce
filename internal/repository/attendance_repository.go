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

const attendanceColumns = "a.id, a.student_id, a.teacher_id, a.date, a.present, a.created_at, a.updated_at"

type attendanceUpsertRow struct {
	models.Attendance
	Created bool `db:"created"`
}

type queryer interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// AttendanceRepository persists attendance marks. The (student, teacher, date)
// natural key is backed by a unique index so create-if-absent is a single statement.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// List returns the teacher's attendance filtered by class and date.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error) {
	args := []interface{}{filter.TeacherID}
	conditions := []string{"a.teacher_id = $1"}
	if filter.ClassName != "" {
		args = append(args, filter.ClassName)
		conditions = append(conditions, fmt.Sprintf("s.class_name = $%d", len(args)))
	}
	if filter.Date != nil {
		args = append(args, models.DateKey(*filter.Date))
		conditions = append(conditions, fmt.Sprintf("a.date = $%d", len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM attendance a JOIN students s ON s.id = a.student_id WHERE %s ORDER BY a.date",
		attendanceColumns, strings.Join(conditions, " AND "))
	var records []models.Attendance
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// FindForTeacher fetches an attendance record owned by teacherID.
func (r *AttendanceRepository) FindForTeacher(ctx context.Context, id, teacherID string) (*models.Attendance, error) {
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	query := "SELECT " + attendanceColumns + " FROM attendance a WHERE a.id = $1 AND a.teacher_id = $2"
	var record models.Attendance
	if err := r.db.GetContext(ctx, &record, query, id, teacherID); err != nil {
		return nil, err
	}
	return &record, nil
}

// GetOrCreate inserts record unless its natural key already exists, in which
// case the stored row is returned untouched.
func (r *AttendanceRepository) GetOrCreate(ctx context.Context, record models.Attendance) (*models.Attendance, bool, error) {
	prepareAttendance(&record, time.Now().UTC())
	const insert = `INSERT INTO attendance AS a (id, student_id, teacher_id, date, present, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (student_id, teacher_id, date) DO NOTHING
        RETURNING ` + attendanceColumns
	var created models.Attendance
	err := r.db.GetContext(ctx, &created, insert,
		record.ID, record.StudentID, record.TeacherID, models.DateKey(record.Date), record.Present, record.CreatedAt, record.UpdatedAt)
	if err == nil {
		return &created, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("create attendance: %w", err)
	}

	const existing = "SELECT " + attendanceColumns + ` FROM attendance a
        WHERE a.student_id = $1 AND a.teacher_id = $2 AND a.date = $3`
	var found models.Attendance
	if err := r.db.GetContext(ctx, &found, existing, record.StudentID, record.TeacherID, models.DateKey(record.Date)); err != nil {
		return nil, false, fmt.Errorf("load attendance: %w", err)
	}
	return &found, false, nil
}

// Upsert creates the record or sets present on the existing row for the natural key.
func (r *AttendanceRepository) Upsert(ctx context.Context, record models.Attendance) (*models.Attendance, bool, error) {
	return upsertAttendance(ctx, r.db, record, time.Now().UTC())
}

// UpsertBatch applies Upsert for every record inside one transaction and
// returns how many rows were written.
func (r *AttendanceRepository) UpsertBatch(ctx context.Context, records []models.Attendance) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin attendance batch: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for _, record := range records {
		if _, _, err = upsertAttendance(ctx, tx, record, now); err != nil {
			return 0, err
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit attendance batch: %w", err)
	}
	return len(records), nil
}

func upsertAttendance(ctx context.Context, q queryer, record models.Attendance, now time.Time) (*models.Attendance, bool, error) {
	prepareAttendance(&record, now)
	const query = `INSERT INTO attendance AS a (id, student_id, teacher_id, date, present, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (student_id, teacher_id, date) DO UPDATE SET present = EXCLUDED.present, updated_at = EXCLUDED.updated_at
        RETURNING ` + attendanceColumns + `, (a.xmax = 0) AS created`
	var row attendanceUpsertRow
	if err := q.GetContext(ctx, &row, query,
		record.ID, record.StudentID, record.TeacherID, models.DateKey(record.Date), record.Present, record.CreatedAt, record.UpdatedAt); err != nil {
		return nil, false, fmt.Errorf("upsert attendance: %w", err)
	}
	return &row.Attendance, row.Created, nil
}

// Toggle flips present on a record owned by teacherID in one statement.
func (r *AttendanceRepository) Toggle(ctx context.Context, id, teacherID string) (*models.Attendance, error) {
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	const query = `UPDATE attendance a SET present = NOT a.present, updated_at = $3
        WHERE a.id = $1 AND a.teacher_id = $2
        RETURNING ` + attendanceColumns
	var record models.Attendance
	if err := r.db.GetContext(ctx, &record, query, id, teacherID, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &record, nil
}

// BulkInsert writes seed rows, skipping any whose natural key already exists.
func (r *AttendanceRepository) BulkInsert(ctx context.Context, records []models.Attendance) (int64, error) {
	now := time.Now().UTC()
	for i := range records {
		prepareAttendance(&records[i], now)
	}
	const query = `INSERT INTO attendance (id, student_id, teacher_id, date, present, created_at, updated_at)
        VALUES (:id, :student_id, :teacher_id, :date, :present, :created_at, :updated_at)
        ON CONFLICT (student_id, teacher_id, date) DO NOTHING`
	var inserted int64
	for start := 0; start < len(records); start += bulkInsertChunk {
		end := start + bulkInsertChunk
		if end > len(records) {
			end = len(records)
		}
		res, err := r.db.NamedExecContext(ctx, query, records[start:end])
		if err != nil {
			return inserted, fmt.Errorf("bulk insert attendance: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		}
	}
	return inserted, nil
}

// DeleteAll removes every attendance row.
func (r *AttendanceRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM attendance"); err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	return nil
}

func prepareAttendance(record *models.Attendance, now time.Time) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.Date = models.TruncateDate(record.Date)
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
}
