package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/digital-diary-api/internal/dto"
	"github.com/noah-isme/digital-diary-api/internal/models"
	"github.com/noah-isme/digital-diary-api/internal/repository"
	appErrors "github.com/noah-isme/digital-diary-api/pkg/errors"
)

type attendanceStore interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error)
	GetOrCreate(ctx context.Context, record models.Attendance) (*models.Attendance, bool, error)
	UpsertBatch(ctx context.Context, records []models.Attendance) (int, error)
	Toggle(ctx context.Context, id, teacherID string) (*models.Attendance, error)
}

// AttendanceService builds attendance grids and applies presence changes.
type AttendanceService struct {
	records   attendanceStore
	students  rosterReader
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService wires an AttendanceService.
func NewAttendanceService(records attendanceStore, students rosterReader, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{records: records, students: students, metrics: metrics, validator: validate, logger: logger}
}

// Grid returns the class attendance matrix authored by teacherID.
func (s *AttendanceService) Grid(ctx context.Context, teacherID string, scope dto.JournalScope) (*dto.AttendanceGrid, error) {
	if err := validateScope(s.validator, teacherID, scope); err != nil {
		return nil, err
	}
	start := time.Now()

	roster, err := s.students.ListByClass(ctx, scope.ClassName)
	if err != nil {
		return nil, internalError(err, "failed to load class roster")
	}
	records, err := s.records.List(ctx, models.AttendanceFilter{TeacherID: teacherID, ClassName: scope.ClassName})
	if err != nil {
		return nil, internalError(err, "failed to load attendance")
	}

	grid := BuildAttendanceGrid(roster, records)
	grid.JournalScope = scope
	s.metrics.ObserveGridBuild(recordKindAttendance, time.Since(start))
	return &grid, nil
}

// Toggle flips presence on a record the teacher owns.
func (s *AttendanceService) Toggle(ctx context.Context, teacherID string, scope dto.JournalScope, id string) (*dto.MutationResult, error) {
	if err := validateScope(s.validator, teacherID, scope); err != nil {
		return nil, err
	}
	record, err := s.records.Toggle(ctx, id, teacherID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, internalError(err, "failed to toggle attendance")
	}
	s.metrics.RecordMutation(recordKindAttendance, "toggle", 1)

	result := mutationResult(scope, recordKindAttendance)
	result.Applied = 1
	result.Record = record
	return result, nil
}

// CreateForDate records the student present on date unless a mark already
// exists for that day. An unparseable date leaves the journal untouched.
func (s *AttendanceService) CreateForDate(ctx context.Context, teacherID string, scope dto.JournalScope, studentID, rawDate string) (*dto.MutationResult, error) {
	if err := validateScope(s.validator, teacherID, scope); err != nil {
		return nil, err
	}
	result := mutationResult(scope, recordKindAttendance)

	date, err := models.ParseDate(rawDate)
	if err != nil {
		s.logger.Debug("attendance create skipped: bad date", zap.String("date", rawDate))
		return result, nil
	}

	if _, err := s.students.FindInClass(ctx, studentID, scope.ClassName); err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student does not belong to class "+scope.ClassName)
		}
		return nil, internalError(err, "failed to load student")
	}

	record, created, err := s.records.GetOrCreate(ctx, models.Attendance{StudentID: studentID, TeacherID: teacherID, Date: date, Present: true})
	if err != nil {
		return nil, internalError(err, "failed to create attendance")
	}
	if created {
		result.Applied = 1
		s.metrics.RecordMutation(recordKindAttendance, "create", 1)
	}
	result.Created = created
	result.Record = record
	return result, nil
}

// ApplyBatch writes one mark per class member for the request date. Members
// not listed as present are stored as absent.
func (s *AttendanceService) ApplyBatch(ctx context.Context, teacherID string, scope dto.JournalScope, req dto.AttendanceBatchRequest) (*dto.MutationResult, error) {
	if err := validateScope(s.validator, teacherID, scope); err != nil {
		return nil, err
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, errInvalidDate
	}

	roster, err := s.students.ListByClass(ctx, scope.ClassName)
	if err != nil {
		return nil, internalError(err, "failed to load class roster")
	}

	records := make([]models.Attendance, 0, len(roster))
	for _, student := range roster {
		records = append(records, models.Attendance{
			StudentID: student.ID,
			TeacherID: teacherID,
			Date:      date,
			Present:   req.Present[student.ID],
		})
	}

	applied, err := s.records.UpsertBatch(ctx, records)
	if err != nil {
		return nil, internalError(err, "failed to save attendance")
	}
	s.metrics.RecordMutation(recordKindAttendance, "batch", applied)
	s.logger.Info("attendance batch applied",
		zap.String("teacher_id", teacherID),
		zap.String("class", scope.ClassName),
		zap.String("date", models.DateKey(date)),
		zap.Int("applied", applied))

	result := mutationResult(scope, recordKindAttendance)
	result.Applied = applied
	return result, nil
}
