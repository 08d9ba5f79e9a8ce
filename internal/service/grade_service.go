package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/digital-diary-api/internal/dto"
	"github.com/noah-isme/digital-diary-api/internal/models"
	"github.com/noah-isme/digital-diary-api/internal/repository"
	appErrors "github.com/noah-isme/digital-diary-api/pkg/errors"
)

type gradeStore interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error)
	Create(ctx context.Context, grade *models.Grade) error
	BulkCreate(ctx context.Context, grades []models.Grade) error
	UpdateValue(ctx context.Context, id, teacherID string, value int) (*models.Grade, error)
}

// GradeService builds grade grids and records marks. Unlike attendance,
// grades are never deduplicated by day.
type GradeService struct {
	grades    gradeStore
	students  rosterReader
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService wires a GradeService. cache may be nil.
func NewGradeService(grades gradeStore, students rosterReader, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{grades: grades, students: students, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// Grid returns the class grade matrix for one subject authored by teacherID.
func (s *GradeService) Grid(ctx context.Context, teacherID string, scope dto.JournalScope) (*dto.GradeGrid, error) {
	if err := validateScope(s.validator, teacherID, scope); err != nil {
		return nil, err
	}
	start := time.Now()

	roster, err := s.students.ListByClass(ctx, scope.ClassName)
	if err != nil {
		return nil, internalError(err, "failed to load class roster")
	}
	grades, err := s.grades.List(ctx, models.GradeFilter{TeacherID: teacherID, Subject: scope.Subject, ClassName: scope.ClassName})
	if err != nil {
		return nil, internalError(err, "failed to load grades")
	}

	grid := BuildGradeGrid(roster, grades)
	grid.JournalScope = scope
	s.metrics.ObserveGridBuild(recordKindGrade, time.Since(start))
	return &grid, nil
}

// Edit changes the value of a grade the teacher owns. Other fields are immutable.
func (s *GradeService) Edit(ctx context.Context, teacherID string, scope dto.JournalScope, id string, value int) (*dto.MutationResult, error) {
	if err := validateScope(s.validator, teacherID, scope); err != nil {
		return nil, err
	}
	grade, err := s.grades.UpdateValue(ctx, id, teacherID, value)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, internalError(err, "failed to update grade")
	}
	s.metrics.RecordMutation(recordKindGrade, "edit", 1)

	result := mutationResult(scope, recordKindGrade)
	result.Applied = 1
	result.Record = grade
	return result, nil
}

// Create adds one grade for a class member. An unparseable date leaves the
// journal untouched.
func (s *GradeService) Create(ctx context.Context, teacherID string, scope dto.JournalScope, studentID, rawDate string, value int) (*dto.MutationResult, error) {
	if err := validateScope(s.validator, teacherID, scope); err != nil {
		return nil, err
	}
	result := mutationResult(scope, recordKindGrade)

	date, err := models.ParseDate(rawDate)
	if err != nil {
		s.logger.Debug("grade create skipped: bad date", zap.String("date", rawDate))
		return result, nil
	}

	if _, err := s.students.FindInClass(ctx, studentID, scope.ClassName); err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found in class")
		}
		return nil, internalError(err, "failed to load student")
	}

	grade := &models.Grade{StudentID: studentID, TeacherID: teacherID, Subject: scope.Subject, Value: value, Date: date}
	if err := s.grades.Create(ctx, grade); err != nil {
		return nil, internalError(err, "failed to create grade")
	}
	s.metrics.RecordMutation(recordKindGrade, "create", 1)
	s.invalidate(ctx, teacherID)

	result.Applied = 1
	result.Created = true
	result.Record = grade
	return result, nil
}

// ApplyBatch creates one grade per class member with a numeric input for the
// request date. Empty and non-numeric inputs are skipped.
func (s *GradeService) ApplyBatch(ctx context.Context, teacherID string, scope dto.JournalScope, req dto.GradeBatchRequest) (*dto.MutationResult, error) {
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

	grades := make([]models.Grade, 0, len(roster))
	for _, student := range roster {
		raw := strings.TrimSpace(req.Values[student.ID])
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			s.logger.Debug("grade input skipped", zap.String("student_id", student.ID), zap.String("value", raw))
			continue
		}
		grades = append(grades, models.Grade{
			StudentID: student.ID,
			TeacherID: teacherID,
			Subject:   scope.Subject,
			Value:     value,
			Date:      date,
		})
	}

	result := mutationResult(scope, recordKindGrade)
	if len(grades) == 0 {
		return result, nil
	}
	if err := s.grades.BulkCreate(ctx, grades); err != nil {
		return nil, internalError(err, "failed to save grades")
	}
	s.metrics.RecordMutation(recordKindGrade, "batch", len(grades))
	s.invalidate(ctx, teacherID)
	s.logger.Info("grade batch applied",
		zap.String("teacher_id", teacherID),
		zap.String("subject", scope.Subject),
		zap.String("class", scope.ClassName),
		zap.String("date", models.DateKey(date)),
		zap.Int("applied", len(grades)))

	result.Applied = len(grades)
	result.Created = true
	return result, nil
}

func (s *GradeService) invalidate(ctx context.Context, teacherID string) {
	if err := s.cache.InvalidateTeacher(ctx, teacherID); err != nil {
		s.logger.Warn("journal index cache left stale", zap.String("teacher_id", teacherID), zap.Error(err))
	}
}
