package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/digital-diary-api/internal/dto"
	"github.com/noah-isme/digital-diary-api/internal/models"
	"github.com/noah-isme/digital-diary-api/pkg/cache"
	appErrors "github.com/noah-isme/digital-diary-api/pkg/errors"
)

const (
	recordKindGrade      = "grades"
	recordKindAttendance = "attendance"
)

var errInvalidDate = appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")

type rosterReader interface {
	ListByClass(ctx context.Context, className string) ([]models.Student, error)
	FindInClass(ctx context.Context, id, className string) (*models.Student, error)
}

type journalIndex interface {
	DistinctSubjects(ctx context.Context, teacherID string) ([]string, error)
	DistinctClasses(ctx context.Context, teacherID, subject string) ([]string, error)
}

// JournalService lists the subjects and classes a teacher keeps a journal for.
type JournalService struct {
	index  journalIndex
	cache  *CacheService
	logger *zap.Logger
}

// NewJournalService constructs a JournalService. cache may be nil.
func NewJournalService(index journalIndex, cache *CacheService, logger *zap.Logger) *JournalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JournalService{index: index, cache: cache, logger: logger}
}

// Subjects returns the subjects the teacher has graded, alphabetically.
func (s *JournalService) Subjects(ctx context.Context, teacherID string) ([]string, error) {
	if teacherID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	return s.cached(ctx, cache.Key("journal", teacherID, "subjects"), func() ([]string, error) {
		return s.index.DistinctSubjects(ctx, teacherID)
	})
}

// Classes returns the classes the teacher has graded within subject.
func (s *JournalService) Classes(ctx context.Context, teacherID, subject string) ([]string, error) {
	if teacherID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject is required")
	}
	return s.cached(ctx, cache.Key("journal", teacherID, "classes", subject), func() ([]string, error) {
		return s.index.DistinctClasses(ctx, teacherID, subject)
	})
}

func (s *JournalService) cached(ctx context.Context, key string, load func() ([]string, error)) ([]string, error) {
	var items []string
	if hit, err := s.cache.Get(ctx, key, &items); err == nil && hit {
		return items, nil
	}

	items, err := load()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load journal index")
	}
	if items == nil {
		items = []string{}
	}
	if err := s.cache.Set(ctx, key, items, 0); err != nil {
		s.logger.Debug("journal index not cached", zap.String("key", key), zap.Error(err))
	}
	return items, nil
}

func validateScope(v *validator.Validate, teacherID string, scope dto.JournalScope) error {
	if teacherID == "" {
		return appErrors.ErrUnauthorized
	}
	if err := v.Struct(scope); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "subject and class are required")
	}
	return nil
}

func mutationResult(scope dto.JournalScope, kind string) *dto.MutationResult {
	return &dto.MutationResult{JournalScope: scope, Redirect: scope.GridPath(kind)}
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
