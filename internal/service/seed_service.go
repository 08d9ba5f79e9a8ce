package service

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/digital-diary-api/internal/dto"
	"github.com/noah-isme/digital-diary-api/internal/models"
	"github.com/noah-isme/digital-diary-api/internal/repository"
	"github.com/noah-isme/digital-diary-api/pkg/config"
	appErrors "github.com/noah-isme/digital-diary-api/pkg/errors"
)

const (
	seedMinGrades     = 10
	seedMaxGrades     = 20
	seedMinAttendance = 15
	seedMaxAttendance = 30
	seedMinGrade      = 2
	seedMaxGrade      = 5
	seedNewestDaysAgo = 30
	seedOldestDaysAgo = 60
)

var (
	maleFirstNames   = []string{"Александр", "Алексей", "Андрей", "Артём", "Борис", "Владимир", "Дмитрий", "Егор", "Иван", "Кирилл", "Максим", "Михаил", "Никита", "Павел", "Роман", "Сергей", "Тимофей", "Фёдор"}
	femaleFirstNames = []string{"Алина", "Анастасия", "Анна", "Варвара", "Вера", "Дарья", "Екатерина", "Елена", "Ирина", "Ксения", "Мария", "Наталья", "Ольга", "Полина", "София", "Татьяна", "Ульяна", "Юлия"}
	maleLastNames    = []string{"Иванов", "Смирнов", "Кузнецов", "Попов", "Васильев", "Петров", "Соколов", "Михайлов", "Новиков", "Фёдоров", "Морозов", "Волков", "Алексеев", "Лебедев", "Семёнов", "Егоров", "Павлов", "Козлов", "Степанов", "Николаев"}
)

type seedStudentStore interface {
	DeleteAll(ctx context.Context) error
	BulkCreate(ctx context.Context, students []models.Student) error
}

type seedGradeStore interface {
	DeleteAll(ctx context.Context) error
	BulkCreate(ctx context.Context, grades []models.Grade) error
}

type seedAttendanceStore interface {
	DeleteAll(ctx context.Context) error
	BulkInsert(ctx context.Context, records []models.Attendance) (int64, error)
}

type seedTeacherFinder interface {
	FindFirstTeacher(ctx context.Context) (*models.User, error)
}

// SeedService wipes the journal and fills it with random demo data authored
// by the first teacher account.
type SeedService struct {
	students   seedStudentStore
	grades     seedGradeStore
	attendance seedAttendanceStore
	users      seedTeacherFinder
	cache      *CacheService
	cfg        config.SeedConfig
	rnd        *rand.Rand
	now        func() time.Time
	logger     *zap.Logger
}

// NewSeedService constructs a SeedService. cache and rnd may be nil.
func NewSeedService(students seedStudentStore, grades seedGradeStore, attendance seedAttendanceStore, users seedTeacherFinder, cache *CacheService, cfg config.SeedConfig, rnd *rand.Rand, logger *zap.Logger) *SeedService {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{
		students:   students,
		grades:     grades,
		attendance: attendance,
		users:      users,
		cache:      cache,
		cfg:        cfg,
		rnd:        rnd,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
}

// Run replaces all students, grades and attendance with generated rows.
func (s *SeedService) Run(ctx context.Context) (*dto.SeedSummary, error) {
	if s.cfg.Students <= 0 || len(s.cfg.Classes) == 0 || len(s.cfg.Subjects) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "seed needs a positive student count, classes and subjects")
	}

	teacher, err := s.users.FindFirstTeacher(ctx)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no teacher account found, create one with adduser first")
		}
		return nil, internalError(err, "failed to load teacher")
	}

	s.logger.Info("clearing journal data")
	if err := s.attendance.DeleteAll(ctx); err != nil {
		return nil, internalError(err, "failed to clear attendance")
	}
	if err := s.grades.DeleteAll(ctx); err != nil {
		return nil, internalError(err, "failed to clear grades")
	}
	if err := s.students.DeleteAll(ctx); err != nil {
		return nil, internalError(err, "failed to clear students")
	}

	students := s.generateStudents()
	if err := s.students.BulkCreate(ctx, students); err != nil {
		return nil, internalError(err, "failed to create students")
	}
	s.logger.Info("students created", zap.Int("count", len(students)))

	grades := s.generateGrades(students, teacher.ID)
	if err := s.grades.BulkCreate(ctx, grades); err != nil {
		return nil, internalError(err, "failed to create grades")
	}
	s.logger.Info("grades created", zap.Int("count", len(grades)))

	attendance := s.generateAttendance(students, teacher.ID)
	inserted, err := s.attendance.BulkInsert(ctx, attendance)
	if err != nil {
		return nil, internalError(err, "failed to create attendance")
	}
	s.logger.Info("attendance created", zap.Int64("count", inserted), zap.Int("generated", len(attendance)))

	if err := s.cache.InvalidateJournals(ctx); err != nil {
		s.logger.Warn("journal cache not invalidated after seed", zap.Error(err))
	}

	return &dto.SeedSummary{Students: len(students), Grades: len(grades), Attendance: int(inserted)}, nil
}

func (s *SeedService) generateStudents() []models.Student {
	students := make([]models.Student, 0, s.cfg.Students)
	for i := 0; i < s.cfg.Students; i++ {
		last := pick(s.rnd, maleLastNames)
		first := pick(s.rnd, maleFirstNames)
		if s.rnd.Intn(2) == 0 {
			last += "а"
			first = pick(s.rnd, femaleFirstNames)
		}
		students = append(students, models.Student{
			FirstName: first,
			LastName:  last,
			ClassName: pick(s.rnd, s.cfg.Classes),
		})
	}
	return students
}

func (s *SeedService) generateGrades(students []models.Student, teacherID string) []models.Grade {
	var grades []models.Grade
	for _, student := range students {
		n := between(s.rnd, seedMinGrades, seedMaxGrades)
		for i := 0; i < n; i++ {
			grades = append(grades, models.Grade{
				StudentID: student.ID,
				TeacherID: teacherID,
				Subject:   pick(s.rnd, s.cfg.Subjects),
				Value:     between(s.rnd, seedMinGrade, seedMaxGrade),
				Date:      s.randomDate(),
			})
		}
	}
	return grades
}

// generateAttendance may produce several rows for one day; the store keeps
// the first and skips the rest.
func (s *SeedService) generateAttendance(students []models.Student, teacherID string) []models.Attendance {
	var records []models.Attendance
	for _, student := range students {
		n := between(s.rnd, seedMinAttendance, seedMaxAttendance)
		for i := 0; i < n; i++ {
			records = append(records, models.Attendance{
				StudentID: student.ID,
				TeacherID: teacherID,
				Present:   s.rnd.Intn(2) == 0,
				Date:      s.randomDate(),
			})
		}
	}
	return records
}

func (s *SeedService) randomDate() time.Time {
	daysAgo := between(s.rnd, seedNewestDaysAgo, seedOldestDaysAgo)
	return models.TruncateDate(s.now().AddDate(0, 0, -daysAgo))
}

func pick(rnd *rand.Rand, items []string) string {
	return items[rnd.Intn(len(items))]
}

// between returns a random int in [lo, hi].
func between(rnd *rand.Rand, lo, hi int) int {
	return lo + rnd.Intn(hi-lo+1)
}
