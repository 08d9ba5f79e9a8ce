package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/digital-diary-api/internal/models"
	"github.com/noah-isme/digital-diary-api/pkg/config"
	appErrors "github.com/noah-isme/digital-diary-api/pkg/errors"
)

type seedRecorder struct {
	calls      []string
	students   []models.Student
	grades     []models.Grade
	attendance []models.Attendance
	teacher    *models.User
	teacherErr error
	bulkErr    error
}

type seedStudents struct{ *seedRecorder }

func (s seedStudents) DeleteAll(ctx context.Context) error {
	s.calls = append(s.calls, "delete:students")
	return nil
}

func (s seedStudents) BulkCreate(ctx context.Context, students []models.Student) error {
	for i := range students {
		students[i].ID = fmt.Sprintf("student-%d", i)
	}
	s.students = append(s.students, students...)
	return nil
}

type seedGrades struct{ *seedRecorder }

func (s seedGrades) DeleteAll(ctx context.Context) error {
	s.calls = append(s.calls, "delete:grades")
	return nil
}

func (s seedGrades) BulkCreate(ctx context.Context, grades []models.Grade) error {
	if s.bulkErr != nil {
		return s.bulkErr
	}
	s.grades = append(s.grades, grades...)
	return nil
}

type seedAttendance struct{ *seedRecorder }

func (s seedAttendance) DeleteAll(ctx context.Context) error {
	s.calls = append(s.calls, "delete:attendance")
	return nil
}

func (s seedAttendance) BulkInsert(ctx context.Context, records []models.Attendance) (int64, error) {
	seen := make(map[string]struct{})
	var inserted int64
	for _, r := range records {
		key := r.StudentID + r.TeacherID + models.DateKey(r.Date)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		s.attendance = append(s.attendance, r)
		inserted++
	}
	return inserted, nil
}

func (s *seedRecorder) FindFirstTeacher(ctx context.Context) (*models.User, error) {
	if s.teacherErr != nil {
		return nil, s.teacherErr
	}
	return s.teacher, nil
}

func newSeedFixture(rec *seedRecorder, cfg config.SeedConfig) *SeedService {
	svc := NewSeedService(seedStudents{rec}, seedGrades{rec}, seedAttendance{rec}, rec, nil, cfg, rand.New(rand.NewSource(42)), nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC) }
	return svc
}

func seedConfig() config.SeedConfig {
	return config.SeedConfig{
		Students: 12,
		Classes:  []string{"7А", "7Б"},
		Subjects: []string{"Математика", "Физика"},
	}
}

func TestSeedServiceRun(t *testing.T) {
	rec := &seedRecorder{teacher: &models.User{ID: "teacher-1", Role: models.RoleTeacher}}
	svc := newSeedFixture(rec, seedConfig())

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"delete:attendance", "delete:grades", "delete:students"}, rec.calls)
	assert.Equal(t, 12, summary.Students)
	assert.Len(t, rec.students, 12)
	assert.Equal(t, len(rec.grades), summary.Grades)
	assert.Equal(t, len(rec.attendance), summary.Attendance)

	oldest := time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC)
	newest := time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)

	perStudent := make(map[string]int)
	for _, g := range rec.grades {
		perStudent[g.StudentID]++
		assert.Equal(t, "teacher-1", g.TeacherID)
		assert.Contains(t, []string{"Математика", "Физика"}, g.Subject)
		assert.GreaterOrEqual(t, g.Value, 2)
		assert.LessOrEqual(t, g.Value, 5)
		assert.False(t, g.Date.Before(oldest), g.Date)
		assert.False(t, g.Date.After(newest), g.Date)
	}
	for _, s := range rec.students {
		assert.Contains(t, []string{"7А", "7Б"}, s.ClassName)
		assert.NotEmpty(t, s.FirstName)
		assert.NotEmpty(t, s.LastName)
		assert.GreaterOrEqual(t, perStudent[s.ID], 10)
		assert.LessOrEqual(t, perStudent[s.ID], 20)
	}
	for _, a := range rec.attendance {
		assert.Equal(t, "teacher-1", a.TeacherID)
		assert.False(t, a.Date.Before(oldest))
		assert.False(t, a.Date.After(newest))
	}
}

func TestSeedServiceRequiresTeacher(t *testing.T) {
	rec := &seedRecorder{teacherErr: sql.ErrNoRows}
	svc := newSeedFixture(rec, seedConfig())

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Empty(t, rec.calls)
}

func TestSeedServiceRejectsEmptyConfig(t *testing.T) {
	rec := &seedRecorder{teacher: &models.User{ID: "teacher-1"}}
	svc := newSeedFixture(rec, config.SeedConfig{Students: 5})

	_, err := svc.Run(context.Background())
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestSeedServiceWrapsStoreErrors(t *testing.T) {
	rec := &seedRecorder{teacher: &models.User{ID: "teacher-1"}, bulkErr: errors.New("boom")}
	svc := newSeedFixture(rec, seedConfig())

	_, err := svc.Run(context.Background())
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
}

func TestSeedServiceDropsCachedJournals(t *testing.T) {
	rec := &seedRecorder{teacher: &models.User{ID: "teacher-1", Role: models.RoleTeacher}}
	repo := newMemoryCache()
	repo.data["diary:journal:teacher-1:subjects"] = []byte(`["Химия"]`)
	svc := NewSeedService(seedStudents{rec}, seedGrades{rec}, seedAttendance{rec}, rec,
		NewCacheService(repo, nil, 0, nil, true), seedConfig(), rand.New(rand.NewSource(7)), nil)

	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"diary:journal:*"}, repo.patterns)
	assert.Empty(t, repo.data)
}
