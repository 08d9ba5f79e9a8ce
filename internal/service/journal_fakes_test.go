package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/noah-isme/digital-diary-api/internal/models"
)

type fakeRoster struct {
	students []models.Student
	err      error
}

func (f *fakeRoster) ListByClass(ctx context.Context, className string) ([]models.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Student
	for _, s := range f.students {
		if s.ClassName == className {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRoster) FindInClass(ctx context.Context, id, className string) (*models.Student, error) {
	for _, s := range f.students {
		if s.ID == id && s.ClassName == className {
			student := s
			return &student, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRoster) classOf(id string) string {
	for _, s := range f.students {
		if s.ID == id {
			return s.ClassName
		}
	}
	return ""
}

// fakeAttendance mimics the unique (student, teacher, date) index.
type fakeAttendance struct {
	roster  *fakeRoster
	rows    []models.Attendance
	nextID  int
	listErr error
}

func (f *fakeAttendance) find(studentID, teacherID, date string) int {
	for i, r := range f.rows {
		if r.StudentID == studentID && r.TeacherID == teacherID && models.DateKey(r.Date) == date {
			return i
		}
	}
	return -1
}

func (f *fakeAttendance) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Attendance
	for _, r := range f.rows {
		if r.TeacherID != filter.TeacherID {
			continue
		}
		if filter.ClassName != "" && f.roster.classOf(r.StudentID) != filter.ClassName {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeAttendance) GetOrCreate(ctx context.Context, record models.Attendance) (*models.Attendance, bool, error) {
	if i := f.find(record.StudentID, record.TeacherID, models.DateKey(record.Date)); i >= 0 {
		existing := f.rows[i]
		return &existing, false, nil
	}
	f.nextID++
	record.ID = fmt.Sprintf("att-%d", f.nextID)
	f.rows = append(f.rows, record)
	return &record, true, nil
}

func (f *fakeAttendance) UpsertBatch(ctx context.Context, records []models.Attendance) (int, error) {
	for _, record := range records {
		if i := f.find(record.StudentID, record.TeacherID, models.DateKey(record.Date)); i >= 0 {
			f.rows[i].Present = record.Present
			continue
		}
		f.nextID++
		record.ID = fmt.Sprintf("att-%d", f.nextID)
		f.rows = append(f.rows, record)
	}
	return len(records), nil
}

func (f *fakeAttendance) Toggle(ctx context.Context, id, teacherID string) (*models.Attendance, error) {
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].TeacherID == teacherID {
			f.rows[i].Present = !f.rows[i].Present
			record := f.rows[i]
			return &record, nil
		}
	}
	return nil, sql.ErrNoRows
}

type fakeGrades struct {
	roster  *fakeRoster
	rows    []models.Grade
	nextID  int
	bulkErr error
}

func (f *fakeGrades) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error) {
	var out []models.Grade
	for _, g := range f.rows {
		if g.TeacherID != filter.TeacherID {
			continue
		}
		if filter.Subject != "" && g.Subject != filter.Subject {
			continue
		}
		if filter.ClassName != "" && f.roster.classOf(g.StudentID) != filter.ClassName {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (f *fakeGrades) Create(ctx context.Context, grade *models.Grade) error {
	f.nextID++
	grade.ID = fmt.Sprintf("grade-%d", f.nextID)
	f.rows = append(f.rows, *grade)
	return nil
}

func (f *fakeGrades) BulkCreate(ctx context.Context, grades []models.Grade) error {
	if f.bulkErr != nil {
		return f.bulkErr
	}
	for i := range grades {
		if err := f.Create(ctx, &grades[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeGrades) UpdateValue(ctx context.Context, id, teacherID string, value int) (*models.Grade, error) {
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].TeacherID == teacherID {
			f.rows[i].Value = value
			grade := f.rows[i]
			return &grade, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeGrades) DistinctSubjects(ctx context.Context, teacherID string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, g := range f.rows {
		if g.TeacherID == teacherID && !seen[g.Subject] {
			seen[g.Subject] = true
			out = append(out, g.Subject)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeGrades) DistinctClasses(ctx context.Context, teacherID, subject string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, g := range f.rows {
		class := f.roster.classOf(g.StudentID)
		if g.TeacherID == teacherID && g.Subject == subject && !seen[class] {
			seen[class] = true
			out = append(out, class)
		}
	}
	sort.Strings(out)
	return out, nil
}

func class7A() *fakeRoster {
	return &fakeRoster{students: []models.Student{
		{ID: "A", FirstName: "Анна", LastName: "Абрамова", ClassName: "7А"},
		{ID: "B", FirstName: "Борис", LastName: "Белов", ClassName: "7А"},
		{ID: "Z", FirstName: "Зоя", LastName: "Зайцева", ClassName: "8Б"},
	}}
}
