package dto

import (
	"net/url"

	"github.com/noah-isme/digital-diary-api/internal/models"
)

// JournalScope identifies the (subject, class) grid every journal operation works on.
type JournalScope struct {
	Subject   string `json:"subject" validate:"required,max=100"`
	ClassName string `json:"className" validate:"required,max=20"`
}

// GridPath returns the API path of the scope's grid for a record kind
// ("grades" or "attendance"), relative to the API prefix.
func (s JournalScope) GridPath(kind string) string {
	return "/journal/" + url.PathEscape(s.Subject) + "/" + url.PathEscape(s.ClassName) + "/" + kind
}

// AttendanceCell is a filled attendance grid cell. A nil cell means no record.
type AttendanceCell struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// AttendanceRow holds one student's cells aligned to AttendanceGrid.Dates.
type AttendanceRow struct {
	Student models.Student    `json:"student"`
	Cells   []*AttendanceCell `json:"cells"`
}

// AttendanceGrid is the dense student by date attendance matrix for a class.
type AttendanceGrid struct {
	JournalScope
	Dates []string        `json:"dates"`
	Rows  []AttendanceRow `json:"rows"`
}

// Cell returns the cell for a student on a date. ok is false when the
// student or the date is not part of the grid.
func (g *AttendanceGrid) Cell(studentID, date string) (cell *AttendanceCell, ok bool) {
	col := indexOf(g.Dates, date)
	if col < 0 {
		return nil, false
	}
	for _, row := range g.Rows {
		if row.Student.ID == studentID {
			return row.Cells[col], true
		}
	}
	return nil, false
}

// GradeRow holds one student's grades per date aligned to GradeGrid.Dates.
type GradeRow struct {
	Student models.Student   `json:"student"`
	Cells   [][]models.Grade `json:"cells"`
}

// GradeGrid is the dense student by date grade matrix for a class and subject.
type GradeGrid struct {
	JournalScope
	Dates []string   `json:"dates"`
	Rows  []GradeRow `json:"rows"`
}

// Cell returns the grades of a student on a date.
func (g *GradeGrid) Cell(studentID, date string) ([]models.Grade, bool) {
	col := indexOf(g.Dates, date)
	if col < 0 {
		return nil, false
	}
	for _, row := range g.Rows {
		if row.Student.ID == studentID {
			return row.Cells[col], true
		}
	}
	return nil, false
}

func indexOf(dates []string, date string) int {
	for i, d := range dates {
		if d == date {
			return i
		}
	}
	return -1
}

// MutationResult is returned by every journal write. Redirect points back to
// the grid the caller should re-fetch.
type MutationResult struct {
	JournalScope
	Redirect string      `json:"redirect"`
	Applied  int         `json:"applied"`
	Created  bool        `json:"created"`
	Record   interface{} `json:"record,omitempty"`
}

// GradeBatchRequest carries a date and the raw per-student grade inputs keyed by student ID.
type GradeBatchRequest struct {
	Date   string
	Values map[string]string
}

// AttendanceBatchRequest carries a date and the checked students. Students
// missing from Present are recorded as absent.
type AttendanceBatchRequest struct {
	Date    string
	Present map[string]bool
}

// CreateStudentRequest defines the payload for administrative student entry.
type CreateStudentRequest struct {
	FirstName string `json:"firstName" form:"first_name" validate:"required,max=100"`
	LastName  string `json:"lastName" form:"last_name" validate:"required,max=100"`
	ClassName string `json:"className" form:"class_name" validate:"required,max=20"`
}

// SeedSummary reports how many rows the demo seeder produced.
type SeedSummary struct {
	Students   int `json:"students"`
	Grades     int `json:"grades"`
	Attendance int `json:"attendance"`
}
