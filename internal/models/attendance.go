package models

import "time"

// Attendance marks presence for one student on one date. At most one row
// exists per (student, teacher, date).
type Attendance struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	Date      time.Time `db:"date" json:"date"`
	Present   bool      `db:"present" json:"present"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Attendance status symbols shown in the journal grid.
const (
	AttendanceMarkPresent = "+"
	AttendanceMarkAbsent  = "-"
)

// Mark returns the grid symbol for the record.
func (a Attendance) Mark() string {
	if a.Present {
		return AttendanceMarkPresent
	}
	return AttendanceMarkAbsent
}

// AttendanceFilter scopes attendance lookups. TeacherID is mandatory.
type AttendanceFilter struct {
	TeacherID string
	ClassName string
	Date      *time.Time
}
