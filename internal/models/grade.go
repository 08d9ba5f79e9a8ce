package models

import "time"

// Grade is a single mark authored by a teacher. Several grades may share the
// same student, subject and date.
type Grade struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	Subject   string    `db:"subject" json:"subject"`
	Value     int       `db:"value" json:"value"`
	Date      time.Time `db:"date" json:"date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// GradeFilter scopes grade lookups. TeacherID is mandatory.
type GradeFilter struct {
	TeacherID string
	Subject   string
	ClassName string
	Date      *time.Time
}
