package models

import "time"

// Student is a pupil grouped by a free-text class label such as "7А".
type Student struct {
	ID        string    `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	ClassName string    `db:"class_name" json:"class_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName renders "LastName FirstName" the way journals list pupils.
func (s Student) DisplayName() string {
	return s.LastName + " " + s.FirstName
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	ClassName string
	Page      int
	PageSize  int
}
