package service

import (
	"sort"

	"github.com/noah-isme/digital-diary-api/internal/dto"
	"github.com/noah-isme/digital-diary-api/internal/models"
)

// BuildAttendanceGrid pivots attendance records into a student by date matrix.
// Columns are the distinct record dates in ascending order. Every student gets a
// row; cells without a record stay nil. Records of students outside the roster
// are ignored and contribute no column.
func BuildAttendanceGrid(students []models.Student, records []models.Attendance) dto.AttendanceGrid {
	rowOf := rosterIndex(students)
	keys := make([]string, len(records))
	for i, rec := range records {
		if _, ok := rowOf[rec.StudentID]; ok {
			keys[i] = models.DateKey(rec.Date)
		}
	}
	dates, column := dateAxis(keys)

	rows := make([]dto.AttendanceRow, len(students))
	for i, student := range students {
		rows[i] = dto.AttendanceRow{Student: student, Cells: make([]*dto.AttendanceCell, len(dates))}
	}
	for i, rec := range records {
		r, ok := rowOf[rec.StudentID]
		if !ok {
			continue
		}
		rows[r].Cells[column[keys[i]]] = &dto.AttendanceCell{ID: rec.ID, Status: rec.Mark()}
	}

	return dto.AttendanceGrid{Dates: dates, Rows: rows}
}

// BuildGradeGrid pivots grades into a student by date matrix. Cells are never
// nil and keep every grade of the day in input order.
func BuildGradeGrid(students []models.Student, records []models.Grade) dto.GradeGrid {
	rowOf := rosterIndex(students)
	keys := make([]string, len(records))
	for i, rec := range records {
		if _, ok := rowOf[rec.StudentID]; ok {
			keys[i] = models.DateKey(rec.Date)
		}
	}
	dates, column := dateAxis(keys)

	rows := make([]dto.GradeRow, len(students))
	for i, student := range students {
		cells := make([][]models.Grade, len(dates))
		for c := range cells {
			cells[c] = []models.Grade{}
		}
		rows[i] = dto.GradeRow{Student: student, Cells: cells}
	}
	for i, rec := range records {
		r, ok := rowOf[rec.StudentID]
		if !ok {
			continue
		}
		c := column[keys[i]]
		rows[r].Cells[c] = append(rows[r].Cells[c], rec)
	}

	return dto.GradeGrid{Dates: dates, Rows: rows}
}

func dateAxis(keys []string) ([]string, map[string]int) {
	seen := make(map[string]struct{}, len(keys))
	dates := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		dates = append(dates, key)
	}
	sort.Strings(dates)

	column := make(map[string]int, len(dates))
	for i, d := range dates {
		column[d] = i
	}
	return dates, column
}

func rosterIndex(students []models.Student) map[string]int {
	index := make(map[string]int, len(students))
	for i, s := range students {
		index[s.ID] = i
	}
	return index
}
