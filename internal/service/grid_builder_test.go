package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/digital-diary-api/internal/models"
)

func day(d int) time.Time {
	return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)
}

func roster() []models.Student {
	return []models.Student{
		{ID: "a", FirstName: "Анна", LastName: "Абрамова", ClassName: "7А"},
		{ID: "b", FirstName: "Борис", LastName: "Белов", ClassName: "7А"},
		{ID: "c", FirstName: "Вера", LastName: "Власова", ClassName: "7А"},
	}
}

func TestBuildAttendanceGrid(t *testing.T) {
	records := []models.Attendance{
		{ID: "r3", StudentID: "a", Date: day(3), Present: false},
		{ID: "r1", StudentID: "a", Date: day(1), Present: true},
		{ID: "r2", StudentID: "b", Date: day(2).Add(15 * time.Hour), Present: true},
		{ID: "x", StudentID: "outsider", Date: day(9), Present: true},
	}

	grid := BuildAttendanceGrid(roster(), records)

	assert.Equal(t, []string{"2024-05-01", "2024-05-02", "2024-05-03"}, grid.Dates)
	require.Len(t, grid.Rows, 3)
	assert.Equal(t, "a", grid.Rows[0].Student.ID)

	cell, ok := grid.Cell("a", "2024-05-01")
	require.True(t, ok)
	assert.Equal(t, "r1", cell.ID)
	assert.Equal(t, models.AttendanceMarkPresent, cell.Status)

	cell, _ = grid.Cell("a", "2024-05-03")
	assert.Equal(t, models.AttendanceMarkAbsent, cell.Status)

	cell, ok = grid.Cell("b", "2024-05-01")
	assert.True(t, ok)
	assert.Nil(t, cell)

	_, ok = grid.Cell("outsider", "2024-05-09")
	assert.False(t, ok)
	_, ok = grid.Cell("a", "2024-06-01")
	assert.False(t, ok)
}

func TestBuildAttendanceGridKeepsStudentsWithoutRecords(t *testing.T) {
	grid := BuildAttendanceGrid(roster(), []models.Attendance{{ID: "r1", StudentID: "a", Date: day(1), Present: true}})

	row := grid.Rows[2]
	assert.Equal(t, "c", row.Student.ID)
	require.Len(t, row.Cells, len(grid.Dates))
	for _, cell := range row.Cells {
		assert.Nil(t, cell)
	}
}

func TestBuildAttendanceGridEmpty(t *testing.T) {
	grid := BuildAttendanceGrid(roster(), nil)
	assert.Empty(t, grid.Dates)
	require.Len(t, grid.Rows, 3)
	assert.Empty(t, grid.Rows[0].Cells)
}

func TestBuildGradeGrid(t *testing.T) {
	records := []models.Grade{
		{ID: "g1", StudentID: "a", Subject: "Математика", Value: 5, Date: day(2)},
		{ID: "g2", StudentID: "a", Subject: "Математика", Value: 3, Date: day(2)},
		{ID: "g3", StudentID: "b", Subject: "Математика", Value: 4, Date: day(1)},
	}

	grid := BuildGradeGrid(roster(), records)

	assert.Equal(t, []string{"2024-05-01", "2024-05-02"}, grid.Dates)
	grades, ok := grid.Cell("a", "2024-05-02")
	require.True(t, ok)
	require.Len(t, grades, 2)
	assert.Equal(t, 5, grades[0].Value)
	assert.Equal(t, 3, grades[1].Value)

	for _, cell := range grid.Rows[2].Cells {
		assert.NotNil(t, cell)
		assert.Empty(t, cell)
	}
}
