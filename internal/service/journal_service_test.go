package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/digital-diary-api/internal/models"
	appErrors "github.com/noah-isme/digital-diary-api/pkg/errors"
)

func seededGrades() *fakeGrades {
	roster := class7A()
	d := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	return &fakeGrades{roster: roster, rows: []models.Grade{
		{ID: "1", StudentID: "A", TeacherID: "t1", Subject: "Физика", Value: 4, Date: d},
		{ID: "2", StudentID: "Z", TeacherID: "t1", Subject: "Физика", Value: 5, Date: d},
		{ID: "3", StudentID: "B", TeacherID: "t1", Subject: "Математика", Value: 3, Date: d},
		{ID: "4", StudentID: "B", TeacherID: "t2", Subject: "История", Value: 2, Date: d},
	}}
}

func TestJournalServiceLists(t *testing.T) {
	svc := NewJournalService(seededGrades(), nil, nil)
	ctx := context.Background()

	subjects, err := svc.Subjects(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Математика", "Физика"}, subjects)

	classes, err := svc.Classes(ctx, "t1", "Физика")
	require.NoError(t, err)
	assert.Equal(t, []string{"7А", "8Б"}, classes)

	classes, err = svc.Classes(ctx, "t1", "История")
	require.NoError(t, err)
	assert.NotNil(t, classes)
	assert.Empty(t, classes)
}

func TestJournalServiceValidation(t *testing.T) {
	svc := NewJournalService(seededGrades(), nil, nil)

	_, err := svc.Subjects(context.Background(), "")
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))

	_, err = svc.Classes(context.Background(), "t1", "  ")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestJournalServiceServesFromCache(t *testing.T) {
	grades := seededGrades()
	repo := newMemoryCache()
	svc := NewJournalService(grades, NewCacheService(repo, nil, time.Minute, nil, true), nil)
	ctx := context.Background()

	first, err := svc.Subjects(ctx, "t1")
	require.NoError(t, err)
	assert.Contains(t, repo.data, "diary:journal:t1:subjects")

	grades.rows = nil
	second, err := svc.Subjects(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
