package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/digital-diary-api/internal/dto"
	"github.com/noah-isme/digital-diary-api/internal/models"
	appErrors "github.com/noah-isme/digital-diary-api/pkg/errors"
)

func newGradeFixture(cache *CacheService) (*GradeService, *fakeGrades) {
	roster := class7A()
	store := &fakeGrades{roster: roster}
	return NewGradeService(store, roster, cache, NewMetricsService(), nil, nil), store
}

func TestGradeBatchSkipsEmptyAndNonNumeric(t *testing.T) {
	svc, store := newGradeFixture(nil)

	result, err := svc.ApplyBatch(context.Background(), "t1", scope7A, dto.GradeBatchRequest{
		Date:   "2024-05-02",
		Values: map[string]string{"A": "5", "B": ""},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	require.Len(t, store.rows, 1)
	assert.Equal(t, "A", store.rows[0].StudentID)
	assert.Equal(t, 5, store.rows[0].Value)
	assert.Equal(t, "Математика", store.rows[0].Subject)
	assert.Equal(t, "t1", store.rows[0].TeacherID)
	assert.Equal(t, "2024-05-02", models.DateKey(store.rows[0].Date))
}

func TestGradeBatchInputs(t *testing.T) {
	cases := map[string]int{"4": 1, " 4 ": 1, "": 0, "abc": 0, "4.5": 0, "five": 0}
	for input, rows := range cases {
		svc, store := newGradeFixture(nil)
		_, err := svc.ApplyBatch(context.Background(), "t1", scope7A, dto.GradeBatchRequest{Date: "2024-05-02", Values: map[string]string{"A": input}})
		require.NoError(t, err, input)
		assert.Len(t, store.rows, rows, input)
		if rows == 1 {
			assert.Equal(t, 4, store.rows[0].Value)
		}
	}
}

func TestGradeBatchIgnoresStudentsOutsideClass(t *testing.T) {
	svc, store := newGradeFixture(nil)

	result, err := svc.ApplyBatch(context.Background(), "t1", scope7A, dto.GradeBatchRequest{Date: "2024-05-02", Values: map[string]string{"Z": "5"}})
	require.NoError(t, err)
	assert.Zero(t, result.Applied)
	assert.Empty(t, store.rows)
}

func TestGradeBatchBadDate(t *testing.T) {
	svc, store := newGradeFixture(nil)

	_, err := svc.ApplyBatch(context.Background(), "t1", scope7A, dto.GradeBatchRequest{Date: "2024/05/02", Values: map[string]string{"A": "5"}})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, store.rows)
}

func TestGradeBatchStoreFailure(t *testing.T) {
	svc, store := newGradeFixture(nil)
	store.bulkErr = errors.New("db down")

	_, err := svc.ApplyBatch(context.Background(), "t1", scope7A, dto.GradeBatchRequest{Date: "2024-05-02", Values: map[string]string{"A": "5"}})
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
}

func TestGradeCreateAllowsSeveralPerDay(t *testing.T) {
	svc, store := newGradeFixture(nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "t1", scope7A, "A", "2024-05-02", 5)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "t1", scope7A, "A", "2024-05-02", 3)
	require.NoError(t, err)
	assert.Len(t, store.rows, 2)

	grid, err := svc.Grid(ctx, "t1", scope7A)
	require.NoError(t, err)
	grades, ok := grid.Cell("A", "2024-05-02")
	require.True(t, ok)
	assert.Len(t, grades, 2)
	empty, ok := grid.Cell("B", "2024-05-02")
	require.True(t, ok)
	assert.Empty(t, empty)
}

func TestGradeCreateBadDateIsNoop(t *testing.T) {
	svc, store := newGradeFixture(nil)

	result, err := svc.Create(context.Background(), "t1", scope7A, "A", "not-a-date", 5)
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, scope7A.GridPath("grades"), result.Redirect)
	assert.Empty(t, store.rows)
}

func TestGradeCreateStudentOutsideClass(t *testing.T) {
	svc, _ := newGradeFixture(nil)

	_, err := svc.Create(context.Background(), "t1", scope7A, "Z", "2024-05-02", 5)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestGradeEditScopedToOwner(t *testing.T) {
	svc, store := newGradeFixture(nil)
	store.rows = []models.Grade{{ID: "g1", StudentID: "A", TeacherID: "t1", Subject: "Математика", Value: 3, Date: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)}}

	_, err := svc.Edit(context.Background(), "t2", scope7A, "g1", 5)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, 3, store.rows[0].Value)

	result, err := svc.Edit(context.Background(), "t1", scope7A, "g1", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Record.(*models.Grade).Value)
	assert.Equal(t, "Математика", store.rows[0].Subject)
}

func TestGradeMutationsInvalidateJournalCache(t *testing.T) {
	repo := newMemoryCache()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	svc, _ := newGradeFixture(cache)

	_, err := svc.Create(context.Background(), "t1", scope7A, "A", "2024-05-02", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"diary:journal:t1:*"}, repo.patterns)
}
