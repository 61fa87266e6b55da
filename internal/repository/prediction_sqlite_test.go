package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"accidentsev/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRepo(t *testing.T) *SQLitePredictionRepo {
	t.Helper()
	repo, err := NewSQLitePredictionRepo(filepath.Join(t.TempDir(), "predictions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteSaveAndGet(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rec := &model.PredictionRecord{
		ID:        "p1",
		SessionID: "s1",
		Status:    model.PredictionResponded,
		Inputs:    map[string]any{"dep": "59", "minute": 30.0},
		Result:    &model.PredictionResult{Probability: 0.61, PredClass: 1, Label: model.LabelGrave, Threshold: 0.47},
		ModelName: "scorecard",
		LatencyMS: 4,
		CreatedAt: created,
	}
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec, got)

	missing, err := repo.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLiteRejectedRecordHasNoResult(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &model.PredictionRecord{
		ID:        "p1",
		Status:    model.PredictionRejected,
		Inputs:    map[string]any{"lum": 99.0},
		Error:     "field \"lum\": value 99 outside the allowed values",
		CreatedAt: time.Now(),
	}))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, got.Result)
	assert.Equal(t, model.PredictionRejected, got.Status)
	assert.Contains(t, got.Error, "lum")
}

func TestSQLiteListBySession(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Save(ctx, &model.PredictionRecord{
			ID:        id,
			SessionID: "s1",
			Status:    model.PredictionResponded,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Save(ctx, &model.PredictionRecord{ID: "other", SessionID: "s2", Status: model.PredictionResponded, CreatedAt: base}))

	records, err := repo.ListBySession(ctx, "s1", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c", records[0].ID)
	assert.Equal(t, "b", records[1].ID)

	records, err = repo.ListBySession(ctx, "none", 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLiteListBySessionWithinOneSecond(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC)

	for id, offset := range map[string]time.Duration{
		"a": 0,
		"b": 100 * time.Millisecond,
		"c": 120 * time.Millisecond,
		"d": 120*time.Millisecond + time.Microsecond,
	} {
		require.NoError(t, repo.Save(ctx, &model.PredictionRecord{
			ID:        id,
			SessionID: "s",
			Status:    model.PredictionResponded,
			CreatedAt: base.Add(offset),
		}))
	}

	records, err := repo.ListBySession(ctx, "s", 10)
	require.NoError(t, err)
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	assert.Equal(t, []string{"d", "c", "b", "a"}, ids)
	assert.Equal(t, base.Add(120*time.Millisecond+time.Microsecond), records[0].CreatedAt)
}

func TestSQLiteCorruptRowIsAnError(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &model.PredictionRecord{
		ID:        "p1",
		SessionID: "s1",
		Status:    model.PredictionResponded,
		CreatedAt: time.Now(),
	}))
	_, err := repo.db.ExecContext(ctx, "UPDATE predictions SET result = '{not json' WHERE id = 'p1'")
	require.NoError(t, err)

	_, err = repo.Get(ctx, "p1")
	assert.ErrorContains(t, err, "decode result")
	_, err = repo.ListBySession(ctx, "s1", 10)
	assert.ErrorContains(t, err, "decode result")

	_, err = repo.db.ExecContext(ctx, "UPDATE predictions SET result = NULL, created_at = 'yesterday' WHERE id = 'p1'")
	require.NoError(t, err)
	_, err = repo.Get(ctx, "p1")
	assert.ErrorContains(t, err, "created_at")
}
