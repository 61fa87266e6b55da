package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"accidentsev/internal/catalog"
	"accidentsev/internal/config"
	"accidentsev/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	data := filepath.Join("..", "..", "data")
	return &config.Config{
		RefOptionsPath: filepath.Join(data, "ref_options.json"),
		PredictTimeout: time.Second,
		Model: &config.ModelConfig{
			MetaPath:     filepath.Join(data, "model_meta.json"),
			ModelPath:    filepath.Join(data, "scorecard.json"),
			MissingToken: "__MISSING__",
			TimeoutMS:    1000,
		},
		StoreDriver: config.StoreSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "records.db"),
	}
}

func TestNewScoresWithShippedArtifacts(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, a.Scorer.Load(context.Background(), a.Loader))

	res, err := a.Predictions.Predict(context.Background(), "", map[string]any{
		"dep": "75", "lum": 1, "atm": 1, "catr": 4, "agg": 2, "int": 1, "circ": 2,
		"col": 3, "vma_bucket": "<=30", "catv_family_4": "voitures_utilitaires",
		"manv_mode": 1, "driver_age_bucket": "25-34", "choc_mode": 1,
		"driver_trajet_family": "trajet_1", "minute": nil,
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Probability, 0.0)
	assert.LessOrEqual(t, res.Probability, 1.0)
	assert.Equal(t, res.Probability >= res.Threshold, res.Label == model.LabelGrave)
}

func TestNewRejectsBrokenCatalog(t *testing.T) {
	cfg := testConfig(t)
	cfg.RefOptionsPath = filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(cfg.RefOptionsPath, []byte(`{"lum": []}`), 0o644))
	_, err := New(cfg, zap.NewNop())
	require.Error(t, err)

	var schemaErr *catalog.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestOpenRecordStore(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	cfg := testConfig(t)
	store, closeFn, err := OpenRecordStore(ctx, cfg, logger)
	require.NoError(t, err)
	require.NotNil(t, store)
	closeFn()

	cfg.StoreDriver = config.StoreNone
	store, closeFn, err = OpenRecordStore(ctx, cfg, logger)
	require.NoError(t, err)
	assert.Nil(t, store)
	closeFn()

	cfg.StoreDriver = "postgres"
	_, _, err = OpenRecordStore(ctx, cfg, logger)
	assert.ErrorContains(t, err, "postgres")
}

func TestLoadFailsOnNumericCategoricalConflict(t *testing.T) {
	cfg := testConfig(t)
	cfg.Model.NumericFields = []string{"minute", "choc_mode"}
	a, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	err = a.Scorer.Load(context.Background(), a.Loader)
	assert.ErrorContains(t, err, "choc_mode")
	assert.Equal(t, "error", a.Predictions.Health().Status)
}
