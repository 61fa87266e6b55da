package scoring

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"accidentsev/internal/model"
	"accidentsev/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type fixedClassifier struct {
	p   float64
	err error
	row []any
}

func (c *fixedClassifier) PredictProba(_ context.Context, row []any) (float64, error) {
	c.row = row
	return c.p, c.err
}

func testMeta() *model.ModelMeta {
	names := schema.Default().Names()
	return &model.ModelMeta{
		ModelName:   "test",
		Threshold:   0.47,
		Features:    names,
		CatFeatures: append([]string(nil), names[:len(names)-1]...),
	}
}

func staticLoader(meta *model.ModelMeta, clf Classifier) Loader {
	return func(context.Context) (*model.ModelMeta, Classifier, error) {
		return meta, clf, nil
	}
}

func fullVector() model.FeatureVector {
	return model.FeatureVector{
		"dep": "59", "lum": "1", "atm": "1", "catr": "3", "agg": "2", "int": "1", "circ": "2",
		"col": "3", "vma_bucket": "51-80", "catv_family_4": "voitures_utilitaires",
		"manv_mode": "1", "driver_age_bucket": "25-34", "choc_mode": "1",
		"driver_trajet_family": "trajet_1", "minute": 30.0,
	}
}

func loadedScorer(t *testing.T, clf Classifier) *Scorer {
	t.Helper()
	s := NewScorer(schema.Default(), zap.NewNop())
	require.NoError(t, s.Load(context.Background(), staticLoader(testMeta(), clf)))
	return s
}

func TestPredictBeforeLoad(t *testing.T) {
	s := NewScorer(schema.Default(), zap.NewNop())

	_, err := s.Predict(context.Background(), fullVector())
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.Equal(t, StatusLoading, s.Health().Status)
}

func TestStartLoadsInBackground(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := NewScorer(schema.Default(), zap.NewNop())
	<-s.Start(context.Background(), staticLoader(testMeta(), &fixedClassifier{p: 0.3}))

	h := s.Health()
	assert.Equal(t, StatusOK, h.Status)
	assert.Equal(t, "test", h.ModelName)
	assert.Equal(t, 0.47, h.Threshold)
	assert.Equal(t, 15, h.NFeatures)
}

func TestLoadFailureIsReported(t *testing.T) {
	s := NewScorer(schema.Default(), zap.NewNop())
	err := s.Load(context.Background(), func(context.Context) (*model.ModelMeta, Classifier, error) {
		return nil, nil, errors.New("artifact missing")
	})
	require.Error(t, err)

	h := s.Health()
	assert.Equal(t, StatusError, h.Status)
	assert.Contains(t, h.Error, "artifact missing")

	_, err = s.Predict(context.Background(), fullVector())
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestLoadRejectsFeatureOrderMismatch(t *testing.T) {
	meta := testMeta()
	meta.Features[0], meta.Features[1] = meta.Features[1], meta.Features[0]

	s := NewScorer(schema.Default(), zap.NewNop())
	err := s.Load(context.Background(), staticLoader(meta, &fixedClassifier{}))
	var schemaErr *InternalSchemaError
	assert.True(t, errors.As(err, &schemaErr))
}

func TestOnLoadHookFailureFailsLoad(t *testing.T) {
	s := NewScorer(schema.Default(), zap.NewNop())
	var seen *model.ModelMeta
	s.OnLoad(func(meta *model.ModelMeta) error {
		seen = meta
		return errors.New("pipeline conflict")
	})

	meta := testMeta()
	err := s.Load(context.Background(), staticLoader(meta, &fixedClassifier{}))
	require.Error(t, err)
	assert.Same(t, meta, seen)

	h := s.Health()
	assert.Equal(t, StatusError, h.Status)
	assert.Contains(t, h.Error, "pipeline conflict")
	_, err = s.Predict(context.Background(), fullVector())
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestPredictThreshold(t *testing.T) {
	tests := []struct {
		name  string
		p     float64
		class int
		label string
	}{
		{"below", 0.2, 0, model.LabelNonGrave},
		{"exactly at threshold", 0.47, 1, model.LabelGrave},
		{"above", 0.9, 1, model.LabelGrave},
		{"zero", 0, 0, model.LabelNonGrave},
		{"one", 1, 1, model.LabelGrave},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := loadedScorer(t, &fixedClassifier{p: tt.p}).Predict(context.Background(), fullVector())
			require.NoError(t, err)
			assert.Equal(t, tt.p, res.Probability)
			assert.Equal(t, tt.class, res.PredClass)
			assert.Equal(t, tt.label, res.Label)
			assert.Equal(t, 0.47, res.Threshold)
		})
	}
}

func TestPredictRowOrder(t *testing.T) {
	clf := &fixedClassifier{p: 0.5}
	_, err := loadedScorer(t, clf).Predict(context.Background(), fullVector())
	require.NoError(t, err)

	require.Len(t, clf.row, 15)
	assert.Equal(t, "59", clf.row[0])
	assert.Equal(t, "1", clf.row[1])
	assert.Equal(t, 30.0, clf.row[14])
}

func TestPredictInternalErrors(t *testing.T) {
	var schemaErr *InternalSchemaError

	vec := fullVector()
	delete(vec, "minute")
	_, err := loadedScorer(t, &fixedClassifier{p: 0.5}).Predict(context.Background(), vec)
	assert.True(t, errors.As(err, &schemaErr))

	vec = fullVector()
	delete(vec, "minute")
	vec["time_bucket"] = "night"
	_, err = loadedScorer(t, &fixedClassifier{p: 0.5}).Predict(context.Background(), vec)
	assert.True(t, errors.As(err, &schemaErr))

	_, err = loadedScorer(t, &fixedClassifier{p: 1.5}).Predict(context.Background(), fullVector())
	assert.True(t, errors.As(err, &schemaErr))

	_, err = loadedScorer(t, &fixedClassifier{p: math.NaN()}).Predict(context.Background(), fullVector())
	assert.True(t, errors.As(err, &schemaErr))

	_, err = loadedScorer(t, &fixedClassifier{err: errors.New("boom")}).Predict(context.Background(), fullVector())
	require.Error(t, err)
	assert.False(t, errors.As(err, &schemaErr))
}

func TestShippedArtifacts(t *testing.T) {
	data := filepath.Join("..", "..", "data")
	loader := NewLoader(ArtifactSource{
		MetaPath:     filepath.Join(data, "model_meta.json"),
		ModelPath:    filepath.Join(data, "scorecard.json"),
		MissingToken: "__MISSING__",
	})

	s := NewScorer(schema.Default(), zap.NewNop())
	require.NoError(t, s.Load(context.Background(), loader))

	res, err := s.Predict(context.Background(), fullVector())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Probability, 0.0)
	assert.LessOrEqual(t, res.Probability, 1.0)
	assert.Equal(t, 0.47, res.Threshold)
	assert.Equal(t, res.Probability >= 0.47, res.Label == model.LabelGrave)

	// unset numeric and sentinel categorical still score
	vec := fullVector()
	vec["minute"] = math.NaN()
	vec["col"] = "__MISSING__"
	_, err = s.Predict(context.Background(), vec)
	require.NoError(t, err)
}
