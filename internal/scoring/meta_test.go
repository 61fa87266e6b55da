package scoring

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"accidentsev/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMeta(t *testing.T) {
	meta, err := ParseMeta([]byte(`{"threshold": 0.47, "features": ["a"], "cat_features": []}`))
	require.NoError(t, err)
	assert.Equal(t, defaultModelName, meta.ModelName)
	assert.Equal(t, 0.47, meta.Threshold)

	_, err = ParseMeta([]byte(`{"features": ["a"], "cat_features": []}`))
	assert.ErrorContains(t, err, `"threshold"`)

	_, err = ParseMeta([]byte(`{"threshold": 1.2, "features": [], "cat_features": []}`))
	assert.Error(t, err)
}

func TestCheckMeta(t *testing.T) {
	require.NoError(t, CheckMeta(testMeta(), schema.Default()))

	meta := testMeta()
	meta.CatFeatures = append(meta.CatFeatures, "time_bucket")
	assert.Error(t, CheckMeta(meta, schema.Default()))
}

func TestScorecard(t *testing.T) {
	features := []string{"lum", "minute"}
	card, err := NewScorecard("t", features, 0,
		map[string]map[string]float64{"lum": {"1": 1.0}},
		map[string]numericWeight{"minute": {Coef: 0.1, Mean: 30}},
		-2, "__MISSING__")
	require.NoError(t, err)

	p, err := card.PredictProba(context.Background(), []any{"1", 30.0})
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-1)), p, 1e-12)

	// unseen level and NaN contribute nothing
	p, err = card.PredictProba(context.Background(), []any{"7", math.NaN()})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-12)

	p, err = card.PredictProba(context.Background(), []any{"__MISSING__", 30.0})
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(2)), p, 1e-12)

	_, err = card.PredictProba(context.Background(), []any{"1"})
	assert.Error(t, err)

	_, err = NewScorecard("t", features, 0, map[string]map[string]float64{"atm": {}}, nil, 0, "")
	assert.Error(t, err)
}

func TestRemoteClassifier(t *testing.T) {
	var got remoteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/predict_proba":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_ = json.NewEncoder(w).Encode(remoteResponse{Probabilities: []float64{0.61}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewRemoteClassifier(srv.URL+"/", []string{"lum", "minute"}, time.Second)
	require.NoError(t, c.Ping(context.Background()))

	p, err := c.PredictProba(context.Background(), []any{"1", math.NaN()})
	require.NoError(t, err)
	assert.Equal(t, 0.61, p)
	assert.Equal(t, []string{"lum", "minute"}, got.Features)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, []any{"1", nil}, got.Rows[0])
}

func TestRemoteClassifierErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewRemoteClassifier(srv.URL, []string{"lum"}, time.Second)
	_, err := c.PredictProba(context.Background(), []any{"1"})
	assert.ErrorContains(t, err, "status 503")
	assert.Error(t, c.Ping(context.Background()))
}
