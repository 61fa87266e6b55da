// Package scoring loads the severity classifier and turns normalized feature
// vectors into a probability and a grave / non_grave label.
package scoring

import (
	"context"
	"fmt"
	"math"
	"sync"

	"accidentsev/internal/model"
	"accidentsev/internal/schema"

	"go.uber.org/zap"
)

// Health states reported by Scorer.Health
const (
	StatusLoading = "loading"
	StatusOK      = "ok"
	StatusError   = "error"
)

// Loader produces the metadata and classifier. It runs once.
type Loader func(ctx context.Context) (*model.ModelMeta, Classifier, error)

type loadedModel struct {
	meta       *model.ModelMeta
	classifier Classifier
}

// Scorer serves predictions once its model is loaded. The loaded model is
// read-only and shared by all requests.
type Scorer struct {
	schema *schema.Schema
	logger *zap.Logger

	mu      sync.RWMutex
	model   *loadedModel
	loadErr error
	onLoad  []func(*model.ModelMeta) error
}

func NewScorer(sch *schema.Schema, logger *zap.Logger) *Scorer {
	return &Scorer{schema: sch, logger: logger}
}

// OnLoad registers fn to run on freshly loaded metadata before the model is
// published. An error from fn fails the load.
func (s *Scorer) OnLoad(fn func(*model.ModelMeta) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLoad = append(s.onLoad, fn)
}

// Load runs loader and checks the result against the schema and the OnLoad
// hooks. On failure the scorer stays unavailable and Health reports the error.
func (s *Scorer) Load(ctx context.Context, loader Loader) error {
	meta, clf, err := loader(ctx)
	if err == nil {
		err = CheckMeta(meta, s.schema)
	}
	if err == nil {
		s.mu.RLock()
		hooks := s.onLoad
		s.mu.RUnlock()
		for _, fn := range hooks {
			if err = fn(meta); err != nil {
				break
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.loadErr = err
		s.logger.Error("model load failed", zap.Error(err))
		return err
	}
	s.model = &loadedModel{meta: meta, classifier: clf}
	s.loadErr = nil
	s.logger.Info("model loaded",
		zap.String("model", meta.ModelName),
		zap.Float64("threshold", meta.Threshold),
		zap.Int("features", len(meta.Features)),
	)
	return nil
}

// Start loads the model in the background. The returned channel is closed
// when loading ends, successfully or not.
func (s *Scorer) Start(ctx context.Context, loader Loader) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Load(ctx, loader)
	}()
	return done
}

func (s *Scorer) current() (*loadedModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.model == nil {
		return nil, ErrServiceUnavailable
	}
	return s.model, nil
}

// Meta returns the loaded metadata
func (s *Scorer) Meta() (*model.ModelMeta, error) {
	m, err := s.current()
	if err != nil {
		return nil, err
	}
	return m.meta, nil
}

func (s *Scorer) Health() model.HealthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.model != nil:
		return model.HealthStatus{
			Status:    StatusOK,
			ModelName: s.model.meta.ModelName,
			Threshold: s.model.meta.Threshold,
			NFeatures: len(s.model.meta.Features),
		}
	case s.loadErr != nil:
		return model.HealthStatus{Status: StatusError, Error: s.loadErr.Error()}
	default:
		return model.HealthStatus{Status: StatusLoading}
	}
}

// Predict scores vec. The vector must hold exactly the model features; it is
// laid out in feature order before reaching the classifier.
func (s *Scorer) Predict(ctx context.Context, vec model.FeatureVector) (*model.PredictionResult, error) {
	m, err := s.current()
	if err != nil {
		return nil, err
	}

	if len(vec) != len(m.meta.Features) {
		return nil, &InternalSchemaError{Reason: fmt.Sprintf("vector has %d features, model expects %d", len(vec), len(m.meta.Features))}
	}
	row := make([]any, len(m.meta.Features))
	for i, name := range m.meta.Features {
		v, ok := vec[name]
		if !ok {
			return nil, &InternalSchemaError{Reason: fmt.Sprintf("feature %q missing from vector", name)}
		}
		row[i] = v
	}

	p, err := m.classifier.PredictProba(ctx, row)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return nil, &InternalSchemaError{Reason: fmt.Sprintf("probability %v outside [0,1]", p)}
	}
	return Decide(p, m.meta.Threshold), nil
}

// Decide applies the threshold: grave iff p >= threshold
func Decide(p, threshold float64) *model.PredictionResult {
	res := &model.PredictionResult{
		Probability: p,
		Label:       model.LabelNonGrave,
		Threshold:   threshold,
	}
	if p >= threshold {
		res.PredClass = 1
		res.Label = model.LabelGrave
	}
	return res
}
