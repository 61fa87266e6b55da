package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"accidentsev/internal/cache"
	"accidentsev/internal/model"
	"accidentsev/internal/normalize"
	"accidentsev/internal/repository"
	"accidentsev/internal/schema"
	"accidentsev/internal/scoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Stages of one prediction request
const (
	StageReceived   = "received"
	StageNormalized = "normalized"
	StageScored     = "scored"
	StageResponded  = "responded"
	StageRejected   = "rejected"
)

const historyLimit = 20

// PredictionService runs one request through normalization and scoring and
// records the outcome. Nothing is retried.
type PredictionService struct {
	schema  *schema.Schema
	scorer  *scoring.Scorer
	opts    normalize.Options
	timeout time.Duration
	logger  *zap.Logger

	records repository.PredictionRepo
	stats   cache.StatsCache

	mu       sync.Mutex
	pipeline *normalize.Pipeline
	pipeMeta *model.ModelMeta
}

// NewPredictionService creates the prediction orchestrator. opts.CatFeatures
// and opts.Defaults are taken from the model metadata when it loads, and the
// pipeline is built at that point: options that conflict with the metadata
// fail the model load.
func NewPredictionService(sch *schema.Schema, scorer *scoring.Scorer, opts normalize.Options, timeout time.Duration, logger *zap.Logger) *PredictionService {
	s := &PredictionService{
		schema:  sch,
		scorer:  scorer,
		opts:    opts,
		timeout: timeout,
		logger:  logger,
	}
	scorer.OnLoad(func(meta *model.ModelMeta) error {
		_, err := s.prepare(meta)
		return err
	})
	return s
}

// SetRecordStore enables persistence of prediction records
func (s *PredictionService) SetRecordStore(repo repository.PredictionRepo) {
	s.records = repo
}

// SetStats enables outcome counters
func (s *PredictionService) SetStats(stats cache.StatsCache) {
	s.stats = stats
}

func (s *PredictionService) Health() model.HealthStatus {
	return s.scorer.Health()
}

// Pipeline returns the normalization pipeline of the loaded model
func (s *PredictionService) Pipeline() (*normalize.Pipeline, error) {
	meta, err := s.scorer.Meta()
	if err != nil {
		return nil, err
	}

	return s.prepare(meta)
}

func (s *PredictionService) prepare(meta *model.ModelMeta) (*normalize.Pipeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipeline != nil && s.pipeMeta == meta {
		return s.pipeline, nil
	}
	opts := s.opts
	opts.CatFeatures = meta.CatFeatures
	if len(meta.Defaults) > 0 {
		opts.Defaults = meta.Defaults
	}
	p, err := normalize.New(s.schema, opts)
	if err != nil {
		return nil, &scoring.InternalSchemaError{Reason: err.Error()}
	}
	s.pipeline, s.pipeMeta = p, meta
	return p, nil
}

// Predict normalizes raw and scores it under the request timeout
func (s *PredictionService) Predict(ctx context.Context, sessionID string, raw map[string]any) (*model.PredictionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	log := s.logger.With(zap.String("requestId", uuid.New().String()))
	if sessionID != "" {
		log = log.With(zap.String("sessionId", sessionID))
	}
	log.Debug("prediction stage", zap.String("stage", StageReceived), zap.Int("fields", len(raw)))

	res, err := s.run(ctx, log, raw)
	s.record(sessionID, raw, res, err, time.Since(start), log)
	return res, err
}

func (s *PredictionService) run(ctx context.Context, log *zap.Logger, raw map[string]any) (*model.PredictionResult, error) {
	pipeline, err := s.Pipeline()
	if err != nil {
		return nil, err
	}

	vec, err := pipeline.Normalize(raw)
	if err != nil {
		log.Info("prediction stage", zap.String("stage", StageRejected), zap.Error(err))
		return nil, err
	}
	log.Debug("prediction stage", zap.String("stage", StageNormalized))

	res, err := s.scorer.Predict(ctx, vec)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		log.Error("scoring failed", zap.Error(err))
		return nil, err
	}
	log.Debug("prediction stage", zap.String("stage", StageScored), zap.Float64("probability", res.Probability))
	log.Info("prediction stage",
		zap.String("stage", StageResponded),
		zap.String("label", res.Label),
		zap.Float64("probability", res.Probability),
	)
	return res, nil
}

// Status classifies a Predict error for records and counters
func Status(err error) model.PredictionStatus {
	if err == nil {
		return model.PredictionResponded
	}
	var missing *normalize.MissingFieldsError
	var field normalize.FieldError
	if errors.As(err, &missing) || errors.As(err, &field) {
		return model.PredictionRejected
	}
	return model.PredictionFailed
}

func (s *PredictionService) record(sessionID string, raw map[string]any, res *model.PredictionResult, err error, elapsed time.Duration, log *zap.Logger) {
	status := Status(err)
	if errors.Is(err, scoring.ErrServiceUnavailable) {
		return
	}

	// detached from the request: a cancelled caller still gets its trace
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.stats != nil {
		label := ""
		if res != nil {
			label = res.Label
		}
		if serr := s.stats.Record(ctx, status, label); serr != nil {
			log.Warn("failed to update prediction stats", zap.Error(serr))
		}
	}

	if s.records == nil {
		return
	}
	rec := &model.PredictionRecord{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Status:    status,
		Inputs:    raw,
		Result:    res,
		LatencyMS: elapsed.Milliseconds(),
		CreatedAt: time.Now().UTC(),
	}
	if meta, merr := s.scorer.Meta(); merr == nil {
		rec.ModelName = meta.ModelName
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if serr := s.records.Save(ctx, rec); serr != nil {
		log.Warn("failed to save prediction record", zap.Error(serr))
	}
}

// Stats returns the running counters, or nil when counters are disabled
func (s *PredictionService) Stats(ctx context.Context) (*model.PredictionStats, error) {
	if s.stats == nil {
		return nil, nil
	}
	return s.stats.Get(ctx)
}

// History returns the newest records of a session
func (s *PredictionService) History(ctx context.Context, sessionID string) ([]model.PredictionRecord, error) {
	if s.records == nil {
		return []model.PredictionRecord{}, nil
	}
	return s.records.ListBySession(ctx, sessionID, historyLimit)
}
