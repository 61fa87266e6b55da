// Package app assembles the prediction core shared by the server and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"accidentsev/internal/catalog"
	"accidentsev/internal/config"
	"accidentsev/internal/normalize"
	"accidentsev/internal/repository"
	"accidentsev/internal/schema"
	"accidentsev/internal/scoring"
	"accidentsev/internal/service"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type App struct {
	Schema      *schema.Schema
	Catalog     *catalog.Catalog
	Scorer      *scoring.Scorer
	Loader      scoring.Loader
	Predictions *service.PredictionService
}

// New loads the reference catalog and prepares the scorer. The model itself
// is not loaded yet: call Scorer.Load or Scorer.Start with Loader.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sch := schema.Default()
	cat, err := catalog.Load(cfg.RefOptionsPath, sch)
	if err != nil {
		return nil, err
	}

	scorer := scoring.NewScorer(sch, logger)
	loader := scoring.NewLoader(scoring.ArtifactSource{
		MetaPath:     cfg.Model.MetaPath,
		ModelPath:    cfg.Model.ModelPath,
		ModelURL:     cfg.Model.ModelURL,
		MissingToken: cfg.Model.MissingToken,
		Timeout:      cfg.Model.Timeout(),
	})

	predictions := service.NewPredictionService(sch, scorer, normalize.Options{
		NumericFields: cfg.Model.NumericFields,
		MissingToken:  cfg.Model.MissingToken,
	}, cfg.PredictTimeout, logger)

	return &App{
		Schema:      sch,
		Catalog:     cat,
		Scorer:      scorer,
		Loader:      loader,
		Predictions: predictions,
	}, nil
}

// OpenRecordStore connects the prediction record store selected by
// STORE_DRIVER. The returned store is nil for the "none" driver. The func
// releases the connection.
func OpenRecordStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.PredictionRepo, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreNone:
		return nil, func() {}, nil

	case config.StoreSQLite:
		repo, err := repository.NewSQLitePredictionRepo(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("prediction records in sqlite", zap.String("path", cfg.SQLitePath))
		return repo, func() { _ = repo.Close() }, nil

	case config.StoreMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		disconnect := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			disconnect()
			return nil, nil, fmt.Errorf("ping mongo: %w", err)
		}

		db := client.Database(cfg.MongoDB)
		if err := repository.EnsurePredictionIndexes(ctx, db); err != nil {
			logger.Warn("failed to create prediction indexes", zap.Error(err))
		}
		logger.Info("prediction records in mongo", zap.String("db", cfg.MongoDB))
		return repository.NewPredictionRepo(db), disconnect, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
