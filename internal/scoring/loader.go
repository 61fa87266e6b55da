package scoring

import (
	"context"
	"time"

	"accidentsev/internal/model"
)

// ArtifactSource locates the model. ModelURL, when set, wins over ModelPath.
type ArtifactSource struct {
	MetaPath     string
	ModelPath    string
	ModelURL     string
	MissingToken string
	Timeout      time.Duration
}

// NewLoader builds the startup loader for src
func NewLoader(src ArtifactSource) Loader {
	return func(ctx context.Context) (*model.ModelMeta, Classifier, error) {
		meta, err := LoadMeta(src.MetaPath)
		if err != nil {
			return nil, nil, err
		}
		if src.ModelURL != "" {
			remote := NewRemoteClassifier(src.ModelURL, meta.Features, src.Timeout)
			if err := remote.Ping(ctx); err != nil {
				return nil, nil, err
			}
			return meta, remote, nil
		}
		card, err := LoadScorecard(src.ModelPath, meta.Features, src.MissingToken)
		if err != nil {
			return nil, nil, err
		}
		return meta, card, nil
	}
}
