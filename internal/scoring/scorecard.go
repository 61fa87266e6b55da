package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"accidentsev/internal/model"
)

// Classifier returns the probability of the "grave" class for one row laid
// out in feature order.
type Classifier interface {
	PredictProba(ctx context.Context, row []any) (float64, error)
}

type numericWeight struct {
	Coef float64 `json:"coef"`
	Mean float64 `json:"mean"`
}

type scorecardFile struct {
	ModelName     string                        `json:"model_name"`
	Intercept     float64                       `json:"intercept"`
	Categorical   map[string]map[string]float64 `json:"categorical"`
	MissingWeight float64                       `json:"missing_weight"`
	Numeric       map[string]numericWeight      `json:"numeric"`
}

// Scorecard is an additive log-odds model: intercept plus one weight per
// categorical level plus a linear term per numeric feature, through a
// logistic link. Unseen levels contribute nothing.
type Scorecard struct {
	name          string
	features      []string
	intercept     float64
	categorical   map[string]map[string]float64
	missingWeight float64
	numeric       map[string]numericWeight
	missingToken  string
}

// LoadScorecard reads a scorecard artifact and binds it to the feature order
func LoadScorecard(path string, features []string, missingToken string) (*Scorecard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var f scorecardFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}
	return NewScorecard(f.ModelName, features, f.Intercept, f.Categorical, f.Numeric, f.MissingWeight, missingToken)
}

func NewScorecard(name string, features []string, intercept float64, categorical map[string]map[string]float64, numeric map[string]numericWeight, missingWeight float64, missingToken string) (*Scorecard, error) {
	known := make(map[string]bool, len(features))
	for _, f := range features {
		known[f] = true
	}
	for f := range categorical {
		if !known[f] {
			return nil, &InternalSchemaError{Reason: fmt.Sprintf("artifact weights unknown feature %q", f)}
		}
	}
	for f := range numeric {
		if !known[f] {
			return nil, &InternalSchemaError{Reason: fmt.Sprintf("artifact weights unknown feature %q", f)}
		}
	}
	return &Scorecard{
		name:          name,
		features:      features,
		intercept:     intercept,
		categorical:   categorical,
		missingWeight: missingWeight,
		numeric:       numeric,
		missingToken:  missingToken,
	}, nil
}

func (s *Scorecard) Name() string { return s.name }

func (s *Scorecard) PredictProba(_ context.Context, row []any) (float64, error) {
	if len(row) != len(s.features) {
		return 0, &InternalSchemaError{Reason: fmt.Sprintf("row has %d values, model expects %d", len(row), len(s.features))}
	}
	logit := s.intercept
	for i, name := range s.features {
		v := row[i]
		if w, ok := s.numeric[name]; ok {
			x, isNum := v.(float64)
			if !isNum {
				return 0, &InternalSchemaError{Reason: fmt.Sprintf("feature %q: expected float64, got %T", name, v)}
			}
			if !math.IsNaN(x) {
				logit += w.Coef * (x - w.Mean)
			}
			continue
		}
		levels, ok := s.categorical[name]
		if !ok {
			continue
		}
		key := model.ValueString(v)
		if key == s.missingToken || v == nil {
			logit += s.missingWeight
			continue
		}
		logit += levels[key]
	}
	return 1 / (1 + math.Exp(-logit)), nil
}
