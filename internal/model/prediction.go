package model

import "time"

// Severity labels produced by the scoring service
const (
	LabelGrave    = "grave"
	LabelNonGrave = "non_grave"
)

// PredictionResult is the outcome of scoring one feature vector.
// Label is LabelGrave iff Probability >= Threshold.
type PredictionResult struct {
	Probability float64 `json:"probability" bson:"probability"`
	PredClass   int     `json:"pred_class" bson:"predClass"`
	Label       string  `json:"label" bson:"label"`
	Threshold   float64 `json:"threshold" bson:"threshold"`
}

// SessionResult is a prediction cached on a form session. Revision is the
// form revision the result was computed from.
type SessionResult struct {
	PredictionResult
	Revision    int64     `json:"revision"`
	PredictedAt time.Time `json:"predictedAt"`
}

// FeatureVector maps every schema field to a model-ready value: float64 for
// numeric fields (NaN when unset) and non-empty strings for the others.
type FeatureVector map[string]any

// ModelMeta describes the trained classifier artifact
type ModelMeta struct {
	ModelName   string         `json:"model_name"`
	Threshold   float64        `json:"threshold"`
	Features    []string       `json:"features"`
	CatFeatures []string       `json:"cat_features"`
	Defaults    map[string]any `json:"defaults,omitempty"`
}

// PredictionStatus is the terminal stage of a prediction request
type PredictionStatus string

const (
	PredictionResponded PredictionStatus = "responded"
	PredictionRejected  PredictionStatus = "rejected"
	PredictionFailed    PredictionStatus = "failed"
)

// PredictionRecord is the persisted trace of one prediction request
type PredictionRecord struct {
	ID        string            `json:"id" bson:"_id" db:"id"`
	SessionID string            `json:"sessionId,omitempty" bson:"sessionId,omitempty" db:"session_id"`
	Status    PredictionStatus  `json:"status" bson:"status" db:"status"`
	Inputs    map[string]any    `json:"inputs" bson:"inputs" db:"-"`
	Result    *PredictionResult `json:"result,omitempty" bson:"result,omitempty" db:"-"`
	Error     string            `json:"error,omitempty" bson:"error,omitempty" db:"error"`
	ModelName string            `json:"modelName" bson:"modelName" db:"model_name"`
	LatencyMS int64             `json:"latencyMs" bson:"latencyMs" db:"latency_ms"`
	CreatedAt time.Time         `json:"createdAt" bson:"createdAt" db:"created_at"`
}

// HealthStatus is returned by GET /health
type HealthStatus struct {
	Status    string  `json:"status"`
	ModelName string  `json:"model_name,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	NFeatures int     `json:"n_features,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// PredictionStats are running counters since the cache was created
type PredictionStats struct {
	Responded int64 `json:"responded"`
	Rejected  int64 `json:"rejected"`
	Failed    int64 `json:"failed"`
	Grave     int64 `json:"grave"`
	NonGrave  int64 `json:"non_grave"`
}
