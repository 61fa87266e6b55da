package config

import "time"

// ModelConfig locates the classifier artifacts
type ModelConfig struct {
	// MetaPath is the JSON metadata: threshold, features, cat_features
	MetaPath string `json:"metaPath"`

	// ModelPath is the scorecard artifact used when no model server is set
	ModelPath string `json:"modelPath"`

	// ModelURL points at a remote model server; empty means local scoring
	ModelURL string `json:"modelUrl"`

	// MissingToken replaces null categorical values
	MissingToken string `json:"missingToken"`

	// NumericFields overrides which fields are coerced to numbers
	NumericFields []string `json:"numericFields"`

	TimeoutMS int `json:"timeoutMs"`
}

// DefaultModelConfig reads the model settings from the environment
func DefaultModelConfig() *ModelConfig {
	return &ModelConfig{
		MetaPath:      getEnv("META_PATH", "data/model_meta.json"),
		ModelPath:     getEnv("MODEL_PATH", "data/scorecard.json"),
		ModelURL:      getEnv("MODEL_URL", ""),
		MissingToken:  getEnv("MISSING_CAT", "__MISSING__"),
		NumericFields: getList("NUMERIC_FIELDS"),
		TimeoutMS:     getInt("MODEL_TIMEOUT_MS", 5000),
	}
}

// IsRemote returns true if scoring goes through a model server
func (c *ModelConfig) IsRemote() bool {
	return c.ModelURL != ""
}

// Timeout is the per-call budget for the remote model server
func (c *ModelConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}
