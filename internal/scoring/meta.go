package scoring

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"accidentsev/internal/model"
	"accidentsev/internal/schema"
)

const defaultModelName = "scorecard_product15_minute"

// LoadMeta reads the model metadata file. threshold, features and
// cat_features are required.
func LoadMeta(path string) (*model.ModelMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model meta: %w", err)
	}
	return ParseMeta(data)
}

func ParseMeta(data []byte) (*model.ModelMeta, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse model meta: %w", err)
	}
	for _, key := range []string{"threshold", "features", "cat_features"} {
		if _, ok := raw[key]; !ok {
			return nil, fmt.Errorf("model meta: missing key %q", key)
		}
	}

	var meta model.ModelMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse model meta: %w", err)
	}
	if meta.ModelName == "" {
		meta.ModelName = defaultModelName
	}
	if meta.Threshold < 0 || meta.Threshold > 1 {
		return nil, fmt.Errorf("model meta: threshold %v outside [0,1]", meta.Threshold)
	}
	return &meta, nil
}

// CheckMeta verifies the model was trained on the schema's features, in the
// schema's order.
func CheckMeta(meta *model.ModelMeta, sch *schema.Schema) error {
	if !slices.Equal(meta.Features, sch.Names()) {
		return &InternalSchemaError{Reason: fmt.Sprintf("model features %v do not match schema order %v", meta.Features, sch.Names())}
	}
	for _, name := range meta.CatFeatures {
		if !sch.Has(name) {
			return &InternalSchemaError{Reason: fmt.Sprintf("categorical feature %q is not a schema field", name)}
		}
	}
	return nil
}
