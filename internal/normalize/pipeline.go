// Package normalize turns raw form values into the feature vector the
// classifier consumes. It is all-or-nothing: either every field normalizes
// or the request is rejected with the full list of offending fields.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"accidentsev/internal/model"
	"accidentsev/internal/schema"
)

// DefaultMissingToken replaces null categorical values
const DefaultMissingToken = "__MISSING__"

type Options struct {
	// CatFeatures are coerced to strings. Usually the model metadata list.
	CatFeatures []string
	// NumericFields are coerced to float64. When empty, every schema field
	// with a numeric range domain that is not categorical is numeric.
	NumericFields []string
	// Defaults fill omitted fields
	Defaults map[string]any
	// MissingToken overrides DefaultMissingToken
	MissingToken string
}

type Pipeline struct {
	schema      *schema.Schema
	categorical map[string]bool
	numeric     map[string]bool
	defaults    map[string]any
	token       string
}

func New(sch *schema.Schema, opts Options) (*Pipeline, error) {
	p := &Pipeline{
		schema:      sch,
		categorical: map[string]bool{},
		numeric:     map[string]bool{},
		defaults:    map[string]any{},
		token:       opts.MissingToken,
	}
	if p.token == "" {
		p.token = DefaultMissingToken
	}

	for _, name := range opts.CatFeatures {
		if !sch.Has(name) {
			return nil, fmt.Errorf("categorical feature %q is not a schema field", name)
		}
		p.categorical[name] = true
	}
	for _, name := range opts.NumericFields {
		if !sch.Has(name) {
			return nil, fmt.Errorf("numeric field %q is not a schema field", name)
		}
		if p.categorical[name] {
			return nil, fmt.Errorf("field %q cannot be both categorical and numeric", name)
		}
		p.numeric[name] = true
	}
	if len(opts.NumericFields) == 0 {
		for _, f := range sch.Fields() {
			if f.Domain.Kind() == schema.KindNumericRange && !p.categorical[f.Name] {
				p.numeric[f.Name] = true
			}
		}
	}
	for name, v := range opts.Defaults {
		if !sch.Has(name) {
			return nil, fmt.Errorf("default for unknown field %q", name)
		}
		p.defaults[name] = v
	}
	return p, nil
}

// MissingToken is the sentinel used for null categorical values
func (p *Pipeline) MissingToken() string { return p.token }

// Numeric reports whether field is coerced to a number
func (p *Pipeline) Numeric(field string) bool { return p.numeric[field] }

// Normalize validates raw and returns a vector holding every schema field.
// raw is not modified. Field errors are joined so each can be selected with
// errors.As.
func (p *Pipeline) Normalize(raw map[string]any) (model.FeatureVector, error) {
	values := make(map[string]any, p.schema.Len())
	var missing []string
	for _, name := range p.schema.Names() {
		v, ok := raw[name]
		if !ok {
			if def, has := p.defaults[name]; has {
				values[name] = def
				continue
			}
			missing = append(missing, name)
			continue
		}
		values[name] = v
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	vec := make(model.FeatureVector, len(values))
	var errs []error
	for _, f := range p.schema.Fields() {
		v := values[f.Name]
		var (
			out any
			err error
		)
		switch {
		case p.categorical[f.Name]:
			out, err = p.categoricalValue(f, v)
		case p.numeric[f.Name]:
			out, err = numericValue(f, v)
		default:
			out = passThrough(v)
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		vec[f.Name] = out
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return vec, nil
}

func (p *Pipeline) categoricalValue(f schema.FieldDefinition, v any) (any, error) {
	if isNull(v) {
		return p.token, nil
	}
	s := model.ValueString(v)
	if !f.Domain.Contains(s) {
		return nil, &InvalidValueError{Field: f.Name, Value: v}
	}
	return s, nil
}

func numericValue(f schema.FieldDefinition, v any) (any, error) {
	if isNull(v) {
		return math.NaN(), nil
	}
	if s, ok := v.(string); ok && strings.Contains(s, ":") {
		return nil, &InvalidFormatError{Field: f.Name, Value: v}
	}
	n, ok := toFloat(v)
	if !ok {
		return nil, &InvalidNumericValueError{Field: f.Name, Value: v}
	}
	if !f.Domain.Contains(n) {
		return nil, &InvalidValueError{Field: f.Name, Value: v}
	}
	return n, nil
}

func passThrough(v any) any {
	if isNull(v) {
		return nil
	}
	return model.ValueString(v)
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	f, ok := v.(float64)
	return ok && math.IsNaN(f)
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsInf(t, 0)
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil && !math.IsInf(f, 0) && !math.IsNaN(f)
	}
	return 0, false
}
