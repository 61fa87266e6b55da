// Package catalog holds the reference options offered for each enumerated
// field, loaded once at startup and read-only afterwards.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"accidentsev/internal/model"
	"accidentsev/internal/schema"

	"gopkg.in/yaml.v3"
)

// SourceFormat is the encoding of a catalog source
type SourceFormat string

const (
	FormatJSON SourceFormat = "json"
	FormatYAML SourceFormat = "yaml"
)

const helpTextsKey = "help_texts"

// Catalog maps each tracked field to its ordered options
type Catalog struct {
	fields  []string
	options map[string][]model.ReferenceOption
	help    map[string]string
}

// Load reads a catalog file; the format follows the file extension
func Load(path string, sch *schema.Schema) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference data: %w", err)
	}
	format := FormatJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	}
	return Parse(data, format, sch)
}

// Parse decodes a catalog source and checks it against the schema: every
// schema field must map to a non-empty list of {code, label} options.
func Parse(data []byte, format SourceFormat, sch *schema.Schema) (*Catalog, error) {
	raw := map[string]any{}
	switch format {
	case FormatYAML:
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, &SchemaError{Reason: "invalid YAML: " + err.Error()}
		}
		if len(doc.Content) > 0 {
			v, err := yamlValue(doc.Content[0], "")
			if err != nil {
				return nil, &SchemaError{Reason: "invalid YAML: " + err.Error()}
			}
			m, ok := v.(map[string]any)
			if !ok {
				return nil, &SchemaError{Reason: fmt.Sprintf("invalid YAML: top level must be a mapping, got %T", v)}
			}
			raw = m
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, &SchemaError{Reason: "invalid JSON: " + err.Error()}
		}
	}

	c := &Catalog{
		fields:  sch.Names(),
		options: make(map[string][]model.ReferenceOption, sch.Len()),
		help:    map[string]string{},
	}

	var missing []string
	for _, name := range c.fields {
		if _, ok := raw[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Reason: "missing required fields: " + strings.Join(missing, ", ")}
	}

	for _, name := range c.fields {
		opts, err := parseOptions(name, raw[name])
		if err != nil {
			return nil, err
		}
		c.options[name] = opts
	}

	if texts, ok := raw[helpTextsKey].(map[string]any); ok {
		for field, text := range texts {
			if s, ok := text.(string); ok && c.tracked(field) {
				c.help[field] = s
			}
		}
	}

	if err := c.CheckSchema(sch); err != nil {
		return nil, err
	}
	return c, nil
}

func parseOptions(field string, v any) ([]model.ReferenceOption, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, &SchemaError{Field: field, Reason: fmt.Sprintf("must be a list, got %T", v)}
	}
	if len(list) == 0 {
		return nil, &SchemaError{Field: field, Reason: "must have at least one option"}
	}

	opts := make([]model.ReferenceOption, 0, len(list))
	seen := make(map[model.Code]bool, len(list))
	for i, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, &SchemaError{Field: field, Reason: fmt.Sprintf("option %d must be an object, got %T", i, item)}
		}
		rawCode, ok := entry["code"]
		if !ok {
			return nil, &SchemaError{Field: field, Reason: fmt.Sprintf("option %d is missing 'code'", i)}
		}
		rawLabel, ok := entry["label"]
		if !ok {
			return nil, &SchemaError{Field: field, Reason: fmt.Sprintf("option %d is missing 'label'", i)}
		}
		code, err := codeFromRaw(rawCode)
		if err != nil {
			return nil, &SchemaError{Field: field, Reason: fmt.Sprintf("option %d: %v", i, err)}
		}
		if seen[code] {
			return nil, &SchemaError{Field: field, Reason: fmt.Sprintf("duplicate code %q", code)}
		}
		seen[code] = true
		opts = append(opts, model.ReferenceOption{Code: code, Label: model.ValueString(rawLabel)})
	}
	return opts, nil
}

// yamlValue converts a YAML node to plain values. Scalars under a "code" key
// are decoded as model.Code so quoting decides between int and string codes.
func yamlValue(node *yaml.Node, key string) (any, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return yamlValue(node.Alias, key)
	case yaml.MappingNode:
		m := make(map[string]any, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			k := node.Content[i].Value
			v, err := yamlValue(node.Content[i+1], k)
			if err != nil {
				return nil, err
			}
			m[k] = v
		}
		return m, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := yamlValue(item, "")
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.ScalarNode:
		if key == "code" && node.ShortTag() != "!!float" {
			var c model.Code
			if err := node.Decode(&c); err != nil {
				return nil, err
			}
			return c, nil
		}
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node", node.Line)
}

func codeFromRaw(v any) (model.Code, error) {
	switch t := v.(type) {
	case model.Code:
		return t, nil
	case string:
		return model.StringCode(t), nil
	case int:
		return model.IntCode(t), nil
	case int64:
		return model.IntCode(int(t)), nil
	case uint64:
		return model.IntCode(int(t)), nil
	case json.Number:
		if n, err := strconv.Atoi(t.String()); err == nil {
			return model.IntCode(n), nil
		}
	case float64:
		if t == math.Trunc(t) {
			return model.IntCode(int(t)), nil
		}
	}
	return model.Code{}, fmt.Errorf("code must be an integer or a string, got %v", v)
}

// CheckSchema verifies every enumerated field has options and that every
// catalog code lies inside the field's declared domain.
func (c *Catalog) CheckSchema(sch *schema.Schema) error {
	for _, f := range sch.Fields() {
		opts := c.options[f.Name]
		if schema.Enumerated(f.Domain) && len(opts) == 0 {
			return &SchemaError{Field: f.Name, Reason: "enumerated field has no options"}
		}
		for _, o := range opts {
			if !f.Domain.Contains(o.Code.Value()) {
				return &SchemaError{Field: f.Name, Reason: fmt.Sprintf("code %q outside the field domain", o.Code)}
			}
		}
	}
	return nil
}

func (c *Catalog) tracked(field string) bool {
	_, ok := c.options[field]
	return ok
}

// Fields returns the tracked field names in schema order
func (c *Catalog) Fields() []string {
	out := make([]string, len(c.fields))
	copy(out, c.fields)
	return out
}

// Options returns the options of field in display order
func (c *Catalog) Options(field string) ([]model.ReferenceOption, error) {
	opts, ok := c.options[field]
	if !ok {
		return nil, &UnknownFieldError{Field: field}
	}
	out := make([]model.ReferenceOption, len(opts))
	copy(out, opts)
	return out, nil
}

// FormattedOptions returns "code — label" tokens in display order
func (c *Catalog) FormattedOptions(field string) ([]string, error) {
	opts, err := c.Options(field)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = Format(o.Code, o.Label)
	}
	return out, nil
}

// LabelFor finds the label of code. Codes match by value or by their string
// form, so 1 matches "1".
func (c *Catalog) LabelFor(field string, code any) (string, error) {
	opts, ok := c.options[field]
	if !ok {
		return "", &UnknownFieldError{Field: field}
	}
	want := model.CodeOf(code)
	wantStr := model.ValueString(code)
	for _, o := range opts {
		if o.Code == want || o.Code.String() == wantStr {
			return o.Label, nil
		}
	}
	return "", &ValueNotFoundError{Field: field, Code: wantStr}
}

// Selection resolves a "code — label" token against the options of field and
// returns the code exactly as the catalog types it. Plain department numbers
// such as "971" are strings in the catalog even though ParseSelection alone
// would read them as integers.
func (c *Catalog) Selection(field, formatted string) (model.Code, error) {
	opts, ok := c.options[field]
	if !ok {
		return model.Code{}, &UnknownFieldError{Field: field}
	}
	parsed := ParseSelection(formatted)
	for _, o := range opts {
		if o.Code == parsed || o.Code.String() == parsed.String() {
			return o.Code, nil
		}
	}
	return model.Code{}, &ValueNotFoundError{Field: field, Code: parsed.String()}
}

// Help returns the definition text and code table of field, if any
func (c *Catalog) Help(field string) (*model.FieldHelp, bool) {
	text, ok := c.help[field]
	if !ok || text == "" {
		return nil, false
	}
	opts, _ := c.Options(field)
	return &model.FieldHelp{Definition: text, Codes: opts}, true
}
