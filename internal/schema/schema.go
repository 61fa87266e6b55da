// Package schema declares the 15 fields the severity model consumes: their
// value domain, display label and the form page that collects them.
package schema

import "fmt"

// FieldDefinition describes one required input field
type FieldDefinition struct {
	Name   string
	Label  string
	Page   int
	Domain Domain
}

// Schema is the immutable, ordered field list. Order is the classifier's
// feature order.
type Schema struct {
	fields []FieldDefinition
	index  map[string]int
	titles map[int]string
}

// New builds a schema from field definitions, rejecting duplicate names and
// pages outside the form.
func New(fields []FieldDefinition, titles map[int]string) (*Schema, error) {
	s := &Schema{
		fields: make([]FieldDefinition, len(fields)),
		index:  make(map[string]int, len(fields)),
		titles: titles,
	}
	copy(s.fields, fields)
	for i, f := range fields {
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("duplicate field %q", f.Name)
		}
		if f.Page < 1 || f.Page > 5 {
			return nil, fmt.Errorf("field %q: page %d outside 1..5", f.Name, f.Page)
		}
		if f.Domain == nil {
			return nil, fmt.Errorf("field %q: missing domain", f.Name)
		}
		s.index[f.Name] = i
	}
	return s, nil
}

// Fields returns the definitions in canonical order
func (s *Schema) Fields() []FieldDefinition {
	out := make([]FieldDefinition, len(s.fields))
	copy(out, s.fields)
	return out
}

// Names returns the field names in canonical order
func (s *Schema) Names() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name
	}
	return out
}

// Len is the number of required fields
func (s *Schema) Len() int { return len(s.fields) }

// Has reports whether name is a tracked field
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Lookup returns the definition of name
func (s *Schema) Lookup(name string) (FieldDefinition, bool) {
	i, ok := s.index[name]
	if !ok {
		return FieldDefinition{}, false
	}
	return s.fields[i], true
}

// Label returns the display label, or the name itself for unknown fields
func (s *Schema) Label(name string) string {
	if f, ok := s.Lookup(name); ok {
		return f.Label
	}
	return name
}

// ByPage returns the fields collected on page, in canonical order
func (s *Schema) ByPage(page int) []FieldDefinition {
	var out []FieldDefinition
	for _, f := range s.fields {
		if f.Page == page {
			out = append(out, f)
		}
	}
	return out
}

// PageTitle returns the heading of a form page
func (s *Schema) PageTitle(page int) string {
	if t, ok := s.titles[page]; ok {
		return t
	}
	return fmt.Sprintf("Page %d", page)
}
