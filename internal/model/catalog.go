package model

// ReferenceOption is one selectable value of an enumerated field
type ReferenceOption struct {
	Code  Code   `json:"code" yaml:"code"`
	Label string `json:"label" yaml:"label"`
}

// FieldHelp is the contextual help shown next to a field
type FieldHelp struct {
	Definition string            `json:"definition"`
	Codes      []ReferenceOption `json:"codes"`
}

// FieldOptions is the catalog view of one field returned to form clients
type FieldOptions struct {
	Field     string            `json:"field"`
	Label     string            `json:"label"`
	Page      int               `json:"page"`
	Options   []ReferenceOption `json:"options"`
	Formatted []string          `json:"formatted"`
	Help      *FieldHelp        `json:"help,omitempty"`
}
