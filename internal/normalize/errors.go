package normalize

import (
	"fmt"
	"strings"
)

// FieldError is implemented by every per-field rejection so the HTTP layer
// can point at the offending input.
type FieldError interface {
	error
	FieldName() string
	FieldValue() any
	Summary() string
	Hint() string
}

// MissingFieldsError lists every required field that is absent and has no
// default, in schema order.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Summary() string { return "Champs manquants" }

func (e *MissingFieldsError) Hint() string {
	return "Fournis tous les 15 champs, ou définis des valeurs par défaut côté API pour autoriser des omissions."
}

// InvalidFormatError is a clock-time string ("14:30") given to a numeric field
type InvalidFormatError struct {
	Field string
	Value any
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("field %q: invalid format %v", e.Field, e.Value)
}

func (e *InvalidFormatError) FieldName() string { return e.Field }
func (e *InvalidFormatError) FieldValue() any   { return e.Value }
func (e *InvalidFormatError) Summary() string   { return "Format invalide" }

func (e *InvalidFormatError) Hint() string {
	return "Le champ doit être un nombre (format HH:MM non accepté)."
}

// InvalidNumericValueError is a numeric field value that does not coerce
type InvalidNumericValueError struct {
	Field string
	Value any
}

func (e *InvalidNumericValueError) Error() string {
	return fmt.Sprintf("field %q: not numeric: %v", e.Field, e.Value)
}

func (e *InvalidNumericValueError) FieldName() string { return e.Field }
func (e *InvalidNumericValueError) FieldValue() any   { return e.Value }
func (e *InvalidNumericValueError) Summary() string   { return "Valeur numérique invalide" }
func (e *InvalidNumericValueError) Hint() string      { return "Le champ doit être numérique." }

// InvalidValueError is a well-typed value outside the field's domain
type InvalidValueError struct {
	Field string
	Value any
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("field %q: value %v outside the allowed values", e.Field, e.Value)
}

func (e *InvalidValueError) FieldName() string { return e.Field }
func (e *InvalidValueError) FieldValue() any   { return e.Value }
func (e *InvalidValueError) Summary() string   { return "Valeur invalide" }

func (e *InvalidValueError) Hint() string {
	return "La valeur doit faire partie des codes de référence du champ."
}
