package catalog

import "fmt"

// SchemaError reports a malformed catalog source. It is fatal at startup.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return "reference catalog: " + e.Reason
	}
	return fmt.Sprintf("reference catalog: field %q: %s", e.Field, e.Reason)
}

// UnknownFieldError is returned for a field the catalog does not track
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("field %q not found in reference data", e.Field)
}

// ValueNotFoundError is returned when a tracked field has no such code
type ValueNotFoundError struct {
	Field string
	Code  string
}

func (e *ValueNotFoundError) Error() string {
	return fmt.Sprintf("code %q not found in field %q", e.Code, e.Field)
}
