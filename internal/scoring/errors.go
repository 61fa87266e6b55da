package scoring

import "errors"

// ErrServiceUnavailable is returned until the model has finished loading
var ErrServiceUnavailable = errors.New("model not ready")

// InternalSchemaError is a vector or artifact that does not match the
// expected features. Normalized input never triggers it.
type InternalSchemaError struct {
	Reason string
}

func (e *InternalSchemaError) Error() string {
	return "internal schema error: " + e.Reason
}
