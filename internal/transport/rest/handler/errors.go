package handler

import (
	"context"
	"errors"
	"net/http"

	"accidentsev/internal/catalog"
	"accidentsev/internal/form"
	"accidentsev/internal/model"
	"accidentsev/internal/normalize"
	"accidentsev/internal/scoring"
	"accidentsev/internal/service"
)

const retryAfterSeconds = "5"

// ValidationDetail locates one rejected input, in the body of a 422
type ValidationDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationErrorResponse is the body of a 422 response
type ValidationErrorResponse struct {
	Error         string             `json:"error"`
	MissingFields []string           `json:"missing_fields,omitempty"`
	Field         string             `json:"field,omitempty"`
	Value         interface{}        `json:"value,omitempty"`
	Hint          string             `json:"hint"`
	Detail        []ValidationDetail `json:"detail"`
}

// IncompleteFormResponse is the body of a 409 on submit
type IncompleteFormResponse struct {
	Error         string               `json:"error"`
	Message       string               `json:"message"`
	Missing       []model.MissingField `json:"missing"`
	MissingByPage map[int][]string     `json:"missing_by_page"`
}

// writeServiceError maps service errors to HTTP status codes
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		missing    *normalize.MissingFieldsError
		fieldErr   normalize.FieldError
		incomplete *service.IncompleteFormError
		internal   *scoring.InternalSchemaError
		unknown    *catalog.UnknownFieldError
		notFound   *catalog.ValueNotFoundError
	)

	switch {
	case errors.As(err, &missing):
		writeJSON(w, http.StatusUnprocessableEntity, missingResponse(missing))
	case errors.As(err, &fieldErr):
		writeJSON(w, http.StatusUnprocessableEntity, fieldResponse(err, fieldErr))
	case errors.As(err, &incomplete):
		writeJSON(w, http.StatusConflict, incompleteResponse(incomplete))
	case errors.Is(err, scoring.ErrServiceUnavailable):
		w.Header().Set("Retry-After", retryAfterSeconds)
		writeError(w, http.StatusServiceUnavailable, "Modèle non prêt (startup en cours).")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "prediction timed out")
	case errors.As(err, &internal):
		writeError(w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &unknown), errors.Is(err, form.ErrUnknownField):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &notFound):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func missingResponse(e *normalize.MissingFieldsError) ValidationErrorResponse {
	resp := ValidationErrorResponse{
		Error:         e.Summary(),
		MissingFields: e.Fields,
		Hint:          e.Hint(),
	}
	for _, f := range e.Fields {
		resp.Detail = append(resp.Detail, ValidationDetail{
			Loc:  []string{"body", f},
			Msg:  "field required",
			Type: "missing",
		})
	}
	return resp
}

// fieldResponse reports the first offending field at top level and every
// joined field error in detail.
func fieldResponse(err error, first normalize.FieldError) ValidationErrorResponse {
	resp := ValidationErrorResponse{
		Error: first.Summary(),
		Field: first.FieldName(),
		Value: first.FieldValue(),
		Hint:  first.Hint(),
	}
	for _, fe := range fieldErrors(err) {
		resp.Detail = append(resp.Detail, ValidationDetail{
			Loc:  []string{"body", fe.FieldName()},
			Msg:  fe.Error(),
			Type: detailType(fe),
		})
	}
	return resp
}

func fieldErrors(err error) []normalize.FieldError {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []normalize.FieldError
		for _, e := range joined.Unwrap() {
			out = append(out, fieldErrors(e)...)
		}
		return out
	}
	var fe normalize.FieldError
	if errors.As(err, &fe) {
		return []normalize.FieldError{fe}
	}
	return nil
}

func detailType(fe normalize.FieldError) string {
	switch fe.(type) {
	case *normalize.InvalidFormatError:
		return "invalid_format"
	case *normalize.InvalidNumericValueError:
		return "invalid_numeric"
	default:
		return "invalid_value"
	}
}

func incompleteResponse(e *service.IncompleteFormError) IncompleteFormResponse {
	byPage := make(map[int][]string)
	for _, m := range e.Missing {
		byPage[m.Page] = append(byPage[m.Page], m.Label)
	}
	return IncompleteFormResponse{
		Error:         "Formulaire incomplet",
		Message:       e.Message,
		Missing:       e.Missing,
		MissingByPage: byPage,
	}
}
