package normalize

// RequestData returns the field object of a prediction request body. Bodies
// of the form {"data": {...}} yield the inner object and any sibling keys are
// ignored; any other body is taken as the field object itself.
func RequestData(body map[string]any) map[string]any {
	if data, ok := body["data"].(map[string]any); ok {
		return data
	}
	return body
}
