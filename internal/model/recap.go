package model

// RecapRow is one entered value with its human-readable label
type RecapRow struct {
	Field      string `json:"field"`
	Label      string `json:"label"`
	Code       string `json:"code"`
	ValueLabel string `json:"value_label"`
}

// RecapPage groups the rows collected on one form page
type RecapPage struct {
	Page  int        `json:"page"`
	Title string     `json:"title"`
	Rows  []RecapRow `json:"rows"`
}

// Recap is the page-6 summary of a session
type Recap struct {
	Pages   []RecapPage    `json:"pages"`
	Filled  int            `json:"filled"`
	Total   int            `json:"total"`
	Missing []MissingField `json:"missing"`
	Result  *SessionResult `json:"result,omitempty"`
}
