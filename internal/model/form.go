package model

import "time"

// Page bounds of the guided form. Page 6 is the recap/submit page.
const (
	FirstPage = 1
	LastPage  = 6
)

// FormState is the state of one interactive form session
type FormState struct {
	ID          string         `json:"id"`
	CurrentPage int            `json:"currentPage"`
	Inputs      map[string]any `json:"inputs"`
	LastResult  *SessionResult `json:"lastResult,omitempty"`
	Revision    int64          `json:"revision"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// MissingField points the user back to an unfinished page
type MissingField struct {
	Page  int    `json:"page"`
	Field string `json:"field"`
	Label string `json:"label"`
}

// FormView is the session state plus derived completion data
type FormView struct {
	State      *FormState     `json:"state"`
	Complete   bool           `json:"complete"`
	Filled     int            `json:"filled"`
	Total      int            `json:"total"`
	Completion float64        `json:"completion"`
	Missing    []MissingField `json:"missing"`
}

// SessionCreated is returned when a new form session starts
type SessionCreated struct {
	SessionID string    `json:"sessionId"`
	Token     string    `json:"token"`
	View      *FormView `json:"view"`
}
