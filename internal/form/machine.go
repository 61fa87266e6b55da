// Package form drives the six-page guided form: navigation, field entry and
// completion tracking over a model.FormState.
package form

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"accidentsev/internal/model"
	"accidentsev/internal/schema"
)

var (
	ErrUnknownField = errors.New("unknown form field")
	ErrIncomplete   = errors.New("form is incomplete")
)

// Machine applies form transitions. It holds no per-session state and is
// safe to share.
type Machine struct {
	schema *schema.Schema
	now    func() time.Time
}

func NewMachine(sch *schema.Schema) *Machine {
	return &Machine{schema: sch, now: time.Now}
}

// New starts a session on page 1 with no inputs
func (m *Machine) New(id string) *model.FormState {
	now := m.now().UTC()
	return &model.FormState{
		ID:          id,
		CurrentPage: model.FirstPage,
		Inputs:      map[string]any{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SetField stores value under name. Values are not validated here; that
// happens when the form is submitted.
func (m *Machine) SetField(st *model.FormState, name string, value any) error {
	if !m.schema.Has(name) {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if st.Inputs == nil {
		st.Inputs = map[string]any{}
	}
	st.Inputs[name] = value
	m.touch(st)
	return nil
}

func (m *Machine) Next(st *model.FormState) {
	m.GoTo(st, st.CurrentPage+1)
}

func (m *Machine) Previous(st *model.FormState) {
	m.GoTo(st, st.CurrentPage-1)
}

// GoTo moves to page, clamped to the form bounds
func (m *Machine) GoTo(st *model.FormState, page int) {
	st.CurrentPage = min(max(page, model.FirstPage), model.LastPage)
	st.UpdatedAt = m.now().UTC()
}

// Reset clears inputs and the last result and returns to page 1
func (m *Machine) Reset(st *model.FormState) {
	st.Inputs = map[string]any{}
	st.LastResult = nil
	st.CurrentPage = model.FirstPage
	m.touch(st)
}

func (m *Machine) touch(st *model.FormState) {
	st.Revision++
	st.UpdatedAt = m.now().UTC()
}

// filled reports whether a value counts as entered. Nil and blank strings do not.
func filled(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	}
	return true
}

func (m *Machine) FilledCount(st *model.FormState) int {
	n := 0
	for _, name := range m.schema.Names() {
		if filled(st.Inputs[name]) {
			n++
		}
	}
	return n
}

func (m *Machine) IsComplete(st *model.FormState) bool {
	return m.FilledCount(st) == m.schema.Len()
}

// Completion is the filled share of the form, in percent
func (m *Machine) Completion(st *model.FormState) float64 {
	if m.schema.Len() == 0 {
		return 100
	}
	return float64(m.FilledCount(st)) * 100 / float64(m.schema.Len())
}

// MissingFields lists unfilled fields sorted by page, schema order within a page
func (m *Machine) MissingFields(st *model.FormState) []model.MissingField {
	missing := []model.MissingField{}
	for _, f := range m.schema.Fields() {
		if !filled(st.Inputs[f.Name]) {
			missing = append(missing, model.MissingField{Page: f.Page, Field: f.Name, Label: f.Label})
		}
	}
	sort.SliceStable(missing, func(i, j int) bool {
		return missing[i].Page < missing[j].Page
	})
	return missing
}

// MissingByPage groups the missing fields for "complete page N" hints
func (m *Machine) MissingByPage(st *model.FormState) map[int][]string {
	out := map[int][]string{}
	for _, mf := range m.MissingFields(st) {
		out[mf.Page] = append(out[mf.Page], mf.Label)
	}
	return out
}

// MissingMessage renders the missing fields as a user-facing list, one line
// per field. Empty when the form is complete.
func (m *Machine) MissingMessage(st *model.FormState) string {
	missing := m.MissingFields(st)
	if len(missing) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Champs manquants:")
	for _, mf := range missing {
		fmt.Fprintf(&b, "\n- Page %d: %s", mf.Page, mf.Label)
	}
	return b.String()
}

// CachedResult returns the last result when it was computed from the current
// inputs, so a form is scored once per consistent input set.
func (m *Machine) CachedResult(st *model.FormState) (*model.SessionResult, bool) {
	if st.LastResult == nil || st.LastResult.Revision != st.Revision {
		return nil, false
	}
	return st.LastResult, true
}

// RecordResult attaches a prediction to the current revision
func (m *Machine) RecordResult(st *model.FormState, res model.PredictionResult) *model.SessionResult {
	now := m.now().UTC()
	st.LastResult = &model.SessionResult{
		PredictionResult: res,
		Revision:         st.Revision,
		PredictedAt:      now,
	}
	st.UpdatedAt = now
	return st.LastResult
}

// CanSubmit returns ErrIncomplete until every field is filled
func (m *Machine) CanSubmit(st *model.FormState) error {
	if !m.IsComplete(st) {
		return ErrIncomplete
	}
	return nil
}

func (m *Machine) View(st *model.FormState) *model.FormView {
	return &model.FormView{
		State:      st,
		Complete:   m.IsComplete(st),
		Filled:     m.FilledCount(st),
		Total:      m.schema.Len(),
		Completion: m.Completion(st),
		Missing:    m.MissingFields(st),
	}
}
