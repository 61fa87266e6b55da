package form

import (
	"errors"
	"testing"

	"accidentsev/internal/model"
	"accidentsev/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeInputs() map[string]any {
	return map[string]any{
		"dep": "59", "lum": 1, "atm": 1, "catr": 3, "agg": 2, "int": 1, "circ": 2,
		"col": 3, "vma_bucket": "51-80", "catv_family_4": "voitures_utilitaires",
		"manv_mode": 1, "driver_age_bucket": "25-34", "choc_mode": 1,
		"driver_trajet_family": "trajet_1", "minute": 30,
	}
}

func fill(t *testing.T, m *Machine, st *model.FormState, values map[string]any) {
	t.Helper()
	for k, v := range values {
		require.NoError(t, m.SetField(st, k, v))
	}
}

func TestNewState(t *testing.T) {
	m := NewMachine(schema.Default())
	st := m.New("s1")

	assert.Equal(t, "s1", st.ID)
	assert.Equal(t, model.FirstPage, st.CurrentPage)
	assert.Empty(t, st.Inputs)
	assert.False(t, m.IsComplete(st))
	assert.Len(t, m.MissingFields(st), schema.FieldCount)
	assert.Zero(t, m.Completion(st))
}

func TestNavigationClamps(t *testing.T) {
	m := NewMachine(schema.Default())
	st := m.New("s1")

	m.Previous(st)
	assert.Equal(t, 1, st.CurrentPage)

	for i := 0; i < 10; i++ {
		m.Next(st)
	}
	assert.Equal(t, 6, st.CurrentPage)

	m.GoTo(st, 3)
	assert.Equal(t, 3, st.CurrentPage)
	m.GoTo(st, 0)
	assert.Equal(t, 1, st.CurrentPage)
	m.GoTo(st, 42)
	assert.Equal(t, 6, st.CurrentPage)
}

func TestSetField(t *testing.T) {
	m := NewMachine(schema.Default())
	st := m.New("s1")

	require.NoError(t, m.SetField(st, "lum", 1))
	assert.Equal(t, int64(1), st.Revision)
	assert.Equal(t, 1, m.FilledCount(st))

	// no domain validation at this layer
	require.NoError(t, m.SetField(st, "lum", 99))
	assert.Equal(t, 99, st.Inputs["lum"])

	err := m.SetField(st, "time_bucket", "night")
	assert.True(t, errors.Is(err, ErrUnknownField))
	assert.NotContains(t, st.Inputs, "time_bucket")
}

func TestNilAndBlankDoNotCount(t *testing.T) {
	m := NewMachine(schema.Default())
	st := m.New("s1")
	inputs := completeInputs()
	inputs["dep"] = nil
	inputs["vma_bucket"] = "  "
	fill(t, m, st, inputs)

	assert.False(t, m.IsComplete(st))
	assert.Equal(t, 13, m.FilledCount(st))
	assert.ErrorIs(t, m.CanSubmit(st), ErrIncomplete)

	missing := m.MissingFields(st)
	require.Len(t, missing, 2)
	assert.Equal(t, "dep", missing[0].Field)
	assert.Equal(t, "vma_bucket", missing[1].Field)
}

func TestMissingFieldsSortedByPage(t *testing.T) {
	m := NewMachine(schema.Default())
	st := m.New("s1")
	fill(t, m, st, map[string]any{"dep": "59", "catr": 3, "agg": 1, "vma_bucket": "<=30"})

	first := m.MissingFields(st)
	assert.Equal(t, first, m.MissingFields(st))

	last := 0
	for _, mf := range first {
		assert.GreaterOrEqual(t, mf.Page, last)
		last = mf.Page
	}
	assert.Equal(t, 2, first[0].Page)
	assert.Equal(t, "int", first[0].Field)

	byPage := m.MissingByPage(st)
	assert.NotContains(t, byPage, 1)
	assert.Len(t, byPage[5], 3)

	msg := m.MissingMessage(st)
	assert.Contains(t, msg, "Champs manquants:")
	assert.Contains(t, msg, "- Page 5: Minute de l'heure")
}

func TestResetAfterPartialFill(t *testing.T) {
	m := NewMachine(schema.Default())
	st := m.New("s1")
	fill(t, m, st, map[string]any{
		"dep": "59", "lum": 1, "atm": 1, "catr": 3, "agg": 2, "int": 1,
	})
	m.GoTo(st, 4)
	m.RecordResult(st, model.PredictionResult{Probability: 0.5, PredClass: 1, Label: model.LabelGrave, Threshold: 0.47})

	m.Reset(st)

	assert.Equal(t, 1, st.CurrentPage)
	assert.Empty(t, st.Inputs)
	assert.Nil(t, st.LastResult)
	assert.False(t, m.IsComplete(st))
}

func TestCachedResultFollowsRevision(t *testing.T) {
	m := NewMachine(schema.Default())
	st := m.New("s1")
	fill(t, m, st, completeInputs())
	require.NoError(t, m.CanSubmit(st))
	assert.Equal(t, 100.0, m.Completion(st))

	_, ok := m.CachedResult(st)
	assert.False(t, ok)

	res := m.RecordResult(st, model.PredictionResult{Probability: 0.2, Label: model.LabelNonGrave, Threshold: 0.47})
	cached, ok := m.CachedResult(st)
	require.True(t, ok)
	assert.Equal(t, res, cached)

	require.NoError(t, m.SetField(st, "minute", 31))
	_, ok = m.CachedResult(st)
	assert.False(t, ok)

	view := m.View(st)
	assert.True(t, view.Complete)
	assert.Equal(t, 15, view.Total)
	assert.Empty(t, view.Missing)
	assert.Empty(t, m.MissingMessage(st))
}
