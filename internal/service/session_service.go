package service

import (
	"context"
	"errors"
	"fmt"

	"accidentsev/internal/cache"
	"accidentsev/internal/catalog"
	"accidentsev/internal/form"
	"accidentsev/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// IncompleteFormError is returned when submitting a form with empty fields
type IncompleteFormError struct {
	Missing []model.MissingField
	Message string
}

func (e *IncompleteFormError) Error() string {
	return fmt.Sprintf("form is incomplete: %d fields missing", len(e.Missing))
}

func (e *IncompleteFormError) Unwrap() error { return form.ErrIncomplete }

// SessionService drives guided form sessions stored in Redis
type SessionService struct {
	machine     *form.Machine
	catalog     *catalog.Catalog
	forms       cache.FormCache
	auth        *AuthService
	predictions *PredictionService
	recaps      *RecapService
	broadcaster Broadcaster
	logger      *zap.Logger
}

func NewSessionService(machine *form.Machine, cat *catalog.Catalog, forms cache.FormCache, auth *AuthService, predictions *PredictionService, recaps *RecapService, logger *zap.Logger) *SessionService {
	return &SessionService{
		machine:     machine,
		catalog:     cat,
		forms:       forms,
		auth:        auth,
		predictions: predictions,
		recaps:      recaps,
		logger:      logger,
	}
}

// SetBroadcaster sets the WebSocket broadcaster
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Create starts a new session and returns its token
func (s *SessionService) Create(ctx context.Context) (*model.SessionCreated, error) {
	st := s.machine.New(uuid.New().String())
	if err := s.forms.Set(ctx, st); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	token, err := s.auth.GenerateSessionToken(st.ID)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	s.logger.Info("session created", zap.String("sessionId", st.ID))
	return &model.SessionCreated{SessionID: st.ID, Token: token, View: s.machine.View(st)}, nil
}

func (s *SessionService) load(ctx context.Context, id string) (*model.FormState, error) {
	st, err := s.forms.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if st == nil {
		return nil, ErrSessionNotFound
	}
	return st, nil
}

// mutate loads a session, applies fn, saves it and notifies listeners
func (s *SessionService) mutate(ctx context.Context, id string, fn func(st *model.FormState) error) (*model.FormView, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(st); err != nil {
		return nil, err
	}
	if err := s.forms.Set(ctx, st); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	view := s.machine.View(st)
	s.broadcast(id, EventFormUpdated, view)
	return view, nil
}

func (s *SessionService) broadcast(id, msgType string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSession(id, msgType, payload)
	}
}

func (s *SessionService) Get(ctx context.Context, id string) (*model.FormView, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.machine.View(st), nil
}

// SetField stores a raw value. It is validated on submit.
func (s *SessionService) SetField(ctx context.Context, id, field string, value any) (*model.FormView, error) {
	return s.mutate(ctx, id, func(st *model.FormState) error {
		return s.machine.SetField(st, field, value)
	})
}

// SetSelection stores the code of a "code — label" option token
func (s *SessionService) SetSelection(ctx context.Context, id, field, selection string) (*model.FormView, error) {
	code, err := s.catalog.Selection(field, selection)
	if err != nil {
		return nil, err
	}
	return s.SetField(ctx, id, field, code.Value())
}

func (s *SessionService) Next(ctx context.Context, id string) (*model.FormView, error) {
	return s.mutate(ctx, id, func(st *model.FormState) error {
		s.machine.Next(st)
		return nil
	})
}

func (s *SessionService) Previous(ctx context.Context, id string) (*model.FormView, error) {
	return s.mutate(ctx, id, func(st *model.FormState) error {
		s.machine.Previous(st)
		return nil
	})
}

func (s *SessionService) GoTo(ctx context.Context, id string, page int) (*model.FormView, error) {
	return s.mutate(ctx, id, func(st *model.FormState) error {
		s.machine.GoTo(st, page)
		return nil
	})
}

func (s *SessionService) Reset(ctx context.Context, id string) (*model.FormView, error) {
	return s.mutate(ctx, id, func(st *model.FormState) error {
		s.machine.Reset(st)
		return nil
	})
}

func (s *SessionService) Recap(ctx context.Context, id string) (*model.Recap, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.recaps.Build(st), nil
}

// RecapHTML renders the recap of a session for display
func (s *SessionService) RecapHTML(ctx context.Context, id string) (string, error) {
	recap, err := s.Recap(ctx, id)
	if err != nil {
		return "", err
	}
	return s.recaps.RenderHTML(recap)
}

// Submit scores a complete form. A form is scored once per revision: a
// second submit without changes returns the stored result.
func (s *SessionService) Submit(ctx context.Context, id string) (*model.SessionResult, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.machine.CanSubmit(st); err != nil {
		return nil, &IncompleteFormError{
			Missing: s.machine.MissingFields(st),
			Message: s.machine.MissingMessage(st),
		}
	}
	if cached, ok := s.machine.CachedResult(st); ok {
		return cached, nil
	}

	res, err := s.predictions.Predict(ctx, id, st.Inputs)
	if err != nil {
		return nil, err
	}

	result := s.machine.RecordResult(st, *res)
	s.machine.GoTo(st, model.LastPage)
	if err := s.forms.Set(ctx, st); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.broadcast(id, EventPredictionReady, result)
	return result, nil
}

func (s *SessionService) History(ctx context.Context, id string) ([]model.PredictionRecord, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	return s.predictions.History(ctx, id)
}

// End deletes a session and closes its sockets
func (s *SessionService) End(ctx context.Context, id string) error {
	if err := s.forms.Delete(ctx, id); err != nil {
		return err
	}
	if s.broadcaster != nil {
		s.broadcaster.DisconnectSession(id)
	}
	return nil
}
