package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"accidentsev/internal/model"
	"accidentsev/internal/service"
	"accidentsev/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// SessionHandler handles guided form session endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// SetFieldRequest is the body of PUT /v1/session/fields/{field}. Selection
// takes a "code — label" token as shown in option lists.
type SetFieldRequest struct {
	Value     interface{} `json:"value"`
	Selection *string     `json:"selection,omitempty"`
}

// Create handles POST /v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	created, err := h.sessionSvc.Create(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Get handles GET /v1/session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionSvc.Get(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// End handles DELETE /v1/session
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionSvc.End(r.Context(), middleware.GetSessionID(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetField handles PUT /v1/session/fields/{field}
func (h *SessionHandler) SetField(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())
	field := mux.Vars(r)["field"]

	var req SetFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var err error
	var view *model.FormView
	if req.Selection != nil {
		view, err = h.sessionSvc.SetSelection(r.Context(), sessionID, field, *req.Selection)
	} else {
		view, err = h.sessionSvc.SetField(r.Context(), sessionID, field, req.Value)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Next handles POST /v1/session/next
func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionSvc.Next(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Previous handles POST /v1/session/previous
func (h *SessionHandler) Previous(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionSvc.Previous(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GoTo handles POST /v1/session/page/{page}
func (h *SessionHandler) GoTo(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(mux.Vars(r)["page"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid page")
		return
	}

	view, err := h.sessionSvc.GoTo(r.Context(), middleware.GetSessionID(r.Context()), page)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Reset handles POST /v1/session/reset
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionSvc.Reset(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Recap handles GET /v1/session/recap. ?format=html returns the rendered
// recap document instead of JSON.
func (h *SessionHandler) Recap(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	if r.URL.Query().Get("format") == "html" {
		html, err := h.sessionSvc.RecapHTML(r.Context(), sessionID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(html))
		return
	}

	recap, err := h.sessionSvc.Recap(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recap)
}

// Submit handles POST /v1/session/submit
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	res, err := h.sessionSvc.Submit(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// History handles GET /v1/session/history
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	records, err := h.sessionSvc.History(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
