package handler

import (
	"encoding/json"
	"net/http"

	"accidentsev/internal/service"
	"accidentsev/internal/transport/rest/middleware"
)

// AuthHandler handles session token endpoints
type AuthHandler struct {
	authSvc    *service.AuthService
	sessionSvc *service.SessionService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *service.AuthService, sessionSvc *service.SessionService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, sessionSvc: sessionSvc}
}

// Refresh handles POST /v1/session/token
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())
	if _, err := h.sessionSvc.Get(r.Context(), sessionID); err != nil {
		writeServiceError(w, err)
		return
	}

	token, err := h.authSvc.GenerateSessionToken(sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"sessionId": sessionID, "token": token})
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
