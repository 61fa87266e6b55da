package handler

import (
	"encoding/json"
	"net/http"

	"accidentsev/internal/normalize"
	"accidentsev/internal/scoring"
	"accidentsev/internal/service"
)

// PredictHandler serves the stateless prediction endpoint
type PredictHandler struct {
	predictionSvc *service.PredictionService
}

// NewPredictHandler creates a new predict handler
func NewPredictHandler(predictionSvc *service.PredictionService) *PredictHandler {
	return &PredictHandler{predictionSvc: predictionSvc}
}

// Predict handles POST /predict
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.predictionSvc.Predict(r.Context(), "", normalize.RequestData(body))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// Health handles GET /health
func (h *PredictHandler) Health(w http.ResponseWriter, r *http.Request) {
	health := h.predictionSvc.Health()
	status := http.StatusOK
	if health.Status == scoring.StatusError {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

// Stats handles GET /v1/stats
func (h *PredictHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.predictionSvc.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if stats == nil {
		writeError(w, http.StatusNotFound, "prediction stats are disabled")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
