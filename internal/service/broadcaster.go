package service

// Session event types pushed over WebSocket
const (
	EventFormUpdated     = "form_updated"
	EventPredictionReady = "prediction_ready"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToSession(sessionID string, msgType string, payload interface{})
	DisconnectSession(sessionID string)
}
