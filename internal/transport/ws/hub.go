package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgFormUpdated     MessageType = "form_updated"
	MsgPredictionReady MessageType = "prediction_ready"
	MsgSessionEnded    MessageType = "session_ended"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans session events out to every socket open on that session, so two
// tabs on the same form stay in sync.
type Hub struct {
	conns map[string]map[*Connection]struct{} // sessionID -> connections

	mu     sync.RWMutex
	logger *zap.Logger

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	quit       chan struct{}
	done       chan struct{}
	closeOnce  sync.Once
}

// Connection represents a WebSocket connection
type Connection struct {
	SessionID string
	Send      chan []byte
	Hub       *Hub

	// set by the hub before Send is closed
	closeCode   int
	closeReason string
}

// Close reasons carried by the close frame
const (
	CloseReasonSessionEnded = "session_ended"
	CloseReasonShutdown     = "server shutting down"
)

// drop closes Send; the write pump then sends a close frame with code and
// reason. Callers hold h.mu.
func (c *Connection) drop(code int, reason string) {
	c.closeCode, c.closeReason = code, reason
	close(c.Send)
}

// CloseFrame returns the payload of the close frame sent once Send is closed
func (c *Connection) CloseFrame() []byte {
	if c.closeCode == 0 {
		return websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	}
	return websocket.FormatCloseMessage(c.closeCode, c.closeReason)
}

// BroadcastMessage is a message to broadcast. Close drops the session's
// sockets once the message is queued to them.
type BroadcastMessage struct {
	SessionID string
	Message   *Message
	Close     bool
}

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger) *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]struct{}),
		logger:     logger,
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	defer close(h.done)
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.SessionID] == nil {
				h.conns[conn.SessionID] = make(map[*Connection]struct{})
			}
			h.conns[conn.SessionID][conn] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("socket connected", zap.String("sessionId", conn.SessionID))

		case conn := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.conns[conn.SessionID]; ok {
				if _, ok := set[conn]; ok {
					delete(set, conn)
					close(conn.Send)
					if len(set) == 0 {
						delete(h.conns, conn.SessionID)
					}
					h.logger.Debug("socket disconnected", zap.String("sessionId", conn.SessionID))
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.logger.Warn("failed to encode socket message", zap.Error(err))
				continue
			}
			h.mu.Lock()
			for conn := range h.conns[msg.SessionID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
				if msg.Close {
					conn.drop(websocket.CloseNormalClosure, CloseReasonSessionEnded)
				}
			}
			if msg.Close {
				delete(h.conns, msg.SessionID)
			}
			h.mu.Unlock()

		case <-h.quit:
			h.mu.Lock()
			for _, set := range h.conns {
				for conn := range set {
					conn.drop(websocket.CloseGoingAway, CloseReasonShutdown)
				}
			}
			h.conns = make(map[string]map[*Connection]struct{})
			h.mu.Unlock()
			return
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		conn.drop(websocket.CloseGoingAway, CloseReasonShutdown)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Connections returns the number of open sockets of a session
func (h *Hub) Connections(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[sessionID])
}

// BroadcastToSession sends an event to every socket of a session (implements service.Broadcaster)
func (h *Hub) BroadcastToSession(sessionID string, msgType string, payload interface{}) {
	h.send(sessionID, MessageType(msgType), payload, false)
}

// DisconnectSession notifies and closes every socket of an ended session (implements service.Broadcaster)
func (h *Hub) DisconnectSession(sessionID string) {
	h.send(sessionID, MsgSessionEnded, map[string]string{"sessionId": sessionID}, true)
}

func (h *Hub) send(sessionID string, msgType MessageType, payload interface{}, closeAfter bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("failed to encode socket payload", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- &BroadcastMessage{
		SessionID: sessionID,
		Message:   &Message{Type: msgType, Payload: data},
		Close:     closeAfter,
	}:
	case <-h.done:
	}
}

// Close stops the hub and closes all sockets
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.quit) })
	<-h.done
}
