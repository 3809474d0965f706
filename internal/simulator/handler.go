package simulator

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/sayhiafrica/ticketing-platform/internal/conversation"
	"github.com/sayhiafrica/ticketing-platform/internal/transcript"
	"github.com/sayhiafrica/ticketing-platform/pkg/logging"
)

// turnProcessor runs one conversation turn.
type turnProcessor interface {
	ProcessTurn(ctx context.Context, req conversation.TurnRequest) conversation.TurnResponse
}

// historyLister reads archived chat lines for the replay view.
type historyLister interface {
	ListRecent(ctx context.Context, phone string, limit int) ([]transcript.Message, error)
}

// Handler exposes the WhatsApp simulator: a browser chat that drives
// the same conversation service as the real channel, without Meta in
// the loop.
type Handler struct {
	service turnProcessor
	history historyLister
	logger  *logging.Logger

	mu       sync.RWMutex
	sessions map[string]*wsConn
}

type wsConn struct {
	conn *websocket.Conn
	done chan struct{}
}

// InboundMessage is what the simulator page sends.
type InboundMessage struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text"`
}

// OutboundMessage is what we send to the simulator page.
type OutboundMessage struct {
	Type      string           `json:"type"` // "message", "typing", "pong", "history", "session", "error"
	Text      string           `json:"text,omitempty"`
	Role      string           `json:"role,omitempty"` // "assistant" or "user"
	SessionID string           `json:"session_id,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
	Messages  []HistoryMessage `json:"messages,omitempty"`
}

// HistoryMessage is a simplified message for history responses.
type HistoryMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// NewHandler creates a simulator handler. history may be nil.
func NewHandler(service turnProcessor, history historyLister, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service:  service,
		history:  history,
		logger:   logger,
		sessions: make(map[string]*wsConn),
	}
}

// SimulatedPhone maps a simulator session onto the phone keyspace the
// conversation service expects.
func SimulatedPhone(sessionID string) string {
	return "sim:" + sessionID
}

func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = generateSessionID()
	}
	phone := SimulatedPhone(sessionID)

	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:      "session",
		SessionID: sessionID,
	})

	if h.history != nil {
		if msgs, err := h.history.ListRecent(r.Context(), phone, 50); err == nil && len(msgs) > 0 {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "history", Messages: toHistory(msgs)})
		}
	}

	wsc := &wsConn{conn: conn, done: make(chan struct{})}
	h.mu.Lock()
	h.sessions[sessionID] = wsc
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		if h.sessions[sessionID] == wsc {
			delete(h.sessions, sessionID)
		}
		h.mu.Unlock()
		close(wsc.done)
	}()

	h.logger.Info("simulator: connection opened", "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("simulator: connection closed", "session_id", sessionID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}
		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "typing"})
		resp := h.service.ProcessTurn(r.Context(), conversation.TurnRequest{
			Message: msg.Text,
			Phone:   phone,
		})
		_ = websocket.JSON.Send(conn, OutboundMessage{
			Type:      "message",
			Role:      "assistant",
			Text:      resp.Response,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// HandleTurn is the HTTP fallback: one synchronous turn per request.
func (h *Handler) HandleTurn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Text      string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = generateSessionID()
	}

	resp := h.service.ProcessTurn(r.Context(), conversation.TurnRequest{
		Message: req.Text,
		Phone:   SimulatedPhone(req.SessionID),
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"session_id": req.SessionID,
		"response":   resp.Response,
	})
}

// HandleHistory returns the archived chat for a simulator session.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	history := []HistoryMessage{}
	if h.history != nil {
		msgs, err := h.history.ListRecent(r.Context(), SimulatedPhone(sessionID), 100)
		if err != nil {
			h.logger.Error("simulator: failed to load history", "error", err)
			http.Error(w, "failed to load history", http.StatusInternalServerError)
			return
		}
		history = toHistory(msgs)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"messages": history})
}

func toHistory(msgs []transcript.Message) []HistoryMessage {
	out := make([]HistoryMessage, 0, len(msgs))
	// The archive lists newest first; the chat view wants oldest first.
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		role := "user"
		if m.Direction == transcript.DirectionOutbound {
			role = "assistant"
		}
		out = append(out, HistoryMessage{
			Role:      role,
			Text:      m.Body,
			Timestamp: m.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}
