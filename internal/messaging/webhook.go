package messaging

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sayhiafrica/ticketing-platform/internal/conversation"
	"github.com/sayhiafrica/ticketing-platform/pkg/logging"
)

// turnProcessor is the conversation boundary the webhook drives.
type turnProcessor interface {
	ProcessTurn(ctx context.Context, req conversation.TurnRequest) conversation.TurnResponse
}

// WebhookHandler terminates the WhatsApp Cloud API webhook: the GET
// subscription handshake and the POST message delivery.
type WebhookHandler struct {
	service     turnProcessor
	notifier    Notifier
	verifyToken string
	logger      *logging.Logger
}

// NewWebhookHandler wires the inbound WhatsApp webhook.
func NewWebhookHandler(service turnProcessor, notifier Notifier, verifyToken string, logger *logging.Logger) *WebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{
		service:     service,
		notifier:    notifier,
		verifyToken: verifyToken,
		logger:      logger,
	}
}

// Verify handles the GET subscription handshake. Meta sends the
// configured verify token and expects the challenge echoed back.
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") == "subscribe" && q.Get("hub.verify_token") == h.verifyToken && h.verifyToken != "" {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(q.Get("hub.challenge")))
		return
	}
	h.logger.Warn("whatsapp webhook verification rejected", "mode", q.Get("hub.mode"))
	http.Error(w, "Forbidden", http.StatusForbidden)
}

type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string `json:"from"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// Receive handles POST deliveries. Every text message runs one
// conversation turn and the reply goes back out through the notifier.
// The endpoint always acknowledges with 200 once the payload parses;
// per-message failures are logged, not surfaced, so Meta does not
// redeliver the whole batch.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&payload); err != nil {
		h.logger.Error("failed to decode whatsapp webhook", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.Type != "text" || msg.From == "" || msg.Text.Body == "" {
					continue
				}
				h.handleMessage(r.Context(), msg.From, msg.Text.Body)
			}
		}
	}

	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) handleMessage(ctx context.Context, from, body string) {
	resp := h.service.ProcessTurn(ctx, conversation.TurnRequest{
		Message: body,
		Phone:   from,
	})
	if h.notifier == nil {
		return
	}
	if err := h.notifier.SendText(ctx, from, resp.Response); err != nil {
		h.logger.Error("failed to deliver whatsapp reply", "to", from, "error", err)
	}
}
