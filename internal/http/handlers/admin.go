package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sayhiafrica/ticketing-platform/internal/catalog"
	"github.com/sayhiafrica/ticketing-platform/internal/orders"
	"github.com/sayhiafrica/ticketing-platform/internal/transcript"
	"github.com/sayhiafrica/ticketing-platform/pkg/logging"
)

type eventLister interface {
	ListUpcoming(ctx context.Context) ([]catalog.Event, error)
}

type orderReader interface {
	ListRecent(ctx context.Context, limit int) ([]orders.Order, error)
	GetStats(ctx context.Context) (*orders.Stats, error)
}

type transcriptReader interface {
	ListRecent(ctx context.Context, phone string, limit int) ([]transcript.Message, error)
}

// AdminHandler hosts the read-only endpoints behind admin auth:
// catalog with all lifecycle states, recent orders, sales aggregates
// and chat transcripts.
type AdminHandler struct {
	events      eventLister
	orders      orderReader
	transcripts transcriptReader
	logger      *logging.Logger
}

// AdminConfig wires the admin handler dependencies.
type AdminConfig struct {
	Events      eventLister
	Orders      orderReader
	Transcripts transcriptReader
	Logger      *logging.Logger
}

// NewAdminHandler builds the admin surface. Transcripts may be nil.
func NewAdminHandler(cfg AdminConfig) *AdminHandler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &AdminHandler{
		events:      cfg.Events,
		orders:      cfg.Orders,
		transcripts: cfg.Transcripts,
		logger:      cfg.Logger,
	}
}

// ListEvents handles GET /admin/events. Unlike the shopper surface it
// returns every lifecycle state, drafts and completed runs included.
func (h *AdminHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListUpcoming(r.Context())
	if err != nil {
		h.logger.Error("admin: failed to list events", "error", err)
		http.Error(w, "failed to list events", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []catalog.Event{}
	}
	h.writeJSON(w, map[string]any{"events": events})
}

// ListOrders handles GET /admin/orders?limit=n.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"), 50)
	recent, err := h.orders.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("admin: failed to list orders", "error", err)
		http.Error(w, "failed to list orders", http.StatusInternalServerError)
		return
	}
	if recent == nil {
		recent = []orders.Order{}
	}
	h.writeJSON(w, map[string]any{"orders": recent})
}

// GetStats handles GET /admin/stats.
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orders.GetStats(r.Context())
	if err != nil {
		h.logger.Error("admin: failed to compute stats", "error", err)
		http.Error(w, "failed to compute stats", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, stats)
}

// ListTranscript handles GET /admin/transcripts?phone=...&limit=n.
func (h *AdminHandler) ListTranscript(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	if phone == "" {
		http.Error(w, "phone parameter required", http.StatusBadRequest)
		return
	}
	if h.transcripts == nil {
		h.writeJSON(w, map[string]any{"messages": []transcript.Message{}})
		return
	}

	limit := parseLimit(r.URL.Query().Get("limit"), 100)
	msgs, err := h.transcripts.ListRecent(r.Context(), phone, limit)
	if err != nil {
		h.logger.Error("admin: failed to load transcript", "error", err, "phone", phone)
		http.Error(w, "failed to load transcript", http.StatusInternalServerError)
		return
	}
	if msgs == nil {
		msgs = []transcript.Message{}
	}
	h.writeJSON(w, map[string]any{"messages": msgs})
}

func (h *AdminHandler) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("admin: failed to write response", "error", err)
	}
}

func parseLimit(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 500 {
		return fallback
	}
	return n
}
