package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sayhiafrica/ticketing-platform/internal/observability/metrics"
	"github.com/sayhiafrica/ticketing-platform/internal/orders"
	"github.com/sayhiafrica/ticketing-platform/pkg/logging"
)

type reconciliationStore interface {
	MarkPaid(ctx context.Context, orderID string) (bool, error)
	CreateTickets(ctx context.Context, tickets []orders.Ticket) error
	GetOrder(ctx context.Context, orderID string) (*orders.Order, error)
}

type textNotifier interface {
	SendText(ctx context.Context, to, body string) error
}

type emailNotifier interface {
	SendTicketConfirmation(ctx context.Context, to, name string, codes []string, total decimal.Decimal) error
}

// NotifyHandler processes PayFast ITN callbacks: it reconciles the
// referenced order, materializes tickets and fires the buyer
// notifications. Replays of the same callback are a no-op success
// because the PENDING -> PAID transition is guarded in the store.
type NotifyHandler struct {
	store    reconciliationStore
	notifier textNotifier
	email    emailNotifier
	metrics  *metrics.PaymentMetrics
	logger   *logging.Logger
}

// NewNotifyHandler wires the webhook. A nil store makes the handler
// acknowledge callbacks without reconciling (store-less deployments).
func NewNotifyHandler(store reconciliationStore, notifier textNotifier, email emailNotifier, m *metrics.PaymentMetrics, logger *logging.Logger) *NotifyHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &NotifyHandler{
		store:    store,
		notifier: notifier,
		email:    email,
		metrics:  m,
		logger:   logger,
	}
}

// Handle is the HTTP entry point for POST /webhooks/payfast.
func (h *NotifyHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := parseNotifyBody(r)
	if err != nil {
		h.metrics.ObserveCallback("bad_payload")
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	orderID := payload[fieldOrderID]
	if orderID == "" {
		orderID = payload["m_payment_id"]
	}
	if orderID == "" {
		h.metrics.ObserveCallback("missing_reference")
		http.Error(w, "missing order reference", http.StatusBadRequest)
		return
	}

	if h.store == nil {
		// Nothing to reconcile without a store. Acknowledge so the
		// gateway stops retrying.
		h.logger.Warn("payments: notify received with no store configured", "order_id", orderID)
		h.metrics.ObserveCallback("inert")
		w.WriteHeader(http.StatusOK)
		return
	}

	transitioned, err := h.store.MarkPaid(r.Context(), orderID)
	if err != nil {
		h.logger.Error("payments: mark paid failed", "error", err, "order_id", orderID)
		h.metrics.ObserveCallback("store_error")
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if !transitioned {
		// Already PAID: a gateway retry or duplicate delivery.
		h.logger.Info("payments: duplicate notify ignored", "order_id", orderID)
		h.metrics.ObserveCallback("duplicate")
		w.WriteHeader(http.StatusOK)
		return
	}

	quantity := 1
	if parsed, err := strconv.Atoi(payload[fieldQuantity]); err == nil && parsed > 0 {
		quantity = parsed
	}
	holder := strings.TrimSpace(payload["name_first"] + " " + payload["name_last"])
	if holder == "" {
		holder = "Guest"
	}

	var codes []string
	ticketTypeID := payload[fieldTicketTypeID]
	if ticketTypeID == "" {
		h.logger.Warn("payments: notify without ticket type reference, no tickets materialized", "order_id", orderID)
	} else {
		tickets := make([]orders.Ticket, 0, quantity)
		now := time.Now().UTC()
		for i := 0; i < quantity; i++ {
			code := newTicketCode()
			codes = append(codes, code)
			tickets = append(tickets, orders.Ticket{
				ID:           uuid.New().String(),
				OrderID:      orderID,
				TicketTypeID: ticketTypeID,
				Code:         code,
				HolderName:   holder,
				Status:       orders.TicketValid,
				IssuedAt:     now,
			})
		}
		if err := h.store.CreateTickets(r.Context(), tickets); err != nil {
			h.logger.Error("payments: ticket materialization failed", "error", err, "order_id", orderID)
			h.metrics.ObserveCallback("ticket_error")
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
	}

	h.notifyBuyer(r.Context(), orderID, holder, codes)

	h.metrics.ObserveCallback("paid")
	w.WriteHeader(http.StatusOK)
}

// notifyBuyer delivers ticket codes over WhatsApp and email. Both are
// best-effort; reconciliation has already committed.
func (h *NotifyHandler) notifyBuyer(ctx context.Context, orderID, holder string, codes []string) {
	order, err := h.store.GetOrder(ctx, orderID)
	if err != nil {
		h.logger.Warn("payments: order fetch for notification failed", "error", err, "order_id", orderID)
		return
	}

	if h.notifier != nil && order.CustomerPhone != "" {
		body := confirmationMessage(holder, codes)
		if err := h.notifier.SendText(ctx, order.CustomerPhone, body); err != nil {
			h.logger.Warn("payments: whatsapp confirmation failed", "error", err, "order_id", orderID)
		}
	}

	if h.email != nil && order.CustomerEmail != "" {
		if err := h.email.SendTicketConfirmation(ctx, order.CustomerEmail, holder, codes, order.TotalAmount); err != nil {
			h.logger.Warn("payments: email confirmation failed", "error", err, "order_id", orderID)
		}
	}
}

func confirmationMessage(holder string, codes []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Payment confirmed, %s! 🎟️\n", holder)
	if len(codes) == 0 {
		b.WriteString("Your tickets are being prepared and will follow shortly.")
		return b.String()
	}
	b.WriteString("Your ticket codes:\n")
	for _, code := range codes {
		fmt.Fprintf(&b, "- %s\n", code)
	}
	b.WriteString("Show a code at the gate to get in. See you there!")
	return b.String()
}

// newTicketCode generates a globally unique scannable code. A UUID is
// used instead of a timestamp+index scheme so concurrent orders cannot
// collide.
func newTicketCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
}

// parseNotifyBody accepts both encodings PayFast may send:
// form-urlencoded (the documented ITN format) and JSON.
func parseNotifyBody(r *http.Request) (map[string]string, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("payments: read notify body: %w", err)
	}

	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "{") {
		var decoded map[string]any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("payments: decode notify json: %w", err)
		}
		out := make(map[string]string, len(decoded))
		for k, v := range decoded {
			switch val := v.(type) {
			case string:
				out[k] = val
			case float64:
				out[k] = strconv.FormatFloat(val, 'f', -1, 64)
			case bool:
				out[k] = strconv.FormatBool(val)
			}
		}
		return out, nil
	}

	values, err := url.ParseQuery(trimmed)
	if err != nil {
		return nil, fmt.Errorf("payments: decode notify form: %w", err)
	}
	out := make(map[string]string, len(values))
	for k := range values {
		out[k] = values.Get(k)
	}
	return out, nil
}
