package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sayhiafrica/ticketing-platform/internal/observability/metrics"
	"github.com/sayhiafrica/ticketing-platform/pkg/logging"
)

// Polisher is the black-box text-completion capability used to soften
// drafted replies for the chat channel. It is decoration only: the
// renderer always has a deterministic draft to fall back to.
type Polisher interface {
	Polish(ctx context.Context, draft string) (string, error)
}

// Renderer formats structured outcomes into the exact string returned
// to the channel.
type Renderer struct {
	polisher Polisher
	timeout  time.Duration
	metrics  *metrics.ConversationMetrics
	logger   *logging.Logger
}

// NewRenderer builds a renderer. polisher may be nil; replies are then
// always the deterministic draft.
func NewRenderer(polisher Polisher, timeout time.Duration, m *metrics.ConversationMetrics, logger *logging.Logger) *Renderer {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return &Renderer{polisher: polisher, timeout: timeout, metrics: m, logger: logger}
}

// Render produces the channel reply. Only the payment summary goes
// through the polisher; prompts must stay verbatim so numbered
// references keep matching what the session snapshot recorded.
func (r *Renderer) Render(ctx context.Context, out Outcome) string {
	draft := r.draft(out)
	if out.Kind != OutcomePaymentSummary || r.polisher == nil {
		return draft
	}
	return r.polish(ctx, draft)
}

func (r *Renderer) polish(ctx context.Context, draft string) string {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	polished, err := r.polisher.Polish(ctx, draft)
	if err != nil || strings.TrimSpace(polished) == "" {
		if err != nil {
			r.logger.Warn("conversation: polish failed, using draft", "error", err)
		}
		r.metrics.ObservePolish("fallback")
		return draft
	}
	r.metrics.ObservePolish("polished")
	return polished
}

func (r *Renderer) draft(out Outcome) string {
	switch out.Kind {
	case OutcomeEventList:
		return r.eventList(out)
	case OutcomeNoEvents:
		return "Sorry, no shows are live right now. Please check back soon! 😊"
	case OutcomeTicketTypeMenu:
		return r.ticketTypeMenu(out)
	case OutcomeAskQuantity:
		if out.Reprompt {
			return "Please reply with how many tickets you need (1 or more)."
		}
		return "How many tickets do you need?"
	case OutcomeAskDetails:
		return r.askDetails(out)
	case OutcomePaymentSummary:
		return r.paymentSummary(out)
	case OutcomeTicketStatus:
		return r.ticketStatus(out)
	default:
		return "System error, please try again."
	}
}

func (r *Renderer) eventList(out Outcome) string {
	var b strings.Builder
	if out.Reprompt {
		b.WriteString("Sorry, I didn't catch that. ")
	}
	b.WriteString("Here are the events you can book:\n")
	for i, ev := range out.Events {
		fmt.Fprintf(&b, "%d. %s (%s)", i+1, ev.Title, ev.Date)
		if ev.Status != "" && ev.Status != "PUBLISHED" {
			fmt.Fprintf(&b, " [%s]", ev.Status)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nWhich event number would you like to check out?")
	return b.String()
}

func (r *Renderer) ticketTypeMenu(out Outcome) string {
	var b strings.Builder
	if out.Reprompt {
		b.WriteString("Sorry, I didn't catch that. ")
	}
	fmt.Fprintf(&b, "Ticket options for %s:\n", out.Event.Title)
	for i, tt := range out.Event.TicketTypes {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, tt.Name, formatRand(tt.Price))
	}
	b.WriteString("\nWhich ticket type do you want?")
	return b.String()
}

func (r *Renderer) askDetails(out Outcome) string {
	switch {
	case out.MissingName && out.MissingEmail:
		if out.Reprompt {
			return "Almost there! Please share your full name and email address for the invoice."
		}
		return "Great! Please share your full name and email address for the invoice."
	case out.MissingEmail:
		name := out.BuyerName
		if name == "" {
			name = "thanks"
		}
		return fmt.Sprintf("Thanks %s! What email address should we send the invoice to?", name)
	default:
		return "And your full name for the invoice, please?"
	}
}

func (r *Renderer) paymentSummary(out Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Great choice! %s\n", out.Event.Title)
	fmt.Fprintf(&b, "%s x%d\n", out.TicketType.Name, out.Quantity)
	fmt.Fprintf(&b, "Total: R%s\n\n", out.Link.Total.StringFixed(2))
	fmt.Fprintf(&b, "Pay here: %s\n\n", out.Link.URL)
	if out.Link.Degraded {
		b.WriteString("Once payment is confirmed our team will send your tickets personally.")
	} else {
		b.WriteString("Once PayFast confirms, your QR tickets arrive in this chat. ✅")
	}
	return b.String()
}

func (r *Renderer) ticketStatus(out Outcome) string {
	if out.Ticket == nil {
		return "Invalid Ticket."
	}
	holder := out.Ticket.HolderName
	if holder == "" {
		holder = "Unknown"
	}
	return fmt.Sprintf("Status: %s | Holder: %s", out.Ticket.Status, holder)
}

// formatRand renders a Rand amount the way listings show it: whole
// amounts without cents ("R300"), fractional amounts with two.
func formatRand(amount decimal.Decimal) string {
	if amount.Equal(amount.Truncate(0)) {
		return "R" + amount.Truncate(0).String()
	}
	return "R" + amount.StringFixed(2)
}
