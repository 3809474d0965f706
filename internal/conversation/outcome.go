package conversation

import (
	"github.com/sayhiafrica/ticketing-platform/internal/orders"
	"github.com/sayhiafrica/ticketing-platform/internal/payments"
)

// OutcomeKind labels the structured result of one turn.
type OutcomeKind string

const (
	OutcomeEventList      OutcomeKind = "event-list"
	OutcomeNoEvents       OutcomeKind = "no-events"
	OutcomeTicketTypeMenu OutcomeKind = "ticket-type-menu"
	OutcomeAskQuantity    OutcomeKind = "ask-quantity"
	OutcomeAskDetails     OutcomeKind = "ask-details"
	OutcomePaymentSummary OutcomeKind = "payment-summary"
	OutcomeTicketStatus   OutcomeKind = "ticket-status"
	OutcomeSystemError    OutcomeKind = "system-error"
)

// Outcome is the machine-readable result of a turn, rendered to a
// channel string by the Renderer.
type Outcome struct {
	Kind OutcomeKind

	// Reprompt marks a recoverable invalid-input turn: same step, same
	// question, a gentler lead-in.
	Reprompt bool

	Events     []EventSnapshot
	Event      *EventSnapshot
	TicketType *TicketTypeSnapshot
	Quantity   int

	// Details step: which fields are still unresolved.
	MissingName  bool
	MissingEmail bool
	BuyerName    string

	Link *payments.PaymentLink

	// Status check.
	TicketToken string
	Ticket      *orders.TicketStatus
}
