package conversation

import (
	"github.com/shopspring/decimal"

	"github.com/sayhiafrica/ticketing-platform/internal/catalog"
)

// Step is the buyer's position in the linear purchase dialogue.
type Step string

const (
	StepNone               Step = ""
	StepList               Step = "list"
	StepAwaitingTicketType Step = "awaiting-ticket-type"
	StepAwaitingQuantity   Step = "awaiting-quantity"
	StepAwaitingDetails    Step = "awaiting-details"
	StepReadyForPayment    Step = "ready-for-payment"
)

// TicketTypeSnapshot is a ticket type as captured into the session at
// listing time. Numbered references stay stable against catalog changes
// because later turns resolve against this copy, never the live catalog.
type TicketTypeSnapshot struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// EventSnapshot is an event as captured into the session at listing time.
type EventSnapshot struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Date        string               `json:"date"`
	Status      string               `json:"status"`
	TicketTypes []TicketTypeSnapshot `json:"ticket_types"`
}

// Session carries all conversational continuity. The core is stateless
// per invocation; callers persist this value and supply it back on the
// next turn. Serialization of concurrent turns per buyer key is the
// caller's responsibility.
type Session struct {
	Step       Step                `json:"step"`
	EventList  []EventSnapshot     `json:"event_list,omitempty"`
	Event      *EventSnapshot      `json:"event,omitempty"`
	TicketType *TicketTypeSnapshot `json:"ticket_type,omitempty"`
	Quantity   int                 `json:"quantity,omitempty"`
	BuyerName  string              `json:"buyer_name,omitempty"`
	BuyerEmail string              `json:"buyer_email,omitempty"`
}

// Reset clears the session back to first contact.
func (s *Session) Reset() {
	*s = Session{}
}

// Active reports whether the buyer is mid-flow.
func (s Session) Active() bool {
	return s.Step != StepNone
}

func snapshotEvent(ev catalog.Event) EventSnapshot {
	snap := EventSnapshot{
		ID:     ev.ID,
		Title:  ev.Title,
		Date:   ev.DateLabel(),
		Status: string(ev.Status),
	}
	for _, tt := range ev.TicketTypes {
		snap.TicketTypes = append(snap.TicketTypes, TicketTypeSnapshot{
			ID:    tt.ID,
			Name:  tt.Name,
			Price: tt.Price,
		})
	}
	return snap
}

func snapshotEvents(events []catalog.Event) []EventSnapshot {
	out := make([]EventSnapshot, 0, len(events))
	for _, ev := range events {
		out = append(out, snapshotEvent(ev))
	}
	return out
}
