package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventStatus is the lifecycle state of a catalog event.
type EventStatus string

const (
	StatusDraft     EventStatus = "DRAFT"
	StatusPublished EventStatus = "PUBLISHED"
	StatusCompleted EventStatus = "COMPLETED"
)

// TicketType is a priced admission class belonging to an event.
type TicketType struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Capacity int             `json:"capacity"`
}

// Event is a sellable catalog event with its nested ticket types.
// Ticket types are always loaded eagerly; every consumer of an event
// needs them.
type Event struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Date        time.Time    `json:"date"`
	Venue       string       `json:"venue"`
	Status      EventStatus  `json:"status"`
	TicketTypes []TicketType `json:"ticket_types"`
}

// DateLabel renders the event date the way the chat flow displays it.
func (e Event) DateLabel() string {
	if e.Date.IsZero() {
		return "TBC"
	}
	return e.Date.Format("2006-01-02")
}
