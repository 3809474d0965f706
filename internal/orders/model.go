package orders

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Order lifecycle states. Orders are never deleted; PAID is reached
// exclusively through reconciliation.
const (
	OrderPending  = "PENDING"
	OrderPaid     = "PAID"
	OrderRefunded = "REFUNDED"
)

// Sales channels.
const (
	ChannelWhatsApp = "WHATSAPP"
	ChannelWeb      = "WEB"
	ChannelDoor     = "DOOR"
	ChannelAdmin    = "ADMIN"
)

// Ticket states. A ticket's scannable code is globally unique and
// immutable once issued.
const (
	TicketValid   = "VALID"
	TicketUsed    = "USED"
	TicketInvalid = "INVALID"
)

// ErrOrderNotFound is returned when an order reference resolves to nothing.
var ErrOrderNotFound = errors.New("orders: order not found")

// ErrTicketNotFound is returned when a status-check token matches no ticket.
var ErrTicketNotFound = errors.New("orders: ticket not found")

// Order is a purchase record created in PENDING state by the link
// builder and transitioned to PAID by payment reconciliation.
type Order struct {
	ID            string          `json:"id"`
	EventID       string          `json:"event_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	CustomerPhone string          `json:"customer_phone"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `json:"status"`
	Channel       string          `json:"channel"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Ticket is one admission unit, materialized only when its order
// transitions to PAID.
type Ticket struct {
	ID           string    `json:"id"`
	OrderID      string    `json:"order_id"`
	TicketTypeID string    `json:"ticket_type_id"`
	Code         string    `json:"code"`
	HolderName   string    `json:"holder_name"`
	Status       string    `json:"status"`
	IssuedAt     time.Time `json:"issued_at"`
}

// TicketStatus is the read model for the status-check boundary.
type TicketStatus struct {
	Status     string `json:"status"`
	HolderName string `json:"holder_name"`
}

// CreateOrderParams carries everything needed to persist a pending order.
type CreateOrderParams struct {
	EventID       string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	TotalAmount   decimal.Decimal
	Channel       string
}
