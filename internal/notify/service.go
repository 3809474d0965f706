package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sayhiafrica/ticketing-platform/pkg/logging"
)

// TicketMailer composes and sends ticket confirmation emails.
type TicketMailer struct {
	sender EmailSender
	logger *logging.Logger
}

// NewTicketMailer builds a mailer on top of any EmailSender. sender may
// be nil; confirmations are then skipped.
func NewTicketMailer(sender EmailSender, logger *logging.Logger) *TicketMailer {
	if logger == nil {
		logger = logging.Default()
	}
	return &TicketMailer{sender: sender, logger: logger}
}

// SendTicketConfirmation emails the buyer their ticket codes after a
// confirmed payment.
func (m *TicketMailer) SendTicketConfirmation(ctx context.Context, to, name string, codes []string, total decimal.Decimal) error {
	if m == nil || m.sender == nil {
		return nil
	}
	if to == "" {
		return nil
	}
	if name == "" {
		name = "Guest"
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\n\n", name)
	fmt.Fprintf(&body, "Your payment of R%s is confirmed. 🎉\n\n", total.StringFixed(2))
	if len(codes) > 0 {
		body.WriteString("Your ticket codes:\n")
		for _, code := range codes {
			fmt.Fprintf(&body, "  %s\n", code)
		}
		body.WriteString("\nShow any of these codes (or the QR in your WhatsApp chat) at the door.\n")
	} else {
		body.WriteString("Your tickets are being prepared and will follow shortly.\n")
	}
	body.WriteString("\nSee you there!\nSay HI Tickets")

	msg := EmailMessage{
		To:      to,
		ToName:  name,
		Subject: "Your tickets are confirmed",
		Body:    body.String(),
	}
	if err := m.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: ticket confirmation failed: %w", err)
	}
	return nil
}
