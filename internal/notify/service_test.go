package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

type captureSender struct {
	msgs []EmailMessage
	err  error
}

func (s *captureSender) Send(_ context.Context, msg EmailMessage) error {
	s.msgs = append(s.msgs, msg)
	return s.err
}

func TestSendTicketConfirmation(t *testing.T) {
	sender := &captureSender{}
	mailer := NewTicketMailer(sender, nil)

	err := mailer.SendTicketConfirmation(context.Background(),
		"jane@example.com", "Jane Doe",
		[]string{"A1B2C3D4", "E5F6A7B8"}, decimal.NewFromInt(900))
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if len(sender.msgs) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.msgs))
	}

	msg := sender.msgs[0]
	if msg.To != "jane@example.com" || msg.ToName != "Jane Doe" {
		t.Fatalf("unexpected recipient: %+v", msg)
	}
	for _, want := range []string{"R900.00", "A1B2C3D4", "E5F6A7B8"} {
		if !strings.Contains(msg.Body, want) {
			t.Fatalf("body missing %q:\n%s", want, msg.Body)
		}
	}
}

func TestSendTicketConfirmationNoCodes(t *testing.T) {
	sender := &captureSender{}
	mailer := NewTicketMailer(sender, nil)

	if err := mailer.SendTicketConfirmation(context.Background(),
		"jane@example.com", "", nil, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	msg := sender.msgs[0]
	if !strings.Contains(msg.Body, "Hi Guest,") {
		t.Fatalf("missing default holder name:\n%s", msg.Body)
	}
	if !strings.Contains(msg.Body, "being prepared") {
		t.Fatalf("missing no-codes fallback:\n%s", msg.Body)
	}
}

func TestSendTicketConfirmationWithoutSender(t *testing.T) {
	mailer := NewTicketMailer(nil, nil)
	if err := mailer.SendTicketConfirmation(context.Background(),
		"jane@example.com", "Jane", []string{"X"}, decimal.Zero); err != nil {
		t.Fatalf("nil sender must be inert, got %v", err)
	}

	var nilMailer *TicketMailer
	if err := nilMailer.SendTicketConfirmation(context.Background(),
		"jane@example.com", "Jane", nil, decimal.Zero); err != nil {
		t.Fatalf("nil mailer must be inert, got %v", err)
	}
}

func TestSendTicketConfirmationWrapsErrors(t *testing.T) {
	mailer := NewTicketMailer(&captureSender{err: errors.New("quota exceeded")}, nil)

	err := mailer.SendTicketConfirmation(context.Background(),
		"jane@example.com", "Jane", []string{"X1Y2Z3"}, decimal.NewFromInt(100))
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected wrapped sender error, got %v", err)
	}
}
