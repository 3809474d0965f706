package messaging

import (
	"context"

	"github.com/sayhiafrica/ticketing-platform/pkg/logging"
)

// Notifier pushes a free-form text message to a buyer on the chat
// channel. Implementations must be safe for concurrent use.
type Notifier interface {
	SendText(ctx context.Context, to, body string) error
}

// NoopSender satisfies Notifier without any delivery. It backs local
// development and the simulator, where replies travel back over the
// request instead of the channel.
type NoopSender struct {
	logger *logging.Logger
}

// NewNoopSender builds a sender that only logs.
func NewNoopSender(logger *logging.Logger) *NoopSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &NoopSender{logger: logger}
}

var _ Notifier = (*NoopSender)(nil)

// SendText logs the message and succeeds.
func (s *NoopSender) SendText(_ context.Context, to, body string) error {
	s.logger.Info("messaging: noop send", "to", to, "bytes", len(body))
	return nil
}
