package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/sayhiafrica/ticketing-platform/internal/observability/metrics"
	"github.com/sayhiafrica/ticketing-platform/pkg/logging"
)

const graphAPIBase = "https://graph.facebook.com/v19.0"

// WhatsAppSender posts messages through the WhatsApp Cloud API.
type WhatsAppSender struct {
	token      string
	phoneID    string
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.MessagingMetrics
	logger     *logging.Logger
}

// NewWhatsAppSender builds a Cloud API sender for the given business
// phone number id.
func NewWhatsAppSender(token, phoneID string, m *metrics.MessagingMetrics, logger *logging.Logger) *WhatsAppSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &WhatsAppSender{
		token:   token,
		phoneID: phoneID,
		baseURL: graphAPIBase,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		metrics: m,
		logger:  logger,
	}
}

var _ Notifier = (*WhatsAppSender)(nil)

type whatsAppText struct {
	Body string `json:"body"`
}

type whatsAppMessage struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             whatsAppText `json:"text"`
}

// SendText dispatches one text message, retrying transient failures.
func (s *WhatsAppSender) SendText(ctx context.Context, to, body string) error {
	if s.token == "" || s.phoneID == "" {
		return errors.New("messaging: whatsapp credentials missing")
	}
	if to == "" {
		return errors.New("messaging: to required")
	}
	if strings.TrimSpace(body) == "" {
		return errors.New("messaging: body required")
	}

	payload, err := json.Marshal(whatsAppMessage{
		MessagingProduct: "whatsapp",
		To:               normalizePhone(to),
		Type:             "text",
		Text:             whatsAppText{Body: body},
	})
	if err != nil {
		return fmt.Errorf("messaging: failed to marshal whatsapp payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", s.baseURL, s.phoneID)

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			lastErr = err
			break
		}
		req.Header.Set("Authorization", "Bearer "+s.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				s.metrics.ObserveOutbound("sent")
				s.logger.Info("whatsapp message sent", "to", to)
				return nil
			}
			lastErr = fmt.Errorf("whatsapp send failed: status %d, body: %s", resp.StatusCode, string(respBody))
			// Client errors will not heal on retry.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				break
			}
		}

		if attempt < 3 {
			sleep := time.Duration(200+rand.Intn(300)) * time.Millisecond
			time.Sleep(sleep)
		}
	}

	s.metrics.ObserveOutbound("failed")
	s.logger.Error("failed to send whatsapp message", "error", lastErr, "to", to)
	return lastErr
}

// normalizePhone strips the leading plus that the Cloud API rejects.
func normalizePhone(phone string) string {
	return strings.TrimPrefix(strings.TrimSpace(phone), "+")
}
