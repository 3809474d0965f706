package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newTestWhatsAppSender(t *testing.T, handler http.HandlerFunc) *WhatsAppSender {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sender := NewWhatsAppSender("test-token", "12345", nil, nil)
	sender.baseURL = server.URL
	return sender
}

func TestWhatsAppSendText(t *testing.T) {
	var got whatsAppMessage
	sender := newTestWhatsAppSender(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/12345/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Errorf("unexpected auth header: %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := sender.SendText(context.Background(), "+27821234567", "Your tickets are ready"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if got.MessagingProduct != "whatsapp" || got.Type != "text" {
		t.Fatalf("unexpected envelope: %+v", got)
	}
	if got.To != "27821234567" {
		t.Fatalf("plus prefix not stripped: %q", got.To)
	}
	if got.Text.Body != "Your tickets are ready" {
		t.Fatalf("unexpected body: %q", got.Text.Body)
	}
}

func TestWhatsAppSendRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	sender := newTestWhatsAppSender(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := sender.SendText(context.Background(), "27821234567", "hello"); err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestWhatsAppSendDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	sender := newTestWhatsAppSender(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	if err := sender.SendText(context.Background(), "27821234567", "hello"); err == nil {
		t.Fatal("expected error for 401")
	}
	if calls.Load() != 1 {
		t.Fatalf("client errors must not retry, got %d attempts", calls.Load())
	}
}

func TestWhatsAppSendValidation(t *testing.T) {
	sender := NewWhatsAppSender("", "", nil, nil)
	if err := sender.SendText(context.Background(), "27821234567", "hi"); err == nil {
		t.Fatal("expected error without credentials")
	}

	sender = NewWhatsAppSender("token", "12345", nil, nil)
	if err := sender.SendText(context.Background(), "", "hi"); err == nil {
		t.Fatal("expected error without recipient")
	}
	if err := sender.SendText(context.Background(), "27821234567", "  "); err == nil {
		t.Fatal("expected error without body")
	}
}
