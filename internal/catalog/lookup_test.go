package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/sayhiafrica/ticketing-platform/pkg/logging"
)

type stubLister struct {
	sellable []Event
	upcoming []Event
	err      error
}

func (s *stubLister) ListSellable(ctx context.Context, search string) ([]Event, error) {
	return s.sellable, s.err
}

func (s *stubLister) ListUpcoming(ctx context.Context) ([]Event, error) {
	return s.upcoming, s.err
}

func TestLookupPrefersPublished(t *testing.T) {
	lookup := NewLookup(&stubLister{
		sellable: []Event{{ID: "ev-1", Status: StatusPublished}},
		upcoming: []Event{{ID: "ev-2", Status: StatusDraft}},
	}, true, logging.Default())

	events, err := lookup.ListSellableEvents(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].ID != "ev-1" {
		t.Fatalf("expected published event, got %#v", events)
	}
}

func TestLookupFallsBackWhenEmpty(t *testing.T) {
	lookup := NewLookup(&stubLister{
		upcoming: []Event{{ID: "ev-2", Status: StatusDraft}},
	}, true, logging.Default())

	events, err := lookup.ListSellableEvents(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].Status != StatusDraft {
		t.Fatalf("expected draft fallback event, got %#v", events)
	}
}

func TestLookupFallbackDisabled(t *testing.T) {
	lookup := NewLookup(&stubLister{
		upcoming: []Event{{ID: "ev-2", Status: StatusDraft}},
	}, false, logging.Default())

	events, err := lookup.ListSellableEvents(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events with fallback disabled, got %#v", events)
	}
}

func TestLookupPropagatesStoreError(t *testing.T) {
	lookup := NewLookup(&stubLister{err: errors.New("store down")}, true, logging.Default())
	if _, err := lookup.ListSellableEvents(context.Background(), ""); err == nil {
		t.Fatal("expected error when store is unavailable")
	}
}
