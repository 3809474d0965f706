package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sayhiafrica/ticketing-platform/internal/payments"
)

type recordedTurn struct {
	phone, direction, body string
}

type stubTranscript struct {
	turns []recordedTurn
	err   error
}

func (s *stubTranscript) Record(_ context.Context, phone, direction, body string) error {
	s.turns = append(s.turns, recordedTurn{phone, direction, body})
	return s.err
}

func newTestService(store SessionStore, transcript transcriptRecorder) *Service {
	engine := newTestEngine(&stubCatalog{events: testEvents()}, &stubLinkBuilder{
		link: &payments.PaymentLink{Total: decimal.NewFromInt(100), URL: "https://pay"},
	}, nil)
	renderer := NewRenderer(nil, 0, nil, nil)
	return NewService(engine, renderer, store, transcript, nil, nil)
}

func TestProcessTurnPersistsSession(t *testing.T) {
	store := NewMemorySessionStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	resp := svc.ProcessTurn(ctx, TurnRequest{Message: "Hi", Phone: "+27821234567"})
	if !strings.Contains(resp.Response, "1. Summer Fest") {
		t.Fatalf("expected event list reply, got %q", resp.Response)
	}
	if resp.State.Step != StepList {
		t.Fatalf("expected list step in response state, got %q", resp.State.Step)
	}

	stored, _ := store.Load(ctx, "+27821234567")
	if stored.Step != StepList {
		t.Fatalf("session not persisted: %+v", stored)
	}

	resp = svc.ProcessTurn(ctx, TurnRequest{Message: "1", Phone: "+27821234567"})
	if !strings.Contains(resp.Response, "Ticket options for Summer Fest") {
		t.Fatalf("stored session not used on next turn: %q", resp.Response)
	}
}

func TestProcessTurnExternalStateWins(t *testing.T) {
	store := NewMemorySessionStore()
	_ = store.Save(context.Background(), "+27821234567", Session{Step: StepAwaitingQuantity})

	svc := newTestService(store, nil)
	external := Session{
		Step:      StepList,
		EventList: snapshotEvents(testEvents()),
	}

	resp := svc.ProcessTurn(context.Background(), TurnRequest{
		Message: "2",
		Phone:   "+27821234567",
		State:   &external,
	})
	if !strings.Contains(resp.Response, "Ticket options for Jazz Night") {
		t.Fatalf("external state was not honoured: %q", resp.Response)
	}
}

func TestProcessTurnAnonymousPhone(t *testing.T) {
	store := NewMemorySessionStore()
	svc := newTestService(store, nil)

	svc.ProcessTurn(context.Background(), TurnRequest{Message: "Hi"})
	stored, _ := store.Load(context.Background(), anonymousPhone)
	if stored.Step != StepList {
		t.Fatalf("anonymous session not persisted: %+v", stored)
	}
}

func TestProcessTurnRecordsTranscript(t *testing.T) {
	transcript := &stubTranscript{}
	svc := newTestService(NewMemorySessionStore(), transcript)

	svc.ProcessTurn(context.Background(), TurnRequest{Message: "Hi", Phone: "p"})
	if len(transcript.turns) != 2 {
		t.Fatalf("expected inbound and outbound records, got %d", len(transcript.turns))
	}
	if transcript.turns[0].direction != "inbound" || transcript.turns[0].body != "Hi" {
		t.Fatalf("unexpected inbound record: %+v", transcript.turns[0])
	}
	if transcript.turns[1].direction != "outbound" {
		t.Fatalf("unexpected outbound record: %+v", transcript.turns[1])
	}
}

func TestProcessTurnTranscriptFailureIsNonFatal(t *testing.T) {
	transcript := &stubTranscript{err: errors.New("archive down")}
	svc := newTestService(NewMemorySessionStore(), transcript)

	resp := svc.ProcessTurn(context.Background(), TurnRequest{Message: "Hi", Phone: "p"})
	if resp.Response == "" {
		t.Fatalf("reply lost to transcript failure")
	}
}

func TestProcessTurnStatelessWithoutStore(t *testing.T) {
	svc := newTestService(nil, nil)

	resp := svc.ProcessTurn(context.Background(), TurnRequest{Message: "Hi", Phone: "p"})
	if resp.State.Step != StepList {
		t.Fatalf("expected state in response even without a store: %+v", resp.State)
	}

	resp = svc.ProcessTurn(context.Background(), TurnRequest{
		Message: "1",
		Phone:   "p",
		State:   &resp.State,
	})
	if !strings.Contains(resp.Response, "Ticket options for Summer Fest") {
		t.Fatalf("client-carried state not applied: %q", resp.Response)
	}
}
