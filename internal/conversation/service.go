package conversation

import (
	"context"
	"strings"

	"github.com/sayhiafrica/ticketing-platform/internal/observability/metrics"
	"github.com/sayhiafrica/ticketing-platform/pkg/logging"
)

// transcriptRecorder archives both sides of a turn. Recording is best
// effort and never blocks a reply.
type transcriptRecorder interface {
	Record(ctx context.Context, phone, direction, body string) error
}

// TurnRequest is one inbound message. Phone defaults to the anonymous
// simulator identity when empty. When State is non-nil it replaces the
// stored session for this turn, which lets stateless clients carry
// their own state.
type TurnRequest struct {
	Message string   `json:"message"`
	Phone   string   `json:"phone,omitempty"`
	State   *Session `json:"state,omitempty"`
}

// TurnResponse is the reply plus the session state after the turn.
type TurnResponse struct {
	Response string  `json:"response"`
	State    Session `json:"state"`
}

const anonymousPhone = "anonymous"

// Service runs complete conversation turns: resolve session, advance
// the flow, render the reply, persist the new state.
type Service struct {
	engine     *Engine
	renderer   *Renderer
	sessions   SessionStore
	transcript transcriptRecorder
	metrics    *metrics.ConversationMetrics
	logger     *logging.Logger
}

// NewService wires a conversation service. sessions and transcript may
// be nil; the service then runs stateless or unarchived respectively.
func NewService(engine *Engine, renderer *Renderer, sessions SessionStore, transcript transcriptRecorder, m *metrics.ConversationMetrics, logger *logging.Logger) *Service {
	if engine == nil {
		panic("conversation: engine cannot be nil")
	}
	if renderer == nil {
		panic("conversation: renderer cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		engine:     engine,
		renderer:   renderer,
		sessions:   sessions,
		transcript: transcript,
		metrics:    m,
		logger:     logger,
	}
}

// ProcessTurn handles one inbound message and returns the reply. It
// does not fail: any internal error resolves to a safe reply so the
// shopper is never left without an answer.
func (s *Service) ProcessTurn(ctx context.Context, req TurnRequest) TurnResponse {
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		phone = anonymousPhone
	}

	sess := s.resolveSession(ctx, phone, req.State)
	s.record(ctx, phone, "inbound", req.Message)

	outcome, next := s.engine.Advance(ctx, sess, phone, req.Message)
	reply := s.renderer.Render(ctx, outcome)

	if s.sessions != nil {
		if err := s.sessions.Save(ctx, phone, next); err != nil {
			s.logger.Error("conversation: failed to save session", "phone", phone, "error", err)
		}
	}
	s.record(ctx, phone, "outbound", reply)

	return TurnResponse{Response: reply, State: next}
}

func (s *Service) resolveSession(ctx context.Context, phone string, override *Session) Session {
	if override != nil {
		return *override
	}
	if s.sessions == nil {
		return Session{}
	}
	sess, err := s.sessions.Load(ctx, phone)
	if err != nil {
		s.logger.Error("conversation: failed to load session, starting fresh", "phone", phone, "error", err)
		return Session{}
	}
	return sess
}

func (s *Service) record(ctx context.Context, phone, direction, body string) {
	if s.transcript == nil {
		return
	}
	if err := s.transcript.Record(ctx, phone, direction, body); err != nil {
		s.logger.Warn("conversation: failed to record transcript", "phone", phone, "direction", direction, "error", err)
	}
}
