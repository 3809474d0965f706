package conversation

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/sayhiafrica/ticketing-platform/internal/catalog"
	"github.com/sayhiafrica/ticketing-platform/internal/observability/metrics"
	"github.com/sayhiafrica/ticketing-platform/internal/orders"
	"github.com/sayhiafrica/ticketing-platform/internal/payments"
	"github.com/sayhiafrica/ticketing-platform/pkg/logging"
)

// CatalogLookup is the read boundary for sellable events.
type CatalogLookup interface {
	ListSellableEvents(ctx context.Context, search string) ([]catalog.Event, error)
}

// PaymentLinkBuilder turns a fully-resolved selection into a checkout link.
type PaymentLinkBuilder interface {
	BuildPaymentLink(ctx context.Context, req payments.PaymentLinkRequest) (*payments.PaymentLink, error)
}

// TicketStatusChecker resolves a scannable code or ticket id.
type TicketStatusChecker interface {
	GetTicketStatus(ctx context.Context, token string) (*orders.TicketStatus, error)
}

// Engine owns the step sequence of the purchase dialogue. It is a pure
// function of (session, text) plus its injected boundaries: every turn
// returns the next outcome and the updated session, and bad input only
// ever re-prompts, never aborts.
type Engine struct {
	catalog CatalogLookup
	links   PaymentLinkBuilder
	tickets TicketStatusChecker
	metrics *metrics.ConversationMetrics
	logger  *logging.Logger
}

// NewEngine wires the state machine. tickets may be nil when no durable
// store exists; status checks then answer with a lookup-unavailable
// message.
func NewEngine(lookup CatalogLookup, links PaymentLinkBuilder, tickets TicketStatusChecker, m *metrics.ConversationMetrics, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		catalog: lookup,
		links:   links,
		tickets: tickets,
		metrics: m,
		logger:  logger,
	}
}

var firstIntRe = regexp.MustCompile(`-?\d+`)

// Advance processes one inbound message against the supplied session
// and returns the structured outcome plus the session to persist. It
// never returns an error: upstream failures become a system-error
// outcome so the caller always has something to say.
func (e *Engine) Advance(ctx context.Context, sess Session, phone, text string) (Outcome, Session) {
	cls := Classify(text, sess)
	out, next := e.advance(ctx, sess, phone, text, cls)
	e.metrics.ObserveTurn(string(cls.Intent), string(out.Kind))
	return out, next
}

func (e *Engine) advance(ctx context.Context, sess Session, phone, text string, cls Classification) (Outcome, Session) {
	switch cls.Intent {
	case IntentCheckStatus:
		// Sanctioned interrupt: the session is left untouched.
		return e.checkStatus(ctx, cls.Token), sess
	case IntentBrowse:
		return e.startBrowse(ctx, sess)
	}

	switch sess.Step {
	case StepList:
		return e.selectEvent(sess, text)
	case StepAwaitingTicketType:
		return e.selectTicketType(sess, text)
	case StepAwaitingQuantity:
		return e.captureQuantity(sess, text)
	case StepAwaitingDetails:
		return e.captureDetails(ctx, sess, phone, text)
	case StepReadyForPayment:
		return e.handOff(ctx, sess, phone)
	default:
		// No active step should have classified as browse; recover the
		// same way.
		return e.startBrowse(ctx, sess)
	}
}

func (e *Engine) checkStatus(ctx context.Context, token string) Outcome {
	if e.tickets == nil {
		return Outcome{Kind: OutcomeTicketStatus, TicketToken: token}
	}
	status, err := e.tickets.GetTicketStatus(ctx, token)
	if err != nil {
		if errors.Is(err, orders.ErrTicketNotFound) {
			return Outcome{Kind: OutcomeTicketStatus, TicketToken: token}
		}
		e.logger.Error("conversation: ticket lookup failed", "error", err, "token", token)
		return Outcome{Kind: OutcomeSystemError}
	}
	return Outcome{Kind: OutcomeTicketStatus, TicketToken: token, Ticket: status}
}

// startBrowse resets the dialogue and emits the numbered event list,
// snapshotting the rendered ordering into the session so later
// positional replies stay stable.
func (e *Engine) startBrowse(ctx context.Context, sess Session) (Outcome, Session) {
	events, err := e.catalog.ListSellableEvents(ctx, "")
	if err != nil {
		e.logger.Error("conversation: catalog unavailable", "error", err)
		return Outcome{Kind: OutcomeSystemError}, sess
	}

	sess.Reset()
	if len(events) == 0 {
		return Outcome{Kind: OutcomeNoEvents}, sess
	}

	sess.Step = StepList
	sess.EventList = snapshotEvents(events)
	return Outcome{Kind: OutcomeEventList, Events: sess.EventList}, sess
}

func (e *Engine) selectEvent(sess Session, text string) (Outcome, Session) {
	idx, ok := parsePositiveInt(text)
	if !ok || idx > len(sess.EventList) {
		return Outcome{Kind: OutcomeEventList, Events: sess.EventList, Reprompt: true}, sess
	}

	selected := sess.EventList[idx-1]
	sess.Event = &selected
	sess.Step = StepAwaitingTicketType
	return Outcome{Kind: OutcomeTicketTypeMenu, Event: sess.Event}, sess
}

// selectTicketType resolves a positional index or a case-insensitive
// name against the snapshot captured at listing time; the live catalog
// is never re-queried here.
func (e *Engine) selectTicketType(sess Session, text string) (Outcome, Session) {
	if sess.Event == nil || len(sess.Event.TicketTypes) == 0 {
		// Snapshot lost (e.g. truncated external state): restart cleanly.
		return Outcome{Kind: OutcomeEventList, Events: sess.EventList, Reprompt: true}, sess
	}

	types := sess.Event.TicketTypes
	var chosen *TicketTypeSnapshot
	if idx, ok := parsePositiveInt(text); ok {
		if idx >= 1 && idx <= len(types) {
			chosen = &types[idx-1]
		}
	} else {
		lower := strings.ToLower(text)
		for i := range types {
			if strings.Contains(lower, strings.ToLower(types[i].Name)) {
				chosen = &types[i]
				break
			}
		}
	}

	if chosen == nil {
		return Outcome{Kind: OutcomeTicketTypeMenu, Event: sess.Event, Reprompt: true}, sess
	}

	sess.TicketType = chosen
	sess.Step = StepAwaitingQuantity
	return Outcome{Kind: OutcomeAskQuantity, Event: sess.Event, TicketType: chosen}, sess
}

func (e *Engine) captureQuantity(sess Session, text string) (Outcome, Session) {
	qty, ok := parsePositiveInt(text)
	if !ok {
		return Outcome{Kind: OutcomeAskQuantity, Event: sess.Event, TicketType: sess.TicketType, Reprompt: true}, sess
	}

	sess.Quantity = qty
	sess.Step = StepAwaitingDetails
	return Outcome{
		Kind:         OutcomeAskDetails,
		MissingName:  true,
		MissingEmail: true,
	}, sess
}

// captureDetails accepts partial input: whatever of {name, email} is
// present gets recorded, and only the absent field is asked for again.
func (e *Engine) captureDetails(ctx context.Context, sess Session, phone, text string) (Outcome, Session) {
	if email := emailRe.FindString(text); email != "" && sess.BuyerEmail == "" {
		sess.BuyerEmail = email
	}
	if name := extractName(text); name != "" && sess.BuyerName == "" {
		sess.BuyerName = name
	}

	if sess.BuyerName == "" || sess.BuyerEmail == "" {
		return Outcome{
			Kind:         OutcomeAskDetails,
			MissingName:  sess.BuyerName == "",
			MissingEmail: sess.BuyerEmail == "",
			BuyerName:    sess.BuyerName,
			Reprompt:     true,
		}, sess
	}

	sess.Step = StepReadyForPayment
	return e.handOff(ctx, sess, phone)
}

// handOff builds the payment link and resets the session. A builder
// failure keeps the session (with captured details) so the buyer can
// retry without re-entering everything.
func (e *Engine) handOff(ctx context.Context, sess Session, phone string) (Outcome, Session) {
	if sess.Event == nil || sess.TicketType == nil || sess.Quantity < 1 {
		return e.startBrowse(ctx, sess)
	}

	req := payments.PaymentLinkRequest{
		Event: catalog.Event{
			ID:    sess.Event.ID,
			Title: sess.Event.Title,
		},
		TicketType: catalog.TicketType{
			ID:    sess.TicketType.ID,
			Name:  sess.TicketType.Name,
			Price: sess.TicketType.Price,
		},
		Quantity:   sess.Quantity,
		BuyerName:  sess.BuyerName,
		BuyerEmail: sess.BuyerEmail,
		BuyerPhone: phone,
		Channel:    orders.ChannelWhatsApp,
	}

	link, err := e.links.BuildPaymentLink(ctx, req)
	if err != nil {
		e.logger.Error("conversation: payment link failed", "error", err)
		return Outcome{Kind: OutcomeSystemError}, sess
	}

	out := Outcome{
		Kind:       OutcomePaymentSummary,
		Event:      sess.Event,
		TicketType: sess.TicketType,
		Quantity:   sess.Quantity,
		BuyerName:  sess.BuyerName,
		Link:       link,
	}
	sess.Reset()
	return out, sess
}

// parsePositiveInt pulls the first integer out of the text and requires
// it to be strictly positive. "0" and non-numeric inputs are invalid,
// never coerced.
func parsePositiveInt(text string) (int, bool) {
	match := firstIntRe.FindString(text)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

var detailNoiseWords = map[string]struct{}{
	"my": {}, "name": {}, "is": {}, "email": {}, "and": {}, "the": {},
	"i": {}, "am": {}, "it's": {}, "its": {},
}

// extractName takes the non-email remainder of a details message and
// keeps the plausible name words: alphabetic, not filler.
func extractName(text string) string {
	text = emailRe.ReplaceAllString(text, " ")
	text = strings.NewReplacer(",", " ", ";", " ", ":", " ").Replace(text)

	var words []string
	for _, w := range strings.Fields(text) {
		lower := strings.ToLower(w)
		if _, noise := detailNoiseWords[lower]; noise {
			continue
		}
		if hasDigit(w) || !hasLetter(w) {
			continue
		}
		words = append(words, w)
	}
	return strings.Join(words, " ")
}
