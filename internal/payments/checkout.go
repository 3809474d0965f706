package payments

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sayhiafrica/ticketing-platform/internal/catalog"
	"github.com/sayhiafrica/ticketing-platform/internal/observability/metrics"
	"github.com/sayhiafrica/ticketing-platform/internal/orders"
	"github.com/sayhiafrica/ticketing-platform/pkg/logging"
)

type orderCreator interface {
	CreateOrder(ctx context.Context, params orders.CreateOrderParams) (string, error)
}

// LinkBuilder resolves a fully-specified selection into a pending order
// plus a PayFast checkout link.
type LinkBuilder struct {
	payfast          PayFastConfig
	orders           orderCreator
	defaultUnitPrice decimal.Decimal
	metrics          *metrics.PaymentMetrics
	logger           *logging.Logger
}

// PaymentLinkRequest is a fully-resolved selection ready for checkout.
type PaymentLinkRequest struct {
	Event      catalog.Event
	TicketType catalog.TicketType
	Quantity   int
	BuyerName  string
	BuyerEmail string
	BuyerPhone string
	Channel    string
}

// PaymentLink is the checkout hand-off. Degraded means the order row
// could not be persisted: the link still charges the right amount, but
// reconciliation cannot materialize tickets for it automatically.
type PaymentLink struct {
	URL      string
	Total    decimal.Decimal
	OrderID  string
	Degraded bool
}

// NewLinkBuilder wires the builder. Pass a nil order store to run
// store-less: every link is then degraded by construction.
func NewLinkBuilder(payfast PayFastConfig, orderStore orderCreator, defaultUnitPrice decimal.Decimal, m *metrics.PaymentMetrics, logger *logging.Logger) *LinkBuilder {
	if logger == nil {
		logger = logging.Default()
	}
	if defaultUnitPrice.IsZero() {
		defaultUnitPrice = decimal.NewFromInt(100)
	}
	return &LinkBuilder{
		payfast:          payfast,
		orders:           orderStore,
		defaultUnitPrice: defaultUnitPrice,
		metrics:          m,
		logger:           logger,
	}
}

// BuildPaymentLink computes the total, persists a pending order and
// returns the redirect URL. Quantity defaults to 1 only here, for direct
// one-shot callers; the conversational flow always supplies an explicit
// quantity.
func (b *LinkBuilder) BuildPaymentLink(ctx context.Context, req PaymentLinkRequest) (*PaymentLink, error) {
	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	unit := req.TicketType.Price
	if unit.IsZero() {
		// Degraded pricing: placeholder unit price when the catalog row
		// carried no price data.
		b.logger.Warn("payments: ticket type has no price, using placeholder",
			"event", req.Event.Title, "ticket_type", req.TicketType.Name)
		unit = b.defaultUnitPrice
	}
	total := unit.Mul(decimal.NewFromInt(int64(quantity)))

	var orderID string
	degraded := false
	if b.orders != nil {
		id, err := b.orders.CreateOrder(ctx, orders.CreateOrderParams{
			EventID:       req.Event.ID,
			CustomerName:  req.BuyerName,
			CustomerEmail: req.BuyerEmail,
			CustomerPhone: req.BuyerPhone,
			TotalAmount:   total,
			Channel:       req.Channel,
		})
		if err != nil {
			b.logger.Error("payments: order persist failed, issuing degraded link",
				"error", err, "event", req.Event.Title)
			degraded = true
		} else {
			orderID = id
		}
	} else {
		degraded = true
	}

	link := b.payfast.BuildCheckoutLink(LinkParams{
		Amount:         total,
		ItemName:       fmt.Sprintf("%s x%d", req.Event.Title, quantity),
		OrderID:        orderID,
		EventTitle:     req.Event.Title,
		TicketTypeName: req.TicketType.Name,
		TicketTypeID:   req.TicketType.ID,
		Quantity:       quantity,
	})

	b.metrics.ObserveLink(degraded)
	return &PaymentLink{
		URL:      link,
		Total:    total,
		OrderID:  orderID,
		Degraded: degraded,
	}, nil
}
