package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository persists orders and tickets in Postgres.
type Repository struct {
	db pgxQuerier
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("orders: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mocked pgx connection for tests.
func NewRepositoryWithDB(db pgxQuerier) *Repository {
	return &Repository{db: db}
}

// CreateOrder inserts a new order in PENDING state and returns its id.
func (r *Repository) CreateOrder(ctx context.Context, params CreateOrderParams) (string, error) {
	id := uuid.New().String()
	channel := params.Channel
	if channel == "" {
		channel = ChannelWhatsApp
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO orders (id, event_id, customer_name, customer_email, customer_phone, total_amount, status, channel, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, id, params.EventID, params.CustomerName, params.CustomerEmail, params.CustomerPhone,
		params.TotalAmount, OrderPending, channel, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("orders: insert failed: %w", err)
	}
	return id, nil
}

// GetOrder fetches a single order by id.
func (r *Repository) GetOrder(ctx context.Context, id string) (*Order, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, event_id, customer_name, customer_email, customer_phone, total_amount, status, channel, created_at
		FROM orders
		WHERE id = $1
	`, id)

	var o Order
	if err := row.Scan(&o.ID, &o.EventID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.TotalAmount, &o.Status, &o.Channel, &o.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("orders: select failed: %w", err)
	}
	return &o, nil
}

// MarkPaid transitions an order PENDING -> PAID. The transition is
// guarded in SQL so replayed payment callbacks observe transitioned ==
// false instead of double-applying the effect.
func (r *Repository) MarkPaid(ctx context.Context, id string) (transitioned bool, err error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET status = $1 WHERE id = $2 AND status = $3
	`, OrderPaid, id, OrderPending)
	if err != nil {
		return false, fmt.Errorf("orders: mark paid: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CreateTickets bulk-inserts materialized tickets for a paid order.
func (r *Repository) CreateTickets(ctx context.Context, tickets []Ticket) error {
	for _, tk := range tickets {
		_, err := r.db.Exec(ctx, `
			INSERT INTO tickets (id, order_id, ticket_type_id, qr_code, holder_name, status, issued_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, tk.ID, tk.OrderID, tk.TicketTypeID, tk.Code, tk.HolderName, tk.Status, tk.IssuedAt)
		if err != nil {
			return fmt.Errorf("orders: insert ticket %s: %w", tk.Code, err)
		}
	}
	return nil
}

// GetTicketStatus resolves a scannable code or ticket id to its status
// and holder, the read model behind the chat status check.
func (r *Repository) GetTicketStatus(ctx context.Context, token string) (*TicketStatus, error) {
	row := r.db.QueryRow(ctx, `
		SELECT status, holder_name
		FROM tickets
		WHERE id::text = $1 OR qr_code = $1
	`, token)

	var ts TicketStatus
	if err := row.Scan(&ts.Status, &ts.HolderName); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("orders: ticket lookup: %w", err)
	}
	return &ts, nil
}

// ListRecent returns the most recent orders for the admin API.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, event_id, customer_name, customer_email, customer_phone, total_amount, status, channel, created_at
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("orders: list recent: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.EventID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
			&o.TotalAmount, &o.Status, &o.Channel, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("orders: scan order: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orders: iterate orders: %w", err)
	}
	return out, nil
}

// Stats aggregates paid revenue and order counts for the admin API.
type Stats struct {
	TotalOrders  int             `json:"total_orders"`
	PaidOrders   int             `json:"paid_orders"`
	PaidRevenue  decimal.Decimal `json:"paid_revenue"`
	TicketsValid int             `json:"tickets_valid"`
}

// GetStats computes order and ticket aggregates.
func (r *Repository) GetStats(ctx context.Context) (*Stats, error) {
	var s Stats
	row := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'PAID'),
		       COALESCE(SUM(total_amount) FILTER (WHERE status = 'PAID'), 0)
		FROM orders
	`)
	if err := row.Scan(&s.TotalOrders, &s.PaidOrders, &s.PaidRevenue); err != nil {
		return nil, fmt.Errorf("orders: stats: %w", err)
	}

	row = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE status = 'VALID'`)
	if err := row.Scan(&s.TicketsValid); err != nil {
		return nil, fmt.Errorf("orders: ticket stats: %w", err)
	}
	return &s, nil
}
