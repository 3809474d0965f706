package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DefaultListLimit bounds how many events a single conversational reply
// may enumerate.
const DefaultListLimit = 5

type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository reads catalog events from Postgres.
type Repository struct {
	db    pgxQuerier
	limit int
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("catalog: pgx pool required")
	}
	return &Repository{db: pool, limit: DefaultListLimit}
}

// NewRepositoryWithDB allows injecting a mocked pgx connection for tests.
func NewRepositoryWithDB(db pgxQuerier) *Repository {
	return &Repository{db: db, limit: DefaultListLimit}
}

// WithListLimit overrides the per-call result cap.
func (r *Repository) WithListLimit(limit int) *Repository {
	if limit > 0 {
		r.limit = limit
	}
	return r
}

// ListSellable returns published events, optionally filtered by a
// case-insensitive title substring, soonest first, capped at the list
// limit. Ticket types come back eagerly loaded.
func (r *Repository) ListSellable(ctx context.Context, search string) ([]Event, error) {
	query := `
		SELECT id, title, date, venue, status
		FROM events
		WHERE status = 'PUBLISHED'
	`
	args := []any{}
	if s := strings.TrimSpace(search); s != "" {
		query += ` AND title ILIKE $1`
		args = append(args, "%"+s+"%")
	}
	query += fmt.Sprintf(` ORDER BY date ASC LIMIT %d`, r.limit)

	return r.listEvents(ctx, query, args...)
}

// ListUpcoming is the broader demo/empty-catalog fallback: any status,
// soonest date first. Callers are expected to label non-published items.
func (r *Repository) ListUpcoming(ctx context.Context) ([]Event, error) {
	query := fmt.Sprintf(`
		SELECT id, title, date, venue, status
		FROM events
		ORDER BY date ASC LIMIT %d
	`, r.limit)
	return r.listEvents(ctx, query)
}

func (r *Repository) listEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.Title, &ev.Date, &ev.Venue, &ev.Status); err != nil {
			return nil, fmt.Errorf("catalog: scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate events: %w", err)
	}

	for i := range events {
		types, err := r.ticketTypes(ctx, events[i].ID)
		if err != nil {
			return nil, err
		}
		events[i].TicketTypes = types
	}
	return events, nil
}

func (r *Repository) ticketTypes(ctx context.Context, eventID string) ([]TicketType, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, price, capacity
		FROM ticket_types
		WHERE event_id = $1
		ORDER BY price ASC
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list ticket types: %w", err)
	}
	defer rows.Close()

	var types []TicketType
	for rows.Next() {
		var tt TicketType
		var price decimal.Decimal
		if err := rows.Scan(&tt.ID, &tt.Name, &price, &tt.Capacity); err != nil {
			return nil, fmt.Errorf("catalog: scan ticket type: %w", err)
		}
		tt.Price = price
		types = append(types, tt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate ticket types: %w", err)
	}
	return types, nil
}
