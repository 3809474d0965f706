package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message is one archived line of a chat, either direction.
type Message struct {
	ID        uuid.UUID
	Phone     string
	Direction string
	Body      string
	CreatedAt time.Time
}

const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Store archives chat turns to PostgreSQL for long-term history. A nil
// store is valid and records nothing.
type Store struct {
	db *sql.DB
}

// NewStore creates a transcript store. Returns nil when db is nil so
// callers can wire it unconditionally.
func NewStore(db *sql.DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db}
}

// Record appends one message to the archive.
func (s *Store) Record(ctx context.Context, phone, direction, body string) error {
	if s == nil || s.db == nil {
		return nil
	}
	if phone == "" || body == "" {
		return nil
	}
	if direction != DirectionInbound && direction != DirectionOutbound {
		return fmt.Errorf("transcript: unknown direction %q", direction)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, phone, direction, body, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), phone, direction, body, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("transcript: failed to record message: %w", err)
	}
	return nil
}

// ListRecent returns the newest messages for a phone, newest first.
func (s *Store) ListRecent(ctx context.Context, phone string, limit int) ([]Message, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, phone, direction, body, created_at
		 FROM messages
		 WHERE phone = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		phone, limit)
	if err != nil {
		return nil, fmt.Errorf("transcript: failed to list messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Phone, &m.Direction, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("transcript: failed to scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("transcript: failed to read messages: %w", err)
	}
	return out, nil
}
