package transcript

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func TestRecordInsertsMessage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO messages").
		WithArgs(sqlmock.AnyArg(), "+27821234567", DirectionInbound, "Hi", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewStore(db)
	if err := store.Record(context.Background(), "+27821234567", DirectionInbound, "Hi"); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecordRejectsUnknownDirection(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStore(db)
	if err := store.Record(context.Background(), "p", "sideways", "body"); err == nil {
		t.Fatal("expected error for unknown direction")
	}
}

func TestRecordSkipsEmptyInput(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStore(db)
	if err := store.Record(context.Background(), "", DirectionInbound, "body"); err != nil {
		t.Fatalf("empty phone should be a no-op, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected query: %v", err)
	}
}

func TestNilStoreIsInert(t *testing.T) {
	var store *Store
	if err := store.Record(context.Background(), "p", DirectionInbound, "body"); err != nil {
		t.Fatalf("nil store must be inert, got %v", err)
	}
	msgs, err := store.ListRecent(context.Background(), "p", 10)
	if err != nil || msgs != nil {
		t.Fatalf("nil store must list nothing, got %v %v", msgs, err)
	}
}

func TestListRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "phone", "direction", "body", "created_at"}).
		AddRow(uuid.New(), "+27821234567", DirectionOutbound, "Here are the events", now).
		AddRow(uuid.New(), "+27821234567", DirectionInbound, "Hi", now.Add(-time.Minute))

	mock.ExpectQuery("SELECT id, phone, direction, body, created_at").
		WithArgs("+27821234567", 10).
		WillReturnRows(rows)

	store := NewStore(db)
	msgs, err := store.ListRecent(context.Background(), "+27821234567", 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Direction != DirectionOutbound || msgs[1].Body != "Hi" {
		t.Fatalf("unexpected order or content: %+v", msgs)
	}
}
