package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestListSellableFiltersAndLoadsTypes(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	date := time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, title, date, venue, status\s+FROM events\s+WHERE status = 'PUBLISHED'`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "date", "venue", "status"}).
			AddRow("ev-1", "Summer Fest", date, "Cape Town", StatusPublished))
	mock.ExpectQuery(`FROM ticket_types`).
		WithArgs("ev-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "price", "capacity"}).
			AddRow("tt-1", "General", decimal.NewFromInt(100), 500).
			AddRow("tt-2", "VIP", decimal.NewFromInt(300), 50))

	repo := NewRepositoryWithDB(mock)
	events, err := repo.ListSellable(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "Summer Fest", events[0].Title)
	require.Len(t, events[0].TicketTypes, 2)
	require.True(t, events[0].TicketTypes[1].Price.Equal(decimal.NewFromInt(300)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListSellableAppliesSearchTerm(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`title ILIKE \$1`).
		WithArgs("%fest%").
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "date", "venue", "status"}))

	repo := NewRepositoryWithDB(mock)
	events, err := repo.ListSellable(context.Background(), "fest")
	require.NoError(t, err)
	require.Empty(t, events)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListUpcomingIgnoresStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	date := time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM events\s+ORDER BY date ASC`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "date", "venue", "status"}).
			AddRow("ev-9", "Rehearsal", date, "Soweto", StatusDraft))
	mock.ExpectQuery(`FROM ticket_types`).
		WithArgs("ev-9").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "price", "capacity"}))

	repo := NewRepositoryWithDB(mock)
	events, err := repo.ListUpcoming(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, StatusDraft, events[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
