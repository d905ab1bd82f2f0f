//go:build integration

package store_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlosandre007/escala/internal/calendar"
	"github.com/carlosandre007/escala/internal/charge"
	"github.com/carlosandre007/escala/internal/charge/store"
	"github.com/carlosandre007/escala/internal/database"
	"github.com/carlosandre007/escala/internal/recurrence"
	"github.com/carlosandre007/escala/internal/scheduler"
)

// Run with: TEST_DATABASE_URL=postgres://... go test -tags=integration ./internal/charge/store

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	require.NoError(t, database.Migrate(url))

	db, err := database.New(context.Background(), url, database.Pool{})
	require.NoError(t, err)

	_, err = db.Exec(`TRUNCATE charges`)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	return db
}

func TestIntegration_StoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.New(openTestDB(t))

	c := &charge.Charge{
		ClientName: "Bia",
		Reference:  "Aluguel",
		Amount:     decimal.RequireFromString("1200.50"),
		DueDate:    calendar.New(2024, time.January, 31),
		DueTime:    new("09:30"),
		Status:     charge.StatusPending,
		Recurrence: recurrence.Rule{Recurring: true, Frequency: recurrence.Monthly, AnchorDay: new(31)},
	}
	require.NoError(t, s.Insert(ctx, c))

	got, err := s.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.DueDate, got.DueDate)
	assert.True(t, c.Amount.Equal(got.Amount))
	require.NotNil(t, got.DueTime)
	assert.Equal(t, "09:30", *got.DueTime)
	require.NotNil(t, got.Recurrence.AnchorDay)
	assert.Equal(t, 31, *got.Recurrence.AnchorDay)

	now := time.Now()
	require.NoError(t, s.Update(ctx, c.ID, charge.Patch{Status: charge.StatusSettled, SettledAt: &now, From: charge.StatusPending}))

	err = s.Update(ctx, c.ID, charge.Patch{Status: charge.StatusSettled, SettledAt: &now, From: charge.StatusPending})
	assert.ErrorIs(t, err, charge.ErrConflict)

	list, err := s.ListByDueDateRange(ctx, calendar.New(2024, time.January, 28), calendar.New(2024, time.February, 3))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, charge.StatusSettled, list[0].Status)
}

func TestIntegration_SettleInTransaction(t *testing.T) {
	ctx := context.Background()
	s := store.New(openTestDB(t))
	svc := scheduler.NewService(s)

	c, err := svc.Create(ctx, charge.CreateParams{
		ClientName: "Ana",
		Reference:  "Aula",
		Amount:     decimal.RequireFromString("100.00"),
		DueDate:    calendar.New(2024, time.March, 10),
		Recurrence: recurrence.Rule{Recurring: true, Frequency: recurrence.Weekly},
	})
	require.NoError(t, err)

	res, err := svc.Settle(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, calendar.New(2024, time.March, 17), res.Successor.DueDate)

	_, err = svc.Unsettle(ctx, c.ID)
	require.NoError(t, err)

	again, err := svc.Settle(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, again.SuccessorReused)

	// The unique index refuses a second successor for the same predecessor.
	dup := c.Successor()
	assert.Error(t, s.Insert(ctx, dup))

	require.NoError(t, svc.Delete(ctx, c.ID))

	succ, err := s.Get(ctx, res.Successor.ID)
	require.NoError(t, err)
	assert.Nil(t, succ.PredecessorID)
}
