package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/mercado-storefront/internal/database"
	"github.com/iliyamo/mercado-storefront/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Options{Driver: database.SQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, database.SQLite))
	return db
}

func TestUserRepoInsertAndFind(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepo(db, database.SQLite)
	ctx := context.Background()

	u, err := users.Insert(ctx, "Ana", "  Ana@Example.com ", "hash")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, "Ana", u.Name)

	byEmail, err := users.FindByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", byID.PasswordHash)

	_, err = users.Insert(ctx, "Other", "ana@example.com", "hash2")
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = users.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSessionRepoLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u, err := NewUserRepo(db, database.SQLite).Insert(ctx, "Ana", "ana@example.com", "hash")
	require.NoError(t, err)

	sessions := NewSessionRepo(db, database.SQLite)
	now := time.Now().UTC()
	live := now.Add(time.Hour)
	dead := now.Add(-time.Hour)

	require.NoError(t, sessions.Create(ctx, model.Session{ID: "live", UserID: u.ID, CreatedAt: now, ExpiresAt: &live}))
	require.NoError(t, sessions.Create(ctx, model.Session{ID: "dead", UserID: u.ID, CreatedAt: now, ExpiresAt: &dead}))
	require.NoError(t, sessions.Create(ctx, model.Session{ID: "forever", UserID: u.ID, CreatedAt: now}))

	s, err := sessions.FindByID(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, u.ID, s.UserID)
	require.NotNil(t, s.ExpiresAt)
	assert.WithinDuration(t, live, *s.ExpiresAt, time.Second)

	forever, err := sessions.FindByID(ctx, "forever")
	require.NoError(t, err)
	assert.Nil(t, forever.ExpiresAt)

	n, err := sessions.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = sessions.FindByID(ctx, "dead")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, sessions.Delete(ctx, "live"))
	require.NoError(t, sessions.Delete(ctx, "live"))
	_, err = sessions.FindByID(ctx, "live")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderRepoAppendAndReport(t *testing.T) {
	db := openTestDB(t)
	orders := NewOrderRepo(db, database.SQLite)
	ctx := context.Background()

	three := 3
	day1 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 2, 9, 30, 0, 0, time.UTC)

	require.NoError(t, orders.InsertOrder(ctx, model.Order{
		ID: "o-1", TotalCents: 1000, PaymentMethod: "pix", TotalWithInterest: 1000, CreatedAt: day1,
	}))
	require.NoError(t, orders.InsertOrder(ctx, model.Order{
		ID: "o-2", TotalCents: 10000, PaymentMethod: "credit", Installments: &three,
		InterestCents: 200, TotalWithInterest: 10200, CreatedAt: day1.Add(time.Hour),
	}))
	require.NoError(t, orders.InsertOrder(ctx, model.Order{
		ID: "o-3", TotalCents: 500, PaymentMethod: "pix", TotalWithInterest: 500, CreatedAt: day2,
	}))
	require.NoError(t, orders.InsertOrder(ctx, model.Order{
		ID: "o-4", TotalCents: 700, PaymentMethod: "pix", TotalWithInterest: 700, CreatedAt: day1,
	}))

	require.NoError(t, orders.InsertOrderLine(ctx, model.OrderLine{OrderID: "o-2", ProductID: 1, Qty: 2, UnitPriceCents: 799}))
	require.NoError(t, orders.InsertOrderLine(ctx, model.OrderLine{OrderID: "o-2", ProductID: 5, Qty: 1, UnitPriceCents: 1899}))

	list, err := orders.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, "o-3", list[0].ID)

	var credit model.Order
	for _, o := range list {
		if o.ID == "o-2" {
			credit = o
		}
	}
	require.NotNil(t, credit.Installments)
	assert.Equal(t, 3, *credit.Installments)
	assert.Equal(t, int64(10200), credit.TotalWithInterest)

	lines, err := orders.ListOrderLines(ctx, "o-2")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, uint32(1), lines[0].ProductID)
	assert.Equal(t, uint32(5), lines[1].ProductID)

	none, err := orders.ListOrderLines(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)

	totals, err := orders.DailyTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.DailyTotal{
		{Day: "2025-03-02", PaymentMethod: "pix", TotalCents: 500},
		{Day: "2025-03-01", PaymentMethod: "credit", TotalCents: 10000},
		{Day: "2025-03-01", PaymentMethod: "pix", TotalCents: 1700},
	}, totals)
}
