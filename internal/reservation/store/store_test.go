package store_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/settler/internal/database"
	"github.com/MrJamesThe3rd/settler/internal/reservation"
	"github.com/MrJamesThe3rd/settler/internal/reservation/store"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	db, err := database.New(dsn, 4)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db))

	return db
}

func seedUsage(t *testing.T, db *sql.DB, b reservation.Bucket, amount string, count int) {
	t.Helper()

	_, err := db.ExecContext(context.Background(), `
		INSERT INTO merchant_limit_usage (merchant_id, provider, period, window_start, amount_used, txn_count)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		b.MerchantID, b.Provider, b.Period, b.WindowStart, amount, count)
	require.NoError(t, err)
}

func seedReservation(t *testing.T, db *sql.DB, b reservation.Bucket, amount string, createdAt time.Time) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.ExecContext(context.Background(), `
		INSERT INTO limit_reservations (id, merchant_id, provider, period, window_start, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, b.MerchantID, b.Provider, b.Period, b.WindowStart, amount, createdAt)
	require.NoError(t, err)

	return id
}

func newBucket() reservation.Bucket {
	return reservation.Bucket{
		MerchantID:  "it-" + uuid.NewString(),
		Provider:    "jazzcash",
		Period:      "DAILY",
		WindowStart: time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
	}
}

func TestStore_ExpireOldReservations_Postgres(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	st := store.New(db)

	b := newBucket()
	now := time.Now().UTC()

	seedUsage(t, db, b, "500", 1)
	id := seedReservation(t, db, b, "500", now.Add(-31*time.Minute))
	fresh := seedReservation(t, db, b, "100", now.Add(-time.Minute))

	sweeper := reservation.NewSweeper(st, reservation.Config{TTL: 30 * time.Minute}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := sweeper.ExpireOldReservations(ctx, now)
	require.NoError(t, err)

	got, err := st.GetReservation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusExpired, got.Status)

	stillPending, err := st.GetReservation(ctx, fresh)
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusPending, stillPending.Status)

	usage, err := st.GetUsage(ctx, b)
	require.NoError(t, err)
	assert.True(t, usage.AmountUsed.IsZero(), "got %s", usage.AmountUsed)
	assert.Zero(t, usage.TxnCount)
}

func TestStore_ExpireReservations_SkipsConfirmed(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	st := store.New(db)

	b := newBucket()
	id := seedReservation(t, db, b, "500", time.Now().Add(-time.Hour))

	_, err := db.ExecContext(ctx, `UPDATE limit_reservations SET status = 'CONFIRMED' WHERE id = $1`, id)
	require.NoError(t, err)

	stx, err := st.Begin(ctx)
	require.NoError(t, err)
	defer stx.Rollback()

	expired, err := stx.ExpireReservations(ctx, []uuid.UUID{id})
	require.NoError(t, err)
	assert.Empty(t, expired)
}

func TestStore_ReleaseUsage_Floor(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	st := store.New(db)

	b := newBucket()
	seedUsage(t, db, b, "200", 1)

	stx, err := st.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, stx.ReleaseUsage(ctx, reservation.Release{Bucket: b, Amount: decimal.RequireFromString("500"), Count: 3}))
	require.NoError(t, stx.Commit())

	usage, err := st.GetUsage(ctx, b)
	require.NoError(t, err)
	assert.True(t, usage.AmountUsed.IsZero())
	assert.Zero(t, usage.TxnCount)

	missing := newBucket()

	stx, err = st.Begin(ctx)
	require.NoError(t, err)
	defer stx.Rollback()

	err = stx.ReleaseUsage(ctx, reservation.Release{Bucket: missing, Amount: decimal.RequireFromString("1"), Count: 1})
	assert.ErrorIs(t, err, reservation.ErrUsageNotFound)
}
