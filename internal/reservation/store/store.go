package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/settler/internal/reservation"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const reservationColumns = `id, merchant_id, provider, period, window_start, amount, status, created_at`

func scanReservation(s scanner) (reservation.Reservation, error) {
	var (
		r         reservation.Reservation
		statusStr string
	)

	err := s.Scan(
		&r.ID, &r.Bucket.MerchantID, &r.Bucket.Provider, &r.Bucket.Period, &r.Bucket.WindowStart,
		&r.Amount, &statusStr, &r.CreatedAt,
	)
	if err != nil {
		return reservation.Reservation{}, err
	}

	r.Status = reservation.Status(statusStr)

	return r, nil
}

func scanReservations(rows *sql.Rows) ([]reservation.Reservation, error) {
	defer rows.Close()

	var out []reservation.Reservation

	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning reservation: %w", err)
		}

		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reservations: %w", err)
	}

	return out, nil
}

// FindExpiredPending returns up to limit PENDING reservations created before cutoff, oldest first.
func (s *Store) FindExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]reservation.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM limit_reservations
		WHERE status = 'PENDING' AND created_at < $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("finding expired reservations: %w", err)
	}

	return scanReservations(rows)
}

type sweepTx struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (reservation.SweepTx, error) {
	dbTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("beginning sweep tx: %w", err)
	}

	return &sweepTx{tx: dbTx}, nil
}

func (t *sweepTx) Commit() error   { return t.tx.Commit() }
func (t *sweepTx) Rollback() error { return t.tx.Rollback() }

func (t *sweepTx) ExpireReservations(ctx context.Context, ids []uuid.UUID) ([]reservation.Reservation, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		UPDATE limit_reservations
		SET status = 'EXPIRED'
		WHERE id = ANY($1::uuid[]) AND status = 'PENDING'
		RETURNING ` + reservationColumns

	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}

	rows, err := t.tx.QueryContext(ctx, query, strIDs)
	if err != nil {
		return nil, fmt.Errorf("expiring reservations: %w", err)
	}

	return scanReservations(rows)
}

// ReleaseUsage decrements a bucket's counters, never below zero.
func (t *sweepTx) ReleaseUsage(ctx context.Context, r reservation.Release) error {
	query := `
		UPDATE merchant_limit_usage
		SET amount_used = GREATEST(amount_used - $5, 0),
			txn_count   = GREATEST(txn_count - $6, 0)
		WHERE merchant_id = $1 AND provider = $2 AND period = $3 AND window_start = $4`

	res, err := t.tx.ExecContext(ctx, query,
		r.Bucket.MerchantID, r.Bucket.Provider, r.Bucket.Period, r.Bucket.WindowStart,
		r.Amount, r.Count,
	)
	if err != nil {
		return fmt.Errorf("releasing usage: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("releasing usage: reading rows affected: %w", err)
	}

	if affected == 0 {
		return reservation.ErrUsageNotFound
	}

	return nil
}

// GetUsage returns the counters of a bucket.
func (s *Store) GetUsage(ctx context.Context, b reservation.Bucket) (*reservation.Usage, error) {
	query := `
		SELECT amount_used, txn_count
		FROM merchant_limit_usage
		WHERE merchant_id = $1 AND provider = $2 AND period = $3 AND window_start = $4`

	u := reservation.Usage{Bucket: b}

	err := s.db.QueryRowContext(ctx, query, b.MerchantID, b.Provider, b.Period, b.WindowStart).
		Scan(&u.AmountUsed, &u.TxnCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrUsageNotFound
		}

		return nil, fmt.Errorf("getting usage: %w", err)
	}

	return &u, nil
}

// GetReservation returns a reservation by id.
func (s *Store) GetReservation(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM limit_reservations WHERE id = $1`

	r, err := scanReservation(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrReservationNotFound
		}

		return nil, fmt.Errorf("getting reservation: %w", err)
	}

	return &r, nil
}
