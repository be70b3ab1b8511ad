package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/settler/internal/commission"
	"github.com/MrJamesThe3rd/settler/internal/settlement"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectTransactionColumns = `
	t.id, t.merchant_id, t.original_amount, t.status, t.settlement, t.date_time, t.provider_info
`

// scanTransaction expects the columns of selectTransactionColumns, optionally
// preceded by extra destinations.
func scanTransaction(s scanner, extra ...any) (settlement.Transaction, error) {
	var (
		tx        settlement.Transaction
		statusStr string
		info      []byte
	)

	dest := append(append([]any{}, extra...),
		&tx.ID, &tx.MerchantID, &tx.OriginalAmount, &statusStr, &tx.Settlement, &tx.DateTime, &info,
	)
	if err := s.Scan(dest...); err != nil {
		return settlement.Transaction{}, err
	}

	tx.Status = settlement.TransactionStatus(statusStr)
	tx.ProviderInfo = decodeProviderInfo(info)

	return tx, nil
}

// decodeProviderInfo validates provider metadata at the read boundary. A
// document that is not a JSON object decodes as empty metadata.
func decodeProviderInfo(raw []byte) settlement.ProviderInfo {
	var info settlement.ProviderInfo
	if len(raw) == 0 {
		return info
	}

	if err := json.Unmarshal(raw, &info); err != nil {
		return settlement.ProviderInfo{}
	}

	return info
}

type batchTx struct {
	tx *sql.Tx
}

// Begin opens a serializable transaction for one settlement run.
func (s *Store) Begin(ctx context.Context) (settlement.BatchTx, error) {
	dbTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("beginning settlement tx: %w", err)
	}

	return &batchTx{tx: dbTx}, nil
}

func (b *batchTx) Commit() error   { return b.tx.Commit() }
func (b *batchTx) Rollback() error { return b.tx.Rollback() }

func (b *batchTx) ListDueTasks(ctx context.Context, now time.Time, afterID int64, limit int) ([]settlement.DueTask, error) {
	query := `
		SELECT st.id, st.transaction_id, st.status, st.scheduled_at, st.executed_at, ` + selectTransactionColumns + `
		FROM scheduled_tasks st
		JOIN transactions t ON t.id = st.transaction_id
		WHERE st.status = 'pending' AND st.scheduled_at <= $1 AND st.id > $2
		ORDER BY st.id ASC
		LIMIT $3`

	rows, err := b.tx.QueryContext(ctx, query, now, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing due tasks: %w", err)
	}
	defer rows.Close()

	var due []settlement.DueTask

	for rows.Next() {
		var (
			task      settlement.Task
			statusStr string
		)

		tx, err := scanTransaction(rows, &task.ID, &task.TransactionID, &statusStr, &task.ScheduledAt, &task.ExecutedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning due task: %w", err)
		}

		task.Status = settlement.TaskStatus(statusStr)
		due = append(due, settlement.DueTask{Task: task, Transaction: tx})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating due tasks: %w", err)
	}

	return due, nil
}

func (b *batchTx) GetTerms(ctx context.Context, merchantID string) (*commission.Terms, error) {
	query := `
		SELECT merchant_id, commission_rate, commission_gst, commission_withholding_tax,
			commission_mode, override_provider, provider_override_rate
		FROM merchant_financial_terms
		WHERE merchant_id = $1`

	var (
		terms commission.Terms
		mode  string
	)

	err := b.tx.QueryRowContext(ctx, query, merchantID).Scan(
		&terms.MerchantID, &terms.Rate, &terms.GST, &terms.WithholdingTax,
		&mode, &terms.OverrideProvider, &terms.OverrideRate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, settlement.ErrTermsNotFound
		}

		return nil, fmt.Errorf("getting terms: %w", err)
	}

	terms.Mode = commission.Mode(mode)

	return &terms, nil
}

func (b *batchTx) FindDeductionCandidates(ctx context.Context, merchantID string, cutoff time.Time) ([]settlement.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.merchant_id = $1
			AND t.status IN ('completed', 'failed')
			AND t.date_time < $2
			AND t.provider_info ? 'deduction'
			AND jsonb_typeof(t.provider_info -> 'deduction') <> 'null'
			AND (t.provider_info ->> 'deductionDone') IS DISTINCT FROM 'true'
		ORDER BY t.date_time ASC`

	rows, err := b.tx.QueryContext(ctx, query, merchantID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("finding deduction candidates: %w", err)
	}
	defer rows.Close()

	var txs []settlement.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating deduction candidates: %w", err)
	}

	return txs, nil
}

// UpsertDailySettlement adds delta to the merchant's row for the day, creating it on first write.
func (b *batchTx) UpsertDailySettlement(ctx context.Context, delta settlement.Report) error {
	query := `
		INSERT INTO settlement_reports (
			merchant_id, settlement_date, transaction_count, transaction_amount, commission,
			gst, withholding_tax, merchant_amount, deduction_applied, created_at, updated_at
		)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		ON CONFLICT (merchant_id, settlement_date) DO UPDATE SET
			transaction_count  = settlement_reports.transaction_count + EXCLUDED.transaction_count,
			transaction_amount = settlement_reports.transaction_amount + EXCLUDED.transaction_amount,
			commission         = settlement_reports.commission + EXCLUDED.commission,
			gst                = settlement_reports.gst + EXCLUDED.gst,
			withholding_tax    = settlement_reports.withholding_tax + EXCLUDED.withholding_tax,
			merchant_amount    = settlement_reports.merchant_amount + EXCLUDED.merchant_amount,
			deduction_applied  = settlement_reports.deduction_applied + EXCLUDED.deduction_applied,
			updated_at         = NOW()
	`

	_, err := b.tx.ExecContext(ctx, query,
		delta.MerchantID,
		delta.SettlementDate.Format(time.DateOnly),
		delta.TransactionCount,
		delta.TransactionAmount,
		delta.Commission,
		delta.GST,
		delta.WithholdingTax,
		delta.MerchantAmount,
		delta.DeductionApplied,
	)
	if err != nil {
		return fmt.Errorf("upserting settlement report: %w", err)
	}

	return nil
}

func (b *batchTx) MarkDeductionsDone(ctx context.Context, txIDs []uuid.UUID) error {
	query := `
		UPDATE transactions
		SET provider_info = jsonb_set(provider_info, '{deductionDone}', 'true'::jsonb, true)
		WHERE id = ANY($1::uuid[])
			AND (provider_info ->> 'deductionDone') IS DISTINCT FROM 'true'
	`

	return b.execGuarded(ctx, "marking deductions done", query, len(txIDs), uuidStrings(txIDs))
}

func (b *batchTx) CompleteTasks(ctx context.Context, taskIDs []int64, executedAt time.Time) error {
	query := `
		UPDATE scheduled_tasks
		SET status = 'completed', executed_at = $2
		WHERE id = ANY($1::bigint[]) AND status = 'pending'
	`

	return b.execGuarded(ctx, "completing tasks", query, len(taskIDs), taskIDs, executedAt)
}

func (b *batchTx) MarkSettled(ctx context.Context, txIDs []uuid.UUID) error {
	query := `
		UPDATE transactions
		SET settlement = TRUE
		WHERE id = ANY($1::uuid[]) AND settlement = FALSE
	`

	return b.execGuarded(ctx, "marking transactions settled", query, len(txIDs), uuidStrings(txIDs))
}

// execGuarded runs a status-guarded update and fails with ErrConcurrentClaim
// when fewer than want rows changed.
func (b *batchTx) execGuarded(ctx context.Context, action, query string, want int, args ...any) error {
	if want == 0 {
		return nil
	}

	res, err := b.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: reading rows affected: %w", action, err)
	}

	if int(affected) != want {
		return fmt.Errorf("%s: %d of %d rows updated: %w", action, affected, want, settlement.ErrConcurrentClaim)
	}

	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}

	return out
}

// GetReport returns the ledger row for a merchant and business day.
func (s *Store) GetReport(ctx context.Context, merchantID string, day time.Time) (*settlement.Report, error) {
	query := `
		SELECT merchant_id, settlement_date, transaction_count, transaction_amount, commission,
			gst, withholding_tax, merchant_amount, deduction_applied
		FROM settlement_reports
		WHERE merchant_id = $1 AND settlement_date = $2::date`

	var r settlement.Report

	err := s.db.QueryRowContext(ctx, query, merchantID, day.Format(time.DateOnly)).Scan(
		&r.MerchantID, &r.SettlementDate, &r.TransactionCount, &r.TransactionAmount, &r.Commission,
		&r.GST, &r.WithholdingTax, &r.MerchantAmount, &r.DeductionApplied,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("getting settlement report: %w", err)
	}

	return &r, nil
}
