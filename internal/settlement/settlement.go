package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaskStatus represents the lifecycle state of a scheduled settlement task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

// TransactionStatus represents the payment state reported by the provider.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

// Task is a deferred settlement obligation for one transaction.
type Task struct {
	ID            int64
	TransactionID uuid.UUID
	Status        TaskStatus
	ScheduledAt   time.Time
	ExecutedAt    *time.Time
}

// ProviderInfo is the provider metadata stored alongside a transaction.
type ProviderInfo struct {
	Name          string
	Deduction     Deduction
	DeductionDone bool
}

// Transaction is a collected payment awaiting settlement.
type Transaction struct {
	ID             uuid.UUID
	MerchantID     string
	OriginalAmount decimal.Decimal
	Status         TransactionStatus
	Settlement     bool
	DateTime       time.Time
	ProviderInfo   ProviderInfo
}

// DueTask is a pending task joined to its transaction.
type DueTask struct {
	Task        Task
	Transaction Transaction
}

// Report is one merchant's settlement ledger row for a business day.
// Amounts written through UpsertDailySettlement are deltas added to the stored row.
type Report struct {
	MerchantID        string
	SettlementDate    time.Time // civil date, time part ignored
	TransactionCount  int64
	TransactionAmount decimal.Decimal
	Commission        decimal.Decimal
	GST               decimal.Decimal
	WithholdingTax    decimal.Decimal
	MerchantAmount    decimal.Decimal
	DeductionApplied  decimal.Decimal
}

// Add returns the report with other's amounts added.
func (r Report) Add(other Report) Report {
	r.TransactionCount += other.TransactionCount
	r.TransactionAmount = r.TransactionAmount.Add(other.TransactionAmount)
	r.Commission = r.Commission.Add(other.Commission)
	r.GST = r.GST.Add(other.GST)
	r.WithholdingTax = r.WithholdingTax.Add(other.WithholdingTax)
	r.MerchantAmount = r.MerchantAmount.Add(other.MerchantAmount)
	r.DeductionApplied = r.DeductionApplied.Add(other.DeductionApplied)

	return r
}

// Conserved reports whether the merchant amount equals the transaction amount
// net of commission, taxes and deductions.
func (r Report) Conserved() bool {
	want := r.TransactionAmount.
		Sub(r.Commission).
		Sub(r.GST).
		Sub(r.WithholdingTax).
		Sub(r.DeductionApplied)

	return want.Equal(r.MerchantAmount)
}

// BusinessDay returns the start of the business day containing now in loc.
func BusinessDay(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
