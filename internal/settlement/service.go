package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/settler/internal/commission"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=settlement
type Repository interface {
	// Begin opens the single serializable transaction a settlement run executes in.
	Begin(ctx context.Context) (BatchTx, error)
}

type BatchTx interface {
	ListDueTasks(ctx context.Context, now time.Time, afterID int64, limit int) ([]DueTask, error)
	GetTerms(ctx context.Context, merchantID string) (*commission.Terms, error)
	FindDeductionCandidates(ctx context.Context, merchantID string, cutoff time.Time) ([]Transaction, error)
	UpsertDailySettlement(ctx context.Context, delta Report) error
	MarkDeductionsDone(ctx context.Context, txIDs []uuid.UUID) error
	CompleteTasks(ctx context.Context, taskIDs []int64, executedAt time.Time) error
	MarkSettled(ctx context.Context, txIDs []uuid.UUID) error
	Commit() error
	Rollback() error
}

type Config struct {
	PageSize   int
	ChunkSize  int
	RunTimeout time.Duration
	Location   *time.Location
}

type Service struct {
	repo   Repository
	cfg    Config
	logger *slog.Logger
}

func NewService(repo Repository, cfg Config, logger *slog.Logger) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 500
	}

	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 500
	}

	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{repo: repo, cfg: cfg, logger: logger}
}

// RunResult summarises one SettleDueTasks run.
type RunResult struct {
	TasksClaimed     int
	StaleTasks       int
	MerchantsSettled int
	SkippedMerchants []string
	Reports          []Report
}

// partition is one merchant's share of the due work.
type partition struct {
	merchantID   string
	transactions []Transaction
	taskIDs      []int64
}

// SettleDueTasks settles every task due at now in one database transaction.
// Merchants without usable terms are skipped and their tasks stay pending.
// Any other failure rolls back the whole run.
func (s *Service) SettleDueTasks(ctx context.Context, now time.Time) (*RunResult, error) {
	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	btx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin settlement run: %w", err)
	}
	defer btx.Rollback()

	due, err := s.fetchDue(ctx, btx, now)
	if err != nil {
		return nil, err
	}

	result := &RunResult{}
	if len(due) == 0 {
		if err := btx.Commit(); err != nil {
			return nil, fmt.Errorf("commit settlement run: %w", err)
		}

		return result, nil
	}

	partitions, stale := partitionByMerchant(due)

	businessDay := BusinessDay(now, s.cfg.Location)

	var (
		claimedTasks []int64
		settledTxs   []uuid.UUID
	)

	claimedTasks = append(claimedTasks, stale...)
	result.StaleTasks = len(stale)

	if len(stale) > 0 {
		s.logger.Warn("completing tasks whose transaction is already settled", "task_ids", stale)
	}

	for _, p := range partitions {
		report, ok, err := s.settleMerchant(ctx, btx, p, businessDay)
		if err != nil {
			return nil, fmt.Errorf("settling merchant %s: %w", p.merchantID, err)
		}

		if !ok {
			result.SkippedMerchants = append(result.SkippedMerchants, p.merchantID)
			continue
		}

		result.MerchantsSettled++
		result.Reports = append(result.Reports, report)

		claimedTasks = append(claimedTasks, p.taskIDs...)
		for _, tx := range p.transactions {
			settledTxs = append(settledTxs, tx.ID)
		}
	}

	for chunk := range slices.Chunk(claimedTasks, s.cfg.ChunkSize) {
		if err := btx.CompleteTasks(ctx, chunk, now); err != nil {
			return nil, fmt.Errorf("completing tasks %v: %w", chunk, err)
		}
	}

	for chunk := range slices.Chunk(settledTxs, s.cfg.ChunkSize) {
		if err := btx.MarkSettled(ctx, chunk); err != nil {
			return nil, fmt.Errorf("marking transactions %v settled: %w", chunk, err)
		}
	}

	if err := btx.Commit(); err != nil {
		return nil, fmt.Errorf("commit settlement run: %w", err)
	}

	result.TasksClaimed = len(claimedTasks)

	return result, nil
}

// fetchDue pages through due tasks by primary key.
func (s *Service) fetchDue(ctx context.Context, btx BatchTx, now time.Time) ([]DueTask, error) {
	var (
		due     []DueTask
		afterID int64
	)

	for {
		page, err := btx.ListDueTasks(ctx, now, afterID, s.cfg.PageSize)
		if err != nil {
			return nil, fmt.Errorf("listing due tasks after %d: %w", afterID, err)
		}

		due = append(due, page...)

		if len(page) < s.cfg.PageSize {
			return due, nil
		}

		afterID = page[len(page)-1].Task.ID
	}
}

// partitionByMerchant groups due work by merchant, sorted by merchant id.
// A transaction referenced by several tasks is aggregated once. Tasks whose
// transaction was already settled are returned separately.
func partitionByMerchant(due []DueTask) ([]partition, []int64) {
	var (
		byMerchant = make(map[string]*partition)
		seen       = make(map[uuid.UUID]struct{}, len(due))
		stale      []int64
	)

	for _, d := range due {
		if d.Transaction.Settlement {
			stale = append(stale, d.Task.ID)
			continue
		}

		p, ok := byMerchant[d.Transaction.MerchantID]
		if !ok {
			p = &partition{merchantID: d.Transaction.MerchantID}
			byMerchant[d.Transaction.MerchantID] = p
		}

		p.taskIDs = append(p.taskIDs, d.Task.ID)

		if _, dup := seen[d.Transaction.ID]; dup {
			continue
		}

		seen[d.Transaction.ID] = struct{}{}
		p.transactions = append(p.transactions, d.Transaction)
	}

	partitions := make([]partition, 0, len(byMerchant))
	for _, p := range byMerchant {
		partitions = append(partitions, *p)
	}

	slices.SortFunc(partitions, func(a, b partition) int {
		return strings.Compare(a.merchantID, b.merchantID)
	})

	return partitions, stale
}

// settleMerchant writes one merchant's delta to the ledger. It reports false
// when the merchant has to wait for usable terms.
func (s *Service) settleMerchant(ctx context.Context, btx BatchTx, p partition, businessDay time.Time) (Report, bool, error) {
	terms, err := btx.GetTerms(ctx, p.merchantID)
	if errors.Is(err, ErrTermsNotFound) {
		s.logger.Warn("skipping merchant without financial terms",
			"merchant_id", p.merchantID, "task_ids", p.taskIDs)

		return Report{}, false, nil
	}

	if err != nil {
		return Report{}, false, fmt.Errorf("loading terms: %w", err)
	}

	if err := terms.Validate(); err != nil {
		s.logger.Warn("skipping merchant with invalid financial terms",
			"merchant_id", p.merchantID, "task_ids", p.taskIDs, "error", err)

		return Report{}, false, nil
	}

	items := make([]commission.Item, len(p.transactions))
	for i, tx := range p.transactions {
		items[i] = commission.Item{Amount: tx.OriginalAmount, Provider: tx.ProviderInfo.Name}
	}

	agg := commission.Compute(items, *terms)

	deductions, err := ResolveDeductions(ctx, btx, p.merchantID, businessDay)
	if err != nil {
		return Report{}, false, err
	}

	delta := Report{
		MerchantID:        p.merchantID,
		SettlementDate:    businessDay,
		TransactionCount:  agg.TransactionCount,
		TransactionAmount: agg.TransactionAmount,
		Commission:        agg.Commission,
		GST:               agg.GST,
		WithholdingTax:    agg.WithholdingTax,
		MerchantAmount:    agg.MerchantAmount.Sub(deductions.Total),
		DeductionApplied:  deductions.Total,
	}

	if err := btx.UpsertDailySettlement(ctx, delta); err != nil {
		return Report{}, false, fmt.Errorf("upserting daily settlement: %w", err)
	}

	for chunk := range slices.Chunk(deductions.Sources, s.cfg.ChunkSize) {
		if err := btx.MarkDeductionsDone(ctx, chunk); err != nil {
			return Report{}, false, fmt.Errorf("consuming deductions from %v: %w", chunk, err)
		}
	}

	s.logger.Info("merchant settled",
		"merchant_id", p.merchantID,
		"settlement_date", businessDay.Format(time.DateOnly),
		"transactions", agg.TransactionCount,
		"merchant_amount", delta.MerchantAmount.String(),
		"deduction", deductions.Total.String(),
	)

	return delta, true, nil
}
