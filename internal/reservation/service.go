package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=reservation
type Repository interface {
	FindExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]Reservation, error)
	// Begin opens the transaction in which status flips and counter releases commit together.
	Begin(ctx context.Context) (SweepTx, error)
}

type SweepTx interface {
	// ExpireReservations flips the given reservations to EXPIRED if they are
	// still PENDING and returns only the rows it changed.
	ExpireReservations(ctx context.Context, ids []uuid.UUID) ([]Reservation, error)
	ReleaseUsage(ctx context.Context, r Release) error
	Commit() error
	Rollback() error
}

type Config struct {
	TTL        time.Duration
	BatchLimit int
	ChunkSize  int
}

type Sweeper struct {
	repo   Repository
	cfg    Config
	logger *slog.Logger
}

func NewSweeper(repo Repository, cfg Config, logger *slog.Logger) *Sweeper {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}

	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = 1000
	}

	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 500
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Sweeper{repo: repo, cfg: cfg, logger: logger}
}

// SweepResult summarises one ExpireOldReservations run. Raced counts
// candidates that were confirmed or expired elsewhere before the update.
type SweepResult struct {
	Candidates int `json:"candidates"`
	Expired    int `json:"expired"`
	Raced      int `json:"raced"`
	Buckets    int `json:"buckets"`
}

// ExpireOldReservations expires PENDING reservations older than the TTL and
// gives their amounts back to the usage buckets they were counted against.
func (s *Sweeper) ExpireOldReservations(ctx context.Context, now time.Time) (*SweepResult, error) {
	cutoff := now.Add(-s.cfg.TTL)

	candidates, err := s.repo.FindExpiredPending(ctx, cutoff, s.cfg.BatchLimit)
	if err != nil {
		return nil, fmt.Errorf("finding expired reservations: %w", err)
	}

	result := &SweepResult{Candidates: len(candidates)}
	if len(candidates) == 0 {
		return result, nil
	}

	ids := make([]uuid.UUID, len(candidates))
	for i, r := range candidates {
		ids[i] = r.ID
	}

	stx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin sweep: %w", err)
	}
	defer stx.Rollback()

	var expired []Reservation

	for chunk := range slices.Chunk(ids, s.cfg.ChunkSize) {
		rows, err := stx.ExpireReservations(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("expiring reservations: %w", err)
		}

		expired = append(expired, rows...)
	}

	releases := GroupReleases(expired)

	for _, r := range releases {
		err := stx.ReleaseUsage(ctx, r)
		if errors.Is(err, ErrUsageNotFound) {
			s.logger.Warn("no usage row for expired reservations",
				"merchant_id", r.Bucket.MerchantID,
				"provider", r.Bucket.Provider,
				"period", r.Bucket.Period,
				"window_start", r.Bucket.WindowStart,
			)

			continue
		}

		if err != nil {
			return nil, fmt.Errorf("releasing usage for merchant %s: %w", r.Bucket.MerchantID, err)
		}
	}

	if err := stx.Commit(); err != nil {
		return nil, fmt.Errorf("commit sweep: %w", err)
	}

	result.Expired = len(expired)
	result.Raced = result.Candidates - result.Expired
	result.Buckets = len(releases)

	if result.Raced > 0 {
		s.logger.Info("reservations changed state before expiry", "count", result.Raced)
	}

	s.logger.Info("reservations expired",
		"expired", result.Expired,
		"buckets", result.Buckets,
		"cutoff", cutoff,
	)

	return result, nil
}
