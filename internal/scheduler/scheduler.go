package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/settler/internal/metrics"
)

var (
	ErrUnknownJob  = errors.New("unknown job")
	ErrJobPanicked = errors.New("job panicked")
)

// RunFunc executes one run of a job as of now and returns its summary.
type RunFunc func(ctx context.Context, now time.Time) (any, error)

type Job struct {
	Name     string
	Interval time.Duration
	Run      RunFunc
}

type entry struct {
	job Job
	// mu keeps a job from overlapping itself, whether ticked or triggered by hand.
	mu sync.Mutex
}

// Scheduler runs each job on its own ticker.
type Scheduler struct {
	jobs    map[string]*entry
	names   []string
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func New(jobs []Job, m *metrics.Metrics, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		jobs:    make(map[string]*entry, len(jobs)),
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}

	for _, j := range jobs {
		if j.Name == "" || j.Run == nil {
			return nil, fmt.Errorf("job %q: name and run func are required", j.Name)
		}

		if j.Interval <= 0 {
			return nil, fmt.Errorf("job %q: interval must be positive", j.Name)
		}

		if _, dup := s.jobs[j.Name]; dup {
			return nil, fmt.Errorf("job %q registered twice", j.Name)
		}

		s.jobs[j.Name] = &entry{job: j}
		s.names = append(s.names, j.Name)
	}

	return s, nil
}

// Jobs returns the registered job names in registration order.
func (s *Scheduler) Jobs() []string {
	return append([]string(nil), s.names...)
}

// Start blocks until ctx is cancelled or a scheduled run panics. A failed run
// is logged and retried on the next tick. A panic stops every job loop and is
// returned wrapped in ErrJobPanicked.
func (s *Scheduler) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, name := range s.names {
		e := s.jobs[name]

		g.Go(func() error {
			return s.loop(ctx, e)
		})
	}

	return g.Wait()
}

func (s *Scheduler) loop(ctx context.Context, e *entry) error {
	ticker := time.NewTicker(e.job.Interval)
	defer ticker.Stop()

	s.logger.Info("job scheduled", "job", e.job.Name, "interval", e.job.Interval.String())

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.run(ctx, e); errors.Is(err, ErrJobPanicked) {
				return err
			}
		}
	}
}

// RunNow runs the named job immediately, waiting for an in-flight run of the same job to finish first.
func (s *Scheduler) RunNow(ctx context.Context, name string) (any, error) {
	e, ok := s.jobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	return s.run(ctx, e)
}

func (s *Scheduler) run(ctx context.Context, e *entry) (any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := s.now()
	result, err := e.invoke(ctx, start)
	elapsed := time.Since(start)

	if s.metrics != nil {
		s.metrics.ObserveRun(e.job.Name, elapsed.Seconds(), err)
	}

	if err != nil {
		s.logger.Error("job failed", "job", e.job.Name, "duration", elapsed.String(), "error", err)
		return nil, fmt.Errorf("running %s: %w", e.job.Name, err)
	}

	s.logger.Debug("job finished", "job", e.job.Name, "duration", elapsed.String())

	return result, nil
}

func (e *entry) invoke(ctx context.Context, now time.Time) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrJobPanicked, r)
		}
	}()

	return e.job.Run(ctx, now)
}
