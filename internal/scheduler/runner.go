package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/omar-chaar/m3u-health-check/internal/checker"
	"github.com/omar-chaar/m3u-health-check/internal/diag"
	"github.com/omar-chaar/m3u-health-check/internal/domain"
	"github.com/omar-chaar/m3u-health-check/internal/probe"
)

// ErrInvalidConfig marks parameter problems caught before any probing starts.
var ErrInvalidConfig = errors.New("invalid configuration")

// Runner checks a playlist's endpoints through a bounded pool of units.
// Concurrency is a hard cap on in-flight checks, not a hint.
type Runner struct {
	Logger      *zap.Logger
	Prober      probe.Prober
	Policy      checker.Policy
	Concurrency int
	Diag        diag.Sink
}

func NewRunner(logger *zap.Logger, prober probe.Prober, policy checker.Policy, concurrency int, sink diag.Sink) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = diag.Discard{}
	}
	return &Runner{
		Logger:      logger,
		Prober:      prober,
		Policy:      policy,
		Concurrency: concurrency,
		Diag:        sink,
	}
}

func (r *Runner) validate() error {
	if r.Prober == nil {
		return fmt.Errorf("%w: prober is required", ErrInvalidConfig)
	}
	if r.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be >= 1, got %d", ErrInvalidConfig, r.Concurrency)
	}
	if err := r.Policy.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Run dispatches endpoints in playlist order and returns once every endpoint
// has exactly one verdict. Individual probe failures become verdicts, never
// run errors; the only error Run returns is ErrInvalidConfig. A cancelled
// context stops dispatching and marks undispatched endpoints DEAD.
func (r *Runner) Run(ctx context.Context, endpoints []domain.Endpoint) (*domain.Report, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	agg := newAggregator()
	sem := make(chan struct{}, r.Concurrency)
	var wg sync.WaitGroup

	r.Logger.Info("run_start",
		zap.Int("endpoints", len(endpoints)),
		zap.Int("concurrency", r.Concurrency),
		zap.Int("max_attempts", r.Policy.MaxAttempts),
	)

	for _, ep := range endpoints {
		// ctx.Err is checked on its own first: a select over ctx.Done and the
		// semaphore picks a ready branch at random, which would keep
		// dispatching after cancellation whenever a slot happens to be free.
		if ctx.Err() != nil {
			r.recordAbandoned(agg, ep)
			continue
		}
		select {
		case <-ctx.Done():
			r.recordAbandoned(agg, ep)
			continue
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(ep domain.Endpoint) {
			defer func() { <-sem }()
			defer wg.Done()
			r.checkOne(ctx, agg, ep)
		}(ep)
	}

	wg.Wait()
	report := agg.finalize()
	r.Logger.Info("run_done",
		zap.Int("total", report.Total()),
		zap.Int("alive", report.Counts[domain.VerdictAlive]),
		zap.Int("unstable", report.Counts[domain.VerdictUnstable]),
		zap.Int("dead", report.Counts[domain.VerdictDead]),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

func (r *Runner) checkOne(ctx context.Context, agg *aggregator, ep domain.Endpoint) {
	defer func() {
		if p := recover(); p != nil {
			r.Logger.Error("check_panic", zap.String("url", ep.URL), zap.Any("panic", p))
			_ = agg.record(domain.EndpointResult{
				Endpoint:  ep,
				Verdict:   domain.VerdictDead,
				Reason:    fmt.Sprintf("internal error: %v", p),
				CheckedAt: time.Now().UTC(),
			})
		}
	}()

	hist, verdict := r.Policy.Evaluate(ctx, r.Prober, ep.URL)
	last := hist.Last()
	res := domain.EndpointResult{
		Endpoint:  ep,
		Verdict:   verdict,
		Attempts:  len(hist),
		LatencyMS: last.LatencyMS,
		Reason:    last.Message,
		CheckedAt: time.Now().UTC(),
	}
	if err := agg.record(res); err != nil {
		r.Logger.Warn("duplicate_verdict", zap.String("url", ep.URL), zap.Error(err))
		return
	}

	r.Diag.Record(ctx, diag.Record{
		Name:     ep.Name,
		URL:      ep.URL,
		Verdict:  string(verdict),
		Attempts: len(hist),
		Outcomes: hist.Tags(),
		Reason:   last.Message,
	})
}

func (r *Runner) recordAbandoned(agg *aggregator, ep domain.Endpoint) {
	_ = agg.record(domain.EndpointResult{
		Endpoint:  ep,
		Verdict:   domain.VerdictDead,
		Reason:    "run cancelled before dispatch",
		CheckedAt: time.Now().UTC(),
	})
}
