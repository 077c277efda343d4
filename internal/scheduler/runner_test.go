package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/omar-chaar/m3u-health-check/internal/checker"
	"github.com/omar-chaar/m3u-health-check/internal/diag"
	"github.com/omar-chaar/m3u-health-check/internal/domain"
	"github.com/omar-chaar/m3u-health-check/internal/probe"
)

type proberFunc func(ctx context.Context, target string) probe.Outcome

func (f proberFunc) Probe(ctx context.Context, target string) probe.Outcome { return f(ctx, target) }

func alwaysUp() probe.Prober {
	return proberFunc(func(_ context.Context, _ string) probe.Outcome {
		return probe.Outcome{Kind: probe.KindSuccess, StatusCode: 200}
	})
}

func endpoints(n int) []domain.Endpoint {
	eps := make([]domain.Endpoint, n)
	for i := range eps {
		eps[i] = domain.Endpoint{
			Name:  fmt.Sprintf("ch-%d", i),
			URL:   fmt.Sprintf("http://example.com/ch/%d", i),
			Index: i,
		}
	}
	return eps
}

func fastPolicy(attempts int) checker.Policy {
	return checker.Policy{Timeout: time.Second, RetryDelay: 0, MaxAttempts: attempts}
}

func TestRun_EveryEndpointGetsOneVerdict(t *testing.T) {
	eps := endpoints(20)
	r := NewRunner(zap.NewNop(), alwaysUp(), fastPolicy(2), 4, nil)

	report, err := r.Run(context.Background(), eps)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Total() != len(eps) {
		t.Fatalf("want %d results, got %d", len(eps), report.Total())
	}
	for _, ep := range eps {
		v, ok := report.VerdictFor(ep)
		if !ok {
			t.Fatalf("endpoint %d has no verdict", ep.Index)
		}
		if !v.Valid() {
			t.Fatalf("endpoint %d has invalid verdict %q", ep.Index, v)
		}
	}
	if report.Counts[domain.VerdictAlive] != len(eps) {
		t.Fatalf("want all alive, got %+v", report.Counts)
	}
}

func TestRun_ConcurrencyIsAHardCap(t *testing.T) {
	const limit = 3
	var inFlight, peak int64
	p := proberFunc(func(_ context.Context, _ string) probe.Outcome {
		cur := atomic.AddInt64(&inFlight, 1)
		for {
			old := atomic.LoadInt64(&peak)
			if cur <= old || atomic.CompareAndSwapInt64(&peak, old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return probe.Outcome{Kind: probe.KindSuccess}
	})

	r := NewRunner(zap.NewNop(), p, fastPolicy(1), limit, nil)
	if _, err := r.Run(context.Background(), endpoints(30)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := atomic.LoadInt64(&peak); got > limit {
		t.Fatalf("observed %d concurrent probes, cap is %d", got, limit)
	}
}

func TestRun_SlowEndpointDoesNotBlockOthers(t *testing.T) {
	slowURL := "http://example.com/ch/0"
	p := proberFunc(func(ctx context.Context, target string) probe.Outcome {
		if target == slowURL {
			<-ctx.Done()
			return probe.Outcome{Kind: probe.KindTimeout}
		}
		return probe.Outcome{Kind: probe.KindSuccess}
	})

	policy := checker.Policy{Timeout: 100 * time.Millisecond, RetryDelay: 0, MaxAttempts: 1}
	r := NewRunner(zap.NewNop(), p, policy, 2, nil)

	start := time.Now()
	report, err := r.Run(context.Background(), endpoints(10))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("run took too long; slow endpoint blocked the pool")
	}
	if report.Counts[domain.VerdictDead] != 1 || report.Counts[domain.VerdictAlive] != 9 {
		t.Fatalf("unexpected counts: %+v", report.Counts)
	}
}

func TestRun_MixedOutcomesAreDataNotErrors(t *testing.T) {
	// even endpoints answer, odd ones are refused; the run itself succeeds
	p := proberFunc(func(_ context.Context, target string) probe.Outcome {
		var idx int
		fmt.Sscanf(target, "http://example.com/ch/%d", &idx)
		if idx%2 == 0 {
			return probe.Outcome{Kind: probe.KindSuccess}
		}
		return probe.Outcome{Kind: probe.KindConnError, Message: "connection refused"}
	})

	r := NewRunner(zap.NewNop(), p, fastPolicy(2), 4, nil)
	report, err := r.Run(context.Background(), endpoints(10))
	if err != nil {
		t.Fatalf("mixed outcomes must not fail the run: %v", err)
	}
	if report.Counts[domain.VerdictAlive] != 5 || report.Counts[domain.VerdictDead] != 5 {
		t.Fatalf("unexpected counts: %+v", report.Counts)
	}
}

func TestRun_InvalidConfigFailsBeforeProbing(t *testing.T) {
	var calls int64
	counting := proberFunc(func(_ context.Context, _ string) probe.Outcome {
		atomic.AddInt64(&calls, 1)
		return probe.Outcome{Kind: probe.KindSuccess}
	})

	cases := []struct {
		name string
		r    *Runner
	}{
		{"zero attempts", NewRunner(zap.NewNop(), counting, fastPolicy(0), 2, nil)},
		{"zero concurrency", NewRunner(zap.NewNop(), counting, fastPolicy(1), 0, nil)},
	}
	for _, tc := range cases {
		_, err := tc.r.Run(context.Background(), endpoints(3))
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: want ErrInvalidConfig, got %v", tc.name, err)
		}
	}
	if atomic.LoadInt64(&calls) != 0 {
		t.Fatalf("probes ran despite invalid config")
	}
}

func TestRun_CancelMarksUndispatchedDead(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var once sync.Once
	p := proberFunc(func(_ context.Context, _ string) probe.Outcome {
		once.Do(cancel) // cancel the run as soon as the first probe lands
		time.Sleep(20 * time.Millisecond)
		return probe.Outcome{Kind: probe.KindSuccess}
	})

	r := NewRunner(zap.NewNop(), p, fastPolicy(1), 1, nil)
	report, err := r.Run(ctx, endpoints(10))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Total() != 10 {
		t.Fatalf("cancel must still leave every endpoint with a verdict, got %d", report.Total())
	}
	if report.Counts[domain.VerdictDead] == 0 {
		t.Fatalf("expected abandoned endpoints to be DEAD: %+v", report.Counts)
	}
}

func TestRun_NoDispatchAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int64
	counting := proberFunc(func(_ context.Context, _ string) probe.Outcome {
		atomic.AddInt64(&calls, 1)
		return probe.Outcome{Kind: probe.KindSuccess}
	})

	// plenty of free semaphore slots, so a racy dispatch would slip through
	r := NewRunner(zap.NewNop(), counting, fastPolicy(1), 50, nil)
	report, err := r.Run(ctx, endpoints(100))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := atomic.LoadInt64(&calls); got != 0 {
		t.Fatalf("dispatched %d probes despite cancelled context", got)
	}
	if report.Total() != 100 || report.Counts[domain.VerdictDead] != 100 {
		t.Fatalf("every endpoint must be recorded DEAD, got %+v", report.Counts)
	}
}

func TestRun_DiagnosticsRecordedPerEndpoint(t *testing.T) {
	sink := &diag.Memory{}
	r := NewRunner(zap.NewNop(), alwaysUp(), fastPolicy(2), 2, sink)
	if _, err := r.Run(context.Background(), endpoints(5)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	recs := sink.Records()
	if len(recs) != 5 {
		t.Fatalf("want 5 diagnostic records, got %d", len(recs))
	}
	for _, rec := range recs {
		if rec.Verdict != string(domain.VerdictAlive) || rec.Attempts == 0 {
			t.Fatalf("bad record: %+v", rec)
		}
	}
}

func TestAggregator_RejectsDuplicate(t *testing.T) {
	agg := newAggregator()
	res := domain.EndpointResult{Endpoint: domain.Endpoint{Index: 7}, Verdict: domain.VerdictAlive}
	if err := agg.record(res); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := agg.record(res); err == nil {
		t.Fatalf("duplicate record must fail")
	}
	rep := agg.finalize()
	if rep.Total() != 1 || rep.Counts[domain.VerdictAlive] != 1 {
		t.Fatalf("duplicate must not change the report: %+v", rep.Counts)
	}
}
