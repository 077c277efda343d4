package checker

import (
	"context"
	"testing"
	"time"

	"github.com/omar-chaar/m3u-health-check/internal/domain"
	"github.com/omar-chaar/m3u-health-check/internal/probe"
)

// scripted prober you can control
type scriptedProber struct {
	outcomes []probe.Outcome
	i        int
}

func (s *scriptedProber) Probe(_ context.Context, _ string) probe.Outcome {
	if s.i >= len(s.outcomes) {
		return probe.Outcome{Kind: probe.KindUnknown, Message: "script exhausted"}
	}
	o := s.outcomes[s.i]
	s.i++
	return o
}

func ok() probe.Outcome      { return probe.Outcome{Kind: probe.KindSuccess, StatusCode: 200} }
func timeout() probe.Outcome { return probe.Outcome{Kind: probe.KindTimeout} }
func connErr() probe.Outcome { return probe.Outcome{Kind: probe.KindConnError} }

func testPolicy(attempts int) Policy {
	return Policy{Timeout: time.Second, RetryDelay: 0, MaxAttempts: attempts}
}

func TestEvaluate_AllSuccessIsAlive(t *testing.T) {
	p := testPolicy(3)
	hist, v := p.Evaluate(context.Background(), &scriptedProber{outcomes: []probe.Outcome{ok(), ok(), ok()}}, "http://x")
	if v != domain.VerdictAlive {
		t.Fatalf("want ALIVE, got %s (history %s)", v, hist)
	}
	if len(hist) != 3 {
		t.Fatalf("want 3 attempts, got %d", len(hist))
	}
}

func TestEvaluate_AllFailuresIsDead(t *testing.T) {
	p := testPolicy(3)
	hist, v := p.Evaluate(context.Background(), &scriptedProber{outcomes: []probe.Outcome{connErr(), connErr(), connErr()}}, "http://x")
	if v != domain.VerdictDead {
		t.Fatalf("want DEAD, got %s (history %s)", v, hist)
	}
	if len(hist) != 3 {
		t.Fatalf("want 3 attempts, got %d", len(hist))
	}
}

func TestEvaluate_MixedIsUnstable(t *testing.T) {
	p := testPolicy(3)
	hist, v := p.Evaluate(context.Background(), &scriptedProber{outcomes: []probe.Outcome{ok(), timeout(), ok()}}, "http://x")
	if v != domain.VerdictUnstable {
		t.Fatalf("want UNSTABLE, got %s (history %s)", v, hist)
	}
}

func TestEvaluate_SingleAttemptSuccessShortCircuits(t *testing.T) {
	p := testPolicy(1)
	hist, v := p.Evaluate(context.Background(), &scriptedProber{outcomes: []probe.Outcome{ok()}}, "http://x")
	if v != domain.VerdictAlive || len(hist) != 1 {
		t.Fatalf("want ALIVE after 1 attempt, got %s after %d", v, len(hist))
	}
}

func TestEvaluate_AliveThresholdEndsEarly(t *testing.T) {
	p := Policy{Timeout: time.Second, MaxAttempts: 5, AliveThreshold: 2}
	sp := &scriptedProber{outcomes: []probe.Outcome{ok(), ok(), ok(), ok(), ok()}}
	hist, v := p.Evaluate(context.Background(), sp, "http://x")
	if v != domain.VerdictAlive {
		t.Fatalf("want ALIVE, got %s", v)
	}
	if len(hist) != 2 {
		t.Fatalf("threshold 2 should stop after 2 attempts, got %d", len(hist))
	}
}

func TestEvaluate_ThresholdIgnoredAfterFailure(t *testing.T) {
	// a failure before the streak means no early ALIVE exit
	p := Policy{Timeout: time.Second, MaxAttempts: 4, AliveThreshold: 2}
	sp := &scriptedProber{outcomes: []probe.Outcome{timeout(), ok(), ok(), ok()}}
	hist, v := p.Evaluate(context.Background(), sp, "http://x")
	if v != domain.VerdictUnstable {
		t.Fatalf("want UNSTABLE, got %s", v)
	}
	if len(hist) != 4 {
		t.Fatalf("want full run of 4, got %d", len(hist))
	}
}

func TestEvaluate_RetryDelayIsCtxAware(t *testing.T) {
	p := Policy{Timeout: time.Second, RetryDelay: 5 * time.Second, MaxAttempts: 3}
	ctx, cancel := context.WithCancel(context.Background())
	sp := &scriptedProber{outcomes: []probe.Outcome{timeout(), timeout(), timeout()}}

	done := make(chan struct{})
	var v domain.Verdict
	go func() {
		_, v = p.Evaluate(ctx, sp, "http://x")
		close(done)
	}()
	time.Sleep(20 * time.Millisecond) // let the first attempt land in the delay
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Evaluate did not return promptly after cancel")
	}
	if v != domain.VerdictDead {
		t.Fatalf("all-failure partial history should be DEAD, got %s", v)
	}
}

func TestEvaluate_WallClockBound(t *testing.T) {
	p := Policy{Timeout: 10 * time.Millisecond, RetryDelay: 10 * time.Millisecond, MaxAttempts: 3}
	slow := proberFunc(func(ctx context.Context, _ string) probe.Outcome {
		<-ctx.Done()
		return probe.Outcome{Kind: probe.KindTimeout}
	})
	start := time.Now()
	_, v := p.Evaluate(context.Background(), slow, "http://x")
	elapsed := time.Since(start)

	bound := time.Duration(p.MaxAttempts) * (p.Timeout + p.RetryDelay)
	if elapsed > bound+100*time.Millisecond {
		t.Fatalf("evaluate took %s, bound is %s", elapsed, bound)
	}
	if v != domain.VerdictDead {
		t.Fatalf("want DEAD, got %s", v)
	}
}

type proberFunc func(ctx context.Context, target string) probe.Outcome

func (f proberFunc) Probe(ctx context.Context, target string) probe.Outcome { return f(ctx, target) }

func TestPolicy_Validate(t *testing.T) {
	if err := testPolicy(0).Validate(); err == nil {
		t.Fatalf("zero attempts must be rejected")
	}
	if err := (Policy{Timeout: 0, MaxAttempts: 1}).Validate(); err == nil {
		t.Fatalf("zero timeout must be rejected")
	}
	if err := (Policy{Timeout: time.Second, RetryDelay: -time.Second, MaxAttempts: 1}).Validate(); err == nil {
		t.Fatalf("negative delay must be rejected")
	}
	if err := testPolicy(1).Validate(); err != nil {
		t.Fatalf("valid policy rejected: %v", err)
	}
}

func TestHistory_Tags(t *testing.T) {
	h := History{ok(), timeout()}
	tags := h.Tags()
	if len(tags) != 2 || tags[0] != "success" || tags[1] != "timeout" {
		t.Fatalf("bad tags: %v", tags)
	}
	if h.String() != "success,timeout" {
		t.Fatalf("bad string: %q", h.String())
	}
}
