package checker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/omar-chaar/m3u-health-check/internal/domain"
	"github.com/omar-chaar/m3u-health-check/internal/probe"
)

// History is the ordered sequence of outcomes for one endpoint in one run.
// It belongs to the unit checking that endpoint and is discarded after
// classification, surviving only as diagnostic text.
type History []probe.Outcome

// Tags lists the outcome kinds in attempt order, e.g. ["success","timeout"].
func (h History) Tags() []string {
	tags := make([]string, len(h))
	for i, o := range h {
		tags[i] = string(o.Kind)
	}
	return tags
}

func (h History) String() string { return strings.Join(h.Tags(), ",") }

// Last returns the most recent outcome, or a zero Outcome for an empty history.
func (h History) Last() probe.Outcome {
	if len(h) == 0 {
		return probe.Outcome{}
	}
	return h[len(h)-1]
}

// Policy drives repeated probes of a single endpoint. The inter-attempt delay
// is a fixed pause, not a backoff curve, which keeps one endpoint's wall time
// bounded by MaxAttempts*(Timeout+RetryDelay).
type Policy struct {
	Timeout     time.Duration
	RetryDelay  time.Duration
	MaxAttempts int

	// AliveThreshold is how many consecutive successes, with no failure seen
	// yet, end the check early with ALIVE. Zero means the full MaxAttempts
	// run is required before an endpoint is trusted.
	AliveThreshold int
}

func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be >= 1, got %d", p.MaxAttempts)
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("probe timeout must be positive, got %s", p.Timeout)
	}
	if p.RetryDelay < 0 {
		return fmt.Errorf("retry delay must not be negative, got %s", p.RetryDelay)
	}
	return nil
}

func (p Policy) aliveThreshold() int {
	if p.AliveThreshold < 1 || p.AliveThreshold > p.MaxAttempts {
		return p.MaxAttempts
	}
	return p.AliveThreshold
}

// Evaluate probes the target strictly sequentially, up to MaxAttempts times,
// and turns the raw outcomes into a verdict. Early exits: a clean run of
// successes reaching the alive threshold, or failures on every attempt. A
// cancelled context stops further attempts and classifies what was seen.
func (p Policy) Evaluate(ctx context.Context, prober probe.Prober, target string) (History, domain.Verdict) {
	hist := make(History, 0, p.MaxAttempts)
	var succ, fail, consecSucc, consecFail int
	threshold := p.aliveThreshold()

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		actx, cancel := context.WithTimeout(ctx, p.Timeout)
		out := prober.Probe(actx, target)
		cancel()
		hist = append(hist, out)

		if out.OK() {
			succ++
			consecSucc++
			consecFail = 0
			if fail == 0 && consecSucc >= threshold {
				return hist, domain.VerdictAlive
			}
		} else {
			fail++
			consecFail++
			consecSucc = 0
			if consecFail >= p.MaxAttempts {
				return hist, domain.VerdictDead
			}
		}

		if attempt < p.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return hist, classify(succ, fail)
			case <-time.After(p.RetryDelay):
			}
		}
	}
	return hist, classify(succ, fail)
}

func classify(succ, fail int) domain.Verdict {
	switch {
	case succ > 0 && fail > 0:
		return domain.VerdictUnstable
	case succ > 0:
		return domain.VerdictAlive
	default:
		return domain.VerdictDead
	}
}
