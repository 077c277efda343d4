package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/omar-chaar/m3u-health-check/internal/domain"
)

// aggregator accumulates one result per endpoint behind a mutex. The runner
// enforces exactly-once dispatch; the duplicate check here catches the day
// that stops being true.
type aggregator struct {
	mu     sync.Mutex
	report *domain.Report
}

func newAggregator() *aggregator {
	r := domain.NewReport()
	r.StartedAt = time.Now().UTC()
	return &aggregator{report: r}
}

func (a *aggregator) record(res domain.EndpointResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if prev, dup := a.report.Results[res.Endpoint.Index]; dup {
		return fmt.Errorf("endpoint %d (%s) already has verdict %s", res.Endpoint.Index, prev.Endpoint.URL, prev.Verdict)
	}
	a.report.Results[res.Endpoint.Index] = res
	a.report.Counts[res.Verdict]++
	return nil
}

// finalize stamps the report; callers reach it only after the WaitGroup
// barrier, so the returned report is no longer written to.
func (a *aggregator) finalize() *domain.Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.report.FinishedAt = time.Now().UTC()
	return a.report
}
