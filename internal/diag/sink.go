package diag

import (
	"context"
	"sync"
)

// Record is one endpoint's diagnostic trail for one run: what was tried and
// how it ended. This is the only form in which a check history survives.
type Record struct {
	Name     string   `json:"name"`
	URL      string   `json:"url"`
	Verdict  string   `json:"verdict"`
	Attempts int      `json:"attempts"`
	Outcomes []string `json:"outcomes"`
	Reason   string   `json:"reason,omitempty"`
}

// Sink receives per-endpoint diagnostics. The engine writes records here and
// never opens files or sockets itself.
type Sink interface {
	Record(ctx context.Context, rec Record)
}

// Discard drops every record.
type Discard struct{}

func (Discard) Record(context.Context, Record) {}

// Memory collects records for tests.
type Memory struct {
	mu      sync.Mutex
	records []Record
}

func (m *Memory) Record(_ context.Context, rec Record) {
	m.mu.Lock()
	m.records = append(m.records, rec)
	m.mu.Unlock()
}

func (m *Memory) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}
