package probe

import (
	"context"
	"time"
)

// Kind tags the result of a single connectivity attempt.
type Kind string

const (
	KindSuccess   Kind = "success"
	KindTimeout   Kind = "timeout"
	KindConnError Kind = "conn_error"
	KindHTTPError Kind = "http_error"
	KindUnknown   Kind = "unknown"
)

// Outcome is the raw result of one attempt. Created by a Prober, consumed by
// the retry policy, never mutated.
type Outcome struct {
	Kind       Kind      `json:"kind"`
	StatusCode int       `json:"status_code,omitempty"`
	LatencyMS  float64   `json:"latency_ms"`
	Message    string    `json:"message,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
}

func (o Outcome) OK() bool { return o.Kind == KindSuccess }

// Prober performs a single connectivity attempt against a target URL.
// Implementations must honor the context deadline: no Outcome may arrive
// later than the deadline plus transport teardown.
type Prober interface {
	Probe(ctx context.Context, target string) Outcome
}
