package domain

import "time"

// Endpoint is one channel entry from the playlist. Index is the position in
// the source playlist and is what keeps output ordering stable. Extinf holds
// the raw #EXTINF line so the writer can reproduce it untouched.
type Endpoint struct {
	Name   string            `json:"name"`
	URL    string            `json:"url"`
	Index  int               `json:"index"`
	Group  string            `json:"group,omitempty"`
	Attrs  map[string]string `json:"attrs,omitempty"`
	Extinf string            `json:"-"`
	Extgrp string            `json:"-"`
}

// EndpointResult is the final word on one endpoint for one run.
type EndpointResult struct {
	Endpoint  Endpoint  `json:"endpoint"`
	Verdict   Verdict   `json:"verdict"`
	Attempts  int       `json:"attempts"`
	LatencyMS float64   `json:"latency_ms,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Report maps every checked endpoint (by original index) to its result.
// It is built behind the aggregator's mutex and is read-only once the run's
// barrier has been passed.
type Report struct {
	Results    map[int]EndpointResult `json:"results"`
	Counts     map[Verdict]int        `json:"counts"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt time.Time              `json:"finished_at"`
}

func NewReport() *Report {
	return &Report{
		Results: make(map[int]EndpointResult),
		Counts:  make(map[Verdict]int),
	}
}

func (r *Report) Total() int { return len(r.Results) }

// VerdictFor looks up the verdict for an endpoint by its playlist index.
func (r *Report) VerdictFor(e Endpoint) (Verdict, bool) {
	res, ok := r.Results[e.Index]
	if !ok {
		return "", false
	}
	return res.Verdict, true
}
