package domain

import "time"

// RunRecord is the persisted summary of one check run. Only the summary is
// stored; per-endpoint detail goes to the diagnostics sink and the output
// playlist, never to the store.
type RunRecord struct {
	ID         int64     `json:"id"`
	Source     string    `json:"source"`
	Total      int       `json:"total"`
	Alive      int       `json:"alive"`
	Unstable   int       `json:"unstable"`
	Dead       int       `json:"dead"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Summarize collapses a report into a storable run record.
func Summarize(source string, r *Report) *RunRecord {
	return &RunRecord{
		Source:     source,
		Total:      r.Total(),
		Alive:      r.Counts[VerdictAlive],
		Unstable:   r.Counts[VerdictUnstable],
		Dead:       r.Counts[VerdictDead],
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}
