package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/omar-chaar/m3u-health-check/internal/domain"
)

// Notifier announces a finished check run. Implementations decide how a run
// record becomes a message; callers never format text themselves.
type Notifier interface {
	RunFinished(ctx context.Context, rec *domain.RunRecord) error
}

// Multi fans a run out to several notifiers, returning the first error.
type Multi []Notifier

func (m Multi) RunFinished(ctx context.Context, rec *domain.RunRecord) error {
	var firstErr error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.RunFinished(ctx, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RunSummary renders a finished run as plain title and text, for notifiers
// without a richer format of their own.
func RunSummary(rec *domain.RunRecord) (title, text string) {
	title = "Playlist check finished"
	if rec.Dead > 0 {
		title = fmt.Sprintf("Playlist check finished: %d dead channel(s)", rec.Dead)
	}
	text = fmt.Sprintf(
		"Source: %s\nChannels: %d\nAlive: %d\nUnstable: %d\nDead: %d\nDuration: %s",
		rec.Source, rec.Total, rec.Alive, rec.Unstable, rec.Dead,
		rec.FinishedAt.Sub(rec.StartedAt).Round(time.Second),
	)
	return title, text
}
