package repo

import (
	"context"

	"github.com/omar-chaar/m3u-health-check/internal/domain"
)

// RunStore keeps summaries of past check runs for the API. The engine itself
// never touches it; persistence is strictly a service-level concern.
type RunStore interface {
	SaveRun(ctx context.Context, rec *domain.RunRecord) error
	ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)
	LastRun(ctx context.Context) (*domain.RunRecord, error)
}
